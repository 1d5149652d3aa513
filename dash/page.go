// Copyright 2023 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dash

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
)

var pageTmpl *template.Template

func init() {
	pageTmpl = template.Must(template.New("page").Funcs(template.FuncMap{
		"render": render,
	}).Parse(pageHTML))
	template.Must(pageTmpl.New("components").Parse(componentsHTML))
}

// render renders a single component into HTML.
func render(c Component) (template.HTML, error) {
	var buf bytes.Buffer
	if err := pageTmpl.ExecuteTemplate(&buf, c.tmpl(), c); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

type pageData struct {
	Title   string
	Layout  Component
	Initial map[string]json.RawMessage
	Debug   bool
	BootID  string
}

// writePage renders the whole page, including the initial value of
// every output.
func (a *App) writePage(w io.Writer) error {
	initial := a.Initial().Outputs
	for id, g := range a.graphs {
		if g.Figure == nil {
			continue
		}
		data, err := json.Marshal(g.Figure)
		if err != nil {
			return fmt.Errorf("static graph %s: %w", id, err)
		}
		initial[Figure(id).String()] = data
	}
	return pageTmpl.Execute(w, pageData{
		Title:   a.title,
		Layout:  a.layout,
		Initial: initial,
		Debug:   a.debug,
		BootID:  a.bootID,
	})
}

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/bootswatch@5.1.3/dist/cerulean/bootstrap.min.css">
<script src="https://cdn.plot.ly/plotly-2.18.2.min.js"></script>
<style>
.dash-rangeslider input[type=range] { width: 100%; }
.dash-tooltip { font-size: 0.875rem; color: #555; }
#dash-errors { white-space: pre-wrap; }
</style>
</head>
<body>
{{if .Debug}}<div id="dash-errors" class="alert alert-danger m-2" hidden></div>{{end}}
{{with .Layout}}{{render .}}{{end}}
<script>
(function() {
"use strict";
const initial = {{.Initial}};
const debug = {{.Debug}};
const bootID = {{.BootID}};

function apply(outputs) {
  for (const key in outputs) {
    const dot = key.lastIndexOf(".");
    const el = document.getElementById(key.slice(0, dot));
    if (!el) {
      continue;
    }
    const v = outputs[key];
    switch (key.slice(dot + 1)) {
    case "figure":
      Plotly.react(el, v.data, v.layout, {responsive: true});
      break;
    case "children":
      el.innerHTML = v;
      break;
    }
  }
}

function valueOf(el) {
  switch (el.dataset.control) {
  case "rangeslider": {
    const ends = el.querySelectorAll("input[type=range]");
    return [Number(ends[0].value), Number(ends[1].value)];
  }
  case "radioitems": {
    const on = el.querySelector("input:checked");
    return on ? on.value : null;
  }
  case "datatable": {
    const rows = [];
    el.querySelectorAll("input:checked").forEach(function(r) { rows.push(Number(r.value)); });
    return rows;
  }
  }
  return null;
}

function tooltip(el) {
  const tip = el.querySelector(".dash-tooltip");
  if (tip) {
    const v = valueOf(el);
    tip.textContent = v[0] + " to " + v[1];
  }
}

function showErrors(errs) {
  const box = document.getElementById("dash-errors");
  if (!box) {
    return;
  }
  box.textContent = errs.join("\n");
  box.hidden = errs.length === 0;
}

const seq = {};
function update(changed) {
  const inputs = {};
  document.querySelectorAll("[data-control]").forEach(function(el) { inputs[el.id] = valueOf(el); });
  const mine = seq[changed] = (seq[changed] || 0) + 1;
  fetch("_dash-update", {
    method: "POST",
    headers: {"Content-Type": "application/json"},
    body: JSON.stringify({changed: [changed], inputs: inputs}),
  }).then(function(resp) {
    return resp.json();
  }).then(function(up) {
    if (seq[changed] !== mine) {
      return;
    }
    apply(up.outputs || {});
    showErrors(up.errors || []);
  }).catch(function(err) {
    showErrors([String(err)]);
  });
}

document.querySelectorAll("[data-control]").forEach(function(el) {
  if (el.dataset.control === "rangeslider") {
    el.addEventListener("input", function() { tooltip(el); });
    tooltip(el);
  }
  el.addEventListener("change", function() { update(el.id); });
});
document.querySelectorAll("[data-clear]").forEach(function(b) {
  b.addEventListener("click", function() {
    const el = document.getElementById(b.dataset.clear);
    el.querySelectorAll("input:checked").forEach(function(r) { r.checked = false; });
    update(el.id);
  });
});

if (debug) {
  setInterval(function() {
    fetch("_dash-reload").then(function(resp) {
      return resp.json();
    }).then(function(r) {
      if (r.boot !== bootID) {
        location.reload();
      }
    }).catch(function() {});
  }, 2000);
}

apply(initial);
})();
</script>
</body>
</html>
`

const componentsHTML = `
{{define "container"}}<div class="container{{with .Class}} {{.}}{{end}}">{{range .Children}}{{render .}}{{end}}</div>{{end}}

{{define "row"}}<div class="row{{with .Class}} {{.}}{{end}}">{{range .Children}}{{render .}}{{end}}</div>{{end}}

{{define "col"}}<div class="{{if .Width}}col-md-{{.Width}}{{else}}col{{end}}">{{range .Children}}{{render .}}{{end}}</div>{{end}}

{{define "h1"}}<h1 class="{{.Class}}">{{.Text}}</h1>{{end}}

{{define "h4"}}<h4>{{.Text}}</h4>{{end}}

{{define "statictable"}}{{.Table.HTML}}{{end}}

{{define "div"}}<div id="{{.ID}}" class="{{.Class}}"></div>{{end}}

{{define "graph"}}<div id="{{.ID}}" class="dash-graph"></div>{{end}}

{{define "rangeslider"}}<div id="{{.ID}}" class="dash-rangeslider" data-control="rangeslider">
<input type="range" class="form-range" min="{{.Min}}" max="{{.Max}}" step="{{.Step}}" value="{{index .Value 0}}" aria-label="from">
<input type="range" class="form-range" min="{{.Min}}" max="{{.Max}}" step="{{.Step}}" value="{{index .Value 1}}" aria-label="to">
{{if .Tooltip}}<span class="dash-tooltip"></span>{{end}}
</div>{{end}}

{{define "radioitems"}}<div id="{{.ID}}" data-control="radioitems">
{{range .Options}}<div class="form-check{{if $.Inline}} form-check-inline{{end}}">
<input class="form-check-input" type="radio" name="{{$.ID}}" id="{{$.ID}}-{{.}}" value="{{.}}"{{if eq . $.Value}} checked{{end}}>
<label class="form-check-label" for="{{$.ID}}-{{.}}">{{.}}</label>
</div>{{end}}
</div>{{end}}

{{define "datatable"}}<div id="{{.ID}}" class="dash-datatable" data-control="datatable">
<table class="{{.Table.Class}}">
<thead><tr>{{if .RowSelectable}}<th></th>{{end}}{{range .Table.Header}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>{{range $i, $row := .Table.Rows}}<tr>{{if $.RowSelectable}}<td><input class="form-check-input" type="radio" name="{{$.ID}}" value="{{$i}}"{{if $.IsSelected $i}} checked{{end}}></td>{{end}}{{range $row}}<td>{{.}}</td>{{end}}</tr>{{end}}</tbody>
</table>
{{if .RowSelectable}}<button type="button" class="btn btn-sm btn-outline-secondary" data-clear="{{.ID}}">Clear selection</button>{{end}}
</div>{{end}}
`

package render

import (
	"html/template"
	"io"

	"github.com/skst328/scope-timer/internal/report"
)

type htmlRow struct {
	Guide   string
	Label   string
	Time    string
	Count   string
	Percent string
	Detail  string
	Root    bool
}

type htmlPage struct {
	Title    string
	Version  string
	Warnings []string
	Rows     []htmlRow
	Footer   string
}

var pageTmpl = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<style>
body { background: #0c0c0c; color: #f2f2f2; }
pre { font-family: Menlo, 'DejaVu Sans Mono', consolas, 'Courier New', monospace; line-height: 1.3; }
.title { border: 1px solid #c0c0c0; padding: 0 1ch; display: inline-block; font-weight: bold; }
.guide { color: #5c5cff; }
.label { color: #13a10e; }
.warn { color: #c19c00; }
.footer { color: #e74856; }
.rule { color: #808080; }
</style>
</head>
<body>
<pre><span class="title">{{.Title}}</span>
{{range .Warnings}}<span class="warn">{{.}}</span>
{{end}}{{if .Warnings}}
{{end}}{{range $i, $r := .Rows}}{{if and $r.Root $i}}
{{end}}<span class="guide">{{$r.Guide}}</span><span class="label">{{$r.Label}}</span>{{$r.Time}} / {{$r.Count}}{{if $r.Percent}} {{$r.Percent}}{{end}}{{if $r.Detail}}  {{$r.Detail}}{{end}}
{{end}}
<span class="footer">{{.Footer}}</span>
</pre>
{{if .Version}}<!-- scope-timer {{.Version}} -->{{end}}
</body>
</html>
`))

// HTML writes a standalone HTML page with the same layout as the console
// rendering. version is embedded as a comment when non-empty.
func HTML(w io.Writer, rep *report.Report, version string) error {
	page := htmlPage{
		Title:    title,
		Version:  version,
		Warnings: warningLines(rep),
		Footer:   footerLine(rep),
	}
	for _, l := range layout(rep) {
		page.Rows = append(page.Rows, htmlRow{
			Guide:   l.guide,
			Label:   l.label,
			Time:    l.time,
			Count:   l.count,
			Percent: l.percent,
			Detail:  l.detail,
			Root:    l.root,
		})
	}
	return pageTmpl.Execute(w, page)
}

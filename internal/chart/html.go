package chart

import (
	"bytes"
	"fmt"
	"html/template"
)

// PlotlyCDN is the plotly.js bundle loaded by interactive figures.
const PlotlyCDN = "https://cdn.plot.ly/plotly-2.35.2.min.js"

var documentTmpl = template.Must(template.New("figure").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="{{.CDN}}" charset="utf-8"></script>
</head>
<body style="margin:0">
<div id="{{.ID}}" style="width:100%;height:100vh"></div>
<script>
(function() {
  var fig = {{.Figure}};
  Plotly.newPlot({{.ID}}, fig.data, fig.layout, {responsive: true});
})();
</script>
</body>
</html>
`))

var embedTmpl = template.Must(template.New("embed").Parse(`<div id="{{.ID}}" class="chart"></div>
<script>
(function() {
  var fig = {{.Figure}};
  Plotly.newPlot({{.ID}}, fig.data, fig.layout, {responsive: true});
})();
</script>
`))

type figureData struct {
	ID     string
	Title  string
	CDN    string
	Figure template.JS
}

func newFigureData(fig *Figure, id, title string) (figureData, error) {
	if fig == nil || len(fig.Data) == 0 {
		return figureData{}, ErrEmptyChart
	}
	raw, err := fig.JSON()
	if err != nil {
		return figureData{}, fmt.Errorf("encode figure: %w", err)
	}
	return figureData{ID: id, Title: title, CDN: PlotlyCDN, Figure: template.JS(raw)}, nil
}

// HTML returns a standalone HTML document that draws fig, loading
// plotly.js from its CDN.
func HTML(fig *Figure, title string) ([]byte, error) {
	data, err := newFigureData(fig, "figure", title)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := documentTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}

// Embed returns a fragment that draws fig into a div with the given id.
// The page must load PlotlyCDN itself.
func Embed(fig *Figure, id string) (template.HTML, error) {
	data, err := newFigureData(fig, id, "")
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := embedTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render chart: %w", err)
	}
	return template.HTML(buf.String()), nil
}

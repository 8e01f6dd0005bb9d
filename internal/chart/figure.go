// Package chart builds the dashboard's figures.
//
// Interactive figures are plain Plotly figure objects (data plus layout)
// serialised to JSON and drawn by plotly.js in the browser. Static SVG
// bar charts are rendered server side with go-chart for clients that
// cannot run JavaScript.
package chart

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/JonMunkholm/bidash/internal/core"
)

// ErrEmptyChart is returned when there is nothing to plot.
var ErrEmptyChart = errors.New("chart has no data")

// ErrNoPositiveValues is returned by Treemap when every group has a zero or
// negative value. It wraps ErrEmptyChart.
var ErrNoPositiveValues = fmt.Errorf("%w: no positive values to size the treemap", ErrEmptyChart)

// Figure is a Plotly figure.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is one Plotly trace. Only the fields used by the dashboard's
// figure types are modelled.
type Trace struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`

	// bar, scatter
	X     []string  `json:"x,omitempty"`
	Y     []float64 `json:"y,omitempty"`
	Mode  string    `json:"mode,omitempty"`
	YAxis string    `json:"yaxis,omitempty"`

	// choropleth
	Locations    []string  `json:"locations,omitempty"`
	LocationMode string    `json:"locationmode,omitempty"`
	Z            []float64 `json:"z,omitempty"`
	ColorScale   string    `json:"colorscale,omitempty"`
	ColorBar     *ColorBar `json:"colorbar,omitempty"`

	// treemap
	Labels   []string  `json:"labels,omitempty"`
	Parents  []string  `json:"parents,omitempty"`
	Values   []float64 `json:"values,omitempty"`
	TextInfo string    `json:"textinfo,omitempty"`

	HoverTemplate string `json:"hovertemplate,omitempty"`
}

// ColorBar titles the colour scale of a choropleth.
type ColorBar struct {
	Title *Title `json:"title,omitempty"`
}

// Title is a Plotly title object.
type Title struct {
	Text string `json:"text"`
}

// Axis is a Plotly axis.
type Axis struct {
	Title      *Title    `json:"title,omitempty"`
	Overlaying string    `json:"overlaying,omitempty"`
	Side       string    `json:"side,omitempty"`
	Range      []float64 `json:"range,omitempty"`
	TickSuffix string    `json:"ticksuffix,omitempty"`
}

// Geo configures the map of a choropleth.
type Geo struct {
	ShowFrame      bool `json:"showframe"`
	ShowCoastlines bool `json:"showcoastlines"`
}

// Layout is a Plotly layout.
type Layout struct {
	Title      *Title `json:"title,omitempty"`
	XAxis      *Axis  `json:"xaxis,omitempty"`
	YAxis      *Axis  `json:"yaxis,omitempty"`
	YAxis2     *Axis  `json:"yaxis2,omitempty"`
	Geo        *Geo   `json:"geo,omitempty"`
	ShowLegend *bool  `json:"showlegend,omitempty"`
	Height     int    `json:"height,omitempty"`
}

// JSON returns the figure as Plotly JSON.
func (f *Figure) JSON() ([]byte, error) {
	return json.Marshal(f)
}

func title(s string) *Title {
	if s == "" {
		return nil
	}
	return &Title{Text: s}
}

// Bar plots one bar per group in summary order.
func Bar(chartTitle, xTitle, yTitle string, s core.Summary) (*Figure, error) {
	if len(s) == 0 {
		return nil, ErrEmptyChart
	}
	return &Figure{
		Data: []Trace{{
			Type: "bar",
			Name: yTitle,
			X:    s.Keys(),
			Y:    s.Values(),
		}},
		Layout: Layout{
			Title: title(chartTitle),
			XAxis: &Axis{Title: title(xTitle)},
			YAxis: &Axis{Title: title(yTitle)},
		},
	}, nil
}

// Choropleth colours each country by its value. Keys are matched by
// country name.
func Choropleth(chartTitle, valueTitle string, s core.Summary) (*Figure, error) {
	if len(s) == 0 {
		return nil, ErrEmptyChart
	}
	return &Figure{
		Data: []Trace{{
			Type:          "choropleth",
			Locations:     s.Keys(),
			LocationMode:  "country names",
			Z:             s.Values(),
			ColorScale:    "Viridis",
			ColorBar:      &ColorBar{Title: title(valueTitle)},
			HoverTemplate: "%{location}<br>" + valueTitle + ": %{z:,.2f}<extra></extra>",
		}},
		Layout: Layout{
			Title: title(chartTitle),
			Geo:   &Geo{ShowCoastlines: true},
		},
	}, nil
}

// Treemap draws one tile per group sized by its value. Groups with a
// non-positive value cannot be drawn and are left out; if that leaves
// nothing, the error is ErrNoPositiveValues.
func Treemap(chartTitle string, s core.Summary) (*Figure, error) {
	var labels, parents []string
	var values []float64
	for _, g := range s {
		if g.Value <= 0 {
			continue
		}
		labels = append(labels, g.Key)
		parents = append(parents, "")
		values = append(values, g.Value)
	}
	if len(labels) == 0 {
		if len(s) > 0 {
			return nil, ErrNoPositiveValues
		}
		return nil, ErrEmptyChart
	}
	return &Figure{
		Data: []Trace{{
			Type:     "treemap",
			Labels:   labels,
			Parents:  parents,
			Values:   values,
			TextInfo: "label+value+percent root",
		}},
		Layout: Layout{Title: title(chartTitle)},
	}, nil
}

// Line draws a Pareto chart: group values as bars and their cumulative
// share as a line on a secondary percent axis.
func Line(chartTitle string, points []core.ParetoPoint) (*Figure, error) {
	if len(points) == 0 {
		return nil, ErrEmptyChart
	}
	keys := make([]string, len(points))
	values := make([]float64, len(points))
	shares := make([]float64, len(points))
	for i, p := range points {
		keys[i] = p.Key
		values[i] = p.Value
		shares[i] = p.Share
	}
	return &Figure{
		Data: []Trace{
			{Type: "bar", Name: "Sales", X: keys, Y: values},
			{Type: "scatter", Name: "Cumulative share", X: keys, Y: shares, Mode: "lines+markers", YAxis: "y2"},
		},
		Layout: Layout{
			Title: title(chartTitle),
			YAxis: &Axis{Title: title("Sales")},
			YAxis2: &Axis{
				Title:      title("Cumulative share"),
				Overlaying: "y",
				Side:       "right",
				Range:      []float64{0, 100},
				TickSuffix: "%",
			},
		},
	}, nil
}

// Package plotly builds renderable graph descriptions compatible with the
// Plotly JSON wire format: a list of trace objects plus a layout object.
// Only the fields the map endpoints need are modeled; the structure
// round-trips through encoding/json untouched.
package plotly

import (
	"fmt"
)

// Figure is the top-level graph description sent to the rendering client.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace describes one geometry set with its per-point styling.
type Trace struct {
	Type       string      `json:"type"`
	Name       string      `json:"name,omitempty"`
	Mode       string      `json:"mode,omitempty"`
	Lat        []float64   `json:"lat,omitempty"`
	Lon        []float64   `json:"lon,omitempty"`
	Text       []string    `json:"text,omitempty"`
	Marker     *Marker     `json:"marker,omitempty"`
	X          []float64   `json:"x,omitempty"`
	Y          []float64   `json:"y,omitempty"`
	Z          [][]float64 `json:"z,omitempty"`
	ColorScale string      `json:"colorscale,omitempty"`
	ColorBar   *ColorBar   `json:"colorbar,omitempty"`
}

// Marker holds per-point styling bound to a data column.
type Marker struct {
	Color      interface{} `json:"color,omitempty"` // []float64 for continuous, string for fixed
	ColorScale string      `json:"colorscale,omitempty"`
	ShowScale  bool        `json:"showscale,omitempty"`
	Size       int         `json:"size,omitempty"`
	ColorBar   *ColorBar   `json:"colorbar,omitempty"`
}

// ColorBar labels a continuous color scale.
type ColorBar struct {
	Title string `json:"title,omitempty"`
}

// Layout holds the figure-level presentation settings.
type Layout struct {
	Title *Title     `json:"title,omitempty"`
	Map   *MapLayout `json:"map,omitempty"`
	XAxis *Axis      `json:"xaxis,omitempty"`
	YAxis *Axis      `json:"yaxis,omitempty"`
}

// Title is a figure or axis title.
type Title struct {
	Text string `json:"text"`
}

// MapLayout configures the base map projection.
type MapLayout struct {
	Style  string    `json:"style"`
	Zoom   float64   `json:"zoom"`
	Center MapCenter `json:"center"`
}

// MapCenter is the initial map viewport center.
type MapCenter struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Axis configures a cartesian axis.
type Axis struct {
	Title *Title `json:"title,omitempty"`
}

const (
	// ViridisScale is the perceptually-uniform scale used for continuous maps
	ViridisScale = "Viridis"

	mapStyle   = "open-street-map"
	mapZoom    = 6.0
	markerSize = 8
)

func mapLayout(title string, lats, lons []float64) Layout {
	var clat, clon float64
	if len(lats) > 0 {
		for i := range lats {
			clat += lats[i]
			clon += lons[i]
		}
		clat /= float64(len(lats))
		clon /= float64(len(lons))
	}
	return Layout{
		Title: &Title{Text: title},
		Map: &MapLayout{
			Style:  mapStyle,
			Zoom:   mapZoom,
			Center: MapCenter{Lat: clat, Lon: clon},
		},
	}
}

// ScatterMapContinuous builds a scatter map whose markers are colored by a
// continuous value on the Viridis scale.
func ScatterMapContinuous(title, colorLabel string, lats, lons, values []float64) Figure {
	text := make([]string, len(values))
	for i, v := range values {
		text[i] = fmt.Sprintf("%s: %.4f", colorLabel, v)
	}

	trace := Trace{
		Type: "scattermap",
		Mode: "markers",
		Name: colorLabel,
		Lat:  lats,
		Lon:  lons,
		Text: text,
		Marker: &Marker{
			Color:      values,
			ColorScale: ViridisScale,
			ShowScale:  true,
			Size:       markerSize,
			ColorBar:   &ColorBar{Title: colorLabel},
		},
	}

	return Figure{
		Data:   []Trace{trace},
		Layout: mapLayout(title, lats, lons),
	}
}

// ScatterMapDiscrete builds a scatter map with a fixed color per label,
// one trace per label so the legend shows the discrete mapping.
func ScatterMapDiscrete(title string, lats, lons []float64, labels []int, colors map[int]string, names map[int]string) Figure {
	byLabel := make(map[int][]int)
	order := []int{}
	for i, label := range labels {
		if _, seen := byLabel[label]; !seen {
			order = append(order, label)
		}
		byLabel[label] = append(byLabel[label], i)
	}

	traces := make([]Trace, 0, len(order))
	for _, label := range order {
		idx := byLabel[label]
		tlats := make([]float64, len(idx))
		tlons := make([]float64, len(idx))
		for j, i := range idx {
			tlats[j] = lats[i]
			tlons[j] = lons[i]
		}
		name := names[label]
		if name == "" {
			name = fmt.Sprintf("%d", label)
		}
		traces = append(traces, Trace{
			Type: "scattermap",
			Mode: "markers",
			Name: name,
			Lat:  tlats,
			Lon:  tlons,
			Marker: &Marker{
				Color: colors[label],
				Size:  markerSize,
			},
		})
	}

	return Figure{
		Data:   traces,
		Layout: mapLayout(title, lats, lons),
	}
}

// ScatterMapCategorical builds a scatter map with one default-colored trace
// per category label.
func ScatterMapCategorical(title, labelName string, lats, lons []float64, labels []int) Figure {
	return ScatterMapDiscrete(title, lats, lons, labels, map[int]string{}, categoryNames(labelName, labels))
}

func categoryNames(labelName string, labels []int) map[int]string {
	names := make(map[int]string)
	for _, label := range labels {
		names[label] = fmt.Sprintf("%s %d", labelName, label)
	}
	return names
}

// Contour builds a contour figure over a regular grid.
func Contour(title, colorLabel, xLabel, yLabel string, x, y []float64, z [][]float64) Figure {
	trace := Trace{
		Type:       "contour",
		X:          x,
		Y:          y,
		Z:          z,
		ColorScale: ViridisScale,
		ColorBar:   &ColorBar{Title: colorLabel},
	}

	return Figure{
		Data: []Trace{trace},
		Layout: Layout{
			Title: &Title{Text: title},
			XAxis: &Axis{Title: &Title{Text: xLabel}},
			YAxis: &Axis{Title: &Title{Text: yLabel}},
		},
	}
}

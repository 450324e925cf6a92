// Package chart renders declarative charts through a QuickChart-compatible
// HTTP service, with a plain-text rendering for when the service fails.
package chart

// Chart types
const (
	Line = "line"
	Pie  = "pie"
	Bar  = "bar"
)

// Series is one named data series.
type Series struct {
	Label string
	Data  []int64
	Color string
}

// Spec describes a chart independent of the renderer.
type Spec struct {
	Type   string
	Title  string
	Labels []string
	Series []Series
}

var palette = []string{"#4CAF50", "#F44336", "#2196F3", "#FF9800", "#9C27B0", "#00BCD4", "#795548", "#607D8B"}

func (s Spec) config() map[string]any {
	datasets := make([]map[string]any, 0, len(s.Series))
	for i, ser := range s.Series {
		ds := map[string]any{"label": ser.Label, "data": ser.Data}
		switch s.Type {
		case Pie:
			colors := make([]string, len(ser.Data))
			for j := range colors {
				colors[j] = palette[j%len(palette)]
			}
			ds["backgroundColor"] = colors
		default:
			color := ser.Color
			if color == "" {
				color = palette[i%len(palette)]
			}
			ds["borderColor"] = color
			ds["backgroundColor"] = color
			if s.Type == Line {
				ds["fill"] = false
			}
		}
		datasets = append(datasets, ds)
	}
	return map[string]any{
		"type": s.Type,
		"data": map[string]any{
			"labels":   s.Labels,
			"datasets": datasets,
		},
		"options": map[string]any{
			"title":  map[string]any{"display": s.Title != "", "text": s.Title},
			"legend": map[string]any{"display": true, "position": "bottom"},
		},
	}
}

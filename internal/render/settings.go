package render

import (
	"encoding/json"
	"fmt"

	"github.com/transitbase/transitbase_core/internal/svg"
)

// Layer names accepted in the layers list.
const (
	LayerBusLines   = "bus_lines"
	LayerBusLabels  = "bus_labels"
	LayerStopPoints = "stop_points"
	LayerStopLabels = "stop_labels"
)

// Settings are the render_settings of the input document.
type Settings struct {
	Width             float64     `json:"width"`
	Height            float64     `json:"height"`
	Padding           float64     `json:"padding"`
	OuterMargin       float64     `json:"outer_margin"`
	Palette           []svg.Color `json:"color_palette"`
	LineWidth         float64     `json:"line_width"`
	UnderlayerColor   svg.Color   `json:"underlayer_color"`
	UnderlayerWidth   float64     `json:"underlayer_width"`
	StopRadius        float64     `json:"stop_radius"`
	BusLabelOffset    svg.Point   `json:"bus_label_offset"`
	BusLabelFontSize  int32       `json:"bus_label_font_size"`
	StopLabelOffset   svg.Point   `json:"stop_label_offset"`
	StopLabelFontSize int32       `json:"stop_label_font_size"`
	Layers            []string    `json:"layers"`
}

// ParseSettings decodes the raw render_settings object.
func ParseSettings(raw json.RawMessage) (Settings, error) {
	var s Settings
	if len(raw) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return s, fmt.Errorf("render settings: %w", err)
	}
	return s, nil
}

package domain

import (
	"fmt"
	"strings"
)

const (
	LayerTypeText  = "text"
	LayerTypeShape = "shape"
	LayerTypeSVG   = "svg"
)

// LayoutConfig is the final renderable layer stack handed to the caller.
type LayoutConfig struct {
	Canvas Canvas  `json:"canvas"`
	Layers []Layer `json:"layers"`
}

type Canvas struct {
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	BackgroundImage string  `json:"backgroundImage"`
	Tone            string  `json:"tone"`
	OverlayOpacity  float64 `json:"overlayOpacity,omitempty"`
}

// Layer is a tagged variant discriminated by Type. Text layers require
// content; shape and svg layers may omit it. Style is an open map the
// renderer interprets as CSS.
type Layer struct {
	ID      string         `json:"id"`
	Type    string         `json:"type"`
	Content string         `json:"content,omitempty"`
	Style   map[string]any `json:"style"`
}

// Validate checks the layout schema. The canvas backgroundImage and tone
// are accepted as the model proposed them; the orchestrator overwrites
// both with authoritative values after validation succeeds.
func (l LayoutConfig) Validate() error {
	if l.Canvas.Width <= 0 || l.Canvas.Height <= 0 {
		return fmt.Errorf("%w: layout canvas dimensions must be positive", ErrValidation)
	}
	for i, layer := range l.Layers {
		if strings.TrimSpace(layer.ID) == "" {
			return fmt.Errorf("%w: layers[%d] id is required", ErrValidation, i)
		}
		switch layer.Type {
		case LayerTypeText:
			if strings.TrimSpace(layer.Content) == "" {
				return fmt.Errorf("%w: layers[%d] text layer requires content", ErrValidation, i)
			}
		case LayerTypeShape, LayerTypeSVG:
		default:
			return fmt.Errorf("%w: layers[%d] type %q is not recognised", ErrValidation, i, layer.Type)
		}
		if layer.Style == nil {
			return fmt.Errorf("%w: layers[%d] style is required", ErrValidation, i)
		}
	}
	return nil
}

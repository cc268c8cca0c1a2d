package domain

import (
	"fmt"
	"strings"
)

// Canvas dimensions are pinned regardless of what any model proposes.
const (
	CanvasWidth  = 1080
	CanvasHeight = 1440
)

const (
	FontWeightNormal = "normal"
	FontWeightBold   = "bold"
	FontWeightBlack  = "900"
)

const (
	EffectNone        = "none"
	EffectShadow      = "shadow"
	EffectStroke      = "stroke"
	EffectHighlight   = "background_highlight"
)

const (
	AlignLeft   = "left"
	AlignCenter = "center"
	AlignRight  = "right"
)

var allowedFontWeights = map[string]struct{}{
	FontWeightNormal: {},
	FontWeightBold:   {},
	FontWeightBlack:  {},
}

var allowedEffects = map[string]struct{}{
	EffectNone:      {},
	EffectShadow:    {},
	EffectStroke:    {},
	EffectHighlight: {},
}

var allowedAligns = map[string]struct{}{
	AlignLeft:   {},
	AlignCenter: {},
	AlignRight:  {},
}

var allowedIconShapes = map[string]struct{}{
	"star":      {},
	"sparkle":   {},
	"wave":      {},
	"underline": {},
	"circle":    {},
}

// IconShapeAllowed reports whether a decorative icon shape belongs to the
// fixed vocabulary.
func IconShapeAllowed(shape string) bool {
	_, ok := allowedIconShapes[shape]
	return ok
}

// AlignAllowed reports whether a horizontal alignment value is recognised.
func AlignAllowed(align string) bool {
	_, ok := allowedAligns[align]
	return ok
}

// EffectAllowed reports whether a text visual effect is recognised.
func EffectAllowed(effect string) bool {
	_, ok := allowedEffects[effect]
	return ok
}

// FontWeightAllowed reports whether a font weight is recognised.
func FontWeightAllowed(weight string) bool {
	_, ok := allowedFontWeights[weight]
	return ok
}

// VisualStrategy is the stage-two output: the image prompt plus the
// structured design plan the layout stage works from.
type VisualStrategy struct {
	SeedreamPrompt string     `json:"seedream_prompt_cn"`
	DesignPlan     DesignPlan `json:"design_plan"`
}

type DesignPlan struct {
	Canvas          CanvasSize     `json:"canvas"`
	Tone            string         `json:"tone"`
	BackgroundColor string         `json:"background_color_hex"`
	ColorPalette    ColorPalette   `json:"color_palette"`
	LayoutElements  []LayoutElement `json:"layout_elements"`
	Decorations     []Decoration   `json:"decorations"`
}

type CanvasSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type ColorPalette struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Accent    string `json:"accent"`
}

type LayoutElement struct {
	Type        string      `json:"type"`
	Content     string      `json:"content"`
	IsMainTitle bool        `json:"is_main_title"`
	StyleConfig StyleConfig `json:"style_config"`
}

type StyleConfig struct {
	FontFamily string   `json:"font_family"`
	FontSize   int      `json:"font_size"`
	FontWeight string   `json:"font_weight"`
	Color      string   `json:"color"`
	Opacity    float64  `json:"opacity,omitempty"`
	Position   Position `json:"position"`
	Effect     string   `json:"effect"`
}

type Position struct {
	Top   string `json:"top"`
	Left  string `json:"left"`
	Align string `json:"align"`
}

type Decoration struct {
	Type     string       `json:"type"`
	Shape    string       `json:"shape"`
	Color    string       `json:"color"`
	Position IconPosition `json:"position"`
	Size     int          `json:"size"`
}

type IconPosition struct {
	Top  string `json:"top"`
	Left string `json:"left"`
}

// Validate checks the visual-strategy schema after normalization.
func (v VisualStrategy) Validate() error {
	if strings.TrimSpace(v.SeedreamPrompt) == "" {
		return fmt.Errorf("%w: seedream_prompt_cn is required", ErrValidation)
	}
	return v.DesignPlan.Validate()
}

// Validate checks a design plan against the strict internal shape.
func (p DesignPlan) Validate() error {
	if p.Canvas.Width <= 0 || p.Canvas.Height <= 0 {
		return fmt.Errorf("%w: design plan canvas dimensions must be positive", ErrValidation)
	}
	if strings.TrimSpace(p.Tone) == "" {
		return fmt.Errorf("%w: design plan tone is required", ErrValidation)
	}
	if strings.TrimSpace(p.BackgroundColor) == "" {
		return fmt.Errorf("%w: design plan background_color_hex is required", ErrValidation)
	}
	if p.ColorPalette.Primary == "" || p.ColorPalette.Secondary == "" || p.ColorPalette.Accent == "" {
		return fmt.Errorf("%w: design plan color_palette must fill all three slots", ErrValidation)
	}
	for i, el := range p.LayoutElements {
		if el.Type != "text" {
			return fmt.Errorf("%w: layout_elements[%d] type must be text", ErrValidation, i)
		}
		if strings.TrimSpace(el.Content) == "" {
			return fmt.Errorf("%w: layout_elements[%d] content is required", ErrValidation, i)
		}
		if !FontWeightAllowed(el.StyleConfig.FontWeight) {
			return fmt.Errorf("%w: layout_elements[%d] font_weight %q is not recognised", ErrValidation, i, el.StyleConfig.FontWeight)
		}
		if !AlignAllowed(el.StyleConfig.Position.Align) {
			return fmt.Errorf("%w: layout_elements[%d] align %q is not recognised", ErrValidation, i, el.StyleConfig.Position.Align)
		}
		if !EffectAllowed(el.StyleConfig.Effect) {
			return fmt.Errorf("%w: layout_elements[%d] effect %q is not recognised", ErrValidation, i, el.StyleConfig.Effect)
		}
		if el.StyleConfig.FontSize <= 0 {
			return fmt.Errorf("%w: layout_elements[%d] font_size must be positive", ErrValidation, i)
		}
		if el.StyleConfig.Position.Top == "" || el.StyleConfig.Position.Left == "" {
			return fmt.Errorf("%w: layout_elements[%d] position is incomplete", ErrValidation, i)
		}
	}
	for i, d := range p.Decorations {
		if d.Type != "svg_icon" {
			return fmt.Errorf("%w: decorations[%d] type must be svg_icon", ErrValidation, i)
		}
		if !IconShapeAllowed(d.Shape) {
			return fmt.Errorf("%w: decorations[%d] shape %q is not recognised", ErrValidation, i, d.Shape)
		}
		if d.Size <= 0 {
			return fmt.Errorf("%w: decorations[%d] size must be positive", ErrValidation, i)
		}
	}
	return nil
}

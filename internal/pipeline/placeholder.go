package pipeline

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"rednote/internal/domain"
)

// PlaceholderImageURL is the deterministic stand-in background used when
// the image provider is unavailable.
const PlaceholderImageURL = "https://placehold.co/2304x3072/png?text=Seedream+2304x3072"

// sellingKeywords derives up to three short phrases from the input
// features, padding with the selling point when fewer than three exist.
func sellingKeywords(input domain.ProductInput) []string {
	keywords := make([]string, 0, 3)
	for _, f := range input.Features {
		if len(keywords) == 3 {
			break
		}
		keywords = append(keywords, f)
	}
	if len(keywords) < 3 && strings.TrimSpace(input.SellingPoint) != "" {
		keywords = append(keywords, input.SellingPoint)
	}
	return keywords
}

// CopyPlaceholder builds the deterministic stage-one fallback from the
// input alone; no network involved.
func CopyPlaceholder(input domain.ProductInput) domain.CopyResult {
	category := cases.Title(language.English).String(input.Category)
	return domain.CopyResult{
		ProductID: input.ProductID,
		Tone:      input.Tone,
		Title:     fmt.Sprintf("%s ✨ worth a closer look", input.Name),
		Content: fmt.Sprintf("Made for %s: %s.\nHighlights: %s.\nStand-in copy until the model takes over.",
			input.TargetAudience, input.SellingPoint, strings.Join(input.Features, "; ")),
		Tags:            []string{"#placeholder", "#pending-generation", "#RedNote", "#" + strings.ReplaceAll(category, " ", "")},
		SellingKeywords: sellingKeywords(input),
		SeedreamPrompt: fmt.Sprintf(
			"Soft morning light, %s product close-up for %s, clean background, top third left empty for text, ins style, 8K, tone: %s --no text, watermark, signature, logo, typography, words, cluttered, low quality",
			input.Name, input.TargetAudience, input.Tone),
	}
}

// VisualPlaceholder builds the deterministic stage-two fallback from the
// copy result, using the tone theme for palette and fonts.
func VisualPlaceholder(copy domain.CopyResult) domain.VisualStrategy {
	theme := themeForTone(copy.Tone)
	keywords := copy.SellingKeywords
	if len(keywords) > 3 {
		keywords = keywords[:3]
	}

	elements := make([]domain.LayoutElement, 0, len(keywords))
	for idx, keyword := range keywords {
		size := 36
		weight := domain.FontWeightBold
		if idx == 0 {
			size = 52
			weight = domain.FontWeightBlack
		}
		elements = append(elements, domain.LayoutElement{
			Type:        "text",
			Content:     keyword,
			IsMainTitle: idx == 0,
			StyleConfig: domain.StyleConfig{
				FontFamily: theme.BodyFont,
				FontSize:   size,
				FontWeight: weight,
				Color:      theme.Palette.Accent,
				Opacity:    0.9,
				Position: domain.Position{
					Top:   fmt.Sprintf("%d%%", 16+idx*12),
					Left:  "8%",
					Align: domain.AlignLeft,
				},
				Effect: domain.EffectShadow,
			},
		})
	}

	prompt := copy.SeedreamPrompt
	if strings.TrimSpace(prompt) == "" {
		prompt = fmt.Sprintf("Cover illustration for %q, tone: %s --no text, watermark", copy.Title, copy.Tone)
	}

	return domain.VisualStrategy{
		SeedreamPrompt: prompt,
		DesignPlan: domain.DesignPlan{
			Canvas:          domain.CanvasSize{Width: domain.CanvasWidth, Height: domain.CanvasHeight},
			Tone:            copy.Tone,
			BackgroundColor: theme.Background,
			ColorPalette:    theme.Palette,
			LayoutElements:  elements,
			Decorations: []domain.Decoration{
				{
					Type:     "svg_icon",
					Shape:    "sparkle",
					Color:    theme.Palette.Primary,
					Position: domain.IconPosition{Top: "12%", Left: "82%"},
					Size:     28,
				},
			},
		},
	}
}

// LayoutPlaceholder builds the deterministic stage-four fallback: a
// centered title plus one pill per selling keyword over the background.
func LayoutPlaceholder(copy domain.CopyResult, visual domain.VisualStrategy, backgroundImage string) domain.LayoutConfig {
	layers := []domain.Layer{
		{
			ID:      uuid.NewString(),
			Type:    domain.LayerTypeText,
			Content: copy.Title,
			Style: map[string]any{
				"position":   "absolute",
				"top":        "10%",
				"left":       "0",
				"width":      "100%",
				"textAlign":  "center",
				"fontFamily": themeForTone(copy.Tone).HeadingFont,
				"fontSize":   "64px",
				"fontWeight": 900,
				"color":      "#0f172a",
				"textShadow": "0 4px 10px rgba(0,0,0,0.12)",
				"zIndex":     10,
			},
		},
	}
	for idx, keyword := range copy.SellingKeywords {
		layers = append(layers, domain.Layer{
			ID:      uuid.NewString(),
			Type:    domain.LayerTypeText,
			Content: keyword,
			Style: map[string]any{
				"position":        "absolute",
				"top":             fmt.Sprintf("%d%%", 28+idx*12),
				"left":            "6%",
				"padding":         "12px 18px",
				"borderRadius":    "16px",
				"backgroundColor": "rgba(255,255,255,0.78)",
				"color":           "#111827",
				"fontSize":        "32px",
				"fontWeight":      700,
				"boxShadow":       "0 8px 24px rgba(0,0,0,0.08)",
			},
		})
	}

	return domain.LayoutConfig{
		Canvas: domain.Canvas{
			Width:           visual.DesignPlan.Canvas.Width,
			Height:          visual.DesignPlan.Canvas.Height,
			BackgroundImage: backgroundImage,
			Tone:            visual.DesignPlan.Tone,
			OverlayOpacity:  0.15,
		},
		Layers: layers,
	}
}

package pipeline

import (
	"fmt"
	"strings"

	"rednote/internal/domain"
)

// toneTheme bundles the per-tone visual fallbacks used whenever the model
// omits palette or font information.
type toneTheme struct {
	Palette     domain.ColorPalette
	Background  string
	HeadingFont string
	BodyFont    string
}

var toneThemes = map[string]toneTheme{
	domain.ToneWarmHealing: {
		Palette:     domain.ColorPalette{Primary: "#f59e0b", Secondary: "#f1f5f9", Accent: "#111827"},
		Background:  "#f7f4ef",
		HeadingFont: "ZCOOL KuaiLe",
		BodyFont:    "ZCOOL KuaiLe",
	},
	domain.TonePlayful: {
		Palette:     domain.ColorPalette{Primary: "#ff6b6b", Secondary: "#fff7ed", Accent: "#18181b"},
		Background:  "#fff1f2",
		HeadingFont: "ZCOOL QingKe HuangYou",
		BodyFont:    "ZCOOL KuaiLe",
	},
	domain.ToneProReview: {
		Palette:     domain.ColorPalette{Primary: "#2563eb", Secondary: "#e2e8f0", Accent: "#0f172a"},
		Background:  "#f8fafc",
		HeadingFont: "Noto Sans SC",
		BodyFont:    "Noto Sans SC",
	},
	domain.ToneEndorsement: {
		Palette:     domain.ColorPalette{Primary: "#f43f5e", Secondary: "#fefce8", Accent: "#111827"},
		Background:  "#fff7ed",
		HeadingFont: "ZCOOL KuaiLe",
		BodyFont:    "ZCOOL KuaiLe",
	},
	domain.ToneMinimalist: {
		Palette:     domain.ColorPalette{Primary: "#111827", Secondary: "#f5f5f4", Accent: "#44403c"},
		Background:  "#fafaf9",
		HeadingFont: "Noto Serif SC",
		BodyFont:    "Noto Sans SC",
	},
}

func themeForTone(tone string) toneTheme {
	if theme, ok := toneThemes[tone]; ok {
		return theme
	}
	return toneThemes[domain.ToneWarmHealing]
}

func contextForTone(tone string) NormalizeContext {
	theme := themeForTone(tone)
	return NormalizeContext{
		Palette:     theme.Palette,
		Background:  theme.Background,
		HeadingFont: theme.HeadingFont,
		BodyFont:    theme.BodyFont,
	}
}

// visualDialect is one named conversion strategy for the stage-two model
// response. Strategies are tried in a fixed priority order; each either
// produces a valid VisualStrategy or declines with nil.
type visualDialect struct {
	name    string
	convert func(m map[string]any, tone string) *domain.VisualStrategy
}

var visualDialects = []visualDialect{
	{name: "design_plan", convert: fromDesignPlanDialect},
	{name: "layout_blueprint", convert: fromBlueprintDialect},
}

func seedreamPromptFrom(m map[string]any) string {
	return firstString(stringField(m, "seedream_prompt_cn"), stringField(m, "seedream_prompt"))
}

// fromDesignPlanDialect handles responses already shaped like the target:
// a design_plan field (object or nested JSON string) next to the prompt.
func fromDesignPlanDialect(m map[string]any, tone string) *domain.VisualStrategy {
	rawPlan, ok := m["design_plan"]
	if !ok {
		return nil
	}
	promptText := seedreamPromptFrom(m)
	if promptText == "" {
		return nil
	}
	plan := NormalizeDesignPlan(rawPlan, tone, contextForTone(tone))
	if plan == nil {
		return nil
	}
	return &domain.VisualStrategy{SeedreamPrompt: promptText, DesignPlan: *plan}
}

// fromBlueprintDialect synthesizes a design plan from the looser
// layout_blueprint / tone_color_palette / font_system response shape.
func fromBlueprintDialect(m map[string]any, tone string) *domain.VisualStrategy {
	promptText := seedreamPromptFrom(m)
	if promptText == "" {
		return nil
	}

	theme := themeForTone(tone)
	palette, _ := m["tone_color_palette"].(map[string]any)
	fonts, _ := m["font_system"].(map[string]any)

	headingFont := firstString(stringField(fonts, "heading_font"), theme.HeadingFont)
	bodyFont := firstString(stringField(fonts, "body_font"), theme.BodyFont)

	primary := firstString(stringField(palette, "primary_bg"), stringField(palette, "primary_color"), theme.Palette.Primary)
	secondary := firstString(stringField(palette, "secondary_accent"), stringField(palette, "secondary_color"), theme.Palette.Secondary)
	accent := firstString(stringField(palette, "highlight_accent"), stringField(palette, "accent_color"), theme.Palette.Accent)

	plan := domain.DesignPlan{
		Canvas:          domain.CanvasSize{Width: domain.CanvasWidth, Height: domain.CanvasHeight},
		Tone:            tone,
		BackgroundColor: firstString(stringField(palette, "primary_bg"), stringField(palette, "primary_color"), theme.Background),
		ColorPalette:    domain.ColorPalette{Primary: primary, Secondary: secondary, Accent: accent},
		LayoutElements:  []domain.LayoutElement{},
		Decorations:     []domain.Decoration{},
	}

	blueprint, _ := m["layout_blueprint"].([]any)

	// Keep only text entries carrying content; entries without text are
	// dropped before main-title selection so index 0 is the first usable
	// element.
	type bpEntry struct {
		id      string
		content string
		pos     map[string]any
		style   map[string]any
	}
	var entries []bpEntry
	for _, item := range blueprint {
		im, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if t := stringField(im, "type"); t != "" && t != "text" {
			continue
		}
		content := strings.TrimSpace(stringField(im, "content"))
		if content == "" {
			continue
		}
		pos, _ := im["position"].(map[string]any)
		style, _ := im["style"].(map[string]any)
		entries = append(entries, bpEntry{id: stringField(im, "id"), content: content, pos: pos, style: style})
	}

	// An element explicitly id'd as the title section is the main title
	// regardless of position; otherwise the first element is.
	mainIdx := 0
	for i, e := range entries {
		if e.id == "title_section" {
			mainIdx = i
			break
		}
	}

	for idx, e := range entries {
		isMain := idx == mainIdx
		fontFallback := bodyFont
		defaultSize := 32
		defaultWeight := domain.FontWeightBold
		if isMain {
			fontFallback = headingFont
			defaultSize = 52
			defaultWeight = domain.FontWeightBlack
		}

		align := domain.AlignLeft
		switch stringField(e.style, "text_align") {
		case "center":
			align = domain.AlignCenter
		case "right":
			align = domain.AlignRight
		}

		top := percentValue(e.pos["top"], "")
		if top == "" {
			if _, hasBottom := e.pos["bottom"]; hasBottom {
				top = "10%"
			} else {
				top = fmt.Sprintf("%d%%", 6+idx*12)
			}
		}
		left := percentValue(e.pos["left"], "8%")

		weight := stringField(e.style, "font_weight")
		if !domain.FontWeightAllowed(weight) {
			weight = defaultWeight
		}

		opacity := floatField(e.style, "opacity")
		if opacity <= 0 || opacity > 1 {
			opacity = 0.9
		}

		plan.LayoutElements = append(plan.LayoutElements, domain.LayoutElement{
			Type:        "text",
			Content:     e.content,
			IsMainTitle: isMain,
			StyleConfig: domain.StyleConfig{
				FontFamily: firstString(stringField(e.style, "font_family"), fontFallback, toneFont(tone)),
				FontSize:   fontSizeValue(e.style["font_size"], defaultSize),
				FontWeight: weight,
				Color:      firstString(stringField(e.style, "color"), accent, "#111827"),
				Opacity:    opacity,
				Position:   domain.Position{Top: top, Left: left, Align: align},
				Effect:     domain.EffectShadow,
			},
		})
	}

	candidate := domain.VisualStrategy{SeedreamPrompt: promptText, DesignPlan: plan}
	if err := candidate.Validate(); err != nil {
		return nil
	}
	return &candidate
}

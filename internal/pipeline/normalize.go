package pipeline

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"rednote/internal/domain"
)

// TryParseJSON extracts a JSON object from raw model text. Four strategies
// are tried in order: direct parse, a fenced code block wrapping the whole
// text, a fenced block embedded in surrounding prose, and finally the
// substring between the first '{' and the last '}'. Returns nil when every
// strategy fails; it never panics and never returns an error.
func TryParseJSON(text string) map[string]any {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	candidates := []string{trimmed}
	if inner, ok := fencedInterior(trimmed); ok {
		candidates = append(candidates, inner)
	}
	if start := strings.Index(trimmed, "{"); start >= 0 {
		if end := strings.LastIndex(trimmed, "}"); end > start {
			candidates = append(candidates, trimmed[start:end+1])
		}
	}

	for _, candidate := range candidates {
		var out map[string]any
		if err := json.Unmarshal([]byte(candidate), &out); err == nil && out != nil {
			return out
		}
	}
	return nil
}

// fencedInterior returns the text between the first and last ``` markers,
// with an optional json language tag stripped. Handles both a fully fenced
// payload and a fence buried in commentary.
func fencedInterior(text string) (string, bool) {
	first := strings.Index(text, "```")
	if first < 0 {
		return "", false
	}
	rest := text[first+3:]
	for _, tag := range []string{"json", "JSON"} {
		rest = strings.TrimPrefix(rest, tag)
	}
	last := strings.LastIndex(rest, "```")
	if last < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:last]), true
}

// NormalizeContext carries the caller-supplied fallbacks applied while
// rebuilding a loosely-typed design plan.
type NormalizeContext struct {
	Palette     domain.ColorPalette
	Background  string
	HeadingFont string
	BodyFont    string
}

// NormalizeDesignPlan rebuilds a loosely-typed design-plan value (possibly
// a JSON string needing a nested parse) into the strict DesignPlan shape.
// Every field has a typed fallback; the canvas is pinned to 1080x1440 and
// the tone to the upstream tone no matter what the input claims. Returns
// nil when the input is unusable or the rebuilt plan fails validation,
// signaling the caller to take an alternate construction path.
func NormalizeDesignPlan(raw any, tone string, nctx NormalizeContext) *domain.DesignPlan {
	var m map[string]any
	switch v := raw.(type) {
	case map[string]any:
		m = v
	case string:
		m = TryParseJSON(v)
	}
	if m == nil {
		return nil
	}

	plan := domain.DesignPlan{
		Canvas:          domain.CanvasSize{Width: domain.CanvasWidth, Height: domain.CanvasHeight},
		Tone:            tone,
		BackgroundColor: firstString(stringField(m, "background_color_hex"), nctx.Background, "#f7f4ef"),
		ColorPalette:    normalizePalette(m["color_palette"], nctx.Palette),
		LayoutElements:  []domain.LayoutElement{},
		Decorations:     []domain.Decoration{},
	}

	if elements, ok := m["layout_elements"].([]any); ok {
		idx := 0
		for _, el := range elements {
			em, ok := el.(map[string]any)
			if !ok {
				continue
			}
			content := strings.TrimSpace(stringField(em, "content"))
			if content == "" {
				continue
			}
			isMain := boolField(em, "is_main_title")
			style, _ := em["style_config"].(map[string]any)
			plan.LayoutElements = append(plan.LayoutElements, domain.LayoutElement{
				Type:        "text",
				Content:     content,
				IsMainTitle: isMain,
				StyleConfig: normalizeStyle(style, isMain, idx, tone, nctx),
			})
			idx++
		}
	}

	if decorations, ok := m["decorations"].([]any); ok {
		for _, dec := range decorations {
			dm, ok := dec.(map[string]any)
			if !ok {
				continue
			}
			plan.Decorations = append(plan.Decorations, normalizeDecoration(dm, nctx))
		}
	}

	if err := plan.Validate(); err != nil {
		return nil
	}
	return &plan
}

func normalizePalette(raw any, fallback domain.ColorPalette) domain.ColorPalette {
	pm, _ := raw.(map[string]any)
	return domain.ColorPalette{
		Primary:   firstString(stringField(pm, "primary"), fallback.Primary, "#f59e0b"),
		Secondary: firstString(stringField(pm, "secondary"), fallback.Secondary, "#f1f5f9"),
		Accent:    firstString(stringField(pm, "accent"), fallback.Accent, "#111827"),
	}
}

func normalizeStyle(style map[string]any, isMain bool, idx int, tone string, nctx NormalizeContext) domain.StyleConfig {
	defaultSize := 32
	defaultWeight := domain.FontWeightBold
	fontFallback := nctx.BodyFont
	if isMain {
		defaultSize = 52
		defaultWeight = domain.FontWeightBlack
		fontFallback = nctx.HeadingFont
	}

	font := firstString(stringField(style, "font_family"), fontFallback, toneFont(tone))

	weight := stringField(style, "font_weight")
	if !domain.FontWeightAllowed(weight) {
		weight = defaultWeight
	}

	align := stringField(style, "align")
	if align == "" {
		if pos, ok := style["position"].(map[string]any); ok {
			align = stringField(pos, "align")
		}
	}
	if !domain.AlignAllowed(align) {
		align = domain.AlignLeft
	}

	effect := stringField(style, "effect")
	if !domain.EffectAllowed(effect) {
		effect = domain.EffectShadow
	}

	var top, left string
	if pos, ok := style["position"].(map[string]any); ok {
		top = percentValue(pos["top"], "")
		left = percentValue(pos["left"], "")
	}
	if top == "" {
		// evenly spaced vertical stack when the model omits positions
		top = fmt.Sprintf("%d%%", 6+idx*12)
	}
	if left == "" {
		left = "8%"
	}

	opacity := floatField(style, "opacity")
	if opacity <= 0 || opacity > 1 {
		opacity = 0.9
	}

	return domain.StyleConfig{
		FontFamily: font,
		FontSize:   fontSizeValue(style["font_size"], defaultSize),
		FontWeight: weight,
		Color:      firstString(stringField(style, "color"), nctx.Palette.Accent, "#111827"),
		Opacity:    opacity,
		Position:   domain.Position{Top: top, Left: left, Align: align},
		Effect:     effect,
	}
}

func normalizeDecoration(dm map[string]any, nctx NormalizeContext) domain.Decoration {
	shape := stringField(dm, "shape")
	if !domain.IconShapeAllowed(shape) {
		shape = "star"
	}
	size := int(floatField(dm, "size"))
	if size <= 0 {
		size = 28
	}
	var top, left string
	if pos, ok := dm["position"].(map[string]any); ok {
		top = percentValue(pos["top"], "")
		left = percentValue(pos["left"], "")
	}
	if top == "" {
		top = "12%"
	}
	if left == "" {
		left = "82%"
	}
	return domain.Decoration{
		Type:     "svg_icon",
		Shape:    shape,
		Color:    firstString(stringField(dm, "color"), nctx.Palette.Primary, "#f59e0b"),
		Position: domain.IconPosition{Top: top, Left: left},
		Size:     size,
	}
}

// fontSizeValue accepts either a bare number or a pixel-suffixed string
// ("52px") and resolves it to an integer.
func fontSizeValue(raw any, fallback int) int {
	switch v := raw.(type) {
	case float64:
		if v > 0 {
			return int(v)
		}
	case string:
		digits := strings.Builder{}
		for _, r := range v {
			if r >= '0' && r <= '9' {
				digits.WriteRune(r)
			}
		}
		if n, err := strconv.Atoi(digits.String()); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

// percentValue normalizes a bare number or string into a percentage string.
func percentValue(raw any, fallback string) string {
	switch v := raw.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64) + "%"
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return fallback
		}
		if strings.HasSuffix(s, "%") || strings.HasSuffix(s, "px") {
			return s
		}
		if _, err := strconv.ParseFloat(s, 64); err == nil {
			return s + "%"
		}
		return s
	}
	return fallback
}

func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	if v, ok := m[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func boolField(m map[string]any, key string) bool {
	if m == nil {
		return false
	}
	v, _ := m[key].(bool)
	return v
}

func floatField(m map[string]any, key string) float64 {
	if m == nil {
		return 0
	}
	switch v := m[key].(type) {
	case float64:
		return v
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return 0
}

func firstString(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func toneFont(tone string) string {
	if tone == domain.TonePlayful {
		return "ZCOOL QingKe HuangYou"
	}
	return "ZCOOL KuaiLe"
}

// decodeInto remarshals a loosely-typed map into a typed value. Used at
// the schema boundary after TryParseJSON.
func decodeInto[T any](m map[string]any) (T, error) {
	var zero T
	raw, err := json.Marshal(m)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", domain.ErrParse, err)
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, fmt.Errorf("%w: %v", domain.ErrParse, err)
	}
	return out, nil
}

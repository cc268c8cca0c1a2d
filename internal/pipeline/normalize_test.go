package pipeline

import (
	"reflect"
	"testing"

	"rednote/internal/domain"
)

func TestTryParseJSON(t *testing.T) {
	want := map[string]any{"a": float64(1)}
	cases := []struct {
		name string
		in   string
		want map[string]any
	}{
		{"direct", `{"a":1}`, want},
		{"fenced", "```json\n{\"a\":1}\n```", want},
		{"fenced mid text", "Here is the result:\n```\n{\"a\":1}\n```\nThanks", want},
		{"not json", "not json at all", nil},
		{"brace slice", `prefix {"a":1} suffix`, want},
		{"empty", "   ", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := TryParseJSON(tc.in)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("TryParseJSON(%q) = %#v, want %#v", tc.in, got, tc.want)
			}
		})
	}
}

func TestTryParseJSONIdempotent(t *testing.T) {
	in := "```json\n{\"a\":1}\n```"
	first := TryParseJSON(in)
	second := TryParseJSON(in)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("not idempotent: %#v vs %#v", first, second)
	}
}

func TestNormalizeDesignPlanMinimalInput(t *testing.T) {
	nctx := contextForTone(domain.ToneWarmHealing)
	plan := NormalizeDesignPlan(map[string]any{}, domain.ToneWarmHealing, nctx)
	if plan == nil {
		t.Fatal("NormalizeDesignPlan returned nil for minimal input")
	}
	if plan.Canvas.Width != 1080 || plan.Canvas.Height != 1440 {
		t.Fatalf("canvas = %+v, want 1080x1440", plan.Canvas)
	}
	if plan.Tone != domain.ToneWarmHealing {
		t.Fatalf("tone = %q", plan.Tone)
	}
	if len(plan.LayoutElements) != 0 || len(plan.Decorations) != 0 {
		t.Fatalf("expected empty elements/decorations, got %d/%d", len(plan.LayoutElements), len(plan.Decorations))
	}
	if err := plan.Validate(); err != nil {
		t.Fatalf("minimal plan fails validation: %v", err)
	}
}

func TestNormalizeDesignPlanNestedJSONString(t *testing.T) {
	raw := `{"canvas":{"width":500,"height":500},"layout_elements":[{"content":"Big","is_main_title":true,"style_config":{"font_size":"48px","position":{"top":12,"left":"8"}}}]}`
	plan := NormalizeDesignPlan(raw, domain.TonePlayful, contextForTone(domain.TonePlayful))
	if plan == nil {
		t.Fatal("NormalizeDesignPlan returned nil")
	}
	// model-proposed canvas is discarded
	if plan.Canvas.Width != 1080 || plan.Canvas.Height != 1440 {
		t.Fatalf("canvas = %+v", plan.Canvas)
	}
	el := plan.LayoutElements[0]
	if el.StyleConfig.FontSize != 48 {
		t.Fatalf("font_size = %d, want 48", el.StyleConfig.FontSize)
	}
	if el.StyleConfig.Position.Top != "12%" {
		t.Fatalf("top = %q, want 12%%", el.StyleConfig.Position.Top)
	}
	if el.StyleConfig.Position.Left != "8%" {
		t.Fatalf("left = %q, want 8%%", el.StyleConfig.Position.Left)
	}
	if el.StyleConfig.FontWeight != domain.FontWeightBlack {
		t.Fatalf("weight = %q, want 900 for main title", el.StyleConfig.FontWeight)
	}
}

func TestNormalizeDesignPlanWhitelists(t *testing.T) {
	raw := map[string]any{
		"layout_elements": []any{
			map[string]any{
				"content": "text",
				"style_config": map[string]any{
					"font_weight": "extra-heavy",
					"effect":      "glitter",
					"position":    map[string]any{"top": "5%", "left": "5%", "align": "diagonal"},
				},
			},
		},
		"decorations": []any{
			map[string]any{"shape": "hexagon", "size": float64(20)},
		},
	}
	plan := NormalizeDesignPlan(raw, domain.ToneWarmHealing, contextForTone(domain.ToneWarmHealing))
	if plan == nil {
		t.Fatal("NormalizeDesignPlan returned nil")
	}
	el := plan.LayoutElements[0]
	if el.StyleConfig.FontWeight != domain.FontWeightBold {
		t.Fatalf("weight = %q, want bold default", el.StyleConfig.FontWeight)
	}
	if el.StyleConfig.Effect != domain.EffectShadow {
		t.Fatalf("effect = %q, want shadow default", el.StyleConfig.Effect)
	}
	if el.StyleConfig.Position.Align != domain.AlignLeft {
		t.Fatalf("align = %q, want left default", el.StyleConfig.Position.Align)
	}
	if plan.Decorations[0].Shape != "star" {
		t.Fatalf("shape = %q, want star default", plan.Decorations[0].Shape)
	}
}

func TestNormalizeDesignPlanDropsEmptyContent(t *testing.T) {
	raw := map[string]any{
		"layout_elements": []any{
			map[string]any{"content": "   "},
			map[string]any{"content": "kept"},
		},
	}
	plan := NormalizeDesignPlan(raw, domain.ToneWarmHealing, contextForTone(domain.ToneWarmHealing))
	if plan == nil {
		t.Fatal("NormalizeDesignPlan returned nil")
	}
	if len(plan.LayoutElements) != 1 || plan.LayoutElements[0].Content != "kept" {
		t.Fatalf("elements = %+v", plan.LayoutElements)
	}
}

func TestNormalizeDesignPlanUnusableInput(t *testing.T) {
	if NormalizeDesignPlan(42, domain.ToneWarmHealing, NormalizeContext{}) != nil {
		t.Fatal("numeric input should yield nil")
	}
	if NormalizeDesignPlan("not json", domain.ToneWarmHealing, NormalizeContext{}) != nil {
		t.Fatal("unparseable string should yield nil")
	}
}

func blueprintEntry(id, content string) map[string]any {
	return map[string]any{"id": id, "type": "text", "content": content}
}

func TestBlueprintMainTitleDefaultsToFirst(t *testing.T) {
	m := map[string]any{
		"seedream_prompt_cn": "a prompt",
		"layout_blueprint": []any{
			blueprintEntry("a", "first"),
			blueprintEntry("b", "second"),
		},
	}
	vs := fromBlueprintDialect(m, domain.ToneWarmHealing)
	if vs == nil {
		t.Fatal("fromBlueprintDialect returned nil")
	}
	if !vs.DesignPlan.LayoutElements[0].IsMainTitle {
		t.Fatal("first element should be main title by default")
	}
	if vs.DesignPlan.LayoutElements[1].IsMainTitle {
		t.Fatal("second element should not be main title")
	}
}

func TestBlueprintMainTitleHonorsTitleSectionID(t *testing.T) {
	m := map[string]any{
		"seedream_prompt_cn": "a prompt",
		"layout_blueprint": []any{
			blueprintEntry("a", "first"),
			blueprintEntry("title_section", "the real title"),
		},
	}
	vs := fromBlueprintDialect(m, domain.ToneWarmHealing)
	if vs == nil {
		t.Fatal("fromBlueprintDialect returned nil")
	}
	if vs.DesignPlan.LayoutElements[0].IsMainTitle {
		t.Fatal("first element should not be main title when title_section exists")
	}
	if !vs.DesignPlan.LayoutElements[1].IsMainTitle {
		t.Fatal("title_section element should be main title regardless of position")
	}
}

func TestBlueprintDialectRequiresPrompt(t *testing.T) {
	m := map[string]any{"layout_blueprint": []any{blueprintEntry("a", "x")}}
	if fromBlueprintDialect(m, domain.ToneWarmHealing) != nil {
		t.Fatal("missing seedream prompt should decline")
	}
}

func TestDesignPlanDialectAcceptsAlternatePromptKey(t *testing.T) {
	m := map[string]any{
		"seedream_prompt": "fallback key",
		"design_plan":     map[string]any{},
	}
	vs := fromDesignPlanDialect(m, domain.ToneWarmHealing)
	if vs == nil {
		t.Fatal("fromDesignPlanDialect returned nil")
	}
	if vs.SeedreamPrompt != "fallback key" {
		t.Fatalf("prompt = %q", vs.SeedreamPrompt)
	}
}

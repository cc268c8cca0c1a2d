// Package pipeline runs the four-stage generation chain: marketing copy,
// visual strategy, background image, final layout. Stages execute strictly
// sequentially; each stage's input is the previous stage's validated
// output.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/rs/zerolog"

	"rednote/internal/domain"
	"rednote/internal/imgproxy"
	"rednote/internal/infra"
	"rednote/internal/prompt"
	"rednote/internal/providers/image"
	"rednote/internal/providers/llm"
)

// Policy selects the pipeline-wide failure behavior. It is applied
// uniformly to all four stages; mixing policies per stage produces
// inconsistent caller-facing guarantees and is deliberately impossible.
type Policy int

const (
	// PolicyGraceful computes a deterministic placeholder per stage,
	// attempts the network path only when a credential is present, and
	// reverts to the placeholder on any model-path failure.
	PolicyGraceful Policy = iota
	// PolicyHardFail aborts the run on the first stage failure and
	// surfaces the error; retrying restarts from stage one.
	PolicyHardFail
)

const (
	tempCopy   = 0.8
	tempVisual = 0.7
	tempLayout = 0.65
)

// ChatCaller abstracts the chat-completion adapter for testing.
type ChatCaller interface {
	ChatCompletion(ctx context.Context, req llm.Request) (string, error)
}

// ImageCaller abstracts the image-generation adapter for testing.
type ImageCaller interface {
	Generate(ctx context.Context, req image.Request) (string, error)
}

type Options struct {
	Loader   *prompt.Loader
	Chat     ChatCaller
	Image    ImageCaller
	Logger   zerolog.Logger
	Policy   Policy
	OnStatus func(domain.Status)

	// ResolveLLM/ResolveImage default to the environment resolvers and
	// are read fresh on every invocation.
	ResolveLLM   func() infra.ProviderConfig
	ResolveImage func() infra.ProviderConfig
}

type Pipeline struct {
	loader       *prompt.Loader
	chat         ChatCaller
	image        ImageCaller
	log          zerolog.Logger
	policy       Policy
	onStatus     func(domain.Status)
	resolveLLM   func() infra.ProviderConfig
	resolveImage func() infra.ProviderConfig
}

func New(opts Options) *Pipeline {
	p := &Pipeline{
		loader:       opts.Loader,
		chat:         opts.Chat,
		image:        opts.Image,
		log:          opts.Logger,
		policy:       opts.Policy,
		onStatus:     opts.OnStatus,
		resolveLLM:   opts.ResolveLLM,
		resolveImage: opts.ResolveImage,
	}
	if p.loader == nil {
		p.loader = prompt.NewLoader(".")
	}
	if p.chat == nil {
		p.chat = llm.NewClient(nil, nil)
	}
	if p.image == nil {
		p.image = image.NewClient(nil, nil)
	}
	if p.resolveLLM == nil {
		p.resolveLLM = infra.ResolveLLMConfig
	}
	if p.resolveImage == nil {
		p.resolveImage = infra.ResolveImageConfig
	}
	return p
}

func (p *Pipeline) setStatus(s domain.Status) {
	if p.onStatus != nil {
		p.onStatus(s)
	}
}

// GenerateAll runs the whole chain. Input validation failures abort before
// any network call under either policy.
func (p *Pipeline) GenerateAll(ctx context.Context, input domain.ProductInput) (*domain.GenerateResult, error) {
	if err := input.Validate(); err != nil {
		p.setStatus(domain.StatusFailed)
		return nil, err
	}

	p.setStatus(domain.StatusGeneratingCopy)
	copyResult, err := p.GenerateCopy(ctx, input)
	if err != nil {
		p.setStatus(domain.StatusFailed)
		return nil, err
	}
	p.log.Info().Str("product_id", copyResult.ProductID).Str("title", copyResult.Title).Msg("copy stage done")

	p.setStatus(domain.StatusGeneratingStrategy)
	visual, err := p.GenerateVisualStrategy(ctx, copyResult)
	if err != nil {
		p.setStatus(domain.StatusFailed)
		return nil, err
	}
	p.log.Info().Int("layout_elements", len(visual.DesignPlan.LayoutElements)).Msg("visual stage done")

	p.setStatus(domain.StatusGeneratingImage)
	backgroundImage, err := p.GenerateImage(ctx, copyResult, visual)
	if err != nil {
		p.setStatus(domain.StatusFailed)
		return nil, err
	}
	p.log.Info().Str("background_image", backgroundImage).Msg("image stage done")

	p.setStatus(domain.StatusGeneratingLayout)
	layout, err := p.GenerateLayout(ctx, copyResult, visual, backgroundImage)
	if err != nil {
		p.setStatus(domain.StatusFailed)
		return nil, err
	}
	p.log.Info().Int("layers", len(layout.Layers)).Msg("layout stage done")

	p.setStatus(domain.StatusCompleted)
	return &domain.GenerateResult{Copy: copyResult, Visual: visual, Layout: layout}, nil
}

// GenerateCopy is stage one: structured marketing copy from the product input.
func (p *Pipeline) GenerateCopy(ctx context.Context, input domain.ProductInput) (domain.CopyResult, error) {
	if err := input.Validate(); err != nil {
		return domain.CopyResult{}, err
	}
	fallback := CopyPlaceholder(input)

	cfg := p.resolveLLM()
	if !cfg.HasCredentials() {
		return fallback, p.stageFailure("copy", fmt.Errorf("%w: missing llm credential", domain.ErrConfiguration))
	}

	pair, err := p.stagePair("prompt1", builtinCopyPrompt)
	if err != nil {
		return domain.CopyResult{}, err
	}
	inputJSON, _ := json.Marshal(input)
	userPrompt := prompt.Render(pair.User, map[string]string{"product_json": string(inputJSON)})

	content, err := p.chat.ChatCompletion(ctx, llm.Request{
		System:      pair.System,
		User:        userPrompt,
		Temperature: tempCopy,
		Config:      cfg,
	})
	if err != nil {
		return fallback, p.stageFailure("copy", err)
	}

	parsed := TryParseJSON(content)
	if parsed == nil {
		return fallback, p.stageFailure("copy", fmt.Errorf("%w: copy response", domain.ErrParse))
	}
	result, err := decodeInto[domain.CopyResult](parsed)
	if err != nil {
		return fallback, p.stageFailure("copy", err)
	}
	if err := result.Validate(); err != nil {
		return fallback, p.stageFailure("copy", err)
	}
	return result, nil
}

// GenerateVisualStrategy is stage two: the image prompt plus design plan.
// The response may arrive in either known dialect; conversion strategies
// run in fixed priority order and the canvas and tone are pinned no matter
// what the model proposed.
func (p *Pipeline) GenerateVisualStrategy(ctx context.Context, copyResult domain.CopyResult) (domain.VisualStrategy, error) {
	fallback := VisualPlaceholder(copyResult)

	cfg := p.resolveLLM()
	if !cfg.HasCredentials() {
		return fallback, p.stageFailure("visual", fmt.Errorf("%w: missing llm credential", domain.ErrConfiguration))
	}

	pair, err := p.stagePair("prompt2", builtinVisualPrompt)
	if err != nil {
		return domain.VisualStrategy{}, err
	}
	copyJSON, _ := json.Marshal(copyResult)
	userPrompt := prompt.Render(pair.User, map[string]string{"copy_json": string(copyJSON)})

	content, err := p.chat.ChatCompletion(ctx, llm.Request{
		System:      pair.System,
		User:        userPrompt,
		Temperature: tempVisual,
		Config:      cfg,
	})
	if err != nil {
		return fallback, p.stageFailure("visual", err)
	}

	parsed := TryParseJSON(content)
	if parsed == nil {
		return fallback, p.stageFailure("visual", fmt.Errorf("%w: visual response", domain.ErrParse))
	}

	for _, dialect := range visualDialects {
		if converted := dialect.convert(parsed, copyResult.Tone); converted != nil {
			converted.DesignPlan.Canvas = domain.CanvasSize{Width: domain.CanvasWidth, Height: domain.CanvasHeight}
			converted.DesignPlan.Tone = copyResult.Tone
			p.log.Debug().Str("dialect", dialect.name).Msg("visual response converted")
			return *converted, nil
		}
	}
	return fallback, p.stageFailure("visual", fmt.Errorf("%w: no dialect accepted the visual response", domain.ErrValidation))
}

// GenerateImage is stage three: synthesize the background and rewrite its
// URL through the same-origin proxy.
func (p *Pipeline) GenerateImage(ctx context.Context, copyResult domain.CopyResult, visual domain.VisualStrategy) (string, error) {
	promptText := firstString(copyResult.SeedreamPrompt, visual.SeedreamPrompt)

	cfg := p.resolveImage()
	if !cfg.HasCredentials() {
		url := imgproxy.ToProxyImageURL(PlaceholderImageURL)
		return url, p.stageFailure("image", fmt.Errorf("%w: missing image credential", domain.ErrConfiguration))
	}

	url, err := p.image.Generate(ctx, image.Request{Prompt: promptText, Config: cfg})
	if err != nil {
		return imgproxy.ToProxyImageURL(PlaceholderImageURL), p.stageFailure("image", err)
	}
	return imgproxy.ToProxyImageURL(url), nil
}

// GenerateLayout is stage four: the renderable layer stack. After schema
// validation succeeds, the canvas backgroundImage and tone are forcibly
// overwritten with the authoritative upstream values; the model's claims
// for those two fields are discarded, not merely defaulted.
func (p *Pipeline) GenerateLayout(ctx context.Context, copyResult domain.CopyResult, visual domain.VisualStrategy, backgroundImage string) (domain.LayoutConfig, error) {
	fallback := LayoutPlaceholder(copyResult, visual, backgroundImage)

	cfg := p.resolveLLM()
	if !cfg.HasCredentials() {
		return fallback, p.stageFailure("layout", fmt.Errorf("%w: missing llm credential", domain.ErrConfiguration))
	}

	pair, err := p.stagePair("prompt3", builtinLayoutPrompt)
	if err != nil {
		return domain.LayoutConfig{}, err
	}
	planJSON, _ := json.Marshal(visual.DesignPlan)
	copyExcerpt, _ := json.Marshal(map[string]any{"title": copyResult.Title, "tags": copyResult.Tags})
	userPrompt := prompt.Render(pair.User, map[string]string{
		"design_plan":      string(planJSON),
		"background_image": backgroundImage,
		"copy_json":        string(copyExcerpt),
	})

	content, err := p.chat.ChatCompletion(ctx, llm.Request{
		System:      pair.System,
		User:        userPrompt,
		Temperature: tempLayout,
		Config:      cfg,
	})
	if err != nil {
		return fallback, p.stageFailure("layout", err)
	}

	parsed := TryParseJSON(content)
	if parsed == nil {
		return fallback, p.stageFailure("layout", fmt.Errorf("%w: layout response", domain.ErrParse))
	}
	layout, err := decodeInto[domain.LayoutConfig](parsed)
	if err != nil {
		return fallback, p.stageFailure("layout", err)
	}
	if err := layout.Validate(); err != nil {
		return fallback, p.stageFailure("layout", err)
	}

	// Post-validation sanitization: the model can hallucinate or omit
	// these two fields, so the authoritative values always win.
	layout.Canvas.BackgroundImage = backgroundImage
	layout.Canvas.Tone = visual.DesignPlan.Tone
	return layout, nil
}

// stageFailure implements the uniform failure policy: under PolicyHardFail
// the error propagates; under PolicyGraceful it is logged and swallowed so
// the caller receives the placeholder computed before the attempt.
func (p *Pipeline) stageFailure(stage string, cause error) error {
	if p.policy == PolicyHardFail {
		return fmt.Errorf("%s stage: %w", stage, cause)
	}
	p.log.Warn().Str("stage", stage).Err(cause).Msg("falling back to placeholder")
	return nil
}

// stagePair loads the stage template, substituting the compiled-in default
// when the deployment ships no file. A malformed template is an operator
// error and aborts the run under either policy.
func (p *Pipeline) stagePair(name string, builtin prompt.Pair) (prompt.Pair, error) {
	pair, err := p.loader.LoadPair(name)
	if err == nil {
		return pair, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		p.log.Debug().Str("resource", name).Msg("prompt file absent, using built-in template")
		return builtin, nil
	}
	return prompt.Pair{}, err
}

var builtinCopyPrompt = prompt.Pair{
	System: "You are a top social-commerce copywriter with a million followers, fluent in trend-savvy language.\n" +
		"Given the product JSON, produce a structured result with title, content, tags and selling keywords; output strict JSON only.\n" +
		"The title must contain an emoji, the content must address the target audience's pain points in separate paragraphs, and absolute claims are forbidden.\n" +
		"Also produce seedream_prompt_cn, an image-generation prompt for the cover background.\n" +
		`Schema: {"product_id":string,"tone":string,"title":string,"content":string,"tags":string[],"selling_keywords":string[],"seedream_prompt_cn":string}`,
	User: "Product_JSON: {{ product_json }}",
}

var builtinVisualPrompt = prompt.Pair{
	System: "You are a social-media visual design director. Produce the image-generation prompt and a typographic design blueprint.\n" +
		"Map the tone to a palette and fonts, return JSON, canvas fixed at 1080x1440, use percentage positioning.\n" +
		`Respond either with {"seedream_prompt_cn":string,"design_plan":{...}} or with {"seedream_prompt_cn":string,"layout_blueprint":[...],"tone_color_palette":{...},"font_system":{...}}.`,
	User: "copyResult: {{ copy_json }}",
}

var builtinLayoutPrompt = prompt.Pair{
	System: "You are a front-end expert fluent in absolute-positioned canvas layout. Read the background image URL and design blueprint, output the canvas layer JSON.\n" +
		"Only text/shape/svg layers are supported; use absolute positioning, never transform translate for centering.\n" +
		"Return JSON with canvas info and layers; fill the backgroundImage field with the given URL.",
	User: "Design Plan: {{ design_plan }}\nBackground Image: {{ background_image }}\nCopy: {{ copy_json }}\n" +
		"Rules:\n- canvas 1080x1440, position absolute with % where possible\n- no transform translate for positioning\n" +
		"- text layers use plan font_family and palette primary/secondary/accent\n- ensure readability over the background; add textShadow when contrast demands it\n" +
		"- include at least the title layer and three selling keyword tags\n- align with design_plan layout_elements positions (top/left %)",
}

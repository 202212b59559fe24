package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/hotellens/internal/challenge"
	"github.com/nao1215/hotellens/internal/extract"
	"github.com/nao1215/hotellens/internal/render"
)

// Step names of the policy cascade, in execution order.
const (
	StepEmbeddedJSON = "embedded_json"
	StepDOM          = "dom"
	StepRender       = "render"
	StepSnippetAge   = "snippet_age"
	StepBodyAge      = "body_age"
)

// PolicyState is the working state of the check-in policy cascade for
// one detail page.
type PolicyState struct {
	// URL is the page address, used for re-rendering.
	URL string

	// WaitSelector is handed to the renderer when the page is re-rendered.
	WaitSelector string

	// Page is the parsed current HTML. It is replaced after a re-render.
	Page *extract.Page

	// Age is set by the step that found a minimum age.
	Age *int

	// Snippet is the best policy-like text found so far.
	Snippet string

	// Rendered records that the page was re-rendered in a browser.
	Rendered bool
}

// NewPolicyState parses html and returns the initial cascade state.
func NewPolicyState(url, html, waitSelector string) (*PolicyState, error) {
	page, err := extract.Parse(html)
	if err != nil {
		return nil, err
	}
	return &PolicyState{URL: url, WaitSelector: waitSelector, Page: page}, nil
}

// PolicyText is the cascade's answer: a synthesized sentence when an age
// was found, otherwise the snippet if it is readable text. nil means no
// policy text was found.
func (s *PolicyState) PolicyText() *string {
	if s.Age != nil {
		text := extract.SynthesizedPolicy(*s.Age)
		return &text
	}
	if !usableSnippet(s.Snippet) {
		return nil
	}
	text := s.Snippet
	return &text
}

// usableSnippet reports whether text is human-readable policy text and
// not an empty result, a bot wall or script source.
func usableSnippet(text string) bool {
	return text != "" && !challenge.Detect(text) && !challenge.LooksLikeScript(text)
}

// EmbeddedJSONStep looks for an age in inline JSON and script blocks.
type EmbeddedJSONStep struct{}

// Name returns the step name.
func (EmbeddedJSONStep) Name() string { return StepEmbeddedJSON }

// Do executes the embedded JSON scan.
func (EmbeddedJSONStep) Do(_ context.Context, s *PolicyState) (bool, error) {
	if age, ok := s.Page.EmbeddedJSONAge(); ok {
		s.Age = &age
		return true, nil
	}
	return false, nil
}

// DOMStep records the most specific policy-like text on the page. It
// never finishes the cascade on its own; later steps parse the snippet.
type DOMStep struct{}

// Name returns the step name.
func (DOMStep) Name() string { return StepDOM }

// Do executes the DOM heuristic scan.
func (DOMStep) Do(_ context.Context, s *PolicyState) (bool, error) {
	s.Snippet = s.Page.PolicySnippet()
	return false, nil
}

// HTMLRenderer is the part of render.Renderer the cascade needs.
type HTMLRenderer interface {
	Render(ctx context.Context, url string, opts render.Options) (string, error)
}

// RenderStep re-renders the page in a headless browser when the DOM
// snippet is empty, a bot wall or script, then repeats the embedded JSON
// and DOM steps on the rendered HTML.
type RenderStep struct {
	renderer HTMLRenderer
	options  render.Options
	logger   *slog.Logger
}

// RenderStepOption configures a RenderStep.
type RenderStepOption func(*RenderStep)

// WithRenderOptions sets the base options for re-rendering. The wait
// selector comes from the state and heavy resources are always blocked.
func WithRenderOptions(opts render.Options) RenderStepOption {
	return func(s *RenderStep) {
		s.options = opts
	}
}

// WithRenderLogger sets a custom logger for the render step.
func WithRenderLogger(logger *slog.Logger) RenderStepOption {
	return func(s *RenderStep) {
		s.logger = logger
	}
}

// NewRenderStep creates a RenderStep. A nil renderer makes the step a no-op.
func NewRenderStep(renderer HTMLRenderer, opts ...RenderStepOption) *RenderStep {
	s := &RenderStep{
		renderer: renderer,
		options:  render.DefaultOptions(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (*RenderStep) Name() string { return StepRender }

// Do executes the re-render when the current snippet is unusable.
func (r *RenderStep) Do(ctx context.Context, s *PolicyState) (bool, error) {
	if r.renderer == nil || s.Rendered || usableSnippet(s.Snippet) {
		return false, nil
	}

	opts := r.options
	opts.WaitForSelector = s.WaitSelector
	opts.BlockHeavyResources = true

	html, err := r.renderer.Render(ctx, s.URL, opts)
	if err != nil {
		return false, fmt.Errorf("re-render %s: %w", s.URL, err)
	}
	if html == "" {
		return false, nil
	}

	page, err := extract.Parse(html)
	if err != nil {
		return false, err
	}
	s.Page = page
	s.Rendered = true
	r.logger.Debug("page re-rendered for policy", "url", s.URL)

	if done, _ := (EmbeddedJSONStep{}).Do(ctx, s); done {
		return true, nil
	}
	return (DOMStep{}).Do(ctx, s)
}

// SnippetAgeStep parses an age out of the snippet.
type SnippetAgeStep struct{}

// Name returns the step name.
func (SnippetAgeStep) Name() string { return StepSnippetAge }

// Do executes the snippet parse.
func (SnippetAgeStep) Do(_ context.Context, s *PolicyState) (bool, error) {
	if age, ok := extract.ParseMinAge(s.Snippet); ok {
		s.Age = &age
		return true, nil
	}
	return false, nil
}

// BodyAgeStep parses an age out of the full visible body text.
type BodyAgeStep struct{}

// Name returns the step name.
func (BodyAgeStep) Name() string { return StepBodyAge }

// Do executes the body text parse.
func (BodyAgeStep) Do(_ context.Context, s *PolicyState) (bool, error) {
	if age, ok := extract.ParseMinAge(s.Page.BodyText()); ok {
		s.Age = &age
		return true, nil
	}
	return false, nil
}

// NewPolicyPipeline assembles the check-in policy cascade. Failed steps
// (a render error, say) count as misses so the cascade always completes.
func NewPolicyPipeline(renderer HTMLRenderer, renderOpts render.Options, logger *slog.Logger, label string) *Pipeline[PolicyState] {
	if logger == nil {
		logger = slog.Default()
	}
	p := New[PolicyState](
		WithLogger(logger),
		WithContinueOnError(true),
		WithLabel(label),
	)
	p.AddSteps(
		EmbeddedJSONStep{},
		DOMStep{},
		NewRenderStep(renderer, WithRenderOptions(renderOpts), WithRenderLogger(logger)),
		SnippetAgeStep{},
		BodyAgeStep{},
	)
	return p
}

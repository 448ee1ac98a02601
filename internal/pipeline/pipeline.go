package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ppiankov/factcheck/internal/authority"
	"github.com/ppiankov/factcheck/internal/credential"
	"github.com/ppiankov/factcheck/internal/llm"
	"github.com/ppiankov/factcheck/internal/model"
	"github.com/ppiankov/factcheck/internal/observability"
	"github.com/ppiankov/factcheck/internal/prompt"
	"github.com/ppiankov/factcheck/internal/scope"
)

// User-facing messages
const (
	BlankClaimWarning = "⚠️ Please enter a claim to fact-check."
	NoSpeechWarning   = "⚠️ No speech detected to fact-check."
	FailurePrefix     = "❌ Error: "
)

const defaultCallTimeout = 60 * time.Second

var tracer = otel.Tracer("factcheck.pipeline")

// ErrNoClient is returned when no language model client is available
var ErrNoClient = errors.New("language model is not configured")

// Pipeline orchestrates a claim check: validate, resolve scope, ask for a
// verdict, classify it and, for false claims, ask for a counter-argument.
// It holds no per-request state and is safe for concurrent use.
type Pipeline struct {
	client      llm.Client
	builder     *prompt.Builder
	renderer    *Renderer
	authority   *authority.Classifier
	config      *model.Config
	credErr     error // Fixed at construction
	callTimeout time.Duration
	logger      *zap.Logger
	metrics     *observability.Metrics
	newID       func() string
	now         func() time.Time
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithLogger sets the structured logger
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithMetrics sets the Prometheus collectors
func WithMetrics(m *observability.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithCallTimeout overrides the per-model-call timeout
func WithCallTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.callTimeout = d
		}
	}
}

// NewPipeline creates a pipeline around client. The API key in cfg is
// validated once here; an invalid key makes every check return the
// credential message without touching the client.
func NewPipeline(cfg *model.Config, client llm.Client, opts ...Option) *Pipeline {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}

	strategy, err := prompt.ParseStrategy(cfg.Prompt.ScopeStrategy)
	if err != nil {
		strategy = prompt.StrategySystem
	}

	p := &Pipeline{
		client:      client,
		builder:     prompt.NewBuilder(strategy, cfg.Counter.MaxChars),
		renderer:    NewRenderer(),
		authority:   authority.NewClassifier(cfg.Authority),
		config:      cfg,
		credErr:     CheckCredential(cfg.LLM, cfg.Credential),
		callTimeout: cfg.LLM.Timeout,
		logger:      zap.NewNop(),
		newID:       func() string { return uuid.NewString() },
		now:         time.Now,
	}
	if p.callTimeout <= 0 {
		p.callTimeout = defaultCallTimeout
	}

	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FromConfig builds the provider client from cfg and wraps it in a pipeline.
// The client is only built when the credential is valid, so a bad key never
// reaches the network.
func FromConfig(ctx context.Context, cfg *model.Config, opts ...Option) (*Pipeline, error) {
	if cfg.LLM.Provider == "" {
		return nil, fmt.Errorf("no LLM provider configured (set llm.provider or --provider)")
	}

	var client llm.Client
	if CheckCredential(cfg.LLM, cfg.Credential) == nil {
		c, err := llm.NewClient(ctx, llm.ConfigFromModel(cfg.LLM))
		if err != nil {
			return nil, fmt.Errorf("initialize LLM provider: %w", err)
		}
		client = c
	}

	return NewPipeline(cfg, client, opts...), nil
}

// CheckCredential applies the key rules for the configured provider.
// Providers without API keys always pass.
func CheckCredential(llmCfg model.LLMConfig, credCfg model.CredentialConfig) error {
	if !llm.RequiresAPIKey(llmCfg.Provider) {
		return nil
	}

	prefix := credCfg.Prefix
	if prefix == "" {
		prefix = credential.DefaultPrefix(llmCfg.Provider)
	}
	if credCfg.SkipPrefix {
		prefix = ""
	}
	return credential.Validate(llmCfg.APIKey, prefix)
}

// Renderer returns the pipeline's renderer
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}

// CheckClaim returns the verdict and counter-argument for a typed claim
func (p *Pipeline) CheckClaim(ctx context.Context, claim string, sel scope.Selector) (string, string) {
	out := p.Check(ctx, claim, sel)
	return out.Verdict, out.Counter
}

// Check runs the full state machine for a typed claim
func (p *Pipeline) Check(ctx context.Context, claim string, sel scope.Selector) *model.Outcome {
	return p.check(ctx, claim, sel, BlankClaimWarning)
}

// CheckTranscript is Check for transcribed speech; a blank transcript
// gets its own warning.
func (p *Pipeline) CheckTranscript(ctx context.Context, transcript string, sel scope.Selector) *model.Outcome {
	return p.check(ctx, transcript, sel, NoSpeechWarning)
}

func (p *Pipeline) check(ctx context.Context, claim string, sel scope.Selector, blankWarning string) *model.Outcome {
	start := p.now()
	sel = p.selector(sel)

	ctx, span := tracer.Start(ctx, "pipeline.Check", trace.WithAttributes(
		attribute.String("factcheck.selector", scope.Label(sel)),
	))
	defer span.End()

	out := &model.Outcome{
		ID:        p.newID(),
		Claim:     claim,
		Category:  string(sel),
		CheckedAt: start.UTC(),
	}
	defer func() {
		out.DurationMS = p.now().Sub(start).Milliseconds()
		span.SetAttributes(attribute.String("factcheck.status", string(out.Status)))
		p.metrics.RecordCheck(string(out.Status), scope.Label(sel))
		p.logger.Debug("check finished",
			zap.String("id", out.ID),
			zap.String("status", string(out.Status)),
			zap.Bool("is_false", out.IsFalse),
			zap.Bool("counter", out.HasCounter()),
			zap.Int64("duration_ms", out.DurationMS))
	}()

	// 1. Validate
	if model.IsBlank(claim) {
		out.Verdict = blankWarning
		out.Status = model.StatusWarning
		return out
	}

	// 2. Credential
	if p.credErr != nil {
		out.Verdict = FailurePrefix + p.credErr.Error()
		out.Status = model.StatusCredentialError
		span.SetStatus(codes.Error, "credential")
		return out
	}
	if p.client == nil {
		p.fail(span, out, ErrNoClient)
		return out
	}

	// 3. Resolve & build
	sc := scope.Resolve(sel)
	out.Scope = sc.Domains()
	out.Provider = p.client.Name()
	payload := p.builder.Verdict(claim, sc)

	// 4. Verdict
	comp, err := p.complete(ctx, observability.StageVerdict, payload)
	if err != nil {
		p.fail(span, out, err)
		return out
	}
	out.Verdict = comp.Text
	out.Status = model.StatusOK
	out.Model = comp.Model
	out.TokensUsed = comp.TokensUsed
	out.Citations = ExtractCitations(comp.Text, sc)
	p.authority.Label(out.Citations)

	// 5. Classify
	out.IsFalse = Classify(comp.Text)
	p.metrics.RecordVerdict(out.IsFalse)

	// 6. Verdict -> {Done, NeedsCounter}
	if next(out.IsFalse, p.config.Counter.Enabled) == stateNeedsCounter {
		p.counter(ctx, claim, out)
	}

	return out
}

// selector applies the configured default and the scope toggle
func (p *Pipeline) selector(sel scope.Selector) scope.Selector {
	if !p.config.Scope.Enabled {
		return scope.Unconstrained
	}
	sel = scope.Normalize(string(sel))
	if sel == "" {
		sel = scope.Normalize(p.config.Scope.Default)
	}
	return sel
}

func (p *Pipeline) fail(span trace.Span, out *model.Outcome, err error) {
	out.Verdict = FailurePrefix + err.Error()
	out.Status = model.StatusServiceError
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	p.logger.Error("verdict call failed", zap.String("id", out.ID), zap.Error(err))
}

// counter runs the best-effort second stage. Failures leave Counter empty
// and record why in CounterError.
func (p *Pipeline) counter(ctx context.Context, claim string, out *model.Outcome) {
	comp, err := p.complete(ctx, observability.StageCounter, p.builder.Counter(claim))
	if err != nil {
		out.CounterError = err.Error()
		p.logger.Warn("counter-argument failed", zap.String("id", out.ID), zap.Error(err))
		return
	}

	text, err := FitCounter(comp.Text, p.builder.CounterLimit())
	if err != nil {
		out.CounterError = err.Error()
		return
	}
	out.Counter = text
	out.TokensUsed += comp.TokensUsed
}

// complete makes one model call with its own timeout. A panicking provider
// is reported as an error.
func (p *Pipeline) complete(ctx context.Context, stage string, payload prompt.Payload) (comp *llm.Completion, err error) {
	ctx, span := tracer.Start(ctx, "llm."+stage, trace.WithAttributes(
		attribute.String("llm.provider", p.client.Name()),
	))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			comp = nil
			err = fmt.Errorf("%s provider panicked: %v", p.client.Name(), r)
		}
		p.metrics.RecordModelCall(stage, time.Since(start), err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	comp, err = p.client.Complete(ctx, payload.Messages())
	if err != nil {
		return nil, err
	}
	if comp == nil || strings.TrimSpace(comp.Text) == "" {
		return nil, fmt.Errorf("empty response from %s", p.client.Name())
	}
	return comp, nil
}

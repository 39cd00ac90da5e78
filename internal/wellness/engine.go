/*
Package wellness turns burnout risk assessments into three wellness tips.
The Engine checks the tips cache, asks the language model when one is
configured, and falls back to hand-written tips whenever the model is
missing, failing or unproductive.
*/
package wellness

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Completion is the outcome of a single model call.
type Completion struct {
	Text string
	Err  error
}

// OK reports whether the call succeeded.
func (c Completion) OK() bool {
	return c.Err == nil
}

// Generator is the model boundary used by the Engine.
type Generator interface {
	// Complete never panics on transport errors; failures come back in Completion.Err.
	Complete(ctx context.Context, systemPrompt, userPrompt string) Completion
	// Model is the identifier reported as model_used.
	Model() string
}

// Event describes a served result, published to the notifier.
type Event struct {
	Type        string    `json:"type"`
	RiskLevel   string    `json:"risk_level"`
	ModelUsed   string    `json:"model_used"`
	CacheHit    bool      `json:"cache_hit"`
	GeneratedAt time.Time `json:"generated_at"`
}

const EventTipsServed = "TIPS_SERVED"

type Option func(*Engine)

// WithModel enables the model path. timeout bounds each call.
func WithModel(g Generator, timeout time.Duration) Option {
	return func(e *Engine) {
		e.model = g
		if timeout > 0 {
			e.timeout = timeout
		}
	}
}

// WithNotifier registers a callback invoked for every served result.
func WithNotifier(fn func(Event)) Option {
	return func(e *Engine) {
		e.notify = fn
	}
}

// WithClock overrides the time source of the engine and its cache.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.cache.now = now
	}
}

// Engine is the cache + fallback decision engine.
type Engine struct {
	cache   *Cache
	model   Generator
	timeout time.Duration
	notify  func(Event)
	group   singleflight.Group
}

func NewEngine(cache *Cache, opts ...Option) *Engine {
	e := &Engine{cache: cache, timeout: 30 * time.Second}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ModelEnabled reports whether the model path is attempted at all.
func (e *Engine) ModelEnabled() bool {
	return e.model != nil
}

func (e *Engine) Cache() *Cache {
	return e.cache
}

// GetTips returns three tips for the assessment. Model failures never
// surface here; only an invalid assessment yields an error.
func (e *Engine) GetTips(ctx context.Context, a Assessment) (TipsResult, error) {
	if err := a.Validate(); err != nil {
		return TipsResult{}, err
	}

	key := NewCacheKey(a)

	if cached, ok := e.cache.Get(key); ok {
		loggerFrom(ctx).Info().Str("cache_key", key.String()).Msg("Returning cached tips")
		e.publish(cached, true)
		return cached, nil
	}

	// Concurrent misses on the same key share one generation. The shared
	// call must not die with the first caller's request.
	shared := context.WithoutCancel(ctx)
	v, _, _ := e.group.Do(key.String(), func() (interface{}, error) {
		return e.generate(shared, a, key), nil
	})

	result := cloneResult(v.(TipsResult))
	e.publish(result, false)
	return result, nil
}

func (e *Engine) generate(ctx context.Context, a Assessment, key CacheKey) TipsResult {
	logger := loggerFrom(ctx)
	logger.Info().Str("risk_level", a.Category).Msg("Generating tips")

	var tips []string
	modelUsed := ModelFallback

	if e.model != nil {
		completion := e.complete(ctx, a)
		if completion.OK() {
			tips = SanitizeTips(completion.Text)
			modelUsed = e.model.Model()
			logger.Info().Int("tips", len(tips)).Str("model", modelUsed).Msg("Model returned tips")
		} else {
			logger.Error().Err(completion.Err).Msg("Model call failed, using fallback tips")
		}
	}

	if len(tips) == 0 {
		tips = FallbackTips(a.Category)
		modelUsed = ModelFallback
	}

	tips = padTips(tips, maxTips)[:maxTips]

	confidence := ConfidenceFallback
	if e.model != nil && modelUsed == e.model.Model() {
		confidence = ConfidenceModel
	}

	result := TipsResult{
		Tips:        tips,
		GeneratedAt: e.cache.now(),
		ModelUsed:   modelUsed,
		RiskLevel:   a.Category,
		Confidence:  confidence,
	}

	e.cache.Put(key, result)

	logger.Info().Str("model_used", modelUsed).Msg("Successfully generated tips")
	return result
}

// complete calls the model under the engine timeout and turns a panic
// into a failed Completion.
func (e *Engine) complete(ctx context.Context, a Assessment) (c Completion) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			c = Completion{Err: fmt.Errorf("model call panicked: %v", r)}
		}
	}()

	return e.model.Complete(ctx, SystemPrompt, BuildPrompt(a))
}

// loggerFrom returns the request logger stored in ctx, or the global one.
func loggerFrom(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &log.Logger
}

// publish hands the event to the notifier on the request path; the
// notifier must not block.
func (e *Engine) publish(r TipsResult, hit bool) {
	if e.notify == nil {
		return
	}
	e.notify(Event{
		Type:        EventTipsServed,
		RiskLevel:   r.RiskLevel,
		ModelUsed:   r.ModelUsed,
		CacheHit:    hit,
		GeneratedAt: r.GeneratedAt,
	})
}

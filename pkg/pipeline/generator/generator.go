package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"maintenance-qa-be/internal/pkg/logger"
	"maintenance-qa-be/pkg/llm"
	"maintenance-qa-be/pkg/pipeline/question"
	"maintenance-qa-be/pkg/pipeline/retriever"
	"maintenance-qa-be/pkg/pipeline/rules"
)

// Candidate is a generated query awaiting validation. It is consumed by
// the validator and either promoted to execution or discarded.
type Candidate struct {
	Query       string
	Tables      []string
	Complexity  float64
	Explanation string
	Confidence  float64
	Latency     time.Duration
}

// ErrorKind classifies generation failures.
type ErrorKind string

const (
	ErrKindService    ErrorKind = "service"
	ErrKindExtraction ErrorKind = "extraction"
	ErrKindTimeout    ErrorKind = "timeout"
	ErrKindNoPattern  ErrorKind = "no_pattern"
)

// GenerationError is a failure of the generation stage. Extraction
// failures are generation errors, not validation failures.
type GenerationError struct {
	Kind ErrorKind
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation %s: %v", e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Strategy produces a candidate query for a question. The closed set of
// implementations (rule-based, model-based) is selected by the router.
type Strategy interface {
	Generate(ctx context.Context, q question.Question, snippets []retriever.Snippet) (*Candidate, error)
}

// ---- Rule-based strategy ----

// RuleBased answers questions that match a registered pattern. It never
// calls the generation service.
type RuleBased struct {
	registry *rules.Registry
}

func NewRuleBased(registry *rules.Registry) *RuleBased {
	return &RuleBased{registry: registry}
}

var _ Strategy = &RuleBased{}

func (s *RuleBased) Generate(_ context.Context, q question.Question, _ []retriever.Snippet) (*Candidate, error) {
	match, ok := s.registry.Match(q.Normalized)
	if !ok {
		return nil, &GenerationError{Kind: ErrKindNoPattern, Err: errors.New("no deterministic pattern applies")}
	}
	return &Candidate{
		Query:       match.SQL,
		Tables:      ExtractTables(match.SQL),
		Complexity:  EstimateComplexity(match.SQL),
		Explanation: match.Explanation,
		Confidence:  match.Confidence,
	}, nil
}

// ---- Model-based strategy ----

// SchemaDescriber provides the compact schema text for the prompt.
type SchemaDescriber interface {
	PromptDescription() string
}

// ModelBased invokes the generation service with a structured prompt and
// extracts the candidate from the delimited response. It never executes
// anything itself.
type ModelBased struct {
	provider    llm.LLMProvider
	schema      SchemaDescriber
	policy      RetryPolicy
	timeout     time.Duration
	temperature float64
	maxTokens   int
	log         logger.ILogger
}

type ModelBasedConfig struct {
	Policy      RetryPolicy
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
}

func NewModelBased(provider llm.LLMProvider, schema SchemaDescriber, cfg ModelBasedConfig, log logger.ILogger) *ModelBased {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}
	return &ModelBased{
		provider:    provider,
		schema:      schema,
		policy:      cfg.Policy,
		timeout:     cfg.Timeout,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		log:         log,
	}
}

var _ Strategy = &ModelBased{}

func (s *ModelBased) Generate(ctx context.Context, q question.Question, snippets []retriever.Snippet) (*Candidate, error) {
	return s.generate(ctx, q, snippets, false)
}

// GenerateStrict re-prompts with a tightened instruction block. Used for
// the single re-generation attempt after a validation rejection.
func (s *ModelBased) GenerateStrict(ctx context.Context, q question.Question, snippets []retriever.Snippet) (*Candidate, error) {
	return s.generate(ctx, q, snippets, true)
}

func (s *ModelBased) generate(ctx context.Context, q question.Question, snippets []retriever.Snippet, strict bool) (*Candidate, error) {
	prompt := BuildPrompt(q, snippets, s.schema.PromptDescription(), SelectExamples(q.Normalized, 3), strict)

	var lastErr error
	lastKind := ErrKindService
	start := time.Now()
	for attempt := 1; attempt <= s.policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			delay := s.policy.Delay(attempt - 1)
			select {
			case <-ctx.Done():
				return nil, &GenerationError{Kind: ErrKindTimeout, Err: ctx.Err()}
			case <-time.After(delay):
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, s.timeout)
		raw, err := s.provider.Generate(attemptCtx, prompt,
			llm.WithTemperature(s.temperature),
			llm.WithMaxTokens(s.maxTokens),
		)
		cancel()

		if err != nil {
			lastErr = err
			lastKind = ErrKindService
			s.log.Warn("generator", "generation attempt failed", map[string]interface{}{
				"attempt": attempt,
				"error":   err.Error(),
			})
			if ctx.Err() != nil {
				return nil, &GenerationError{Kind: ErrKindTimeout, Err: ctx.Err()}
			}
			continue
		}

		extracted, err := Extract(raw)
		if err != nil {
			// A malformed response is a generation error; retrying is fair
			// game since the model may produce a conforming response next time.
			lastErr = err
			lastKind = ErrKindExtraction
			s.log.Warn("generator", "extraction failed", map[string]interface{}{
				"attempt": attempt,
				"error":   err.Error(),
			})
			continue
		}

		return &Candidate{
			Query:       extracted.Query,
			Tables:      ExtractTables(extracted.Query),
			Complexity:  EstimateComplexity(extracted.Query),
			Explanation: extracted.Explanation,
			Confidence:  extracted.Confidence,
			Latency:     time.Since(start),
		}, nil
	}

	if lastErr == nil {
		lastErr = errors.New("no attempts made")
	}
	if errors.Is(lastErr, context.DeadlineExceeded) {
		return nil, &GenerationError{Kind: ErrKindTimeout, Err: lastErr}
	}
	return nil, &GenerationError{Kind: lastKind, Err: lastErr}
}

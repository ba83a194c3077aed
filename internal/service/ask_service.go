package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"maintenance-qa-be/internal/dto"
	"maintenance-qa-be/internal/pkg/logger"
	"maintenance-qa-be/pkg/events"
	"maintenance-qa-be/pkg/pipeline/composer"
	"maintenance-qa-be/pkg/pipeline/executor"
	"maintenance-qa-be/pkg/pipeline/fallback"
	"maintenance-qa-be/pkg/pipeline/generator"
	"maintenance-qa-be/pkg/pipeline/qcache"
	"maintenance-qa-be/pkg/pipeline/question"
	"maintenance-qa-be/pkg/pipeline/retriever"
	"maintenance-qa-be/pkg/pipeline/router"
	"maintenance-qa-be/pkg/pipeline/validator"
)

// IAskService is the pipeline boundary: every taxonomy error below it is
// converted into a fallback answer, never surfaced to the caller.
type IAskService interface {
	Ask(ctx context.Context, request *dto.AskRequest) (*dto.AskResponse, error)
	Rate(ctx context.Context, request *dto.FeedbackRequest) error
}

// Generator abstracts the model-based strategy for the service; the
// concrete type also offers the strict re-generation pass.
type Generator interface {
	generator.Strategy
	GenerateStrict(ctx context.Context, q question.Question, snippets []retriever.Snippet) (*generator.Candidate, error)
}

// Executor abstracts the execution adapter.
type Executor interface {
	Execute(ctx context.Context, query string) (*executor.Result, error)
}

// Retriever abstracts snippet retrieval.
type Retriever interface {
	Retrieve(ctx context.Context, normalizedQuestion string) []retriever.Snippet
}

type askService struct {
	router     *router.Router
	retriever  Retriever
	ruleBased  generator.Strategy
	modelBased Generator
	validator  *validator.Validator
	cache      *qcache.Manager
	executor   Executor
	fallback   *fallback.Responder
	composer   *composer.Composer
	hybridMin  float64
	log        logger.ILogger
}

func NewAskService(
	pipelineRouter *router.Router,
	contextRetriever Retriever,
	ruleBased generator.Strategy,
	modelBased Generator,
	queryValidator *validator.Validator,
	cache *qcache.Manager,
	execAdapter Executor,
	fallbackResponder *fallback.Responder,
	responseComposer *composer.Composer,
	hybridThreshold float64,
	log logger.ILogger,
) IAskService {
	return &askService{
		router:     pipelineRouter,
		retriever:  contextRetriever,
		ruleBased:  ruleBased,
		modelBased: modelBased,
		validator:  queryValidator,
		cache:      cache,
		executor:   execAdapter,
		fallback:   fallbackResponder,
		composer:   responseComposer,
		hybridMin:  hybridThreshold,
		log:        log,
	}
}

// Ask runs the full pipeline for one question. It always returns a
// response: a grounded answer or a fallback, never a raw error.
func (s *askService) Ask(ctx context.Context, request *dto.AskRequest) (*dto.AskResponse, error) {
	start := time.Now()
	q := question.New(request.Question, request.Language)

	if q.Normalized == "" {
		result := s.fallbackResult(fallback.ReasonEmptyQuestion, "", "")
		return s.respond(ctx, q, result, false, start), nil
	}

	decision := s.router.Decide(q)
	s.log.Info("ask", "question routed", map[string]interface{}{
		"route":      string(decision.Route),
		"pattern":    decision.PatternID,
		"confidence": decision.Confidence,
		"rationale":  decision.Rationale,
	})

	result, cacheHit, err := s.cache.Do(ctx, q.Normalized, func(flightCtx context.Context) (*qcache.Result, error) {
		return s.compute(flightCtx, q, decision), nil
	})
	if err != nil {
		// The compute path never errors by contract; anything here is an
		// unexpected internal fault, still converted to a fallback.
		s.log.Error("ask", "pipeline fault", map[string]interface{}{"error": err.Error()})
		result = s.fallbackResult(fallback.ReasonUnknown, string(decision.Route), "")
		cacheHit = false
	}

	return s.respond(ctx, q, result, cacheHit, start), nil
}

// Rate republishes a user rating on the event bus; storage is the
// feedback collaborator's concern.
func (s *askService) Rate(_ context.Context, request *dto.FeedbackRequest) error {
	s.composer.Emit(context.Background(),
		events.NewAnswerRated(request.RequestId.String(), request.Rating, request.Comment))
	return nil
}

// compute is the cache-miss path: generate, validate, execute, compose.
// It is total: every failure maps to a fallback result.
func (s *askService) compute(ctx context.Context, q question.Question, decision router.Decision) *qcache.Result {
	route := string(decision.Route)

	var snippets []retriever.Snippet
	if decision.Route != router.RouteDeterministic {
		snippets = s.retriever.Retrieve(ctx, q.Normalized)
	}

	candidate, genErr := s.generateCandidate(ctx, q, decision, snippets)
	if genErr != nil {
		reason := classifyGenerationError(genErr)
		s.log.Warn("ask", "generation failed", map[string]interface{}{
			"route": route,
			"error": genErr.Error(),
		})
		return s.fallbackResult(reason, route, "")
	}

	verdict := s.validator.Validate(candidate)
	if verdict.Outcome == validator.OutcomeRejected {
		// One re-generation attempt with stricter prompting, only on the
		// model path. The rejected candidate itself is never retried.
		if decision.Route != router.RouteDeterministic {
			if retried, err := s.modelBased.GenerateStrict(ctx, q, snippets); err == nil {
				if retryVerdict := s.validator.Validate(retried); retryVerdict.Outcome != validator.OutcomeRejected {
					candidate = retried
					verdict = retryVerdict
				}
			}
		}
		if verdict.Outcome == validator.OutcomeRejected {
			return s.fallbackResult(fallback.ReasonValidationRejected, route, string(verdict.Outcome))
		}
	}

	execResult, err := s.executor.Execute(ctx, verdict.Query(candidate.Query))
	if err != nil {
		reason := fallback.ReasonExecutionFailed
		var execErr *executor.ExecutionError
		if errors.As(err, &execErr) && execErr.Kind == executor.ErrKindTimeout {
			reason = fallback.ReasonExecutionTimeout
		}
		s.log.Warn("ask", "execution failed", map[string]interface{}{
			"route": route,
			"error": err.Error(),
		})
		return s.fallbackResult(reason, route, string(verdict.Outcome))
	}

	answer := s.composer.Compose(q, execResult, candidate.Explanation, candidate.Confidence, verdict.Outcome)
	return &qcache.Result{
		Answer:            answer.Text,
		Confidence:        answer.Confidence,
		Route:             route,
		ValidationOutcome: string(verdict.Outcome),
		Cacheable:         true,
	}
}

// generateCandidate dispatches to the strategy set picked by the router.
// Hybrid runs the deterministic path and escalates to the model only
// when its confidence is insufficient or no pattern applies.
func (s *askService) generateCandidate(
	ctx context.Context,
	q question.Question,
	decision router.Decision,
	snippets []retriever.Snippet,
) (*generator.Candidate, error) {
	switch decision.Route {
	case router.RouteDeterministic:
		return s.ruleBased.Generate(ctx, q, snippets)

	case router.RouteGenerated:
		return s.modelBased.Generate(ctx, q, snippets)

	default: // hybrid
		candidate, err := s.ruleBased.Generate(ctx, q, snippets)
		if err == nil && candidate.Confidence >= s.hybridMin {
			return candidate, nil
		}
		return s.modelBased.Generate(ctx, q, snippets)
	}
}

func (s *askService) fallbackResult(reason fallback.Reason, route string, validationOutcome string) *qcache.Result {
	response := s.fallback.Respond(reason)
	return &qcache.Result{
		Answer:            response.Message,
		Suggestion:        response.Suggestion,
		Confidence:        0,
		Route:             route,
		ValidationOutcome: validationOutcome,
		FallbackReason:    string(response.Reason),
		Negative:          true, // brief caching avoids hammering a known-bad path
	}
}

func (s *askService) respond(ctx context.Context, q question.Question, result *qcache.Result, cacheHit bool, start time.Time) *dto.AskResponse {
	latency := time.Since(start)

	s.composer.Emit(ctx, events.NewAnswerCompleted(
		q.Raw,
		result.Route,
		cacheHit,
		result.ValidationOutcome,
		latency.Milliseconds(),
		result.Confidence,
	))

	return &dto.AskResponse{
		RequestId:         uuid.New(),
		Answer:            result.Answer,
		Confidence:        result.Confidence,
		Route:             result.Route,
		CacheHit:          cacheHit,
		ValidationOutcome: result.ValidationOutcome,
		FallbackReason:    result.FallbackReason,
		Suggestion:        result.Suggestion,
		LatencyMs:         latency.Milliseconds(),
	}
}

func classifyGenerationError(err error) fallback.Reason {
	var genErr *generator.GenerationError
	if errors.As(err, &genErr) {
		switch genErr.Kind {
		case generator.ErrKindTimeout, generator.ErrKindService:
			return fallback.ReasonGenerationUnavailable
		case generator.ErrKindExtraction:
			return fallback.ReasonGenerationMalformed
		case generator.ErrKindNoPattern:
			return fallback.ReasonNoPattern
		}
	}
	return fallback.ReasonUnknown
}

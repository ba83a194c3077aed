package generator

import (
	"context"
	"errors"
	"testing"
	"time"

	"maintenance-qa-be/internal/pkg/logger"
	"maintenance-qa-be/pkg/llm"
	"maintenance-qa-be/pkg/pipeline/question"
)

type stubProvider struct {
	responses []string
	errs      []error
	calls     int
}

func (s *stubProvider) Generate(_ context.Context, _ string, _ ...llm.Option) (string, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	if i < len(s.responses) {
		return s.responses[i], nil
	}
	return "", errors.New("stub exhausted")
}

func (s *stubProvider) Chat(_ context.Context, _ []llm.Message, _ ...llm.Option) (string, error) {
	return "", errors.New("not implemented")
}

type stubSchema struct{}

func (stubSchema) PromptDescription() string {
	return "equipment(code, status)"
}

func newModelBased(provider llm.LLMProvider) *ModelBased {
	return NewModelBased(provider, stubSchema{}, ModelBasedConfig{
		Policy:  RetryPolicy{MaxAttempts: 3, BaseDelay: time.Microsecond, Multiplier: 2},
		Timeout: time.Second,
	}, logger.NewNopLogger())
}

func TestModelBasedRetriesThenSucceeds(t *testing.T) {
	provider := &stubProvider{
		errs: []error{errors.New("upstream 503"), nil},
		responses: []string{"",
			"Counts equipment.\n```sql\nSELECT COUNT(*) AS total FROM equipment\n```"},
	}

	candidate, err := newModelBased(provider).Generate(context.Background(), question.New("how many equipment?", ""), nil)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if provider.calls != 2 {
		t.Errorf("provider calls = %d, want 2", provider.calls)
	}
	if candidate.Query != "SELECT COUNT(*) AS total FROM equipment" {
		t.Errorf("query = %q", candidate.Query)
	}
}

func TestModelBasedExhaustsAttemptsOnServiceFailure(t *testing.T) {
	provider := &stubProvider{
		errs: []error{errors.New("boom"), errors.New("boom"), errors.New("boom")},
	}

	_, err := newModelBased(provider).Generate(context.Background(), question.New("how many equipment?", ""), nil)
	if provider.calls != 3 {
		t.Errorf("provider calls = %d, want 3", provider.calls)
	}
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("error = %v, want *GenerationError", err)
	}
	if genErr.Kind != ErrKindService {
		t.Errorf("kind = %q, want %q", genErr.Kind, ErrKindService)
	}
}

func TestModelBasedTimeoutOnEveryAttempt(t *testing.T) {
	provider := &stubProvider{
		errs: []error{
			context.DeadlineExceeded,
			context.DeadlineExceeded,
			context.DeadlineExceeded,
		},
	}

	_, err := newModelBased(provider).Generate(context.Background(), question.New("how many equipment?", ""), nil)
	if provider.calls != 3 {
		t.Errorf("provider calls = %d, want 3", provider.calls)
	}
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("error = %v, want *GenerationError", err)
	}
	if genErr.Kind != ErrKindTimeout {
		t.Errorf("kind = %q, want %q", genErr.Kind, ErrKindTimeout)
	}
}

func TestModelBasedMalformedResponsesAreExtractionErrors(t *testing.T) {
	provider := &stubProvider{
		responses: []string{
			"no fence at all",
			"```sql\n\n```",
			"```sql\nSELECT 1\n```\n```sql\nSELECT 2\n```",
		},
	}

	_, err := newModelBased(provider).Generate(context.Background(), question.New("how many equipment?", ""), nil)
	if provider.calls != 3 {
		t.Errorf("provider calls = %d, want 3", provider.calls)
	}
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("error = %v, want *GenerationError", err)
	}
	if genErr.Kind != ErrKindExtraction {
		t.Errorf("kind = %q, want %q", genErr.Kind, ErrKindExtraction)
	}
}

func TestModelBasedStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	provider := &stubProvider{errs: []error{errors.New("boom")}}
	gen := NewModelBased(provider, stubSchema{}, ModelBasedConfig{
		Policy:  RetryPolicy{MaxAttempts: 3, BaseDelay: time.Hour, Multiplier: 2},
		Timeout: time.Second,
	}, logger.NewNopLogger())

	_, err := gen.Generate(ctx, question.New("how many equipment?", ""), nil)
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("error = %v, want *GenerationError", err)
	}
	if genErr.Kind != ErrKindTimeout {
		t.Errorf("kind = %q, want %q", genErr.Kind, ErrKindTimeout)
	}
	if provider.calls != 1 {
		t.Errorf("provider calls = %d, want 1", provider.calls)
	}
}

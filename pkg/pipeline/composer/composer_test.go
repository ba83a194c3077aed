package composer

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"maintenance-qa-be/internal/pkg/logger"
	"maintenance-qa-be/pkg/events"
	"maintenance-qa-be/pkg/pipeline/executor"
	"maintenance-qa-be/pkg/pipeline/question"
	"maintenance-qa-be/pkg/pipeline/validator"
)

func newTestComposer() *Composer {
	return New(nil, logger.NewNopLogger())
}

func countResult(n int64) *executor.Result {
	return &executor.Result{
		Rows:     []map[string]interface{}{{"total": n}},
		RowCount: 1,
	}
}

func TestComposeCountPortuguese(t *testing.T) {
	c := newTestComposer()
	q := question.New("Quantos transformadores estão operacionais?", "")

	answer := c.Compose(q, countResult(42), "Counts equipment.", 0.9, validator.OutcomeApproved)
	if !strings.Contains(answer.Text, "Foram encontrados 42 registos.") {
		t.Errorf("answer = %q", answer.Text)
	}
}

func TestComposeCountSingularPortuguese(t *testing.T) {
	c := newTestComposer()
	q := question.New("Quantos geradores existem?", "")

	answer := c.Compose(q, countResult(1), "", 0.9, validator.OutcomeApproved)
	if !strings.Contains(answer.Text, "Foi encontrado 1 registo.") {
		t.Errorf("answer = %q", answer.Text)
	}
}

func TestComposeCountEnglish(t *testing.T) {
	c := newTestComposer()
	q := question.New("How many pumps are operational?", "")

	answer := c.Compose(q, countResult(7), "", 0.9, validator.OutcomeApproved)
	if !strings.Contains(answer.Text, "There are 7 matching records.") {
		t.Errorf("answer = %q", answer.Text)
	}
}

func TestComposeSingleCellAverageKeepsColumnAndValue(t *testing.T) {
	c := newTestComposer()
	q := question.New("What is the average repair duration?", "en")

	result := &executor.Result{
		Rows:     []map[string]interface{}{{"avg_duration_min": 72.5}},
		RowCount: 1,
	}
	answer := c.Compose(q, result, "", 0.9, validator.OutcomeApproved)
	if !strings.Contains(answer.Text, "avg_duration_min: 72.5") {
		t.Errorf("answer = %q", answer.Text)
	}
	if strings.Contains(answer.Text, "matching records") {
		t.Errorf("average rendered as a record count: %q", answer.Text)
	}
}

func TestComposeSingleCellSumIsNotACount(t *testing.T) {
	c := newTestComposer()
	q := question.New("Total maintenance cost last year?", "en")

	// Integral value, but the column is a money sum, not a row count.
	result := &executor.Result{
		Rows:     []map[string]interface{}{{"cost_sum": float64(15000)}},
		RowCount: 1,
	}
	answer := c.Compose(q, result, "", 0.9, validator.OutcomeApproved)
	if strings.Contains(answer.Text, "matching records") {
		t.Errorf("sum rendered as a record count: %q", answer.Text)
	}
	if !strings.Contains(answer.Text, "cost_sum: 15000") {
		t.Errorf("answer = %q", answer.Text)
	}
}

func TestComposeEmptyResult(t *testing.T) {
	c := newTestComposer()
	q := question.New("How many pumps are decommissioned?", "")

	answer := c.Compose(q, &executor.Result{}, "", 0.9, validator.OutcomeApproved)
	if !strings.Contains(answer.Text, "No records match") {
		t.Errorf("answer = %q", answer.Text)
	}
	if answer.Confidence >= 0.9 {
		t.Errorf("empty result should lower confidence, got %f", answer.Confidence)
	}
}

func TestComposeRowListing(t *testing.T) {
	c := newTestComposer()
	q := question.New("open work orders", "en")

	result := &executor.Result{
		Rows: []map[string]interface{}{
			{"priority": "high", "description": "bearing vibration"},
			{"priority": "low", "description": "routine inspection"},
		},
		RowCount: 2,
	}
	answer := c.Compose(q, result, "", 0.8, validator.OutcomeApproved)
	if !strings.Contains(answer.Text, "description: bearing vibration, priority: high") {
		t.Errorf("answer = %q", answer.Text)
	}
}

func TestComposeTruncationNote(t *testing.T) {
	c := newTestComposer()
	q := question.New("list everything", "en")

	result := &executor.Result{
		Rows:      []map[string]interface{}{{"code": "TR-001"}},
		RowCount:  1,
		Truncated: true,
	}
	answer := c.Compose(q, result, "", 0.8, validator.OutcomeApproved)
	if !strings.Contains(answer.Text, "truncated") {
		t.Errorf("answer lacks truncation note: %q", answer.Text)
	}
}

func TestDeriveConfidenceAdjustments(t *testing.T) {
	full := deriveConfidence(countResult(5), 0.8, validator.OutcomeApproved)
	sanitized := deriveConfidence(countResult(5), 0.8, validator.OutcomeSanitized)
	if sanitized >= full {
		t.Errorf("sanitized %f should score below approved %f", sanitized, full)
	}

	floor := deriveConfidence(&executor.Result{Truncated: true}, 0.1, validator.OutcomeSanitized)
	if floor < 0.05 {
		t.Errorf("confidence below floor: %f", floor)
	}
}

func TestEmitPublishesOnFeedbackTopic(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	c := New(pubSub, logger.NewNopLogger())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	messages, err := pubSub.Subscribe(ctx, FeedbackTopic)
	if err != nil {
		t.Fatal(err)
	}

	c.Emit(ctx, events.NewAnswerCompleted("quantos equipamentos", "deterministic", false, "approved", 12, 0.9))

	select {
	case msg := <-messages:
		var payload map[string]interface{}
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			t.Fatal(err)
		}
		if payload["route"] != "deterministic" {
			t.Errorf("payload = %+v", payload)
		}
		if msg.Metadata.Get("event_type") != events.TypeAnswerCompleted {
			t.Errorf("event_type = %s", msg.Metadata.Get("event_type"))
		}
		msg.Ack()
	case <-ctx.Done():
		t.Fatal("no message received on feedback topic")
	}
}

func TestEmitWithoutBusIsNoop(t *testing.T) {
	c := newTestComposer()
	// Must not panic.
	c.Emit(context.Background(), events.NewAnswerRated("id", 5, "great"))
}

package composer

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"maintenance-qa-be/internal/pkg/logger"
	"maintenance-qa-be/pkg/events"
	"maintenance-qa-be/pkg/pipeline/executor"
	"maintenance-qa-be/pkg/pipeline/question"
	"maintenance-qa-be/pkg/pipeline/validator"
)

// Answer is the composed final response for a grounded result.
type Answer struct {
	Text       string
	Confidence float64
}

// FeedbackTopic is the in-process topic completed-request records are
// published on.
const FeedbackTopic = "answer_completed"

// Composer turns execution results into the final natural-language
// answer and emits the feedback-ready record. It does not store
// feedback itself.
type Composer struct {
	pubSub *gochannel.GoChannel
	log    logger.ILogger
}

func New(pubSub *gochannel.GoChannel, log logger.ILogger) *Composer {
	return &Composer{pubSub: pubSub, log: log}
}

// Compose renders the result with the generation explanation and derives
// a confidence estimate from the validation outcome, the result size and
// the generator's self-reported confidence.
func (c *Composer) Compose(
	q question.Question,
	result *executor.Result,
	explanation string,
	generationConfidence float64,
	outcome validator.Outcome,
) Answer {
	var b strings.Builder

	if result.RowCount == 0 {
		if q.Language == "pt" {
			b.WriteString("Não encontrei registos que respondam a essa pergunta.")
		} else {
			b.WriteString("No records match that question.")
		}
	} else if count, ok := singleCount(result); ok {
		if q.Language == "pt" {
			b.WriteString(fmt.Sprintf("Foram encontrados %d registos.", count))
			if count == 1 {
				b.Reset()
				b.WriteString("Foi encontrado 1 registo.")
			}
		} else {
			b.WriteString(fmt.Sprintf("There are %d matching records.", count))
		}
	} else {
		b.WriteString(renderRows(result))
	}

	if explanation != "" {
		b.WriteString("\n\n")
		b.WriteString(explanation)
	}
	if result.Truncated {
		if q.Language == "pt" {
			b.WriteString("\n\n(Resultados truncados ao limite configurado.)")
		} else {
			b.WriteString("\n\n(Results truncated to the configured limit.)")
		}
	}

	return Answer{
		Text:       b.String(),
		Confidence: deriveConfidence(result, generationConfidence, outcome),
	}
}

// Emit publishes the completed-request record on the feedback topic.
// Emission failures are logged, never surfaced: feedback is best effort.
func (c *Composer) Emit(ctx context.Context, event events.Event) {
	if c.pubSub == nil {
		return
	}
	payload, err := json.Marshal(event.Payload())
	if err != nil {
		c.log.Warn("composer", "feedback payload marshal failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("event_type", event.EventType())
	if err := c.pubSub.Publish(FeedbackTopic, msg); err != nil {
		c.log.Warn("composer", "feedback publish failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// singleCount detects the one-row one-column COUNT shape: the column
// must be named like a count and the value must be integral. Other
// single-cell aggregates (averages, sums of money) fall through to the
// column rendering so their value and unit column survive.
func singleCount(result *executor.Result) (int64, bool) {
	if result.RowCount != 1 || len(result.Rows) != 1 || len(result.Rows[0]) != 1 {
		return 0, false
	}
	for col, v := range result.Rows[0] {
		if !countColumn(col) {
			return 0, false
		}
		switch n := v.(type) {
		case int64:
			return n, true
		case int:
			return int64(n), true
		case float64:
			if n == math.Trunc(n) {
				return int64(n), true
			}
		case string:
			if parsed, err := strconv.ParseInt(n, 10, 64); err == nil {
				return parsed, true
			}
		}
	}
	return 0, false
}

func countColumn(name string) bool {
	lower := strings.ToLower(name)
	return lower == "total" || lower == "n" ||
		strings.Contains(lower, "count") ||
		strings.HasPrefix(lower, "total_") ||
		strings.HasPrefix(lower, "num_") ||
		strings.HasPrefix(lower, "qtd")
}

func renderRows(result *executor.Result) string {
	var b strings.Builder
	limit := result.RowCount
	if limit > 20 {
		limit = 20
	}
	for i := 0; i < limit; i++ {
		row := result.Rows[i]
		cols := make([]string, 0, len(row))
		for col := range row {
			cols = append(cols, col)
		}
		sort.Strings(cols)
		parts := make([]string, 0, len(cols))
		for _, col := range cols {
			parts = append(parts, fmt.Sprintf("%s: %v", col, row[col]))
		}
		b.WriteString("- ")
		b.WriteString(strings.Join(parts, ", "))
		b.WriteString("\n")
	}
	if result.RowCount > limit {
		b.WriteString(fmt.Sprintf("... and %d more rows\n", result.RowCount-limit))
	}
	return strings.TrimRight(b.String(), "\n")
}

// deriveConfidence blends the generator's self-report with execution
// evidence: an empty result is weaker, a sanitized query slightly
// weaker than an approved one.
func deriveConfidence(result *executor.Result, generationConfidence float64, outcome validator.Outcome) float64 {
	confidence := generationConfidence
	if confidence <= 0 {
		confidence = 0.5
	}
	if outcome == validator.OutcomeSanitized {
		confidence -= 0.05
	}
	if result.RowCount == 0 {
		confidence -= 0.15
	}
	if result.Truncated {
		confidence -= 0.05
	}
	if confidence < 0.05 {
		confidence = 0.05
	}
	if confidence > 0.99 {
		confidence = 0.99
	}
	return confidence
}

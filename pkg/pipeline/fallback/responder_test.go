package fallback

import (
	"strings"
	"testing"
)

func TestRespondCoversEveryReason(t *testing.T) {
	r := NewResponder()

	reasons := []Reason{
		ReasonGenerationUnavailable,
		ReasonGenerationMalformed,
		ReasonValidationRejected,
		ReasonExecutionTimeout,
		ReasonExecutionFailed,
		ReasonNoPattern,
		ReasonEmptyQuestion,
	}
	for _, reason := range reasons {
		resp := r.Respond(reason)
		if resp.Message == "" {
			t.Errorf("empty message for reason %s", reason)
		}
		if resp.Reason != reason {
			t.Errorf("reason %s echoed as %s", reason, resp.Reason)
		}
	}
}

func TestRespondUnknownReasonIsTotal(t *testing.T) {
	r := NewResponder()

	resp := r.Respond(Reason("something_new"))
	if resp.Message == "" {
		t.Fatal("unknown reason produced no message")
	}
	if resp.Reason != ReasonUnknown {
		t.Errorf("reason = %s, want unknown", resp.Reason)
	}
}

func TestResponsesNeverLeakInternals(t *testing.T) {
	r := NewResponder()

	for _, reason := range []Reason{
		ReasonGenerationUnavailable, ReasonGenerationMalformed,
		ReasonValidationRejected, ReasonExecutionTimeout,
		ReasonExecutionFailed, ReasonNoPattern, ReasonEmptyQuestion,
		ReasonUnknown,
	} {
		resp := r.Respond(reason)
		combined := strings.ToUpper(resp.Message + " " + resp.Suggestion)
		for _, leak := range []string{"SELECT ", "FROM ", " SQL", "ERROR:"} {
			if strings.Contains(combined, leak) {
				t.Errorf("reason %s leaks %q: %s", reason, leak, resp.Message)
			}
		}
	}
}

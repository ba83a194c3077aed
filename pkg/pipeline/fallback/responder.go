package fallback

// Reason identifies why the pipeline could not produce a grounded answer.
type Reason string

const (
	ReasonGenerationUnavailable Reason = "generation_unavailable"
	ReasonGenerationMalformed   Reason = "generation_malformed"
	ReasonValidationRejected    Reason = "validation_rejected"
	ReasonExecutionTimeout      Reason = "execution_timeout"
	ReasonExecutionFailed       Reason = "execution_failed"
	ReasonNoPattern             Reason = "no_pattern"
	ReasonEmptyQuestion         Reason = "empty_question"
	ReasonUnknown               Reason = "unknown"
)

// Response is the terminal artifact of a failed request. The message is
// user-safe: it never carries query text or internal error detail.
type Response struct {
	Reason     Reason
	Message    string
	Suggestion string // optional rephrasing hint
}

type template struct {
	message    string
	suggestion string
}

var templates = map[Reason]template{
	ReasonGenerationUnavailable: {
		message:    "The answer service is temporarily unavailable. Please try again in a moment.",
		suggestion: "",
	},
	ReasonGenerationMalformed: {
		message:    "I could not turn that question into a safe database query.",
		suggestion: "Try asking about one thing at a time, e.g. a count or a list.",
	},
	ReasonValidationRejected: {
		message:    "I cannot answer that question from the available data.",
		suggestion: "Try specifying an equipment code, a status, or a date range.",
	},
	ReasonExecutionTimeout: {
		message:    "That question took too long to answer against the records.",
		suggestion: "Try narrowing the question with a date range or a specific equipment type.",
	},
	ReasonExecutionFailed: {
		message:    "The maintenance records store could not be reached.",
		suggestion: "",
	},
	ReasonNoPattern: {
		message:    "I do not have a ready answer for that phrasing.",
		suggestion: "Try rephrasing, e.g. 'How many pumps are operational?'",
	},
	ReasonEmptyQuestion: {
		message:    "Please type a question about the maintenance records.",
		suggestion: "For example: 'Quantos transformadores estão operacionais?'",
	},
}

const genericMessage = "I cannot answer that from the available data."

// Responder maps failure reasons to templated, user-safe messages.
// It has no failure path of its own: unknown reasons produce the
// generic refusal.
type Responder struct{}

func NewResponder() *Responder {
	return &Responder{}
}

// Respond always returns a usable Response.
func (r *Responder) Respond(reason Reason) Response {
	if t, ok := templates[reason]; ok {
		return Response{
			Reason:     reason,
			Message:    t.message,
			Suggestion: t.suggestion,
		}
	}
	return Response{
		Reason:  ReasonUnknown,
		Message: genericMessage,
	}
}

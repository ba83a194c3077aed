package generator

import (
	"fmt"
	"strings"

	"maintenance-qa-be/pkg/pipeline/question"
	"maintenance-qa-be/pkg/pipeline/retriever"
)

// BuildPrompt assembles the structured generation prompt from the
// question, retrieved snippets, compact schema description and worked
// examples. The delimiter contract: the model must return exactly one
// ```sql fenced block plus a free-text explanation.
func BuildPrompt(q question.Question, snippets []retriever.Snippet, schemaText string, examples []Example, strict bool) string {
	var prompt strings.Builder

	prompt.WriteString("<task>\n")
	prompt.WriteString("You translate a question about maintenance records into ONE PostgreSQL SELECT statement.\n")
	prompt.WriteString("Return the statement in a single ```sql fenced block, then a one-paragraph explanation of what it computes.\n")
	prompt.WriteString("</task>\n\n")

	prompt.WriteString("<schema>\n")
	prompt.WriteString(schemaText)
	prompt.WriteString("</schema>\n\n")

	if len(snippets) > 0 {
		prompt.WriteString("<context>\n")
		for _, s := range snippets {
			prompt.WriteString(fmt.Sprintf("[%s] %s\n", s.Source, s.Text))
		}
		prompt.WriteString("</context>\n\n")
	}

	if len(examples) > 0 {
		prompt.WriteString("<examples>\n")
		for _, ex := range examples {
			prompt.WriteString("Q: ")
			prompt.WriteString(ex.Question)
			prompt.WriteString("\n```sql\n")
			prompt.WriteString(ex.SQL)
			prompt.WriteString("\n```\n")
		}
		prompt.WriteString("</examples>\n\n")
	}

	prompt.WriteString("<rules>\n")
	prompt.WriteString("1. Exactly one SELECT statement. No INSERT, UPDATE, DELETE, DROP, ALTER or other verbs.\n")
	prompt.WriteString("2. Use only the tables and columns listed in <schema>.\n")
	prompt.WriteString("3. No statement separators (;) and no SQL comments.\n")
	prompt.WriteString("4. Prefer explicit column lists over SELECT *.\n")
	if strict {
		prompt.WriteString("5. Your previous attempt was rejected by the safety validator. Produce the SIMPLEST possible single-table SELECT that answers the question: no subqueries, at most one JOIN, and include a LIMIT clause.\n")
	}
	prompt.WriteString("</rules>\n\n")

	prompt.WriteString("<question language=\"")
	prompt.WriteString(q.Language)
	prompt.WriteString("\">\n")
	prompt.WriteString(q.Raw)
	prompt.WriteString("\n</question>\n")

	return prompt.String()
}

package explain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sakif/ai-debugger/internal/executor"
)

const systemPrompt = "You are a helpful Python tutor for students. Keep explanations clear and educational."

const noFix = "No fix available"

var (
	explanationRe = regexp.MustCompile(`(?s)EXPLANATION:\s*(.*?)(?:FIXED_CODE:|$)`)
	fixRe         = regexp.MustCompile(`(?s)FIXED_CODE:\s*(.*?)(?:CHANGES:|$)`)
	changesRe     = regexp.MustCompile(`(?s)CHANGES:\s*(.*)`)
	fenceOpenRe   = regexp.MustCompile("^```[a-zA-Z0-9]*\\s*")
	fenceCloseRe  = regexp.MustCompile("\\s*```$")
)

// buildPrompt asks for three labelled sections so the answer can be split
// without relying on structured-output support in the endpoint.
func buildPrompt(req Request) string {
	var b strings.Builder

	if req.Execution.Kind == executor.KindNone {
		b.WriteString("Explain to a student what this Python program does and why it produced its output.\n\n")
	} else {
		b.WriteString("Analyze this buggy Python code and error.\n\n")
	}

	fmt.Fprintf(&b, "CODE:\n```python\n%s\n```\n\n", req.Code)

	switch req.Execution.Kind {
	case executor.KindNone:
		fmt.Fprintf(&b, "OUTPUT:\n%s\n\n", req.Execution.Output)
	default:
		errText := req.Execution.Error
		if errText == "" {
			errText = "No error message"
		}
		fmt.Fprintf(&b, "ERROR (%s):\n%s\n\n", req.Execution.Kind, errText)
	}

	b.WriteString(`Please provide:
1. A simple, student-friendly explanation of what went wrong (or what the code does)
2. A corrected or improved version of the code (if possible)
3. An explanation of what was changed and why

Keep explanations clear and educational. Focus on helping students learn.
Format your response as:
EXPLANATION: [simple explanation]
FIXED_CODE: [corrected code or "No fix available"]
CHANGES: [what was changed and why]
`)
	return b.String()
}

// parseResponse splits a model answer into its labelled sections.
func parseResponse(text string) *Result {
	res := &Result{
		Explanation: "Unable to analyze the error.",
		Source:      SourceAI,
	}

	if m := explanationRe.FindStringSubmatch(text); m != nil {
		if s := strings.TrimSpace(m[1]); s != "" {
			res.Explanation = s
		}
	}

	if m := fixRe.FindStringSubmatch(text); m != nil {
		fix := strings.TrimSpace(m[1])
		fix = fenceOpenRe.ReplaceAllString(fix, "")
		fix = fenceCloseRe.ReplaceAllString(fix, "")
		if fix != "" && !strings.EqualFold(strings.Trim(fix, `"`), noFix) {
			res.SuggestedFix = &fix
		}
	}

	if m := changesRe.FindStringSubmatch(text); m != nil {
		if s := strings.TrimSpace(m[1]); s != "" {
			res.FixExplanation = &s
		}
	}

	return res
}

package runtime

import (
	"strings"

	"github.com/lattice-ai/lattice/pkg/domain"
)

// composePrompt joins the non-empty prompt sources with blank lines.
func composePrompt(static, dynamic, context string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{static, dynamic, context} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n\n")
}

// formatTemplate substitutes {name} placeholders with values. The policy is
// all-or-nothing: a missing key or a malformed template (stray brace,
// unterminated placeholder) yields the literal template unchanged rather
// than an error, so a misconfigured prompt node degrades instead of
// aborting the run. "{{" and "}}" escape literal braces.
func formatTemplate(template string, values map[string]any) string {
	var b strings.Builder
	b.Grow(len(template))

	for i := 0; i < len(template); {
		switch c := template[i]; c {
		case '{':
			if i+1 < len(template) && template[i+1] == '{' {
				b.WriteByte('{')
				i += 2
				continue
			}
			end := strings.IndexByte(template[i+1:], '}')
			if end < 0 {
				return template
			}
			name := template[i+1 : i+1+end]
			val, ok := values[name]
			if !ok {
				return template
			}
			b.WriteString(domain.Stringify(val))
			i += end + 2
		case '}':
			if i+1 < len(template) && template[i+1] == '}' {
				b.WriteByte('}')
				i += 2
				continue
			}
			return template
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

package prompt

import (
	"fmt"
	"regexp"
	"strings"
)

var variablePattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Template is a prompt with {{variable}} placeholders.
type Template struct {
	text string
	vars []string
}

// New parses text once so repeated renders skip variable discovery.
func New(text string) *Template {
	return &Template{text: text, vars: ExtractVariables(text)}
}

// Variables lists the placeholder names in order of first appearance.
func (t *Template) Variables() []string {
	return append([]string(nil), t.vars...)
}

// Render substitutes every placeholder. Values are inserted verbatim and
// are not themselves expanded.
func (t *Template) Render(vars map[string]string) (string, error) {
	var missing []string
	for _, v := range t.vars {
		if _, ok := vars[v]; !ok {
			missing = append(missing, v)
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("missing template variables: %s", strings.Join(missing, ", "))
	}

	return variablePattern.ReplaceAllStringFunc(t.text, func(match string) string {
		return vars[match[2:len(match)-2]]
	}), nil
}

// ExtractVariables returns a list of variable names found in the template.
func ExtractVariables(text string) []string {
	matches := variablePattern.FindAllStringSubmatch(text, -1)
	seen := make(map[string]bool)
	var vars []string
	for _, m := range matches {
		if len(m) > 1 && !seen[m[1]] {
			vars = append(vars, m[1])
			seen[m[1]] = true
		}
	}
	return vars
}

package template

import (
	"fmt"
	"strings"
)

// Render substitutes every {{name}} placeholder in body with the string
// representation of the matching value. Placeholders without a matching
// variable are left verbatim; a nil or empty variable map returns the
// body unchanged. Rendering never fails.
func Render(body string, vars map[string]any) string {
	if len(vars) == 0 {
		return body
	}
	for name, value := range vars {
		body = strings.ReplaceAll(body, "{{"+name+"}}", fmt.Sprint(value))
	}
	return body
}

// HTMLBody converts line breaks in a rendered body to HTML line breaks.
// The plain-text alternative always carries the unconverted body.
func HTMLBody(body string) string {
	return strings.ReplaceAll(body, "\n", "<br>")
}

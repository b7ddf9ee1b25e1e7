// Package hydrate substitutes {{name}} placeholders in stored request
// templates with concrete runtime values.
package hydrate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Vars is the context for one hydration pass.
type Vars map[string]any

var placeholderRe = regexp.MustCompile(`{{(.*?)}}`)

// Render replaces every {{name}} occurrence in the template with the string
// form of vars[name]. Identifiers are trimmed of surrounding whitespace.
// Unknown identifiers render as the empty string so a template typo produces
// a request the gateway rejects, not a checkout that cannot start. There is
// no recursion and no escaping of substituted values.
func Render(template string, vars Vars) string {
	return placeholderRe.ReplaceAllStringFunc(template, func(match string) string {
		name := strings.TrimSpace(match[2 : len(match)-2])
		v, ok := vars[name]
		if !ok {
			return ""
		}
		return stringify(v)
	})
}

// RenderHeaders hydrates every value of a header template map.
func RenderHeaders(headers map[string]string, vars Vars) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		out[k] = Render(v, vars)
	}
	return out
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		// JSON numbers decode as float64; integral amounts must not render
		// with an exponent or trailing zeros.
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}

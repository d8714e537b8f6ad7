package dbevolve

import (
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\$\{([A-Za-z0-9_-]+)\}`)

// replacePlaceholders substitutes every ${name} in stmt from values. The
// first token without a value is returned as missing.
func replacePlaceholders(stmt string, values map[string]string) (string, string, bool) {
	matches := placeholderPattern.FindAllStringSubmatchIndex(stmt, -1)
	if len(matches) == 0 {
		return stmt, "", true
	}
	var b strings.Builder
	last := 0
	for _, m := range matches {
		name := stmt[m[2]:m[3]]
		value, ok := values[name]
		if !ok {
			return "", name, false
		}
		b.WriteString(stmt[last:m[0]])
		b.WriteString(value)
		last = m[1]
	}
	b.WriteString(stmt[last:])
	return b.String(), "", true
}

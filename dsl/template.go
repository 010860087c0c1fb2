package dsl

import "strings"

// Render substitutes every {name} in text with vars[name]. Placeholders
// naming an unset variable are left as written. Substitution is a single
// left-to-right pass, so values are never themselves expanded.
func Render(text string, vars map[string]string) string {
	if !strings.Contains(text, "{") {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))

	rest := text
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			return b.String()
		}
		b.WriteString(rest[:open])

		end := strings.IndexByte(rest[open+1:], '}')
		if end < 0 {
			b.WriteString(rest[open:])
			return b.String()
		}
		name := rest[open+1 : open+1+end]

		// A nested '{' means this brace was literal text; resume at the
		// inner one so "{{x}" still resolves {x}.
		if inner := strings.IndexByte(name, '{'); inner >= 0 {
			b.WriteString(rest[open : open+1+inner])
			rest = rest[open+1+inner:]
			continue
		}

		if v, ok := vars[name]; ok && name != "" {
			b.WriteString(v)
		} else {
			b.WriteString(rest[open : open+2+end])
		}
		rest = rest[open+2+end:]
	}
}

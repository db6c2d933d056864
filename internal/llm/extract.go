package llm

import (
	"encoding/json"
	"strings"
)

// ExtractJSONObject returns the first balanced {...} span in s. Models often
// wrap their reply in markdown fences or add prose around the object; the
// scanner skips anything outside the braces and respects string literals, so
// a fenced object parses identically to a bare one.
func ExtractJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	var quote byte
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == quote:
				inString = false
			}
			continue
		}
		switch c {
		case '"', '\'':
			inString = true
			quote = c
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// UnmarshalLenient parses data into v. Strict JSON first; on failure, one
// well-defined permissive pass (single-quoted strings, Python-style
// True/False/None, trailing commas) and a second strict parse. No further
// string surgery beyond that.
func UnmarshalLenient(data string, v any) error {
	err := json.Unmarshal([]byte(data), v)
	if err == nil {
		return nil
	}
	relaxed := relaxLiterals(data)
	if relaxed == data {
		return err
	}
	return json.Unmarshal([]byte(relaxed), v)
}

// relaxLiterals rewrites a Python-literal-flavored object into JSON.
func relaxLiterals(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	var quote byte
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
				b.WriteByte(c)
			case c == '\\':
				if quote == '\'' && i+1 < len(s) && s[i+1] == '\'' {
					// \' inside a single-quoted string is a plain apostrophe
					b.WriteByte('\'')
					i++
					continue
				}
				escaped = true
				b.WriteByte(c)
			case c == quote:
				inString = false
				b.WriteByte('"')
			case c == '"' && quote == '\'':
				// double quote inside a single-quoted string needs escaping
				b.WriteString(`\"`)
			default:
				b.WriteByte(c)
			}
			continue
		}

		switch {
		case c == '"' || c == '\'':
			inString = true
			quote = c
			b.WriteByte('"')
		case c == ',':
			// drop trailing commas before a closing bracket
			j := i + 1
			for j < len(s) && (s[j] == ' ' || s[j] == '\t' || s[j] == '\n' || s[j] == '\r') {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue
			}
			b.WriteByte(c)
		case hasWordAt(s, i, "True"):
			b.WriteString("true")
			i += len("True") - 1
		case hasWordAt(s, i, "False"):
			b.WriteString("false")
			i += len("False") - 1
		case hasWordAt(s, i, "None"):
			b.WriteString("null")
			i += len("None") - 1
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// hasWordAt reports whether the bare word w starts at s[i].
func hasWordAt(s string, i int, w string) bool {
	if !strings.HasPrefix(s[i:], w) {
		return false
	}
	if i > 0 && isWordByte(s[i-1]) {
		return false
	}
	end := i + len(w)
	return end >= len(s) || !isWordByte(s[end])
}

func isWordByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

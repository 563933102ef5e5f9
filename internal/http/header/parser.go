package header

import (
	"strings"

	"odata_batch/internal/http/stream"
)

func isTokenChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	return strings.IndexByte("!#$%&'*+-.^_`|~", c) >= 0
}

func isToken(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isTokenChar(s[i]) {
			return false
		}
	}
	return true
}

func trimTerminator(text string) string {
	text = strings.TrimSuffix(text, "\n")
	return strings.TrimSuffix(text, "\r")
}

// SplitLine breaks a header line into its name and raw value. ok is false
// when the line does not follow `token ":" OWS value OWS`.
func SplitLine(text string) (name, value string, ok bool) {
	text = trimTerminator(text)
	colonIdx := strings.IndexByte(text, ':')
	if colonIdx <= 0 {
		return "", "", false
	}
	name = text[:colonIdx]
	if !isToken(name) {
		return "", "", false
	}
	value = strings.Trim(text[colonIdx+1:], " \t")
	if strings.ContainsAny(value, "\r\n") {
		return "", "", false
	}
	return name, value, true
}

// SplitValues splits a field value at commas that are not inside a quoted
// string. Empty elements are dropped unless the whole value is empty.
func SplitValues(value string) []string {
	var (
		values  []string
		start   int
		quoted  bool
		escaped bool
	)
	flush := func(end int) {
		if v := strings.Trim(value[start:end], " \t"); v != "" {
			values = append(values, v)
		}
	}
	for i := 0; i < len(value); i++ {
		c := value[i]
		switch {
		case escaped:
			escaped = false
		case quoted && c == '\\':
			escaped = true
		case c == '"':
			quoted = !quoted
		case !quoted && c == ',':
			flush(i)
			start = i + 1
		}
	}
	flush(len(value))
	if len(values) == 0 {
		return []string{""}
	}
	return values
}

// Parse consumes header lines from the front of lines and stops at the
// first line that is not a header, typically the blank separator. It
// returns the collection and the number of lines consumed.
func Parse(lines []stream.Line) (*Collection, int) {
	headers := New()
	consumed := 0
	for _, line := range lines {
		name, value, ok := SplitLine(line.Text)
		if !ok {
			break
		}
		for _, v := range SplitValues(value) {
			headers.Add(name, v, line.Number)
		}
		consumed++
	}
	return headers, consumed
}

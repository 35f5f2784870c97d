package textfmt

import (
	"strconv"
	"strings"

	"github.com/arloliu/textgrid/errs"
)

// lineScanner walks the input one line at a time. Line numbers are 1-based.
// Lines keep a trailing "\r" so quoted text spanning a CRLF survives; the
// structural readers trim it away.
type lineScanner struct {
	lines []string
	pos   int // index of the next unread line
}

func newLineScanner(text string) *lineScanner {
	return &lineScanner{lines: strings.Split(text, "\n")}
}

// next returns the next non-blank line with surrounding whitespace removed.
func (s *lineScanner) next() (string, int, bool) {
	for s.pos < len(s.lines) {
		line := strings.TrimSpace(s.lines[s.pos])
		s.pos++
		if line != "" {
			return line, s.pos, true
		}
	}

	return "", s.pos, false
}

// peek returns what next would return without consuming it.
func (s *lineScanner) peek() (string, int, bool) {
	saved := s.pos
	line, n, ok := s.next()
	s.pos = saved

	return line, n, ok
}

// raw returns the next line as is, blank or not.
func (s *lineScanner) raw() (string, bool) {
	if s.pos >= len(s.lines) {
		return "", false
	}
	line := s.lines[s.pos]
	s.pos++

	return line, true
}

// remaining returns an upper bound on the number of lines left.
func (s *lineScanner) remaining() int {
	return len(s.lines) - s.pos
}

func (s *lineScanner) eof(expected string) error {
	return &errs.MalformedError{
		Line:     max(s.pos, 1),
		Expected: expected,
		Reason:   "unexpected end of input",
	}
}

func malformed(line int, text, expected, reason string) error {
	return &errs.MalformedError{
		Line:     line,
		Text:     text,
		Expected: expected,
		Reason:   reason,
	}
}

// expectLine consumes one line that must equal want.
func (s *lineScanner) expectLine(want string) error {
	line, n, ok := s.next()
	if !ok {
		return s.eof(want)
	}
	if line != want {
		return malformed(n, line, want, "unexpected line")
	}

	return nil
}

// expectPrefix consumes one line that must start with prefix and returns the
// rest of it.
func (s *lineScanner) expectPrefix(prefix string) (string, int, error) {
	line, n, ok := s.next()
	if !ok {
		return "", n, s.eof(prefix)
	}
	if !strings.HasPrefix(line, prefix) {
		return "", n, malformed(n, line, prefix, "missing prefix")
	}

	return strings.TrimSpace(line[len(prefix):]), n, nil
}

// float reads a number after prefix; an empty prefix reads a bare value.
func (s *lineScanner) float(prefix string) (float64, error) {
	value, n, err := s.expectPrefix(prefix)
	if err != nil {
		return 0, err
	}

	v, perr := strconv.ParseFloat(value, 64)
	if perr != nil {
		return 0, malformed(n, value, prefix+"<number>", "invalid number")
	}

	return v, nil
}

// count reads a non-negative element count after prefix.
func (s *lineScanner) count(prefix string) (int, error) {
	value, n, err := s.expectPrefix(prefix)
	if err != nil {
		return 0, err
	}

	v, perr := strconv.Atoi(value)
	if perr != nil || v < 0 {
		return 0, malformed(n, value, prefix+"<count>", "invalid count")
	}

	return v, nil
}

// quoted reads a double-quoted string after prefix. Inside the quotes a
// doubled quote stands for one quote character, and the string may run over
// several lines; the line breaks become "\n".
func (s *lineScanner) quoted(prefix string) (string, error) {
	value, n, err := s.expectPrefix(prefix)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(value, `"`) {
		return "", malformed(n, value, prefix+`"..."`, "string is not quoted")
	}

	// continue from the untrimmed line so whitespace inside the quotes survives
	raw := s.lines[n-1]
	rest := raw[strings.IndexByte(raw, '"')+1:]

	var sb strings.Builder
	for {
		closed, tail := unquote(&sb, rest)
		if closed {
			if strings.TrimSpace(tail) != "" {
				return "", malformed(n, value, prefix+`"..."`, "text after closing quote")
			}

			return sb.String(), nil
		}

		next, ok := s.raw()
		if !ok {
			return "", malformed(n, value, prefix+`"..."`, "unterminated string")
		}
		sb.WriteByte('\n')
		rest = next
	}
}

// unquote copies s into sb up to the closing quote. It reports whether the
// closing quote was found and returns what follows it.
func unquote(sb *strings.Builder, s string) (bool, string) {
	for i := 0; i < len(s); i++ {
		if s[i] != '"' {
			sb.WriteByte(s[i])
			continue
		}
		if i+1 < len(s) && s[i+1] == '"' {
			sb.WriteByte('"')
			i++
			continue
		}

		return true, s[i+1:]
	}

	return false, ""
}

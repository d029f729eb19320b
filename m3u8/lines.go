package m3u8

import "strings"

// LineKind classifies a physical line of a playlist.
type LineKind uint8

const (
	LineIgnorable LineKind = iota // blank line or comment
	LineDirective                 // #EXT tag
	LineURI                       // media segment or media playlist URI
)

// Line is a classified physical line.
type Line struct {
	Num     int      // 1-based line number
	Kind    LineKind // Kind of the line
	Name    string   // Tag name without '#', LineDirective only
	Payload string   // Text after the first ':', LineDirective only
	Text    string   // Trimmed line
}

// ClassifyLine classifies one line with its line ending already removed.
// Tags are '#' lines whose name starts with EXT, other '#' lines are
// comments. It never fails.
func ClassifyLine(text string) Line {
	text = strings.TrimSpace(text)
	l := Line{Text: text}
	switch {
	case text == "":
		l.Kind = LineIgnorable
	case text[0] != '#':
		l.Kind = LineURI
	default:
		name, payload, _ := strings.Cut(text[1:], ":")
		if !strings.HasPrefix(name, "EXT") {
			l.Kind = LineIgnorable
			return l
		}
		l.Kind = LineDirective
		l.Name = name
		l.Payload = payload
	}
	return l
}

// splitLines calls fn for every line of text. Lines end at "\n" or "\r\n".
// A leading byte order mark is skipped.
func splitLines(text string, fn func(num int, line string) error) error {
	text = strings.TrimPrefix(text, "\ufeff")
	for num := 1; text != ""; num++ {
		line, rest, _ := strings.Cut(text, "\n")
		if err := fn(num, trimLineEnd(line)); err != nil {
			return err
		}
		text = rest
	}
	return nil
}

// trimLineEnd removes a trailing '\r' left over from a "\r\n" line ending.
func trimLineEnd(line string) string {
	return strings.TrimSuffix(line, "\r")
}

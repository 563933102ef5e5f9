package stream

import "fmt"

// Line is one line of input, terminator included, with its 1-based position
// in the source.
type Line struct {
	Text   string
	Number int
}

func NewLine(text string, number int) Line {
	return Line{Text: text, Number: number}
}

func (l Line) String() string {
	return l.Text
}

func (l Line) Equal(other Line) bool {
	return l.Number == other.Number && l.Text == other.Text
}

// GoString renders the line with its terminator escaped.
func (l Line) GoString() string {
	return fmt.Sprintf("%d:%q", l.Number, l.Text)
}

package printer

import (
	"bytes"
	"fmt"
	"strings"
)

// ESC/POS control bytes
const (
	ESC = 0x1B
	GS  = 0x1D
	LF  = 0x0A
)

// Alignment selects ESC a n.
type Alignment byte

const (
	AlignLeft   Alignment = 0
	AlignCenter Alignment = 1
	AlignRight  Alignment = 2
)

// Size selects GS ! n.
type Size byte

const (
	SizeNormal Size = 0x00
	SizeDouble Size = 0x11
	SizeWide   Size = 0x10
	SizeTall   Size = 0x01
)

// Paper widths in characters at the default font.
const (
	Width58mm = 32
	Width80mm = 48
)

// Document builds an ESC/POS byte stream. Text is written as-is; callers
// are expected to pass printable ASCII.
type Document struct {
	buf   bytes.Buffer
	width int
}

// NewDocument starts a document for paper that fits width characters.
func NewDocument(width int) *Document {
	if width <= 0 {
		width = Width58mm
	}
	d := &Document{width: width}
	d.buf.Write([]byte{ESC, '@'})
	return d
}

// Width is the number of characters per line.
func (d *Document) Width() int { return d.width }

// Feed advances the paper n lines.
func (d *Document) Feed(n int) *Document {
	for i := 0; i < n; i++ {
		d.buf.WriteByte(LF)
	}
	return d
}

func (d *Document) Align(a Alignment) *Document {
	d.buf.Write([]byte{ESC, 'a', byte(a)})
	return d
}

func (d *Document) Bold(on bool) *Document {
	var b byte
	if on {
		b = 1
	}
	d.buf.Write([]byte{ESC, 'E', b})
	return d
}

func (d *Document) Size(s Size) *Document {
	d.buf.Write([]byte{GS, '!', byte(s)})
	return d
}

// Line writes s, wrapped to the paper width.
func (d *Document) Line(s string) *Document {
	for _, l := range wrap(s, d.width) {
		d.buf.WriteString(l)
		d.buf.WriteByte(LF)
	}
	return d
}

// Linef is Line with formatting.
func (d *Document) Linef(format string, args ...any) *Document {
	return d.Line(fmt.Sprintf(format, args...))
}

// Rule prints a full-width line of char.
func (d *Document) Rule(char byte) *Document {
	d.buf.WriteString(strings.Repeat(string(char), d.width))
	d.buf.WriteByte(LF)
	return d
}

// Pair prints label on the left and value on the right of one line. A
// label too long to fit is cut.
func (d *Document) Pair(label, value string) *Document {
	room := d.width - len(value) - 1
	if room < 0 {
		room = 0
	}
	if len(label) > room {
		label = label[:room]
	}
	spaces := d.width - len(label) - len(value)
	if spaces < 1 {
		spaces = 1
	}
	d.buf.WriteString(label)
	d.buf.WriteString(strings.Repeat(" ", spaces))
	d.buf.WriteString(value)
	d.buf.WriteByte(LF)
	return d
}

// Item prints "qty x description" with amount right-aligned on the first
// line. Descriptions that do not fit continue on indented lines.
func (d *Document) Item(qty, description, amount string) *Document {
	prefix := qty + "x "
	room := d.width - len(prefix) - len(amount) - 1
	if room < 1 {
		room = 1
	}
	lines := wrap(description, room)
	if len(lines) == 0 {
		lines = []string{""}
	}
	d.Pair(prefix+lines[0], amount)
	indent := strings.Repeat(" ", len(prefix))
	for _, l := range lines[1:] {
		d.buf.WriteString(indent)
		d.buf.WriteString(l)
		d.buf.WriteByte(LF)
	}
	return d
}

// Cut cuts the paper. A partial cut leaves a small bridge.
func (d *Document) Cut(partial bool) *Document {
	var m byte
	if partial {
		m = 1
	}
	d.buf.Write([]byte{GS, 'V', m})
	return d
}

// Bytes returns the accumulated stream.
func (d *Document) Bytes() []byte {
	return d.buf.Bytes()
}

// wrap splits s into lines of at most width characters, breaking at spaces
// where it can.
func wrap(s string, width int) []string {
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		cur := ""
		for _, w := range words {
			for len(w) > width {
				if cur != "" {
					lines = append(lines, cur)
					cur = ""
				}
				lines = append(lines, w[:width])
				w = w[width:]
			}
			switch {
			case cur == "":
				cur = w
			case len(cur)+1+len(w) <= width:
				cur += " " + w
			default:
				lines = append(lines, cur)
				cur = w
			}
		}
		if cur != "" {
			lines = append(lines, cur)
		}
	}
	return lines
}

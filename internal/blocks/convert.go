package blocks

import (
	"regexp"
	"strings"
)

var (
	dividerRe  = regexp.MustCompile(`^---$`)
	heading3Re = regexp.MustCompile(`^###\s+(.+)`)
	heading2Re = regexp.MustCompile(`^##\s+(.+)`)
	quoteRe    = regexp.MustCompile(`^>\s+(.+)`)
	bulletRe   = regexp.MustCompile(`^[-*]\s+(.+)`)
	numberedRe = regexp.MustCompile(`^\d+\.\s+(.+)`)
)

// FromMarkdown converts md with the default fragment cap.
func FromMarkdown(md string) []Block {
	return FromMarkdownWithLimit(md, MaxFragment)
}

// FromMarkdownWithLimit converts md line by line into blocks whose fragments
// never exceed limit runes. Consecutive list items of one kind are buffered
// and emitted together; blank lines only flush the buffer.
func FromMarkdownWithLimit(md string, limit int) []Block {
	if md == "" {
		return nil
	}

	c := converter{limit: limit}
	for _, raw := range strings.Split(md, "\n") {
		c.line(strings.TrimSpace(raw))
	}
	c.flush()
	return c.out
}

type converter struct {
	limit    int
	out      []Block
	listKind Type
	items    []string
}

func (c *converter) line(line string) {
	if line == "" {
		c.flush()
		return
	}
	if dividerRe.MatchString(line) {
		c.flush()
		c.out = append(c.out, NewDivider())
		return
	}
	if m := heading3Re.FindStringSubmatch(line); m != nil {
		c.emit(Heading3, m[1])
		return
	}
	if m := heading2Re.FindStringSubmatch(line); m != nil {
		c.emit(Heading2, m[1])
		return
	}
	if m := quoteRe.FindStringSubmatch(line); m != nil {
		c.emit(Quote, m[1])
		return
	}
	if m := bulletRe.FindStringSubmatch(line); m != nil {
		c.push(BulletedItem, m[1])
		return
	}
	if m := numberedRe.FindStringSubmatch(line); m != nil {
		c.push(NumberedItem, m[1])
		return
	}
	c.emit(Paragraph, line)
}

func (c *converter) emit(t Type, s string) {
	c.flush()
	c.out = append(c.out, c.block(t, s))
}

func (c *converter) push(kind Type, item string) {
	if c.listKind != kind {
		c.flush()
		c.listKind = kind
	}
	c.items = append(c.items, strings.TrimSpace(item))
}

func (c *converter) flush() {
	for _, item := range c.items {
		c.out = append(c.out, c.block(c.listKind, item))
	}
	c.items = nil
	c.listKind = ""
}

func (c *converter) block(t Type, s string) Block {
	return Block{Type: t, Fragments: SplitFragments(strings.TrimSpace(s), c.limit)}
}

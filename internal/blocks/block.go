// Package blocks turns generated Markdown into the typed, size-bounded block
// nodes accepted by the document store.
package blocks

import "strings"

// MaxFragment is the per-fragment cap, kept below the store limit of 2000.
const MaxFragment = 1900

type Type string

const (
	Paragraph    Type = "paragraph"
	Heading2     Type = "heading_2"
	Heading3     Type = "heading_3"
	BulletedItem Type = "bulleted_list_item"
	NumberedItem Type = "numbered_list_item"
	Quote        Type = "quote"
	Divider      Type = "divider"
	ToDo         Type = "to_do"
)

// Block is one node of document content. Dividers carry no fragments;
// Checked only applies to to-do items.
type Block struct {
	Type      Type     `json:"type"`
	Fragments []string `json:"fragments,omitempty"`
	Checked   bool     `json:"checked,omitempty"`
}

// Text joins the fragments back into the original text.
func (b Block) Text() string {
	return strings.Join(b.Fragments, "")
}

func newText(t Type, s string) Block {
	return Block{Type: t, Fragments: SplitFragments(s, MaxFragment)}
}

func NewParagraph(s string) Block    { return newText(Paragraph, s) }
func NewHeading2(s string) Block     { return newText(Heading2, s) }
func NewHeading3(s string) Block     { return newText(Heading3, s) }
func NewBulletedItem(s string) Block { return newText(BulletedItem, s) }
func NewNumberedItem(s string) Block { return newText(NumberedItem, s) }
func NewQuote(s string) Block        { return newText(Quote, s) }
func NewDivider() Block              { return Block{Type: Divider} }

// NewToDo builds an unchecked checklist item.
func NewToDo(s string) Block { return newText(ToDo, s) }

// SplitFragments cuts s into pieces of at most limit runes. When a cut would
// land inside a word it backs up to the previous space, provided that space
// sits past 60% of the limit; otherwise it cuts at the limit. Joining the
// fragments yields s.
func SplitFragments(s string, limit int) []string {
	if s == "" {
		return nil
	}
	if limit < 1 {
		limit = 1
	}

	r := []rune(s)
	var out []string
	for len(r) > limit {
		cut := limit
		if r[limit] != ' ' {
			if sp := lastSpace(r[:limit]); sp*10 > limit*6 {
				cut = sp
			}
		}
		out = append(out, string(r[:cut]))
		r = r[cut:]
	}
	if len(r) > 0 {
		out = append(out, string(r))
	}
	return out
}

func lastSpace(r []rune) int {
	for i := len(r) - 1; i >= 0; i-- {
		if r[i] == ' ' {
			return i
		}
	}
	return -1
}

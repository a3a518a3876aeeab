package post

import (
	"time"

	"github.com/kokistudios/board/internal/rules"
)

// Block is one top-level unit of a document: a *Group or a *Leaf.
type Block interface {
	BlockType() string
	block()
}

// Segment is one piece of a leaf's content: a Text run or a *Span.
type Segment interface {
	segment()
}

// Group merges consecutive leaves that share a group key.
type Group struct {
	Type     string  `yaml:"type" json:"type"`
	Children []*Leaf `yaml:"children" json:"children"`
}

type Leaf struct {
	Type       string             `yaml:"type" json:"type"`
	Attributes rules.AttributeMap `yaml:"attributes" json:"attributes"`
	Content    []Segment          `yaml:"text" json:"text"`
}

// Text is a run of words no inline rule recognized.
type Text string

// Span is a recognized inline token with its rule prefix removed.
type Span struct {
	Type       string             `yaml:"type" json:"type"`
	Attributes rules.AttributeMap `yaml:"attributes" json:"attributes"`
	Text       string             `yaml:"text" json:"text"`
}

func (g *Group) BlockType() string { return g.Type }
func (l *Leaf) BlockType() string  { return l.Type }

func (*Group) block() {}
func (*Leaf) block()  {}

func (Text) segment()  {}
func (*Span) segment() {}

// Document is a parsed post. It is never modified after Parse returns; edits
// go through Reparse.
type Document struct {
	Blocks    []Block   `yaml:"blocks" json:"blocks"`
	Inlines   []*Span   `yaml:"inlines" json:"inlines"`
	Text      string    `yaml:"raw" json:"raw"`
	CreatedAt time.Time `yaml:"created_at" json:"created_at"`
	UpdatedAt time.Time `yaml:"updated_at" json:"updated_at"`
}

// Tags returns the distinct tag texts in the order they first appear.
func (d *Document) Tags() []string {
	var tags []string
	seen := map[string]bool{}
	for _, s := range d.Inlines {
		if s.Type != rules.TypeTag || seen[s.Text] {
			continue
		}
		seen[s.Text] = true
		tags = append(tags, s.Text)
	}
	return tags
}

// HasTag reports whether any tag span carries exactly tag.
func (d *Document) HasTag(tag string) bool {
	for _, s := range d.Inlines {
		if s.Type == rules.TypeTag && s.Text == tag {
			return true
		}
	}
	return false
}

// Leaves returns every leaf in reading order, descending into groups.
func (d *Document) Leaves() []*Leaf {
	var leaves []*Leaf
	for _, b := range d.Blocks {
		switch b := b.(type) {
		case *Group:
			leaves = append(leaves, b.Children...)
		case *Leaf:
			leaves = append(leaves, b)
		}
	}
	return leaves
}

package post

import (
	"maps"
	"strings"
	"time"

	"github.com/kokistudios/board/internal/rules"
)

// Parse turns raw text into a document. Every line becomes one leaf; lines
// whose rule carries a group key are collected under a shared Group for as
// long as consecutive lines keep the same key. Text that is blank as a whole
// yields no blocks.
func Parse(rs rules.RuleSet, text string, createdAt, updatedAt time.Time) *Document {
	idx := rules.BuildIndex(rs.Blocks)
	doc := &Document{
		Blocks:    []Block{},
		Inlines:   []*Span{},
		Text:      text,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}

	if strings.TrimSpace(text) == "" {
		return doc
	}

	var current *Group
	for _, raw := range strings.Split(text, "\n") {
		words := splitWords(strings.TrimSpace(raw))
		rule := classifyLine(words, idx)

		if rule == nil {
			current = nil
			content, spans := tokenizeLine(words, rs.Inlines)
			doc.Inlines = append(doc.Inlines, spans...)
			doc.Blocks = append(doc.Blocks, &Leaf{
				Type:       rules.TypeText,
				Attributes: rules.AttributeMap{},
				Content:    content,
			})
			continue
		}

		content, spans := tokenizeLine(words[1:], rs.Inlines)
		doc.Inlines = append(doc.Inlines, spans...)

		if rule.Group == "" {
			current = nil
			doc.Blocks = append(doc.Blocks, &Leaf{
				Type:       rules.TypeText,
				Attributes: cloneAttributes(rule.Attributes),
				Content:    content,
			})
			continue
		}

		if current == nil || current.Type != rule.Group {
			current = &Group{Type: rule.Group}
			doc.Blocks = append(doc.Blocks, current)
		}
		current.Children = append(current.Children, &Leaf{
			Type:       rule.Type,
			Attributes: cloneAttributes(rule.Attributes),
			Content:    content,
		})
	}

	return doc
}

// Reparse builds the document that replaces prev after its text was edited.
// The creation time carries over; the update time becomes now.
func Reparse(rs rules.RuleSet, prev *Document, text string, now time.Time) *Document {
	createdAt := now
	if prev != nil {
		createdAt = prev.CreatedAt
	}
	return Parse(rs, text, createdAt, now)
}

// splitWords splits on single spaces, so runs of spaces yield empty words.
// A blank line has no words at all.
func splitWords(line string) []string {
	if line == "" {
		return nil
	}
	return strings.Split(line, " ")
}

func classifyLine(words []string, idx rules.Index) *rules.BlockRule {
	if len(words) == 0 {
		return nil
	}
	return idx.Lookup(words[0])
}

// tokenizeLine splits words into plain runs and inline spans. The first inline
// rule whose prefix starts the word wins, and the span text drops
// len(prefix) bytes from the front of the word.
func tokenizeLine(words []string, inlines []rules.InlineRule) ([]Segment, []*Span) {
	content := []Segment{}
	var spans []*Span
	var buf []string

	flush := func() {
		if len(buf) > 0 {
			content = append(content, Text(strings.Join(buf, " ")))
			buf = buf[:0]
		}
	}

	for _, word := range words {
		rule := matchInline(word, inlines)
		if rule == nil {
			buf = append(buf, word)
			continue
		}
		flush()
		span := &Span{
			Type:       rule.Type,
			Attributes: cloneAttributes(rule.Attributes),
			Text:       word[len(rule.Prefix):],
		}
		content = append(content, span)
		spans = append(spans, span)
	}
	flush()

	return content, spans
}

func matchInline(word string, inlines []rules.InlineRule) *rules.InlineRule {
	for i := range inlines {
		if strings.HasPrefix(word, inlines[i].Prefix) {
			return &inlines[i]
		}
	}
	return nil
}

func cloneAttributes(attrs rules.AttributeMap) rules.AttributeMap {
	if attrs == nil {
		return rules.AttributeMap{}
	}
	return maps.Clone(attrs)
}

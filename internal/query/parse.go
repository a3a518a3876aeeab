package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	ErrEmptyQuery = errors.New("empty query")
	ErrEmptyTag   = errors.New("tag marker without a name")
)

// Examples: "#work", "#work #urgent", "tag:work", "work urgent", "untagged"
type queryGrammar struct {
	Terms []*queryTerm `parser:"@@*"`
}

type queryTerm struct {
	Untagged bool   `parser:"  @Untagged"`
	Tag      string `parser:"| @Tag"`
	Word     string `parser:"| @Word"`
}

var queryLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Untagged", Pattern: `untagged\b`},
	{Name: "Tag", Pattern: `(?:#|tag:)\S*`},
	{Name: "Word", Pattern: `\S+`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var queryParser = participle.MustBuild[queryGrammar](
	participle.Lexer(queryLexer),
	participle.Elide("Whitespace"),
)

// ParseQuery reads the textual query syntax used on the command line. Tags may
// be written as "#name", "tag:name" or a bare word; the keyword "untagged"
// selects documents without inline spans. Repeated tags collapse to one.
func ParseQuery(s string) (Query, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Query{}, ErrEmptyQuery
	}

	parsed, err := queryParser.ParseString("", s)
	if err != nil {
		return Query{}, fmt.Errorf("invalid query %q: %w", s, err)
	}

	var q Query
	seen := map[string]bool{}
	for _, term := range parsed.Terms {
		var tag string
		switch {
		case term.Untagged:
			q.Untagged = true
			continue
		case term.Tag != "":
			tag = strings.TrimPrefix(term.Tag, "tag:")
			if tag == term.Tag {
				tag = strings.TrimPrefix(term.Tag, "#")
			}
			if tag == "" {
				return Query{}, fmt.Errorf("invalid query %q: %q: %w", s, term.Tag, ErrEmptyTag)
			}
		default:
			tag = term.Word
		}
		if !seen[tag] {
			seen[tag] = true
			q.Tags = append(q.Tags, tag)
		}
	}
	return q, nil
}

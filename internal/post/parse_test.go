package post

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kokistudios/board/internal/rules"
)

var (
	created = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	updated = time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)
)

func parse(text string) *Document {
	return Parse(rules.Default(), text, created, created)
}

func leafAt(t *testing.T, doc *Document, i int) *Leaf {
	t.Helper()
	require.Greater(t, len(doc.Blocks), i)
	leaf, ok := doc.Blocks[i].(*Leaf)
	require.True(t, ok, "block %d is %T, want *Leaf", i, doc.Blocks[i])
	return leaf
}

func groupAt(t *testing.T, doc *Document, i int) *Group {
	t.Helper()
	require.Greater(t, len(doc.Blocks), i)
	group, ok := doc.Blocks[i].(*Group)
	require.True(t, ok, "block %d is %T, want *Group", i, doc.Blocks[i])
	return group
}

func TestParse_TitleWithTag(t *testing.T) {
	rs := rules.RuleSet{
		Blocks:  []rules.BlockRule{{Type: "title", Prefix: "#"}},
		Inlines: []rules.InlineRule{{Type: "tag", Prefix: "#"}},
	}
	doc := Parse(rs, "# hello #world", created, updated)

	require.Len(t, doc.Blocks, 1)
	leaf := leafAt(t, doc, 0)
	assert.Equal(t, "text", leaf.Type)
	require.Len(t, leaf.Content, 2)
	assert.Equal(t, Text("hello"), leaf.Content[0])

	span, ok := leaf.Content[1].(*Span)
	require.True(t, ok)
	assert.Equal(t, "tag", span.Type)
	assert.Equal(t, "world", span.Text)

	require.Len(t, doc.Inlines, 1)
	assert.Same(t, span, doc.Inlines[0])
	assert.Equal(t, "# hello #world", doc.Text)
	assert.Equal(t, created, doc.CreatedAt)
	assert.Equal(t, updated, doc.UpdatedAt)
}

func TestParse_ClassifiedLineKeepsRuleAttributes(t *testing.T) {
	doc := parse("# Weekly plan")

	leaf := leafAt(t, doc, 0)
	assert.Equal(t, "text", leaf.Type)
	assert.Equal(t, rules.AttributeMap{"level": 1}, leaf.Attributes)
	assert.Equal(t, []Segment{Text("Weekly plan")}, leaf.Content)

	doc = parse(".subtitle Details")
	assert.Equal(t, rules.AttributeMap{"level": 2}, leafAt(t, doc, 0).Attributes)
}

func TestParse_ConsecutiveListItemsShareGroup(t *testing.T) {
	doc := parse("- a\n- b")

	require.Len(t, doc.Blocks, 1)
	group := groupAt(t, doc, 0)
	assert.Equal(t, "list", group.Type)
	require.Len(t, group.Children, 2)
	assert.Equal(t, []Segment{Text("a")}, group.Children[0].Content)
	assert.Equal(t, []Segment{Text("b")}, group.Children[1].Content)
	assert.Equal(t, "list", group.Children[0].Type)
	assert.Equal(t, "unsorted", group.Children[0].Attributes["type"])
}

func TestParse_MixedListRulesShareGroup(t *testing.T) {
	doc := parse("- milk\n[x] eggs\n[] bread\n1. first\n2. second")

	require.Len(t, doc.Blocks, 1)
	group := groupAt(t, doc, 0)
	require.Len(t, group.Children, 5)

	want := []rules.AttributeMap{
		{"type": "unsorted"},
		{"type": "todo", "checked": true},
		{"type": "todo", "checked": false},
		{"type": "ordered"},
		{"type": "ordered"},
	}
	for i, w := range want {
		assert.Equal(t, w, group.Children[i].Attributes, "child %d", i)
	}
}

func TestParse_GroupBoundaries(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		kinds []string
	}{
		{"text breaks group", "- a\nplain\n- b", []string{"list", "text", "list"}},
		{"blank line breaks group", "- a\n\n- b", []string{"list", "text", "list"}},
		{"ungrouped rule breaks group", "- a\n# title\n- b", []string{"list", "text", "list"}},
		{"group after text", "intro\n- a\n- b", []string{"text", "list"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parse(tt.text)
			var kinds []string
			for _, b := range doc.Blocks {
				kinds = append(kinds, b.BlockType())
			}
			assert.Equal(t, tt.kinds, kinds)
		})
	}
}

func TestParse_DifferentGroupKeysSplit(t *testing.T) {
	rs := rules.RuleSet{
		Blocks: []rules.BlockRule{
			{Type: "item", Prefix: "-", Group: "list"},
			{Type: "quote", Prefix: ">", Group: "quote"},
		},
	}
	doc := Parse(rs, "- a\n> b\n> c\n- d", created, created)

	require.Len(t, doc.Blocks, 3)
	assert.Equal(t, "list", groupAt(t, doc, 0).Type)
	assert.Len(t, groupAt(t, doc, 1).Children, 2)
	assert.Equal(t, "quote", groupAt(t, doc, 1).Type)
	assert.Len(t, groupAt(t, doc, 2).Children, 1)
}

func TestParse_BlankInput(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\n", " \n\t\n "} {
		doc := parse(text)
		assert.Empty(t, doc.Blocks, "text %q", text)
		assert.Empty(t, doc.Inlines, "text %q", text)
	}
}

func TestParse_EmptyLineIsEmptyTextBlock(t *testing.T) {
	doc := parse("a\n   \nb")

	require.Len(t, doc.Blocks, 3)
	middle := leafAt(t, doc, 1)
	assert.Equal(t, "text", middle.Type)
	assert.Empty(t, middle.Content)
	assert.Empty(t, middle.Attributes)
}

func TestParse_UnknownPrefixIsText(t *testing.T) {
	doc := parse("13. not a list")

	leaf := leafAt(t, doc, 0)
	assert.Equal(t, "text", leaf.Type)
	assert.Equal(t, []Segment{Text("13. not a list")}, leaf.Content)
}

func TestParse_PrefixMustBeWholeWord(t *testing.T) {
	doc := parse("-a")
	assert.Equal(t, []Segment{Text("-a")}, leafAt(t, doc, 0).Content)

	// "#tag" as the first word is an inline tag, not a title.
	doc = parse("#tag first")
	leaf := leafAt(t, doc, 0)
	assert.Empty(t, leaf.Attributes)
	require.Len(t, leaf.Content, 2)
	assert.Equal(t, "tag", leaf.Content[0].(*Span).Text)
	assert.Equal(t, Text("first"), leaf.Content[1])
}

func TestParse_LinesAreTrimmed(t *testing.T) {
	doc := parse("   - indented   ")
	group := groupAt(t, doc, 0)
	assert.Equal(t, []Segment{Text("indented")}, group.Children[0].Content)
}

func TestParse_InnerSpacingKept(t *testing.T) {
	doc := parse("a  b")
	assert.Equal(t, []Segment{Text("a  b")}, leafAt(t, doc, 0).Content)
}

func TestParse_RunsSplitAroundSpans(t *testing.T) {
	doc := parse("buy #milk and #eggs today")

	content := leafAt(t, doc, 0).Content
	require.Len(t, content, 5)
	assert.Equal(t, Text("buy"), content[0])
	assert.Equal(t, "milk", content[1].(*Span).Text)
	assert.Equal(t, Text("and"), content[2])
	assert.Equal(t, "eggs", content[3].(*Span).Text)
	assert.Equal(t, Text("today"), content[4])
}

func TestParse_SpansRegisteredOnceInOrder(t *testing.T) {
	doc := parse("#a intro\n- item #b\n- #c #d\ntail #e")

	require.Len(t, doc.Inlines, 5)
	var texts []string
	for _, s := range doc.Inlines {
		texts = append(texts, s.Text)
	}
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, texts)

	// Each flat span is the same value found positionally in its leaf.
	var positional []*Span
	for _, leaf := range doc.Leaves() {
		for _, seg := range leaf.Content {
			if s, ok := seg.(*Span); ok {
				positional = append(positional, s)
			}
		}
	}
	require.Len(t, positional, len(doc.Inlines))
	for i := range positional {
		assert.Same(t, doc.Inlines[i], positional[i])
	}
}

func TestParse_FirstInlineRuleWins(t *testing.T) {
	rs := rules.RuleSet{
		Inlines: []rules.InlineRule{
			{Type: "heading-ref", Prefix: "##"},
			{Type: "tag", Prefix: "#"},
		},
	}
	doc := Parse(rs, "##top #tag", created, created)

	require.Len(t, doc.Inlines, 2)
	assert.Equal(t, "heading-ref", doc.Inlines[0].Type)
	assert.Equal(t, "top", doc.Inlines[0].Text)
	assert.Equal(t, "tag", doc.Inlines[1].Type)

	// Declared the other way round, "#" shadows "##".
	rs.Inlines[0], rs.Inlines[1] = rs.Inlines[1], rs.Inlines[0]
	doc = Parse(rs, "##top", created, created)
	require.Len(t, doc.Inlines, 1)
	assert.Equal(t, "tag", doc.Inlines[0].Type)
	assert.Equal(t, "#top", doc.Inlines[0].Text)
}

func TestParse_SpanTextDropsPrefixLength(t *testing.T) {
	rs := rules.RuleSet{
		Inlines: []rules.InlineRule{
			{Type: "tag", Prefix: "tag:", Attributes: rules.AttributeMap{"source": "explicit"}},
		},
	}
	doc := Parse(rs, "see tag:work", created, created)

	require.Len(t, doc.Inlines, 1)
	assert.Equal(t, "work", doc.Inlines[0].Text)
	assert.Equal(t, "explicit", doc.Inlines[0].Attributes["source"])
}

func TestParse_BareMarkerIsEmptySpan(t *testing.T) {
	doc := parse("lonely # here")

	require.Len(t, doc.Inlines, 1)
	assert.Equal(t, "", doc.Inlines[0].Text)
}

func TestParse_AttributesAreCopied(t *testing.T) {
	rs := rules.Default()
	doc := Parse(rs, "- a\n- b", created, created)

	group := groupAt(t, doc, 0)
	group.Children[0].Attributes["type"] = "changed"

	assert.Equal(t, "unsorted", group.Children[1].Attributes["type"])
	assert.Equal(t, "unsorted", rs.Blocks[2].Attributes["type"])
}

func TestParse_DocumentsAreIndependent(t *testing.T) {
	rs := rules.Default()
	a := Parse(rs, "one #x", created, created)
	b := Parse(rs, "two #y", created, created)

	require.Len(t, a.Inlines, 1)
	require.Len(t, b.Inlines, 1)
	assert.NotSame(t, a.Inlines[0], b.Inlines[0])
}

func TestParse_BlocksNonEmptyIffTextHasContent(t *testing.T) {
	texts := []string{"", " ", "x", "\n\nx\n", "- a", "\t\n", "#", "  #tag  "}
	for _, text := range texts {
		doc := parse(text)
		assert.Equal(t, strings.TrimSpace(text) != "", len(doc.Blocks) > 0, "text %q", text)
	}
}

func TestParse_JSONShape(t *testing.T) {
	doc := parse("hello #world\n- a")

	data, err := json.Marshal(doc.Blocks)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"type":"text","attributes":{},"text":["hello",{"type":"tag","attributes":{},"text":"world"}]},
		{"type":"list","children":[{"type":"list","attributes":{"type":"unsorted"},"text":["a"]}]}
	]`, string(data))
}

func TestReparse(t *testing.T) {
	rs := rules.Default()
	orig := Parse(rs, "draft #todo", created, created)

	edited := Reparse(rs, orig, "final #done", updated)

	assert.Equal(t, created, edited.CreatedAt)
	assert.Equal(t, updated, edited.UpdatedAt)
	assert.Equal(t, []string{"done"}, edited.Tags())
	assert.Equal(t, []string{"todo"}, orig.Tags(), "original document is untouched")

	fresh := Reparse(rs, nil, "new", updated)
	assert.Equal(t, updated, fresh.CreatedAt)
}

func TestDocument_Tags(t *testing.T) {
	rs := rules.Default()
	rs.Inlines = append(rs.Inlines, rules.InlineRule{Type: "mention", Prefix: "@"})
	doc := Parse(rs, "#b #a @sam\n- #b #c", created, created)

	assert.Equal(t, []string{"b", "a", "c"}, doc.Tags())
	assert.True(t, doc.HasTag("a"))
	assert.False(t, doc.HasTag("sam"))
}

func TestDocument_Leaves(t *testing.T) {
	doc := parse("top\n- a\n- b\nbottom")

	leaves := doc.Leaves()
	require.Len(t, leaves, 4)
	assert.Equal(t, []Segment{Text("top")}, leaves[0].Content)
	assert.Equal(t, []Segment{Text("b")}, leaves[2].Content)
	assert.Equal(t, []Segment{Text("bottom")}, leaves[3].Content)
}

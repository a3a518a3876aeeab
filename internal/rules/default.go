package rules

const (
	TypeText = "text"
	TypeTag  = "tag"

	GroupList = "list"
)

// Default returns the built-in board rules: titles, subtitles, plain, todo
// and ordered lists, and #tags.
//
// Lines are split on single spaces, so "[ ]" never arrives as one word; the
// "[]" alias is the spelling that actually selects an unchecked todo.
func Default() RuleSet {
	return RuleSet{
		Blocks: []BlockRule{
			{
				Type:       "title",
				Prefix:     "#",
				Alt:        []string{".title"},
				Attributes: AttributeMap{"level": 1},
			},
			{
				Type:       "subtitle",
				Prefix:     "##",
				Alt:        []string{".subtitle"},
				Attributes: AttributeMap{"level": 2},
			},
			{
				Type:       "list",
				Group:      GroupList,
				Prefix:     "-",
				Attributes: AttributeMap{"type": "unsorted"},
			},
			{
				Type:       "list",
				Group:      GroupList,
				Prefix:     "[ ]",
				Alt:        []string{"[]"},
				Attributes: AttributeMap{"type": "todo", "checked": false},
			},
			{
				Type:       "list",
				Group:      GroupList,
				Prefix:     "[x]",
				Attributes: AttributeMap{"type": "todo", "checked": true},
			},
			{
				Type:       "list",
				Group:      GroupList,
				Prefix:     "1.",
				Alt:        []string{"2.", "3.", "4.", "5.", "6.", "7.", "8.", "9.", "10.", "11.", "12."},
				Attributes: AttributeMap{"type": "ordered"},
			},
		},
		Inlines: []InlineRule{
			{Type: TypeTag, Prefix: "#"},
		},
	}
}

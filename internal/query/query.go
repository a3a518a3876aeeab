package query

import (
	"sort"
	"strings"

	"github.com/kokistudios/board/internal/post"
)

// Query selects documents by their inline spans. Tags takes precedence over
// Untagged; the zero Query matches everything.
type Query struct {
	Tags     []string `yaml:"tags,omitempty" json:"tags,omitempty"`
	Untagged bool     `yaml:"untagged,omitempty" json:"untagged,omitempty"`
}

// Result pairs a surviving document with its position in the unfiltered
// collection.
type Result struct {
	Document *post.Document
	Index    int
}

// Matches reports whether doc satisfies q.
func Matches(doc *post.Document, q Query) bool {
	if len(q.Tags) > 0 {
		for _, tag := range q.Tags {
			if !doc.HasTag(tag) {
				return false
			}
		}
		return true
	}
	if q.Untagged {
		// Any inline span disqualifies, tag or not.
		return len(doc.Inlines) == 0
	}
	return true
}

// Filter keeps the documents matching q in their original order.
func Filter(docs []*post.Document, q Query) []Result {
	results := []Result{}
	for i, doc := range docs {
		if Matches(doc, q) {
			results = append(results, Result{Document: doc, Index: i})
		}
	}
	return results
}

func (q Query) IsZero() bool {
	return len(q.Tags) == 0 && !q.Untagged
}

func (q Query) String() string {
	return q.Format("#")
}

// Format renders q with tags written behind tagPrefix.
func (q Query) Format(tagPrefix string) string {
	switch {
	case len(q.Tags) > 0:
		parts := make([]string, len(q.Tags))
		for i, t := range q.Tags {
			parts[i] = tagPrefix + t
		}
		return strings.Join(parts, " ")
	case q.Untagged:
		return "untagged"
	default:
		return "*"
	}
}

type TagCount struct {
	Tag   string `yaml:"tag" json:"tag"`
	Count int    `yaml:"count" json:"count"`
}

// TagCounts counts, for each tag, how many documents carry it. The most used
// tags come first; ties are alphabetical.
func TagCounts(docs []*post.Document) []TagCount {
	counts := map[string]int{}
	for _, doc := range docs {
		for _, tag := range doc.Tags() {
			counts[tag]++
		}
	}

	result := make([]TagCount, 0, len(counts))
	for tag, n := range counts {
		result = append(result, TagCount{Tag: tag, Count: n})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Tag < result[j].Tag
	})
	return result
}

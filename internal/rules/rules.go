package rules

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

var (
	ErrMissingType = errors.New("rule has no type")
	ErrEmptyPrefix = errors.New("rule has an empty prefix")
)

type AttributeMap map[string]any

// BlockRule classifies a whole line by its first word.
type BlockRule struct {
	Type        string       `yaml:"type" json:"type"`
	Name        string       `yaml:"name,omitempty" json:"name,omitempty"`
	Description string       `yaml:"description,omitempty" json:"description,omitempty"`
	Prefix      string       `yaml:"prefix" json:"prefix"`
	Alt         []string     `yaml:"alt,omitempty" json:"alt,omitempty"`
	Group       string       `yaml:"group,omitempty" json:"group,omitempty"`
	Attributes  AttributeMap `yaml:"attributes,omitempty" json:"attributes,omitempty"`
}

// InlineRule classifies a single word by its leading characters.
type InlineRule struct {
	Type        string       `yaml:"type" json:"type"`
	Name        string       `yaml:"name,omitempty" json:"name,omitempty"`
	Description string       `yaml:"description,omitempty" json:"description,omitempty"`
	Prefix      string       `yaml:"prefix" json:"prefix"`
	Attributes  AttributeMap `yaml:"attributes,omitempty" json:"attributes,omitempty"`
}

type RuleSet struct {
	Blocks  []BlockRule  `yaml:"blocks" json:"blocks"`
	Inlines []InlineRule `yaml:"inlines" json:"inlines"`
}

// Index maps every line prefix, aliases included, to the rule it selects.
type Index map[string]*BlockRule

// BuildIndex registers each rule's prefix followed by its aliases. A prefix
// claimed by more than one rule resolves to the rule registered last.
func BuildIndex(blocks []BlockRule) Index {
	idx := make(Index, len(blocks))
	for i := range blocks {
		b := &blocks[i]
		idx[b.Prefix] = b
		for _, alt := range b.Alt {
			idx[alt] = b
		}
	}
	return idx
}

// Lookup returns the rule registered for prefix, or nil.
func (idx Index) Lookup(prefix string) *BlockRule {
	return idx[prefix]
}

// Conflicts reports every prefix that more than one rule registers, mapped to
// the types of the rules that claim it in registration order.
func Conflicts(blocks []BlockRule) map[string][]string {
	claims := make(map[string][]string)
	for _, b := range blocks {
		claims[b.Prefix] = append(claims[b.Prefix], b.Type)
		for _, alt := range b.Alt {
			claims[alt] = append(claims[alt], b.Type)
		}
	}
	maps.DeleteFunc(claims, func(_ string, types []string) bool {
		return len(types) < 2
	})
	return claims
}

// ConflictWarnings describes each conflicting prefix in one line, sorted by
// prefix.
func ConflictWarnings(blocks []BlockRule) []string {
	conflicts := Conflicts(blocks)
	warnings := make([]string, 0, len(conflicts))
	for _, prefix := range slices.Sorted(maps.Keys(conflicts)) {
		warnings = append(warnings, fmt.Sprintf("prefix %q is claimed by %v; the last one wins", prefix, conflicts[prefix]))
	}
	return warnings
}

// TagPrefix returns the prefix of the first inline rule producing tags, or
// "#" when the set has none.
func (rs RuleSet) TagPrefix() string {
	for _, in := range rs.Inlines {
		if in.Type == TypeTag {
			return in.Prefix
		}
	}
	return "#"
}

// Validate checks that every rule carries a type and a usable prefix.
func (rs RuleSet) Validate() error {
	for i, b := range rs.Blocks {
		if b.Type == "" {
			return fmt.Errorf("block rule %d: %w", i, ErrMissingType)
		}
		if b.Prefix == "" {
			return fmt.Errorf("block rule %d (%s): %w", i, b.Type, ErrEmptyPrefix)
		}
		for _, alt := range b.Alt {
			if alt == "" {
				return fmt.Errorf("block rule %d (%s) alias: %w", i, b.Type, ErrEmptyPrefix)
			}
		}
	}
	for i, in := range rs.Inlines {
		if in.Type == "" {
			return fmt.Errorf("inline rule %d: %w", i, ErrMissingType)
		}
		if in.Prefix == "" {
			return fmt.Errorf("inline rule %d (%s): %w", i, in.Type, ErrEmptyPrefix)
		}
	}
	return nil
}

// Parse decodes and validates a YAML rule set.
func Parse(data []byte) (RuleSet, error) {
	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return RuleSet{}, fmt.Errorf("invalid rule set: %w", err)
	}
	if err := rs.Validate(); err != nil {
		return RuleSet{}, err
	}
	return rs, nil
}

// Load reads a rule set file. An empty path selects the built-in rules.
func Load(path string) (RuleSet, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, fmt.Errorf("cannot read rule set %s: %w", path, err)
	}
	rs, err := Parse(data)
	if err != nil {
		return RuleSet{}, fmt.Errorf("%s: %w", path, err)
	}
	return rs, nil
}

// Marshal encodes the rule set as YAML.
func (rs RuleSet) Marshal() ([]byte, error) {
	return yaml.Marshal(rs)
}

package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"patientlink/internal/identity"
)

// Pattern is one filename id pattern. Group selects the capture group to use;
// zero means the whole match. It decodes from either a bare pattern string or
// a {pattern, group} object.
type Pattern struct {
	Pattern string `json:"pattern" yaml:"pattern"`
	Group   int    `json:"group,omitempty" yaml:"group,omitempty"`
}

type patternObject struct {
	Pattern string      `json:"pattern" yaml:"pattern"`
	Group   json.Number `json:"group" yaml:"group"`
}

// ErrNegativeGroup rejects an id pattern whose capture group is below zero.
var ErrNegativeGroup = errors.New("id pattern: negative capture group")

// toPattern keeps integer groups; a non-integer group means the whole match.
func (o patternObject) toPattern() (Pattern, error) {
	p := Pattern{Pattern: o.Pattern}
	if o.Group != "" {
		if g, err := o.Group.Int64(); err == nil {
			if g < 0 {
				return Pattern{}, fmt.Errorf("%w: %q group %d", ErrNegativeGroup, o.Pattern, g)
			}
			p.Group = int(g)
		}
	}
	return p, nil
}

// UnmarshalJSON accepts a string or an object.
func (p *Pattern) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*p = Pattern{Pattern: s}
		return nil
	}
	var obj patternObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("id pattern: %w", err)
	}
	decoded, err := obj.toPattern()
	if err != nil {
		return err
	}
	*p = decoded
	return nil
}

// MarshalJSON writes bare strings for whole-match patterns.
func (p Pattern) MarshalJSON() ([]byte, error) {
	if p.Group == 0 {
		return json.Marshal(p.Pattern)
	}
	return json.Marshal(struct {
		Pattern string `json:"pattern"`
		Group   int    `json:"group"`
	}{p.Pattern, p.Group})
}

// UnmarshalYAML accepts a scalar or a mapping.
func (p *Pattern) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*p = Pattern{Pattern: node.Value}
		return nil
	case yaml.MappingNode:
		var obj struct {
			Pattern string `yaml:"pattern"`
			Group   string `yaml:"group"`
		}
		if err := node.Decode(&obj); err != nil {
			return fmt.Errorf("id pattern: %w", err)
		}
		decoded, err := patternObject{Pattern: obj.Pattern, Group: json.Number(strings.TrimSpace(obj.Group))}.toPattern()
		if err != nil {
			return err
		}
		*p = decoded
		return nil
	default:
		return fmt.Errorf("id pattern: unsupported yaml node at line %d", node.Line)
	}
}

// InvalidPattern records a pattern that failed to compile.
type InvalidPattern struct {
	Pattern string
	Err     error
}

type compiledPattern struct {
	re    *regexp.Regexp
	group int
}

// PatternSet is an ordered list of compiled id patterns. It is not modified
// after NewPatternSet returns and may be shared read-only.
type PatternSet struct {
	compiled []compiledPattern
	invalid  []InvalidPattern
}

// NewPatternSet compiles patterns case-insensitively. Empty and uncompilable
// patterns are skipped; the latter are reported by Invalid.
func NewPatternSet(patterns []Pattern) *PatternSet {
	set := &PatternSet{}
	cache := make(map[string]*regexp.Regexp, len(patterns))
	failed := make(map[string]struct{})
	for _, p := range patterns {
		if strings.TrimSpace(p.Pattern) == "" {
			continue
		}
		if _, bad := failed[p.Pattern]; bad {
			continue
		}
		re, ok := cache[p.Pattern]
		if !ok {
			var err error
			re, err = regexp.Compile("(?i)" + p.Pattern)
			if err != nil {
				failed[p.Pattern] = struct{}{}
				set.invalid = append(set.invalid, InvalidPattern{Pattern: p.Pattern, Err: err})
				continue
			}
			cache[p.Pattern] = re
		}
		group := p.Group
		if group < 0 {
			group = 0
		}
		set.compiled = append(set.compiled, compiledPattern{re: re, group: group})
	}
	return set
}

// Len returns the number of usable patterns.
func (s *PatternSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.compiled)
}

// Invalid lists patterns that failed to compile.
func (s *PatternSet) Invalid() []InvalidPattern {
	if s == nil {
		return nil
	}
	return append([]InvalidPattern(nil), s.invalid...)
}

// Extract returns the normalized identifier from the first pattern that
// matches name and yields a non-empty value. A missing or non-participating
// capture group falls back to the whole match.
func (s *PatternSet) Extract(name string) (string, bool) {
	if s == nil {
		return "", false
	}
	for _, p := range s.compiled {
		loc := p.re.FindStringSubmatchIndex(name)
		if loc == nil {
			continue
		}
		value := name[loc[0]:loc[1]]
		if p.group > 0 && p.group <= p.re.NumSubexp() && loc[2*p.group] >= 0 {
			value = name[loc[2*p.group]:loc[2*p.group+1]]
		}
		if id := identity.NormalizeIdentifier(value); id != "" {
			return id, true
		}
	}
	return "", false
}

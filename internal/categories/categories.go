// Package categories provides the ordered keyword rule set that assigns every
// image description to exactly one album.
package categories

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Other is the catch-all category returned when no rule matches.
const Other = "Other"

// Rule maps a category name to the keywords that select it.
type Rule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// DefaultRules is the built-in rule table. Order matters: the first matching
// rule wins.
var DefaultRules = []Rule{
	{
		Name: "Person",
		Keywords: []string{
			"person", "people", "man", "woman", "boy", "girl", "face", "portrait",
			"selfie", "child", "adult", "men", "women",
		},
	},
	{
		Name: "Nature",
		Keywords: []string{
			"nature", "tree", "forest", "mountain", "hill", "valley", "desert", "beach",
			"flower", "sun", "cloud", "sky", "plant", "grass", "leaf", "earth", "outdoor",
		},
	},
	{
		Name: "Water",
		Keywords: []string{
			"water", "river", "lake", "sea", "ocean", "pond", "stream", "wave", "pool",
			"aqua", "aquatic",
		},
	},
	{
		Name: "Animals",
		Keywords: []string{
			"animal", "dog", "cat", "bird", "fish", "horse", "lion", "tiger", "bear",
			"wolf", "rabbit", "deer", "cow", "sheep", "goat", "duck", "chicken", "pig",
			"pet", "wildlife",
		},
	},
	{
		Name: "Car",
		Keywords: []string{
			"car", "vehicle", "automobile", "sedan", "suv", "truck", "jeep", "van", "auto",
			"motor", "engine", "wheel", "drive", "roadster", "convertible",
		},
	},
	{
		Name: "Music",
		Keywords: []string{
			"music", "guitar", "piano", "violin", "drum", "instrument", "song", "singer",
			"band", "melody", "note", "flute", "saxophone", "trumpet", "keyboard",
			"musician", "concert", "orchestra",
		},
	},
}

var nonWord = regexp.MustCompile(`\W+`)

// Tokenize lower-cases s and splits it on runs of non-word characters.
func Tokenize(s string) []string {
	if s == "" {
		return nil
	}
	var tokens []string
	for _, tok := range nonWord.Split(strings.ToLower(s), -1) {
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// IsPlainName reports whether name is usable as a single folder name.
func IsPlainName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}

// RuleSet is an immutable, ordered set of rules.
type RuleSet struct {
	rules    []Rule
	keywords []map[string]struct{}
}

// NewRuleSet validates rules and builds a rule set preserving their order.
func NewRuleSet(rules []Rule) (*RuleSet, error) {
	rs := &RuleSet{
		rules:    make([]Rule, 0, len(rules)),
		keywords: make([]map[string]struct{}, 0, len(rules)),
	}
	seen := make(map[string]bool)
	for i, r := range rules {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			return nil, fmt.Errorf("rule %d has no name", i+1)
		}
		if name == Other {
			return nil, fmt.Errorf("rule %d: %q is reserved for the catch-all category", i+1, Other)
		}
		if !IsPlainName(name) {
			return nil, fmt.Errorf("rule %d: %q cannot contain path separators or be . or ..", i+1, name)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate rule %q", name)
		}
		seen[name] = true

		set := make(map[string]struct{}, len(r.Keywords))
		kws := make([]string, 0, len(r.Keywords))
		for _, kw := range r.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			if _, dup := set[kw]; !dup {
				set[kw] = struct{}{}
				kws = append(kws, kw)
			}
		}
		if len(kws) == 0 {
			return nil, fmt.Errorf("rule %q has no keywords", name)
		}
		rs.rules = append(rs.rules, Rule{Name: name, Keywords: kws})
		rs.keywords = append(rs.keywords, set)
	}
	return rs, nil
}

var defaultSet = mustRuleSet(DefaultRules)

func mustRuleSet(rules []Rule) *RuleSet {
	rs, err := NewRuleSet(rules)
	if err != nil {
		panic(err)
	}
	return rs
}

// Default returns the built-in rule set.
func Default() *RuleSet {
	return defaultSet
}

// Categorize returns the first rule whose keywords contain one of the
// description's tokens, or Other.
func (rs *RuleSet) Categorize(description string) string {
	tokens := Tokenize(description)
	if len(tokens) == 0 {
		return Other
	}
	for i, r := range rs.rules {
		set := rs.keywords[i]
		for _, tok := range tokens {
			if _, ok := set[tok]; ok {
				return r.Name
			}
		}
	}
	return Other
}

// Names returns the category names in declaration order, with Other last.
func (rs *RuleSet) Names() []string {
	names := make([]string, 0, len(rs.rules)+1)
	for _, r := range rs.rules {
		names = append(names, r.Name)
	}
	return append(names, Other)
}

// Has reports whether name is one of the rule set's categories.
func (rs *RuleSet) Has(name string) bool {
	for _, n := range rs.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// Rules returns a copy of the rules in declaration order.
func (rs *RuleSet) Rules() []Rule {
	out := make([]Rule, len(rs.rules))
	for i, r := range rs.rules {
		out[i] = Rule{Name: r.Name, Keywords: append([]string(nil), r.Keywords...)}
	}
	return out
}

// Categorize classifies description with the built-in rules.
func Categorize(description string) string {
	return defaultSet.Categorize(description)
}

// configPath returns the path to the user's custom rules file.
func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".imggallery", "categories.yaml"), nil
}

// LoadRules reads an ordered rule list from a YAML file.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rules []Rule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("cannot parse categories file %s: %w", path, err)
	}
	return rules, nil
}

// LoadCustomRules reads rules from ~/.imggallery/categories.yaml.
// Returns nil if the file does not exist.
func LoadCustomRules() ([]Rule, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	rules, err := LoadRules(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot load categories file: %w", err)
	}
	return rules, nil
}

// Resolve returns the rule set to use.
// Priority: explicit file > custom file > defaults.
func Resolve(explicitPath string) (*RuleSet, error) {
	if explicitPath != "" {
		rules, err := LoadRules(explicitPath)
		if err != nil {
			return nil, fmt.Errorf("cannot load categories file: %w", err)
		}
		return NewRuleSet(rules)
	}

	custom, err := LoadCustomRules()
	if err != nil {
		return nil, err
	}
	if len(custom) > 0 {
		return NewRuleSet(custom)
	}

	return Default(), nil
}

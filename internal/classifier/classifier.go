package classifier

import (
	"strings"
	"unicode"

	"github.com/Ayash-Bera/aidline/internal/models"
	"github.com/sirupsen/logrus"
)

// Rule is one predicate group of the priority table. A rule matches when any of its
// tests fires: an exact token, a token prefix, every word of an AllOf group, or a phrase
// found in the normalized text.
type Rule struct {
	Name      string
	Condition models.ConditionTag
	Terms     []string
	Stems     []string
	AllOf     [][]string
	Phrases   []string
}

// Match describes which rule decided a classification.
type Match struct {
	Condition models.ConditionTag `json:"condition"`
	Rule      string              `json:"rule,omitempty"`
	Trigger   string              `json:"trigger,omitempty"`
}

// Classifier evaluates the rule table top to bottom; the first matching rule wins.
type Classifier struct {
	rules  []Rule
	logger *logrus.Logger
}

func New(logger *logrus.Logger) *Classifier {
	return NewWithRules(DefaultRules(), logger)
}

func NewWithRules(rules []Rule, logger *logrus.Logger) *Classifier {
	if logger == nil {
		logger = logrus.New()
	}
	return &Classifier{
		rules:  rules,
		logger: logger,
	}
}

// Classify maps raw query text to exactly one condition tag.
func (c *Classifier) Classify(query string) models.ConditionTag {
	return c.Explain(query).Condition
}

// Explain returns the tag together with the rule and trigger that produced it.
func (c *Classifier) Explain(query string) Match {
	text := Normalize(query)
	if text == "" {
		return Match{Condition: models.ConditionUnclassified}
	}
	tokens := tokenSet(text)

	for _, rule := range c.rules {
		if trigger, ok := rule.match(text, tokens); ok {
			c.logger.WithFields(logrus.Fields{
				"condition": rule.Condition,
				"rule":      rule.Name,
				"trigger":   trigger,
			}).Debug("Query classified")
			return Match{Condition: rule.Condition, Rule: rule.Name, Trigger: trigger}
		}
	}

	c.logger.WithField("query", text).Debug("No classification rule matched")
	return Match{Condition: models.ConditionUnclassified}
}

// Rules returns a copy of the priority table.
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

func (r Rule) match(text string, tokens map[string]bool) (string, bool) {
	for _, term := range r.Terms {
		if tokens[term] {
			return term, true
		}
	}
	for _, stem := range r.Stems {
		for tok := range tokens {
			if strings.HasPrefix(tok, stem) {
				return stem, true
			}
		}
	}
	for _, group := range r.AllOf {
		if len(group) == 0 {
			continue
		}
		all := true
		for _, word := range group {
			if !tokens[word] {
				all = false
				break
			}
		}
		if all {
			return strings.Join(group, "+"), true
		}
	}
	padded := " " + text + " "
	for _, phrase := range r.Phrases {
		if strings.Contains(padded, " "+phrase+" ") {
			return phrase, true
		}
	}
	return "", false
}

// Normalize lowercases the text, folds typographic apostrophes and replaces every
// other non-alphanumeric rune with a single space.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r == '’' || r == '‘' || r == '\'':
			b.WriteRune('\'')
			lastSpace = false
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// Tokens splits normalized text into words.
func Tokens(text string) []string {
	return strings.Fields(Normalize(text))
}

func tokenSet(normalized string) map[string]bool {
	fields := strings.Fields(normalized)
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}

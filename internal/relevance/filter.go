package relevance

import (
	"fmt"
	"math"
	"strings"

	"github.com/Ayash-Bera/aidline/internal/classifier"
	"github.com/Ayash-Bera/aidline/internal/metrics"
	"github.com/Ayash-Bera/aidline/internal/models"
	"github.com/sirupsen/logrus"
)

// Tiers of the relaxation ladder. TierNone means nothing was accepted.
const (
	TierNone    = 0
	TierStrict  = 1
	TierKeyword = 2
	TierLenient = 3
	TierFinal   = 4
)

// Thresholds are the numeric bounds of the ladder, in the backend's own score units.
type Thresholds struct {
	Strict  float64 `mapstructure:"strict"`
	Keyword float64 `mapstructure:"keyword"`
	Lenient float64 `mapstructure:"lenient"`
	Final   float64 `mapstructure:"final"`
}

// Policy is the ladder configuration of one backend.
type Policy struct {
	HigherIsBetter bool
	Thresholds
}

// Passes reports whether score is strictly better than the bound.
func (p Policy) Passes(score, bound float64) bool {
	if math.IsNaN(score) {
		return false
	}
	if p.HigherIsBetter {
		return score > bound
	}
	return score < bound
}

func (p Policy) looser(a, b float64) bool {
	if p.HigherIsBetter {
		return a < b
	}
	return a > b
}

// Validate checks that each tier bound is looser than the one before it.
func (p Policy) Validate() error {
	if !p.looser(p.Keyword, p.Strict) {
		return fmt.Errorf("keyword threshold %.2f is not looser than strict %.2f", p.Keyword, p.Strict)
	}
	if !p.looser(p.Lenient, p.Keyword) {
		return fmt.Errorf("lenient threshold %.2f is not looser than keyword %.2f", p.Lenient, p.Keyword)
	}
	if !p.looser(p.Final, p.Strict) {
		return fmt.Errorf("final threshold %.2f is not looser than strict %.2f", p.Final, p.Strict)
	}
	return nil
}

// DefaultPolicies returns the ladder used when nothing is configured.
func DefaultPolicies() map[models.BackendID]Policy {
	return map[models.BackendID]Policy{
		models.BackendVector: {
			HigherIsBetter: true,
			Thresholds:     Thresholds{Strict: 0.7, Keyword: 0.55, Lenient: 0.4, Final: 0.45},
		},
		models.BackendDocument: {
			HigherIsBetter: false,
			Thresholds:     Thresholds{Strict: 0.3, Keyword: 0.45, Lenient: 0.7, Final: 0.6},
		},
		models.BackendLiterature: {
			HigherIsBetter: true,
			Thresholds:     Thresholds{Strict: 0.9, Keyword: 0.7, Lenient: 0.6, Final: 0.45},
		},
	}
}

// lenientConditions need wider recall: the keyword tier is relaxed further for them.
var lenientConditions = map[models.ConditionTag]bool{
	models.ConditionDogBite:     true,
	models.ConditionAnimalBite:  true,
	models.ConditionSnakeBite:   true,
	models.ConditionInsectSting: true,
}

// IsLenient reports whether the condition gets the extra-lenient tier.
func IsLenient(c models.ConditionTag) bool {
	return lenientConditions[c]
}

// Outcome is the filtered result of one backend.
type Outcome struct {
	BackendID models.BackendID
	Tier      int
	Accepted  []models.RetrievalPassage
}

type Filter struct {
	policies map[models.BackendID]Policy
	logger   *logrus.Logger
}

func NewFilter(policies map[models.BackendID]Policy, logger *logrus.Logger) *Filter {
	if logger == nil {
		logger = logrus.New()
	}
	merged := DefaultPolicies()
	for id, p := range policies {
		merged[id] = p
	}
	return &Filter{policies: merged, logger: logger}
}

// Policy returns the ladder of a backend. Unknown backends get a policy derived from
// their score direction.
func (f *Filter) Policy(id models.BackendID) Policy {
	if p, ok := f.policies[id]; ok {
		return p
	}
	if id.HigherIsBetter() {
		return f.policies[models.BackendVector]
	}
	return f.policies[models.BackendDocument]
}

// Apply walks the ladder for one backend and stops at the first tier that accepts
// anything. Passages keep their original order.
func (f *Filter) Apply(backend models.BackendID, passages []models.RetrievalPassage, condition models.ConditionTag, keywords []string) Outcome {
	out := Outcome{BackendID: backend}
	if len(passages) == 0 {
		return out
	}

	policy := f.Policy(backend)
	matches := make([]bool, len(passages))
	for i, p := range passages {
		matches[i] = ContainsKeyword(p.Text, keywords)
	}

	for tier := TierStrict; tier <= TierFinal; tier++ {
		if tier == TierLenient && !IsLenient(condition) {
			continue
		}
		var accepted []models.RetrievalPassage
		for i, p := range passages {
			if acceptAt(tier, policy, p.RelevanceScore, matches[i], condition) {
				accepted = append(accepted, p)
			}
		}
		if len(accepted) > 0 {
			out.Tier = tier
			out.Accepted = accepted
			break
		}
	}

	metrics.RecordLadderTier(string(backend), tierLabel(out.Tier))
	f.logger.WithFields(logrus.Fields{
		"backend":   backend,
		"condition": condition,
		"raw":       len(passages),
		"accepted":  len(out.Accepted),
		"tier":      out.Tier,
	}).Debug("Relevance filter applied")

	return out
}

// AcceptAt reports whether a passage is acceptable at the given tier. Acceptance is
// cumulative: a tier accepts everything the previous tier accepts plus its own
// predicate. The lenient tier adds nothing for conditions outside the lenient set.
func (f *Filter) AcceptAt(tier int, backend models.BackendID, p models.RetrievalPassage, condition models.ConditionTag, keywords []string) bool {
	return acceptAt(tier, f.Policy(backend), p.RelevanceScore, ContainsKeyword(p.Text, keywords), condition)
}

func acceptAt(tier int, policy Policy, score float64, keyword bool, condition models.ConditionTag) bool {
	if tier < TierStrict {
		return false
	}
	if acceptAt(tier-1, policy, score, keyword, condition) {
		return true
	}
	switch tier {
	case TierStrict:
		return policy.Passes(score, policy.Strict)
	case TierKeyword:
		return keyword && policy.Passes(score, policy.Keyword)
	case TierLenient:
		return IsLenient(condition) && keyword && policy.Passes(score, policy.Lenient)
	case TierFinal:
		return policy.Passes(score, policy.Final)
	}
	return false
}

// ContainsKeyword reports whether any keyword appears among the words of text.
// Keywords of four or more letters also match as a word prefix ("wash" matches "washing").
func ContainsKeyword(text string, keywords []string) bool {
	if len(keywords) == 0 || text == "" {
		return false
	}
	words := classifier.Tokens(text)
	for _, kw := range keywords {
		kw = strings.ToLower(kw)
		for _, w := range words {
			if w == kw || (len(kw) >= 4 && strings.HasPrefix(w, kw)) {
				return true
			}
		}
	}
	return false
}

func tierLabel(tier int) string {
	if tier == TierNone {
		return "none"
	}
	return fmt.Sprintf("%d", tier)
}

package relevance

import (
	"io"
	"math"
	"testing"

	"github.com/Ayash-Bera/aidline/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFilter() *Filter {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return NewFilter(nil, l)
}

func passage(text string, score float64) models.RetrievalPassage {
	return models.RetrievalPassage{Text: text, RelevanceScore: score}
}

func TestAcceptAt_Monotonic(t *testing.T) {
	f := newTestFilter()
	keywords := []string{"bite", "wound"}
	texts := []string{"Clean the bite wound", "Unrelated text about breakfast"}
	conditions := []models.ConditionTag{models.ConditionDogBite, models.ConditionBurn, models.ConditionUnclassified}
	backends := []models.BackendID{models.BackendVector, models.BackendDocument, models.BackendLiterature}

	for _, backend := range backends {
		for _, cond := range conditions {
			for _, text := range texts {
				for score := -0.5; score <= 2.0; score += 0.01 {
					p := passage(text, score)
					for tier := TierStrict; tier < TierFinal; tier++ {
						if f.AcceptAt(tier, backend, p, cond, keywords) {
							assert.True(t, f.AcceptAt(tier+1, backend, p, cond, keywords),
								"backend=%s cond=%s score=%.2f tier=%d", backend, cond, score, tier)
						}
					}
				}
			}
		}
	}
}

func TestApply_StrictTierWins(t *testing.T) {
	f := newTestFilter()
	in := []models.RetrievalPassage{
		passage("Wash the bite", 0.2),
		passage("Wash the bite", 0.4),
		passage("Other", 0.25),
	}

	out := f.Apply(models.BackendDocument, in, models.ConditionDogBite, []string{"bite"})
	assert.Equal(t, TierStrict, out.Tier)
	require.Len(t, out.Accepted, 2)
	assert.InDelta(t, 0.2, out.Accepted[0].RelevanceScore, 1e-9)
	assert.InDelta(t, 0.25, out.Accepted[1].RelevanceScore, 1e-9)
}

func TestApply_KeywordTier(t *testing.T) {
	f := newTestFilter()
	in := []models.RetrievalPassage{
		passage("Cool the burn under running water", 0.4),
		passage("Nothing relevant", 0.4),
	}

	out := f.Apply(models.BackendDocument, in, models.ConditionBurn, []string{"burn"})
	assert.Equal(t, TierKeyword, out.Tier)
	require.Len(t, out.Accepted, 1)
	assert.Contains(t, out.Accepted[0].Text, "burn")
}

func TestApply_LenientTierOnlyForBites(t *testing.T) {
	f := newTestFilter()
	in := []models.RetrievalPassage{
		passage("Wash the bite with soap", 0.65),
		passage("Nothing relevant", 0.65),
	}

	bite := f.Apply(models.BackendDocument, in, models.ConditionDogBite, []string{"bite"})
	assert.Equal(t, TierLenient, bite.Tier)
	assert.Len(t, bite.Accepted, 1)

	// A non-lenient condition skips tier 3 and falls through to the final bound (0.6).
	burn := f.Apply(models.BackendDocument, in, models.ConditionBurn, []string{"bite"})
	assert.Equal(t, TierNone, burn.Tier)
	assert.Empty(t, burn.Accepted)
}

func TestApply_FinalTierDropsKeywordRequirement(t *testing.T) {
	f := newTestFilter()
	in := []models.RetrievalPassage{passage("Nothing relevant", 0.5)}

	out := f.Apply(models.BackendVector, in, models.ConditionUnclassified, nil)
	assert.Equal(t, TierFinal, out.Tier)
	assert.Len(t, out.Accepted, 1)
}

func TestApply_Empty(t *testing.T) {
	f := newTestFilter()

	out := f.Apply(models.BackendVector, nil, models.ConditionBurn, nil)
	assert.Equal(t, TierNone, out.Tier)
	assert.Empty(t, out.Accepted)

	out = f.Apply(models.BackendVector, []models.RetrievalPassage{passage("x", 0.1), passage("y", math.NaN())}, models.ConditionBurn, nil)
	assert.Equal(t, TierNone, out.Tier)
}

func TestPolicy_Validate(t *testing.T) {
	for id, p := range DefaultPolicies() {
		assert.NoError(t, p.Validate(), id)
	}

	bad := Policy{HigherIsBetter: false, Thresholds: Thresholds{Strict: 0.5, Keyword: 0.4, Lenient: 0.7, Final: 0.8}}
	assert.Error(t, bad.Validate())
}

func TestNewFilter_OverridesPolicy(t *testing.T) {
	custom := Policy{HigherIsBetter: true, Thresholds: Thresholds{Strict: 0.95, Keyword: 0.9, Lenient: 0.85, Final: 0.8}}
	f := NewFilter(map[models.BackendID]Policy{models.BackendVector: custom}, nil)

	assert.Equal(t, custom, f.Policy(models.BackendVector))
	assert.Equal(t, DefaultPolicies()[models.BackendDocument], f.Policy(models.BackendDocument))
}

func TestContainsKeyword(t *testing.T) {
	assert.True(t, ContainsKeyword("Washing the wound", []string{"wash"}))
	assert.True(t, ContainsKeyword("A BITE on the arm", []string{"bite"}))
	assert.False(t, ContainsKeyword("important", []string{"ant"}))
	assert.False(t, ContainsKeyword("text", nil))
}

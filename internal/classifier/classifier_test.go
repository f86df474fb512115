package classifier

import (
	"io"
	"testing"

	"github.com/Ayash-Bera/aidline/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func newTestClassifier() *Classifier {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return New(logger)
}

func TestClassify_Choking(t *testing.T) {
	c := newTestClassifier()

	queries := []string{
		"choking",
		"Choking!",
		"  CHOKING  ",
		"my son is choking",
		"what to do when someone is choking",
		"first aid for choking",
		"general first aid choking",
	}
	for _, q := range queries {
		assert.Equal(t, models.ConditionChoking, c.Classify(q), q)
	}
}

func TestClassify_GeneralFirstAidOverridesWeakChoking(t *testing.T) {
	c := newTestClassifier()

	assert.Equal(t, models.ConditionGeneralFirstAid, c.Classify("general first aid"))
	assert.NotEqual(t, models.ConditionChoking, c.Classify("general first aid"))
	assert.Equal(t, models.ConditionGeneralFirstAid, c.Classify("basic first-aid when someone can't breathe"))

	// Without the general wording the weak signal still classifies.
	assert.Equal(t, models.ConditionChoking, c.Classify("my toddler can't breathe"))
	// A choking-specific term always beats the general override.
	assert.Equal(t, models.ConditionChoking, c.Classify("first aid when food stuck in her throat"))
}

func TestClassify_BitePrecedence(t *testing.T) {
	c := newTestClassifier()

	tests := []struct {
		query string
		want  models.ConditionTag
	}{
		{"dog bite", models.ConditionDogBite},
		{"I was bitten by a dog", models.ConditionDogBite},
		{"the puppy bit my hand", models.ConditionDogBite},
		{"snake bite on the leg", models.ConditionSnakeBite},
		{"bitten by a rattlesnake", models.ConditionSnakeBite},
		{"bee sting", models.ConditionInsectSting},
		{"spider bite swelling", models.ConditionInsectSting},
		{"mosquito bites itching", models.ConditionInsectSting},
		{"cat bite", models.ConditionAnimalBite},
		{"bite", models.ConditionAnimalBite},
		{"my dog was stung by a wasp", models.ConditionInsectSting},
		{"cat bit me", models.ConditionAnimalBite},
		{"the kitten was biting my hand", models.ConditionAnimalBite},
		{"dog bit me", models.ConditionDogBite},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Classify(tt.query), tt.query)
	}
}

func TestClassify_LifeCriticalBeforeBroad(t *testing.T) {
	c := newTestClassifier()

	assert.Equal(t, models.ConditionShock, c.Classify("he is bleeding and going into shock"))
	assert.Equal(t, models.ConditionSeizure, c.Classify("fainted and then had convulsions"))
	assert.Equal(t, models.ConditionHypoglycemia, c.Classify("diabetic fainted with low blood sugar"))
	assert.Equal(t, models.ConditionChoking, c.Classify("choking and bleeding"))
}

func TestClassify_Categories(t *testing.T) {
	c := newTestClassifier()

	tests := []struct {
		query string
		want  models.ConditionTag
	}{
		{"sprained ankle", models.ConditionSprain},
		{"pulled a muscle in my back", models.ConditionStrain},
		{"dislocated shoulder", models.ConditionDislocation},
		{"broken arm", models.ConditionFracture},
		{"burned my hand on the stove", models.ConditionBurn},
		{"deep cut on finger", models.ConditionCutOrWound},
		{"I cut myself shaving", models.ConditionCutOrWound},
		{"cut my thumb while slicing onions", models.ConditionCutOrWound},
		{"paper cut", models.ConditionCutOrWound},
		{"nose is bleeding", models.ConditionNosebleed},
		{"she passed out", models.ConditionFainting},
		{"anaphylactic reaction to peanuts", models.ConditionAllergicReaction},
		{"child swallowed bleach", models.ConditionPoisoning},
		{"signs of heat stroke", models.ConditionHeatStroke},
		{"what goes in a first aid kit", models.ConditionGeneralFirstAid},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Classify(tt.query), tt.query)
	}
}

func TestClassify_Unclassified(t *testing.T) {
	c := newTestClassifier()

	assert.Equal(t, models.ConditionUnclassified, c.Classify("what should I eat for breakfast"))
	assert.Equal(t, models.ConditionUnclassified, c.Classify("how do I cut onions"))
	assert.Equal(t, models.ConditionUnclassified, c.Classify("my back is a bit stiff"))
	assert.Equal(t, models.ConditionUnclassified, c.Classify(""))
	assert.Equal(t, models.ConditionUnclassified, c.Classify("   !!! "))
	assert.Equal(t, models.ConditionUnclassified, c.Classify("testing the system"))
}

func TestExplain_ReportsRule(t *testing.T) {
	c := newTestClassifier()

	m := c.Explain("dog bite")
	assert.Equal(t, models.ConditionDogBite, m.Condition)
	assert.Equal(t, "dog_bite", m.Rule)
	assert.Equal(t, "dog+bite", m.Trigger)
}

func TestNewWithRules_CustomOrder(t *testing.T) {
	rules := []Rule{
		{Name: "a", Condition: models.ConditionBurn, Terms: []string{"hot"}},
		{Name: "b", Condition: models.ConditionFainting, Terms: []string{"hot"}},
	}
	c := NewWithRules(rules, nil)
	assert.Equal(t, models.ConditionBurn, c.Classify("too hot"))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "can't breathe", Normalize("Can’t   BREATHE!!"))
	assert.Equal(t, "first aid kit", Normalize("first-aid kit"))
	assert.Equal(t, []string{"dog", "bite"}, Tokens("Dog-bite"))
}

package models

import "strings"

// ConditionTag is the canonical condition a query is classified into.
type ConditionTag string

const (
	ConditionShock            ConditionTag = "shock"
	ConditionChoking          ConditionTag = "choking"
	ConditionSeizure          ConditionTag = "seizure"
	ConditionHypoglycemia     ConditionTag = "hypoglycemia"
	ConditionAllergicReaction ConditionTag = "allergic_reaction"
	ConditionPoisoning        ConditionTag = "poisoning"
	ConditionHeatStroke       ConditionTag = "heat_stroke"
	ConditionSnakeBite        ConditionTag = "snake_bite"
	ConditionDogBite          ConditionTag = "dog_bite"
	ConditionInsectSting      ConditionTag = "insect_sting"
	ConditionAnimalBite       ConditionTag = "animal_bite"
	ConditionDislocation      ConditionTag = "dislocation"
	ConditionFracture         ConditionTag = "fracture"
	ConditionSprain           ConditionTag = "sprain"
	ConditionStrain           ConditionTag = "strain"
	ConditionBurn             ConditionTag = "burn"
	ConditionNosebleed        ConditionTag = "nosebleed"
	ConditionCutOrWound       ConditionTag = "cut_or_wound"
	ConditionFainting         ConditionTag = "fainting"
	ConditionGeneralFirstAid  ConditionTag = "general_first_aid"
	ConditionUnclassified     ConditionTag = "unclassified"
)

// AllConditions lists every tag in a stable order.
var AllConditions = []ConditionTag{
	ConditionShock,
	ConditionChoking,
	ConditionSeizure,
	ConditionHypoglycemia,
	ConditionAllergicReaction,
	ConditionPoisoning,
	ConditionHeatStroke,
	ConditionSnakeBite,
	ConditionDogBite,
	ConditionInsectSting,
	ConditionAnimalBite,
	ConditionDislocation,
	ConditionFracture,
	ConditionSprain,
	ConditionStrain,
	ConditionBurn,
	ConditionNosebleed,
	ConditionCutOrWound,
	ConditionFainting,
	ConditionGeneralFirstAid,
	ConditionUnclassified,
}

// emergencyConditions is the static emergency category set.
var emergencyConditions = map[ConditionTag]bool{
	ConditionShock:            true,
	ConditionChoking:          true,
	ConditionSeizure:          true,
	ConditionHypoglycemia:     true,
	ConditionAllergicReaction: true,
	ConditionPoisoning:        true,
	ConditionHeatStroke:       true,
	ConditionSnakeBite:        true,
}

// IsEmergency reports membership in the static emergency set.
func (c ConditionTag) IsEmergency() bool {
	return emergencyConditions[c]
}

// IsFirstAid reports whether the tag is a first-aid category, i.e. anything but unclassified.
func (c ConditionTag) IsFirstAid() bool {
	return c != ConditionUnclassified && c != ""
}

// DisplayName turns "dog_bite" into "Dog Bite".
func (c ConditionTag) DisplayName() string {
	if c == "" {
		return "General"
	}
	parts := strings.Split(string(c), "_")
	for i, p := range parts {
		if p == "or" {
			continue
		}
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}

// ParseCondition maps a string back to a known tag. Unknown values become unclassified.
func ParseCondition(s string) ConditionTag {
	tag := ConditionTag(strings.ToLower(strings.TrimSpace(s)))
	for _, c := range AllConditions {
		if c == tag {
			return c
		}
	}
	return ConditionUnclassified
}

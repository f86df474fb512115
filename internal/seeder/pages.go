package seeder

import "github.com/Ayash-Bera/aidline/internal/models"

// DefaultPages are the first-aid guides ingested when no list is given.
var DefaultPages = []GuidePage{
	{Title: "Choking: First aid", Priority: 10, Condition: models.ConditionChoking, URL: "https://www.mayoclinic.org/first-aid/first-aid-choking/basics/art-20056637"},
	{Title: "Shock: First aid", Priority: 10, Condition: models.ConditionShock, URL: "https://www.mayoclinic.org/first-aid/first-aid-shock/basics/art-20056620"},
	{Title: "Seizures: First aid", Priority: 9, Condition: models.ConditionSeizure, URL: "https://www.cdc.gov/epilepsy/first-aid-for-seizures/index.html"},
	{Title: "Severe allergic reaction: First aid", Priority: 9, Condition: models.ConditionAllergicReaction, URL: "https://www.mayoclinic.org/first-aid/first-aid-anaphylaxis/basics/art-20056608"},
	{Title: "Poisoning: First aid", Priority: 9, Condition: models.ConditionPoisoning, URL: "https://www.mayoclinic.org/first-aid/first-aid-poisoning/basics/art-20056657"},
	{Title: "Heatstroke: First aid", Priority: 8, Condition: models.ConditionHeatStroke, URL: "https://www.mayoclinic.org/first-aid/first-aid-heatstroke/basics/art-20056655"},
	{Title: "Snake bites: First aid", Priority: 8, Condition: models.ConditionSnakeBite, URL: "https://www.mayoclinic.org/first-aid/first-aid-snake-bites/basics/art-20056681"},
	{Title: "Animal bites: First aid", Priority: 8, Condition: models.ConditionAnimalBite, URL: "https://www.mayoclinic.org/first-aid/first-aid-animal-bites/basics/art-20056591"},
	{Title: "Dog bites: First aid", Priority: 8, Condition: models.ConditionDogBite, URL: "https://www.nhs.uk/conditions/animal-and-human-bites/"},
	{Title: "Insect bites and stings: First aid", Priority: 7, Condition: models.ConditionInsectSting, URL: "https://www.mayoclinic.org/first-aid/first-aid-insect-bites/basics/art-20056593"},
	{Title: "Burns: First aid", Priority: 7, Condition: models.ConditionBurn, URL: "https://www.mayoclinic.org/first-aid/first-aid-burns/basics/art-20056649"},
	{Title: "Cuts and scrapes: First aid", Priority: 7, Condition: models.ConditionCutOrWound, URL: "https://www.mayoclinic.org/first-aid/first-aid-cuts/basics/art-20056711"},
	{Title: "Severe bleeding: First aid", Priority: 7, Condition: models.ConditionCutOrWound, URL: "https://www.mayoclinic.org/first-aid/first-aid-severe-bleeding/basics/art-20056661"},
	{Title: "Nosebleeds: First aid", Priority: 6, Condition: models.ConditionNosebleed, URL: "https://www.mayoclinic.org/first-aid/first-aid-nosebleeds/basics/art-20056683"},
	{Title: "Fainting: First aid", Priority: 6, Condition: models.ConditionFainting, URL: "https://www.mayoclinic.org/first-aid/first-aid-fainting/basics/art-20056606"},
	{Title: "Fractures (broken bones): First aid", Priority: 6, Condition: models.ConditionFracture, URL: "https://www.mayoclinic.org/first-aid/first-aid-fractures/basics/art-20056641"},
	{Title: "Dislocation: First aid", Priority: 5, Condition: models.ConditionDislocation, URL: "https://www.mayoclinic.org/first-aid/first-aid-dislocation/basics/art-20056693"},
	{Title: "Sprain: First aid", Priority: 5, Condition: models.ConditionSprain, URL: "https://www.mayoclinic.org/first-aid/first-aid-sprain/basics/art-20056622"},
	{Title: "Low blood sugar: First aid", Priority: 5, Condition: models.ConditionHypoglycemia, URL: "https://www.nhs.uk/conditions/low-blood-sugar-hypoglycaemia/"},
}

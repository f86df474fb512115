package guide

import (
	"github.com/Ayash-Bera/aidline/internal/models"
)

func step(instruction, description string, important bool) models.GuideStep {
	return models.GuideStep{Instruction: instruction, Description: description, Important: important}
}

// CuratedTemplates returns the built-in guides for high-stakes conditions. Every call
// returns fresh copies.
func CuratedTemplates() map[models.ConditionTag]models.StructuredGuide {
	return map[models.ConditionTag]models.StructuredGuide{
		models.ConditionDogBite: {
			Condition: models.ConditionDogBite,
			Steps: []models.GuideStep{
				step("Wash the wound with soap and water", "Clean it under warm running water for at least five minutes to flush out saliva and bacteria.", true),
				step("Control the bleeding", "Press a clean cloth or gauze firmly on the wound until the bleeding slows.", true),
				step("Apply an antibiotic ointment", "Use a thin layer once the wound is clean and dry.", false),
				step("Cover with a sterile bandage", "Change the dressing daily or whenever it gets wet or dirty.", false),
				step("Seek medical care", "Deep punctures and bites to the face, hands or feet need a doctor. A tetanus shot or rabies treatment may be required.", true),
				step("Find out the dog's vaccination status", "Ask the owner for rabies records or report the bite to animal control.", false),
				step("Watch for signs of infection", "Redness, swelling, warmth, pus or fever in the next days need prompt attention.", false),
			},
			DoNotDo: []string{
				"Do not delay medical attention for deep, puncture or facial bites",
				"Do not close the wound with tape or glue",
				"Do not ignore redness, swelling or fever after the bite",
			},
		},
		models.ConditionAnimalBite: {
			Condition: models.ConditionAnimalBite,
			Steps: []models.GuideStep{
				step("Wash the bite with soap and water", "Rinse under running water for several minutes.", true),
				step("Stop the bleeding", "Apply firm pressure with a clean cloth.", true),
				step("Cover the wound", "Use a sterile, non-stick dressing.", false),
				step("Get medical advice", "Wild animal, bat and stray bites can carry rabies and need assessment the same day.", true),
				step("Watch for infection", "Seek care for spreading redness, swelling or fever.", false),
			},
			DoNotDo: []string{
				"Do not delay medical attention after a wild or stray animal bite",
				"Do not try to catch the animal yourself",
			},
		},
		models.ConditionSnakeBite: {
			Condition: models.ConditionSnakeBite,
			Steps: []models.GuideStep{
				step("Call emergency services", "Treat every snake bite as venomous until proven otherwise.", true),
				step("Move away from the snake", "Get the person out of striking range and keep them calm.", true),
				step("Keep the bitten limb still", "Immobilize it at or slightly below heart level.", true),
				step("Remove rings and tight clothing", "Swelling can develop quickly around the bite.", false),
				step("Clean the bite gently", "Wipe with water and cover with a clean, dry dressing.", false),
				step("Note the time of the bite", "Remember the snake's appearance if it is safe to do so.", false),
			},
			DoNotDo: []string{
				"Do not cut the wound or try to suck out the venom",
				"Do not apply a tourniquet or ice",
				"Do not give alcohol or caffeine",
				"Do not delay getting to a hospital",
			},
		},
		models.ConditionInsectSting: {
			Condition: models.ConditionInsectSting,
			Steps: []models.GuideStep{
				step("Remove the stinger", "Scrape it out sideways with a fingernail or card.", true),
				step("Wash the area with soap and water", "Clean the sting or bite site gently.", false),
				step("Apply a cold compress", "Hold it on for 10 minutes to reduce swelling and pain.", false),
				step("Take an antihistamine for itching", "Follow the package dosing.", false),
				step("Watch for an allergic reaction", "Trouble breathing, swelling of the face or throat, or dizziness needs emergency care immediately.", true),
			},
			DoNotDo: []string{
				"Do not squeeze the stinger with tweezers",
				"Do not scratch the sting",
				"Do not delay emergency care if breathing becomes difficult",
			},
		},
		models.ConditionChoking: {
			Condition: models.ConditionChoking,
			Steps: []models.GuideStep{
				step("Ask if they are choking", "If they can cough forcefully, encourage them to keep coughing.", true),
				step("Give 5 back blows", "Lean them forward and strike firmly between the shoulder blades with the heel of your hand.", true),
				step("Give 5 abdominal thrusts", "Stand behind them, make a fist above the navel and pull sharply inward and upward.", true),
				step("Alternate back blows and thrusts", "Continue until the object comes out or the person becomes unresponsive.", true),
				step("Call emergency services", "Call as soon as the airway is blocked and coughing does not clear it.", true),
				step("Start CPR if they become unresponsive", "Check the mouth for the object before giving breaths.", true),
			},
			DoNotDo: []string{
				"Do not perform blind finger sweeps",
				"Do not give water while the airway is blocked",
				"Do not leave the person alone",
			},
		},
		models.ConditionShock: {
			Condition: models.ConditionShock,
			Steps: []models.GuideStep{
				step("Call emergency services", "Shock is life-threatening and needs hospital treatment.", true),
				step("Lay the person down", "Raise their legs about 30 centimetres unless this causes pain or injury.", true),
				step("Keep them warm", "Cover them with a coat or blanket.", false),
				step("Treat any obvious cause", "Control bleeding with firm pressure.", true),
				step("Monitor breathing and response", "Be ready to start CPR.", true),
			},
			DoNotDo: []string{
				"Do not give anything to eat or drink",
				"Do not leave the person alone",
				"Do not raise the legs if you suspect a head, neck or spine injury",
			},
		},
		models.ConditionSeizure: {
			Condition: models.ConditionSeizure,
			Steps: []models.GuideStep{
				step("Keep the person safe", "Move hard or sharp objects away and cushion their head.", true),
				step("Time the seizure", "Call emergency services if it lasts longer than 5 minutes.", true),
				step("Loosen tight clothing", "Especially around the neck.", false),
				step("Roll them onto their side", "Once the jerking stops, place them in the recovery position.", true),
				step("Stay with them until fully alert", "Speak calmly and reassure them.", false),
			},
			DoNotDo: []string{
				"Do not put anything in their mouth",
				"Do not hold them down or restrain their movements",
				"Do not give food or drink until they are fully alert",
			},
		},
		models.ConditionHypoglycemia: {
			Condition: models.ConditionHypoglycemia,
			Steps: []models.GuideStep{
				step("Give fast-acting sugar", "15 to 20 grams: glucose tablets, fruit juice or regular soda.", true),
				step("Wait 15 minutes and recheck", "Repeat the sugar if symptoms continue or blood sugar stays low.", true),
				step("Give a snack once recovered", "Something with starch and protein keeps sugar levels up.", false),
				step("Call emergency services if they get worse", "Confusion, seizures or unresponsiveness need urgent help.", true),
				step("Stay with the person", "Watch them until they are fully recovered.", false),
			},
			DoNotDo: []string{
				"Do not give food or drink to someone who is unconscious",
				"Do not give insulin",
			},
		},
		models.ConditionBurn: {
			Condition: models.ConditionBurn,
			Steps: []models.GuideStep{
				step("Cool the burn", "Hold it under cool running water for 20 minutes.", true),
				step("Remove jewellery and clothing near the burn", "Leave anything stuck to the skin in place.", false),
				step("Cover loosely", "Use cling film or a clean, non-fluffy dressing.", false),
				step("Take pain relief if needed", "Paracetamol or ibuprofen can help.", false),
				step("Seek medical help for serious burns", "Large, deep, electrical or chemical burns, and burns on the face, hands or genitals need a doctor.", true),
			},
			DoNotDo: []string{
				"Do not use ice, butter or creams",
				"Do not burst blisters",
				"Do not remove clothing stuck to the burn",
			},
		},
		models.ConditionCutOrWound: {
			Condition: models.ConditionCutOrWound,
			Steps: []models.GuideStep{
				step("Apply direct pressure", "Use a clean cloth and press firmly until the bleeding stops.", true),
				step("Elevate the injured area", "Raise it above heart level if possible.", false),
				step("Clean the wound", "Rinse with clean running water once bleeding is controlled.", true),
				step("Cover with a sterile dressing", "Change it daily.", false),
				step("Get medical help for deep cuts", "Gaping wounds or bleeding that will not stop may need stitches.", true),
			},
			DoNotDo: []string{
				"Do not remove objects embedded in the wound",
				"Do not use cotton wool directly on the wound",
			},
		},
		models.ConditionSprain: {
			Condition: models.ConditionSprain,
			Steps: []models.GuideStep{
				step("Rest the injured joint", "Avoid putting weight on it.", true),
				step("Apply ice", "Wrap it in a cloth and apply for 15 to 20 minutes every 2 to 3 hours.", true),
				step("Compress with a bandage", "Snug but not tight enough to cut off circulation.", false),
				step("Elevate the limb", "Keep it above heart level when possible.", false),
				step("See a doctor if you cannot bear weight", "Severe pain or a deformed joint may mean a fracture.", true),
			},
			DoNotDo: []string{
				"Do not apply heat in the first 48 hours",
				"Do not massage the injured area early on",
			},
		},
		models.ConditionFainting: {
			Condition: models.ConditionFainting,
			Steps: []models.GuideStep{
				step("Lay the person down", "Raise their legs if possible.", true),
				step("Check breathing", "Call emergency services if they are not breathing normally.", true),
				step("Loosen tight clothing", "Give them fresh air.", false),
				step("Let them recover slowly", "Sit them up gradually once they come round.", false),
				step("Seek medical advice", "Fainting without an obvious cause should be checked by a doctor.", false),
			},
			DoNotDo: []string{
				"Do not make them stand up quickly",
				"Do not give food or drink until fully alert",
			},
		},
	}
}

// FallbackGuide is the generic guide used when nothing better can be built.
func FallbackGuide(condition models.ConditionTag) models.StructuredGuide {
	return models.StructuredGuide{
		Condition: condition,
		Steps: []models.GuideStep{
			step("Make sure the scene is safe", "Check for danger to yourself and others before approaching.", true),
			step("Check responsiveness and breathing", "Tap the person and ask loudly if they are okay.", true),
			step("Call emergency services if needed", "Call for any serious injury, breathing difficulty or loss of consciousness.", true),
			step("Keep the person still and comfortable", "Reassure them and keep them warm.", false),
			step("Monitor them until help arrives", "Watch for changes in breathing or responsiveness.", false),
		},
		DoNotDo: []string{
			"Do not move someone with a suspected head, neck or back injury",
			"Do not give food or drink to someone who is drowsy or unresponsive",
		},
		Source: models.GuideSourceFallback,
	}
}

package diagnosis

import (
	"fmt"
	"strings"
)

const analysisSystemPrompt = "You are an experienced physician. You analyze a smoker's questionnaire data and assess the impact of their habit on their skin and overall health. You must respond with a single valid JSON object and nothing else."

const analysisUserPromptTemplate = `Analyze the following patient questionnaire.

## Patient data
- Age: %d
- Gender: %s
- Age when smoking started: %d
- Cigarettes per day: %d
- Cigarette type: %s
- Brand: %s
- Quit attempts: %d
- Current health issues: %s
- Exercise frequency: %d times per week
- Alcohol consumption: %d times per week
- Sleep: %.1f hours
- Previous medical advice: %s

## Response format
Respond with exactly this JSON structure:

{
    "current_skin_status": "detailed assessment of the current skin condition (about 200 words)",
    "predicted_impact": "expected future health impact (about 200 words)",
    "smoking_habits_results": {
        "smoking_duration_years": <integer>,
        "pack_years": <float>,
        "addiction_level": "mild | moderate | severe",
        "health_risk_score": <integer 1-100>,
        "quit_success_probability": <float 0-1>
    },
    "current_effects_results": {
        "respiratory_impact": "impact on the respiratory system (about 100 words)",
        "cardiovascular_impact": "impact on the cardiovascular system (about 100 words)",
        "skin_condition_assessment": "assessment of the skin condition (about 100 words)",
        "overall_health_status": "overall health status (about 100 words)"
    }
}

## Notes
- Base the analysis on medical evidence and emphasize skin effects.
- pack_years = (cigarettes per day / 20) * years smoked.
- Weigh past quit attempts when estimating the quit success probability.`

const photoSystemPrompt = "You are a health and skincare advisor. You describe visible signs in a photo as general wellness observations, never as a medical diagnosis."

const photoUserPrompt = `Analyze this photo for visible signs of smoking-related effects on health and skin.

Cover:
1. Skin condition (wrinkles, dullness, pigmentation, elasticity)
2. Teeth and gums (staining, gum color)
3. The area around the eyes (dark circles, fine lines)
4. Overall impression of health

Be as specific and constructive as possible, and present the result as general health and beauty observations rather than a medical diagnosis. If no person is visible or the photo cannot be analyzed, say so.`

const agedPhotoPromptTemplate = `Generate this person's appearance 20 years later assuming their smoking habit continues. Their smoking habit: %s`

func buildAnalysisPrompt(in *QuestionnaireInput) string {
	healthIssues := "none"
	if len(in.CurrentHealthIssues) > 0 {
		healthIssues = strings.Join(in.CurrentHealthIssues, ", ")
	}
	brand := in.CigaretteBrand
	if brand == "" {
		brand = "unknown"
	}
	advice := in.PreviousMedicalAdvice
	if advice == "" {
		advice = "none"
	}

	return fmt.Sprintf(analysisUserPromptTemplate,
		in.CurrentAge,
		in.Gender,
		in.SmokingStartAge,
		in.DailyCigarettes,
		in.CigaretteType,
		brand,
		in.QuitAttempts,
		healthIssues,
		in.ExerciseFrequency,
		in.AlcoholConsumption,
		in.SleepHours,
		advice,
	)
}

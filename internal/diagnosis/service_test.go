package diagnosis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validQuestionnaire() *QuestionnaireInput {
	return &QuestionnaireInput{
		CurrentAge:         45,
		Gender:             "male",
		SmokingStartAge:    20,
		DailyCigarettes:    15,
		CigaretteType:      "traditional",
		QuitAttempts:       2,
		ExerciseFrequency:  1,
		AlcoholConsumption: 3,
		SleepHours:         6.5,
	}
}

func TestQuestionnaireValidate(t *testing.T) {
	in := validQuestionnaire()
	assert.NoError(t, in.Validate())

	in.SmokingStartAge = in.CurrentAge
	assert.NoError(t, in.Validate())

	in.SmokingStartAge = in.CurrentAge + 1
	assert.Error(t, in.Validate())
}

func TestBuildAnalysisPrompt(t *testing.T) {
	in := validQuestionnaire()
	in.CigaretteBrand = "TestBrand"
	in.CurrentHealthIssues = []string{"cough", "shortness of breath"}
	in.PreviousMedicalAdvice = "advised to quit"

	prompt := buildAnalysisPrompt(in)
	assert.Contains(t, prompt, "Age: 45")
	assert.Contains(t, prompt, "Gender: male")
	assert.Contains(t, prompt, "Cigarettes per day: 15")
	assert.Contains(t, prompt, "Brand: TestBrand")
	assert.Contains(t, prompt, "cough, shortness of breath")
	assert.Contains(t, prompt, "Sleep: 6.5 hours")
	assert.Contains(t, prompt, "advised to quit")
	// the response contract travels with every request
	assert.Contains(t, prompt, "pack_years")
	assert.Contains(t, prompt, "current_effects_results")
}

func TestBuildAnalysisPromptDefaults(t *testing.T) {
	prompt := buildAnalysisPrompt(validQuestionnaire())
	assert.Contains(t, prompt, "Brand: unknown")
	assert.Contains(t, prompt, "Current health issues: none")
	assert.Contains(t, prompt, "Previous medical advice: none")
}

const analysisJSON = `{
	"current_skin_status": "visible dryness",
	"predicted_impact": "accelerated aging",
	"smoking_habits_results": {
		"smoking_duration_years": 25,
		"pack_years": 18.75,
		"addiction_level": "moderate",
		"health_risk_score": 62,
		"quit_success_probability": 0.4
	},
	"current_effects_results": {
		"respiratory_impact": "reduced capacity",
		"cardiovascular_impact": "elevated risk",
		"skin_condition_assessment": "premature wrinkling",
		"overall_health_status": "fair"
	}
}`

func TestParseAnalysis(t *testing.T) {
	analysis, err := parseAnalysis(analysisJSON)
	require.NoError(t, err)

	assert.Equal(t, "visible dryness", analysis.CurrentSkinStatus)
	assert.Equal(t, 25, analysis.SmokingHabits.SmokingDurationYears)
	assert.Equal(t, 18.75, analysis.SmokingHabits.PackYears)
	assert.Equal(t, "moderate", analysis.SmokingHabits.AddictionLevel)
	assert.Equal(t, 62, analysis.SmokingHabits.HealthRiskScore)
	assert.Equal(t, "fair", analysis.CurrentEffects.OverallHealthStatus)
}

func TestParseAnalysisStripsProseWrapper(t *testing.T) {
	wrapped := "Here is the analysis you asked for:\n```json\n" + analysisJSON + "\n```\nLet me know if you need more."

	analysis, err := parseAnalysis(wrapped)
	require.NoError(t, err)
	assert.Equal(t, "visible dryness", analysis.CurrentSkinStatus)
}

func TestParseAnalysisRejects(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{
			name: "no json at all",
			text: "the model refused to answer",
		},
		{
			name: "empty response",
			text: "",
		},
		{
			name: "malformed json",
			text: `{"current_skin_status": `,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseAnalysis(tt.text)
			assert.Error(t, err)
		})
	}
}

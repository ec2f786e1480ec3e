package diagnosis

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// QuestionnaireInput is the smoking questionnaire submitted for analysis
type QuestionnaireInput struct {
	CurrentAge            int      `json:"currentAge" binding:"required,gte=1,lte=120"`
	Gender                string   `json:"gender" binding:"required,oneof=male female other"`
	SmokingStartAge       int      `json:"smokingStartAge" binding:"required,gte=1,lte=120"`
	DailyCigarettes       int      `json:"dailyCigarettes" binding:"gte=0,lte=100"`
	CigaretteType         string   `json:"cigaretteType" binding:"required"`
	CigaretteBrand        string   `json:"cigaretteBrand" binding:"omitempty,max=32"`
	QuitAttempts          int      `json:"quitAttempts" binding:"gte=0,lte=99"`
	CurrentHealthIssues   []string `json:"currentHealthIssues" binding:"omitempty,max=8"`
	ExerciseFrequency     int      `json:"exerciseFrequency" binding:"gte=0,lte=7"`
	AlcoholConsumption    int      `json:"alcoholConsumption" binding:"gte=0,lte=7"`
	SleepHours            float64  `json:"sleepHours" binding:"gte=0,lte=24"`
	PreviousMedicalAdvice string   `json:"previousMedicalAdvice" binding:"omitempty,max=128"`
}

// Validate applies the cross-field rules gin's tag validation cannot express
func (in *QuestionnaireInput) Validate() error {
	if in.SmokingStartAge > in.CurrentAge {
		return fmt.Errorf("smoking start age must not exceed current age")
	}
	return nil
}

// SmokingHabitsResults carries the derived smoking-habit figures
type SmokingHabitsResults struct {
	SmokingDurationYears   int     `json:"smoking_duration_years"`
	PackYears              float64 `json:"pack_years"`
	AddictionLevel         string  `json:"addiction_level"`
	HealthRiskScore        int     `json:"health_risk_score"`
	QuitSuccessProbability float64 `json:"quit_success_probability"`
}

// CurrentEffectsResults carries the current-impact assessment
type CurrentEffectsResults struct {
	RespiratoryImpact       string `json:"respiratory_impact"`
	CardiovascularImpact    string `json:"cardiovascular_impact"`
	SkinConditionAssessment string `json:"skin_condition_assessment"`
	OverallHealthStatus     string `json:"overall_health_status"`
}

// Analysis is the parsed questionnaire diagnosis
type Analysis struct {
	CurrentSkinStatus string                `json:"current_skin_status"`
	PredictedImpact   string                `json:"predicted_impact"`
	SmokingHabits     SmokingHabitsResults  `json:"smoking_habits_results"`
	CurrentEffects    CurrentEffectsResults `json:"current_effects_results"`
}

// PhotoDiagnosis is the combined result of photo analysis and aged-photo
// generation
type PhotoDiagnosis struct {
	Analysis        string `json:"analysis"`
	AgedImageBase64 string `json:"agedImage"`
}

// AnalyzeQuestionnaire produces a narrative skin and health diagnosis from
// the questionnaire data
func (c *Client) AnalyzeQuestionnaire(ctx context.Context, in *QuestionnaireInput) (*Analysis, error) {
	prompt := buildAnalysisPrompt(in)

	log.Info().Int("age", in.CurrentAge).Msg("starting questionnaire analysis")
	resp, err := c.analysisModel.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("analysis request failed: %w", err)
	}

	text, err := extractText(resp)
	if err != nil {
		return nil, err
	}

	analysis, err := parseAnalysis(text)
	if err != nil {
		return nil, err
	}

	log.Info().Msg("questionnaire analysis completed")
	return analysis, nil
}

// AnalyzePhoto produces a textual observation of smoking-related effects
// visible in the photo
func (c *Client) AnalyzePhoto(ctx context.Context, imageData []byte, format string) (string, error) {
	log.Info().Str("format", format).Int("size", len(imageData)).Msg("starting photo analysis")

	resp, err := c.visionModel.GenerateContent(ctx,
		genai.ImageData(format, imageData),
		genai.Text(photoUserPrompt),
	)
	if err != nil {
		return "", fmt.Errorf("photo analysis request failed: %w", err)
	}

	text, err := extractText(resp)
	if err != nil {
		return "", err
	}

	log.Info().Msg("photo analysis completed")
	return text, nil
}

// GenerateAgedPhoto asks the image generation model for the subject's
// projected appearance after 20 more years of the described habit. Returns
// the generated image as base64-encoded PNG data.
func (c *Client) GenerateAgedPhoto(ctx context.Context, imageData []byte, format, habitSummary string) (string, error) {
	prompt := fmt.Sprintf(agedPhotoPromptTemplate, habitSummary)

	log.Info().Str("format", format).Msg("starting aged-photo generation")
	resp, err := c.generationModel.GenerateContent(ctx,
		genai.Text(prompt),
		genai.ImageData(format, imageData),
	)
	if err != nil {
		return "", fmt.Errorf("image generation request failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("image generation returned an empty response")
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if blob, ok := part.(genai.Blob); ok && blob.MIMEType == "image/png" {
			log.Info().Int("size", len(blob.Data)).Msg("aged-photo generation completed")
			return base64.StdEncoding.EncodeToString(blob.Data), nil
		}
	}
	return "", fmt.Errorf("no image data found in generation response")
}

// FullPhotoDiagnosis runs photo analysis and aged-photo generation
// concurrently and combines the results
func (c *Client) FullPhotoDiagnosis(ctx context.Context, imageData []byte, format, habitSummary string) (*PhotoDiagnosis, error) {
	var result PhotoDiagnosis

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		analysis, err := c.AnalyzePhoto(gctx, imageData, format)
		if err != nil {
			return err
		}
		result.Analysis = analysis
		return nil
	})
	g.Go(func() error {
		aged, err := c.GenerateAgedPhoto(gctx, imageData, format, habitSummary)
		if err != nil {
			return err
		}
		result.AgedImageBase64 = aged
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &result, nil
}

// extractText concatenates the text parts of the first candidate
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("model returned an empty response")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("model returned no text content")
	}
	return sb.String(), nil
}

// parseAnalysis extracts the JSON object from the model output. The model
// occasionally wraps the JSON in prose, so everything outside the outermost
// braces is discarded.
func parseAnalysis(text string) (*Analysis, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON object found in model response")
	}

	var analysis Analysis
	if err := json.Unmarshal([]byte(text[start:end+1]), &analysis); err != nil {
		return nil, fmt.Errorf("failed to parse model response: %w", err)
	}
	return &analysis, nil
}

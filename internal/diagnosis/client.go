package diagnosis

import (
	"context"
	"fmt"

	"cloud.google.com/go/vertexai/genai"
	"github.com/rs/zerolog/log"

	"github.com/nosmoke-app/backend/pkg/config"
)

// Model names used by the diagnosis services
const (
	analysisModelName   = "gemini-2.5-flash"
	visionModelName     = "gemini-2.5-flash"
	generationModelName = "gemini-2.5-flash-image-preview"
)

// Client holds the pre-configured generative models for questionnaire
// analysis, photo analysis and aged-photo generation
type Client struct {
	analysisModel   *genai.GenerativeModel
	visionModel     *genai.GenerativeModel
	generationModel *genai.GenerativeModel
	baseClient      *genai.Client
	projectID       string
	region          string
}

// NewClient creates a Vertex AI client holding all necessary models
func NewClient(ctx context.Context, cfg *config.GCPConfig) (*Client, error) {
	if cfg.ProjectID == "" || cfg.Region == "" {
		return nil, fmt.Errorf("NewClient: projectID and region cannot be empty")
	}

	baseClient, err := genai.NewClient(ctx, cfg.ProjectID, cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	analysisModel := baseClient.GenerativeModel(analysisModelName)
	analysisModel.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(analysisSystemPrompt)},
	}
	analysisModel.GenerationConfig = genai.GenerationConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0.2),
	}

	visionModel := baseClient.GenerativeModel(visionModelName)
	visionModel.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(photoSystemPrompt)},
	}

	generationModel := baseClient.GenerativeModel(generationModelName)

	log.Info().
		Str("project_id", cfg.ProjectID).
		Str("region", cfg.Region).
		Msg("vertex ai client initialized")

	return &Client{
		analysisModel:   analysisModel,
		visionModel:     visionModel,
		generationModel: generationModel,
		baseClient:      baseClient,
		projectID:       cfg.ProjectID,
		region:          cfg.Region,
	}, nil
}

// HealthCheck reports the client's readiness
func (c *Client) HealthCheck() map[string]interface{} {
	status := "healthy"
	message := "vertex ai service is ready"
	if c.baseClient == nil {
		status = "unhealthy"
		message = "vertex ai client not initialized"
	}
	return map[string]interface{}{
		"status":    status,
		"message":   message,
		"projectId": c.projectID,
		"location":  c.region,
		"model":     analysisModelName,
	}
}

// Close releases the underlying genai client
func (c *Client) Close() error {
	if c.baseClient != nil {
		return c.baseClient.Close()
	}
	return nil
}

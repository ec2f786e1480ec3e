package routes

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/nosmoke-app/backend/internal/diagnosis"
	"github.com/nosmoke-app/backend/internal/upload"
	"github.com/nosmoke-app/backend/pkg/types"
)

// DiagnosisRoutes sets up the AI diagnosis endpoints
func DiagnosisRoutes(api *gin.RouterGroup, client *diagnosis.Client, validator *upload.Validator) {
	api.POST("/diagnosis/questionnaire", handleQuestionnaireDiagnosis(client))
	api.POST("/diagnosis/photo", handlePhotoDiagnosis(client, validator))
	api.POST("/diagnosis/generate", handleGenerateDiagnosis(client, validator))
}

func handleQuestionnaireDiagnosis(client *diagnosis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req diagnosis.QuestionnaireInput
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, types.NewValidation("questionnaire data is invalid", err.Error()))
			return
		}
		if err := req.Validate(); err != nil {
			respondError(c, types.NewValidation(err.Error(), nil))
			return
		}

		analysis, err := client.AnalyzeQuestionnaire(c.Request.Context(), &req)
		if err != nil {
			log.Error().Err(err).Msg("questionnaire diagnosis failed")
			respondError(c, types.NewInternal())
			return
		}

		c.JSON(http.StatusOK, types.Success(analysis))
	}
}

func handlePhotoDiagnosis(client *diagnosis.Client, validator *upload.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, format, err := readPhoto(c, validator)
		if err != nil {
			respondError(c, err)
			return
		}

		analysis, err := client.AnalyzePhoto(c.Request.Context(), data, format)
		if err != nil {
			log.Error().Err(err).Msg("photo diagnosis failed")
			respondError(c, types.NewInternal())
			return
		}

		c.JSON(http.StatusOK, types.Success(gin.H{"analysis": analysis}))
	}
}

func handleGenerateDiagnosis(client *diagnosis.Client, validator *upload.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, format, err := readPhoto(c, validator)
		if err != nil {
			respondError(c, err)
			return
		}
		habitSummary := c.PostForm("habits")
		if habitSummary == "" {
			habitSummary = "unknown smoking habit"
		}

		result, err := client.FullPhotoDiagnosis(c.Request.Context(), data, format, habitSummary)
		if err != nil {
			log.Error().Err(err).Msg("photo generation failed")
			respondError(c, types.NewInternal())
			return
		}

		c.JSON(http.StatusOK, types.Success(result))
	}
}

// readPhoto validates the multipart photo with the upload validator and
// returns its bytes plus the decoded format name for the vision models
func readPhoto(c *gin.Context, validator *upload.Validator) ([]byte, string, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, "", types.NewValidation("a file form field is required", nil)
	}

	if err := validator.Basic(fileHeader.Size, fileHeader.Header.Get("Content-Type")); err != nil {
		return nil, "", err
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Error().Err(err).Msg("failed to open uploaded file")
		return nil, "", types.NewInternal()
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Error().Err(err).Msg("failed to read uploaded file")
		return nil, "", types.NewInternal()
	}

	dimensions, err := validator.Content(data)
	if err != nil {
		return nil, "", err
	}

	return data, strings.ToLower(dimensions.Format), nil
}

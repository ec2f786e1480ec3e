package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/nosmoke-app/backend/cmd/api-server/middleware"
	"github.com/nosmoke-app/backend/internal/upload"
	"github.com/nosmoke-app/backend/pkg/types"
)

// UploadRoutes sets up the image upload endpoints
func UploadRoutes(api *gin.RouterGroup, service *upload.Service, gateway *upload.Gateway) {
	api.POST("/upload-image", handleUploadImage(service))
	api.GET("/upload-status/:session_id", handleUploadStatus(gateway))
}

func handleUploadImage(service *upload.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := middleware.IdentityFromContext(c)
		if !ok {
			respondError(c, types.NewUnauthorized())
			return
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			respondError(c, types.NewValidation("a file form field is required", nil))
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			log.Error().Err(err).Msg("failed to open uploaded file")
			respondError(c, types.NewInternal())
			return
		}
		defer file.Close()

		result, err := service.Upload(c.Request.Context(), upload.UploadInput{
			SessionID:   c.PostForm("session_id"),
			UserID:      identity.UID,
			Filename:    fileHeader.Filename,
			ContentType: fileHeader.Header.Get("Content-Type"),
			Size:        fileHeader.Size,
			Content:     file,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, types.Success(result))
	}
}

func handleUploadStatus(gateway *upload.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := middleware.IdentityFromContext(c)
		if !ok {
			respondError(c, types.NewUnauthorized())
			return
		}

		sessionID := c.Param("session_id")
		session, err := gateway.GetSession(c.Request.Context(), sessionID)
		if err != nil {
			log.Error().Err(err).Str("session_id", sessionID).Msg("failed to read session")
			respondError(c, types.NewInternal())
			return
		}
		// a session belonging to another user is reported as absent
		if session == nil || (session.UserID != "" && session.UserID != identity.UID) {
			respondError(c, types.NewNotFound("session not found"))
			return
		}

		data := gin.H{
			"sessionId": session.ID,
			"status":    session.Status,
		}
		if session.ImageID != "" {
			data["imageId"] = session.ImageID
		}
		if !session.UpdatedAt.IsZero() {
			data["updatedAt"] = session.UpdatedAt
		}
		c.JSON(http.StatusOK, types.Success(data))
	}
}

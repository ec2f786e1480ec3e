package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/nosmoke-app/backend/pkg/types"
)

// respondError writes the error envelope for a tagged AppError, or a generic
// 500 for anything else. No internal detail reaches the client.
func respondError(c *gin.Context, err error) {
	if appErr, ok := types.AsAppError(err); ok {
		body := types.ErrorResponse{
			Success: false,
			Error: types.ErrorBody{
				Code:    appErr.Code,
				Message: appErr.Message,
				Details: appErr.Details,
			},
		}
		c.JSON(appErr.Status, body)
		return
	}

	log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("unhandled error")
	internal := types.NewInternal()
	c.JSON(http.StatusInternalServerError, types.Failure(internal.Code, internal.Message))
}

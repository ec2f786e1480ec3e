package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nosmoke-app/backend/internal/habits"
	"github.com/nosmoke-app/backend/pkg/types"
)

// HabitsRoutes sets up the smoking-habits questionnaire endpoints
func HabitsRoutes(api *gin.RouterGroup, service *habits.Service) {
	api.POST("/smoking-habits", handleSubmitHabits(service))
	api.GET("/smoking-habits/:questionnaire_id", handleGetHabits(service))
}

func handleSubmitHabits(service *habits.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req habits.SmokingHabits
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, types.NewValidation("questionnaire data is invalid", err.Error()))
			return
		}

		result, err := service.Submit(c.Request.Context(), &req)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, types.Success(result))
	}
}

func handleGetHabits(service *habits.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		fields, err := service.Get(c.Request.Context(), c.Param("questionnaire_id"))
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, types.Success(fields))
	}
}

package onboardinghttp

import "github.com/gin-gonic/gin"

// BasePath prefixes every onboarding route.
const BasePath = "/v1/onboarding/sessions"

// RegisterRoutes mounts the onboarding wizard on r.
func RegisterRoutes(r gin.IRouter, api *OnboardingAPI) {
	sessions := r.Group(BasePath)
	sessions.POST("", api.StartSession)

	session := sessions.Group("/:sessionId")
	session.GET("", api.GetSession)
	session.GET("/outcomes", api.ListOutcomes)
	session.POST("/basic-info", api.SubmitBasicInfo)
	session.POST("/categories", api.SubmitCategories)
	session.POST("/categories/:categoryId/toggle", api.ToggleCategory)

	draft := session.Group("/draft")
	draft.PUT("", api.UpdateDraftFields)
	draft.DELETE("", api.DiscardDraft)
	draft.POST("/submit", api.SubmitCurrentDraft)
	draft.POST("/schedules", api.AddScheduleEntry)
	draft.GET("/schedules/suggestion", api.SuggestWeekday)
	draft.PATCH("/schedules/:entryId", api.UpdateScheduleEntry)
	draft.DELETE("/schedules/:entryId", api.RemoveScheduleEntry)
	draft.POST("/photos", api.AttachPhoto)
	draft.DELETE("/photos/:photoId", api.RemovePhoto)

	draft.POST("/acknowledgement", api.AcknowledgeAmbiguous)
	session.POST("/finish", api.Finish)
}

package router

import (
	"github.com/fasthttp/router"

	apiHandler "github.com/fastygo/goaltracker/api/handler"
	"github.com/fastygo/goaltracker/internal/middleware"
)

type Handlers struct {
	Goal     *apiHandler.GoalHandler
	Task     *apiHandler.TaskHandler
	TimeSlot *apiHandler.TimeSlotHandler
	Sleep    *apiHandler.SleepHandler
	Activity *apiHandler.ActivityHandler
	Health   *apiHandler.HealthHandler
}

// New registers the tracker routes. A nil auth middleware leaves /api/v1 open.
func New(handlers Handlers, auth middleware.Middleware) *router.Router {
	if auth == nil {
		auth = middleware.Passthrough
	}
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	api := r.Group("/api/v1")

	// Goals
	api.GET("/goals", auth(handlers.Goal.List))
	api.POST("/goals", auth(handlers.Goal.Create))
	api.GET("/goals/{id}", auth(handlers.Goal.Get))
	api.PATCH("/goals/{id}", auth(handlers.Goal.Update))
	api.DELETE("/goals/{id}", auth(handlers.Goal.Delete))
	api.POST("/goals/{id}/start", auth(handlers.Goal.Start))
	api.POST("/goals/{id}/complete", auth(handlers.Goal.Complete))
	api.POST("/goals/{id}/archive", auth(handlers.Goal.Archive))
	api.POST("/goals/{id}/notes", auth(handlers.Goal.AddNote))
	api.GET("/goals/{id}/progress", auth(handlers.Goal.Progress))
	api.GET("/goals/{id}/tasks", auth(handlers.Goal.Tasks))
	api.GET("/goals/{id}/timeline", auth(handlers.Goal.Timeline))
	api.GET("/goals/{id}/stats", auth(handlers.Goal.Stats))

	// Tasks
	api.GET("/tasks", auth(handlers.Task.List))
	api.POST("/tasks", auth(handlers.Task.Create))
	api.PATCH("/tasks/{id}", auth(handlers.Task.Update))
	api.DELETE("/tasks/{id}", auth(handlers.Task.Delete))
	api.POST("/tasks/{id}/complete", auth(handlers.Task.Complete))
	api.POST("/tasks/{id}/archive", auth(handlers.Task.Archive))

	// Time slots
	api.GET("/timeslots", auth(handlers.TimeSlot.List))
	api.POST("/timeslots", auth(handlers.TimeSlot.Create))
	api.POST("/timeslots/defaults", auth(handlers.TimeSlot.LoadDefaults))
	api.PATCH("/timeslots/{id}", auth(handlers.TimeSlot.Update))
	api.DELETE("/timeslots/{id}", auth(handlers.TimeSlot.Delete))
	api.PUT("/timeslots/{id}/goals/{goalId}", auth(handlers.TimeSlot.AddGoal))
	api.DELETE("/timeslots/{id}/goals/{goalId}", auth(handlers.TimeSlot.RemoveGoal))

	// Sleep
	api.POST("/sleep/wake", auth(handlers.Sleep.Wake))
	api.POST("/sleep/sleep", auth(handlers.Sleep.Sleep))
	api.GET("/sleep/today", auth(handlers.Sleep.Today))
	api.GET("/sleep/logs", auth(handlers.Sleep.Logs))
	api.GET("/sleep/stats", auth(handlers.Sleep.Stats))

	// Productivity and timeline
	api.GET("/productivity/today", auth(handlers.Activity.Today))
	api.GET("/productivity/logs", auth(handlers.Activity.Logs))
	api.GET("/timeline", auth(handlers.Activity.Timeline))
	api.POST("/timeline", auth(handlers.Activity.LogEvent))
	api.POST("/interaction", auth(handlers.Activity.Touch))
	api.POST("/reset", auth(handlers.Activity.Reset))

	return r
}

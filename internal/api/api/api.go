package api

import (
	"github.com/gin-contrib/cors"
	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/ginext"

	"cafeDesk/cmd/middleware"
	"cafeDesk/internal/service"
	"cafeDesk/internal/session"
)

// StaticDir is a directory published under a URL prefix.
type StaticDir struct {
	Route string
	Dir   string
}

type Routers struct {
	Service  service.Service
	Sessions session.Store
	Log      *zerolog.Logger
	Mode     string
	Static   []StaticDir
}

func NewRouters(r *Routers) *ginext.Engine {
	mode := r.Mode
	if mode == "" {
		mode = "release"
	}
	app := ginext.New(mode)

	app.Use(middleware.LoggingMiddleware(r.Log))
	app.Use(middleware.Recovery(r.Log))
	app.Use(cors.Default())

	for _, s := range r.Static {
		app.Group(s.Route, middleware.StaticContent()).Static("/", s.Dir)
	}

	apiGroup := app.Group("/v1")

	apiGroup.GET("/event", r.Service.GetEvent)
	apiGroup.GET("/terms", r.Service.GetTerms)
	apiGroup.POST("/registrations", r.Service.Register)
	apiGroup.POST("/visits", r.Service.RecordVisit)

	apiGroup.POST("/admin/login", r.Service.Login)
	apiGroup.POST("/admin/logout", r.Service.Logout)
	apiGroup.GET("/admin/session", r.Service.SessionStatus)

	admin := apiGroup.Group("/admin")
	admin.Use(middleware.AdminSession(r.Sessions, r.Log))

	admin.GET("/stats", r.Service.Stats)

	admin.GET("/participants", r.Service.ListParticipants)
	admin.GET("/participants/export", r.Service.ExportParticipants)
	admin.DELETE("/participants/:id", r.Service.DeleteParticipant)

	admin.GET("/feedback", r.Service.ListFeedback)
	admin.GET("/feedback/export", r.Service.ExportFeedback)

	admin.GET("/visitors", r.Service.ListVisitors)
	admin.GET("/visitors/export", r.Service.ExportVisitors)

	admin.GET("/event-config", r.Service.GetEventConfig)
	admin.PUT("/event-config", r.Service.SaveEventConfig)

	admin.GET("/terms", r.Service.GetAdminTerms)
	admin.PUT("/terms", r.Service.SaveTerms)
	admin.GET("/terms/history", r.Service.TermsHistory)

	return app
}

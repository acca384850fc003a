package routes

import (
	"rollcall/auth"
	"rollcall/live"
	"rollcall/middleware"
	"rollcall/ratelim"
	"rollcall/signups"

	"github.com/julienschmidt/httprouter"
)

func AddAuthRoutes(router *httprouter.Router, a *auth.Handler, mw *middleware.Auth, rl *ratelim.RateLimiter) {
	router.POST("/api/auth/login", rl.Limit(a.Login))
	router.GET("/api/auth/me", mw.OptionalAuth(auth.Me))
}

func AddSignupRoutes(router *httprouter.Router, h *signups.Handler, mw *middleware.Auth, rl *ratelim.RateLimiter) {
	router.GET("/api/signups", mw.OptionalAuth(h.List))
	router.GET("/api/signups/summary", mw.OptionalAuth(h.Summary))
	router.GET("/api/signups/export.pdf", mw.OptionalAuth(h.ExportPDF))

	router.POST("/api/signups/sync", rl.Limit(mw.RequireAdmin(h.Sync)))
	router.POST("/api/signups/import", rl.Limit(mw.RequireAdmin(h.ImportCSV)))
	router.POST("/api/signups/status", mw.RequireAdmin(h.SetStatus))
}

func AddLiveRoutes(router *httprouter.Router, hub *live.Hub) {
	router.GET("/api/signups/live", live.ServeWS(hub))
}

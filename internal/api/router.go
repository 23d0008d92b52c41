package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "qrgen/internal/api/context"
	"qrgen/internal/api/handlers"
	"qrgen/internal/api/middleware"
)

type Dependencies struct {
	AuthHandler      *handlers.AuthHandler
	QRHandler        *handlers.QRHandler
	RedirectHandler  *handlers.RedirectHandler
	AnalyticsHandler *handlers.AnalyticsHandler
	BulkHandler      *handlers.BulkHandler
	AuditHandler     *handlers.AuditHandler
	HealthHandler    *handlers.HealthHandler
	MetricsHandler   *handlers.MetricsHandler
	AuthMiddleware   *middleware.AuthMiddleware
	RateLimiter      *middleware.RateLimiter
}

func NewRouter(deps *Dependencies) *httprouter.Router {
	router := httprouter.New()

	authMid := deps.AuthMiddleware
	limit := deps.RateLimiter.Limit

	// Public redirect endpoint
	router.GET("/redirect/:token", chain(deps.RedirectHandler.Handle, limit("redirect")))

	// Authentication routes
	router.POST("/api/v1/auth/signup", chain(deps.AuthHandler.Signup, limit("api_write")))
	router.POST("/api/v1/auth/login", chain(deps.AuthHandler.Login, limit("api_write")))
	router.POST("/api/v1/auth/refresh", chain(deps.AuthHandler.Refresh, limit("api_write")))
	router.POST("/api/v1/auth/logout", chain(deps.AuthHandler.Logout, limit("api_write")))

	// QR code management
	router.POST("/api/v1/qrcodes",
		chain(deps.QRHandler.Create, authMid.Handle, limit("api_write")))
	router.GET("/api/v1/qrcodes",
		chain(deps.QRHandler.List, authMid.Handle, limit("api_read")))
	router.POST("/api/v1/qrcodes/preview",
		chain(deps.QRHandler.Preview, authMid.Handle, limit("api_write")))
	router.GET("/api/v1/qrcodes/:qr_id",
		chain(deps.QRHandler.Get, authMid.Handle, limit("api_read")))
	router.DELETE("/api/v1/qrcodes/:qr_id",
		chain(deps.QRHandler.Delete, authMid.Handle, limit("api_write")))
	router.PATCH("/api/v1/qrcodes/:qr_id/destination",
		chain(deps.QRHandler.UpdateDestination, authMid.Handle, limit("api_write")))
	router.PUT("/api/v1/qrcodes/:qr_id/logo",
		chain(deps.QRHandler.UploadLogo, authMid.Handle, limit("api_write")))
	router.GET("/api/v1/qrcodes/:qr_id/image",
		chain(deps.QRHandler.Image, authMid.Handle, limit("api_read")))
	router.GET("/api/v1/qrcodes/:qr_id/download/:format",
		chain(deps.QRHandler.Download, authMid.Handle, limit("api_read")))

	// Analytics
	router.GET("/api/v1/qrcodes/:qr_id/analytics",
		chain(deps.AnalyticsHandler.GetQRAnalytics, authMid.Handle, limit("api_read")))
	router.GET("/api/v1/qrcodes/:qr_id/scans",
		chain(deps.AnalyticsHandler.GetQRScans, authMid.Handle, limit("api_read")))
	router.GET("/api/v1/analytics/overview",
		chain(deps.AnalyticsHandler.GetOverview, authMid.Handle, limit("api_read")))

	// Bulk jobs
	router.POST("/api/v1/bulk/jobs",
		chain(deps.BulkHandler.CreateJob, authMid.Handle, limit("api_write")))
	router.GET("/api/v1/bulk/jobs",
		chain(deps.BulkHandler.ListJobs, authMid.Handle, limit("api_read")))
	router.GET("/api/v1/bulk/jobs/:job_id",
		chain(deps.BulkHandler.GetJob, authMid.Handle, limit("api_read")))
	router.GET("/api/v1/bulk/jobs/:job_id/result",
		chain(deps.BulkHandler.GetResult, authMid.Handle, limit("api_read")))

	// Audit trail
	router.GET("/api/v1/audit-logs",
		chain(deps.AuditHandler.List, authMid.Handle, limit("api_read")))

	// Operational endpoints
	router.GET("/health", wrap(deps.HealthHandler.Check))
	router.GET("/metrics", wrap(deps.MetricsHandler.Export))

	return router
}

// Helper function to chain middlewares
func chain(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		// Inject params into context
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}

package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	httpapi "github.com/PrimeSandy/Alpha-Dev/internal/api/http"
	apimw "github.com/PrimeSandy/Alpha-Dev/internal/api/http/middleware"
	recordshttp "github.com/PrimeSandy/Alpha-Dev/internal/records/http"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	CORSOrigins []string
	Store       httpapi.Pinger
	Records     *recordshttp.Handler
	RequireUser gin.HandlerFunc
	// RequireAdmin may be nil, which leaves the admin listing unregistered.
	RequireAdmin gin.HandlerFunc
	Log          *zap.Logger
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(
		apimw.RequestIDMiddleware(),
		apimw.ZapLogger(dep.Log),
		apimw.Recovery(dep.Log),
		cors.New(corsConfig(dep.CORSOrigins)),
	)

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Store)
	healthHandler.RegisterRoutes(r)

	dep.Records.Register(r, dep.RequireUser, dep.RequireAdmin)

	r.NoRoute(httpapi.NotFound)
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Authorization", "Accept",
			"Idempotency-Key", "X-API-Key", "X-Request-Id", "X-User-Id",
		},
		ExposeHeaders: []string{"Content-Length", apimw.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

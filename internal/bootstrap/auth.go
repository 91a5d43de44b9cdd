package bootstrap

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/PrimeSandy/Alpha-Dev/config"
	"github.com/PrimeSandy/Alpha-Dev/internal/auth"
	"github.com/PrimeSandy/Alpha-Dev/internal/auth/middleware"
)

// AuthMiddleware returns the middleware guarding owner-scoped routes.
func AuthMiddleware(ctx context.Context, cfg config.FirebaseConfig, log *zap.Logger) (gin.HandlerFunc, error) {
	switch cfg.AuthMode {
	case config.AuthHeader:
		log.Warn("AUTH_MODE=header trusts X-User-Id, development only")
		return auth.HeaderUser(), nil
	case config.AuthFirebase:
		client, err := auth.InitializeFirebase(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return middleware.FirebaseAuthMiddleware(client), nil
	}
	return nil, fmt.Errorf("unknown auth mode %q", cfg.AuthMode)
}

// AdminMiddleware guards the submissions listing, or returns nil when no
// admin key is configured.
func AdminMiddleware(cfg config.AdminConfig) gin.HandlerFunc {
	if cfg.APIKey == "" {
		return nil
	}
	return middleware.APIKeyMiddleware(cfg.APIKey)
}

package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/dkeye/peerchat/internal/adapters/auth"
	"github.com/dkeye/peerchat/internal/adapters/signal"
	"github.com/dkeye/peerchat/internal/app/orch"
	"github.com/dkeye/peerchat/internal/config"
	"github.com/dkeye/peerchat/internal/core"
	"github.com/dkeye/peerchat/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const identityKey = "identity"

// AuthMiddleware rejects the request with 401 unless it carries a credential
// the verifier accepts. The identity is stored on the gin context.
func AuthMiddleware(v core.IdentityVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := v.Verify(c.Request.Context(), auth.CredentialFrom(c.Request))
		if err != nil {
			if !errors.Is(err, auth.ErrAuthentication) {
				log.Error().Err(err).Str("module", "adapters.http").Msg("verify credential")
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"message": "Authentication unavailable"})
				return
			}
			log.Warn().Err(err).Str("module", "adapters.http").Str("path", c.FullPath()).Msg("rejected credential")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": err.Error()})
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

func identityFrom(c *gin.Context) *domain.Identity {
	id, _ := c.MustGet(identityKey).(*domain.Identity)
	return id
}

func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator, verifier core.IdentityVerifier) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	ctrl := signal.NewSignalWSController(o, signal.Options{
		ReadLimit:     cfg.ReadLimit,
		PingPeriod:    cfg.PingPeriod,
		PongWait:      cfg.PongWait,
		WriteWait:     cfg.WriteWait,
		SendBuffer:    cfg.SendBuffer,
		FloodLimit:    cfg.RateLimit.Messages,
		FloodInterval: cfg.RateLimit.Interval,
	})
	rooms := &roomHandlers{orch: o, history: cfg.History}

	api := r.Group("/api")
	api.GET("/health", rooms.health)

	authed := api.Group("", AuthMiddleware(verifier))
	authed.GET("/ws", func(c *gin.Context) {
		id := identityFrom(c)
		log.Info().Str("module", "adapters.http").Str("user", string(id.ID)).Msg("ws endpoint hit")
		ctrl.HandleSignal(ctx, c, id)
	})
	authed.GET("/rooms", rooms.list)
	authed.GET("/rooms/:id", rooms.get)
	authed.GET("/rooms/:id/messages", rooms.messages)

	log.Info().Str("module", "adapters.http").Str("mode", cfg.Mode).Msg("router setup")
	return r
}

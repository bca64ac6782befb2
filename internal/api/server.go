// Package api hosts the HTTP surface of the skill server: the Alexa webhook
// plus the health and metrics endpoints.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/router-for-me/AlexaCookidooSkill/internal/alexa"
	"github.com/router-for-me/AlexaCookidooSkill/internal/buildinfo"
	"github.com/router-for-me/AlexaCookidooSkill/internal/config"
	"github.com/router-for-me/AlexaCookidooSkill/internal/logging"
	"github.com/router-for-me/AlexaCookidooSkill/internal/metrics"
	log "github.com/sirupsen/logrus"
)

// shutdownTimeout bounds how long in-flight requests may linger once the
// server has been told to stop.
const shutdownTimeout = 5 * time.Second

// Server is the HTTP host of the skill. It owns the Gin engine, routes the
// Alexa webhook to the skill handler and serves health and metrics.
type Server struct {
	cfg        *config.Config
	skill      *alexa.SkillHandler
	gatherer   prometheus.Gatherer
	instanceID string
	started    time.Time
}

// NewServer creates the HTTP host for the given skill handler.
func NewServer(cfg *config.Config, skill *alexa.SkillHandler, gatherer prometheus.Gatherer) *Server {
	return &Server{
		cfg:        cfg,
		skill:      skill,
		gatherer:   gatherer,
		instanceID: uuid.NewString(),
		started:    time.Now(),
	}
}

// InstanceID returns the identifier generated for this server instance.
func (s *Server) InstanceID() string {
	return s.instanceID
}

// Run serves HTTP until the context is canceled or the listener fails, then
// drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Port),
		Handler: s.buildEngine(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("skill server listening on %s (webhook %s)", srv.Addr, s.cfg.SkillPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	log.Info("skill server stopped")
	return nil
}

func (s *Server) buildEngine() *gin.Engine {
	if s.cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(logging.GinLogrusRecovery(), logging.GinLogrusLogger(s.cfg.SkillPath))

	engine.POST(s.cfg.SkillPath, s.handleSkillRequest)
	engine.GET("/health", s.handleHealth)
	engine.GET("/metrics", gin.WrapH(metrics.Handler(s.gatherer)))

	return engine
}

// handleSkillRequest feeds the raw request body to the skill handler. The
// webhook always answers 200 with a speakable envelope; an unreadable body
// degrades to the unknown-command response.
func (s *Server) handleSkillRequest(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.WithField("error", err).Warn("failed to read webhook request body")
		body = nil
	}
	c.JSON(http.StatusOK, s.skill.Handle(c.Request.Context(), body))
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"instance": s.instanceID,
		"version":  buildinfo.Version,
		"uptime":   time.Since(s.started).Truncate(time.Second).String(),
	})
}

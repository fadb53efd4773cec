// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package health_check_api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rapidaai/capture/config"
	"github.com/rapidaai/capture/pkg/commons"
	"github.com/rapidaai/capture/pkg/connectors"
)

type healthCheckApi struct {
	cfg    *config.AppConfig
	logger commons.Logger
	redis  connectors.RedisConnector
}

// New builds the probes. redis is nil unless the artifact store uses it.
func New(cfg *config.AppConfig, logger commons.Logger, redis connectors.RedisConnector) *healthCheckApi {
	return &healthCheckApi{cfg: cfg, logger: logger, redis: redis}
}

func (h *healthCheckApi) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"healthy": true})
}

// Readiness fails while a configured dependency is unreachable.
func (h *healthCheckApi) Readiness(c *gin.Context) {
	if h.redis != nil && !h.redis.IsConnected(c.Request.Context()) {
		h.logger.Warnf("readiness: %s is not reachable", h.redis.Name())
		c.JSON(http.StatusServiceUnavailable, gin.H{"ready": false, "redis": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ready": true, "service": h.cfg.Name, "version": h.cfg.Version})
}

// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package capture_api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	internal_capture "github.com/rapidaai/capture/api/capture-api/internal/capture"
	internal_page "github.com/rapidaai/capture/api/capture-api/internal/page"
	internal_type "github.com/rapidaai/capture/api/capture-api/internal/type"
	"github.com/rapidaai/capture/config"
	"github.com/rapidaai/capture/pkg/commons"
)

type CaptureApi struct {
	cfg     *config.AppConfig
	logger  commons.Logger
	session *internal_capture.Session
	objects internal_type.ObjectURLStore
	page    *internal_page.Page
}

func NewCaptureApi(
	cfg *config.AppConfig,
	logger commons.Logger,
	session *internal_capture.Session,
	objects internal_type.ObjectURLStore,
	page *internal_page.Page,
) *CaptureApi {
	return &CaptureApi{
		cfg:     cfg,
		logger:  logger,
		session: session,
		objects: objects,
		page:    page,
	}
}

// errorStatus maps capture failures onto HTTP codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, internal_type.ErrSessionActive):
		return http.StatusConflict
	case errors.Is(err, internal_type.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, internal_type.ErrDeviceUnavailable), errors.Is(err, internal_type.ErrSessionClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, internal_type.ErrUnsupportedConstraints):
		return http.StatusBadRequest
	case errors.Is(err, internal_type.ErrObjectNotFound), errors.Is(err, internal_type.ErrNoRecording):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (cApi *CaptureApi) failure(c *gin.Context, err error) {
	c.JSON(errorStatus(err), gin.H{"success": false, "error": err.Error()})
}

// StartRecording asks for the microphone and starts a recording.
//
// @Router /v1/recording/start [post]
// @Success 202 {object} gin.H
// @Failure 403 {object} gin.H
// @Failure 409 {object} gin.H
// @Failure 503 {object} gin.H
func (cApi *CaptureApi) StartRecording(c *gin.Context) {
	if err := cApi.session.Start(c.Request.Context()); err != nil {
		cApi.failure(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"success": true, "data": cApi.session.Status()})
}

// StopRecording is accepted whether or not a recording is running.
//
// @Router /v1/recording/stop [post]
func (cApi *CaptureApi) StopRecording(c *gin.Context) {
	if err := cApi.session.Stop(); err != nil {
		cApi.failure(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": cApi.session.Status()})
}

// @Router /v1/recording/reset [post]
func (cApi *CaptureApi) ResetRecording(c *gin.Context) {
	if err := cApi.session.Reset(c.Request.Context()); err != nil {
		cApi.failure(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": cApi.session.Status()})
}

// @Router /v1/recording [get]
func (cApi *CaptureApi) GetRecording(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": cApi.session.Status()})
}

// GetObject serves the bytes behind an object url.
//
// @Router /v1/objects/:id [get]
func (cApi *CaptureApi) GetObject(c *gin.Context) {
	blob, err := cApi.objects.Resolve(c.Request.Context(), c.Param("id"))
	if err != nil {
		if !errors.Is(err, internal_type.ErrObjectNotFound) {
			cApi.logger.Errorf("failed to resolve object %s: %v", c.Param("id"), err)
		}
		cApi.failure(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, blob.Type, blob.Data)
}

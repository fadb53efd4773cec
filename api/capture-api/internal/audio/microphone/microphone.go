// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

// Package internal_microphone provides MediaDevices backends: PulseAudio for
// real capture, file replay for development, and a backend that always
// refuses access.
package internal_microphone

import (
	"context"
	"fmt"

	internal_type "github.com/rapidaai/capture/api/capture-api/internal/type"
	"github.com/rapidaai/capture/config"
	"github.com/rapidaai/capture/pkg/commons"
)

const (
	BackendPulse  = "pulse"
	BackendFile   = "file"
	BackendDenied = "denied"
)

// NewMediaDevices selects the backend named in the capture config.
func NewMediaDevices(cfg *config.CaptureConfig, logger commons.Logger) (internal_type.MediaDevices, error) {
	format := internal_type.AudioFormat{
		SampleRate:    cfg.SampleRate,
		Channels:      cfg.Channels,
		BitsPerSample: 16,
	}
	switch cfg.Microphone {
	case BackendPulse:
		return NewPulseDevices(logger, format), nil
	case BackendFile:
		return NewFileDevices(logger, cfg.File, format), nil
	case BackendDenied:
		return NewDeniedDevices(logger), nil
	default:
		return nil, fmt.Errorf("unknown microphone backend %q", cfg.Microphone)
	}
}

func checkConstraints(ctx context.Context, constraints internal_type.MediaStreamConstraints) error {
	if !constraints.Audio {
		return fmt.Errorf("audio input not requested: %w", internal_type.ErrUnsupportedConstraints)
	}
	return ctx.Err()
}

type deniedDevices struct {
	logger commons.Logger
}

// NewDeniedDevices refuses every request, as a user declining the
// permission prompt would.
func NewDeniedDevices(logger commons.Logger) internal_type.MediaDevices {
	return &deniedDevices{logger: logger}
}

func (d *deniedDevices) GetUserMedia(ctx context.Context, constraints internal_type.MediaStreamConstraints) (internal_type.MediaStream, error) {
	if err := checkConstraints(ctx, constraints); err != nil {
		return nil, err
	}
	d.logger.Debugf("microphone access refused by configuration")
	return nil, internal_type.ErrPermissionDenied
}

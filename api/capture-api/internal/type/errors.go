// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_type

import "errors"

var (
	// ErrSessionActive rejects start/reset while a recording is acquiring,
	// running or finalizing.
	ErrSessionActive = errors.New("capture session already active")

	// ErrPermissionDenied is returned when the user (or config) refuses
	// microphone access.
	ErrPermissionDenied = errors.New("microphone permission denied")

	// ErrDeviceUnavailable covers a missing or unreachable capture device.
	ErrDeviceUnavailable = errors.New("microphone device unavailable")

	// ErrSessionClosed rejects start after shutdown began.
	ErrSessionClosed = errors.New("capture session closed")

	// ErrNoRecording is returned by Wait before any recording was attempted.
	ErrNoRecording = errors.New("no recording")

	ErrUnsupportedConstraints = errors.New("unsupported media constraints")

	ErrRecorderState = errors.New("invalid recorder state")

	ErrObjectNotFound = errors.New("object url not found")
)

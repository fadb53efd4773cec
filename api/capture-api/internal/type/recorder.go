// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_type

// RecorderState mirrors the three states of a platform media recorder.
type RecorderState string

const (
	RecorderInactive  RecorderState = "inactive"
	RecorderRecording RecorderState = "recording"
	RecorderStopping  RecorderState = "stopping"
)

// RecorderEvent is one of DataAvailableEvent, RecorderErrorEvent or StopEvent.
type RecorderEvent interface {
	recorderEvent()
}

// DataAvailableEvent carries one fragment, in emission order.
type DataAvailableEvent struct {
	Data []byte
}

// RecorderErrorEvent reports a platform failure while recording. A StopEvent
// always follows it.
type RecorderErrorEvent struct {
	Err error
}

// StopEvent is delivered exactly once, after the last DataAvailableEvent,
// and only once Stop was requested or the stream ended.
type StopEvent struct{}

func (DataAvailableEvent) recorderEvent() {}
func (RecorderErrorEvent) recorderEvent() {}
func (StopEvent) recorderEvent()          {}

// MediaRecorder consumes a MediaStream and emits encoded fragments.
type MediaRecorder interface {
	// Start begins emitting fragments. Returns ErrRecorderState unless inactive.
	Start() error
	// Stop requests finalization; the StopEvent arrives asynchronously.
	// Stopping an inactive recorder is a no-op.
	Stop() error
	State() RecorderState
	MimeType() string
	// Events is closed after the StopEvent.
	Events() <-chan RecorderEvent
}

// RecorderFactory binds a new recorder to an acquired stream.
type RecorderFactory func(stream MediaStream) (MediaRecorder, error)

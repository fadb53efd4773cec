// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_recorder

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	internal_type "github.com/rapidaai/capture/api/capture-api/internal/type"
	"github.com/rapidaai/capture/pkg/commons"
)

const (
	DefaultTimeslice       = time.Second
	DefaultFramesPerRead   = 1024
	DefaultEventBufferSize = 64
)

type Option func(*mediaRecorder)

// WithTimeslice sets how much audio is gathered before a fragment is emitted.
func WithTimeslice(d time.Duration) Option {
	return func(r *mediaRecorder) {
		if d > 0 {
			r.timeslice = d
		}
	}
}

// WithFramesPerRead sets the size of each read from the stream.
func WithFramesPerRead(frames int) Option {
	return func(r *mediaRecorder) {
		if frames > 0 {
			r.framesPerRead = frames
		}
	}
}

func WithEventBufferSize(size int) Option {
	return func(r *mediaRecorder) {
		if size >= 0 {
			r.eventBufferSize = size
		}
	}
}

// mediaRecorder reads PCM from a MediaStream on a single goroutine and emits
// it as WAV fragments. The first fragment starts with a streaming WAV header,
// so the in-order concatenation of every fragment is a playable file.
type mediaRecorder struct {
	logger commons.Logger
	stream internal_type.MediaStream
	format internal_type.AudioFormat

	timeslice       time.Duration
	framesPerRead   int
	eventBufferSize int

	mu            sync.Mutex
	state         internal_type.RecorderState
	stopRequested bool
	events        chan internal_type.RecorderEvent
}

// NewMediaRecorder binds a recorder to stream. Nothing is read until Start.
func NewMediaRecorder(logger commons.Logger, stream internal_type.MediaStream, opts ...Option) (internal_type.MediaRecorder, error) {
	if stream == nil {
		return nil, fmt.Errorf("media recorder requires a stream")
	}
	format := stream.Format()
	if format.BytesPerFrame() <= 0 || format.SampleRate <= 0 {
		return nil, fmt.Errorf("media recorder: unusable stream format %+v", format)
	}
	r := &mediaRecorder{
		logger:          logger,
		stream:          stream,
		format:          format,
		timeslice:       DefaultTimeslice,
		framesPerRead:   DefaultFramesPerRead,
		eventBufferSize: DefaultEventBufferSize,
		state:           internal_type.RecorderInactive,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.events = make(chan internal_type.RecorderEvent, r.eventBufferSize)
	return r, nil
}

// Factory adapts NewMediaRecorder to internal_type.RecorderFactory.
func Factory(logger commons.Logger, opts ...Option) internal_type.RecorderFactory {
	return func(stream internal_type.MediaStream) (internal_type.MediaRecorder, error) {
		return NewMediaRecorder(logger, stream, opts...)
	}
}

func (r *mediaRecorder) MimeType() string {
	return MimeTypeWAV
}

func (r *mediaRecorder) Events() <-chan internal_type.RecorderEvent {
	return r.events
}

func (r *mediaRecorder) State() internal_type.RecorderState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Start is allowed once; a recorder never returns to recording after it
// emitted its StopEvent.
func (r *mediaRecorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != internal_type.RecorderInactive || r.stopRequested {
		return fmt.Errorf("start recorder in state %s: %w", r.state, internal_type.ErrRecorderState)
	}
	r.state = internal_type.RecorderRecording
	go r.run()
	return nil
}

// Stop closes the stream, which unblocks the reader; the remaining audio and
// the StopEvent follow on the events channel.
func (r *mediaRecorder) Stop() error {
	r.mu.Lock()
	if r.state != internal_type.RecorderRecording {
		r.mu.Unlock()
		return nil
	}
	r.state = internal_type.RecorderStopping
	r.stopRequested = true
	r.mu.Unlock()

	if err := r.stream.Close(); err != nil {
		r.logger.Warnf("closing stream %s: %v", r.stream.ID(), err)
	}
	return nil
}

func (r *mediaRecorder) timesliceBytes() int {
	n := int(r.timeslice.Seconds() * float64(r.format.BytesPerSecond()))
	frame := r.format.BytesPerFrame()
	n = (n / frame) * frame
	if n < frame {
		return frame
	}
	return n
}

func (r *mediaRecorder) run() {
	defer close(r.events)

	threshold := r.timesliceBytes()
	pending := new(bytes.Buffer)
	pending.Write(streamingWAVHeader(r.format))

	chunk := make([]byte, r.framesPerRead*r.format.BytesPerFrame())
	emitted := 0
	for {
		n, err := r.stream.Read(chunk)
		if n > 0 {
			pending.Write(chunk[:n])
			if pending.Len() >= threshold {
				emitted += r.emit(pending)
			}
		}
		if err != nil {
			r.mu.Lock()
			stopped := r.stopRequested
			r.mu.Unlock()
			if !stopped && !errors.Is(err, io.EOF) {
				r.logger.Errorf("stream %s failed while recording: %v", r.stream.ID(), err)
				r.stream.Close()
				r.flush(pending, &emitted)
				r.events <- internal_type.RecorderErrorEvent{Err: err}
			} else if !stopped {
				r.logger.Infof("stream %s ended", r.stream.ID())
				r.stream.Close()
			}
			break
		}
	}
	r.flush(pending, &emitted)

	r.mu.Lock()
	r.state = internal_type.RecorderInactive
	r.stopRequested = true
	r.mu.Unlock()

	r.logger.Debugf("recorder for stream %s finalized after %d bytes", r.stream.ID(), emitted)
	r.events <- internal_type.StopEvent{}
}

func (r *mediaRecorder) flush(pending *bytes.Buffer, emitted *int) {
	if pending.Len() > 0 {
		*emitted += r.emit(pending)
	}
}

// emit drains pending into a fresh fragment so later reads never alias it.
func (r *mediaRecorder) emit(pending *bytes.Buffer) int {
	data := make([]byte, pending.Len())
	copy(data, pending.Bytes())
	pending.Reset()
	r.events <- internal_type.DataAvailableEvent{Data: data}
	return len(data)
}

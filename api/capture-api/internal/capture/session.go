// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

// Package internal_capture owns the microphone recording lifecycle: acquire
// a stream, collect recorder fragments, and publish the finished artifact to
// the page slots.
package internal_capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	internal_type "github.com/rapidaai/capture/api/capture-api/internal/type"
	"github.com/rapidaai/capture/pkg/commons"
)

type State string

const (
	StateIdle      State = "idle"
	StateAcquiring State = "acquiring"
	StateRecording State = "recording"
	StateStopping  State = "stopping"
)

const (
	StatusRecording = "Recording..."
	StatusStopped   = "Recording stopped."

	// SlotCount is the playback surface plus the two data fields.
	SlotCount = 3

	DefaultPublishTimeout = 10 * time.Second
)

// Artifact is the finished recording and the handles it was published under,
// one per slot in slot order. A slot whose publish failed has an empty url.
type Artifact struct {
	RecordingID string
	Blob        *internal_type.Blob
	URLs        []string
	Chunks      int
	StartedAt   time.Time
	FinalizedAt time.Time
}

type Option func(*Session)

func WithStatusReporter(reporter internal_type.StatusReporter) Option {
	return func(s *Session) {
		if reporter != nil {
			s.status = reporter
		}
	}
}

// WithPublishTimeout bounds the object url calls made at finalize.
func WithPublishTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.publishTimeout = d
		}
	}
}

type noopStatus struct{}

func (noopStatus) SetStatus(string) {}

// Session is the single owner of the active recorder and its chunks.
//
// Start is rejected unless the session is idle. Stop is a no-op unless a
// recorder is running. Events are tagged with the generation of the
// recording that started them so a stale recorder cannot touch a newer one.
type Session struct {
	logger         commons.Logger
	devices        internal_type.MediaDevices
	recorders      internal_type.RecorderFactory
	urls           internal_type.ObjectURLStore
	slots          []internal_type.Slot
	status         internal_type.StatusReporter
	publishTimeout time.Duration

	mu          sync.Mutex
	state       State
	closed      bool
	generation  uint64
	recorder    internal_type.MediaRecorder
	recordingID string
	startedAt   time.Time
	chunks      [][]byte
	chunkBytes  int
	lastErr     error
	artifact    *Artifact
	published   []string
	done        chan struct{}
}

// NewSession composes a session from its platform services. slots must hold
// the playback surface followed by the two data fields.
func NewSession(
	logger commons.Logger,
	devices internal_type.MediaDevices,
	recorders internal_type.RecorderFactory,
	urls internal_type.ObjectURLStore,
	slots []internal_type.Slot,
	opts ...Option,
) (*Session, error) {
	if devices == nil || recorders == nil || urls == nil {
		return nil, errors.New("capture session requires devices, recorders and object urls")
	}
	if len(slots) != SlotCount {
		return nil, fmt.Errorf("capture session requires %d slots, got %d", SlotCount, len(slots))
	}
	s := &Session{
		logger:         logger,
		devices:        devices,
		recorders:      recorders,
		urls:           urls,
		slots:          slots,
		status:         noopStatus{},
		publishTimeout: DefaultPublishTimeout,
		state:          StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start asks for the microphone and begins recording. It blocks while the
// platform waits on a permission decision; ctx bounds that wait only.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("start recording: %w", internal_type.ErrSessionClosed)
	}
	if s.state != StateIdle {
		state := s.state
		s.mu.Unlock()
		s.logger.Warnf("start rejected, session is %s", state)
		return fmt.Errorf("start recording while %s: %w", state, internal_type.ErrSessionActive)
	}
	s.generation++
	gen := s.generation
	s.state = StateAcquiring
	s.artifact = nil
	s.lastErr = nil
	s.done = make(chan struct{})
	s.mu.Unlock()

	stream, err := s.devices.GetUserMedia(ctx, internal_type.MediaStreamConstraints{Audio: true})
	if err != nil {
		return s.abort(gen, fmt.Errorf("acquire microphone: %w", err))
	}

	recorder, err := s.recorders(stream)
	if err != nil {
		stream.Close()
		return s.abort(gen, fmt.Errorf("create recorder: %w", err))
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		stream.Close()
		return s.abort(gen, fmt.Errorf("start recording: %w", internal_type.ErrSessionClosed))
	}
	if err := recorder.Start(); err != nil {
		s.mu.Unlock()
		stream.Close()
		return s.abort(gen, fmt.Errorf("start recorder: %w", err))
	}
	s.recorder = recorder
	s.recordingID = stream.ID()
	s.startedAt = time.Now()
	s.chunks = nil
	s.chunkBytes = 0
	s.state = StateRecording
	s.mu.Unlock()

	go s.consume(gen, recorder)

	s.logger.Infof("recording started on stream %s (%s)", stream.ID(), recorder.MimeType())
	s.status.SetStatus(StatusRecording)
	return nil
}

// abort returns the session to idle after a failed start. No recorder was
// installed and no artifact will be produced for the attempt.
func (s *Session) abort(gen uint64, err error) error {
	s.mu.Lock()
	if gen == s.generation {
		s.state = StateIdle
		s.recorder = nil
		s.lastErr = err
		close(s.done)
	}
	s.mu.Unlock()
	s.logger.Errorf("failed to start recording: %v", err)
	return err
}

// Stop signals the recorder to finalize. The artifact arrives asynchronously
// and the active recorder is cleared once it does.
func (s *Session) Stop() error {
	s.mu.Lock()
	if s.state != StateRecording {
		s.mu.Unlock()
		return nil
	}
	recorder := s.recorder
	s.state = StateStopping
	s.mu.Unlock()

	if err := recorder.Stop(); err != nil {
		s.logger.Errorf("failed to stop recorder: %v", err)
		return fmt.Errorf("stop recording: %w", err)
	}
	s.logger.Infof("recording stopped")
	s.status.SetStatus(StatusStopped)
	return nil
}

func (s *Session) consume(gen uint64, recorder internal_type.MediaRecorder) {
	for event := range recorder.Events() {
		switch e := event.(type) {
		case internal_type.DataAvailableEvent:
			s.appendChunk(gen, e.Data)
		case internal_type.RecorderErrorEvent:
			s.logger.Errorf("recorder error: %v", e.Err)
			s.recordError(gen, e.Err)
		case internal_type.StopEvent:
			s.finalize(gen, recorder)
			for range recorder.Events() {
				s.logger.Debugf("ignoring recorder event after finalize")
			}
			return
		}
	}
	s.logger.Warnf("recorder events closed without a stop event")
	s.finalize(gen, recorder)
}

func (s *Session) appendChunk(gen uint64, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation || (s.state != StateRecording && s.state != StateStopping) {
		s.logger.Debugf("dropping %d byte fragment from stale recording", len(data))
		return
	}
	s.chunks = append(s.chunks, data)
	s.chunkBytes += len(data)
}

func (s *Session) recordError(gen uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen == s.generation {
		s.lastErr = err
	}
}

// finalize joins the chunks into the artifact and publishes it. Every slot
// gets its own object url, so the three handles revoke independently.
func (s *Session) finalize(gen uint64, recorder internal_type.MediaRecorder) {
	s.mu.Lock()
	if gen != s.generation || (s.state != StateRecording && s.state != StateStopping) {
		s.mu.Unlock()
		return
	}
	chunks := s.chunks
	s.chunks = nil
	recordingID := s.recordingID
	startedAt := s.startedAt
	// the stream ended before anyone called Stop
	endedByStream := s.state == StateRecording
	s.mu.Unlock()

	blob := &internal_type.Blob{Type: recorder.MimeType(), Data: bytes.Join(chunks, nil)}

	ctx, cancel := context.WithTimeout(context.Background(), s.publishTimeout)
	defer cancel()

	urls := make([]string, len(s.slots))
	published := make([]string, 0, len(s.slots))
	var errs []error
	for i, slot := range s.slots {
		url, err := s.urls.CreateObjectURL(ctx, blob)
		if err != nil {
			s.logger.Errorf("failed to publish recording %s to %s: %v", recordingID, slot.ID(), err)
			errs = append(errs, fmt.Errorf("publish to %s: %w", slot.ID(), err))
			// never leave an earlier recording behind in this slot
			slot.Assign("")
			continue
		}
		slot.Assign(url)
		urls[i] = url
		published = append(published, url)
	}

	if endedByStream {
		s.status.SetStatus(StatusStopped)
	}

	artifact := &Artifact{
		RecordingID: recordingID,
		Blob:        blob,
		URLs:        urls,
		Chunks:      len(chunks),
		StartedAt:   startedAt,
		FinalizedAt: time.Now(),
	}

	s.mu.Lock()
	s.artifact = artifact
	s.published = append(s.published, published...)
	if len(errs) > 0 {
		s.lastErr = errors.Join(append([]error{s.lastErr}, errs...)...)
	}
	s.recorder = nil
	s.chunkBytes = 0
	s.state = StateIdle
	close(s.done)
	s.mu.Unlock()

	s.logger.Infof("recording %s finalized: %d chunks, %d bytes, published to %d slots",
		recordingID, len(chunks), blob.Size(), len(published))
}

// Wait blocks until the current or most recent recording attempt finishes.
func (s *Session) Wait(ctx context.Context) (*Artifact, error) {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done == nil {
		return nil, internal_type.ErrNoRecording
	}

	select {
	case <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.artifact == nil {
		if s.lastErr != nil {
			return nil, s.lastErr
		}
		return nil, internal_type.ErrNoRecording
	}
	return s.artifact, s.lastErr
}

// Reset clears the slots and the status line and revokes every url the
// session published. Only allowed while idle.
func (s *Session) Reset(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdle {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("reset while %s: %w", state, internal_type.ErrSessionActive)
	}
	published := s.published
	s.published = nil
	s.artifact = nil
	s.lastErr = nil
	s.done = nil
	for _, slot := range s.slots {
		slot.Assign("")
	}
	s.status.SetStatus("")
	s.mu.Unlock()

	s.logger.Infof("session reset, revoking %d object urls", len(published))
	return s.revoke(ctx, published)
}

// Close stops any recording, waits for it to finalize and revokes every
// published url. Start fails once Close has been called.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	if err := s.Stop(); err != nil {
		s.logger.Warnf("stop during close: %v", err)
	}

	s.mu.Lock()
	active := s.state != StateIdle
	done := s.done
	s.mu.Unlock()
	if active && done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			return fmt.Errorf("close capture session: %w", ctx.Err())
		}
	}

	s.mu.Lock()
	published := s.published
	s.published = nil
	s.mu.Unlock()
	return s.revoke(ctx, published)
}

func (s *Session) revoke(ctx context.Context, urls []string) error {
	var errs []error
	for _, url := range urls {
		if err := s.urls.RevokeObjectURL(ctx, url); err != nil {
			s.logger.Warnf("failed to revoke %s: %v", url, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Active reports whether a recorder is installed.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recorder != nil
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

package internal_capture

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	internal_type "github.com/rapidaai/capture/api/capture-api/internal/type"
	"github.com/rapidaai/capture/pkg/commons"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T) commons.Logger {
	t.Helper()
	logger, err := commons.NewApplicationLogger(
		commons.Name("test-capture"),
		commons.Path(t.TempDir()),
		commons.Level("debug"),
		commons.Console(false),
	)
	require.NoError(t, err)
	return logger
}

type fakeStream struct {
	id     string
	mu     sync.Mutex
	closed bool
}

func (s *fakeStream) Read(p []byte) (int, error)         { return 0, io.EOF }
func (s *fakeStream) ID() string                         { return s.id }
func (s *fakeStream) Format() internal_type.AudioFormat { return internal_type.DefaultAudioFormat }

func (s *fakeStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeStream) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// fakeDevices grants a fresh stream per call unless err is set. When gate is
// non-nil the call blocks on it, like a pending permission prompt.
type fakeDevices struct {
	mu      sync.Mutex
	err     error
	gate    chan struct{}
	calls   int
	streams []*fakeStream
}

func (d *fakeDevices) GetUserMedia(ctx context.Context, c internal_type.MediaStreamConstraints) (internal_type.MediaStream, error) {
	d.mu.Lock()
	d.calls++
	gate, err := d.gate, d.err
	d.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if !c.Audio {
		return nil, internal_type.ErrUnsupportedConstraints
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	stream := &fakeStream{id: "stream-" + string(rune('a'+len(d.streams)))}
	d.streams = append(d.streams, stream)
	return stream, nil
}

// fakeRecorder lets the test push fragments. Stop emits the stop event and
// closes the channel, the way a platform recorder confirms finalize.
type fakeRecorder struct {
	mu       sync.Mutex
	state    internal_type.RecorderState
	events   chan internal_type.RecorderEvent
	startErr error
	stops    int
	// holdStop keeps Stop from confirming until the test calls confirm.
	holdStop bool
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{
		state:  internal_type.RecorderInactive,
		events: make(chan internal_type.RecorderEvent, 64),
	}
}

func (r *fakeRecorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.startErr != nil {
		return r.startErr
	}
	r.state = internal_type.RecorderRecording
	return nil
}

func (r *fakeRecorder) Stop() error {
	r.mu.Lock()
	r.stops++
	if r.state != internal_type.RecorderRecording {
		r.mu.Unlock()
		return nil
	}
	r.state = internal_type.RecorderStopping
	hold := r.holdStop
	r.mu.Unlock()
	if !hold {
		r.confirm()
	}
	return nil
}

func (r *fakeRecorder) confirm() {
	r.mu.Lock()
	r.state = internal_type.RecorderInactive
	r.mu.Unlock()
	r.events <- internal_type.StopEvent{}
	close(r.events)
}

func (r *fakeRecorder) emit(data string) {
	r.events <- internal_type.DataAvailableEvent{Data: []byte(data)}
}

func (r *fakeRecorder) fail(err error) {
	r.events <- internal_type.RecorderErrorEvent{Err: err}
}

func (r *fakeRecorder) State() internal_type.RecorderState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *fakeRecorder) MimeType() string { return "audio/wav" }

func (r *fakeRecorder) Events() <-chan internal_type.RecorderEvent { return r.events }

// recorderQueue hands out pre-built recorders in order.
type recorderQueue struct {
	mu        sync.Mutex
	recorders []*fakeRecorder
	err       error
	built     int
}

func (q *recorderQueue) factory(stream internal_type.MediaStream) (internal_type.MediaRecorder, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return nil, q.err
	}
	r := q.recorders[q.built]
	q.built++
	return r, nil
}

// flakyStore fails the failOn-th CreateObjectURL call and delegates the rest.
type flakyStore struct {
	internal_type.ObjectURLStore
	mu     sync.Mutex
	calls  int
	failOn int
}

func (f *flakyStore) CreateObjectURL(ctx context.Context, blob *internal_type.Blob) (string, error) {
	f.mu.Lock()
	f.calls++
	n := f.calls
	f.mu.Unlock()
	if n == f.failOn {
		return "", errors.New("object store unavailable")
	}
	return f.ObjectURLStore.CreateObjectURL(ctx, blob)
}

// deadlineStore records how long each publish call was allowed to take.
type deadlineStore struct {
	internal_type.ObjectURLStore
	mu     sync.Mutex
	budget []time.Duration
}

func (d *deadlineStore) CreateObjectURL(ctx context.Context, blob *internal_type.Blob) (string, error) {
	if deadline, ok := ctx.Deadline(); ok {
		d.mu.Lock()
		d.budget = append(d.budget, time.Until(deadline))
		d.mu.Unlock()
	}
	return d.ObjectURLStore.CreateObjectURL(ctx, blob)
}

// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_microphone

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	internal_type "github.com/rapidaai/capture/api/capture-api/internal/type"
	"github.com/rapidaai/capture/pkg/commons"
)

type FileOption func(*fileDevices)

// WithRealtime paces reads at the stream's byte rate so the file behaves
// like a live microphone. Enabled by default.
func WithRealtime(enabled bool) FileOption {
	return func(d *fileDevices) { d.realtime = enabled }
}

type fileDevices struct {
	logger   commons.Logger
	path     string
	format   internal_type.AudioFormat
	realtime bool
}

// NewFileDevices replays path as the microphone. WAV files carry their own
// format; anything else is read as raw PCM in format.
func NewFileDevices(logger commons.Logger, path string, format internal_type.AudioFormat, opts ...FileOption) internal_type.MediaDevices {
	d := &fileDevices{logger: logger, path: path, format: format, realtime: true}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *fileDevices) GetUserMedia(ctx context.Context, constraints internal_type.MediaStreamConstraints) (internal_type.MediaStream, error) {
	if err := checkConstraints(ctx, constraints); err != nil {
		return nil, err
	}

	f, err := os.Open(d.path)
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			return nil, fmt.Errorf("%w: %v", internal_type.ErrPermissionDenied, err)
		}
		return nil, fmt.Errorf("%w: %v", internal_type.ErrDeviceUnavailable, err)
	}

	br := bufio.NewReader(f)
	format := d.format
	if head, _ := br.Peek(4); string(head) == "RIFF" {
		format, err = readWAVHeader(br)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("%w: %s: %v", internal_type.ErrDeviceUnavailable, d.path, err)
		}
	}

	stream := &fileStream{
		id:     uuid.NewString(),
		format: format,
		file:   f,
		source: br,
		closed: make(chan struct{}),
	}
	if d.realtime {
		stream.started = time.Now()
		stream.paced = true
	}
	d.logger.Infof("replaying %s as capture stream %s (%d Hz, %d ch)", d.path, stream.id, format.SampleRate, format.Channels)
	return stream, nil
}

type fileStream struct {
	id     string
	format internal_type.AudioFormat
	file   *os.File
	source io.Reader

	paced     bool
	started   time.Time
	delivered int

	closeOnce sync.Once
	closed    chan struct{}
}

func (s *fileStream) ID() string                         { return s.id }
func (s *fileStream) Format() internal_type.AudioFormat { return s.format }

func (s *fileStream) Read(p []byte) (int, error) {
	select {
	case <-s.closed:
		return 0, io.ErrClosedPipe
	default:
	}

	n, err := s.source.Read(p)
	if n > 0 && s.paced {
		s.delivered += n
		due := s.started.Add(time.Duration(float64(s.delivered) / float64(s.format.BytesPerSecond()) * float64(time.Second)))
		if wait := time.Until(due); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-s.closed:
				timer.Stop()
			}
		}
	}
	return n, err
}

func (s *fileStream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closed)
		err = s.file.Close()
	})
	return err
}

// readWAVHeader walks RIFF chunks up to the start of "data", leaving r
// positioned on the first PCM byte.
func readWAVHeader(r io.Reader) (internal_type.AudioFormat, error) {
	var format internal_type.AudioFormat
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return format, fmt.Errorf("read riff header: %w", err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return format, errors.New("not a RIFF/WAVE file")
	}

	haveFmt := false
	for {
		var header [8]byte
		if _, err := io.ReadFull(r, header[:]); err != nil {
			return format, fmt.Errorf("read chunk header: %w", err)
		}
		id := string(header[0:4])
		size := binary.LittleEndian.Uint32(header[4:8])

		switch id {
		case "fmt ":
			if size < 16 {
				return format, fmt.Errorf("fmt chunk too short: %d", size)
			}
			body := make([]byte, size+size%2)
			if _, err := io.ReadFull(r, body); err != nil {
				return format, fmt.Errorf("read fmt chunk: %w", err)
			}
			if tag := binary.LittleEndian.Uint16(body[0:2]); tag != 1 {
				return format, fmt.Errorf("unsupported wav format tag %d", tag)
			}
			format.Channels = int(binary.LittleEndian.Uint16(body[2:4]))
			format.SampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
			format.BitsPerSample = int(binary.LittleEndian.Uint16(body[14:16]))
			haveFmt = true
		case "data":
			if !haveFmt {
				return format, errors.New("data chunk before fmt chunk")
			}
			if format.BytesPerFrame() <= 0 {
				return format, fmt.Errorf("unusable wav format %+v", format)
			}
			return format, nil
		default:
			if _, err := io.CopyN(io.Discard, r, int64(size+size%2)); err != nil {
				return format, fmt.Errorf("skip %q chunk: %w", id, err)
			}
		}
	}
}

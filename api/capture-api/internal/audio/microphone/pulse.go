// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_microphone

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/jfreymuth/pulse"
	internal_type "github.com/rapidaai/capture/api/capture-api/internal/type"
	"github.com/rapidaai/capture/pkg/commons"
)

const pulseApplicationName = "rapida-capture"

type pulseDevices struct {
	logger commons.Logger
	format internal_type.AudioFormat
}

// NewPulseDevices captures from the default PulseAudio source as LINEAR16.
func NewPulseDevices(logger commons.Logger, format internal_type.AudioFormat) internal_type.MediaDevices {
	format.BitsPerSample = 16
	return &pulseDevices{logger: logger, format: format}
}

func (d *pulseDevices) GetUserMedia(ctx context.Context, constraints internal_type.MediaStreamConstraints) (internal_type.MediaStream, error) {
	if err := checkConstraints(ctx, constraints); err != nil {
		return nil, err
	}

	type result struct {
		stream *pulseStream
		err    error
	}
	done := make(chan result, 1)
	go func() {
		stream, err := d.open()
		done <- result{stream, err}
	}()

	select {
	case r := <-done:
		return r.stream, r.err
	case <-ctx.Done():
		// the server may still answer; release whatever it hands back
		go func() {
			if r := <-done; r.stream != nil {
				r.stream.Close()
			}
		}()
		return nil, ctx.Err()
	}
}

func (d *pulseDevices) open() (*pulseStream, error) {
	client, err := pulse.NewClient(pulse.ClientApplicationName(pulseApplicationName))
	if err != nil {
		return nil, fmt.Errorf("%w: connect pulse server: %v", internal_type.ErrDeviceUnavailable, err)
	}

	pr, pw := io.Pipe()
	stream := &pulseStream{
		id:     uuid.NewString(),
		format: d.format,
		client: client,
		reader: pr,
		writer: pw,
	}

	channels := pulse.RecordMono
	if d.format.Channels == 2 {
		channels = pulse.RecordStereo
	}
	record, err := client.NewRecord(pulse.Int16Writer(stream.write),
		channels,
		pulse.RecordSampleRate(d.format.SampleRate),
	)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: open pulse record stream: %v", internal_type.ErrDeviceUnavailable, err)
	}
	stream.record = record
	record.Start()

	d.logger.Infof("opened pulse capture stream %s (%d Hz, %d ch)", stream.id, d.format.SampleRate, d.format.Channels)
	return stream, nil
}

// pulseStream bridges the pulse callback to io.Reader through a pipe.
type pulseStream struct {
	id     string
	format internal_type.AudioFormat
	client *pulse.Client
	record *pulse.RecordStream
	reader *io.PipeReader
	writer *io.PipeWriter
	once   sync.Once
}

func (s *pulseStream) ID() string                         { return s.id }
func (s *pulseStream) Format() internal_type.AudioFormat { return s.format }

func (s *pulseStream) Read(p []byte) (int, error) {
	return s.reader.Read(p)
}

func (s *pulseStream) write(samples []int16) (int, error) {
	buf := make([]byte, len(samples)*2)
	for i, v := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(v))
	}
	if _, err := s.writer.Write(buf); err != nil {
		return 0, err
	}
	return len(samples), nil
}

// Close unblocks the callback first, then tears down the server objects.
func (s *pulseStream) Close() error {
	s.once.Do(func() {
		s.reader.Close()
		if s.record != nil {
			s.record.Stop()
			s.record.Close()
		}
		s.client.Close()
		s.writer.Close()
	})
	return nil
}

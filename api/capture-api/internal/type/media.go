// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_type

import (
	"context"
	"io"
)

// AudioFormat describes the raw PCM a MediaStream delivers.
type AudioFormat struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
}

// BytesPerFrame is the size of one sample across all channels.
func (f AudioFormat) BytesPerFrame() int {
	return f.Channels * f.BitsPerSample / 8
}

// BytesPerSecond is the PCM byte rate.
func (f AudioFormat) BytesPerSecond() int {
	return f.SampleRate * f.BytesPerFrame()
}

// DefaultAudioFormat is 48kHz mono LINEAR16.
var DefaultAudioFormat = AudioFormat{SampleRate: 48000, Channels: 1, BitsPerSample: 16}

// MediaStreamConstraints is the capture request. Only audio input is
// supported; there are no sample-rate or codec knobs.
type MediaStreamConstraints struct {
	Audio bool
}

// MediaStream is a live audio source. Reads block until audio is available;
// Close releases the device and unblocks pending reads.
type MediaStream interface {
	io.ReadCloser
	ID() string
	Format() AudioFormat
}

// MediaDevices acquires microphone streams. GetUserMedia may block for as
// long as the platform waits on a permission decision; ctx bounds the wait.
type MediaDevices interface {
	GetUserMedia(ctx context.Context, constraints MediaStreamConstraints) (MediaStream, error)
}

// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_recorder

import (
	"bytes"
	"encoding/binary"

	internal_type "github.com/rapidaai/capture/api/capture-api/internal/type"
)

const (
	MimeTypeWAV    = "audio/wav"
	AudioPCMFormat = 1  // WAV PCM format tag
	WAVHeaderSize  = 44 // RIFF + fmt + data chunk headers

	// unknownLength marks RIFF and data sizes of a WAV that is still being
	// written; decoders read until end of input.
	unknownLength = 0xFFFFFFFF
)

// streamingWAVHeader renders a canonical 44 byte header whose sizes are left
// open, so it can lead the first fragment before the PCM length is known.
func streamingWAVHeader(format internal_type.AudioFormat) []byte {
	return wavHeader(format, unknownLength, unknownLength)
}

func wavHeader(format internal_type.AudioFormat, riffSize, dataSize uint32) []byte {
	var buf bytes.Buffer
	buf.Grow(WAVHeaderSize)

	buf.Write([]byte("RIFF"))
	binary.Write(&buf, binary.LittleEndian, riffSize)
	buf.Write([]byte("WAVE"))

	buf.Write([]byte("fmt "))
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(AudioPCMFormat))
	binary.Write(&buf, binary.LittleEndian, uint16(format.Channels))
	binary.Write(&buf, binary.LittleEndian, uint32(format.SampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(format.BytesPerSecond()))
	binary.Write(&buf, binary.LittleEndian, uint16(format.BytesPerFrame()))
	binary.Write(&buf, binary.LittleEndian, uint16(format.BitsPerSample))

	// data chunk
	buf.Write([]byte("data"))
	binary.Write(&buf, binary.LittleEndian, dataSize)

	return buf.Bytes()
}

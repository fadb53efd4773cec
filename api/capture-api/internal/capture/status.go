// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_capture

import "time"

type SlotValue struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// Snapshot is a point in time view of the session for the status endpoint.
type Snapshot struct {
	State        State       `json:"state"`
	Active       bool        `json:"active"`
	RecordingID  string      `json:"recordingId,omitempty"`
	StartedAt    *time.Time  `json:"startedAt,omitempty"`
	Chunks       int         `json:"chunks"`
	Bytes        int         `json:"bytes"`
	ArtifactType string      `json:"artifactType,omitempty"`
	ArtifactSize int         `json:"artifactSize"`
	Slots        []SlotValue `json:"slots"`
	LastError    string      `json:"lastError,omitempty"`
}

func (s *Session) Status() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		State:       s.state,
		Active:      s.recorder != nil,
		RecordingID: s.recordingID,
		Chunks:      len(s.chunks),
		Bytes:       s.chunkBytes,
		Slots:       make([]SlotValue, 0, len(s.slots)),
	}
	if !s.startedAt.IsZero() {
		startedAt := s.startedAt
		snap.StartedAt = &startedAt
	}
	if s.artifact != nil {
		snap.ArtifactType = s.artifact.Blob.Type
		snap.ArtifactSize = s.artifact.Blob.Size()
	}
	if s.lastErr != nil {
		snap.LastError = s.lastErr.Error()
	}
	for _, slot := range s.slots {
		snap.Slots = append(snap.Slots, SlotValue{ID: slot.ID(), Value: slot.Value()})
	}
	return snap
}

// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_page

import (
	internal_type "github.com/rapidaai/capture/api/capture-api/internal/type"
)

type elementSlot struct {
	page *Page
	id   string
}

func (s *elementSlot) ID() string        { return s.id }
func (s *elementSlot) Assign(ref string) { s.page.Set(s.id, ref) }

func (s *elementSlot) Value() string {
	v, _ := s.page.Get(s.id)
	return v
}

// PlaybackSlot binds the src of an audio element.
func PlaybackSlot(page *Page, id string) internal_type.Slot {
	return &elementSlot{page: page, id: id}
}

// FieldSlot binds the value of a hidden input.
func FieldSlot(page *Page, id string) internal_type.Slot {
	return &elementSlot{page: page, id: id}
}

// Slots returns the playback surface followed by the two data fields.
func (p *Page) Slots() []internal_type.Slot {
	return []internal_type.Slot{
		PlaybackSlot(p, ElementAudio),
		FieldSlot(p, ElementAudioBlob),
		FieldSlot(p, ElementAudioData),
	}
}

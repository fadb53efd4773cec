// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_type

// Slot is one consumer of a finished artifact: the playback surface or a
// data-carrier field. Assign replaces the slot's current reference.
type Slot interface {
	ID() string
	Assign(ref string)
	Value() string
}

// StatusReporter receives the human readable status line.
type StatusReporter interface {
	SetStatus(text string)
}

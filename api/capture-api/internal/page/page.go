// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

// Package internal_page holds the server side copy of the capture page: the
// playback element, the two hidden data fields and the status line. Clients
// mirror it over a websocket.
package internal_page

import (
	"sync"

	"github.com/rapidaai/capture/pkg/commons"
)

const (
	ElementAudio     = "audio"
	ElementAudioBlob = "audio_blob"
	ElementAudioData = "audio_data"
	ElementStatus    = "status"

	AttrSrc   = "src"
	AttrValue = "value"
	AttrText  = "text"

	DefaultSubscriberBuffer = 16
)

// ElementUpdate is one attribute change pushed to clients.
type ElementUpdate struct {
	ID    string `json:"id"`
	Attr  string `json:"attr"`
	Value string `json:"value"`
}

type Page struct {
	logger commons.Logger

	mu          sync.RWMutex
	order       []string
	elements    map[string]*ElementUpdate
	subscribers map[uint64]chan ElementUpdate
	nextID      uint64
}

// NewPage builds the capture page with its four elements empty.
func NewPage(logger commons.Logger) *Page {
	p := &Page{
		logger:      logger,
		elements:    make(map[string]*ElementUpdate),
		subscribers: make(map[uint64]chan ElementUpdate),
	}
	p.declare(ElementAudio, AttrSrc)
	p.declare(ElementAudioBlob, AttrValue)
	p.declare(ElementAudioData, AttrValue)
	p.declare(ElementStatus, AttrText)
	return p
}

func (p *Page) declare(id, attr string) {
	p.order = append(p.order, id)
	p.elements[id] = &ElementUpdate{ID: id, Attr: attr}
}

// Get returns the current value of an element and whether it exists.
func (p *Page) Get(id string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	el, ok := p.elements[id]
	if !ok {
		return "", false
	}
	return el.Value, true
}

// Set writes an element and broadcasts the change. Unknown ids are ignored.
func (p *Page) Set(id, value string) {
	p.mu.Lock()
	el, ok := p.elements[id]
	if !ok {
		p.mu.Unlock()
		p.logger.Warnf("page has no element %q", id)
		return
	}
	el.Value = value
	update := *el
	// sends happen under the lock so cancel cannot close a channel mid-send
	for _, ch := range p.subscribers {
		select {
		case ch <- update:
		default:
			p.logger.Debugf("dropping page update %s.%s for slow subscriber", update.ID, update.Attr)
		}
	}
	p.mu.Unlock()
}

// SetStatus writes the status line.
func (p *Page) SetStatus(text string) {
	p.Set(ElementStatus, text)
}

// Snapshot returns every element in declaration order.
func (p *Page) Snapshot() []ElementUpdate {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]ElementUpdate, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, *p.elements[id])
	}
	return out
}

// Subscribe registers a listener. The channel starts with a replay of the
// current snapshot; cancel unregisters and closes it.
func (p *Page) Subscribe(buffer int) (<-chan ElementUpdate, func()) {
	p.mu.Lock()
	if buffer < len(p.order) {
		buffer = len(p.order)
	}
	ch := make(chan ElementUpdate, buffer+DefaultSubscriberBuffer)
	for _, id := range p.order {
		ch <- *p.elements[id]
	}
	id := p.nextID
	p.nextID++
	p.subscribers[id] = ch
	p.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.subscribers, id)
			p.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

package internal_page

import (
	"testing"

	"github.com/rapidaai/capture/pkg/commons"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T) commons.Logger {
	t.Helper()
	logger, err := commons.NewApplicationLogger(commons.Name("test-page"), commons.Path(t.TempDir()), commons.Console(false))
	require.NoError(t, err)
	return logger
}

func TestNewPage_DeclaresElements(t *testing.T) {
	p := NewPage(newTestLogger(t))
	assert.Equal(t, []ElementUpdate{
		{ID: ElementAudio, Attr: AttrSrc},
		{ID: ElementAudioBlob, Attr: AttrValue},
		{ID: ElementAudioData, Attr: AttrValue},
		{ID: ElementStatus, Attr: AttrText},
	}, p.Snapshot())
}

func TestPage_SlotsAssignIndependently(t *testing.T) {
	p := NewPage(newTestLogger(t))
	slots := p.Slots()
	require.Len(t, slots, 3)

	slots[0].Assign("http://localhost/v1/objects/a")
	slots[1].Assign("http://localhost/v1/objects/b")
	slots[2].Assign("http://localhost/v1/objects/c")

	assert.Equal(t, ElementAudio, slots[0].ID())
	assert.Equal(t, "http://localhost/v1/objects/a", slots[0].Value())
	assert.Equal(t, "http://localhost/v1/objects/b", slots[1].Value())
	assert.Equal(t, "http://localhost/v1/objects/c", slots[2].Value())

	v, ok := p.Get(ElementAudioData)
	assert.True(t, ok)
	assert.Equal(t, "http://localhost/v1/objects/c", v)
}

func TestPage_UnknownElementIgnored(t *testing.T) {
	p := NewPage(newTestLogger(t))
	p.Set("video", "x")
	_, ok := p.Get("video")
	assert.False(t, ok)
}

func TestPage_SubscribeReplaysThenStreams(t *testing.T) {
	p := NewPage(newTestLogger(t))
	p.SetStatus("Recording...")

	updates, cancel := p.Subscribe(0)
	defer cancel()

	var replay []ElementUpdate
	for i := 0; i < 4; i++ {
		replay = append(replay, <-updates)
	}
	assert.Equal(t, p.Snapshot(), replay)
	assert.Equal(t, "Recording...", replay[3].Value)

	p.SetStatus("Recording stopped.")
	assert.Equal(t, ElementUpdate{ID: ElementStatus, Attr: AttrText, Value: "Recording stopped."}, <-updates)
}

func TestPage_SlowSubscriberDropsUpdates(t *testing.T) {
	p := NewPage(newTestLogger(t))
	updates, cancel := p.Subscribe(0)
	defer cancel()

	// never read: the broadcaster must not block
	for i := 0; i < 100; i++ {
		p.SetStatus("tick")
	}
	assert.Equal(t, cap(updates), len(updates))
}

func TestPage_CancelClosesChannel(t *testing.T) {
	p := NewPage(newTestLogger(t))
	updates, cancel := p.Subscribe(0)
	cancel()
	cancel()

	for range updates {
	}
	p.SetStatus("after cancel")
	_, open := <-updates
	assert.False(t, open)
}

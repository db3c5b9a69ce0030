// Package editor holds the user's caption edits and sync offset. Preview and
// export both read captions through Synced, so they always agree.
package editor

import (
	"sync"

	"github.com/ZacxDev/arcadescript/internal/caption"
	"github.com/ZacxDev/arcadescript/internal/numeric"
)

// MaxOffsetMs bounds Nudge. SetOffset accepts any value.
const MaxOffsetMs = 2000

// Editor is safe for concurrent use. Readers get copies, so results handed
// out earlier never change.
type Editor struct {
	mu       sync.RWMutex
	segs     []caption.Segment
	offsetMs float64
	version  uint64
}

// New starts an editor on a copy of segs with no offset.
func New(segs []caption.Segment) *Editor {
	return &Editor{segs: caption.Clone(segs)}
}

// Segments returns a copy of the edited captions without the offset.
func (e *Editor) Segments() []caption.Segment {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return caption.Clone(e.segs)
}

// Offset returns the sync offset in milliseconds.
func (e *Editor) Offset() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.offsetMs
}

// Version increases on every change.
func (e *Editor) Version() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.version
}

func (e *Editor) SetOffset(ms float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.offsetMs = ms
	e.version++
}

// Nudge moves the offset by deltaMs, keeping it within ±MaxOffsetMs.
func (e *Editor) Nudge(deltaMs float64) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.offsetMs = numeric.Clamp(e.offsetMs+deltaMs, -MaxOffsetMs, MaxOffsetMs)
	e.version++
	return e.offsetMs
}

func (e *Editor) SetText(index int, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	next, err := caption.SetText(e.segs, index, text)
	if err != nil {
		return err
	}
	e.segs = next
	e.version++
	return nil
}

func (e *Editor) SetEmotion(index int, em caption.Emotion) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	next, err := caption.SetEmotion(e.segs, index, em)
	if err != nil {
		return err
	}
	e.segs = next
	e.version++
	return nil
}

// Reset loads a new transcript and clears the offset.
func (e *Editor) Reset(segs []caption.Segment) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.segs = caption.Clone(segs)
	e.offsetMs = 0
	e.version++
}

// Synced returns the captions with the offset applied. The result is a new
// slice owned by the caller.
func (e *Editor) Synced() []caption.Segment {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return caption.WithOffset(e.segs, e.offsetMs)
}

// Bake folds the offset into the segments and resets it to zero. Synced is
// unchanged by a bake.
func (e *Editor) Bake() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.segs = caption.WithOffset(e.segs, e.offsetMs)
	e.offsetMs = 0
	e.version++
}

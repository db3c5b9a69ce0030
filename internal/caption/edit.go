package caption

import (
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrOutOfRange is returned when an edit targets an index that does not exist.
	ErrOutOfRange = errors.New("caption index out of range")
	// ErrEmptyText is returned when replacement text is blank.
	ErrEmptyText = errors.New("caption text is empty")
)

// WithOffset returns a copy of segs with every start and end shifted by
// offsetMs milliseconds. The input is not modified.
func WithOffset(segs []Segment, offsetMs float64) []Segment {
	out := Clone(segs)
	shift := offsetMs / 1000
	for i := range out {
		out[i].Start += shift
		out[i].End += shift
	}
	return out
}

// SetText returns a copy of segs with the text of segment index replaced.
// Text that is blank after trimming is rejected.
func SetText(segs []Segment, index int, text string) ([]Segment, error) {
	if err := checkIndex(segs, index); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, errors.Wrapf(ErrEmptyText, "index %d", index)
	}
	out := Clone(segs)
	out[index].Text = text
	return out, nil
}

// SetEmotion returns a copy of segs with the emotion of segment index
// replaced.
func SetEmotion(segs []Segment, index int, e Emotion) ([]Segment, error) {
	if err := checkIndex(segs, index); err != nil {
		return nil, err
	}
	if !e.Valid() {
		return nil, errors.Errorf("unknown emotion: %q", e)
	}
	out := Clone(segs)
	out[index].Emotion = e
	return out, nil
}

func checkIndex(segs []Segment, index int) error {
	if index < 0 || index >= len(segs) {
		return errors.Wrapf(ErrOutOfRange, "index %d, have %d segments", index, len(segs))
	}
	return nil
}

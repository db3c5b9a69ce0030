// Package caption holds the timed, emotion-tagged caption segment and the
// operations the editor, preview and export paths share over sequences of
// them.
package caption

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// Emotion tags a segment with the delivery vibe the renderer styles it by.
type Emotion string

const (
	Anger   Emotion = "anger"
	Joy     Emotion = "joy"
	Sad     Emotion = "sad"
	Neutral Emotion = "neutral"
	Hype    Emotion = "hype"
)

// Emotions lists every supported tag.
var Emotions = []Emotion{Anger, Joy, Sad, Neutral, Hype}

// Valid reports whether e is one of the supported tags.
func (e Emotion) Valid() bool {
	for _, known := range Emotions {
		if e == known {
			return true
		}
	}
	return false
}

// ParseEmotion accepts a tag in any case.
func ParseEmotion(s string) (Emotion, error) {
	e := Emotion(strings.ToLower(strings.TrimSpace(s)))
	if !e.Valid() {
		return "", errors.Errorf("unknown emotion: %q", s)
	}
	return e, nil
}

// Segment is one caption unit. Times are seconds on the media timeline.
type Segment struct {
	Start   float64 `json:"start" yaml:"start"`
	End     float64 `json:"end" yaml:"end" validate:"gtefield=Start"`
	Text    string  `json:"text" yaml:"text" validate:"required"`
	Emotion Emotion `json:"emotion" yaml:"emotion" validate:"oneof=anger joy sad neutral hype"`
}

var validate = validator.New()

// Validate checks the segment invariants: start <= end, non-blank text and a
// known emotion.
func Validate(s Segment) error {
	if strings.TrimSpace(s.Text) == "" {
		return ErrEmptyText
	}
	if err := validate.Struct(s); err != nil {
		return errors.Wrap(err, "invalid caption segment")
	}
	return nil
}

// Clone returns an independent copy of segs. A nil input stays nil.
func Clone(segs []Segment) []Segment {
	if segs == nil {
		return nil
	}
	out := make([]Segment, len(segs))
	copy(out, segs)
	return out
}

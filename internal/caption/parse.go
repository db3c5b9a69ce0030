package caption

import (
	"encoding/json"
	"strings"
)

// rawSegment mirrors the wire shape with pointers so missing fields can be
// told apart from zero values.
type rawSegment struct {
	Start   *float64 `json:"start"`
	End     *float64 `json:"end"`
	Text    *string  `json:"text"`
	Emotion string   `json:"emotion"`
}

// ParseTranscript turns a transcript service reply into segments. The reply
// may be a bare JSON array, an array inside a ```json fence, or prose
// around an array. Anything that does not decode to an array yields an empty
// result; items missing start, end or text, items with blank text and items
// ending before they start are dropped. Unknown emotions become neutral.
func ParseTranscript(reply string) []Segment {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(extractArray(reply)), &items); err != nil {
		return []Segment{}
	}

	segs := make([]Segment, 0, len(items))
	for _, item := range items {
		var raw rawSegment
		if err := json.Unmarshal(item, &raw); err != nil {
			continue
		}
		if raw.Start == nil || raw.End == nil || raw.Text == nil {
			continue
		}
		text := strings.TrimSpace(*raw.Text)
		if text == "" || *raw.End < *raw.Start {
			continue
		}
		emotion, err := ParseEmotion(raw.Emotion)
		if err != nil {
			emotion = Neutral
		}
		segs = append(segs, Segment{
			Start:   *raw.Start,
			End:     *raw.End,
			Text:    text,
			Emotion: emotion,
		})
	}
	return segs
}

func extractArray(reply string) string {
	if _, after, ok := strings.Cut(reply, "```json"); ok {
		body, _, _ := strings.Cut(after, "```")
		return strings.TrimSpace(body)
	}
	first := strings.Index(reply, "[")
	last := strings.LastIndex(reply, "]")
	if first >= 0 && last > first {
		return reply[first : last+1]
	}
	return strings.TrimSpace(reply)
}

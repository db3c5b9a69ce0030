// Package format holds the fixed set of export target formats.
package format

import (
	"sort"

	"github.com/pkg/errors"
)

// Format is an export target: output canvas dimensions plus display labels.
type Format struct {
	ID     string
	Name   string
	Width  int
	Height int
	Label  string

	// Container is the preferred output container ("webm" or "mp4").
	Container string
	// VideoBitrate and AudioBitrate are ffmpeg bitrate strings.
	VideoBitrate string
	AudioBitrate string

	order int
}

// Portrait reports whether the format is taller than it is wide.
func (f Format) Portrait() bool { return f.Height > f.Width }

// Aspect is width over height.
func (f Format) Aspect() float64 { return float64(f.Width) / float64(f.Height) }

var formats = make(map[string]Format)

// Register adds a format to the registry. Formats keep registration order.
func Register(f Format) {
	if existing, ok := formats[f.ID]; ok {
		f.order = existing.order
	} else {
		f.order = len(formats)
	}
	formats[f.ID] = f
}

// Get returns a format by id.
func Get(id string) (Format, error) {
	f, ok := formats[id]
	if !ok {
		return Format{}, errors.Errorf("unsupported format: %s", id)
	}
	return f, nil
}

// All returns every format in registration order.
func All() []Format {
	out := make([]Format, 0, len(formats))
	for _, f := range formats {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].order < out[j].order })
	return out
}

// Default is the first registered format.
func Default() Format {
	all := All()
	if len(all) == 0 {
		return Format{}
	}
	return all[0]
}

// IDs returns the ids of every format in registration order.
func IDs() []string {
	all := All()
	ids := make([]string, len(all))
	for i, f := range all {
		ids[i] = f.ID
	}
	return ids
}

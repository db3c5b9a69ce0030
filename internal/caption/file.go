package caption

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// IsYAML reports whether path names a YAML caption file. Everything else is
// read and written as JSON.
func IsYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Load reads a caption file. Entries that fail validation are rejected
// rather than silently dropped, since the file is user-edited input.
func Load(path string) ([]Segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read captions")
	}

	var segs []Segment
	if IsYAML(path) {
		err = yaml.Unmarshal(data, &segs)
	} else {
		err = json.Unmarshal(data, &segs)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse captions in %s", path)
	}
	if segs == nil {
		segs = []Segment{}
	}

	for i, s := range segs {
		if err := Validate(s); err != nil {
			return nil, errors.Wrapf(err, "segment %d", i)
		}
	}
	return segs, nil
}

// Save writes segs as an indented array. An empty sequence is written as
// [] rather than null.
func Save(path string, segs []Segment) error {
	if segs == nil {
		segs = []Segment{}
	}

	var data []byte
	var err error
	if IsYAML(path) {
		data, err = yaml.Marshal(segs)
	} else {
		data, err = json.MarshalIndent(segs, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.WithStack(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write captions")
	}
	return nil
}

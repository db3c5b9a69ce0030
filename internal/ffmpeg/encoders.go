package ffmpeg

import (
	"bufio"
	"context"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

// Binary is the ffmpeg executable used for capability checks.
var Binary = "ffmpeg"

// CheckEncoders verifies ffmpeg can encode the container's codecs.
func (p *Processor) CheckEncoders(ctx context.Context, container string) error {
	out, err := exec.CommandContext(ctx, Binary, "-hide_banner", "-encoders").Output()
	if err != nil {
		return errors.Wrap(err, "listing ffmpeg encoders")
	}
	available := parseEncoders(string(out))
	settings := GetCodecSettings(container)
	for _, codec := range []string{settings.VideoCodec, settings.AudioCodec} {
		if !available[codec] {
			return errors.Errorf("ffmpeg has no %s encoder", codec)
		}
	}
	return nil
}

// parseEncoders reads `ffmpeg -encoders` output. Encoder lines look like
// " V....D libvpx-vp9           libvpx VP9".
func parseEncoders(out string) map[string]bool {
	found := make(map[string]bool)
	inList := false
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "------") {
			inList = true
			continue
		}
		if !inList {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 || len(fields[0]) != 6 {
			continue
		}
		found[fields[1]] = true
	}
	return found
}

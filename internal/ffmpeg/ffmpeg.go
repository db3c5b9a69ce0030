package ffmpeg

import (
	"encoding/json"
	"math"
	"runtime"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

type CodecSettings struct {
	VideoCodec      string
	AudioCodec      string
	ContainerFormat string
	FileExtension   string
	EncoderPresets  map[string]ffmpeg.KwArgs
}

var codecPresets = map[string]CodecSettings{
	"webm": {
		VideoCodec:      "libvpx-vp9",
		AudioCodec:      "libopus",
		ContainerFormat: "webm",
		FileExtension:   ".webm",
		EncoderPresets: map[string]ffmpeg.KwArgs{
			"balanced": {
				"deadline": "good",
				"cpu-used": 4,
				"row-mt":   1,
			},
			"high_quality": {
				"quality":        "best",
				"cpu-used":       2,
				"row-mt":         1,
				"tile-columns":   2,
				"frame-parallel": 1,
				"auto-alt-ref":   1,
				"lag-in-frames":  25,
			},
		},
	},
	"mp4": {
		VideoCodec:      "libx264",
		AudioCodec:      "aac",
		ContainerFormat: "mp4",
		FileExtension:   ".mp4",
		EncoderPresets: map[string]ffmpeg.KwArgs{
			"balanced": {
				"preset":    "medium",
				"profile:v": "high",
				"movflags":  "+faststart",
			},
			"high_quality": {
				"preset":       "slower",
				"profile:v":    "high",
				"level":        "5.2",
				"movflags":     "+faststart",
				"bf":           3,
				"refs":         4,
				"rc-lookahead": 60,
				"flags":        "+cgop",
				"coder":        "1",
			},
		},
	},
}

// GetCodecSettings returns the codec settings for a container, defaulting
// to WebM.
func GetCodecSettings(container string) CodecSettings {
	if settings, ok := codecPresets[container]; ok {
		return settings
	}
	return codecPresets["webm"]
}

// Containers lists the supported output containers.
func Containers() []string { return []string{"webm", "mp4"} }

// VideoMetadata contains metadata about a media file. Width and Height are
// display dimensions, i.e. already swapped for 90 degree rotations.
type VideoMetadata struct {
	Duration  float64
	Width     int
	Height    int
	Codec     string
	FrameRate float64
	HasAudio  bool
	Rotation  int
}

// Processor wraps FFmpeg functionality
type Processor struct {
	log logrus.FieldLogger
}

// NewProcessor creates a new FFmpeg processor
func NewProcessor(log logrus.FieldLogger) *Processor {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		log = l
	}
	return &Processor{log: log}
}

// GetVideoMetadata retrieves metadata about a video file
func (p *Processor) GetVideoMetadata(inputPath string) (*VideoMetadata, error) {
	probe, err := ffmpeg.Probe(inputPath)
	if err != nil {
		return nil, errors.Wrapf(err, "error probing %s", inputPath)
	}
	meta, err := parseProbe(probe)
	if err != nil {
		return nil, errors.Wrapf(err, "error probing %s", inputPath)
	}
	p.log.WithFields(logrus.Fields{
		"path":     inputPath,
		"width":    meta.Width,
		"height":   meta.Height,
		"duration": meta.Duration,
		"fps":      meta.FrameRate,
		"audio":    meta.HasAudio,
	}).Debug("probed media")
	return meta, nil
}

type probeStream struct {
	CodecType    string            `json:"codec_type"`
	CodecName    string            `json:"codec_name"`
	Width        int               `json:"width"`
	Height       int               `json:"height"`
	Duration     string            `json:"duration"`
	NbFrames     string            `json:"nb_frames"`
	RFrameRate   string            `json:"r_frame_rate"`
	AvgFrameRate string            `json:"avg_frame_rate"`
	Tags         map[string]string `json:"tags"`
	SideData     []struct {
		Rotation float64 `json:"rotation"`
	} `json:"side_data_list"`
}

type probeOutput struct {
	Streams []probeStream `json:"streams"`
	Format  struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func parseProbe(probe string) (*VideoMetadata, error) {
	var data probeOutput
	if err := json.Unmarshal([]byte(probe), &data); err != nil {
		return nil, errors.WithStack(err)
	}
	if len(data.Streams) == 0 {
		return nil, errors.New("no streams found in video")
	}

	var video *probeStream
	hasAudio := false
	for i := range data.Streams {
		switch data.Streams[i].CodecType {
		case "video":
			if video == nil {
				video = &data.Streams[i]
			}
		case "audio":
			hasAudio = true
		}
	}
	if video == nil {
		return nil, errors.New("no video stream found")
	}

	frameRate := parseRate(video.AvgFrameRate)
	if frameRate == 0 {
		frameRate = parseRate(video.RFrameRate)
	}

	// Stream duration first, then container duration, then frames / rate.
	duration := parseSeconds(video.Duration)
	if duration == 0 {
		duration = parseSeconds(data.Format.Duration)
	}
	if duration == 0 && frameRate > 0 {
		if frames, err := strconv.ParseFloat(video.NbFrames, 64); err == nil {
			duration = frames / frameRate
		}
	}
	if duration == 0 {
		return nil, errors.New("could not determine video duration")
	}

	rotation := 0
	if r, err := strconv.Atoi(video.Tags["rotate"]); err == nil {
		rotation = r
	}
	for _, sd := range video.SideData {
		if sd.Rotation != 0 {
			rotation = int(sd.Rotation)
		}
	}
	rotation = ((rotation % 360) + 360) % 360

	w, h := video.Width, video.Height
	if rotation == 90 || rotation == 270 {
		w, h = h, w
	}
	if w <= 0 || h <= 0 {
		return nil, errors.Errorf("invalid video dimensions %dx%d", w, h)
	}

	return &VideoMetadata{
		Duration:  duration,
		Width:     w,
		Height:    h,
		Codec:     video.CodecName,
		FrameRate: frameRate,
		HasAudio:  hasAudio,
		Rotation:  rotation,
	}, nil
}

func parseSeconds(s string) float64 {
	d, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || d < 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return 0
	}
	return d
}

// parseRate parses an ffprobe rational such as "30000/1001".
func parseRate(s string) float64 {
	nums := strings.Split(s, "/")
	if len(nums) != 2 {
		return parseSeconds(s)
	}
	num, err1 := strconv.ParseFloat(nums[0], 64)
	den, err2 := strconv.ParseFloat(nums[1], 64)
	if err1 != nil || err2 != nil || den == 0 || num <= 0 {
		return 0
	}
	return num / den
}

func GetOptimalThreadCount() int {
	cpuCount := runtime.NumCPU()
	// Use 75% of available cores to prevent overload
	return int(math.Max(1, float64(cpuCount)*0.75))
}

// EnsureExtension replaces any video extension on filename with extension.
func EnsureExtension(filename, extension string) string {
	extensions := []string{".mp4", ".webm", ".mkv", ".avi", ".mov"}
	for _, ext := range extensions {
		filename = strings.TrimSuffix(filename, ext)
	}
	return filename + extension
}

// SetCommandLogging toggles ffmpeg-go's printing of every compiled command.
func SetCommandLogging(on bool) {
	ffmpeg.LogCompiledCommand = on
}

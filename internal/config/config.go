package config

import "time"

// ExportOptions defines options for exporting a captioned video
type ExportOptions struct {
	InputPath    string
	CaptionsPath string // empty exports without captions
	Format       string
	Theme        string
	OffsetMs     float64
	OutputDir    string
	Container    string // "webm" or "mp4"
	Quality      string
	FPS          float64
	FontPath     string
	CopyPath     bool
	Verbose      bool
}

// PreviewOptions defines options for rendering a single composited frame
type PreviewOptions struct {
	InputPath    string
	CaptionsPath string
	Time         float64
	Format       string
	Theme        string
	OffsetMs     float64
	OutputPath   string
	FontPath     string
	Verbose      bool
}

// TranscribeOptions defines options for fetching captions for a recording
type TranscribeOptions struct {
	InputPath  string
	OutputPath string
	Endpoint   string
	Model      string
	APIKey     string
	Timeout    time.Duration
	Verbose    bool
}

// EditOptions defines options for editing a caption file
type EditOptions struct {
	CaptionsPath string
	OutputPath   string
	SetText      []string // "index=text"
	SetEmotion   []string // "index=emotion"
	OffsetMs     float64
	Nudge        bool // apply OffsetMs as a clamped nudge
	Bake         bool // fold the offset into the saved timestamps
	Verbose      bool
}

const (
	// Product prefixes exported file names
	Product = "arcadescript"

	DefaultConfigFile = "arcadescript.yaml"
	DefaultFormat     = "story"
	DefaultContainer  = "webm"
	DefaultQuality    = "balanced"
	DefaultFPS        = 30.0
	MaxFPS            = 120.0

	// Transcript service
	DefaultTranscriptEndpoint = "https://generativelanguage.googleapis.com"
	DefaultTranscriptModel    = "gemini-2.5-flash"
	DefaultAPIKeyEnv          = "GEMINI_API_KEY"
	DefaultTranscriptTimeout  = 2 * time.Minute
)

package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZacxDev/arcadescript/internal/format"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// File is the optional YAML configuration. Command-line flags override it.
type File struct {
	Product   string  `yaml:"product" validate:"required,excludesall=/\\"`
	OutputDir string  `yaml:"output_dir" validate:"required"`
	Format    string  `yaml:"format" validate:"required,format_id"`
	Theme     string  `yaml:"theme"`
	Container string  `yaml:"container" validate:"oneof=webm mp4"`
	Quality   string  `yaml:"quality" validate:"oneof=balanced high_quality"`
	FPS       float64 `yaml:"fps" validate:"gt=0,lte=120"`
	FontPath  string  `yaml:"font_path"`
	LogFormat string  `yaml:"log_format" validate:"oneof=text json"`

	Transcript struct {
		Endpoint  string        `yaml:"endpoint" validate:"required,url"`
		Model     string        `yaml:"model" validate:"required"`
		APIKeyEnv string        `yaml:"api_key_env" validate:"required"`
		Timeout   time.Duration `yaml:"timeout" validate:"gt=0"`
	} `yaml:"transcript"`

	path string
}

// Default returns the built-in configuration.
func Default() *File {
	f := &File{
		Product:   Product,
		OutputDir: ".",
		Format:    DefaultFormat,
		Container: DefaultContainer,
		Quality:   DefaultQuality,
		FPS:       DefaultFPS,
		LogFormat: "text",
	}
	f.Transcript.Endpoint = DefaultTranscriptEndpoint
	f.Transcript.Model = DefaultTranscriptModel
	f.Transcript.APIKeyEnv = DefaultAPIKeyEnv
	f.Transcript.Timeout = DefaultTranscriptTimeout
	return f
}

// Load reads path over the defaults. A missing file is an error only when
// explicit is set; otherwise the defaults are returned.
func Load(path string, explicit bool) (*File, error) {
	cfg := Default()
	if path == "" {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}
	cfg.path = path
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}

// Path is the file the config was read from, empty for defaults.
func (f *File) Path() string { return f.path }

func (f *File) normalize() {
	f.OutputDir = filepath.Clean(strings.TrimSpace(f.OutputDir))
	f.Format = strings.ToLower(strings.TrimSpace(f.Format))
	f.Theme = strings.ToLower(strings.TrimSpace(f.Theme))
	f.Container = strings.ToLower(strings.TrimSpace(f.Container))
	f.LogFormat = strings.ToLower(strings.TrimSpace(f.LogFormat))
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("format_id", func(fl validator.FieldLevel) bool {
		_, err := format.Get(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks the configuration values.
func (f *File) Validate() error {
	return validate.Struct(f)
}

// APIKey reads the transcript API key from the configured variable.
func (f *File) APIKey() string {
	return os.Getenv(f.Transcript.APIKeyEnv)
}

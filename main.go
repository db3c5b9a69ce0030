package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/ZacxDev/arcadescript/internal/config"
	"github.com/ZacxDev/arcadescript/internal/ffmpeg"
	"github.com/ZacxDev/arcadescript/internal/logging"
	"github.com/ZacxDev/arcadescript/pkg/videoprocessor"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfg *config.File
	log *logrus.Logger

	rootCmd = &cobra.Command{
		Use:   "arcadescript",
		Short: "Caption and brand gameplay recordings for social media",
		Long: `arcadescript renders themed, emotion-styled captions and a logo overlay
onto a recording and exports it in a social media format.

Examples:
  # Transcribe a recording into a caption file
  arcadescript transcribe -i clip.mp4

  # Shift the captions 250ms later and save the shift
  arcadescript edit -c clip.captions.json --offset 250 --bake

  # Export a TikTok-sized video with the kyo theme
  arcadescript export -i clip.mp4 -c clip.captions.json -f story --theme kyo`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			verbose, _ := cmd.Flags().GetBool("verbose")
			logFormat, _ := cmd.Flags().GetString("log-format")

			var err error
			cfg, err = config.Load(path, cmd.Flags().Changed("config"))
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("log-format") {
				logFormat = cfg.LogFormat
			}
			log, err = logging.New(logging.Options{Verbose: verbose, Format: logFormat})
			if err != nil {
				return err
			}
			ffmpeg.SetCommandLogging(verbose)
			if cfg.Path() != "" {
				log.WithField("path", cfg.Path()).Debug("Loaded config")
			}
			return nil
		},
	}

	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Render captions and logo onto a video",
		Long: fmt.Sprintf(`Composite captions, theme styling and the logo envelope onto every frame
and encode the result next to the source audio.

Supported formats:
%s
Example:
  arcadescript export -i clip.mp4 -c clip.captions.json -f square -o ./out`,
			formatSupportedFormats()),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := &videoprocessor.ExportOptions{}

			opts.InputPath, _ = cmd.Flags().GetString("input")
			opts.CaptionsPath, _ = cmd.Flags().GetString("captions")
			opts.Format = stringFlag(cmd, "format", cfg.Format)
			opts.Theme = stringFlag(cmd, "theme", cfg.Theme)
			opts.OffsetMs, _ = cmd.Flags().GetFloat64("offset")
			opts.OutputDir = stringFlag(cmd, "output", cfg.OutputDir)
			opts.Container = stringFlag(cmd, "container", cfg.Container)
			opts.Quality = stringFlag(cmd, "quality", cfg.Quality)
			opts.FPS = cfg.FPS
			if cmd.Flags().Changed("fps") {
				opts.FPS, _ = cmd.Flags().GetFloat64("fps")
			}
			opts.FontPath = stringFlag(cmd, "font", cfg.FontPath)
			opts.CopyPath, _ = cmd.Flags().GetBool("copy-path")
			opts.Verbose, _ = cmd.Flags().GetBool("verbose")

			if opts.InputPath == "" {
				return fmt.Errorf("input path is required")
			}

			ctx, stop := signalContext()
			defer stop()

			out, err := videoprocessor.Export(ctx, opts, log)
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	}

	previewCmd = &cobra.Command{
		Use:   "preview",
		Short: "Render a single composited frame as PNG",
		Long: `Render the frame at a given time exactly as export would and save it as PNG.

Example:
  arcadescript preview -i clip.mp4 -c clip.captions.json -t 2.5 -o frame.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := &videoprocessor.PreviewOptions{}

			opts.InputPath, _ = cmd.Flags().GetString("input")
			opts.CaptionsPath, _ = cmd.Flags().GetString("captions")
			opts.Time, _ = cmd.Flags().GetFloat64("time")
			opts.Format = stringFlag(cmd, "format", cfg.Format)
			opts.Theme = stringFlag(cmd, "theme", cfg.Theme)
			opts.OffsetMs, _ = cmd.Flags().GetFloat64("offset")
			opts.OutputPath, _ = cmd.Flags().GetString("output")
			opts.FontPath = stringFlag(cmd, "font", cfg.FontPath)
			opts.Verbose, _ = cmd.Flags().GetBool("verbose")

			if opts.InputPath == "" {
				return fmt.Errorf("input path is required")
			}

			out, info, err := videoprocessor.Preview(opts, log)
			if err != nil {
				return err
			}
			log.WithFields(logrus.Fields{
				"logo_alpha": info.LogoAlpha,
				"caption":    info.HasCaption,
				"lines":      len(info.Lines),
			}).Debug("Frame composited")
			fmt.Println(out)
			return nil
		},
	}

	transcribeCmd = &cobra.Command{
		Use:   "transcribe",
		Short: "Fetch emotion-tagged captions for a recording",
		Long: fmt.Sprintf(`Send the recording's audio to the transcription service and save the
captions as JSON. The API key is read from $%s unless the config names
another variable.

Example:
  arcadescript transcribe -i clip.mp4 -o clip.captions.json`, config.DefaultAPIKeyEnv),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := &videoprocessor.TranscribeOptions{}

			opts.InputPath, _ = cmd.Flags().GetString("input")
			opts.OutputPath, _ = cmd.Flags().GetString("output")
			opts.Endpoint = stringFlag(cmd, "endpoint", cfg.Transcript.Endpoint)
			opts.Model = stringFlag(cmd, "model", cfg.Transcript.Model)
			opts.Timeout = cfg.Transcript.Timeout
			if cmd.Flags().Changed("timeout") {
				opts.Timeout, _ = cmd.Flags().GetDuration("timeout")
			}
			opts.APIKey = cfg.APIKey()
			opts.Verbose, _ = cmd.Flags().GetBool("verbose")

			if opts.InputPath == "" {
				return fmt.Errorf("input path is required")
			}

			ctx, stop := signalContext()
			defer stop()

			out, segs, err := videoprocessor.Transcribe(ctx, opts, log)
			if err != nil {
				return err
			}
			log.WithField("captions", len(segs)).Info("Transcription saved")
			fmt.Println(out)
			return nil
		},
	}

	editCmd = &cobra.Command{
		Use:   "edit",
		Short: "Edit caption text, emotion and timing",
		Long: `Apply edits to a caption file. Edits are all-or-nothing: if any edit is
invalid nothing is written.

Example:
  arcadescript edit -c clip.captions.json --set-text 0="GG" --set-emotion 0=hype --offset -120 --bake`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := &videoprocessor.EditOptions{}

			opts.CaptionsPath, _ = cmd.Flags().GetString("captions")
			opts.OutputPath, _ = cmd.Flags().GetString("output")
			opts.SetText, _ = cmd.Flags().GetStringArray("set-text")
			opts.SetEmotion, _ = cmd.Flags().GetStringArray("set-emotion")
			opts.OffsetMs, _ = cmd.Flags().GetFloat64("offset")
			opts.Nudge, _ = cmd.Flags().GetBool("nudge")
			opts.Bake, _ = cmd.Flags().GetBool("bake")
			opts.Verbose, _ = cmd.Flags().GetBool("verbose")

			if opts.CaptionsPath == "" {
				return fmt.Errorf("captions path is required")
			}

			out, _, err := videoprocessor.EditCaptions(opts, log)
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	}

	formatsCmd = &cobra.Command{
		Use:   "formats",
		Short: "List export formats",
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := videoprocessor.Formats()
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return printJSON(formats)
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSIZE\tLABEL\tCONTAINER")
			for _, f := range formats {
				fmt.Fprintf(w, "%s\t%s\t%dx%d\t%s\t%s\n", f.ID, f.Name, f.Width, f.Height, f.Label, f.Container)
			}
			return w.Flush()
		},
	}

	themesCmd = &cobra.Command{
		Use:   "themes",
		Short: "List caption themes",
		RunE: func(cmd *cobra.Command, args []string) error {
			themes := videoprocessor.Themes()
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return printJSON(themes)
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tPRIMARY\tACCENT\tDESCRIPTION")
			for _, th := range themes {
				id := th.ID
				if th.Default {
					id += "*"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", id, th.Name, th.Primary, th.Accent, th.Description)
			}
			return w.Flush()
		},
	}
)

func formatSupportedFormats() string {
	var sb strings.Builder
	for _, f := range videoprocessor.Formats() {
		sb.WriteString(fmt.Sprintf("- %s (%dx%d, %s)\n", f.ID, f.Width, f.Height, f.Label))
	}
	return sb.String()
}

// stringFlag returns the flag value when set on the command line, else def.
func stringFlag(cmd *cobra.Command, name, def string) string {
	if !cmd.Flags().Changed(name) {
		return def
	}
	v, _ := cmd.Flags().GetString(name)
	return v
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	rootCmd.PersistentFlags().String("config", config.DefaultConfigFile, "Config file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (text or json)")

	formats := strings.Join(videoprocessor.GetSupportedFormats(), ", ")

	// Export command flags
	exportCmd.Flags().StringP("input", "i", "", "Input video file")
	exportCmd.Flags().StringP("captions", "c", "", "Caption file (JSON or YAML)")
	exportCmd.Flags().StringP("format", "f", config.DefaultFormat, fmt.Sprintf("Export format (%s)", formats))
	exportCmd.Flags().String("theme", "", "Caption theme")
	exportCmd.Flags().Float64("offset", 0, "Caption offset in milliseconds")
	exportCmd.Flags().StringP("output", "o", ".", "Output directory")
	exportCmd.Flags().String("container", config.DefaultContainer, "Container (webm or mp4)")
	exportCmd.Flags().String("quality", config.DefaultQuality, "Encoder preset (balanced or high_quality)")
	exportCmd.Flags().Float64("fps", config.DefaultFPS, "Render frame rate")
	exportCmd.Flags().String("font", "", "TrueType font for captions")
	exportCmd.Flags().Bool("copy-path", false, "Copy the output path to the clipboard")

	exportCmd.MarkFlagRequired("input")

	// Preview command flags
	previewCmd.Flags().StringP("input", "i", "", "Input video file")
	previewCmd.Flags().StringP("captions", "c", "", "Caption file (JSON or YAML)")
	previewCmd.Flags().Float64P("time", "t", 0, "Frame time in seconds")
	previewCmd.Flags().StringP("format", "f", config.DefaultFormat, fmt.Sprintf("Export format (%s)", formats))
	previewCmd.Flags().String("theme", "", "Caption theme")
	previewCmd.Flags().Float64("offset", 0, "Caption offset in milliseconds")
	previewCmd.Flags().StringP("output", "o", "", "Output PNG path")
	previewCmd.Flags().String("font", "", "TrueType font for captions")

	previewCmd.MarkFlagRequired("input")

	// Transcribe command flags
	transcribeCmd.Flags().StringP("input", "i", "", "Input video file")
	transcribeCmd.Flags().StringP("output", "o", "", "Output caption file")
	transcribeCmd.Flags().String("model", config.DefaultTranscriptModel, "Transcription model")
	transcribeCmd.Flags().String("endpoint", config.DefaultTranscriptEndpoint, "Transcription service endpoint")
	transcribeCmd.Flags().Duration("timeout", config.DefaultTranscriptTimeout, "Request timeout")

	transcribeCmd.MarkFlagRequired("input")

	// Edit command flags
	editCmd.Flags().StringP("captions", "c", "", "Caption file (JSON or YAML)")
	editCmd.Flags().StringP("output", "o", "", "Output caption file (defaults to overwriting the input)")
	editCmd.Flags().StringArray("set-text", nil, "Replace caption text (index=text)")
	editCmd.Flags().StringArray("set-emotion", nil, "Replace caption emotion (index=emotion)")
	editCmd.Flags().Float64("offset", 0, "Offset in milliseconds")
	editCmd.Flags().Bool("nudge", false, "Apply the offset as a clamped nudge")
	editCmd.Flags().Bool("bake", false, "Fold the offset into the saved timestamps")

	editCmd.MarkFlagRequired("captions")

	formatsCmd.Flags().Bool("json", false, "Print as JSON")
	themesCmd.Flags().Bool("json", false, "Print as JSON")

	rootCmd.AddCommand(exportCmd, previewCmd, transcribeCmd, editCmd, formatsCmd, themesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

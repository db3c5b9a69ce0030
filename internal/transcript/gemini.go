package transcript

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ZacxDev/arcadescript/internal/caption"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	DefaultEndpoint = "https://generativelanguage.googleapis.com"
	DefaultModel    = "gemini-2.5-flash"
	DefaultTimeout  = 2 * time.Minute
)

// Instruction asks the model for the segment array ParseTranscript reads.
const Instruction = `Transcribe the attached recording into short fighting-game style captions.
Transcribe exactly what is said without omitting words, and tag the emotional tone of each segment.
Respond with only a JSON array:
[{"start": <seconds>, "end": <seconds>, "text": "<TRANSCRIPT IN CAPS>", "emotion": "anger" | "joy" | "sad" | "hype" | "neutral"}]
Use "anger" for loud or aggressive delivery, "hype" for energetic excitement, "joy" for laughter or happiness,
"sad" for subdued or downbeat delivery and "neutral" for calm speech.
Keep each segment under two seconds.`

// AudioSource extracts the audio track to upload.
type AudioSource interface {
	ExtractAudio(path string) ([]byte, string, error)
}

// GeminiClient calls the generateContent endpoint with the recording's audio
// inlined as base64.
type GeminiClient struct {
	Endpoint   string
	Model      string
	APIKey     string
	HTTPClient *http.Client
	Audio      AudioSource
	Log        logrus.FieldLogger
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (g *GeminiClient) Transcribe(ctx context.Context, mediaPath string) ([]caption.Segment, error) {
	if g.APIKey == "" {
		return nil, &ServiceError{Message: "no API key configured"}
	}
	audio, mime, err := g.Audio.ExtractAudio(mediaPath)
	if err != nil {
		return nil, errors.Wrap(err, "preparing audio")
	}

	reply, err := g.generate(ctx, audio, mime)
	if err != nil {
		return nil, err
	}
	segs := caption.ParseTranscript(reply)
	g.logger().WithField("segments", len(segs)).Debug("transcript parsed")
	if len(segs) == 0 {
		return segs, ErrEmpty
	}
	return segs, nil
}

func (g *GeminiClient) generate(ctx context.Context, audio []byte, mime string) (string, error) {
	body, err := json.Marshal(generateRequest{Contents: []content{{Parts: []part{
		{InlineData: &inlineData{MimeType: mime, Data: base64.StdEncoding.EncodeToString(audio)}},
		{Text: Instruction},
	}}}})
	if err != nil {
		return "", errors.WithStack(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url(), bytes.NewReader(body))
	if err != nil {
		return "", errors.WithStack(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.APIKey)

	client := g.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return "", &ServiceError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return "", &ServiceError{StatusCode: resp.StatusCode, Err: err}
	}
	g.logger().WithFields(logrus.Fields{
		"status":  resp.StatusCode,
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Debug("transcript service replied")

	var parsed generateResponse
	decodeErr := json.Unmarshal(raw, &parsed)
	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(raw))
		if decodeErr == nil && parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return "", &ServiceError{StatusCode: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return "", &ServiceError{StatusCode: resp.StatusCode, Err: errors.Wrap(decodeErr, "decoding reply")}
	}
	if len(parsed.Candidates) == 0 {
		return "", nil
	}
	var sb strings.Builder
	for _, p := range parsed.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}

func (g *GeminiClient) url() string {
	endpoint := g.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	model := g.Model
	if model == "" {
		model = DefaultModel
	}
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent", strings.TrimRight(endpoint, "/"), url.PathEscape(model))
}

func (g *GeminiClient) logger() logrus.FieldLogger {
	if g.Log == nil {
		return logrus.StandardLogger()
	}
	return g.Log
}

package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"whispergroq/log"
)

// Groq talks to the OpenAI-compatible transcription endpoint directly so
// every upload can be traced.
type Groq struct {
	client *TracedClient
	apiURL string
	apiKey string
	model  string
	lang   string
}

func NewGroq(cfg Config) *Groq {
	apiURL := cfg.BaseURL
	if apiURL == "" {
		apiURL = groqURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Groq{
		client: NewTracedClient(cfg.Timeout),
		apiURL: apiURL,
		apiKey: cfg.APIKey,
		model:  cfg.Model,
		lang:   cfg.Language,
	}
}

func (g *Groq) Name() string  { return "groq" }
func (g *Groq) Model() string { return g.model }

// Warm pre-establishes the TLS connection; a no-op without credentials.
func (g *Groq) Warm() {
	if g.apiKey == "" {
		return
	}
	if d := g.client.Warm(g.apiURL); d > 0 {
		log.Infof("groq connection warmed, tls %s", d)
	}
}

type verboseSegment struct {
	Text         string  `json:"text"`
	NoSpeechProb float64 `json:"no_speech_prob"`
	AvgLogProb   float64 `json:"avg_logprob"`
	Start        float64 `json:"start"`
	End          float64 `json:"end"`
}

type verboseResponse struct {
	Duration float64          `json:"duration"`
	Segments []verboseSegment `json:"segments"`
}

func (g *Groq) Transcribe(ctx context.Context, audioPath string) (Result, error) {
	if g.apiKey == "" {
		return Result{}, fmt.Errorf("%w: set GROQ_API_KEY", ErrConfiguration)
	}

	audioData, err := os.ReadFile(audioPath)
	if err != nil {
		return Result{}, fmt.Errorf("reading recording: %w", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return Result{}, err
	}
	if _, err := part.Write(audioData); err != nil {
		return Result{}, err
	}

	writer.WriteField("model", g.model)
	writer.WriteField("temperature", "0")
	writer.WriteField("response_format", "verbose_json")
	if g.lang != "" {
		writer.WriteField("language", g.lang)
	}
	if err := writer.Close(); err != nil {
		return Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL, &body)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := g.client.Do(req)
	if err != nil {
		return Result{}, unavailable(g.Name(), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, &ServiceError{Provider: g.Name(), StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}

	text, shape := extractText(resp.Body)
	res := Result{
		Text:       text,
		Shape:      shape,
		AudioBytes: int64(len(audioData)),
		Metrics:    resp.Metrics,
		RateLimit: firstNonEmpty(resp.Header, "x-ratelimit-remaining-requests") + "/" +
			firstNonEmpty(resp.Header, "x-ratelimit-limit-requests"),
	}

	if shape == ShapeText {
		var v verboseResponse
		if json.Unmarshal(resp.Body, &v) == nil {
			res.Duration = v.Duration
			for _, seg := range v.Segments {
				res.NoSpeechProb = max(res.NoSpeechProb, seg.NoSpeechProb)
				res.Segments = append(res.Segments, Segment(seg))
			}
		}
	}
	return res, nil
}

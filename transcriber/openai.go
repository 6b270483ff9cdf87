package transcriber

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/sashabaranov/go-openai"
)

// OpenAI uses the go-openai SDK. Pointed at a different BaseURL it serves
// any OpenAI-compatible endpoint, Groq included.
type OpenAI struct {
	client *openai.Client
	apiKey string
	model  string
	lang   string
}

func NewOpenAI(cfg Config) *OpenAI {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	return &OpenAI{
		client: openai.NewClientWithConfig(oc),
		apiKey: cfg.APIKey,
		model:  cfg.Model,
		lang:   cfg.Language,
	}
}

func (o *OpenAI) Name() string  { return "openai" }
func (o *OpenAI) Model() string { return o.model }

func (o *OpenAI) Transcribe(ctx context.Context, audioPath string) (Result, error) {
	if o.apiKey == "" {
		return Result{}, fmt.Errorf("%w: set OPENAI_API_KEY", ErrConfiguration)
	}
	info, err := os.Stat(audioPath)
	if err != nil {
		return Result{}, fmt.Errorf("reading recording: %w", err)
	}

	resp, err := o.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:       o.model,
		FilePath:    audioPath,
		Temperature: 0,
		Language:    o.lang,
		Format:      openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return Result{}, o.classify(err)
	}

	res := Result{
		Text:       resp.Text,
		Shape:      ShapeText,
		AudioBytes: info.Size(),
		Duration:   resp.Duration,
	}
	for _, seg := range resp.Segments {
		res.NoSpeechProb = max(res.NoSpeechProb, seg.NoSpeechProb)
		res.Segments = append(res.Segments, Segment{
			Text:         seg.Text,
			NoSpeechProb: seg.NoSpeechProb,
			AvgLogProb:   seg.AvgLogprob,
			Start:        seg.Start,
			End:          seg.End,
		})
	}
	return res, nil
}

func (o *OpenAI) classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusUnauthorized {
			return fmt.Errorf("%w: %s", ErrConfiguration, apiErr.Message)
		}
		return &ServiceError{Provider: o.Name(), StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return &ServiceError{Provider: o.Name(), StatusCode: reqErr.HTTPStatusCode, Body: reqErr.Error()}
	}
	return unavailable(o.Name(), err)
}

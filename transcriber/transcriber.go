package transcriber

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultModel   = "whisper-large-v3-turbo"
	DefaultTimeout = 60 * time.Second
	groqURL        = "https://api.groq.com/openai/v1/audio/transcriptions"
)

type NetworkMetrics struct {
	DNS         time.Duration
	ConnWait    time.Duration
	TCP         time.Duration
	TLS         time.Duration
	ReqHeaders  time.Duration
	ReqBody     time.Duration
	TTFB        time.Duration
	Download    time.Duration
	Total       time.Duration
	ConnReused  bool
	TLSProtocol string
}

func (m *NetworkMetrics) Sum() time.Duration {
	return m.ConnWait + m.DNS + m.TCP + m.TLS + m.ReqHeaders + m.ReqBody + m.TTFB + m.Download
}

func firstNonEmpty(h http.Header, keys ...string) string {
	for _, k := range keys {
		if v := h.Get(k); v != "" {
			return v
		}
	}
	return "?"
}

type Segment struct {
	Text         string
	NoSpeechProb float64
	AvgLogProb   float64
	Start        float64
	End          float64
}

type Result struct {
	Text         string
	Shape        Shape
	AudioBytes   int64
	Metrics      *NetworkMetrics // nil when the provider does not trace
	RateLimit    string
	Duration     float64
	NoSpeechProb float64
	Segments     []Segment
}

// Transcriber turns one finished recording into text. Implementations are
// safe for concurrent use; overlapping jobs share one client.
type Transcriber interface {
	Name() string
	Model() string
	Transcribe(ctx context.Context, audioPath string) (Result, error)
}

type Config struct {
	Provider string
	APIKey   string
	Model    string
	Language string
	// BaseURL overrides the provider endpoint.
	BaseURL string
	Timeout time.Duration
}

func New(cfg Config) (Transcriber, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	switch strings.ToLower(cfg.Provider) {
	case "groq", "":
		return NewGroq(cfg), nil
	case "openai":
		return NewOpenAI(cfg), nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrConfiguration, cfg.Provider)
	}
}

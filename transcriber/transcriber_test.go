package transcriber

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNetworkMetricsSum(t *testing.T) {
	m := &NetworkMetrics{
		ConnWait:   10 * time.Millisecond,
		DNS:        20 * time.Millisecond,
		TCP:        30 * time.Millisecond,
		TLS:        40 * time.Millisecond,
		ReqHeaders: 5 * time.Millisecond,
		ReqBody:    15 * time.Millisecond,
		TTFB:       50 * time.Millisecond,
		Download:   25 * time.Millisecond,
	}
	got := m.Sum()
	want := 195 * time.Millisecond
	if got != want {
		t.Errorf("Sum() = %v, want %v", got, want)
	}
}

func TestFirstNonEmpty(t *testing.T) {
	h := http.Header{}
	h.Set("X-Rate-Limit", "100")

	if got := firstNonEmpty(h, "X-Missing", "X-Rate-Limit"); got != "100" {
		t.Errorf("got %q, want %q", got, "100")
	}
	if got := firstNonEmpty(h, "X-A", "X-B"); got != "?" {
		t.Errorf("got %q, want %q", got, "?")
	}
}

func TestExtractText(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantText  string
		wantShape Shape
	}{
		{"text field", `{"text":"hello","duration":1.2}`, "hello", ShapeText},
		{"empty text", `{"text":""}`, "", ShapeText},
		{"transcription key", `{"transcription":"hi there"}`, "hi there", ShapeMapping},
		{"transcript key", `{"transcript":"yo"}`, "yo", ShapeMapping},
		{"nested results", `{"results":[{"alternatives":[{"transcript":"deep"}]}]}`, "deep", ShapeMapping},
		{"non-string text", `{"text":null,"transcription":"fallback"}`, "fallback", ShapeMapping},
		{"json string", `"bare"`, "bare", ShapeRaw},
		{"plain text", "plain words\n", "plain words", ShapeRaw},
		{"unknown object", `{"foo":1}`, `{"foo":1}`, ShapeRaw},
		{"array", `[1,2]`, `[1,2]`, ShapeRaw},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, shape := extractText([]byte(tt.body))
			if text != tt.wantText || shape != tt.wantShape {
				t.Errorf("extractText(%s) = %q/%v, want %q/%v", tt.body, text, shape, tt.wantText, tt.wantShape)
			}
		})
	}
}

func TestParseKeyAndIndexes(t *testing.T) {
	key, idxs, err := parseKeyAndIndexes("results[0][2]")
	if err != nil {
		t.Fatal(err)
	}
	if key != "results" || len(idxs) != 2 || idxs[0] != 0 || idxs[1] != 2 {
		t.Errorf("got %q %v", key, idxs)
	}
	for _, bad := range []string{"", "a[", "a[x]", "a[0]b"} {
		if _, _, err := parseKeyAndIndexes(bad); err == nil {
			t.Errorf("parseKeyAndIndexes(%q) should fail", bad)
		}
	}
}

func TestServiceErrorIs(t *testing.T) {
	e400 := &ServiceError{Provider: "groq", StatusCode: 400, Body: "bad"}
	if !errors.Is(e400, ErrService) || errors.Is(e400, ErrServiceUnavailable) {
		t.Errorf("400 should be ErrService only")
	}
	for _, code := range []int{429, 503} {
		e := &ServiceError{StatusCode: code}
		if !errors.Is(e, ErrService) || !errors.Is(e, ErrServiceUnavailable) {
			t.Errorf("%d should match both sentinels", code)
		}
	}
	if e401 := (&ServiceError{StatusCode: 401}); !errors.Is(e401, ErrConfiguration) || errors.Is(e400, ErrConfiguration) {
		t.Errorf("only 401 should match ErrConfiguration")
	}
	long := &ServiceError{Provider: "groq", StatusCode: 500, Body: strings.Repeat("x", 500)}
	if len(long.Error()) > 260 {
		t.Errorf("error message not truncated: %d", len(long.Error()))
	}
}

func TestNewUnknownProvider(t *testing.T) {
	if _, err := New(Config{Provider: "deepgram"}); !errors.Is(err, ErrConfiguration) {
		t.Errorf("err = %v, want ErrConfiguration", err)
	}
	tr, err := New(Config{Provider: "OpenAI", APIKey: "k"})
	if err != nil || tr.Name() != "openai" || tr.Model() != DefaultModel {
		t.Errorf("New(openai) = %v, %v", tr, err)
	}
}

func writeAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "whispergroq-test.wav")
	if err := os.WriteFile(path, []byte("RIFFfakeaudio"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestGroqMissingKey(t *testing.T) {
	g := NewGroq(Config{})
	_, err := g.Transcribe(context.Background(), writeAudio(t))
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("err = %v, want ErrConfiguration", err)
	}
}

func TestGroqRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
			return
		}
		for field, want := range map[string]string{
			"model":           DefaultModel,
			"temperature":     "0",
			"response_format": "verbose_json",
			"language":        "en",
		} {
			if got := r.FormValue(field); got != want {
				t.Errorf("%s = %q, want %q", field, got, want)
			}
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			return
		}
		data, _ := io.ReadAll(f)
		if string(data) != "RIFFfakeaudio" || hdr.Filename != "whispergroq-test.wav" {
			t.Errorf("file = %q (%s)", data, hdr.Filename)
		}
		w.Header().Set("x-ratelimit-remaining-requests", "99")
		w.Header().Set("x-ratelimit-limit-requests", "100")
		io.WriteString(w, `{"text":" hello world","duration":1.5,"segments":[{"text":" hello world","no_speech_prob":0.02}]}`)
	}))
	defer srv.Close()

	g := NewGroq(Config{APIKey: "secret", Language: "en", BaseURL: srv.URL})
	res, err := g.Transcribe(context.Background(), writeAudio(t))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if res.Text != " hello world" || res.Shape != ShapeText {
		t.Errorf("result = %q/%v", res.Text, res.Shape)
	}
	if res.RateLimit != "99/100" || res.Duration != 1.5 || res.NoSpeechProb != 0.02 {
		t.Errorf("metadata = %q %v %v", res.RateLimit, res.Duration, res.NoSpeechProb)
	}
	if res.Metrics == nil || res.AudioBytes != int64(len("RIFFfakeaudio")) {
		t.Errorf("metrics missing: %+v", res)
	}
}

func TestGroqServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":{"message":"file too short"}}`)
	}))
	defer srv.Close()

	g := NewGroq(Config{APIKey: "k", BaseURL: srv.URL})
	_, err := g.Transcribe(context.Background(), writeAudio(t))
	var se *ServiceError
	if !errors.As(err, &se) || se.StatusCode != 400 || !strings.Contains(se.Body, "file too short") {
		t.Fatalf("err = %v, want ServiceError 400", err)
	}
}

func TestGroqUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	g := NewGroq(Config{APIKey: "k", BaseURL: url})
	_, err := g.Transcribe(context.Background(), writeAudio(t))
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Errorf("err = %v, want ErrServiceUnavailable", err)
	}
}

func TestGroqTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	g := NewGroq(Config{APIKey: "k", BaseURL: srv.URL, Timeout: 20 * time.Millisecond})
	_, err := g.Transcribe(context.Background(), writeAudio(t))
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Errorf("err = %v, want ErrServiceUnavailable", err)
	}
}

func TestOpenAIAgainstCompatibleServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/audio/transcriptions") {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Error(err)
			return
		}
		if got := r.FormValue("response_format"); got != "verbose_json" {
			t.Errorf("response_format = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"text":"from sdk","duration":2,"segments":[{"text":"from sdk","no_speech_prob":0.1}]}`)
	}))
	defer srv.Close()

	o := NewOpenAI(Config{APIKey: "k", BaseURL: srv.URL + "/v1"})
	res, err := o.Transcribe(context.Background(), writeAudio(t))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if res.Text != "from sdk" || res.NoSpeechProb != 0.1 {
		t.Errorf("res = %+v", res)
	}
}

func TestOpenAIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		io.WriteString(w, `{"error":{"message":"overloaded","type":"server_error"}}`)
	}))
	defer srv.Close()

	o := NewOpenAI(Config{APIKey: "k", BaseURL: srv.URL + "/v1"})
	_, err := o.Transcribe(context.Background(), writeAudio(t))
	if !errors.Is(err, ErrService) || !errors.Is(err, ErrServiceUnavailable) {
		t.Errorf("err = %v, want 503 ServiceError", err)
	}

	if _, err := NewOpenAI(Config{}).Transcribe(context.Background(), writeAudio(t)); !errors.Is(err, ErrConfiguration) {
		t.Errorf("missing key err = %v", err)
	}
}

func TestFakeTranscriber(t *testing.T) {
	path := writeAudio(t)
	f := NewFake("hi", nil)
	res, err := f.Transcribe(context.Background(), path)
	if err != nil || res.Text != "hi" {
		t.Fatalf("got %q, %v", res.Text, err)
	}
	if calls := f.Calls(); len(calls) != 1 || calls[0] != path {
		t.Errorf("calls = %v", calls)
	}

	boom := errors.New("boom")
	if _, err := NewFake("", boom).Transcribe(context.Background(), path); !errors.Is(err, boom) {
		t.Errorf("err = %v", err)
	}
}

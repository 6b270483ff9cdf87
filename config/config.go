package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"whispergroq/encoder"
	"whispergroq/hotkey"
)

const (
	DefaultHotkey   = "f9"
	DefaultProvider = "groq"
	DefaultModel    = "whisper-large-v3-turbo"
	DefaultTimeout  = 60 * time.Second
)

type Config struct {
	Provider  string
	GroqKey   string
	OpenAIKey string
	BaseURL   string
	Model     string
	Language  string
	Timeout   time.Duration

	Hotkey     string
	Device     string
	Setup      bool
	SampleRate int
	Channels   int
	Format     string
	TmpDir     string
	AutoPaste  bool

	UI      string
	Tray    bool
	LogPath string

	Doctor  bool
	Test    bool
	Fake    string
	WAV     string
	Version bool

	Args []string
}

// APIKey returns the credential of the selected provider.
func (c Config) APIKey() string {
	if c.Provider == "openai" {
		return c.OpenAIKey
	}
	return c.GroqKey
}

func (c Config) Binding() (hotkey.Binding, error) {
	return hotkey.Parse(c.Hotkey)
}

func (c Config) AudioFormat() encoder.Format {
	f, _ := encoder.ParseFormat(c.Format)
	return f
}

// LoadDotenv reads path into the environment without overriding variables
// that are already set. A missing file is not an error.
func LoadDotenv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("loading %s: %w", path, err)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return def
}

func envBool(key string, def bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return def
}

// Load layers defaults, environment and command-line flags, in that order.
// Call LoadDotenv first to include a .env file.
func Load(name string, args []string, output io.Writer) (Config, error) {
	var c Config
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	if output != nil {
		flags.SetOutput(output)
	}

	flags.StringVar(&c.Provider, "provider", envOr("STT_PROVIDER", DefaultProvider), "Transcription provider: groq or openai")
	flags.StringVar(&c.Model, "model", envOr("STT_MODEL", DefaultModel), "Transcription model")
	flags.StringVar(&c.Language, "lang", os.Getenv("STT_LANGUAGE"), "Language code (e.g. en, de). Empty = auto-detect")
	flags.StringVar(&c.BaseURL, "baseurl", os.Getenv("STT_BASE_URL"), "Override the provider endpoint")
	flags.DurationVar(&c.Timeout, "timeout", envDuration("STT_TIMEOUT", DefaultTimeout), "Transcription request timeout")
	flags.StringVar(&c.Hotkey, "hotkey", envOr("HOTKEY", DefaultHotkey), "Push-to-talk key, e.g. f9 or ctrl+shift+space")
	flags.StringVar(&c.Device, "device", os.Getenv("MIC_DEVICE"), "Use named microphone device")
	flags.BoolVar(&c.Setup, "setup", false, "Select microphone device interactively")
	flags.IntVar(&c.SampleRate, "rate", envInt("SAMPLE_RATE", encoder.SampleRate), "Capture sample rate in Hz")
	flags.IntVar(&c.Channels, "channels", envInt("CHANNELS", encoder.Channels), "Capture channel count (1 or 2)")
	flags.StringVar(&c.Format, "format", envOr("AUDIO_FORMAT", string(encoder.FormatWAV)), "Recording file format: wav or flac")
	flags.StringVar(&c.TmpDir, "tmpdir", os.Getenv("WHISPERGROQ_TMPDIR"), "Directory for transient recordings (default: system temp)")
	flags.BoolVar(&c.AutoPaste, "autopaste", envBool("AUTOPASTE", true), "Paste into the focused window after transcription")
	flags.StringVar(&c.UI, "ui", envOr("WHISPERGROQ_UI", "tui"), "Status surface: tui, gui or none")
	flags.BoolVar(&c.Tray, "tray", envBool("WHISPERGROQ_TRAY", false), "Show a system tray icon")
	flags.StringVar(&c.LogPath, "logpath", "", "Log directory path (default: OS-specific location)")
	flags.BoolVar(&c.Doctor, "doctor", false, "Run system diagnostics and exit")
	flags.BoolVar(&c.Test, "test", false, "Test mode (headless, stdin-driven)")
	flags.StringVar(&c.Fake, "fake", "", "Use a fake transcriber that returns this text")
	flags.StringVar(&c.WAV, "wav", "", "Feed this WAV file instead of the microphone (test mode)")
	flags.BoolVar(&c.Version, "version", false, "Print version and exit")

	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}
	c.Args = flags.Args()
	c.GroqKey = os.Getenv("GROQ_API_KEY")
	c.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	c.UI = strings.ToLower(strings.TrimSpace(c.UI))
	return c, nil
}

// Validate rejects settings that would fail later in a less obvious way.
// Missing credentials are not an error here; they surface per request.
func (c Config) Validate() error {
	var errs []error
	switch c.Provider {
	case "groq", "openai":
	default:
		errs = append(errs, fmt.Errorf("unknown provider %q (use groq or openai)", c.Provider))
	}
	if _, err := encoder.ParseFormat(c.Format); err != nil {
		errs = append(errs, err)
	}
	switch c.UI {
	case "tui", "gui", "none":
	default:
		errs = append(errs, fmt.Errorf("unknown ui %q (use tui, gui or none)", c.UI))
	}
	if c.SampleRate < 8000 || c.SampleRate > 48000 {
		errs = append(errs, fmt.Errorf("sample rate %d out of range 8000-48000", c.SampleRate))
	}
	if c.Channels != 1 && c.Channels != 2 {
		errs = append(errs, fmt.Errorf("channels must be 1 or 2, got %d", c.Channels))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive"))
	}
	if _, err := c.Binding(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

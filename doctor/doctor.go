package doctor

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"whispergroq/audio"
	"whispergroq/clipboard"
	"whispergroq/hotkey"
	"whispergroq/transcriber"
)

const (
	micDuration    = 1500 * time.Millisecond
	hotkeyWait     = 10 * time.Second
	clipboardLimit = 3 * time.Second
)

type Options struct {
	Provider    string
	APIKey      string
	Binding     hotkey.Binding
	Recorder    *audio.Recorder
	Transcriber transcriber.Transcriber
	// Interactive adds the checks that need a human: pressing the hotkey
	// and sending a real recording to the provider.
	Interactive bool
	Out         io.Writer
}

type check struct {
	name string
	run  func() (string, error)
}

// Run executes the diagnostic checks and returns an exit code (0=all pass, 1=any fail).
func Run(opts Options) int {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Interactive {
		saveTerminal()
		setupInterruptHandler()
	}

	fmt.Fprintln(opts.Out, "whispergroq doctor - system diagnostics")
	fmt.Fprintln(opts.Out, "=======================================")
	return runChecks(opts.Out, buildChecks(opts))
}

func buildChecks(opts Options) []check {
	var mic micResult
	checks := []check{
		{"Credentials", func() (string, error) { return checkCredentials(opts.Provider, opts.APIKey) }},
		{"Microphone", func() (string, error) {
			var err error
			mic, err = checkMicrophone(opts.Recorder, micDuration)
			return mic.summary(), err
		}},
	}
	if opts.Interactive && opts.Transcriber != nil {
		checks = append(checks, check{"Transcription", func() (string, error) {
			return checkTranscription(opts.Transcriber, mic.path)
		}})
	}
	checks = append(checks,
		check{"Clipboard", checkClipboard},
		check{"Paste keystroke", clipboard.Verify},
		check{"Hotkey", func() (string, error) { return hotkey.Diagnose(opts.Binding) }},
	)
	if opts.Interactive {
		checks = append(checks, check{"Hotkey press", func() (string, error) {
			fmt.Fprintf(opts.Out, "  Press %s...\n", opts.Binding)
			return checkHotkeyPress(opts.Binding, hotkeyWait)
		}})
	}
	checks = append(checks, check{"Cleanup", func() (string, error) {
		if mic.path != "" {
			os.Remove(mic.path)
		}
		return "recording removed", nil
	}})
	return checks
}

func runChecks(out io.Writer, checks []check) int {
	failed := 0
	for i, c := range checks {
		fmt.Fprintf(out, "\n[%d/%d] %s\n", i+1, len(checks), c.name)
		msg, err := c.run()
		if err != nil {
			failed++
			fmt.Fprintf(out, "  FAIL: %v\n", err)
			continue
		}
		fmt.Fprintf(out, "  PASS: %s\n", msg)
	}

	fmt.Fprintln(out)
	if failed > 0 {
		fmt.Fprintf(out, "%d check(s) failed. See details above.\n", failed)
		return 1
	}
	fmt.Fprintln(out, "All checks passed!")
	return 0
}

func checkCredentials(provider, key string) (string, error) {
	if key == "" {
		env := "GROQ_API_KEY"
		if provider == "openai" {
			env = "OPENAI_API_KEY"
		}
		return "", fmt.Errorf("%s is not set (export it or add it to .env)", env)
	}
	return fmt.Sprintf("%s key present (%d chars)", provider, len(key)), nil
}

type micResult struct {
	path   string
	device string
	dur    time.Duration
	size   int64
}

func (m micResult) summary() string {
	if m.path == "" {
		return ""
	}
	name := m.device
	if audio.IsBluetooth(name) {
		name += " (bluetooth: lower audio quality)"
	}
	return fmt.Sprintf("captured %.1fs from %s (%.1f KB)", m.dur.Seconds(), name, float64(m.size)/1024)
}

func checkMicrophone(rec *audio.Recorder, d time.Duration) (micResult, error) {
	if rec == nil {
		return micResult{}, fmt.Errorf("no audio backend")
	}
	s := rec.Start()
	if err := s.WaitStarted(time.Second); err != nil {
		s.Abort()
		return micResult{}, err
	}
	time.Sleep(d)
	dur := s.Duration()
	path, err := s.Stop("")
	if err != nil {
		return micResult{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return micResult{}, err
	}
	return micResult{path: path, device: s.DeviceName(), dur: dur, size: info.Size()}, nil
}

func checkTranscription(tr transcriber.Transcriber, path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("skipped: no recording")
	}
	ctx, cancel := context.WithTimeout(context.Background(), transcriber.DefaultTimeout)
	defer cancel()
	res, err := tr.Transcribe(ctx, path)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s returned %q", tr.Name(), tr.Model(), res.Text), nil
}

func checkClipboard() (string, error) {
	testStr := fmt.Sprintf("whispergroq-doctor-%d", time.Now().UnixNano())

	type cbResult struct {
		readback string
		err      error
	}
	ch := make(chan cbResult, 1)
	go func() {
		if err := clipboard.Copy(testStr); err != nil {
			ch <- cbResult{err: fmt.Errorf("clipboard write failed: %w", err)}
			return
		}
		got, err := clipboard.Read()
		if err != nil {
			err = fmt.Errorf("clipboard read failed: %w", err)
		}
		ch <- cbResult{readback: got, err: err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			return "", res.err
		}
		if res.readback != testStr {
			return "", fmt.Errorf("clipboard mismatch: wrote %q, got %q", testStr, res.readback)
		}
		return "clipboard write/read verified", nil
	case <-time.After(clipboardLimit):
		return "", fmt.Errorf("clipboard timed out (clipboard tool hung or no display?)")
	}
}

func checkHotkeyPress(b hotkey.Binding, wait time.Duration) (string, error) {
	hk, err := hotkey.New(b)
	if err != nil {
		return "", err
	}
	if err := hk.Register(); err != nil {
		return "", fmt.Errorf("could not register hotkey: %w", err)
	}
	defer hk.Unregister()
	msg, err := waitPress(hk, wait)
	// The key press may leave the terminal in raw mode.
	resetTerminal()
	return msg, err
}

func waitPress(hk hotkey.Hotkey, wait time.Duration) (string, error) {
	select {
	case <-hk.Keydown():
		select {
		case <-hk.Keyup():
		case <-time.After(5 * time.Second):
		}
		return "hotkey detected", nil
	case <-time.After(wait):
		return "", fmt.Errorf("timeout waiting for hotkey")
	}
}

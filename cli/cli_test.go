package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/yhkl-dev/zencli/domain"
	"github.com/yhkl-dev/zencli/session"
)

// executeCommand runs a cobra command with args and returns captured output
func executeCommand(t *testing.T, root *cobra.Command, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	cfgFile, backend, logLevel = "", "", ""

	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "zencli" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "zencli")
	}

	cmdMap := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		cmdMap[cmd.Name()] = true
	}
	for _, expected := range []string{"list", "play"} {
		if !cmdMap[expected] {
			t.Errorf("expected subcommand %q not found", expected)
		}
	}
}

func TestListBuiltin(t *testing.T) {
	out, err := executeCommand(t, rootCmd, "list")
	if err != nil {
		t.Fatalf("list failed: %v\n%s", err, out)
	}
	for _, want := range []string{"ID", "TRACK", "Relaxing Waves (5 min)", "10 min", "Deep Silence (3 min)"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}
}

func TestListFromConfig(t *testing.T) {
	path := writeConfig(t, `
[[tracks]]
id = "rain"
name = "Soft Rain"
uri = "rain.mp3"
duration = "2m"
`)

	out, err := executeCommand(t, rootCmd, "list", "--config", path)
	if err != nil {
		t.Fatalf("list failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "rain") || !strings.Contains(out, "Soft Rain") || !strings.Contains(out, "2 min") {
		t.Errorf("unexpected list output:\n%s", out)
	}
	if strings.Contains(out, "Relaxing Waves") {
		t.Errorf("configured tracks should replace the builtin ones:\n%s", out)
	}
}

func TestListRejectsBadCatalog(t *testing.T) {
	path := writeConfig(t, `
[[tracks]]
id = "rain"
uri = "rain.mp3"
duration = "soon"
`)
	if _, err := executeCommand(t, rootCmd, "list", "-c", path); err == nil {
		t.Fatal("expected error for an unparseable duration")
	}
}

func TestListRejectsBadBackendFlag(t *testing.T) {
	if _, err := executeCommand(t, rootCmd, "list", "--backend", "winamp"); err == nil {
		t.Fatal("expected error for an unknown backend")
	}
}

func TestPlayUnknownTrack(t *testing.T) {
	_, err := executeCommand(t, rootCmd, "play", "nope")
	if err == nil || !strings.Contains(err.Error(), `unknown track "nope"`) {
		t.Fatalf("play nope: err = %v", err)
	}
}

func TestPlayRequiresTrackID(t *testing.T) {
	if _, err := executeCommand(t, rootCmd, "play"); err == nil {
		t.Fatal("expected an argument error")
	}
}

func TestLinePrinterNonInteractive(t *testing.T) {
	var buf bytes.Buffer
	p := newLinePrinter(&buf)
	track := &domain.Track{ID: "a", Name: "Waves", DurationSeconds: 3}

	p.render(session.Snapshot{State: session.StateLoading, Track: track, RemainingSeconds: 3})
	p.render(session.Snapshot{State: session.StateRunning, Track: track, RemainingSeconds: 3})
	p.render(session.Snapshot{State: session.StateRunning, Track: track, RemainingSeconds: 2})
	p.render(session.Snapshot{State: session.StateFinished, Track: track})
	p.finish("Waves complete")

	want := "00:03 LOADING... Waves\n00:03 MEDITATING Waves\n00:00 COMPLETE Waves\nWaves complete\n"
	if got := buf.String(); got != want {
		t.Fatalf("output =\n%q\nwant\n%q", got, want)
	}
}

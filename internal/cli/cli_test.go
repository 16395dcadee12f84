package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/CageChen/nativefs/internal/config"
	"github.com/CageChen/nativefs/internal/logging"
	"github.com/CageChen/nativefs/internal/nativefs"
	"github.com/CageChen/nativefs/internal/nativefs/nativefstest"
)

// run executes the root command against m with an empty config file.
func run(t *testing.T, m *nativefs.Module, args ...string) (string, error) {
	t.Helper()

	cfgFile := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgFile, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	orig := moduleFor
	moduleFor = func(*config.Config) (*nativefs.Module, error) { return m, nil }
	t.Cleanup(func() { moduleFor = orig })

	statusJSON, doctorHTML, requireNative, versionJSON, debug = false, false, false, false, false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--config", cfgFile))
	err := rootCmd.Execute()
	return out.String(), err
}

func sampleModule(t *testing.T) *nativefs.Module {
	t.Helper()
	lib := nativefstest.NewMemLibrary()
	lib.AddDir(`C:\work`)
	lib.AddDir(`C:\work\src`)
	lib.AddFile(`C:\work\big.bin`, 1234567, nativefs.AttrReadOnly)
	lib.AddSymlink(`C:\work\link`, `C:\work\big.bin`)
	return nativefstest.LoadedModule(t, lib)
}

func TestStatus(t *testing.T) {
	out, err := run(t, sampleModule(t), "status")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Available: yes (") || !strings.Contains(out, "Searched:  3 candidate(s)") {
		t.Errorf("unexpected output:\n%s", out)
	}

	out, err = run(t, nativefstest.UnavailableModule(t), "status", "--json")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `"available": false`) || !strings.Contains(out, `"reason": `) {
		t.Errorf("unexpected json:\n%s", out)
	}
}

func TestDoctor(t *testing.T) {
	out, err := run(t, sampleModule(t), "doctor")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "# Native filesystem diagnostics") {
		t.Errorf("unexpected markdown:\n%s", out)
	}

	out, err = run(t, sampleModule(t), "doctor", "--html")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "<h1") {
		t.Errorf("unexpected html:\n%s", out)
	}
}

func TestNativeInfo(t *testing.T) {
	out, err := run(t, sampleModule(t), "info", "--native", "C:/work/big.bin")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Name:     big.bin", "Size:     1,234,567 bytes", "Attrs:    readonly", "Backend:  native"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestNativeListAndReadlink(t *testing.T) {
	m := sampleModule(t)

	out, err := run(t, m, "ls", `C:\work`)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "src/") || !strings.Contains(out, "3 entries, 1,234,567 bytes (native)") {
		t.Errorf("unexpected listing:\n%s", out)
	}

	out, err = run(t, m, "readlink", `C:\work\link`)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != `C:\work\big.bin` {
		t.Errorf("readlink = %q", out)
	}
}

func TestRequireNative(t *testing.T) {
	_, err := run(t, nativefstest.UnavailableModule(t), "ls", "--native", t.TempDir())
	if !errors.Is(err, nativefs.ErrNotLoaded) {
		t.Errorf("expected ErrNotLoaded, got %v", err)
	}
}

func TestPortableFallback(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, nativefstest.UnavailableModule(t), "info", filepath.Join(dir, "a.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Size:     5 bytes") || !strings.Contains(out, "Backend:  local") {
		t.Errorf("unexpected output:\n%s", out)
	}

	out, err = run(t, nativefstest.UnavailableModule(t), "ls", dir)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "1 entries, 5 bytes (local)") {
		t.Errorf("unexpected listing:\n%s", out)
	}
}

func TestVersion(t *testing.T) {
	buildVersion = "1.2.3"
	out, err := run(t, nil, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "nativefs version 1.2.3") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestEnvDebugOverridesConfigLevel(t *testing.T) {
	logger := logging.GetLogger()
	orig := logger.Level()
	t.Cleanup(func() { logger.SetLevel(orig) })
	debug = false

	t.Setenv("LOG_LEVEL", "")
	t.Setenv("NATIVEFS_DEBUG", "1")
	configureLogging(config.DefaultConfig())
	if !logger.IsDebugEnabled() {
		t.Errorf("NATIVEFS_DEBUG must keep debug logging on, level = %s", logger.Level())
	}

	t.Setenv("LOG_LEVEL", "trace")
	configureLogging(config.DefaultConfig())
	if logger.Level() != logging.LevelTrace {
		t.Errorf("level = %s, want TRACE", logger.Level())
	}

	t.Setenv("LOG_LEVEL", "")
	t.Setenv("NATIVEFS_DEBUG", "")
	cfg := config.DefaultConfig()
	cfg.LogLevel = "warn"
	configureLogging(cfg)
	if logger.Level() != logging.LevelWarn {
		t.Errorf("level = %s, want WARN from config", logger.Level())
	}
}

package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestResolveLogFilePathDefaultDir(t *testing.T) {
	tmpDir := t.TempDir()
	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("get wd failed: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(oldWD)
	})
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}

	got, err := resolveLogFilePath(Options{})
	if err != nil {
		t.Fatalf("resolve default log path failed: %v", err)
	}

	realTmpDir, err := filepath.EvalSymlinks(tmpDir)
	if err != nil {
		t.Fatalf("resolve tmp dir symlink failed: %v", err)
	}
	realGot, err := filepath.EvalSymlinks(filepath.Dir(got))
	if err != nil {
		t.Fatalf("resolve got dir symlink failed: %v", err)
	}
	if want := filepath.Join(realTmpDir, defaultLogDirName); realGot != want {
		t.Fatalf("unexpected log dir: got=%s want=%s", realGot, want)
	}
	if filepath.Base(got) != defaultLogFilename {
		t.Fatalf("unexpected log filename: %s", filepath.Base(got))
	}
}

func TestNewReleaseWritesJSONToConfiguredFile(t *testing.T) {
	tmpDir := t.TempDir()
	log := New("release", Options{Dir: tmpDir, Filename: "release.log"})
	log.Info("cart_snapshot_saved")
	_ = log.Sync()

	content, err := os.ReadFile(filepath.Join(tmpDir, "release.log"))
	if err != nil {
		t.Fatalf("read release log failed: %v", err)
	}
	text := string(content)
	if !strings.Contains(text, "cart_snapshot_saved") {
		t.Fatalf("expected log content to contain message, got=%s", text)
	}
	if !strings.Contains(text, `"message"`) {
		t.Fatalf("expected json encoded line with message key, got=%s", text)
	}
	if !strings.Contains(text, `"app":"freshcart"`) {
		t.Fatalf("expected app field on release lines, got=%s", text)
	}
}

func TestNewReleaseFiltersBelowConfiguredLevel(t *testing.T) {
	tmpDir := t.TempDir()
	log := New("release", Options{Dir: tmpDir, Filename: "warn.log", Level: "WARN"})
	log.Info("cart_view_built")
	log.Warn("catalog_cache_get_failed")
	_ = log.Sync()

	content, err := os.ReadFile(filepath.Join(tmpDir, "warn.log"))
	if err != nil {
		t.Fatalf("read warn log failed: %v", err)
	}
	text := string(content)
	if strings.Contains(text, "cart_view_built") {
		t.Fatalf("info line should be filtered at warn level, got=%s", text)
	}
	if !strings.Contains(text, "catalog_cache_get_failed") {
		t.Fatalf("warn line should be written, got=%s", text)
	}
}

func TestResolveLevel(t *testing.T) {
	if got := resolveLevel(true, "").Level(); got != zapcore.DebugLevel {
		t.Fatalf("debug mode default want debug got %s", got)
	}
	if got := resolveLevel(false, "").Level(); got != zapcore.InfoLevel {
		t.Fatalf("release mode default want info got %s", got)
	}
	if got := resolveLevel(false, "error").Level(); got != zapcore.ErrorLevel {
		t.Fatalf("explicit level want error got %s", got)
	}
	if got := resolveLevel(false, "loud").Level(); got != zapcore.InfoLevel {
		t.Fatalf("unknown level should fall back to info, got %s", got)
	}
}

func TestNewDebugDoesNotWriteFile(t *testing.T) {
	tmpDir := t.TempDir()
	log := New(" DEBUG ", Options{Dir: tmpDir, Filename: "debug.log"})
	log.Info("debug-log-test")
	_ = log.Sync()

	if _, err := os.Stat(filepath.Join(tmpDir, "debug.log")); !os.IsNotExist(err) {
		t.Fatalf("debug mode should not create log file")
	}
}

func TestNormalizePositiveInt(t *testing.T) {
	if got := normalizePositiveInt(0, 7); got != 7 {
		t.Fatalf("zero should fall back, got %d", got)
	}
	if got := normalizePositiveInt(-3, 7); got != 7 {
		t.Fatalf("negative should fall back, got %d", got)
	}
	if got := normalizePositiveInt(3, 7); got != 3 {
		t.Fatalf("positive should be kept, got %d", got)
	}
}

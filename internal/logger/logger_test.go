package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit(t *testing.T) {
	tempDir := t.TempDir()
	configDir := filepath.Join(tempDir, "config")

	err := Init(Config{
		Debug:     false,
		ConfigDir: configDir,
	})
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	logDir := filepath.Join(configDir, "logs")
	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		t.Errorf("Log directory was not created: %s", logDir)
	}

	if Logger == nil {
		t.Error("Logger is nil after initialization")
	}

	Debug("Test debug message")
	Info("Test info message")
	Warn("Test warning message")
	Error("Test error message")
}

func TestInitDebugWritesToFile(t *testing.T) {
	tempDir := t.TempDir()

	if err := Init(Config{Debug: true, Quiet: true, ConfigDir: tempDir}); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	Debug("side effect failed", "component", "ledger")

	data, err := os.ReadFile(filepath.Join(tempDir, "logs", "levelup.log"))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "side effect failed") {
		t.Errorf("log file does not contain debug message: %q", string(data))
	}
}

func TestLogFunctionsWithNilLogger(t *testing.T) {
	saved := Logger
	Logger = nil
	defer func() { Logger = saved }()

	Debug("debug")
	Info("info")
	Warn("warn")
	Error("error")
}

func TestComponentTagsLines(t *testing.T) {
	tempDir := t.TempDir()
	if err := Init(Config{Debug: true, Quiet: true, ConfigDir: tempDir}); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	For("combat").With("user", "u1").Warn("Boss defeated", "boss", "slime")

	data, err := os.ReadFile(Path(tempDir))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	line := string(data)
	for _, want := range []string{"Boss defeated", "component=combat", "user=u1", "boss=slime"} {
		if !strings.Contains(line, want) {
			t.Errorf("log line %q is missing %q", line, want)
		}
	}
}

func TestComponentBeforeInit(t *testing.T) {
	saved := Logger
	Logger = nil
	defer func() { Logger = saved }()

	c := For("early")
	c.Info("dropped")
	c.With("k", "v").Error("dropped")
}

func TestLevelOverride(t *testing.T) {
	tempDir := t.TempDir()
	if err := Init(Config{Level: "error", ConfigDir: tempDir}); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	Info("quiet info")
	Error("loud error")

	data, err := os.ReadFile(Path(tempDir))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if strings.Contains(string(data), "quiet info") {
		t.Error("info line written at error level")
	}
	if !strings.Contains(string(data), "loud error") {
		t.Error("error line missing")
	}
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	if err := Init(Config{Level: "loud", ConfigDir: t.TempDir()}); err == nil {
		t.Error("expected an error for an unknown level")
	}
}

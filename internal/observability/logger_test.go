package observability

import "testing"

func TestBuildLoggerValidCombinations(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		for _, format := range []string{"console", "json"} {
			logger, err := BuildLogger(level, format)
			if err != nil {
				t.Fatalf("BuildLogger(%q, %q): %v", level, format, err)
			}
			if logger == nil {
				t.Fatalf("BuildLogger(%q, %q) returned a nil logger", level, format)
			}
			_ = logger.Sync()
		}
	}
}

func TestBuildLoggerInvalidLevelErrors(t *testing.T) {
	if _, err := BuildLogger("verbose", "console"); err == nil {
		t.Fatal("expected an error for an unrecognized log level")
	}
}

package logging

import "testing"

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"", LevelInfo},
		{"nonsense", LevelInfo},
	}
	for _, tc := range cases {
		if got := ParseLevel(tc.in); got != tc.want {
			t.Errorf("ParseLevel(%q): got %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if ParseFormat("text") != FormatText {
		t.Error("ParseFormat(text) should be FormatText")
	}
	if ParseFormat("json") != FormatJSON || ParseFormat("") != FormatJSON {
		t.Error("ParseFormat should default to JSON")
	}
}

func TestInitLogger(t *testing.T) {
	for _, level := range []Level{LevelDebug, LevelInfo, LevelWarn, LevelError} {
		for _, format := range []Format{FormatJSON, FormatText} {
			InitLogger(level, format)
			if GetLogger() == nil {
				t.Fatalf("logger should be set after InitLogger(%v, %v)", level, format)
			}
		}
	}
	// Helpers must not panic on the reinitialized logger.
	Debug("debug message", "k", "v")
	Info("info message")
	Warn("warn message")
	Error("error message")
	IndexBuild("book-1", 120, 0)
	IngestBatch("book-1", 3, 1, 0)
	MatchRun("book-1", 2, 5, 1)
}

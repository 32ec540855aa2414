package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// decode parses the single JSON line written by a zerolog logger.
func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line %q is not JSON: %v", buf.String(), err)
	}
	return entry
}

func TestZerologAdapter_Fields(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		field Field
		want  any
	}{
		{"string", String("moltype", "dna"), "dna"},
		{"int", Int("sequences", 12), float64(12)},
		{"uint64", Uint64("heap_alloc", 1<<40), float64(1 << 40)},
		{"float64", Float64("seconds", 0.25), 0.25},
		{"bool", Field{Key: "quiet", Value: true}, true},
		{"error", Field{Key: "cause", Value: errors.New("singular")}, "singular"},
		{"other", Field{Key: "pair", Value: [2]string{"human", "chimp"}}, []any{"human", "chimp"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			NewLogger(&buf, "test").Info("alignment loaded", tt.field)
			entry := decode(t, &buf)

			got, ok := entry[tt.field.Key]
			if !ok {
				t.Fatalf("field %q missing from %v", tt.field.Key, entry)
			}
			gotJSON, _ := json.Marshal(got)
			wantJSON, _ := json.Marshal(tt.want)
			if string(gotJSON) != string(wantJSON) {
				t.Errorf("%s = %s, want %s", tt.field.Key, gotJSON, wantJSON)
			}
		})
	}
}

func TestNewLogger_Envelope(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	NewLogger(&buf, "server").Info("serving metrics", String("addr", "127.0.0.1:9090"))
	entry := decode(t, &buf)

	for key, want := range map[string]any{
		"level":     "info",
		"component": "server",
		"message":   "serving metrics",
		"addr":      "127.0.0.1:9090",
	} {
		if entry[key] != want {
			t.Errorf("%s = %v, want %v", key, entry[key], want)
		}
	}
	if _, ok := entry["time"]; !ok {
		t.Error("entry has no timestamp")
	}
}

func TestZerologAdapter_Levels(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := NewZerologAdapter(zerolog.New(&buf).Level(zerolog.InfoLevel))

	logger.Debug("rejected metrics request", String("method", "POST"))
	if buf.Len() != 0 {
		t.Fatalf("debug entry written at info level: %s", buf.String())
	}

	logger.Error("metrics server stopped", errors.New("bind: address in use"), String("addr", ":9090"))
	entry := decode(t, &buf)
	if entry["level"] != "error" || entry["error"] != "bind: address in use" || entry["addr"] != ":9090" {
		t.Errorf("unexpected error entry %v", entry)
	}
}

func TestZerologAdapter_PrintfPrintln(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := NewZerologAdapter(zerolog.New(&buf))

	logger.Printf("%d pairs on %d ranks", 66, 3)
	if !strings.Contains(buf.String(), `"message":"66 pairs on 3 ranks"`) {
		t.Errorf("Printf output %s", buf.String())
	}

	buf.Reset()
	logger.Println("rank", 2, "done")
	if !strings.Contains(buf.String(), `"message":"rank 2 done"`) {
		t.Errorf("Println output %s", buf.String())
	}
}

// TestZerologAdapter_SharesEngineLogger checks that the zerolog.Logger
// handed to the engine writes to the same sink with the same context.
func TestZerologAdapter_SharesEngineLogger(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	zl := NewLogger(&buf, "distcalc").Zerolog()
	zl.Debug().Str("a", "chimp").Str("b", "human").Err(errors.New("singular substitution matrix (det=0)")).Msg("pair undefined")

	entry := decode(t, &buf)
	if entry["component"] != "distcalc" || entry["a"] != "chimp" || entry["b"] != "human" {
		t.Errorf("unexpected entry %v", entry)
	}
	if entry["error"] != "singular substitution matrix (det=0)" {
		t.Errorf("error = %v", entry["error"])
	}
}

func TestLoggerInterface(t *testing.T) {
	t.Parallel()
	var _ Logger = NewLogger(&bytes.Buffer{}, "test")
}

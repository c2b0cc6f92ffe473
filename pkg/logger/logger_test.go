package logger

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"threadgrab/pkg/config"
)

func newBufferLogger(buf *bytes.Buffer, level zerolog.Level) *zerologLogger {
	zlog := zerolog.New(buf).Level(level).With().Timestamp().Logger()
	return &zerologLogger{
		logger: &zlog,
		fields: make(map[string]interface{}),
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{
			name:    "valid config with info level",
			cfg:     &config.LoggingConfig{Level: "info"},
			wantErr: false,
		},
		{
			name:    "valid config with trace level",
			cfg:     &config.LoggingConfig{Level: "trace"},
			wantErr: false,
		},
		{
			name:    "invalid log level",
			cfg:     &config.LoggingConfig{Level: "invalid"},
			wantErr: true,
		},
		{
			name: "config with file output",
			cfg: &config.LoggingConfig{
				Level: "info",
				File:  filepath.Join(t.TempDir(), "logs", "threadgrab.log"),
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := NewWithWriter(tt.cfg, &buf)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewWithWriter() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && logger == nil {
				t.Error("NewWithWriter() returned nil logger")
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"trace", zerolog.TraceLevel, false},
		{"debug", zerolog.DebugLevel, false},
		{"DEBUG", zerolog.DebugLevel, false},
		{"info", zerolog.InfoLevel, false},
		{"", zerolog.InfoLevel, false},
		{"warn", zerolog.WarnLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"invalid", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			level, err := parseLogLevel(tt.level)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseLogLevel() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if level != tt.expected {
				t.Errorf("parseLogLevel() = %v, want %v", level, tt.expected)
			}
		})
	}
}

func TestEffectiveLevel(t *testing.T) {
	tests := []struct {
		level     string
		verbosity int
		expected  zerolog.Level
	}{
		{"info", 0, zerolog.InfoLevel},
		{"info", 1, zerolog.DebugLevel},
		{"info", 2, zerolog.TraceLevel},
		{"info", 5, zerolog.TraceLevel},
		{"warn", 1, zerolog.DebugLevel},
		{"trace", 1, zerolog.TraceLevel},
		{"disabled", 2, zerolog.Disabled},
	}

	for _, tt := range tests {
		got, err := EffectiveLevel(tt.level, tt.verbosity)
		if err != nil {
			t.Fatalf("EffectiveLevel(%q, %d) unexpected error: %v", tt.level, tt.verbosity, err)
		}
		if got != tt.expected {
			t.Errorf("EffectiveLevel(%q, %d) = %v, want %v", tt.level, tt.verbosity, got, tt.expected)
		}
	}
}

func TestVerbosityEnablesDebugOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter(&config.LoggingConfig{Level: "info", Verbosity: 1}, &buf)
	if err != nil {
		t.Fatalf("NewWithWriter() error = %v", err)
	}

	logger.Trace("hidden trace")
	logger.Debug("visible debug")

	output := buf.String()
	if strings.Contains(output, "hidden trace") {
		t.Error("Trace message should be filtered at -v")
	}
	if !strings.Contains(output, "visible debug") {
		t.Error("Debug message should be shown at -v")
	}
}

func TestLoggerMethods(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, zerolog.TraceLevel)

	cases := map[string]func(string){
		"trace message": logger.Trace,
		"debug message": logger.Debug,
		"info message":  logger.Info,
		"warn message":  logger.Warn,
		"error message": logger.Error,
	}

	for msg, fn := range cases {
		t.Run(msg, func(t *testing.T) {
			buf.Reset()
			fn(msg)
			if !strings.Contains(buf.String(), msg) {
				t.Errorf("%q not found in output", msg)
			}
		})
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, zerolog.InfoLevel)

	if logger.WithError(nil) != logger {
		t.Error("WithError(nil) should return the same logger")
	}

	logger.WithError(&testError{msg: "connection reset"}).Error("fetch failed")

	output := buf.String()
	if !strings.Contains(output, "fetch failed") {
		t.Error("Message not found in output")
	}
	if !strings.Contains(output, "connection reset") {
		t.Error("Error message not found in output")
	}
}

func TestStructuredLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, zerolog.InfoLevel)

	logger.InfoWithFields("post processed", map[string]interface{}{
		"post_id": "1629307668568475652",
		"depth":   0,
		"video":   true,
	})

	output := buf.String()
	for _, want := range []string{
		"post processed",
		`"post_id":"1629307668568475652"`,
		`"depth":0`,
		`"video":true`,
	} {
		if !strings.Contains(output, want) {
			t.Errorf("%s not found in output", want)
		}
	}
}

func TestFieldTypes(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, zerolog.InfoLevel)

	fields := map[string]interface{}{
		"string":   "test",
		"int":      123,
		"int64":    int64(456),
		"float":    3.14,
		"bool":     true,
		"time":     time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		"duration": time.Second * 5,
		"strings":  []string{"a", "b", "c"},
		"ints":     []int{1, 2, 3},
		"cause":    &testError{msg: "boom"},
		"custom":   struct{ Name string }{Name: "test"},
	}

	logger.WithFields(fields).Info("test all types")

	output := buf.String()
	if !strings.Contains(output, "test all types") {
		t.Error("Message not found in output")
	}
	if !strings.Contains(output, `"cause":"boom"`) {
		t.Error("Error field not keyed by its name")
	}
}

func TestFieldChaining(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, zerolog.InfoLevel)

	base := logger.WithField("session", "abc")
	base.
		WithField("post_id", "42").
		WithFields(map[string]interface{}{"attempt": 1}).
		Info("chained fields")
	base.Info("base only")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	for _, want := range []string{`"session":"abc"`, `"post_id":"42"`, `"attempt":1`} {
		if !strings.Contains(lines[0], want) {
			t.Errorf("%s not found in chained line", want)
		}
	}
	if strings.Contains(lines[1], "post_id") {
		t.Error("child fields leaked into the parent logger")
	}
}

func TestHelpers(t *testing.T) {
	tl := NewTestLogger()

	LogRequest(tl, "GET", "http://api/1.1/statuses/show.json", 404, 12*time.Millisecond)
	LogDownload(tl, "42", "/tmp/42.mp4", "", time.Second)
	LogDownload(tl, "43", "/tmp/43.mp4", "timeout", time.Second)
	LogComponentStart(tl, "walker", map[string]interface{}{"limit": 3})
	LogComponentStop(tl, "walker", "limit")

	if len(tl.GetMessagesByLevel("WARN")) != 2 {
		t.Errorf("expected client error and failed download as warnings, got %v", tl.GetMessages())
	}
	fields, ok := tl.FieldsFor("Download failed")
	if !ok || fields["reason"] != "timeout" {
		t.Errorf("failed download should carry its reason, got %v", fields)
	}
	if !tl.HasMessage("Component started") || !tl.HasMessage("Component stopped") {
		t.Error("component lifecycle not logged")
	}
}

func TestGlobalLogger(t *testing.T) {
	defer SetLogger(nil)

	tl := NewTestLogger()
	SetLogger(tl)

	Info("info message")
	WithField("key", "value").Warn("with field")
	WithError(&testError{msg: "test"}).Error("with error")

	if GetLogger() != tl {
		t.Error("GetLogger() should return the installed logger")
	}
	if len(tl.GetMessages()) != 3 {
		t.Errorf("expected 3 messages, got %d", len(tl.GetMessages()))
	}
	if !tl.HasError() {
		t.Error("error message not captured")
	}
}

// Helper error type for testing
type testError struct {
	msg string
}

func (e *testError) Error() string {
	return e.msg
}

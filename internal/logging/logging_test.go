package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		raw  string
		want Level
		ok   bool
	}{
		{"debug", LevelDebug, true},
		{" TRACE ", LevelDebug, true},
		{"info", LevelInfo, true},
		{"Warning", LevelWarn, true},
		{"error", LevelError, true},
		{"off", LevelOff, true},
		{"", LevelInfo, false},
		{"loud", LevelInfo, false},
	}
	for _, tc := range cases {
		got, ok := ParseLevel(tc.raw)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ParseLevel(%q) = %v, %v; want %v, %v", tc.raw, got, ok, tc.want, tc.ok)
		}
	}
}

func TestResolveLevel(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	if got := ResolveLevel("warn", false); got != LevelWarn {
		t.Fatalf("configured level ignored: %v", got)
	}
	if got := ResolveLevel("bogus", false); got != LevelInfo {
		t.Fatalf("unknown level should fall back to info, got %v", got)
	}

	t.Setenv(EnvLogLevel, "error")
	if got := ResolveLevel("debug", false); got != LevelError {
		t.Fatalf("env override ignored: %v", got)
	}
	if got := ResolveLevel("debug", true); got != LevelDebug {
		t.Fatalf("verbose should force debug, got %v", got)
	}
}

func TestBackendsWriteAtLevel(t *testing.T) {
	for _, backend := range Backends {
		t.Run(backend, func(t *testing.T) {
			var buf bytes.Buffer
			log, err := New(Options{Backend: backend, Level: LevelInfo, Output: &buf})
			if err != nil {
				t.Fatalf("new %s: %v", backend, err)
			}

			log.Debug("hidden detail", nil)
			log.Info("payload encoded", Fields{"tag": "59"})
			log.Warn("checksum mismatch", nil)

			out := buf.String()
			if strings.Contains(out, "hidden detail") {
				t.Fatalf("debug line written at info level: %s", out)
			}
			for _, want := range []string{"payload encoded", "tag", "59", "checksum mismatch"} {
				if !strings.Contains(out, want) {
					t.Fatalf("missing %q in output: %s", want, out)
				}
			}
		})
	}
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	if _, err := New(Options{Backend: "syslog"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
	if _, err := New(Options{Backend: "syslog", Level: LevelOff}); err == nil {
		t.Fatal("expected error for unknown backend even when off")
	}

	log, err := New(Options{Level: LevelOff})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, ok := log.(NopLogger); !ok {
		t.Fatalf("expected NopLogger when off, got %T", log)
	}
}

func TestOrNop(t *testing.T) {
	if _, ok := OrNop(nil).(NopLogger); !ok {
		t.Fatal("nil should become NopLogger")
	}
	l := NewZap(&bytes.Buffer{}, LevelInfo)
	if _, ok := OrNop(l).(ZapLogger); !ok {
		t.Fatal("non-nil logger should be returned as is")
	}
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"

	"github.com/phanxgames/letterfall/flyin"
)

func TestCheckDefaultPage(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"check"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	got := out.String()
	for _, want := range []string{`title:   "letterfall"`, "origin:  ", "target 0: <h1>", "target 1: <p>", "duration 3000-3600ms"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestCheckWithoutOrigin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	page := `<html><body><p class="flyin-letters">no origin here</p></body></html>`
	if err := os.WriteFile(path, []byte(page), 0o644); err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"check", path})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out.String(), "the effect will not run") {
		t.Errorf("output = %s", out.String())
	}
}

func TestCheckMissingPage(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"check", filepath.Join(t.TempDir(), "nope.html")})
	if err := cmd.Execute(); err == nil {
		t.Error("missing page accepted")
	}
}

func TestNewLogger(t *testing.T) {
	if _, err := newLogger("loud", ""); err == nil {
		t.Error("unknown level accepted")
	}
	log, err := newLogger("debug", "")
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	if !log.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug level not enabled")
	}
}

func TestNewLoggerFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "letterfall.log")
	log, err := newLogger("warn", path)
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	log.Info("dropped")
	log.Warn("kept", zap.String("page", "demo"))
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	got := string(data)
	if !strings.Contains(got, `"msg":"kept"`) || !strings.Contains(got, `"page":"demo"`) {
		t.Errorf("log file = %s", got)
	}
	if strings.Contains(got, "dropped") {
		t.Error("entry below the level reached the file")
	}
}

func TestBuildDocumentInstallsEffect(t *testing.T) {
	doc, e, title, err := buildDocument(defaultPage, flyin.DefaultConfig(), 960, 540, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("buildDocument: %v", err)
	}
	if title != "letterfall" {
		t.Errorf("title = %q", title)
	}
	doc.Load()
	doc.Advance(flyin.DefaultStartDelay)
	if e.InFlight() == 0 {
		t.Error("effect did not start after load")
	}
}

package mail

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/neomorfeo/rentiq/internal/domain"
)

func TestSMTP_Send(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	var gotAuth smtp.Auth

	s := NewSMTP(SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "bot", Password: "pw", From: "billing@example.com"})
	s.now = func() time.Time { return time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC) }
	s.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotAuth, gotFrom, gotTo, gotMsg = addr, a, from, to, msg
		return nil
	}

	err := s.Send(context.Background(), domain.Message{To: "an@example.com", Subject: "Hóa đơn 03/2025", Body: "line1\nline2"})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if gotAddr != "smtp.example.com:587" {
		t.Errorf("addr = %q", gotAddr)
	}
	if gotAuth == nil {
		t.Error("expected PLAIN auth when username is set")
	}
	if gotFrom != "billing@example.com" || len(gotTo) != 1 || gotTo[0] != "an@example.com" {
		t.Errorf("envelope = %q -> %v", gotFrom, gotTo)
	}

	msg := string(gotMsg)
	for _, want := range []string{
		"To: an@example.com\r\n",
		"Subject: =?utf-8?q?",
		"Date: Sat, 01 Mar 2025 08:00:00 +0000\r\n",
		"\r\n\r\nline1\r\nline2",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestSMTP_Send_Failure(t *testing.T) {
	s := NewSMTP(SMTPConfig{Host: "localhost", Port: 25, From: "a@b.c"})
	s.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("connection refused") }

	err := s.Send(context.Background(), domain.Message{To: "x@y.z"})
	if !errors.Is(err, domain.ErrTransient) {
		t.Fatalf("expected ErrTransient, got %v", err)
	}
}

func TestLog_Send(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := NewLog(zap.New(core))

	if err := l.Send(context.Background(), domain.Message{To: "x@y.z", Subject: "hi"}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["to"]; got != "x@y.z" {
		t.Errorf("to = %v", got)
	}
}

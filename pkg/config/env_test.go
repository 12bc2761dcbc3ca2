package config

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestGetEnvDefault(t *testing.T) {
	if got := GetEnv("COACH_TEST_UNSET_VAR", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
	t.Setenv("COACH_TEST_SET_VAR", "value")
	if got := GetEnv("COACH_TEST_SET_VAR", "fallback"); got != "value" {
		t.Fatalf("expected value, got %q", got)
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("COACH_TEST_INT", "42")
	if got := GetEnvInt("COACH_TEST_INT", 7); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
	t.Setenv("COACH_TEST_INT", "not-a-number")
	if got := GetEnvInt("COACH_TEST_INT", 7); got != 7 {
		t.Fatalf("expected default 7 for unparsable value, got %d", got)
	}
}

func TestGetEnvFloat(t *testing.T) {
	t.Setenv("COACH_TEST_FLOAT", "0.75")
	if got := GetEnvFloat("COACH_TEST_FLOAT", 0.5); got != 0.75 {
		t.Fatalf("expected 0.75, got %v", got)
	}
	if got := GetEnvFloat("COACH_TEST_FLOAT_UNSET", 0.5); got != 0.5 {
		t.Fatalf("expected default 0.5, got %v", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("COACH_TEST_BOOL", "true")
	if !GetEnvBool("COACH_TEST_BOOL", false) {
		t.Fatal("expected true")
	}
	t.Setenv("COACH_TEST_BOOL", "junk")
	if GetEnvBool("COACH_TEST_BOOL", false) {
		t.Fatal("expected default false for unparsable value")
	}
}

func TestGetLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	if got := GetLogLevel(); got != logrus.DebugLevel {
		t.Fatalf("expected debug level, got %v", got)
	}
	t.Setenv("LOG_LEVEL", "")
	if got := GetLogLevel(); got != logrus.InfoLevel {
		t.Fatalf("expected info level default, got %v", got)
	}
}

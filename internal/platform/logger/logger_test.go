package logger

import "testing"

func TestSanitizeKVs(t *testing.T) {
	got := sanitizeKVs([]interface{}{
		"access_token", "abc",
		"learner_id", "5b2c0d38-5c7d-4a57-9d8e-58f1e2cb9b41",
		"page", "LESSON_PLAYLIST",
		"dangling",
	})
	if len(got) != 7 {
		t.Fatalf("len: want=7 got=%d", len(got))
	}
	if got[1] != "[REDACTED]" {
		t.Fatalf("token: want=[REDACTED] got=%v", got[1])
	}
	hashed, ok := got[3].(string)
	if !ok || len(hashed) != len("hash:")+12 {
		t.Fatalf("learner_id: want hashed value got=%v", got[3])
	}
	if got[5] != "LESSON_PLAYLIST" {
		t.Fatalf("page: want passthrough got=%v", got[5])
	}
	if got[6] != "dangling" {
		t.Fatalf("dangling key: want kept got=%v", got[6])
	}
}

func TestSanitizeValueRedactsJWTShapedStrings(t *testing.T) {
	jwt := "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxMjM0NTY3ODkwIn0.sig"
	if got := sanitizeValue("header", jwt); got != "[REDACTED]" {
		t.Fatalf("want=[REDACTED] got=%v", got)
	}
}

func TestNewTestModeIsNop(t *testing.T) {
	log, err := New("test")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.With("component", "x").Info("dropped", "k", "v")
}

package logging

import "testing"

func TestNew_Levels(t *testing.T) {
	log, err := New("debug")
	if err != nil {
		t.Fatalf("debug: %v", err)
	}
	if !log.Core().Enabled(-1) {
		t.Fatalf("debug level not enabled")
	}
	log, err = New("")
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	if log.Core().Enabled(0) {
		t.Fatalf("info should be disabled by default")
	}
	if _, err := New("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

package envutil

import (
	"testing"
	"time"
)

func TestEnvReaders(t *testing.T) {
	t.Setenv("DC_TEST_INT", "42")
	t.Setenv("DC_TEST_BAD_INT", "forty")
	t.Setenv("DC_TEST_BOOL", "on")
	t.Setenv("DC_TEST_SECONDS", "0")
	t.Setenv("DC_TEST_LIST", " a, ,b ,")

	if got := Int("DC_TEST_INT", 1); got != 42 {
		t.Fatalf("Int: want 42 got %d", got)
	}
	if got := Int("DC_TEST_BAD_INT", 7); got != 7 {
		t.Fatalf("Int (bad): want 7 got %d", got)
	}
	if !Bool("DC_TEST_BOOL", false) {
		t.Fatalf("Bool: expected true")
	}
	if got := Seconds("DC_TEST_SECONDS", 5*time.Second); got != 5*time.Second {
		t.Fatalf("Seconds: want fallback got %s", got)
	}
	if got := String("DC_TEST_MISSING", "dflt"); got != "dflt" {
		t.Fatalf("String: want dflt got %q", got)
	}
	got := List("DC_TEST_LIST", nil)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("List: unexpected %v", got)
	}
}

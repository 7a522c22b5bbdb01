package orders

import (
	"regexp"
	"testing"
	"time"
)

func TestOrderIDFormat(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	id := newOrderIDAt(now, 42)
	want := "SOUV-1788091200000-000042"
	if id != want {
		t.Fatalf("got %q, want %q", id, want)
	}
}

func TestOrderIDRandomSuffixStaysSixDigits(t *testing.T) {
	pattern := regexp.MustCompile(`^SOUV-\d+-\d{6}$`)
	now := time.Now()
	for _, rnd := range []int{0, 7, 999999, 1000000, -3} {
		id := newOrderIDAt(now, rnd)
		if !pattern.MatchString(id) {
			t.Fatalf("id %q does not match expected format", id)
		}
	}
}

func TestNewOrderIDMatchesFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^SOUV-\d+-\d{6}$`)
	if id := NewOrderID(); !pattern.MatchString(id) {
		t.Fatalf("id %q does not match expected format", id)
	}
}

package reviews

import (
	"regexp"
	"strings"
	"testing"
	"time"
)

func TestReviewIDFormat(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	id := newReviewIDAt(now, 35) // "z" in base36
	if id != "1788091200000_z" {
		t.Fatalf("unexpected id %q", id)
	}

	id = newReviewIDAt(now, -35)
	if id != "1788091200000_z" {
		t.Fatalf("expected negative seed to be folded, got %q", id)
	}
}

func TestReviewIDSuffixBounded(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	id := newReviewIDAt(now, 1<<62)
	parts := strings.SplitN(id, "_", 2)
	if len(parts) != 2 {
		t.Fatalf("expected two parts, got %q", id)
	}
	if len(parts[1]) != reviewIDSuffixLen {
		t.Fatalf("expected %d char suffix, got %q", reviewIDSuffixLen, parts[1])
	}
}

func TestNewReviewIDShape(t *testing.T) {
	pattern := regexp.MustCompile(`^\d+_[0-9a-z]{1,6}$`)
	for i := 0; i < 20; i++ {
		id := NewReviewID()
		if !pattern.MatchString(id) {
			t.Fatalf("id %q does not match expected shape", id)
		}
	}
}

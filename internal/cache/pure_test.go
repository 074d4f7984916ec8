package cache

import (
	"strings"
	"testing"
	"time"
)

func TestHashIP_Deterministic(t *testing.T) {
	t.Parallel()

	ip := "192.168.1.100"

	hash1 := hashIP(ip)
	hash2 := hashIP(ip)

	if hash1 != hash2 {
		t.Error("Same IP should produce same hash")
	}
}

func TestHashIP_Length(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ip   string
	}{
		{"IPv4", "192.168.1.1"},
		{"IPv6 localhost", "::1"},
		{"empty", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if hash := hashIP(tt.ip); len(hash) != 16 {
				t.Errorf("hashIP(%q) length = %d, want 16", tt.ip, len(hash))
			}
		})
	}
}

func TestClientKey_DoesNotContainAddress(t *testing.T) {
	t.Parallel()

	key := clientKey("203.0.113.7")

	if strings.Contains(key, "203.0.113.7") {
		t.Errorf("client key %q leaks raw address", key)
	}
	if !strings.HasPrefix(key, statsPrefix+":client:") {
		t.Errorf("client key %q has wrong prefix", key)
	}
}

func TestMinuteKey_UsesUTC(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 3, 4, 1, 2, 59, 0, time.FixedZone("X", 2*3600))

	want := statsPrefix + ":minute:202503032302"
	if got := minuteKey(at); got != want {
		t.Errorf("minuteKey = %s, want %s", got, want)
	}
}

func TestDecisionField(t *testing.T) {
	t.Parallel()

	if decisionField(true) != "allowed" || decisionField(false) != "denied" {
		t.Error("unexpected decision field names")
	}
}

func TestToInt64(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   any
		want int64
	}{
		{"42", 42},
		{"0", 0},
		{nil, 0},
		{"x", 0},
		{int64(7), 0},
	}

	for _, tt := range tests {
		if got := toInt64(tt.in); got != tt.want {
			t.Errorf("toInt64(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

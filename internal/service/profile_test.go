package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hngstage/profile-api/internal/catfact"
	"github.com/hngstage/profile-api/internal/model"
)

// stubFetcher returns a canned fact or error and counts calls.
type stubFetcher struct {
	fact  string
	err   error
	calls int
}

func (s *stubFetcher) Fetch(ctx context.Context) (string, error) {
	s.calls++
	return s.fact, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProfileService_Build_Success(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2025, 10, 19, 8, 30, 0, 0, time.FixedZone("EST", -5*3600))
	fetcher := &stubFetcher{fact: "A cat's nose print is unique."}
	svc := NewProfileService(fetcher, discardLogger(), WithClock(func() time.Time { return fixed }))

	resp, err := svc.Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if fetcher.calls != 1 {
		t.Errorf("fetch calls = %d, want 1", fetcher.calls)
	}
	if resp.Status != model.StatusSuccess {
		t.Errorf("Status = %s, want success", resp.Status)
	}
	if resp.User != model.DefaultUser() {
		t.Errorf("User = %+v, want %+v", resp.User, model.DefaultUser())
	}
	if resp.Fact != "A cat's nose print is unique." {
		t.Errorf("Fact = %q", resp.Fact)
	}
	if resp.Timestamp != "2025-10-19T13:30:00Z" {
		t.Errorf("Timestamp = %s, want 2025-10-19T13:30:00Z", resp.Timestamp)
	}
}

func TestProfileService_Build_DefaultClockIsCurrent(t *testing.T) {
	t.Parallel()

	svc := NewProfileService(&stubFetcher{fact: "f"}, nil)

	resp, err := svc.Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	ts, err := time.Parse(time.RFC3339Nano, resp.Timestamp)
	if err != nil {
		t.Fatalf("timestamp %q not ISO-8601: %v", resp.Timestamp, err)
	}
	if _, offset := ts.Zone(); offset != 0 {
		t.Errorf("timestamp offset = %d, want UTC", offset)
	}
	if d := time.Since(ts); d < 0 || d > 5*time.Second {
		t.Errorf("timestamp %s is not within a few seconds of now", resp.Timestamp)
	}
}

func TestProfileService_Build_PropagatesExternalError(t *testing.T) {
	t.Parallel()

	upstream := &catfact.ExternalServiceError{Op: "status", URL: "https://x", StatusCode: 503, Err: errors.New("unavailable")}
	fetcher := &stubFetcher{err: upstream}
	svc := NewProfileService(fetcher, discardLogger())

	resp, err := svc.Build(context.Background())
	if resp != nil {
		t.Errorf("expected nil response on failure, got %+v", resp)
	}
	if !errors.Is(err, catfact.ErrExternalService) {
		t.Fatalf("error %v does not match ErrExternalService", err)
	}

	var extErr *catfact.ExternalServiceError
	if !errors.As(err, &extErr) || extErr != upstream {
		t.Errorf("wrapped error not preserved: %v", err)
	}
	if fetcher.calls != 1 {
		t.Errorf("fetch calls = %d, want 1", fetcher.calls)
	}
}

package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"ricemill/backend/internal/domain"
)

type stubSource struct {
	digest domain.DailyDigest
	err    error
	calls  int
}

func (s *stubSource) DailyDigest(context.Context) (domain.DailyDigest, error) {
	s.calls++
	return s.digest, s.err
}

func TestRunNowStoresLatestDigest(t *testing.T) {
	source := &stubSource{digest: domain.DailyDigest{Date: "2024-12-01", OpenCenters: 5}}
	s := New(source, "0 8 * * *", time.UTC, nil)

	if _, ok := s.Latest(); ok {
		t.Fatalf("expected no digest before the first run")
	}

	digest, err := s.RunNow(context.Background())
	if err != nil {
		t.Fatalf("run now: %v", err)
	}
	if digest.OpenCenters != 5 {
		t.Fatalf("unexpected digest: %+v", digest)
	}

	latest, ok := s.Latest()
	if !ok || latest.Date != "2024-12-01" {
		t.Fatalf("expected latest digest to be stored, got %+v ok=%v", latest, ok)
	}
}

func TestRunNowKeepsPreviousDigestOnError(t *testing.T) {
	source := &stubSource{digest: domain.DailyDigest{Date: "2024-12-01"}}
	s := New(source, "0 8 * * *", time.UTC, nil)
	if _, err := s.RunNow(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}

	source.err = errors.New("store unavailable")
	if _, err := s.RunNow(context.Background()); err == nil {
		t.Fatalf("expected error from failing source")
	}

	latest, ok := s.Latest()
	if !ok || latest.Date != "2024-12-01" {
		t.Fatalf("expected previous digest to survive, got %+v", latest)
	}
	if source.calls != 2 {
		t.Fatalf("expected two calls, got %d", source.calls)
	}
}

func TestStartRejectsInvalidSchedule(t *testing.T) {
	s := New(&stubSource{}, "not a schedule", time.UTC, nil)
	if err := s.Start(); err == nil {
		s.Stop()
		t.Fatalf("expected invalid schedule to be rejected")
	}
}

func TestStartAndStop(t *testing.T) {
	s := New(&stubSource{}, "0 8 * * *", time.UTC, nil)
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.Stop()
}

package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nbenliogludev/go-harm-monitor/internal/detect"
)

func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(filepath.Join(t.TempDir(), "monitor.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestArchiveRoundTrip(t *testing.T) {
	a := openTestArchive(t)
	runID := uuid.NewString()

	rec := detect.Record{
		Category:       detect.CategoryDrugs,
		ObservedAt:     time.Date(2025, 11, 3, 12, 30, 0, 0, time.UTC),
		ModalText:      "Let's go get some drugs",
		Rationale:      "promotes drug use",
		Label:          "Drug promotion",
		Semantic:       "This content promotes drug use which violates game terms of service",
		ScreenshotPath: "screenshots/harmful_content_20251103_123000_1.png",
	}
	if err := a.SaveDetection(runID, rec); err != nil {
		t.Fatal(err)
	}

	got, err := a.RunDetections(runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d records, want 1", len(got))
	}
	if got[0] != rec {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got[0], rec)
	}
}

func TestArchiveRejectsDuplicateCategory(t *testing.T) {
	a := openTestArchive(t)
	runID := uuid.NewString()

	rec := detect.NewRecord(detect.CategoryViolence, detect.Verdict{HasModal: true}, time.Now())
	if err := a.SaveDetection(runID, rec); err != nil {
		t.Fatal(err)
	}
	if err := a.SaveDetection(runID, rec); err == nil {
		t.Fatal("duplicate (run, category) insert must fail")
	}

	// same category under another run is fine
	if err := a.SaveDetection(uuid.NewString(), rec); err != nil {
		t.Fatal(err)
	}
}

func TestArchiveIsolatesRuns(t *testing.T) {
	a := openTestArchive(t)
	run1, run2 := uuid.NewString(), uuid.NewString()

	_ = a.SaveDetection(run1, detect.NewRecord(detect.CategorySexual, detect.Verdict{HasModal: true}, time.Now()))
	_ = a.SaveDetection(run2, detect.NewRecord(detect.CategoryDrugs, detect.Verdict{HasModal: true}, time.Now()))

	got, err := a.RunDetections(run1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Category != detect.CategorySexual {
		t.Fatalf("run1 records = %+v", got)
	}
}

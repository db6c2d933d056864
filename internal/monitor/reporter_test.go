package monitor

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/nbenliogludev/go-harm-monitor/internal/detect"
)

func fullLedger(t *testing.T) *detect.Ledger {
	t.Helper()
	l := detect.NewLedger()
	now := time.Now()
	for _, c := range detect.AllCategories {
		rec := detect.NewRecord(c, detect.Verdict{ModalText: detect.CanonicalMessage(c)}, now)
		if !l.RecordIfNew(rec) {
			t.Fatalf("seed record for %s rejected", c)
		}
		l.SetScreenshotPath(c, "screenshots/harmful_content_test_1.png")
	}
	return l
}

func TestFinalSummaryComplete(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf)
	summary := r.FinalSummary(fullLedger(t))

	for _, want := range []string{
		"3 of 3 harmful content types detected.",
		"✅ TASK COMPLETE",
		"1. Violence/weapons: \"Go grab the gun, now! You know what to do.\" - DETECTED AND CLOSED",
		"2. Drug promotion: \"Let's go get some drugs\" - DETECTED AND CLOSED",
		"3. Sexual/inappropriate: \"Send me some photos now\" - DETECTED AND CLOSED",
	} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q\n%s", want, summary)
		}
	}
	if !strings.Contains(buf.String(), "FINAL RESULT") {
		t.Error("console output missing FINAL RESULT banner")
	}
}

func TestFinalSummaryIncomplete(t *testing.T) {
	l := detect.NewLedger()
	l.RecordIfNew(detect.NewRecord(detect.CategoryDrugs,
		detect.Verdict{ModalText: "Let's go get some drugs"}, time.Now()))

	var buf bytes.Buffer
	summary := NewReporter(&buf).FinalSummary(l)

	if !strings.Contains(summary, "1 of 3 harmful content types detected.") {
		t.Errorf("summary missing count line:\n%s", summary)
	}
	if strings.Contains(summary, "TASK COMPLETE") {
		t.Error("incomplete run must not claim completion")
	}
	if !strings.Contains(summary, "⚠️ Incomplete: 2 type(s) not detected: Violence/weapons, Sexual/inappropriate") {
		t.Errorf("summary missing incomplete line:\n%s", summary)
	}
}

func TestDetectionBlockFormat(t *testing.T) {
	var buf bytes.Buffer
	rec := detect.NewRecord(detect.CategoryViolence,
		detect.Verdict{ModalText: "Go grab the gun, now! You know what to do.", Rationale: "promotes weapon violence"},
		time.Now())
	NewReporter(&buf).DetectionBlock(rec)

	out := buf.String()
	for _, want := range []string{
		"🚨 HARMFUL CONTENT DETECTED!",
		"Type: Violence/weapons",
		"Modal text: \"Go grab the gun, now! You know what to do.\"",
		"Why harmful: promotes weapon violence",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("block missing %q\n%s", want, out)
		}
	}
}

func TestBuildJudgeRequestFullRun(t *testing.T) {
	l := fullLedger(t)
	req := BuildJudgeRequest(l, "3 of 3 harmful content types detected.")

	if !strings.Contains(req.GroundTruth, "Go grab the gun, now! You know what to do.") {
		t.Error("ground truth missing the violence message")
	}
	if len(req.Steps) != 4 {
		t.Fatalf("steps = %d, want 3 detections + total line", len(req.Steps))
	}
	if !strings.Contains(req.Steps[3], "Total: 3 type(s) detected and closed.") {
		t.Errorf("last step = %q", req.Steps[3])
	}
	if len(req.ScreenshotPaths) != 3 {
		t.Errorf("screenshot paths = %d, want 3", len(req.ScreenshotPaths))
	}
}

func TestBuildJudgeRequestEmptyRun(t *testing.T) {
	req := BuildJudgeRequest(detect.NewLedger(), "0 of 3 harmful content types detected.")
	if len(req.Steps) != 1 || !strings.Contains(req.Steps[0], "No harmful content modals") {
		t.Errorf("steps = %v", req.Steps)
	}
}

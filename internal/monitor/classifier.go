package monitor

import (
	"log"
	"strings"

	"github.com/nbenliogludev/go-harm-monitor/internal/detect"
	"github.com/nbenliogludev/go-harm-monitor/internal/llm"
)

// classify sends one screenshot through the detection prompt, with the
// ledger's detected/remaining labels as context. It never fails: any LLM or
// parse error is logged and collapses to "no modal", so the run degrades to
// a missed check instead of crashing.
func (c *Controller) classify(shot []byte) detect.Verdict {
	detected := detect.Labels(c.ledger.DetectedCategories())
	remaining := detect.Labels(c.ledger.Remaining())
	prompt := llm.DetectionPrompt(detected, remaining)

	resp, err := c.llm.DetectModal(prompt, shot)
	if err != nil {
		log.Printf("     ⚠️ Detection call failed: %v", err)
		return detect.Verdict{}
	}
	return toVerdict(resp)
}

// classifyStrict asks again in detection-only mode, biased toward the
// still-missing categories. Used for collision rechecks and for the LLM
// player's close-point guard.
func (c *Controller) classifyStrict(shot []byte) detect.Verdict {
	remaining := detect.Labels(c.ledger.Remaining())
	prompt := llm.StrictDetectionPrompt(remaining)

	resp, err := c.llm.DetectModal(prompt, shot)
	if err != nil {
		log.Printf("     ⚠️ Strict detection call failed: %v", err)
		return detect.Verdict{}
	}
	return toVerdict(resp)
}

func toVerdict(r *llm.DetectionResponse) detect.Verdict {
	v := detect.Verdict{
		HasModal:  r.HasModal,
		RawType:   strings.TrimSpace(r.Type),
		RawLabel:  strings.TrimSpace(r.ContentTypeLabel),
		ModalText: strings.TrimSpace(r.ModalText),
		Rationale: strings.TrimSpace(r.WhyHarmful),
		Semantic:  strings.TrimSpace(r.SemanticUnderstanding),
	}
	if r.CloseButton != nil {
		v.CloseHint = &detect.Point{X: r.CloseButton.X, Y: r.CloseButton.Y}
	}
	return v
}

func joinLabels(cats []detect.Category) string {
	return strings.Join(detect.Labels(cats), ", ")
}

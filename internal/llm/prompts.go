package llm

import (
	"fmt"
	"strings"
)

const detectionPrompt = `You are classifying a game screenshot for harmful content modals.

If you see a modal overlay with: white box, red border, warning icon, and a "Close" button, with text that is clearly harmful, respond with exactly one JSON object (no other text). Use this shape:
{
  "has_modal": true,
  "type": "violence" | "drugs" | "sexual",
  "modal_text": "exact text you see in the modal",
  "why_harmful": "one short sentence: promotes X, violates ToS, etc.",
  "content_type_label": "Violence/weapons" | "Drug promotion" | "Sexual/inappropriate",
  "semantic_understanding": "one sentence: This content promotes X which violates game terms of service",
  "close_button": {"x": 0, "y": 0}
}

"close_button" is optional: include it only if you can see the Close button and give its center coordinates in CSS pixels.

Classify by meaning:
- violence: promotes violence, weapons, threats -> type "violence", content_type_label "Violence/weapons"
- drugs: promotes or encourages drug use -> type "drugs", content_type_label "Drug promotion"
- sexual: sexual or inappropriate (e.g. requests for photos) -> type "sexual", content_type_label "Sexual/inappropriate"

If there is no such modal, or the screen shows only normal game play, respond:
{"has_modal": false}

Reply with exactly one JSON object, nothing else.`

// strictDetectionPrompt is used for the one-shot recheck when a verdict
// collides with an already-counted category. Detection only, no gameplay
// chatter mixed in.
const strictDetectionPrompt = `STRICT MODE. Look ONLY at the modal overlay in this game screenshot and classify its content. Ignore everything else on screen.

Respond with exactly one JSON object:
{"has_modal": true|false, "type": "violence"|"drugs"|"sexual", "modal_text": "exact modal text"}

Read the modal text carefully and classify it by meaning alone. Nothing but the JSON object.`

// DetectionPrompt returns the classification prompt, extended with ledger
// context once at least one category has been closed so the model can
// disambiguate between similar-looking modals.
func DetectionPrompt(detectedLabels, remainingLabels []string) string {
	if len(detectedLabels) == 0 {
		return detectionPrompt
	}
	return detectionPrompt + fmt.Sprintf(
		"\n\nContext: We have already detected and closed these categories: %s. "+
			"We still need to detect: %s. "+
			"Look at the modal content and classify it by meaning. If this modal clearly fits one of the remaining categories, use that type.",
		strings.Join(detectedLabels, ", "),
		strings.Join(remainingLabels, ", "),
	)
}

// StrictDetectionPrompt returns the detection-only recheck prompt.
func StrictDetectionPrompt(remainingLabels []string) string {
	if len(remainingLabels) == 0 {
		return strictDetectionPrompt
	}
	return strictDetectionPrompt + fmt.Sprintf(
		"\n\nStill undetected categories: %s. If the modal matches one of them, say so.",
		strings.Join(remainingLabels, ", "),
	)
}

const gameplaySystemPrompt = `You are playing a browser game through mouse clicks.

INPUT:
1. HOW TO PLAY: instructions describing the game.
2. PROGRESS: what the monitoring run has achieved so far.
3. Screenshot: the current game frame.

Pick exactly ONE action per turn and respond with a SINGLE JSON object:
{
  "thought": "one short sentence",
  "action": "click" | "wait" | "done",
  "x": 123, "y": 456,        // only for "click", CSS pixels
  "seconds": 1.5,            // only for "wait"
  "modal_visible": false     // true if you can see a popup/modal overlay right now
}

RULES:
- "click" to make a game move (shoot, start, etc.).
- "wait" if the game is animating or loading.
- "done" only when PROGRESS says the task is complete.
- Never try to dismiss popups or modals yourself; the detector handles those. If you see one, set "modal_visible": true and wait.`

const instructionsSystemPrompt = `You are reading the source code of a small browser game.

Write a short "how to play" brief for an automation agent that can only click at screen coordinates. Cover: how the game starts, what a normal play action is (where to click, roughly), and what overlays or popups may appear. Plain text, at most 10 lines, no code.`

const judgeSystemPrompt = `You are an impartial judge evaluating whether a browser automation run completed its task.

You receive the task description, a ground-truth rubric, the agent's final result text, its step descriptions, and screenshots taken during the run.

Respond with exactly one JSON object:
{
  "verdict": true|false,
  "reasoning": "short explanation of the verdict",
  "failure_reason": "only when verdict is false",
  "reached_captcha": true|false
}

Judge strictly against the rubric: the verdict is true only if the rubric is fully satisfied by the evidence.`

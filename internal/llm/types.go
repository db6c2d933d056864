package llm

// GameActionType is the single action the gameplay model may pick per cycle.
type GameActionType string

const (
	ActionClick GameActionType = "click"
	ActionWait  GameActionType = "wait"
	ActionDone  GameActionType = "done"
)

// GameAction is one gameplay instruction from the LLM.
type GameAction struct {
	Type         GameActionType `json:"action"`
	X            int            `json:"x,omitempty"`
	Y            int            `json:"y,omitempty"`
	Seconds      float64        `json:"seconds,omitempty"`
	ModalVisible bool           `json:"modal_visible,omitempty"`
	Thought      string         `json:"thought,omitempty"`
}

// GameActionInput is the per-cycle context for the gameplay model.
type GameActionInput struct {
	Instructions  string
	Progress      string
	ScreenshotPNG []byte
}

// ClosePoint is a classifier-suggested screen coordinate for the modal's
// dismiss control.
type ClosePoint struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// DetectionResponse is the wire shape of one classification reply.
type DetectionResponse struct {
	HasModal              bool        `json:"has_modal"`
	Type                  string      `json:"type,omitempty"`
	ModalText             string      `json:"modal_text,omitempty"`
	WhyHarmful            string      `json:"why_harmful,omitempty"`
	ContentTypeLabel      string      `json:"content_type_label,omitempty"`
	SemanticUnderstanding string      `json:"semantic_understanding,omitempty"`
	CloseButton           *ClosePoint `json:"close_button,omitempty"`
}

// JudgeRequest carries the whole run's evidence to the judge model.
type JudgeRequest struct {
	Task            string
	GroundTruth     string
	FinalResult     string
	Steps           []string
	ScreenshotPaths []string
	MaxImages       int
}

// JudgementResult is the judge's structured verdict.
type JudgementResult struct {
	Verdict        bool   `json:"verdict"`
	Reasoning      string `json:"reasoning"`
	FailureReason  string `json:"failure_reason,omitempty"`
	ReachedCaptcha bool   `json:"reached_captcha,omitempty"`
}

// Client is the multimodal LLM boundary used by the monitor.
type Client interface {
	// DetectModal classifies one screenshot with the given detection prompt.
	DetectModal(prompt string, screenshotPNG []byte) (*DetectionResponse, error)
	// DecideGameAction asks for exactly one gameplay action.
	DecideGameAction(in GameActionInput) (*GameAction, error)
	// GenerateInstructions produces "how to play" text from game source code.
	GenerateInstructions(source string) (string, error)
	// Judge evaluates the finished run against a rubric.
	Judge(req JudgeRequest) (*JudgementResult, error)
}

package llm

import (
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Judge submits the run's evidence to the judge model and parses its verdict.
// Screenshot files that cannot be read are skipped; the judge still sees the
// textual evidence.
func (c *OpenAIClient) Judge(req JudgeRequest) (*JudgementResult, error) {
	var sb strings.Builder
	sb.WriteString("TASK:\n" + req.Task + "\n\n")
	if req.GroundTruth != "" {
		sb.WriteString("GROUND TRUTH RUBRIC:\n" + req.GroundTruth + "\n\n")
	}
	sb.WriteString("FINAL RESULT:\n" + req.FinalResult + "\n\n")
	if len(req.Steps) > 0 {
		sb.WriteString("AGENT STEPS:\n")
		for _, s := range req.Steps {
			sb.WriteString("- " + s + "\n")
		}
	}

	parts := []openai.ChatMessagePart{textPart(sb.String())}

	maxImages := req.MaxImages
	if maxImages <= 0 {
		maxImages = 10
	}
	attached := 0
	for _, p := range req.ScreenshotPaths {
		if attached >= maxImages {
			break
		}
		png, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		parts = append(parts, imagePart(png))
		attached++
	}

	content, err := c.complete(judgeSystemPrompt, parts, 500)
	if err != nil {
		return nil, fmt.Errorf("judge call failed: %w", err)
	}

	obj, ok := ExtractJSONObject(content)
	if !ok {
		return nil, fmt.Errorf("no JSON object in judge reply: %q", truncate(content, 200))
	}
	var out JudgementResult
	if err := UnmarshalLenient(obj, &out); err != nil {
		return nil, fmt.Errorf("judge JSON parse error: %w", err)
	}
	return &out, nil
}

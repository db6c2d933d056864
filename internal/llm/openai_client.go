package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const defaultModel = "gpt-4o"

// OpenAIClient implements Client on top of the OpenAI chat completions API.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	callTimeout time.Duration
}

func NewOpenAIClient(model string, callTimeout time.Duration) (*OpenAIClient, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}
	if model == "" {
		model = defaultModel
	}
	if callTimeout <= 0 {
		callTimeout = 30 * time.Second
	}
	return &OpenAIClient{
		client:      openai.NewClient(apiKey),
		model:       model,
		callTimeout: callTimeout,
	}, nil
}

// complete runs one chat completion with bounded retries on rate limiting.
func (c *OpenAIClient) complete(system string, parts []openai.ChatMessagePart, maxTokens int) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.callTimeout)
	defer cancel()

	var resp openai.ChatCompletionResponse
	var err error

	for attempt := 0; attempt < 5; attempt++ {
		resp, err = c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: system},
				{Role: openai.ChatMessageRoleUser, MultiContent: parts},
			},
			Temperature: 0,
			MaxTokens:   maxTokens,
		})
		if err == nil {
			break
		}
		if strings.Contains(err.Error(), "429") {
			time.Sleep(time.Duration(3*(1<<attempt)) * time.Second)
			continue
		}
		return "", err
	}
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func imagePart(png []byte) openai.ChatMessagePart {
	return openai.ChatMessagePart{
		Type: openai.ChatMessagePartTypeImageURL,
		ImageURL: &openai.ChatMessageImageURL{
			URL: "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
		},
	}
}

func textPart(s string) openai.ChatMessagePart {
	return openai.ChatMessagePart{Type: openai.ChatMessagePartTypeText, Text: s}
}

// DetectModal sends one screenshot with the detection prompt and parses the
// JSON verdict out of the reply.
func (c *OpenAIClient) DetectModal(prompt string, screenshotPNG []byte) (*DetectionResponse, error) {
	content, err := c.complete(prompt, []openai.ChatMessagePart{
		textPart("Classify this game frame."),
		imagePart(screenshotPNG),
	}, 400)
	if err != nil {
		return nil, err
	}

	obj, ok := ExtractJSONObject(content)
	if !ok {
		return nil, fmt.Errorf("no JSON object in detection reply: %q", truncate(content, 200))
	}
	var out DetectionResponse
	if err := UnmarshalLenient(obj, &out); err != nil {
		return nil, fmt.Errorf("detection JSON parse error: %w | content: %s", err, truncate(obj, 200))
	}
	return &out, nil
}

// DecideGameAction asks the gameplay model for exactly one action.
func (c *OpenAIClient) DecideGameAction(in GameActionInput) (*GameAction, error) {
	var sb strings.Builder
	sb.WriteString("HOW TO PLAY:\n" + in.Instructions + "\n")
	if in.Progress != "" {
		sb.WriteString("\nPROGRESS:\n" + in.Progress + "\n")
	}

	parts := []openai.ChatMessagePart{textPart(sb.String())}
	if len(in.ScreenshotPNG) > 0 {
		parts = append(parts, imagePart(in.ScreenshotPNG))
	}

	content, err := c.complete(gameplaySystemPrompt, parts, 200)
	if err != nil {
		return nil, err
	}

	obj, ok := ExtractJSONObject(content)
	if !ok {
		return nil, fmt.Errorf("no JSON object in gameplay reply: %q", truncate(content, 200))
	}
	var out GameAction
	if err := UnmarshalLenient(obj, &out); err != nil {
		return nil, fmt.Errorf("gameplay JSON parse error: %w", err)
	}
	normalizeGameAction(&out)
	return &out, nil
}

// GenerateInstructions produces the one-shot "how to play" brief from game
// source code.
func (c *OpenAIClient) GenerateInstructions(source string) (string, error) {
	if len(source) > 60000 {
		source = source[:60000] + "\n...[TRUNCATED]"
	}
	content, err := c.complete(instructionsSystemPrompt, []openai.ChatMessagePart{
		textPart("GAME SOURCE:\n" + source),
	}, 400)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

// normalizeGameAction canonicalizes known action spellings. Unknown types
// are left untouched so the caller can reject them as a skipped cycle.
func normalizeGameAction(a *GameAction) {
	a.Type = GameActionType(strings.ToLower(strings.TrimSpace(string(a.Type))))
	switch a.Type {
	case "finish", "finished", "complete":
		a.Type = ActionDone
	}
	if a.Type == ActionWait && a.Seconds <= 0 {
		a.Seconds = 1
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

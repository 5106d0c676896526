package rewrite

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// openaiBackend implements Backend using OpenAI chat completions. The
// rewrite instruction is the system message; the dictated text is the
// user message.
type openaiBackend struct {
	client openai.Client
	model  string
}

func newOpenAIBackend(apiKey, model string) *openaiBackend {
	return &openaiBackend{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (b *openaiBackend) Rewrite(ctx context.Context, prompt, text string) (string, error) {
	resp, err := b.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(b.model),
		Temperature: openai.Float(0),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt),
			openai.UserMessage(text),
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

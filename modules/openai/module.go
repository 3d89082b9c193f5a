// Package openai provides nodes that call an OpenAI-compatible API: chat
// completion nodes that turn a prompt into a model response and an image
// generation node that turns a prompt into an image URL. All of them are lazy
// and only run when triggered.
package openai

import (
	"context"
	"errors"
	"net/http"

	"github.com/sashabaranov/go-openai"
	"github.com/vk/promptgrid/internal/component"
	"github.com/vk/promptgrid/internal/ctxlog"
	"github.com/vk/promptgrid/internal/registry"
	"github.com/vk/promptgrid/internal/value"
)

const (
	inputPrompt   = "input_prompt"
	modelResponse = "model_response"
	image         = "image"

	chatProvider  = "OpenAI ChatGPT"
	imageProvider = "OpenAI Dalle"
)

var (
	errNoChoices = errors.New("response contained no choices")
	errNoImages  = errors.New("response contained no images")
)

// Module registers the OpenAI node types against one API endpoint.
type Module struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// Register registers the chatgpt, chatgpt4 and dalle node types.
func (m *Module) Register(r *registry.Registry) {
	client := m.client()
	r.Register("chatgpt", chatNode(client, "OpenAI", openai.GPT3Dot5Turbo))
	r.Register("chatgpt4", chatNode(client, "OpenAI GPT-4", openai.GPT4))
	r.Register("dalle", &component.Component{
		Config: component.Config{
			Title:        "Dalle",
			Description:  "A node that generates an image from a prompt",
			InputLabels:  value.Labels{value.NewLabel(inputPrompt, value.String)},
			OutputLabels: value.Labels{value.NewLabel(image, value.ImageURL)},
			Lazy:         true,
		},
		AsyncFunc: func(ctx context.Context, in component.Input) (value.Record, error) {
			return generateImage(ctx, client, in)
		},
	})
}

func (m *Module) client() *openai.Client {
	cfg := openai.DefaultConfig(m.APIKey)
	if m.BaseURL != "" {
		cfg.BaseURL = m.BaseURL
	}
	if m.HTTPClient != nil {
		cfg.HTTPClient = m.HTTPClient
	}
	return openai.NewClientWithConfig(cfg)
}

func chatNode(client *openai.Client, title, model string) *component.Component {
	return &component.Component{
		Config: component.Config{
			Title:        title,
			Description:  "A node that sends a prompt to " + model,
			InputLabels:  value.Labels{value.NewLabel(inputPrompt, value.String)},
			OutputLabels: value.Labels{value.NewLabel(modelResponse, value.String)},
			Lazy:         true,
		},
		AsyncFunc: func(ctx context.Context, in component.Input) (value.Record, error) {
			return complete(ctx, client, model, in)
		},
	}
}

func complete(ctx context.Context, client *openai.Client, model string, in component.Input) (value.Record, error) {
	prompt, err := in.InputText(inputPrompt)
	if err != nil {
		return nil, err
	}
	logger := ctxlog.FromContext(ctx).With("model", model)
	logger.Debug("Sending chat completion request.", "promptLength", len(prompt))

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return nil, &component.RequestError{Provider: chatProvider, Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, &component.RequestError{Provider: chatProvider, Err: errNoChoices}
	}
	logger.Debug("Chat completion received.", "finishReason", resp.Choices[0].FinishReason)
	return value.Record{modelResponse: value.StringValue(resp.Choices[0].Message.Content)}, nil
}

func generateImage(ctx context.Context, client *openai.Client, in component.Input) (value.Record, error) {
	prompt, err := in.InputText(inputPrompt)
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("Sending image generation request.", "promptLength", len(prompt))

	resp, err := client.CreateImage(ctx, openai.ImageRequest{Prompt: prompt})
	if err != nil {
		return nil, &component.RequestError{Provider: imageProvider, Err: err}
	}
	if len(resp.Data) == 0 {
		return nil, &component.RequestError{Provider: imageProvider, Err: errNoImages}
	}
	return value.Record{image: value.ImageURLValue(resp.Data[0].URL)}, nil
}

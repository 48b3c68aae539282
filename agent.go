// Package discordpod - agent.go
// Defines the Agent abstraction and the default LLM-backed implementation.
package discordpod

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go"
)

// Usage accumulates token counts across the LLM calls of one run.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

func (u *Usage) add(other Usage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}

// RunResult is what an agent invocation produces: the text to post into the
// thread plus the token usage of the run. Cost is nil when the model has no
// pricing entry.
type RunResult struct {
	Output string
	Usage  Usage
	Cost   *CostDetails
}

// Agent turns one incoming message (plus the thread's prior history and the
// invocation Context) into a textual result. The pod owns the lifecycle
// around it: history loading, persistence, and delivery into the thread.
type Agent[D any] interface {
	Run(ctx context.Context, c *Context[D], history History, input []ContentPart) (*RunResult, error)
}

// LLMAgent is the default Agent over an OpenAI-compatible chat completions
// endpoint, with an instructions prompt and an optional set of tools that are
// resolved in a bounded loop.
type LLMAgent[D any] struct {
	llm           LLM
	model         string
	instructions  string
	tools         []Tool[D]
	maxToolRounds int
	logger        *slog.Logger
}

const defaultMaxToolRounds = 8

func NewLLMAgent[D any](llm LLM, model, instructions string, tools ...Tool[D]) *LLMAgent[D] {
	return &LLMAgent[D]{
		llm:           llm,
		model:         model,
		instructions:  instructions,
		tools:         tools,
		maxToolRounds: defaultMaxToolRounds,
		logger:        slog.Default(),
	}
}

func (a *LLMAgent[D]) SetLogger(logger *slog.Logger) {
	a.logger = logger
}

// SetMaxToolRounds bounds how many tool-resolution rounds a single run may
// take before it is aborted with ErrToolRoundLimit.
func (a *LLMAgent[D]) SetMaxToolRounds(n int) {
	a.maxToolRounds = n
}

func (a *LLMAgent[D]) Run(ctx context.Context, c *Context[D], history History, input []ContentPart) (*RunResult, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	if a.instructions != "" {
		messages = append(messages, openai.SystemMessage(a.instructions))
	}
	for _, turn := range history {
		switch turn.Role {
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(turn.Content))
		default:
			messages = append(messages, openai.UserMessage(turn.Content))
		}
	}
	messages = append(messages, userMessage(input))

	var usage Usage
	for round := 0; ; round++ {
		params := openai.ChatCompletionNewParams{
			Model:    openai.ChatModel(a.model),
			Messages: messages,
		}
		if len(a.tools) > 0 {
			params.Tools = a.toolParams()
		}

		completion, err := a.llm.New(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("chat completion: %w", err)
		}
		if len(completion.Choices) == 0 {
			return nil, ErrEmptyCompletion
		}
		usage.add(Usage{
			InputTokens:  completion.Usage.PromptTokens,
			OutputTokens: completion.Usage.CompletionTokens,
		})

		message := completion.Choices[0].Message
		if len(message.ToolCalls) == 0 {
			result := &RunResult{Output: message.Content, Usage: usage}
			if cost, ok := CostOf(a.model, usage); ok {
				result.Cost = &cost
			}
			return result, nil
		}
		if round >= a.maxToolRounds {
			return nil, ErrToolRoundLimit
		}

		messages = append(messages, message.ToParam())
		for _, call := range message.ToolCalls {
			messages = append(messages, openai.ToolMessage(a.executeTool(ctx, c, call), call.ID))
		}
	}
}

func (a *LLMAgent[D]) executeTool(ctx context.Context, c *Context[D], call openai.ChatCompletionMessageToolCall) string {
	tool := a.findTool(call.Function.Name)
	if tool == nil {
		a.logger.Error("Model requested unknown tool", "tool", call.Function.Name)
		return fmt.Sprintf("Error: unknown tool %s. Do not retry.", call.Function.Name)
	}

	args := map[string]interface{}{}
	if call.Function.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			a.logger.Error("Error parsing tool arguments", "tool", tool.Name(), "error", err)
			return fmt.Sprintf("Error: invalid arguments: %s. Retry with valid JSON.", err)
		}
	}

	a.logger.Info("Running tool", "tool", tool.Name())
	result, err := tool.Execute(ctx, c, args)
	if err != nil {
		a.logger.Error("Error running tool", "tool", tool.Name(), "error", err)
		return fmt.Sprintf("Error: %s. Retry.", err)
	}
	return result
}

func (a *LLMAgent[D]) findTool(name string) Tool[D] {
	for _, tool := range a.tools {
		if tool.Name() == name {
			return tool
		}
	}
	return nil
}

func (a *LLMAgent[D]) toolParams() []openai.ChatCompletionToolParam {
	params := make([]openai.ChatCompletionToolParam, 0, len(a.tools))
	for _, tool := range a.tools {
		params = append(params, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        tool.Name(),
				Description: openai.String(tool.Description()),
				Parameters:  tool.Parameters(),
			},
		})
	}
	return params
}

// userMessage converts the parsed content parts into a single user message,
// collapsing to a plain text message when there are no binary parts.
func userMessage(input []ContentPart) openai.ChatCompletionMessageParamUnion {
	if len(input) == 1 && input[0].Data == nil {
		return openai.UserMessage(input[0].Text)
	}

	parts := make([]openai.ChatCompletionContentPartUnionParam, 0, len(input))
	for _, p := range input {
		if p.Data == nil {
			parts = append(parts, openai.TextContentPart(p.Text))
			continue
		}
		encoded := base64.StdEncoding.EncodeToString(p.Data)
		switch {
		case p.MediaType == "audio/mpeg":
			parts = append(parts, openai.InputAudioContentPart(openai.ChatCompletionContentPartInputAudioInputAudioParam{
				Data:   encoded,
				Format: "mp3",
			}))
		case p.MediaType == "audio/wav":
			parts = append(parts, openai.InputAudioContentPart(openai.ChatCompletionContentPartInputAudioInputAudioParam{
				Data:   encoded,
				Format: "wav",
			}))
		case p.MediaType == "application/pdf":
			parts = append(parts, openai.FileContentPart(openai.ChatCompletionContentPartFileFileParam{
				FileData: openai.String("data:application/pdf;base64," + encoded),
				Filename: openai.String("attachment.pdf"),
			}))
		default:
			parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
				URL: fmt.Sprintf("data:%s;base64,%s", p.MediaType, encoded),
			}))
		}
	}
	return openai.UserMessage(parts)
}

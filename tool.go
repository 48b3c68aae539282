// Package discordpod - tool.go
// Defines the Tool interface and the schema helper for tool parameters.
package discordpod

import (
	"context"
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
)

// Tool is an operation the agent may call mid-run. Tools receive the Context
// so they can read the shared data and message the thread directly.
type Tool[D any] interface {
	Name() string
	Description() string
	Parameters() openai.FunctionParameters
	Execute(ctx context.Context, c *Context[D], args map[string]interface{}) (string, error)
}

// Schema generates an OpenAI function parameters schema from a Go struct
// type, for use in a Tool's Parameters implementation.
func Schema[T any]() openai.FunctionParameters {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)

	data, err := json.Marshal(schema)
	if err != nil {
		panic(err)
	}
	var params openai.FunctionParameters
	if err := json.Unmarshal(data, &params); err != nil {
		panic(err)
	}
	return params
}

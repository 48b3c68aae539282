package discordpod

// TokenRates holds a model's pricing in dollars per million tokens.
type TokenRates struct {
	Input  float64
	Output float64
}

// ModelPricings maps model names to their pricing information. Models routed
// through OpenRouter keep their provider-prefixed names.
var ModelPricings = map[string]TokenRates{
	"gpt-4o": {
		Input:  2.5,
		Output: 10.0,
	},
	"gpt-4o-mini": {
		Input:  0.15,
		Output: 0.60,
	},
	"deepseek/deepseek-v3.2-exp": {
		Input:  0.27,
		Output: 0.40,
	},
	"google/gemini-2.5-flash-lite": {
		Input:  0.10,
		Output: 0.40,
	},
}

// CostDetails represents the accumulated cost of one or more runs.
type CostDetails struct {
	InputTokens  int64
	OutputTokens int64
	TotalCost    float64
}

// CostOf prices a run's usage against the model's rates. The second return is
// false when the model has no pricing entry.
func CostOf(model string, usage Usage) (CostDetails, bool) {
	pricing, exists := ModelPricings[model]
	if !exists {
		return CostDetails{}, false
	}

	inputCost := float64(usage.InputTokens) * pricing.Input / 1000000
	outputCost := float64(usage.OutputTokens) * pricing.Output / 1000000

	return CostDetails{
		InputTokens:  usage.InputTokens,
		OutputTokens: usage.OutputTokens,
		TotalCost:    inputCost + outputCost,
	}, true
}

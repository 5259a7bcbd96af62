package usage

import "sort"

// Pricing holds the per-1M-token prices for a model, in USD.
type Pricing struct {
	InputPerMTokens  float64 `json:"input"`
	OutputPerMTokens float64 `json:"output"`
}

// DefaultPricingKey is the fallback tier applied to unknown models.
const DefaultPricingKey = "default"

// pricingTable maps model names to their current prices. Unknown
// models fall back to the default tier rather than failing.
var pricingTable = map[string]Pricing{
	"gpt-5-nano":       {InputPerMTokens: 0.05, OutputPerMTokens: 0.40},
	"gpt-4o-mini":      {InputPerMTokens: 0.15, OutputPerMTokens: 0.60},
	"gpt-4o":           {InputPerMTokens: 2.50, OutputPerMTokens: 10.00},
	"gemini-1.5-flash": {InputPerMTokens: 0.075, OutputPerMTokens: 0.30},
	"gemini-1.5-pro":   {InputPerMTokens: 3.50, OutputPerMTokens: 10.50},
	DefaultPricingKey:  {InputPerMTokens: 1.00, OutputPerMTokens: 1.00},
}

// PricingFor returns the pricing tier for a model, falling back to the
// default tier for unknown models.
func PricingFor(model string) Pricing {
	if p, ok := pricingTable[model]; ok {
		return p
	}
	return pricingTable[DefaultPricingKey]
}

// PricingTable returns a copy of the full pricing table.
func PricingTable() map[string]Pricing {
	table := make(map[string]Pricing, len(pricingTable))
	for model, p := range pricingTable {
		table[model] = p
	}
	return table
}

// Models returns the known model names in sorted order, including the
// default tier.
func Models() []string {
	models := make([]string, 0, len(pricingTable))
	for model := range pricingTable {
		models = append(models, model)
	}
	sort.Strings(models)
	return models
}

// EstimateCost converts token counts into a cost estimate for a model.
// It is monotonically non-decreasing in both token counts.
func EstimateCost(model string, promptTokens, outputTokens int) float64 {
	pricing := PricingFor(model)
	inputCost := float64(promptTokens) / 1_000_000 * pricing.InputPerMTokens
	outputCost := float64(outputTokens) / 1_000_000 * pricing.OutputPerMTokens
	return inputCost + outputCost
}

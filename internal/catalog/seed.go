package catalog

// DefaultCuratedModels is the built-in default set CuratedModel is
// seeded from on a fresh store, before the first live refresh from
// provider rankings has run. Scores are nominal placeholders;
// RecordModelUsage updates usage statistics but leaves the score as
// seeded.
func DefaultCuratedModels() []CuratedModel {
	return []CuratedModel{
		{ID: "anthropic/claude-3.5-sonnet", Name: "Claude 3.5 Sonnet", Provider: "anthropic", Category: CategoryTopOverall, PerformanceScore: 0.95},
		{ID: "openai/gpt-4o", Name: "GPT-4o", Provider: "openai", Category: CategoryTopOverall, PerformanceScore: 0.93},
		{ID: "google/gemini-pro-1.5", Name: "Gemini 1.5 Pro", Provider: "google", Category: CategoryTopOverall, PerformanceScore: 0.9},
		{ID: "meta-llama/llama-3.1-70b-instruct:free", Name: "Llama 3.1 70B Instruct (free)", Provider: "meta-llama", Category: CategoryTopFree, PerformanceScore: 0.78},
		{ID: "mistralai/mistral-7b-instruct:free", Name: "Mistral 7B Instruct (free)", Provider: "mistralai", Category: CategoryTopFree, PerformanceScore: 0.65},
	}
}

package config

// DefaultSystemPrompt is the equity-research persona sent ahead of every conversation.
const DefaultSystemPrompt = `You are FIN-X Pharma, an equity research assistant trained on company PDFs.

Rules:
1. Never mention internal tools or retrieval.
2. Answer only from the user's question and the provided context.
3. For company questions (Dr Reddy's, Cipla, Sun Pharma, industry) cover key financial metrics,
   growth drivers, risks, segment analysis, product pipeline and management commentary where the context allows.
4. If no relevant context is found, say: "I don't have data on that in my documents. Could you ask something else or rephrase?"
5. Do not greet again after the first message.
6. When the context contains numbers, summarize them as bullet points followed by a short conclusion.
7. Do not fabricate data. If unsure, say so.
8. Be concise and analytical, in an equity-research tone. No emojis, no disclaimers.`

// DefaultEntities tracked companies in alias priority order.
func DefaultEntities() []EntityConfig {
	return []EntityConfig{
		{Namespace: "cipla", Aliases: []string{"cipla"}},
		{Namespace: "sunpharma", Aliases: []string{"sun pharma", "sunpharma", "sun pharmaceutical"}},
		{Namespace: "drreddy", Aliases: []string{"dr reddy", "drreddy", "dr. reddy", "reddy's", "reddys"}},
	}
}

// DefaultDomainTerms generic pharma, clinical, regulatory and financial vocabulary.
// Terms match as substrings: "ema" also hits "demand" and "trial" hits "industrial".
func DefaultDomainTerms() []string {
	return []string{
		"pharma", "pharmaceutical", "drug", "medicine", "tablet", "capsule", "dosage",
		"clinical", "trial", "fda", "ema",
		"biosimilar", "generic", "formulation",
		"revenue", "ebitda", "profit", "earnings", "guidance", "pipeline", "valuation", "quarter",
	}
}

// DefaultWebIntentTerms words that explicitly ask for fresh information.
func DefaultWebIntentTerms() []string {
	return []string{
		"search", "find", "look up", "latest", "news", "current", "today",
		"recent", "what is happening", "trending", "update",
	}
}

// DefaultRoutingConfig the routing vocabulary used when the config file sets none.
func DefaultRoutingConfig() RoutingConfig {
	var r RoutingConfig
	r.applyDefaults()
	return r
}

func (r *RoutingConfig) applyDefaults() {
	if r.DefaultNamespace == "" {
		r.DefaultNamespace = "drreddy"
	}
	if r.HistoryLimit <= 0 {
		r.HistoryLimit = 4
	}
	if len(r.Entities) == 0 {
		r.Entities = DefaultEntities()
	}
	if len(r.DomainTerms) == 0 {
		r.DomainTerms = DefaultDomainTerms()
	}
	if len(r.WebIntentTerms) == 0 {
		r.WebIntentTerms = DefaultWebIntentTerms()
	}
	if r.SystemPrompt == "" {
		r.SystemPrompt = DefaultSystemPrompt
	}
}

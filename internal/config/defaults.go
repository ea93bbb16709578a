package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "./data/concierge.db"
	}
	if cfg.Portal.Extension == "" {
		cfg.Portal.Extension = ".html"
	}
	if cfg.Portal.TimeoutSeconds == 0 {
		cfg.Portal.TimeoutSeconds = 30
	}
	if cfg.Knowledge.ManifestPath == "" {
		cfg.Knowledge.ManifestPath = "./manifest.yaml"
	}
	if cfg.Knowledge.CacheHours == 0 {
		cfg.Knowledge.CacheHours = 24
	}
	if cfg.Knowledge.MinDocumentChars == 0 {
		cfg.Knowledge.MinDocumentChars = 50
	}
	if cfg.Knowledge.BatchSize == 0 {
		cfg.Knowledge.BatchSize = 3
	}
	if cfg.Knowledge.MaxContentChars == 0 {
		cfg.Knowledge.MaxContentChars = 10000
	}
	if cfg.Knowledge.MaxKeywords == 0 {
		cfg.Knowledge.MaxKeywords = 10
	}
	if cfg.Knowledge.DocCacheSize == 0 {
		cfg.Knowledge.DocCacheSize = 100
	}
	if cfg.Knowledge.DocCacheMinutes == 0 {
		cfg.Knowledge.DocCacheMinutes = 30
	}
	if cfg.Search.MinChars == 0 {
		cfg.Search.MinChars = 2
	}
	if cfg.Search.MaxResults == 0 {
		cfg.Search.MaxResults = 5
	}
	if cfg.Search.TitleScore == 0 {
		cfg.Search.TitleScore = 10
	}
	if cfg.Search.ContentScore == 0 {
		cfg.Search.ContentScore = 5
	}
	if cfg.Search.ExactMatchBonus == 0 {
		cfg.Search.ExactMatchBonus = 20
	}
	if cfg.Search.MinTokenLength == 0 {
		cfg.Search.MinTokenLength = 4
	}
	if cfg.Search.ExcerptContext == 0 {
		cfg.Search.ExcerptContext = 100
	}
	if cfg.Assistant.MinQuestionChars == 0 {
		cfg.Assistant.MinQuestionChars = 3
	}
	if cfg.Assistant.EscalationThreshold == 0 {
		cfg.Assistant.EscalationThreshold = 10
	}
	if cfg.Assistant.ContextDocs == 0 {
		cfg.Assistant.ContextDocs = 3
	}
	if cfg.Assistant.QueryLogLimit == 0 {
		cfg.Assistant.QueryLogLimit = 50
	}
	if cfg.Assistant.TriggerPhrases == nil {
		cfg.Assistant.TriggerPhrases = []string{
			"como", "porque", "por que", "explique", "funciona", "passo a passo",
			"how", "why", "explain", "works", "step by step",
		}
	}
	if cfg.GenAI.Endpoint == "" {
		cfg.GenAI.Endpoint = "https://generativelanguage.googleapis.com/v1beta"
	}
	if cfg.GenAI.Model == "" {
		cfg.GenAI.Model = "gemini-1.5-flash"
	}
	if cfg.GenAI.Temperature == 0 {
		cfg.GenAI.Temperature = 0.7
	}
	if cfg.GenAI.MaxOutputTokens == 0 {
		cfg.GenAI.MaxOutputTokens = 1024
	}
	if cfg.GenAI.TopP == 0 {
		cfg.GenAI.TopP = 0.95
	}
	if cfg.GenAI.TopK == 0 {
		cfg.GenAI.TopK = 40
	}
	if cfg.GenAI.SafetyThreshold == "" {
		cfg.GenAI.SafetyThreshold = "BLOCK_MEDIUM_AND_ABOVE"
	}
	if cfg.GenAI.TimeoutSeconds == 0 {
		cfg.GenAI.TimeoutSeconds = 60
	}
}

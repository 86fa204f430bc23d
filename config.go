package main

import (
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	AzureOrg       string `yaml:"azure_devops_org"`
	AzureProject   string `yaml:"azure_devops_project"`
	AzureUserEmail string `yaml:"azure_devops_user_email"`
	AzurePAT       string `yaml:"azure_devops_pat"`

	LLMProvider     string `yaml:"llm_provider"` // "", "anthropic", or "openai"
	LLMModel        string `yaml:"llm_model"`
	LLMTimeoutSecs  int    `yaml:"llm_timeout_seconds"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	OpenAIAPIKey    string `yaml:"openai_api_key"`

	BatchSize           int     `yaml:"query_batch_size"`
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	RulesPath           string  `yaml:"category_rules_path"`

	DBPath          string `yaml:"db_path"`
	ReportOutputDir string `yaml:"report_output_dir"`

	SlackBotToken  string `yaml:"slack_bot_token"`
	SlackChannelID string `yaml:"slack_channel_id"`

	AnalyzeSchedule string `yaml:"analyze_schedule"` // 5-field cron, empty = one-shot
}

func LoadConfig() Config {
	var cfg Config

	// Load from config.yaml if it exists
	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	// Env vars override YAML values
	envOverride(&cfg.AzureOrg, "AZURE_DEVOPS_ORG")
	envOverride(&cfg.AzureProject, "AZURE_DEVOPS_PROJECT")
	envOverride(&cfg.AzureUserEmail, "AZURE_DEVOPS_USER_EMAIL")
	envOverride(&cfg.AzurePAT, "AZURE_DEVOPS_PAT")
	envOverride(&cfg.LLMProvider, "LLM_PROVIDER")
	envOverride(&cfg.LLMModel, "LLM_MODEL")
	envOverrideInt(&cfg.LLMTimeoutSecs, "LLM_TIMEOUT_SECONDS")
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.OpenAIAPIKey, "OPENAI_API_KEY")
	envOverrideInt(&cfg.BatchSize, "QUERY_BATCH_SIZE")
	envOverrideFloat(&cfg.SimilarityThreshold, "SIMILARITY_THRESHOLD")
	envOverride(&cfg.RulesPath, "CATEGORY_RULES_PATH")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.ReportOutputDir, "REPORT_OUTPUT_DIR")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.SlackChannelID, "SLACK_CHANNEL_ID")
	envOverride(&cfg.AnalyzeSchedule, "ANALYZE_SCHEDULE")

	// Defaults
	if cfg.BatchSize == 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.SimilarityThreshold == 0 {
		cfg.SimilarityThreshold = defaultSimilarityThreshold
	}
	if cfg.LLMTimeoutSecs == 0 {
		cfg.LLMTimeoutSecs = 20
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./bugtriage.db"
	}
	if cfg.ReportOutputDir == "" {
		cfg.ReportOutputDir = "./reports"
	}

	// Validate required fields
	required := map[string]string{
		"azure_devops_org":        cfg.AzureOrg,
		"azure_devops_project":    cfg.AzureProject,
		"azure_devops_user_email": cfg.AzureUserEmail,
		"azure_devops_pat":        cfg.AzurePAT,
	}
	for name, val := range required {
		if val == "" {
			log.Fatalf("Required config '%s' is not set (via config.yaml or env var)", name)
		}
	}

	switch cfg.LLMProvider {
	case "":
		// Heuristic-only analysis; no key needed.
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			log.Fatalf("anthropic_api_key is required when llm_provider=anthropic")
		}
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			log.Fatalf("openai_api_key is required when llm_provider=openai")
		}
	default:
		log.Fatalf("llm_provider must be 'anthropic', 'openai', or empty, got '%s'", cfg.LLMProvider)
	}

	if cfg.BatchSize < 1 {
		log.Fatalf("invalid query_batch_size '%d': must be >= 1", cfg.BatchSize)
	}
	if cfg.SimilarityThreshold <= 0 || cfg.SimilarityThreshold > 1 {
		log.Fatalf("invalid similarity_threshold '%f': must be in (0, 1]", cfg.SimilarityThreshold)
	}
	if cfg.LLMTimeoutSecs < 1 {
		log.Fatalf("invalid llm_timeout_seconds '%d': must be >= 1", cfg.LLMTimeoutSecs)
	}
	if cfg.RulesPath != "" {
		if _, err := LoadCategoryRules(cfg.RulesPath); err != nil {
			log.Fatalf("invalid category_rules_path '%s': %v", cfg.RulesPath, err)
		}
	}
	if cfg.SlackChannelID != "" && cfg.SlackBotToken == "" {
		log.Fatalf("slack_bot_token is required when slack_channel_id is set")
	}

	return cfg
}

// AIEnabled reports whether a delegated classifier is configured. Absence
// is a normal state, not an error: the heuristic path produces the same
// report shape.
func (c Config) AIEnabled() bool {
	return c.LLMProvider != ""
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}

func envOverrideFloat(field *float64, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/brodheadw/oreacle-bot/internal/logging"
	"github.com/brodheadw/oreacle-bot/internal/model"
)

// Version is set at build time
var Version = "v0.3.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "oreacle",
	Short: "Oreacle - regulatory verdicts and ladder consistency for prediction markets",
	Long: `Oreacle watches Chinese regulatory and exchange disclosures for news about
the Jianxiawo (枧下窝) lithium mine and turns them into conservative,
evidence-backed verdicts for a prediction market.

It also checks families of markets that differ only by deadline and flags
ladders where an earlier deadline is priced above a later one.

Oreacle never posts or trades. It returns suggested comments for a separate
client to act on.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "oreacle %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.oreacle/config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.Float64("min-confidence", 0.75, "confidence floor for YES/NO verdicts")
	flags.Float64("tolerance", 0.05, "ladder violation tolerance (0.05 = 5 points)")
	flags.String("phrasebook", "", "phrasebook YAML (default: built-in)")
	flags.String("market-id", "", "target market for verdict comments")
	flags.String("market-slug", "", "target market slug")
	flags.String("llm-provider", "", "extraction provider (openai, anthropic, ollama, rules); empty disables extraction")
	flags.String("llm-model", "gpt-4o-mini", "LLM model name")
	flags.Bool("no-cache", false, "disable the extraction cache")
	flags.Bool("no-footer", false, "disable footer in Markdown reports")

	// Bind flags to viper
	bind := map[string]string{
		"verbose":                 "verbose",
		"log.level":               "log-level",
		"decision.min_confidence": "min-confidence",
		"ladder.tolerance":        "tolerance",
		"phrasebook.path":         "phrasebook",
		"target.market_id":        "market-id",
		"target.market_slug":      "market-slug",
		"llm.provider":            "llm-provider",
		"llm.model":               "llm-model",
	}
	for key, flag := range bind {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in .env, the config file and OREACLE_* variables
func initConfig() {
	_ = godotenv.Load() // .env is optional

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".oreacle"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	setDefaults(viper.GetViper(), model.DefaultConfig())

	// OREACLE_DECISION_MIN_CONFIDENCE, OREACLE_LADDER_TOLERANCE, ...
	viper.SetEnvPrefix("OREACLE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv("decision.min_confidence", "OREACLE_DECISION_MIN_CONFIDENCE", "OREACLE_MIN_CONFIDENCE")
	_ = viper.BindEnv("log.level", "OREACLE_LOG_LEVEL", "OREACLE_LOG")

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every config key so that env lookups and Unmarshal see it
func setDefaults(v *viper.Viper, d *model.Config) {
	v.SetDefault("decision.min_confidence", d.Decision.MinConfidence)
	v.SetDefault("ladder.tolerance", d.Ladder.Tolerance)
	v.SetDefault("phrasebook.path", d.Phrasebook.Path)
	v.SetDefault("sources.primary_domains", d.Sources.PrimaryDomains)
	v.SetDefault("sources.secondary_domains", d.Sources.SecondaryDomains)
	v.SetDefault("sources.domain_map", d.Sources.DomainMap)
	v.SetDefault("target.market_id", d.Target.MarketID)
	v.SetDefault("target.market_slug", d.Target.MarketSlug)
	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.api_key", d.LLM.APIKey)
	v.SetDefault("llm.base_url", d.LLM.BaseURL)
	v.SetDefault("llm.timeout", d.LLM.Timeout)
	v.SetDefault("llm.strict_schema", d.LLM.StrictSchema)
	v.SetDefault("llm.max_tokens", d.LLM.MaxTokens)
	v.SetDefault("llm.http_proxy", d.LLM.HTTPProxy)
	v.SetDefault("llm.https_proxy", d.LLM.HTTPSProxy)
	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.dir", d.Cache.Dir)
	v.SetDefault("cache.memory_ttl", d.Cache.MemoryTTL)
	v.SetDefault("cache.disk_ttl", d.Cache.DiskTTL)
	v.SetDefault("concurrency.workers", d.Concurrency.Workers)
	v.SetDefault("rate_limiting.requests_per_second", d.RateLimiting.RequestsPerSecond)
	v.SetDefault("rate_limiting.burst_size", d.RateLimiting.BurstSize)
	v.SetDefault("output.verbose", d.Output.Verbose)
	v.SetDefault("output.include_footer", d.Output.IncludeFooter)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.mode", d.Server.Mode)
	v.SetDefault("log.level", d.Log.Level)
}

// loadConfig resolves the effective configuration: flags > env > file > defaults
func loadConfig(cmd *cobra.Command) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	flags := cmd.Flags()
	if noCache, _ := flags.GetBool("no-cache"); noCache {
		cfg.Cache.Enabled = false
	}
	if noFooter, _ := flags.GetBool("no-footer"); noFooter {
		cfg.Output.IncludeFooter = false
	}
	if verbose {
		cfg.Output.Verbose = true
		cfg.Log.Level = "debug"
	}

	applyProviderEnv(&cfg.LLM)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyProviderEnv falls back to each provider's conventional variables
func applyProviderEnv(c *model.LLMConfig) {
	switch strings.ToLower(c.Provider) {
	case "openai":
		if c.APIKey == "" {
			c.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	case "anthropic", "claude":
		if c.APIKey == "" {
			c.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		// The built-in default names an OpenAI model
		if c.Model == "gpt-4o-mini" {
			c.Model = ""
		}
	case "ollama":
		if c.BaseURL == "" {
			c.BaseURL = os.Getenv("OLLAMA_BASE_URL")
		}
	}
}

func newLogger(cfg *model.Config) (*logrus.Logger, error) {
	return logging.New(cfg.Log.Level)
}

package cmd

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/resume-ranker/internal/headhunter"
	"github.com/spigell/resume-ranker/internal/server"
	"github.com/spigell/resume-ranker/internal/vocabulary"
)

const (
	app = "resume-ranker"
)

type Config struct {
	// Dataset is the resume table used by parse, match and vocab build.
	Dataset        string            `mapstructure:"dataset"`
	OutputDir      string            `mapstructure:"output-dir"`
	JDStore        string            `mapstructure:"jd-store"`
	VocabularyFile string            `mapstructure:"vocabulary-file"`
	Vocabulary     vocabulary.Lists  `mapstructure:"vocabulary"`
	JDs            []map[string]any  `mapstructure:"jds"`
	Workers        int               `mapstructure:"workers"`
	TopK           int               `mapstructure:"top-k"`
	MinScore       float64           `mapstructure:"min-score"`
	ExcludeFile    string            `mapstructure:"exclude-file"`
	Heuristic      *HeuristicConfig  `mapstructure:"heuristic"`
	Server         *server.Config    `mapstructure:"server"`
	AI             *AIConfig         `mapstructure:"ai"`
	Headhunter     *HeadhunterConfig `mapstructure:"headhunter"`
}

type HeuristicConfig struct {
	MaxPhrases      int      `mapstructure:"max-phrases"`
	MaxPhraseLength int      `mapstructure:"max-phrase-length"`
	StopWords       []string `mapstructure:"stop-words"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxSkills    int    `mapstructure:"max-skills"`
	MaxLogLength int    `mapstructure:"max-log-length"`
	Instructions string `mapstructure:"instructions"`
}

type HeadhunterConfig struct {
	TokenFile string                   `mapstructure:"token-file"`
	UserAgent string                   `mapstructure:"user-agent"`
	Search    *headhunter.SearchParams `mapstructure:"search"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-ranker extracts resume attributes and ranks resumes against job descriptions",
	}
)

// Execute executes the root command. Interrupts cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	for key, env := range map[string]string{
		"headhunter.token-file":  "HH_TOKEN_FILE",
		"ai.gemini.api-key-file": "GEMINI_API_KEY_FILE",
	} {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	viper.SetDefault("dataset", "data/Resume.csv")
	viper.SetDefault("output-dir", "output")
	viper.SetDefault("jd-store", "data/jd_store.json")
	viper.SetDefault("workers", 1)
	viper.SetDefault("top-k", server.DefaultTopK)
	viper.SetDefault("server.listen", server.DefaultListen)
	viper.SetDefault("server.download-dir", "tmp")

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-ranker.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("dataset", "", "resume table (csv, pdf or docx)")
	rootCmd.PersistentFlags().Int("workers", 0, "goroutines used for parsing and scoring")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("dataset", rootCmd.PersistentFlags().Lookup("dataset"))
	viper.BindPFlag("workers", rootCmd.PersistentFlags().Lookup("workers"))
}

func initConfig() {
	// A missing .env is fine, the variables may come from the environment itself.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// Every command works with the defaults, so only an explicit or broken
	// config file is fatal.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config.Workers < 1 {
		config.Workers = 1
	}
	if config.Server == nil {
		config.Server = &server.Config{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.Headhunter == nil {
		config.Headhunter = &HeadhunterConfig{}
	}

	return config, nil
}

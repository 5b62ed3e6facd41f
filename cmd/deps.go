package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/ai/gemini"
	"github.com/spigell/resume-ranker/internal/extractor"
	"github.com/spigell/resume-ranker/internal/headhunter"
	"github.com/spigell/resume-ranker/internal/jd"
	"github.com/spigell/resume-ranker/internal/logger"
	"github.com/spigell/resume-ranker/internal/resume"
	"github.com/spigell/resume-ranker/internal/scoring"
	"github.com/spigell/resume-ranker/internal/secrets"
	"github.com/spigell/resume-ranker/internal/vocabulary"
)

// setup builds the logger and reads the config. Any failure terminates the
// process.
func setup() (*Config, *zap.Logger) {
	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		l.Fatal("getting a config", zap.Error(err))
	}

	l.Info("starting the resume-ranker", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	l.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	return config, l
}

// loadVocabulary starts from the built-in vocabularies, then applies the
// vocabulary file and finally the inline lists of the config.
func loadVocabulary(config *Config, l *zap.Logger) (vocabulary.Set, error) {
	set := vocabulary.Default()

	if config.VocabularyFile != "" {
		lists, err := vocabulary.LoadFile(config.VocabularyFile)
		if err != nil {
			return set, err
		}
		set = vocabulary.Override(set, lists)
		l.Info("vocabulary file loaded", zap.String("path", config.VocabularyFile))
	}

	set = vocabulary.Override(set, config.Vocabulary)

	l.Debug("vocabulary ready",
		zap.Int("skills", set.Skills.Len()),
		zap.Int("education", set.Education.Len()),
		zap.Int("roles", set.Roles.Len()),
	)

	return set, nil
}

// loadResumes reads the dataset. Unreadable documents are kept as empty
// resumes.
func loadResumes(config *Config, l *zap.Logger) ([]resume.Record, error) {
	records, err := resume.LoadFile(config.Dataset)
	if err != nil {
		return nil, err
	}

	for _, r := range records {
		if r.Err != nil {
			l.Warn("resume document is unreadable, scoring it as empty",
				zap.String(logger.FieldResumeID, r.ID),
				zap.Error(r.Err),
			)
		}
	}

	return records, nil
}

func newExtractor(config *Config, set vocabulary.Set, l *zap.Logger) *extractor.Extractor {
	return extractor.New(set, extractor.WithWorkers(config.Workers), extractor.WithLogger(l))
}

func newScorer(config *Config, l *zap.Logger) *scoring.Scorer {
	return scoring.New(scoring.WithWorkers(config.Workers), scoring.WithLogger(l))
}

// configuredJDs returns the job descriptions listed under the jds key.
func configuredJDs(config *Config) ([]jd.JobDescription, error) {
	if len(config.JDs) == 0 {
		return nil, nil
	}

	jds, err := jd.FromMaps(config.JDs)
	if err != nil {
		return nil, fmt.Errorf("config jds: %w", err)
	}
	return jds, nil
}

func newHeuristic(config *Config, set vocabulary.Set) *jd.HeuristicExtractor {
	h := jd.NewHeuristic(set.Skills)
	if config.Heuristic != nil {
		h.MaxPhrases = config.Heuristic.MaxPhrases
		h.MaxPhraseLength = config.Heuristic.MaxPhraseLength
		h.StopWords = config.Heuristic.StopWords
	}
	return h
}

// newSkillExtractor returns the extractor used for free-text job descriptions.
// With ai enabled Gemini is asked first and the heuristic covers its failures.
// A broken ai setup only costs the Gemini step.
func newSkillExtractor(ctx context.Context, config *Config, set vocabulary.Set, l *zap.Logger) jd.SkillExtractor {
	heuristic := newHeuristic(config, set)

	if config.AI == nil || !config.AI.Enabled {
		return heuristic
	}

	ai, err := newAIExtractor(ctx, config.AI, l)
	if err != nil {
		l.Warn("skipping ai skill extraction", zap.Error(err))
		return heuristic
	}

	return jd.Fallback(ai, heuristic, l)
}

func newAIExtractor(ctx context.Context, cfg *AIConfig, l *zap.Logger) (*gemini.SkillExtractor, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != gemini.ProviderName {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	if cfg.Gemini == nil {
		return nil, fmt.Errorf("gemini configuration is required when ai is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries,
		l.With(zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries)))
	if err != nil {
		return nil, err
	}

	skills := gemini.NewSkillExtractor(generator, cfg.Gemini.MaxSkills, cfg.Gemini.MaxLogLength,
		logger.WithProvider(l, gemini.ProviderName, generator.Model()))
	skills.SetInstructions(cfg.Gemini.Instructions)

	return skills, nil
}

func newHeadhunter(ctx context.Context, config *Config, l *zap.Logger) (*headhunter.Client, error) {
	token, err := secrets.LoadOptional(secrets.Source{
		Name: "headhunter token",
		File: config.Headhunter.TokenFile,
	})
	if err != nil {
		return nil, err
	}

	hh := headhunter.New(ctx, l, token)
	if config.Headhunter.UserAgent != "" {
		hh.UserAgent = config.Headhunter.UserAgent
	}

	return hh, nil
}

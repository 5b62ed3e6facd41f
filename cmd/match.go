package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/filtering"
	"github.com/spigell/resume-ranker/internal/jd"
	"github.com/spigell/resume-ranker/internal/logger"
	"github.com/spigell/resume-ranker/internal/report"
	"github.com/spigell/resume-ranker/internal/vocabulary"
)

const (
	PromptAll     = "ALL"
	scoresFile    = "resume_scores.csv"
	customJDID    = "CUSTOM"
	customJDTitle = "Custom JD"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Score every resume against every selected job description",
	Run: func(cmd *cobra.Command, _ []string) {
		match(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringSlice("jd", nil, "ids of saved, configured or default job descriptions")
	matchCmd.Flags().String("jd-csv", "", "a table of job descriptions (jd_id,title,skills,roles[,education])")
	matchCmd.Flags().String("jd-text", "", "free text of a single job description")
	matchCmd.Flags().BoolP("interactive", "i", false, "choose the job description from a list")
	matchCmd.Flags().Int("top", 0, "matches shown per job description")
	matchCmd.Flags().Float64("min-score", 0, "hide matches scoring below this value")
	matchCmd.Flags().StringP("exclude-file", "e", "", "a yaml list of resume ids to hide. Default is unset.")
	matchCmd.Flags().Bool("all", false, "show every match instead of the top ones per job description")
	matchCmd.Flags().Bool("flat", false, "print a flat list of rows instead of grouping by job description")

	viper.BindPFlag("top-k", matchCmd.Flags().Lookup("top"))
	viper.BindPFlag("min-score", matchCmd.Flags().Lookup("min-score"))
	viper.BindPFlag("exclude-file", matchCmd.Flags().Lookup("exclude-file"))
}

func match(cmd *cobra.Command) {
	ctx := cmd.Context()
	config, l := setup()

	set, err := loadVocabulary(config, l)
	if err != nil {
		l.Fatal("loading vocabulary", zap.Error(err))
	}

	jds, err := selectJDs(ctx, cmd, config, set, l)
	if err != nil {
		l.Fatal("selecting job descriptions", zap.Error(err))
	}
	if len(jds) == 0 {
		l.Info("exiting", zap.String("reason", "no job descriptions selected"))
		return
	}

	records, err := loadResumes(config, l)
	if err != nil {
		l.Fatal("loading resumes", zap.Error(err))
	}

	l.Info("matching resumes",
		zap.Int("resumes", len(records)),
		zap.Strings("jds", jd.IDs(jds)),
		zap.Int("workers", config.Workers),
	)

	parsed, err := newExtractor(config, set, l).ParseAll(ctx, records)
	if err != nil {
		l.Fatal("parsing resumes", zap.Error(err))
	}

	results, err := newScorer(config, l).ScoreAll(ctx, parsed, jds)
	if err != nil {
		l.Fatal("scoring resumes", zap.Error(err))
	}

	output := filepath.Join(config.OutputDir, scoresFile)
	if err := report.WriteFile(output, results); err != nil {
		l.Fatal("writing scores", zap.Error(err))
	}
	l.Info("scores saved", zap.String("filename", output), zap.Int("count", len(results)))

	filterCfg := &filtering.Config{
		MinScore:    config.MinScore,
		TopPerJD:    config.TopK,
		ExcludeFile: config.ExcludeFile,
	}

	steps := filtering.Default()
	if all, _ := cmd.Flags().GetBool("all"); all {
		filtering.DisableByName(steps, "top_per_jd", "all matches requested")
	}

	top, err := filtering.Run(ctx, filterCfg, filtering.Deps{Logger: l}, steps, results)
	if err != nil {
		l.Fatal("filtering failed", zap.Error(err))
	}
	l.Debug("filters applied", zap.Any("filters", filtering.Describe(steps)))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if flat, _ := cmd.Flags().GetBool("flat"); flat {
		if err := enc.Encode(report.Rows(top)); err != nil {
			l.Fatal("printing results", zap.Error(err))
		}
		return
	}

	summaries := report.GroupByJD(top, jds)
	for _, s := range summaries {
		if len(s.TopMatches) == 0 {
			l.Info("no matches left", logger.JDFields(s.JDID, s.JDTitle)...)
			continue
		}
		best := s.TopMatches[0]
		l.Info("best match", append(logger.JDFields(s.JDID, s.JDTitle),
			zap.String(logger.FieldResumeID, best.ResumeID),
			zap.Float64("score", best.Score),
		)...)
	}

	if err := enc.Encode(summaries); err != nil {
		l.Fatal("printing results", zap.Error(err))
	}
}

// selectJDs resolves the job descriptions to score against. Free text wins over
// a table, which wins over explicit ids and the interactive prompt. Without any
// of them the configured list is used, falling back to the built-in one.
func selectJDs(ctx context.Context, cmd *cobra.Command, config *Config, set vocabulary.Set, l *zap.Logger) ([]jd.JobDescription, error) {
	flags := cmd.Flags()

	if text, _ := flags.GetString("jd-text"); strings.TrimSpace(text) != "" {
		j, err := jd.FromText(ctx, newSkillExtractor(ctx, config, set, l), customJDID, customJDTitle, text)
		if err != nil {
			return nil, fmt.Errorf("extracting skills from jd text: %w", err)
		}
		l.Info("custom job description", zap.Strings("skills", j.Skills))
		return []jd.JobDescription{j}, nil
	}

	if path, _ := flags.GetString("jd-csv"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening jd table: %w", err)
		}
		defer f.Close()

		return jd.ReadCSV(f)
	}

	configured, err := configuredJDs(config)
	if err != nil {
		return nil, err
	}

	saved, err := jd.NewStore(config.JDStore).Load()
	if err != nil {
		l.Warn("saved job descriptions are unavailable", zap.Error(err))
	}

	if ids, _ := flags.GetStringSlice("jd"); len(ids) > 0 {
		selected := make([]jd.JobDescription, 0, len(ids))
		for _, id := range ids {
			j, ok := jd.Find(id, saved, configured, jd.Defaults())
			if !ok {
				return nil, fmt.Errorf("job description %q not found", id)
			}
			selected = append(selected, j)
		}
		return selected, nil
	}

	available := configured
	if len(available) == 0 {
		available = jd.Defaults()
	}

	if interactive, _ := flags.GetBool("interactive"); interactive {
		return promptJDs(append(append([]jd.JobDescription(nil), available...), saved...))
	}

	return available, nil
}

func promptJDs(jds []jd.JobDescription) ([]jd.JobDescription, error) {
	items := []string{PromptAll}
	for _, j := range jds {
		items = append(items, fmt.Sprintf("%s %s", j.ID, j.Title))
	}

	jdPrompt := promptui.Select{
		Label: "Choose a job description and press ENTER",
		Items: items,
	}

	idx, _, err := jdPrompt.Run()
	if err != nil {
		return nil, err
	}

	if idx == 0 {
		return jds, nil
	}
	return []jd.JobDescription{jds[idx-1]}, nil
}

package cmd

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/report"
)

const parsedFile = "parsed_resumes.csv"

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Extract skills, education and roles from the resume dataset",
	Run: func(cmd *cobra.Command, _ []string) {
		parse(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func parse(ctx context.Context) {
	config, l := setup()

	set, err := loadVocabulary(config, l)
	if err != nil {
		l.Fatal("loading vocabulary", zap.Error(err))
	}

	records, err := loadResumes(config, l)
	if err != nil {
		l.Fatal("loading resumes", zap.Error(err))
	}

	l.Info("parsing resumes", zap.Int("count", len(records)), zap.String("dataset", config.Dataset))

	parsed, err := newExtractor(config, set, l).ParseAll(ctx, records)
	if err != nil {
		l.Fatal("parsing resumes", zap.Error(err))
	}

	output := filepath.Join(config.OutputDir, parsedFile)
	if err := report.WriteParsedFile(output, parsed); err != nil {
		l.Fatal("writing parsed resumes", zap.Error(err))
	}

	l.Info("parsed resumes saved", zap.String("filename", output), zap.Int("count", len(parsed)))
}

package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/spigell/resume-ranker/internal/resume"
	"github.com/spigell/resume-ranker/internal/vocabulary"
)

const defaultVocabularyFile = "vocabulary.yaml"

var vocabCmd = &cobra.Command{
	Use:   "vocab",
	Short: "Work with attribute vocabularies",
}

var vocabBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Derive vocabularies from the resume dataset and write them as yaml",
	Run: func(cmd *cobra.Command, _ []string) {
		buildVocabulary(cmd)
	},
}

var vocabShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the vocabularies in effect after the file and config overrides",
	Run: func(_ *cobra.Command, _ []string) {
		showVocabulary()
	},
}

func init() {
	rootCmd.AddCommand(vocabCmd)
	vocabCmd.AddCommand(vocabBuildCmd, vocabShowCmd)

	vocabBuildCmd.Flags().StringP("output", "o", "", "destination file (default is vocabulary-file or "+defaultVocabularyFile+")")
}

func buildVocabulary(cmd *cobra.Command) {
	config, l := setup()

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = config.VocabularyFile
	}
	if output == "" {
		output = defaultVocabularyFile
	}

	records, err := resume.LoadFile(config.Dataset)
	if err != nil {
		l.Fatal("loading resumes", zap.Error(err))
	}

	lists := vocabulary.Build(resume.Texts(records))

	if err := vocabulary.WriteFile(output, lists); err != nil {
		l.Fatal("writing vocabulary", zap.Error(err))
	}

	l.Info("vocabulary saved",
		zap.String("filename", output),
		zap.Int("skills", len(lists.Skills)),
		zap.Int("education", len(lists.Education)),
		zap.Int("roles", len(lists.Roles)),
	)
}

func showVocabulary() {
	config, l := setup()

	set, err := loadVocabulary(config, l)
	if err != nil {
		l.Fatal("loading vocabulary", zap.Error(err))
	}

	enc := yaml.NewEncoder(os.Stdout)
	defer enc.Close()
	if err := enc.Encode(set.Lists()); err != nil {
		l.Fatal("printing vocabulary", zap.Error(err))
	}
}

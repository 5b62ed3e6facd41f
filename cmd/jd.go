package cmd

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/headhunter"
	"github.com/spigell/resume-ranker/internal/jd"
	"github.com/spigell/resume-ranker/internal/logger"
)

var jdCmd = &cobra.Command{
	Use:   "jd",
	Short: "Manage saved job descriptions",
}

var jdListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the default, configured and saved job descriptions",
	Run: func(_ *cobra.Command, _ []string) {
		listJDs()
	},
}

var jdAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Save a job description built from text or an explicit skill list",
	Run: func(cmd *cobra.Command, _ []string) {
		addJD(cmd)
	},
}

var jdImportCmd = &cobra.Command{
	Use:   "import-hh",
	Short: "Save job descriptions built from hh.ru vacancies",
	Run: func(cmd *cobra.Command, _ []string) {
		importHH(cmd)
	},
}

func init() {
	rootCmd.AddCommand(jdCmd)
	jdCmd.AddCommand(jdListCmd, jdAddCmd, jdImportCmd)

	jdAddCmd.Flags().String("title", "", "title of the job description")
	jdAddCmd.Flags().String("text", "", "free text to extract skills from")
	jdAddCmd.Flags().String("skills", "", "comma separated skills, used instead of the text")
	jdAddCmd.Flags().String("roles", "", "comma separated roles")

	jdImportCmd.Flags().String("text", "", "search text, overrides headhunter.search.text")
	jdImportCmd.Flags().Int("limit", 10, "maximum vacancies to import, 0 imports everything found")
}

func listJDs() {
	config, l := setup()

	configured, err := configuredJDs(config)
	if err != nil {
		l.Fatal("loading configured job descriptions", zap.Error(err))
	}

	saved, err := jd.NewStore(config.JDStore).Load()
	if err != nil {
		l.Fatal("loading saved job descriptions", zap.Error(err))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	err = enc.Encode(map[string][]jd.JobDescription{
		"default_jds":    jd.Defaults(),
		"configured_jds": configured,
		"saved_jds":      saved,
	})
	if err != nil {
		l.Fatal("printing job descriptions", zap.Error(err))
	}
}

func addJD(cmd *cobra.Command) {
	ctx := cmd.Context()
	config, l := setup()
	flags := cmd.Flags()

	title, _ := flags.GetString("title")
	text, _ := flags.GetString("text")
	skills, _ := flags.GetString("skills")
	roles, _ := flags.GetString("roles")

	if strings.TrimSpace(text) == "" && strings.TrimSpace(skills) == "" {
		l.Fatal("either --text or --skills is required")
	}
	if strings.TrimSpace(title) == "" {
		title = customJDTitle
	}

	var extractor jd.SkillExtractor = jd.StaticSkills(jd.SplitList(skills))
	if strings.TrimSpace(skills) == "" {
		set, err := loadVocabulary(config, l)
		if err != nil {
			l.Fatal("loading vocabulary", zap.Error(err))
		}
		extractor = newSkillExtractor(ctx, config, set, l)
	}

	j, err := jd.FromText(ctx, extractor, "", title, text)
	if err != nil {
		l.Fatal("extracting skills", zap.Error(err))
	}
	if r := jd.SplitList(roles); len(r) > 0 {
		j.Roles = r
	}

	store := jd.NewStore(config.JDStore)
	saved, err := store.Add(j)
	if err != nil {
		l.Fatal("saving job description", zap.Error(err))
	}

	l.Info("job description saved", append(logger.JDFields(saved.ID, saved.Title),
		zap.Strings("skills", saved.Skills),
		zap.String("store", store.Path()),
	)...)
}

func importHH(cmd *cobra.Command) {
	ctx := cmd.Context()
	config, l := setup()
	flags := cmd.Flags()

	params := config.Headhunter.Search
	if params == nil {
		params = &headhunter.SearchParams{}
	}
	if text, _ := flags.GetString("text"); text != "" {
		params.Text = text
	}
	if params.Text == "" {
		l.Fatal("search text is required",
			zap.String("hint", "pass --text or set headhunter.search.text in the configuration file"),
		)
	}
	limit, _ := flags.GetInt("limit")

	set, err := loadVocabulary(config, l)
	if err != nil {
		l.Fatal("loading vocabulary", zap.Error(err))
	}

	hh, err := newHeadhunter(ctx, config, l)
	if err != nil {
		l.Fatal(
			"loading headhunter token",
			zap.Error(err),
			zap.String("hint", "set HH_TOKEN_FILE environment variable or the 'headhunter.token-file' key in the configuration file"),
		)
	}

	l.Info("starting the search", zap.String("search", params.Text), zap.Int("limit", limit))

	jds, err := hh.Import(params, limit, newSkillExtractor(ctx, config, set, l))
	if err != nil {
		l.Fatal("importing vacancies", zap.Error(err))
	}

	store := jd.NewStore(config.JDStore)

	imported := 0
	for _, j := range jds {
		_, ok, err := store.Find(j.ID)
		if err != nil {
			l.Fatal("loading saved job descriptions", zap.Error(err))
		}
		if ok {
			l.Debug("vacancy already saved", logger.JDFields(j.ID, j.Title)...)
			continue
		}
		if _, err := store.Add(j); err != nil {
			l.Fatal("saving job description", zap.Error(err))
		}
		imported++
	}

	l.Info("vacancies imported",
		zap.Int("found", len(jds)),
		zap.Int("saved", imported),
		zap.String("store", store.Path()),
	)
}

package cmd

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/jd"
	"github.com/spigell/resume-ranker/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web interface for uploading resumes and job descriptions",
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "address to listen on (default is "+server.DefaultListen+")")

	viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen"))
}

func serve(cmd *cobra.Command) {
	ctx := cmd.Context()
	config, l := setup()

	if !viper.GetBool("debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	set, err := loadVocabulary(config, l)
	if err != nil {
		l.Fatal("loading vocabulary", zap.Error(err))
	}

	store := jd.NewStore(config.JDStore)
	if err := store.Init(); err != nil {
		l.Fatal("initializing jd store", zap.Error(err), zap.String("path", config.JDStore))
	}

	srvCfg := *config.Server
	srvCfg.Dataset = config.Dataset
	srvCfg.TopK = config.TopK

	srv := server.New(srvCfg, server.Deps{
		Store:     store,
		Extractor: newExtractor(config, set, l),
		Scorer:    newScorer(config, l),
		Skills:    newSkillExtractor(ctx, config, set, l),
		Logger:    l,
	})

	if err := srv.Run(ctx); err != nil {
		l.Fatal("http server", zap.Error(err))
	}

	l.Info("exiting", zap.String("reason", "http server stopped"))
}

package cmd

import (
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/teamkeel/dataservice/config"
	"github.com/teamkeel/dataservice/infra"
	"github.com/teamkeel/dataservice/runtime"
	"github.com/teamkeel/dataservice/runtime/actions"
	"github.com/teamkeel/dataservice/runtime/permissions"
	"github.com/teamkeel/dataservice/runtime/runtimectx"
)

var flagConfig string

var rootCmd = &cobra.Command{
	Use:           "dataservice",
	Short:         "Query resource sets over a relational store",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "path to a config file")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Prints the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(runtime.GetVersion())
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// session is everything a command needs to run queries.
type session struct {
	ctx      context.Context
	runtime  *runtime.Runtime
	shutdown func(context.Context) error
}

func newSession(ctx context.Context) (*session, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	if cfg.Log.Level != "" {
		level, err := log.ParseLevel(cfg.Log.Level)
		if err != nil {
			return nil, err
		}
		log.SetLevel(level)
	}

	shutdown, err := setupTracing(ctx, cfg.Tracing.Endpoint)
	if err != nil {
		return nil, err
	}

	s, err := infra.GetSchema(cfg.Schema.File)
	if err != nil {
		return nil, err
	}

	db, err := infra.GetDatabase(cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	var authoriser actions.Authoriser = actions.AllowAll{}
	if cfg.Authorisation.Policy != "" {
		authoriser, err = permissions.NewEnforcerFromFile(cfg.Authorisation.Policy)
		if err != nil {
			return nil, err
		}
	} else {
		log.Warn("no authorisation policy configured, all reads are allowed")
	}

	if cfg.Authorisation.Role != "" {
		ctx = runtimectx.WithIdentity(ctx, runtimectx.Identity{Role: cfg.Authorisation.Role})
	}

	options := actions.Options{
		LargeCollectionThreshold: cfg.Query.LargeCollectionThreshold,
		ChunkSize:                cfg.Query.ChunkSize,
	}

	return &session{
		ctx:      ctx,
		runtime:  runtime.New(s, db, authoriser, options),
		shutdown: shutdown,
	}, nil
}

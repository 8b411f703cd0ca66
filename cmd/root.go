package cmd

import (
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"

	"go-reader/config"
	"go-reader/internal/database"
	"go-reader/internal/service"
	"go-reader/internal/source"
)

func RootApp() *cli.App {
	return &cli.App{
		Name:  "go-reader",
		Usage: "Subscribe to RSS/Atom feeds and keep their articles in sync",
		Description: `go-reader polls registered feeds, stores every new entry once
		(entries are identified by their link across all feeds) and tracks
		read state per article. It serves a JSON API for managing feeds and
		reading articles.

		Most settings come from the YAML config file and can be overridden
		with environment variables, e.g. DB_PATH, PORT, SYNC_WORKERS.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML config file",
				Value:   "config.yaml",
				EnvVars: []string{"READER_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			serveCmd(),
			syncCmd(),
			migrateCmd(),
		},
		Action: func(ctx *cli.Context) error {
			return cli.ShowAppHelp(ctx)
		},
	}
}

// app holds what every command needs once config is loaded.
type app struct {
	cfg      *config.Config
	db       *gorm.DB
	feeds    *service.FeedService
	articles *service.ArticleService
	sync     *service.SyncService
	status   *service.StatusService
}

func setup(ctx *cli.Context) (*app, error) {
	cfg, err := config.Load(ctx.String("config"))
	if err != nil {
		return nil, err
	}
	if err := cfg.ConfigureLogger(); err != nil {
		return nil, err
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	src := source.NewFetcher(source.Options{
		Timeout:      cfg.Sync.FetchTimeout,
		UserAgent:    cfg.Sync.UserAgent,
		HostInterval: cfg.Sync.HostInterval,
	})

	return &app{
		cfg:      cfg,
		db:       db,
		feeds:    service.NewFeedService(db, src),
		articles: service.NewArticleService(db),
		sync:     service.NewSyncService(db, src, cfg.Sync.Workers),
		status:   service.NewStatusService(db),
	}, nil
}

func (a *app) close() {
	_ = database.Close(a.db)
}

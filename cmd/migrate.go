package cmd

import (
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func migrateCmd() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Create or update the database schema and exit",
		Action: func(ctx *cli.Context) error {
			// setup migrates as part of opening the database
			a, err := setup(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			log.WithField("path", a.cfg.Database.Path).Info("Database schema is up to date")
			return nil
		},
	}
}

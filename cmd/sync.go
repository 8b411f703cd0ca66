package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

func syncCmd() *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Sync feeds once and exit",
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:  "feed",
				Usage: "Only sync the feed with this id",
			},
		},
		Action: func(ctx *cli.Context) error {
			a, err := setup(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			if id := ctx.Uint("feed"); id != 0 {
				added, err := a.sync.SyncOne(ctx.Context, id)
				if err != nil {
					return err
				}
				fmt.Fprintf(ctx.App.Writer, "feed %d: %d new articles\n", id, added)
				return nil
			}

			result, err := a.sync.SyncAll(ctx.Context)
			if err != nil {
				return err
			}
			for _, r := range result.Feeds {
				if r.Failed() {
					fmt.Fprintf(ctx.App.Writer, "feed %d: failed: %s\n", r.FeedID, r.Error)
					continue
				}
				fmt.Fprintf(ctx.App.Writer, "feed %d: %d new articles\n", r.FeedID, r.Added)
			}
			fmt.Fprintf(ctx.App.Writer, "total: %d new articles\n", result.TotalAdded)
			return nil
		},
	}
}

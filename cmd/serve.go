package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"go-reader/internal/handler"
	"go-reader/internal/scheduler"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the HTTP API and sync feeds on a schedule",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-cron",
				Usage: "Disable scheduled syncs",
			},
		},
		Action: func(ctx *cli.Context) error {
			a, err := setup(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			gin.SetMode(a.cfg.Server.Mode)
			r := gin.Default()

			h := handler.NewHandler(a.feeds, a.articles, a.sync, a.status)
			h.RegisterRoutes(r)

			if a.cfg.Cron.Enabled && !ctx.Bool("no-cron") {
				sched := scheduler.NewScheduler(a.sync, a.cfg.Cron.FetchInterval)
				if err := sched.Start(); err != nil {
					return err
				}
				defer sched.Stop()
				h.SetScheduler(sched)
			}

			srv := &http.Server{
				Addr:    a.cfg.GetServerAddress(),
				Handler: r,
			}

			sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				log.WithField("addr", srv.Addr).Info("Server starting")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-sigCtx.Done():
			}

			log.Info("Gracefully shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

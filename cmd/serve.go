/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"blogroll/server"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func serveCmd() *cli.Command {
	flags := append(configFlags(), cacheFlags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:    "hostname",
			Value:   "",
			Usage:   "Interface to listen on, empty listens on all",
			EnvVars: []string{"BLOGROLL_HOSTNAME"},
		},
		&cli.IntFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Value:   3000,
			Usage:   "Port to listen on",
			EnvVars: []string{"BLOGROLL_PORT"},
		},
		&cli.DurationFlag{
			Name:    "tidy-interval",
			Value:   time.Hour,
			Usage:   "How often expired responses are removed from the sqlite cache",
			EnvVars: []string{"BLOGROLL_TIDY_INTERVAL"},
		},
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the aggregated feed",
		Description: `Starts the blogroll HTTP server.

Every request that misses the response cache reads the source list, fetches
all feeds concurrently and answers with the merged entries, newest first.`,
		Flags: flags,
		Action: func(ctx *cli.Context) error {
			cfg, err := resolveConfig(ctx)
			if err != nil {
				return err
			}

			responseCache, sqliteCache, err := newCache(cfg)
			if err != nil {
				return err
			}

			app := server.Server(&server.ServerConfig{
				SourceListURL: cfg.SourceListURL,
				CacheTTL:      cfg.CacheTTL(),
				Sources:       newSourceLoader(cfg),
				Aggregator:    newAggregator(cfg),
				Cache:         responseCache,
			})

			tidyCtx, stopTidy := context.WithCancel(ctx.Context)
			defer stopTidy()

			var wg sync.WaitGroup
			if sqliteCache != nil {
				wg.Add(1)
				go func() {
					defer wg.Done()
					sqliteCache.TidyEvery(tidyCtx, ctx.Duration("tidy-interval"))
				}()
			}

			// Graceful shutdown
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			go func() {
				<-sigChan
				log.Info("Gracefully shutting down...")
				if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
					log.WithError(err).Error("Error shutting down server")
				}
			}()

			host := fmt.Sprintf("%s:%d", ctx.String("hostname"), ctx.Int("port"))
			log.WithFields(log.Fields{
				"address":     host,
				"source_list": cfg.SourceListURL,
				"cache":       cfg.CacheBackend,
			}).Info("Starting server")

			// Listen blocks until the server is shut down
			listenErr := app.Listen(host)

			stopTidy()
			wg.Wait()
			if sqliteCache != nil {
				if err := sqliteCache.Close(); err != nil {
					log.WithError(err).Error("Error closing cache database")
				}
			}

			if listenErr != nil {
				return listenErr
			}
			log.Info("Done!")
			return nil
		},
	}
}

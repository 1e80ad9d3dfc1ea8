/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func RootApp() *cli.App {
	return &cli.App{
		Name:  "blogroll",
		Usage: "Aggregate the feeds of a blogroll into one list of entries",
		Description: `Blogroll reads a list of RSS and Atom feeds, fetches them all
		concurrently and merges their entries into a single list, newest first.

		The result is served as JSON over HTTP with permissive CORS so any
		website can show what the blogs it links to have been writing.

		Flags can generally be set via environment variables, e.g.:

		--source-list-url => BLOGROLL_SOURCE_LIST_URL=https://example.com/friends.json
		--port => BLOGROLL_PORT=8080
		`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level: trace, debug, info, warn, error",
				EnvVars: []string{"BLOGROLL_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   "text",
				Usage:   "Log format: text or json",
				EnvVars: []string{"BLOGROLL_LOG_FORMAT"},
			},
		},
		Before: func(ctx *cli.Context) error {
			return setupLogging(ctx.String("log-level"), ctx.String("log-format"))
		},
		Commands: []*cli.Command{
			serveCmd(),
			fetchCmd(),
			sourcesCmd(),
			migrateCmd(),
			rollbackCmd(),
			tidyCmd(),
		},
		Action: func(ctx *cli.Context) error {
			// Show help if no command is specified
			return ctx.App.Run([]string{"", "help"})
		},
	}
}

func setupLogging(level, format string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	log.SetLevel(lvl)

	switch format {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	case "text":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("invalid log format %q", format)
	}
	return nil
}

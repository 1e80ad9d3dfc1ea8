/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"blogroll/models"
	"blogroll/sources"

	"github.com/cqroot/prompt"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func sourcesCmd() *cli.Command {
	return &cli.Command{
		Name:  "sources",
		Usage: "Inspect and edit the source list",
		Subcommands: []*cli.Command{
			sourcesListCmd(),
			sourcesAddCmd(),
		},
	}
}

func sourcesListCmd() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "Print the usable sources of the configured source list",
		Flags: configFlags(),
		Action: func(ctx *cli.Context) error {
			log.SetOutput(os.Stderr)

			cfg, err := resolveConfig(ctx)
			if err != nil {
				return err
			}

			list, err := newSourceLoader(cfg).Load(ctx.Context, cfg.SourceListURL)
			if err != nil {
				return err
			}

			for _, source := range list {
				fmt.Printf("%s\t%s\n", source.Name, source.FeedURL)
			}
			return nil
		},
	}
}

func sourcesAddCmd() *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Add a source to a local TOML source list",
		Description: `Prompts for the name, feed url and site url of a source and appends
it to the source list file. The file is created when it does not exist.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Value:   "sources.toml",
				Usage:   "Path to the TOML source list",
				EnvVars: []string{"BLOGROLL_SOURCES_FILE"},
			},
		},
		Action: func(ctx *cli.Context) error {
			name, err := prompt.New().Ask("Name:").Input("")
			if err != nil {
				return err
			}

			feedURL, err := prompt.New().Ask("Feed URL:").Input("https://")
			if err != nil {
				return err
			}
			if u, err := url.Parse(strings.TrimSpace(feedURL)); err != nil || u.Host == "" {
				return fmt.Errorf("invalid feed url %q", feedURL)
			}

			siteURL, err := prompt.New().Ask("Site URL (optional):").Input("")
			if err != nil {
				return err
			}

			source := models.Source{
				Name:    strings.TrimSpace(name),
				FeedURL: strings.TrimSpace(feedURL),
				SiteURL: strings.TrimSpace(siteURL),
			}
			if source.Name == "" {
				return fmt.Errorf("a source needs a name")
			}

			file := ctx.String("file")
			if err := sources.AppendToFile(file, source); err != nil {
				return err
			}

			log.WithFields(log.Fields{
				"name": source.Name,
				"feed": source.FeedURL,
				"file": file,
			}).Info("Added source")
			return nil
		},
	}
}

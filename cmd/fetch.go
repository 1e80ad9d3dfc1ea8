/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func fetchCmd() *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Run a single aggregation pass and print the entries",
		Description: `Reads the source list, fetches every feed and prints the merged
entries as a JSON array, exactly as the server would answer.

Prints all other log messages to stderr, so the output can be piped to a
tool like jq.`,
		Flags: configFlags(),
		Action: func(ctx *cli.Context) error {
			// Keep stdout for the entries
			log.SetOutput(os.Stderr)

			cfg, err := resolveConfig(ctx)
			if err != nil {
				return err
			}

			list, err := newSourceLoader(cfg).Load(ctx.Context, cfg.SourceListURL)
			if err != nil {
				return err
			}

			entries := newAggregator(cfg).Aggregate(ctx.Context, list)

			out, err := json.MarshalIndent(entries, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}

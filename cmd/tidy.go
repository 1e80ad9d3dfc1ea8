/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"blogroll/db"

	"github.com/urfave/cli/v2"
)

func tidyCmd() *cli.Command {
	return &cli.Command{
		Name:  "tidy",
		Usage: "Tidy up the database",
		Description: `Tidy up the database by removing expired responses.

The server skips expired responses on its own, this only keeps the database
size down. A running server with the sqlite cache also tidies periodically.`,
		Flags: []cli.Flag{
			databaseFlag(),
		},
		Action: func(ctx *cli.Context) error {
			removed, err := db.Tidy(ctx.String("database"))
			if err != nil {
				return err
			}
			fmt.Println("Removed responses:", removed)
			return nil
		},
	}
}

package main

import (
	"context"
	"fmt"

	"github.com/rxtech-lab/stockview/internal/config"
	"github.com/urfave/cli/v3"
)

func schemaCommand() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Write the config JSON schema and a sample config",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagOut,
				Aliases: []string{"o"},
				Usage:   "Output directory",
				Value:   "./config",
			},
		},
		Action: schemaAction,
	}
}

func schemaAction(_ context.Context, cmd *cli.Command) error {
	schemaPath, samplePath, written, err := config.WriteSchemaFiles(cmd.String(flagOut))
	if err != nil {
		return err
	}

	out := stdout(cmd)

	if written {
		if _, err := fmt.Fprintf(out, "Sample config written to %s\n", samplePath); err != nil {
			return err
		}
	}

	_, err = fmt.Fprintf(out, "Schema written to %s\n", schemaPath)

	return err
}

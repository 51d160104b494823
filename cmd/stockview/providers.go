package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rxtech-lab/stockview/pkg/marketdata"
	"github.com/urfave/cli/v3"
)

func providersCommand() *cli.Command {
	return &cli.Command{
		Name:  "providers",
		Usage: "List the supported data providers",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  flagJSON,
				Usage: "Print the list as JSON",
			},
		},
		Action: providersAction,
	}
}

func providersAction(_ context.Context, cmd *cli.Command) error {
	providers := marketdata.GetProviders()
	out := stdout(cmd)

	if cmd.Bool(flagJSON) {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")

		return encoder.Encode(providers)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("NAME", "DISPLAY NAME", "AUTH", "COMPANY INFO", "DESCRIPTION")

	for _, p := range providers {
		t.Row(p.Name, p.DisplayName, strconv.FormatBool(p.RequiresAuth), strconv.FormatBool(p.HasCompanyInfo), p.Description)
	}

	_, err := fmt.Fprintln(out, t.String())

	return err
}

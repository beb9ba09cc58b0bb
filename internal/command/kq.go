// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/staranto/swgohctlgo/internal/kyrotech"
	"github.com/staranto/swgohctlgo/internal/meta"
	"github.com/staranto/swgohctlgo/internal/output"
)

// Salvage ids mapped to report column names.
var salvageColumns = map[string]string{
	"172Salvage": "shock_prod",
	"173Salvage": "battle_computer",
	"174Salvage": "power_cell",
}

var kqColumns = []string{"rank", "name", "gear", "power_cell", "shock_prod", "battle_computer", "total"}

// KqCommandAction is the action handler for the "kq" subcommand. It ranks a
// player's roster by outstanding Kyrotech salvage to gear 13.
func KqCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	allyCode := cmd.Args().First()
	if allyCode == "" {
		return errors.New("an ally code is required")
	}

	client, err := InitClient()
	if err != nil {
		return err
	}

	log.Info("loading units catalog")
	units, err := client.Units(ctx)
	if err != nil {
		return err
	}

	log.Info("loading gear recipes")
	gear, err := client.Gear(ctx)
	if err != nil {
		return err
	}

	log.Infof("loading roster for %s", allyCode)
	player, err := client.Player(ctx, allyCode)
	if err != nil {
		return err
	}

	analyzer := kyrotech.NewAnalyzer(gear)
	catalog := units.ByID()

	var results []kyrotech.CharacterNeed
	if unitID := cmd.String("unit"); unitID != "" {
		need, err := analyzer.UnitNeeds(unitID, player.Units, catalog)
		if err != nil {
			return err
		}
		results = []kyrotech.CharacterNeed{need}
	} else {
		results, err = analyzer.RankRoster(player.Units, catalog)
		if err != nil {
			return err
		}
	}

	if len(results) == 0 {
		fmt.Println("No characters need kyrotech gear.")
		return nil
	}

	rows := make([]output.Row, 0, len(results))
	grand := 0
	for i, r := range results {
		row := output.Row{
			"rank":  i + 1,
			"name":  r.Name,
			"gear":  fmt.Sprintf("G%d", r.GearLevel),
			"total": r.Total,
		}
		for id, col := range salvageColumns {
			row[col] = r.Needs[id]
		}
		rows = append(rows, row)
		grand += r.Total
	}

	if err := output.Spit(rows, kqColumns, cmd, os.Stdout); err != nil {
		return err
	}

	fmt.Printf("\n%d characters need %s kyrotech salvage in total\n",
		len(results), humanize.Comma(int64(grand)))

	return nil
}

// KqCommandBuilder constructs the cli.Command for "kq", wiring metadata,
// flags, and action/validator handlers.
func KqCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "kq",
		Usage:     "kyrotech query",
		UsageText: `swgohctl kq <ally-code> [options]`,
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "unit",
				Aliases: []string{"u"},
				Usage:   "restrict the report to a single unit base_id",
			},
		}, NewGlobalFlags("kq")...),
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := GlobalFlagsValidator(ctx, c); err != nil {
				return err
			}
			return KqCommandAction(ctx, c)
		},
	}
}

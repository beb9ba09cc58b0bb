// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/apex/log"
	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/swgohctlgo/internal/meta"
	"github.com/staranto/swgohctlgo/internal/output"
	"github.com/staranto/swgohctlgo/internal/platoon"
)

var pqColumns = []string{"phase", "territory", "filled", "slots", "pct", "gaps"}

var unicornColumns = []string{"unit", "min_relic", "owners", "owner_count", "slots_needed"}

// PqCommandAction is the action handler for the "pq" subcommand. It evaluates
// territory battle platoon coverage for the guild of the given ally code.
func PqCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	allyCode := cmd.Args().First()
	if allyCode == "" {
		return errors.New("an ally code is required")
	}

	reqs, err := platoon.LoadRequirements(cmd.String("requirements"))
	if err != nil {
		return err
	}

	client, err := InitClient()
	if err != nil {
		return err
	}

	guild, err := client.GuildFromAllyCode(ctx, allyCode)
	if err != nil {
		return err
	}
	log.Infof("guild %s (%d members)", guild.Data.Name, len(guild.Data.Members))

	units, err := client.Units(ctx)
	if err != nil {
		return err
	}

	rosters, err := client.GuildRosters(ctx, guild.Data.Members)
	if err != nil {
		return err
	}

	matrix := platoon.BuildMatrix(rosters, units.ByID(), guild.Data.Name, guild.Data.ID)
	log.Debugf("matrix covers %d units", len(matrix.Units))

	results, err := platoon.Coverage(matrix, reqs, cmd.String("max-phase"))
	if err != nil {
		return err
	}

	fmt.Printf("Guild: %s | Members: %d\n\n", guild.Data.Name, matrix.MemberCount)

	rows := make([]output.Row, 0, len(results))
	for _, r := range results {
		rows = append(rows, output.Row{
			"phase":     r.Phase,
			"territory": r.Territory,
			"filled":    r.FilledSlots,
			"slots":     r.TotalSlots,
			"pct":       r.Percentage,
			"gaps":      strings.Join(r.CriticalGaps, " "),
		})
	}

	if err := output.Spit(rows, pqColumns, cmd, os.Stdout); err != nil {
		return err
	}

	if cmd.Bool("unicorns") {
		unicorns := platoon.Unicorns(matrix, reqs)
		if len(unicorns) > 0 {
			fmt.Println("\nThinly-owned required units:")
			urows := make([]output.Row, 0, len(unicorns))
			for _, u := range unicorns {
				urows = append(urows, output.Row{
					"unit":         u.Name,
					"min_relic":    u.MinRelic,
					"owners":       strings.Join(u.Owners, " "),
					"owner_count":  u.OwnerCount,
					"slots_needed": u.TotalSlots,
				})
			}
			if err := output.Spit(urows, unicornColumns, cmd, os.Stdout); err != nil {
				return err
			}
		}
	}

	return nil
}

// PqCommandBuilder constructs the cli.Command for "pq", wiring metadata,
// flags, and action/validator handlers.
func PqCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "pq",
		Usage:     "platoon coverage query",
		UsageText: `swgohctl pq <ally-code> [options]`,
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "max-phase",
				Aliases: []string{"p"},
				Usage:   "only evaluate phases at or before this one",
				Validator: func(value string) error {
					return FlagValidators(value, PhaseValidator)
				},
			},
			&cli.StringFlag{
				Name:    "requirements",
				Aliases: []string{"r"},
				Usage:   "path to the platoon requirements file",
				Sources: cli.NewValueSourceChain(
					yaml.YAML("pq.requirements", altsrc.StringSourcer(meta.Config.Source)),
					yaml.YAML("requirements", altsrc.StringSourcer(meta.Config.Source)),
				),
				Value: "data/platoon_requirements.json",
			},
			&cli.BoolFlag{
				Name:  "unicorns",
				Usage: "include units owned by 3 or fewer members",
			},
		}, NewGlobalFlags("pq")...),
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := GlobalFlagsValidator(ctx, c); err != nil {
				return err
			}
			return PqCommandAction(ctx, c)
		},
	}
}

// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/staranto/swgohctlgo/internal/cache"
	"github.com/staranto/swgohctlgo/internal/meta"
)

// CqCommandAction is the action handler for the "cache" subcommand. Deleting
// cache entries is the documented recovery path after a bad fetch.
func CqCommandAction(ctx context.Context, cmd *cli.Command) error {
	dir, ok := cache.Dir()
	if !ok {
		return errors.New("cache directory cannot be resolved")
	}
	store := cache.NewStore(dir)

	switch {
	case cmd.Bool("clear"):
		if err := store.Clear(); err != nil {
			return err
		}
		fmt.Printf("Cleared cache at %s\n", dir)
	case cmd.Bool("purge"):
		maxAge := cmd.Duration("older-than")
		if err := store.Purge(maxAge); err != nil {
			return err
		}
		fmt.Printf("Purged entries older than %s from %s\n", maxAge, dir)
	default:
		fmt.Println(dir)
	}

	return nil
}

// CqCommandBuilder constructs the cli.Command for "cache".
func CqCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "cache",
		Usage:     "inspect or delete the local response cache",
		UsageText: `swgohctl cache [--clear | --purge [--older-than D]]`,
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "clear",
				Usage: "remove every cache entry",
			},
			&cli.BoolFlag{
				Name:  "purge",
				Usage: "remove expired cache entries",
			},
			&cli.DurationFlag{
				Name:  "older-than",
				Usage: "age beyond which --purge removes entries",
				Value: time.Hour,
			},
		},
		Action: CqCommandAction,
	}
}

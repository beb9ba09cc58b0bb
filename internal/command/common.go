// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/swgohctlgo/internal/meta"
	"github.com/staranto/swgohctlgo/internal/swgoh"
)

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// InitClient builds the API client from the environment. Missing credentials
// surface here, before any fetch starts.
func InitClient() (*swgoh.Client, error) {
	client, err := swgoh.NewClient()
	if err != nil {
		return nil, err
	}
	log.Debug("client ready")
	return client, nil
}

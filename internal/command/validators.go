// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/staranto/swgohctlgo/internal/platoon"
)

func GlobalFlagsValidator(ctx context.Context, c *cli.Command) error {
	return nil
}

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

func OutputValidator(value any) error {
	var validOutputFlagValues = []string{"text", "json", "yaml"}
	valid := false
	for _, v := range validOutputFlagValues {
		if v == value {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("must be one of %v", validOutputFlagValues)
	}
	return nil
}

// PhaseValidator restricts --max-phase to the declared phase enumeration. An
// empty value means no ceiling.
func PhaseValidator(value any) error {
	phase, ok := value.(string)
	if !ok || phase == "" {
		return nil
	}
	if _, ok := platoon.PhaseIndex(phase); !ok {
		return fmt.Errorf("must be one of %v", platoon.Phases)
	}
	return nil
}

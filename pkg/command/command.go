// Package command holds what every m365 command shares: option binding,
// option sets, validation, telemetry and the error type surfaced to the
// CLI exit path.
package command

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// OptionSet names mutually exclusive options of which exactly one must be given.
type OptionSet []string

// Validator checks options after they were parsed. A non-nil error rejects
// the invocation with the error's message.
type Validator func() error

// Spec describes how a command's options are checked.
type Spec struct {
	OptionSets []OptionSet
	Validators []Validator
}

// CheckOptionSets verifies that exactly one option of every set is present.
func CheckOptionSets(sets []OptionSet, isSet func(name string) bool) error {
	for _, set := range sets {
		n := 0
		for _, name := range set {
			if isSet(name) {
				n++
			}
		}
		switch {
		case n == 0:
			return Validation(fmt.Sprintf("Specify one of the following options: %s.", strings.Join(set, ", ")))
		case n > 1:
			return Validation(fmt.Sprintf("Specify one of the following options: %s, but not multiple.", strings.Join(set, ", ")))
		}
	}
	return nil
}

// Validate runs option sets and then validators, stopping at the first failure.
func (s Spec) Validate(isSet func(name string) bool) error {
	if err := CheckOptionSets(s.OptionSets, isSet); err != nil {
		return err
	}
	for _, v := range s.Validators {
		if err := v(); err != nil {
			if cmdErr, ok := AsError(err); ok {
				return cmdErr
			}
			return &Error{Code: ErrCodeValidation, Message: err.Error(), Cause: err}
		}
	}
	return nil
}

// Telemetry records which options of flagSet were supplied.
func Telemetry(flagSet *pflag.FlagSet) map[string]bool {
	props := make(map[string]bool)
	flagSet.VisitAll(func(f *pflag.Flag) {
		if f.Name == "help" {
			return
		}
		props[f.Name] = f.Changed
	})
	return props
}

// Invocation is one run of a command.
type Invocation struct {
	// Name is the full command name, e.g. "spo list add".
	Name string

	// Flags are the command's own options.
	Flags *pflag.FlagSet

	Logger *zap.Logger
}

// Run records telemetry, validates inv against spec and runs action.
// Every failure comes back as *Error.
func Run(ctx context.Context, inv Invocation, spec Spec, action func(ctx context.Context) error) error {
	log := inv.Logger
	if log == nil {
		log = zap.NewNop()
	}

	props := Telemetry(inv.Flags)
	supplied := make([]string, 0, len(props))
	for name, set := range props {
		if set {
			supplied = append(supplied, name)
		}
	}
	sort.Strings(supplied)
	log.Debug("telemetry",
		zap.String("command", inv.Name),
		zap.Strings("options", supplied),
	)

	if err := spec.Validate(inv.Flags.Changed); err != nil {
		return err
	}

	if err := action(ctx); err != nil {
		return Wrap(err)
	}
	return nil
}

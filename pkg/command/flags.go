package command

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// BindFlags registers a pflag entry for each tagged field of options, which
// must be a pointer to a struct, and returns the names of required flags.
//
// Tags:
//
//   - flag:"name" or flag:"name,n": long name and optional shorthand.
//     Fields without it are skipped.
//   - desc:"help text"
//   - default:"value", parsed according to the field type.
//   - required:"true"
//
// Supported field types are string and bool. Options that take numbers
// are strings validated by the command. Embedded structs are bound
// recursively.
func BindFlags(flagSet *pflag.FlagSet, options any) ([]string, error) {
	value := reflect.ValueOf(options)
	if value.Kind() != reflect.Ptr || value.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("options must be a pointer to a struct, got %T", options)
	}
	var required []string
	if err := bindStruct(value.Elem(), flagSet, &required); err != nil {
		return nil, err
	}
	return required, nil
}

// MustBindFlags binds options to the local flags of cmd and marks required
// flags on it. It panics on malformed option structs.
func MustBindFlags(cmd *cobra.Command, options any) {
	required, err := BindFlags(cmd.Flags(), options)
	if err != nil {
		panic(fmt.Sprintf("command %q: %v", cmd.Name(), err))
	}
	for _, name := range required {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("command %q: %v", cmd.Name(), err))
		}
	}
}

func bindStruct(structValue reflect.Value, flagSet *pflag.FlagSet, required *[]string) error {
	structType := structValue.Type()

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		fieldValue := structValue.Field(i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			if err := bindStruct(fieldValue, flagSet, required); err != nil {
				return fmt.Errorf("embedded %s: %w", field.Name, err)
			}
			continue
		}

		tag := field.Tag.Get("flag")
		if tag == "" {
			continue
		}
		if !fieldValue.CanAddr() {
			return fmt.Errorf("field %s: not addressable", field.Name)
		}

		name, shorthand, _ := strings.Cut(tag, ",")
		if err := bindField(fieldValue, flagSet, name, shorthand, field.Tag.Get("desc"), field.Tag.Get("default")); err != nil {
			return fmt.Errorf("field %s: %w", field.Name, err)
		}
		if field.Tag.Get("required") == "true" {
			*required = append(*required, name)
		}
	}

	return nil
}

func bindField(fieldValue reflect.Value, flagSet *pflag.FlagSet, name, shorthand, desc, def string) error {
	switch target := fieldValue.Addr().Interface().(type) {
	case *string:
		flagSet.StringVarP(target, name, shorthand, def, desc)

	case *bool:
		v := false
		if def != "" {
			parsed, err := strconv.ParseBool(def)
			if err != nil {
				return fmt.Errorf("default for --%s: %w", name, err)
			}
			v = parsed
		}
		flagSet.BoolVarP(target, name, shorthand, v, desc)

	default:
		return fmt.Errorf("unsupported type %s for flag --%s", fieldValue.Type(), name)
	}
	return nil
}

// ApplyDefaults sets flags that were not passed on the command line from
// defaults. Unknown names and names in excluded are ignored. Flags set this
// way count as changed, so option sets see them.
func ApplyDefaults(flagSet *pflag.FlagSet, defaults map[string]string, excluded ...string) error {
	skip := make(map[string]bool, len(excluded))
	for _, name := range excluded {
		skip[name] = true
	}
	for name, value := range defaults {
		if skip[name] {
			continue
		}
		f := flagSet.Lookup(name)
		if f == nil || f.Changed {
			continue
		}
		if err := flagSet.Set(name, value); err != nil {
			return fmt.Errorf("failed to apply context option %s: %w", name, err)
		}
	}
	return nil
}

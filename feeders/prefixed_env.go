package feeders

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/golobby/cast"
)

// PrefixedEnv feeds struct fields tagged `env:"NAME"` from environment
// variables under a fixed prefix: with prefix "PLATFORM", a field tagged
// `env:"http_port"` reads PLATFORM_HTTP_PORT. Nested and embedded structs
// are walked; fields without an env tag, and variables that are unset or
// empty, are left alone. []string fields split their value on commas.
//
// Deployments use the prefix to keep platform settings from colliding with
// the rest of the process environment.
type PrefixedEnv struct {
	Prefix string
}

// NewPrefixedEnv creates a feeder reading PREFIX_* variables.
func NewPrefixedEnv(prefix string) PrefixedEnv {
	return PrefixedEnv{Prefix: strings.ToUpper(prefix)}
}

// Feed fills structure from the environment. It satisfies the golobby
// Feeder contract.
func (p PrefixedEnv) Feed(structure any) error {
	v := reflect.ValueOf(structure)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return ErrInvalidStructure
	}
	return p.feedStruct(v.Elem())
}

func (p PrefixedEnv) feedStruct(v reflect.Value) error {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)
		if !field.CanSet() {
			continue
		}

		if field.Kind() == reflect.Struct {
			if err := p.feedStruct(field); err != nil {
				return err
			}
			continue
		}
		if field.Kind() == reflect.Pointer && !field.IsNil() && field.Elem().Kind() == reflect.Struct {
			if err := p.feedStruct(field.Elem()); err != nil {
				return err
			}
			continue
		}

		tag, tagged := fieldType.Tag.Lookup("env")
		if !tagged {
			continue
		}
		name := strings.ToUpper(tag)
		if p.Prefix != "" {
			name = p.Prefix + "_" + name
		}
		raw := os.Getenv(name)
		if raw == "" {
			continue
		}

		if field.Kind() == reflect.Slice && field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(raw, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			field.Set(reflect.ValueOf(parts))
			continue
		}

		value, err := cast.FromType(raw, field.Type())
		if err != nil {
			return fmt.Errorf("%w: %s=%q into field %s: %v",
				ErrEnvConversion, name, raw, fieldType.Name, err)
		}
		field.Set(reflect.ValueOf(value))
	}
	return nil
}

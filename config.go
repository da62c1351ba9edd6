package platform

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/golobby/cast"
	"github.com/golobby/config/v3"
)

// ConfigProvider hands out application configuration. The composition root
// usually binds one under TokenConfig so modules can resolve settings
// without knowing where they were loaded from.
type ConfigProvider interface {
	GetConfig() any
}

// StdConfigProvider wraps a config struct in the ConfigProvider interface.
type StdConfigProvider struct {
	cfg any
}

// NewStdConfigProvider creates a provider returning cfg as-is.
func NewStdConfigProvider(cfg any) *StdConfigProvider {
	return &StdConfigProvider{cfg: cfg}
}

// GetConfig returns the wrapped configuration.
func (p *StdConfigProvider) GetConfig() any {
	return p.cfg
}

// Feeder re-exports the golobby feeder contract so callers only import the
// platform package; ready-made feeders live in the feeders package.
type Feeder = config.Feeder

// Validator lets a config struct verify itself after loading.
type Validator interface {
	Validate() error
}

// LoadConfig fills target from the given feeders in order (later feeders
// override earlier ones), applies `default` tags to fields still at their
// zero value, and finally runs Validate if target implements Validator.
// Target must be a non-nil pointer to a struct.
func LoadConfig(target any, feeders ...Feeder) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return ErrConfigNotPointer
	}

	builder := config.New()
	for _, f := range feeders {
		builder = builder.AddFeeder(f)
	}
	builder = builder.AddStruct(target)
	if err := builder.Feed(); err != nil {
		return fmt.Errorf("feeding config: %w", err)
	}

	if err := ApplyDefaults(target); err != nil {
		return err
	}
	if validator, ok := target.(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("validating config: %w", err)
		}
	}
	return nil
}

// ApplyDefaults sets fields tagged `default:"..."` that are still at their
// zero value. Nested and embedded structs are walked recursively. Supported
// field types are the basic scalars, time.Duration ("30s"), and []string
// (comma-separated).
//
// LoadConfig calls this automatically; it is exported for config structs
// assembled without feeders.
func ApplyDefaults(target any) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return ErrConfigNotPointer
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return ErrConfigNotPointer
	}
	return applyStructDefaults(v)
}

func applyStructDefaults(v reflect.Value) error {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)
		if !field.CanSet() {
			continue
		}

		// Recurse into nested structs, except types with their own scalar
		// representation like time.Duration (an int64) or time.Time.
		if field.Kind() == reflect.Struct && field.Type() != reflect.TypeOf(time.Time{}) {
			if err := applyStructDefaults(field); err != nil {
				return err
			}
			continue
		}
		if field.Kind() == reflect.Pointer && !field.IsNil() && field.Elem().Kind() == reflect.Struct {
			if err := applyStructDefaults(field.Elem()); err != nil {
				return err
			}
			continue
		}

		raw, tagged := fieldType.Tag.Lookup("default")
		if !tagged || !field.IsZero() {
			continue
		}
		if err := setDefault(field, fieldType.Name, raw); err != nil {
			return err
		}
	}
	return nil
}

func setDefault(field reflect.Value, name, raw string) error {
	if field.Type() == reflect.TypeOf(time.Duration(0)) {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("%w: field %s: %v", ErrDefaultValueParse, name, err)
		}
		field.Set(reflect.ValueOf(d))
		return nil
	}

	if field.Kind() == reflect.Slice {
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("%w: field %s (%s)", ErrUnsupportedDefaultType, name, field.Type())
		}
		parts := strings.Split(raw, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		field.Set(reflect.ValueOf(parts))
		return nil
	}

	value, err := cast.FromType(raw, field.Type())
	if err != nil {
		return fmt.Errorf("%w: field %s: %v", ErrDefaultValueParse, name, err)
	}
	field.Set(reflect.ValueOf(value))
	return nil
}

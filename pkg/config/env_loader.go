/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"context"
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/carverauto/scenebind/pkg/logger"
)

var (
	// ErrDstMustBeNonNilPointer indicates that the destination must be a non-nil pointer.
	ErrDstMustBeNonNilPointer = errors.New("dst must be a non-nil pointer")
	// ErrDstMustBePointerToStruct indicates that the destination must be a pointer to a struct.
	ErrDstMustBePointerToStruct = errors.New("dst must be a pointer to a struct")

	errUnsupportedKind = errors.New("unsupported field kind")
)

//nolint:gochecknoglobals // reflect types compared on every field
var (
	durationType    = reflect.TypeOf(time.Duration(0))
	jsonUnmarshaler = reflect.TypeOf((*json.Unmarshaler)(nil)).Elem()
	textUnmarshaler = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// EnvConfigLoader loads configuration from environment variables.
//
// Nested struct fields join their json names with underscores, so with the
// prefix SCENEBIND_ the field Events.NATSURL tagged "events"/"nats_url" reads
// SCENEBIND_EVENTS_NATS_URL. PREFIX + CONFIG_JSON, when set, holds the whole
// document and wins over individual variables.
type EnvConfigLoader struct {
	logger logger.Logger
	prefix string
}

// NewEnvConfigLoader creates a new environment variable config loader.
func NewEnvConfigLoader(log logger.Logger, prefix string) *EnvConfigLoader {
	if log == nil {
		log = logger.NewTestLogger()
	}

	return &EnvConfigLoader{
		logger: log,
		prefix: prefix,
	}
}

// Load implements ConfigLoader by reading from environment variables.
func (e *EnvConfigLoader) Load(_ context.Context, _ string, dst interface{}) error {
	if doc := os.Getenv(e.prefix + "CONFIG_JSON"); doc != "" {
		if err := json.Unmarshal([]byte(doc), dst); err != nil {
			return fmt.Errorf("failed to unmarshal %sCONFIG_JSON: %w", e.prefix, err)
		}

		e.logger.Debug().Msg("Loaded configuration from CONFIG_JSON environment variable")

		return nil
	}

	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return ErrDstMustBeNonNilPointer
	}

	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return ErrDstMustBePointerToStruct
	}

	if err := e.loadStruct(v, e.prefix); err != nil {
		return err
	}

	e.logger.Debug().Msg("Loaded configuration from environment variables")

	return nil
}

// loadStruct walks the exported, json-tagged fields of v. Every malformed
// variable is reported.
func (e *EnvConfigLoader) loadStruct(v reflect.Value, prefix string) error {
	t := v.Type()

	var errs []error

	for i := 0; i < t.NumField(); i++ {
		field := v.Field(i)
		sf := t.Field(i)

		if !field.CanSet() {
			continue
		}

		name := jsonName(&sf)
		if name == "" {
			continue
		}

		if err := e.setField(field, envName(prefix, name)); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func jsonName(sf *reflect.StructField) string {
	tag := sf.Tag.Get("json")
	if tag == "" || tag == "-" {
		return ""
	}

	name, _, _ := strings.Cut(tag, ",")

	return name
}

func envName(prefix, fieldName string) string {
	return prefix + strings.ToUpper(strings.ReplaceAll(fieldName, ".", "_"))
}

func (e *EnvConfigLoader) setField(field reflect.Value, name string) error {
	raw, set := os.LookupEnv(name)

	if !set || raw == "" {
		return e.descend(field, name)
	}

	if err := setValue(field, raw); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	e.logger.Debug().Str("env", name).Str("value", "[set]").Msg("Loaded value from environment variable")

	return nil
}

// descend recurses into plain structs and pointers to structs that have no
// variable of their own.
func (e *EnvConfigLoader) descend(field reflect.Value, name string) error {
	switch {
	case decodesItself(field.Type()):
		return nil
	case field.Kind() == reflect.Struct:
		return e.loadStruct(field, name+"_")
	case field.Kind() == reflect.Ptr && field.Type().Elem().Kind() == reflect.Struct:
		if field.IsNil() {
			fresh := reflect.New(field.Type().Elem())
			if err := e.loadStruct(fresh.Elem(), name+"_"); err != nil {
				return err
			}

			if !fresh.Elem().IsZero() {
				field.Set(fresh)
			}

			return nil
		}

		return e.loadStruct(field.Elem(), name+"_")
	default:
		return nil
	}
}

func decodesItself(t reflect.Type) bool {
	pt := reflect.PointerTo(t)

	return pt.Implements(jsonUnmarshaler) || pt.Implements(textUnmarshaler)
}

func setValue(field reflect.Value, raw string) error {
	if field.Kind() == reflect.Ptr {
		if field.IsNil() {
			field.Set(reflect.New(field.Type().Elem()))
		}

		return setValue(field.Elem(), raw)
	}

	if decodesItself(field.Type()) {
		return unmarshalLoose(field, raw)
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid boolean value: %w", err)
		}

		field.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return setInt(field, raw)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid unsigned integer value: %w", err)
		}

		field.SetUint(u)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("invalid float value: %w", err)
		}

		field.SetFloat(f)
	case reflect.Slice:
		return setSlice(field, raw)
	case reflect.Map, reflect.Struct, reflect.Interface, reflect.Array:
		if err := json.Unmarshal([]byte(raw), field.Addr().Interface()); err != nil {
			return fmt.Errorf("invalid %s value: %w", field.Kind(), err)
		}
	default:
		return fmt.Errorf("%w: %s", errUnsupportedKind, field.Kind())
	}

	return nil
}

func setInt(field reflect.Value, raw string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid duration value: %w", err)
		}

		field.SetInt(int64(d))

		return nil
	}

	i, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid integer value: %w", err)
	}

	field.SetInt(i)

	return nil
}

// setSlice accepts a JSON array, or a comma-separated list for []string.
func setSlice(field reflect.Value, raw string) error {
	trimmed := strings.TrimSpace(raw)

	if field.Type().Elem().Kind() == reflect.String && !strings.HasPrefix(trimmed, "[") {
		parts := strings.Split(raw, ",")
		slice := reflect.MakeSlice(field.Type(), len(parts), len(parts))

		for i, p := range parts {
			slice.Index(i).SetString(strings.TrimSpace(p))
		}

		field.Set(slice)

		return nil
	}

	if err := json.Unmarshal([]byte(trimmed), field.Addr().Interface()); err != nil {
		return fmt.Errorf("invalid slice value: %w", err)
	}

	return nil
}

// unmarshalLoose feeds raw to a json.Unmarshaler as-is and, when that is not
// valid JSON, as a quoted string. "5s" and 5000 both reach a duration type.
func unmarshalLoose(field reflect.Value, raw string) error {
	target := field.Addr().Interface()

	if u, ok := target.(json.Unmarshaler); ok {
		if err := u.UnmarshalJSON([]byte(raw)); err == nil {
			return nil
		}

		quoted, _ := json.Marshal(raw)

		if err := u.UnmarshalJSON(quoted); err != nil {
			return fmt.Errorf("invalid %s value: %w", field.Type(), err)
		}

		return nil
	}

	if err := target.(encoding.TextUnmarshaler).UnmarshalText([]byte(raw)); err != nil {
		return fmt.Errorf("invalid %s value: %w", field.Type(), err)
	}

	return nil
}

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

// Package dataproc coerces extracted payload values into a binding's declared data type.
package dataproc

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/carverauto/scenebind/pkg/models"
	"github.com/carverauto/scenebind/pkg/values"
)

var (
	ErrUnsupportedType = errors.New("unsupported data type")
	ErrNotNumber       = errors.New("value cannot be converted to a number")
	ErrNotBoolean      = errors.New("value cannot be converted to a boolean")
	ErrNotJSON         = errors.New("value cannot be parsed as JSON")
	ErrNotBase64       = errors.New("value is not valid base64")
	ErrNotBinary       = errors.New("value cannot be converted to bytes")
)

var (
	base64Pattern  = regexp.MustCompile(`^[A-Za-z0-9+/]*={0,2}$`)
	dataURLPattern = regexp.MustCompile(`^data:([^;]+);base64,(.+)$`)
)

// Image is the decoded form of an image_base64 value.
type Image struct {
	Base64   string `json:"base64"`
	MimeType string `json:"mimeType,omitempty"`
	Size     int    `json:"size"`
}

// Process converts v to the representation of dataType:
//
//	text          string
//	json          decoded JSON value
//	number        float64
//	boolean       bool
//	image_base64  Image
//	binary        []byte
func Process(v interface{}, dataType models.DataType) (interface{}, error) {
	switch dataType {
	case models.DataTypeText:
		return Text(v), nil
	case models.DataTypeJSON:
		return JSON(v)
	case models.DataTypeNumber:
		return Number(v)
	case models.DataTypeBoolean:
		return Boolean(v)
	case models.DataTypeImageBase64:
		return ImageBase64(v)
	case models.DataTypeBinary:
		return Binary(v)
	}

	return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, dataType)
}

// Text renders v as a string; objects and arrays are JSON encoded.
func Text(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case map[string]interface{}, []interface{}:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}

		return string(b)
	}

	if f, ok := values.Float(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	return fmt.Sprint(v)
}

// JSON parses strings and byte slices; already decoded values pass through.
// Text that does not open an object or array and fails to parse is kept as a
// plain string, the way a string leaf of a decoded payload reads.
func JSON(v interface{}) (interface{}, error) {
	var raw []byte

	switch t := v.(type) {
	case string:
		raw = []byte(t)
	case []byte:
		raw = t
	default:
		return v, nil
	}

	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		if document(raw) {
			return nil, fmt.Errorf("%w: %w", ErrNotJSON, err)
		}

		return string(raw), nil
	}

	return out, nil
}

func document(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)

	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}

// Number converts numbers, numeric strings, booleans and objects carrying a
// value, data or number field.
func Number(v interface{}) (float64, error) {
	if f, ok := values.Float(v); ok {
		return f, nil
	}

	switch t := v.(type) {
	case float64:
		return 0, fmt.Errorf("%w: NaN or Inf", ErrNotNumber)
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, fmt.Errorf("%w: empty string", ErrNotNumber)
		}

		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("%w: %q", ErrNotNumber, t)
		}

		return f, nil
	case []byte:
		return Number(string(t))
	case bool:
		if t {
			return 1, nil
		}

		return 0, nil
	case map[string]interface{}:
		for _, key := range []string{"value", "data", "number"} {
			if inner, ok := t[key]; ok {
				return Number(inner)
			}
		}
	}

	return 0, fmt.Errorf("%w: %T", ErrNotNumber, v)
}

// Boolean converts booleans, numbers (non-zero is true), the strings
// true/false/1/0/on/off/yes/no, and objects carrying a value, data, boolean
// or state field.
func Boolean(v interface{}) (bool, error) {
	if f, ok := values.Float(v); ok {
		return f != 0, nil
	}

	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "1", "on", "yes":
			return true, nil
		case "false", "0", "off", "no", "":
			return false, nil
		}

		return false, fmt.Errorf("%w: %q", ErrNotBoolean, t)
	case []byte:
		return Boolean(string(t))
	case map[string]interface{}:
		for _, key := range []string{"value", "data", "boolean", "state"} {
			if inner, ok := t[key]; ok {
				return Boolean(inner)
			}
		}
	}

	return false, fmt.Errorf("%w: %T", ErrNotBoolean, v)
}

// ImageBase64 validates a base64 (or data URL) image and splits out its MIME type.
func ImageBase64(v interface{}) (Image, error) {
	var s string

	switch t := v.(type) {
	case string:
		s = t
	case []byte:
		s = base64.StdEncoding.EncodeToString(t)
	case map[string]interface{}:
		found := false

		for _, key := range []string{"base64", "data", "image"} {
			if inner, ok := t[key].(string); ok {
				s, found = inner, true
				break
			}
		}

		if !found {
			return Image{}, fmt.Errorf("%w: no base64 field in object", ErrNotBase64)
		}
	default:
		return Image{}, fmt.Errorf("%w: %T", ErrNotBase64, v)
	}

	img := Image{Base64: s}

	if m := dataURLPattern.FindStringSubmatch(s); m != nil {
		img.MimeType, img.Base64 = m[1], m[2]
	}

	if !base64Pattern.MatchString(img.Base64) || len(img.Base64)%4 != 0 {
		return Image{}, ErrNotBase64
	}

	img.Size = len(img.Base64) * 3 / 4

	return img, nil
}

// Binary converts byte slices, arrays of byte values, base64 strings (falling
// back to the raw UTF-8 bytes) and objects carrying a data, buffer or bytes array.
func Binary(v interface{}) ([]byte, error) {
	switch t := v.(type) {
	case []byte:
		return t, nil
	case []interface{}:
		return bytesFromArray(t)
	case string:
		if b, err := base64.StdEncoding.DecodeString(t); err == nil {
			return b, nil
		}

		return []byte(t), nil
	case map[string]interface{}:
		for _, key := range []string{"data", "buffer", "bytes"} {
			if arr, ok := t[key].([]interface{}); ok {
				return bytesFromArray(arr)
			}
		}
	}

	return nil, fmt.Errorf("%w: %T", ErrNotBinary, v)
}

func bytesFromArray(arr []interface{}) ([]byte, error) {
	out := make([]byte, len(arr))

	for i, x := range arr {
		f, ok := values.Float(x)
		if !ok || f < 0 || f > 255 || f != math.Trunc(f) {
			return nil, fmt.Errorf("%w: element %d", ErrNotBinary, i)
		}

		out[i] = byte(f)
	}

	return out, nil
}

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

package jsonpath

import (
	"sort"
	"strings"
)

// Extract resolves path against data. The second result is false when the
// path is malformed or any segment is missing. An empty path returns data.
//
// Wildcard and filter segments fan out: the result becomes a []interface{}
// and later segments apply to each element, dropping misses.
func Extract(data interface{}, path string) (interface{}, bool) {
	if strings.TrimSpace(path) == "" || path == "$" {
		return data, true
	}

	segs, err := parse(path)
	if err != nil {
		return nil, false
	}

	return walk(data, segs)
}

// ExtractSource resolves a transport qualified path such as "site/a/sensor.temp".
func ExtractSource(data interface{}, sourcePath string) (interface{}, bool) {
	_, path := ParseSourcePath(sourcePath)
	return Extract(data, path)
}

func walk(data interface{}, segs []segment) (interface{}, bool) {
	var (
		current = data
		seq     []interface{}
		multi   bool
	)

	for _, seg := range segs {
		if multi {
			next := make([]interface{}, 0, len(seq))

			for _, item := range seq {
				v, fan, fanned, ok := step(item, seg)
				if !ok {
					continue
				}

				if fanned {
					next = append(next, fan...)
				} else {
					next = append(next, v)
				}
			}

			seq = next

			continue
		}

		v, fan, fanned, ok := step(current, seg)
		if !ok {
			return nil, false
		}

		if fanned {
			multi = true
			seq = fan

			continue
		}

		current = v
	}

	if multi {
		return seq, true
	}

	return current, true
}

// step applies one segment. fanned reports that the result is a sequence.
func step(value interface{}, seg segment) (v interface{}, fan []interface{}, fanned, ok bool) {
	switch seg.kind {
	case segProperty:
		obj, isObj := value.(map[string]interface{})
		if !isObj {
			return nil, nil, false, false
		}

		v, ok = obj[seg.key]

		return v, nil, false, ok
	case segIndex:
		arr, isArr := value.([]interface{})
		if !isArr || seg.index >= len(arr) {
			return nil, nil, false, false
		}

		return arr[seg.index], nil, false, true
	case segWildcard:
		switch t := value.(type) {
		case []interface{}:
			return nil, t, true, true
		case map[string]interface{}:
			return nil, sortedValues(t), true, true
		}

		return nil, nil, false, false
	case segFilter:
		arr, isArr := value.([]interface{})
		if !isArr {
			return nil, nil, false, false
		}

		out := make([]interface{}, 0, len(arr))

		for _, elem := range arr {
			if seg.filter.match(elem) {
				out = append(out, elem)
			}
		}

		return nil, out, true, true
	}

	return nil, nil, false, false
}

func sortedValues(obj map[string]interface{}) []interface{} {
	keys := sortedKeys(obj)
	out := make([]interface{}, 0, len(keys))

	for _, k := range keys {
		out = append(out, obj[k])
	}

	return out
}

func sortedKeys(obj map[string]interface{}) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// ParseSourcePath splits a transport qualified path into a topic filter and a
// JSON path. When the part after the last '/' contains '.' or '[', the text
// before it is the topic. Otherwise the whole string is a path and every '/'
// is read as '.'.
func ParseSourcePath(sourcePath string) (topic, path string) {
	idx := strings.LastIndex(sourcePath, "/")
	if idx < 0 {
		return "", sourcePath
	}

	last := sourcePath[idx+1:]
	if strings.ContainsAny(last, ".[") {
		return sourcePath[:idx], last
	}

	return "", strings.ReplaceAll(sourcePath, "/", ".")
}

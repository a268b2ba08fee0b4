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
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/carverauto/scenebind/pkg/values"
)

const (
	defaultAllPathsDepth = 10
	defaultSuggestDepth  = 5
	maxSuggestions       = 5
)

// Suggestion is a concrete path discovered in a sample payload.
type Suggestion struct {
	Path   string      `json:"path"`
	Type   string      `json:"type"`
	Sample interface{} `json:"sample"`
}

// Validation is the result of checking a path against a sample payload.
type Validation struct {
	Valid       bool        `json:"valid"`
	Value       interface{} `json:"value,omitempty"`
	Error       string      `json:"error,omitempty"`
	Suggestions []string    `json:"suggestions,omitempty"`
}

// AllPaths lists every concrete path reachable in data, objects in key order.
// A maxDepth of zero or less uses the default depth of 10.
func AllPaths(data interface{}, maxDepth int) []string {
	if maxDepth <= 0 {
		maxDepth = defaultAllPathsDepth
	}

	var out []string

	collectAll(data, "", maxDepth, &out)

	return out
}

func collectAll(data interface{}, prefix string, depth int, out *[]string) {
	if depth <= 0 || data == nil {
		return
	}

	switch t := data.(type) {
	case []interface{}:
		for i, item := range t {
			p := prefix + "[" + strconv.Itoa(i) + "]"
			*out = append(*out, p)
			collectAll(item, p, depth-1, out)
		}
	case map[string]interface{}:
		for _, k := range sortedKeys(t) {
			p := join(prefix, k)
			*out = append(*out, p)
			collectAll(t[k], p, depth-1, out)
		}
	}
}

// SuggestPaths proposes paths for a sample payload, including wildcard, first
// and last element forms for arrays. Results are deduplicated, paths that
// resolve to null are dropped, and simpler paths and scalar types come first.
func SuggestPaths(data interface{}, maxDepth int) []Suggestion {
	if maxDepth <= 0 {
		maxDepth = defaultSuggestDepth
	}

	var raw []string

	collectSuggest(data, "", maxDepth, &raw)

	seen := make(map[string]struct{}, len(raw))
	out := make([]Suggestion, 0, len(raw))

	for _, p := range raw {
		if _, dup := seen[p]; dup {
			continue
		}

		seen[p] = struct{}{}

		v, ok := Extract(data, p)
		if !ok || v == nil {
			continue
		}

		out = append(out, Suggestion{Path: p, Type: values.Kind(v), Sample: v})
	}

	sort.SliceStable(out, func(i, j int) bool {
		ci, cj := complexity(out[i].Path), complexity(out[j].Path)
		if ci != cj {
			return ci < cj
		}

		return typeRank(out[i].Type) < typeRank(out[j].Type)
	})

	return out
}

func collectSuggest(data interface{}, prefix string, depth int, out *[]string) {
	if depth <= 0 || data == nil {
		return
	}

	switch t := data.(type) {
	case []interface{}:
		if len(t) == 0 {
			return
		}

		if prefix != "" {
			*out = append(*out, prefix+"[*]", prefix+"[0]")
			if len(t) > 1 {
				*out = append(*out, prefix+"["+strconv.Itoa(len(t)-1)+"]")
			}
		}

		collectSuggest(t[0], prefix+"[0]", depth-1, out)
		collectSuggest(t[0], prefix+"[*]", depth-1, out)
	case map[string]interface{}:
		for _, k := range sortedKeys(t) {
			p := join(prefix, k)
			*out = append(*out, p)
			collectSuggest(t[k], p, depth-1, out)
		}
	}
}

// ValidatePath checks that path resolves in data. On a miss it offers up to
// five known paths that contain, or are contained in, the requested one.
func ValidatePath(data interface{}, path string) Validation {
	if _, err := parse(path); err != nil {
		return Validation{Error: fmt.Sprintf("invalid path %q: %v", path, err)}
	}

	if v, ok := Extract(data, path); ok {
		return Validation{Valid: true, Value: v}
	}

	needle := strings.ToLower(path)

	var candidates []string

	for _, s := range SuggestPaths(data, 0) {
		p := strings.ToLower(s.Path)
		if strings.Contains(p, needle) || strings.Contains(needle, p) {
			candidates = append(candidates, s.Path)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return sharedPrefix(candidates[i], path) > sharedPrefix(candidates[j], path)
	})

	if len(candidates) > maxSuggestions {
		candidates = candidates[:maxSuggestions]
	}

	return Validation{
		Error:       fmt.Sprintf("path %q does not exist in data", path),
		Suggestions: candidates,
	}
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}

	return prefix + "." + key
}

func complexity(path string) int {
	return strings.Count(path, ".") + strings.Count(path, "[") + strings.Count(path, "]")
}

func typeRank(kind string) int {
	switch kind {
	case "number":
		return 0
	case "boolean":
		return 1
	case "string":
		return 2
	case "array":
		return 3
	case "object":
		return 4
	}

	return 5
}

func sharedPrefix(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}

	return n
}

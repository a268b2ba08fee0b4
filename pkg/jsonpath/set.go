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

import "fmt"

// SetValue writes value at path inside root and returns the updated root.
// Missing intermediate objects and arrays are created; arrays grow as
// needed. Wildcard and filter segments cannot be assigned.
func SetValue(root interface{}, path string, value interface{}) (interface{}, error) {
	segs, err := parse(path)
	if err != nil {
		return root, err
	}

	if len(segs) == 0 {
		return root, ErrEmptyPath
	}

	return assign(root, segs, value)
}

func assign(node interface{}, segs []segment, value interface{}) (interface{}, error) {
	if len(segs) == 0 {
		return value, nil
	}

	seg := segs[0]

	switch seg.kind {
	case segProperty:
		obj, ok := node.(map[string]interface{})
		if node == nil {
			obj, ok = make(map[string]interface{}), true
		}

		if !ok {
			return node, fmt.Errorf("%w at %q", ErrNotContainer, seg.String())
		}

		child, err := assign(obj[seg.key], segs[1:], value)
		if err != nil {
			return node, err
		}

		obj[seg.key] = child

		return obj, nil
	case segIndex:
		arr, ok := node.([]interface{})
		if node == nil {
			ok = true
		}

		if !ok {
			return node, fmt.Errorf("%w at %q", ErrNotContainer, seg.String())
		}

		for len(arr) <= seg.index {
			arr = append(arr, nil)
		}

		child, err := assign(arr[seg.index], segs[1:], value)
		if err != nil {
			return node, err
		}

		arr[seg.index] = child

		return arr, nil
	case segWildcard, segFilter:
	}

	return node, fmt.Errorf("%w: %s", ErrUnsupported, seg.String())
}

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

// Package jsonpath resolves dotted and bracketed path expressions against
// decoded JSON values.
//
// Supported segments:
//
//	name or ['name']   object property
//	[3]                array index
//	[*]                every element (or every object value, sorted by key)
//	[?(@.k=='v')]      elements whose field matches a literal
//
// A leading "$" or "$." is ignored.
package jsonpath

import (
	"errors"
	"strconv"
	"strings"
)

var (
	ErrUnclosedBracket = errors.New("unclosed bracket in path")
	ErrEmptySegment    = errors.New("empty bracket segment in path")
	ErrBadFilter       = errors.New("malformed filter expression")
	ErrEmptyPath       = errors.New("empty path")
	ErrNotContainer    = errors.New("path crosses a non-container value")
	ErrUnsupported     = errors.New("segment kind cannot be assigned")
)

type segmentKind int

const (
	segProperty segmentKind = iota
	segIndex
	segWildcard
	segFilter
)

type segment struct {
	kind   segmentKind
	key    string
	index  int
	filter *filter
}

func (s segment) String() string {
	switch s.kind {
	case segIndex:
		return "[" + strconv.Itoa(s.index) + "]"
	case segWildcard:
		return "[*]"
	case segFilter:
		return "[" + s.key + "]"
	default:
		return s.key
	}
}

// parse splits a path into segments.
func parse(path string) ([]segment, error) {
	path = strings.TrimPrefix(path, "$")
	path = strings.TrimPrefix(path, ".")

	var (
		segs    []segment
		current strings.Builder
	)

	flush := func() {
		if current.Len() > 0 {
			segs = append(segs, segment{kind: segProperty, key: current.String()})
			current.Reset()
		}
	}

	for i := 0; i < len(path); i++ {
		c := path[i]

		switch c {
		case '.':
			flush()
		case '[':
			flush()

			end, err := closingBracket(path, i)
			if err != nil {
				return nil, err
			}

			seg, err := parseBracket(path[i+1 : end])
			if err != nil {
				return nil, err
			}

			segs = append(segs, seg)
			i = end
		default:
			current.WriteByte(c)
		}
	}

	flush()

	return segs, nil
}

// closingBracket finds the ']' matching the '[' at open, skipping quoted text
// and parenthesised filter bodies.
func closingBracket(path string, open int) (int, error) {
	var (
		quote byte
		depth int
	)

	for i := open + 1; i < len(path); i++ {
		c := path[i]

		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			depth--
		case c == ']' && depth <= 0:
			return i, nil
		}
	}

	return 0, ErrUnclosedBracket
}

func parseBracket(content string) (segment, error) {
	content = strings.TrimSpace(content)

	switch {
	case content == "":
		return segment{}, ErrEmptySegment
	case content == "*":
		return segment{kind: segWildcard}, nil
	case strings.HasPrefix(content, "?"):
		f, err := parseFilter(content)
		if err != nil {
			return segment{}, err
		}

		return segment{kind: segFilter, key: content, filter: f}, nil
	case isDigits(content):
		n, err := strconv.Atoi(content)
		if err != nil {
			return segment{}, err
		}

		return segment{kind: segIndex, index: n}, nil
	default:
		return segment{kind: segProperty, key: strings.Trim(content, `'"`)}, nil
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}

	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}

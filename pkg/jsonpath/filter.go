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
	"strconv"
	"strings"

	"github.com/carverauto/scenebind/pkg/values"
)

type filterOp string

const (
	opExists filterOp = ""
	opEq     filterOp = "=="
	opNeq    filterOp = "!="
	opGte    filterOp = ">="
	opLte    filterOp = "<="
	opGt     filterOp = ">"
	opLt     filterOp = "<"
)

// operators are listed longest first so ">=" wins over ">".
var operators = []filterOp{opEq, opNeq, opGte, opLte, opGt, opLt}

type filter struct {
	field   []segment
	op      filterOp
	literal interface{}
}

func parseFilter(content string) (*filter, error) {
	expr := strings.TrimSpace(strings.TrimPrefix(content, "?"))
	if strings.HasPrefix(expr, "(") && strings.HasSuffix(expr, ")") {
		expr = strings.TrimSpace(expr[1 : len(expr)-1])
	}

	if !strings.HasPrefix(expr, "@") {
		return nil, fmt.Errorf("%w: %q", ErrBadFilter, content)
	}

	left, op, right := splitOperator(expr)

	field, err := parse(strings.TrimPrefix(left, "@"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadFilter, err)
	}

	if len(field) == 0 && op == opExists {
		return nil, fmt.Errorf("%w: %q", ErrBadFilter, content)
	}

	f := &filter{field: field, op: op}
	if op != opExists {
		f.literal = parseLiteral(right)
	}

	return f, nil
}

// splitOperator finds the first comparison operator outside quotes.
func splitOperator(expr string) (string, filterOp, string) {
	var quote byte

	for i := 0; i < len(expr); i++ {
		c := expr[i]

		if quote != 0 {
			if c == quote {
				quote = 0
			}

			continue
		}

		if c == '\'' || c == '"' {
			quote = c
			continue
		}

		for _, op := range operators {
			if strings.HasPrefix(expr[i:], string(op)) {
				return strings.TrimSpace(expr[:i]), op, strings.TrimSpace(expr[i+len(op):])
			}
		}
	}

	return strings.TrimSpace(expr), opExists, ""
}

func parseLiteral(s string) interface{} {
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}

	switch s {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}

	return s
}

func (f *filter) match(elem interface{}) bool {
	got, ok := walk(elem, f.field)
	if !ok {
		return false
	}

	switch f.op {
	case opExists:
		return true
	case opEq:
		return values.Equal(got, f.literal)
	case opNeq:
		return !values.Equal(got, f.literal)
	}

	a, okA := values.Float(got)
	b, okB := values.Float(f.literal)

	if !okA || !okB {
		return false
	}

	switch f.op {
	case opGt:
		return a > b
	case opLt:
		return a < b
	case opGte:
		return a >= b
	case opLte:
		return a <= b
	case opExists, opEq, opNeq:
	}

	return false
}

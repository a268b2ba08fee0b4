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

package adapter

import "strings"

// TopicMatches reports whether an MQTT style filter matches topic. "+"
// matches one level and a trailing "#" matches any remaining levels.
func TopicMatches(filter, topic string) bool {
	if filter == topic {
		return true
	}

	f := strings.Split(filter, "/")
	t := strings.Split(topic, "/")

	for i, part := range f {
		if part == "#" {
			return i == len(f)-1
		}

		if i >= len(t) {
			return false
		}

		if part != "+" && part != t[i] {
			return false
		}
	}

	return len(f) == len(t)
}

// IsWildcard reports whether filter contains MQTT wildcards.
func IsWildcard(filter string) bool {
	return strings.ContainsAny(filter, "+#")
}

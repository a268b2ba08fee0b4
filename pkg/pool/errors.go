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

package pool

import "errors"

var (
	ErrNoRegistry     = errors.New("adapter registry is required")
	ErrUnknownSource  = errors.New("no source configured")
	ErrUnknownBinding = errors.New("binding not found")
	ErrNoConnection   = errors.New("no connected source for protocol")
	ErrStopped        = errors.New("pool is stopped")
	errProtocol       = errors.New("binding protocol does not match its source")
)

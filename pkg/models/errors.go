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

package models

import "errors"

var (
	ErrInvalidDuration    = errors.New("invalid duration")
	ErrMissingBindingID   = errors.New("binding id is required")
	ErrMissingSourceID    = errors.New("binding sourceId is required")
	ErrInvalidProtocol    = errors.New("unsupported protocol")
	ErrInvalidDataType    = errors.New("unsupported data type")
	ErrInvalidDirection   = errors.New("invalid binding direction")
	ErrMissingSourceTopic = errors.New("source config is missing connection details")
	ErrInvalidEventType   = errors.New("unsupported animation event type")
	ErrMissingModelID     = errors.New("animation event modelId is required")
	ErrMissingNodeID      = errors.New("node_transform event requires nodeId")
	ErrMissingTransform   = errors.New("node_transform event requires a transform")
	ErrMissingSeekTime    = errors.New("seek event requires a time")
)

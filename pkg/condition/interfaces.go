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

//go:generate mockgen -destination=mock_actions.go -package=condition github.com/carverauto/scenebind/pkg/condition Actions

package condition

import "context"

// Actions is the set of side effects a trigger may perform against the
// scene and the device side. Implementations must be safe for concurrent use.
type Actions interface {
	SetModelProperty(ctx context.Context, target string, value interface{}) error
	SendIoTCommand(ctx context.Context, protocol, target string, value interface{}) error
	PlayAnimation(ctx context.Context, target string, params interface{}) error
	ShowAlert(ctx context.Context, message, level string) error
	CallFunction(ctx context.Context, name string, params interface{}) (interface{}, error)
	SetState(key string, value interface{})
	GetState(key string) (interface{}, bool)
}

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

package events

import "github.com/carverauto/scenebind/pkg/models"

// PlayEvent starts clipID on modelID.
func PlayEvent(modelID, clipID string, loop bool, speed float64) models.AnimationEvent {
	return models.AnimationEvent{
		Type:    models.EventPlay,
		ModelID: modelID,
		ClipID:  clipID,
		Loop:    &loop,
		Speed:   &speed,
	}
}

// PauseEvent pauses clipID, or every clip when clipID is empty.
func PauseEvent(modelID, clipID string) models.AnimationEvent {
	return models.AnimationEvent{Type: models.EventPause, ModelID: modelID, ClipID: clipID}
}

// StopEvent stops clipID, or every clip when clipID is empty.
func StopEvent(modelID, clipID string) models.AnimationEvent {
	return models.AnimationEvent{Type: models.EventStop, ModelID: modelID, ClipID: clipID}
}

// SeekEvent moves clipID to t seconds.
func SeekEvent(modelID, clipID string, t float64) models.AnimationEvent {
	return models.AnimationEvent{
		Type:    models.EventSeek,
		ModelID: modelID,
		ClipID:  clipID,
		Time:    &t,
	}
}

// NodeTransformEvent sets a partial transform on nodeID. interp may be nil.
func NodeTransformEvent(modelID, nodeID string, t models.Transform, interp *models.EventInterpolation) models.AnimationEvent {
	return models.AnimationEvent{
		Type:          models.EventNodeTransform,
		ModelID:       modelID,
		NodeID:        nodeID,
		Transform:     &t,
		Interpolation: interp,
	}
}

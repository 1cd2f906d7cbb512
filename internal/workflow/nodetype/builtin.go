/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package nodetype

import (
	"errors"
	"time"

	"github.com/skyforge/missionflow/internal/validation"
)

// Built-in node type names.
const (
	Start                = "start"
	End                  = "end"
	Takeoff              = "takeoff"
	Land                 = "land"
	EmergencyStop        = "emergency_stop"
	ReturnHome           = "return_home"
	Hover                = "hover"
	MoveForward          = "move_forward"
	MoveBack             = "move_back"
	MoveLeft             = "move_left"
	MoveRight            = "move_right"
	MoveUp               = "move_up"
	MoveDown             = "move_down"
	RotateClockwise      = "rotate_cw"
	RotateCounter        = "rotate_ccw"
	Flip                 = "flip"
	GoTo                 = "go_to"
	GetBattery           = "get_battery"
	GetHeight            = "get_height"
	GetStatus            = "get_status"
	CaptureImage         = "capture_image"
	QRScan               = "qr_scan"
	DetectObject         = "detect_object"
	UnipixelSegmentation = "unipixel_segmentation"
	AIAnalyze            = "ai_analyze"
	Condition            = "condition"
	Branch               = "branch"
	Loop                 = "loop"
	Wait                 = "wait"
	SetVariable          = "set_variable"
	Merge                = "merge"
	ChallengeObstacle    = "challenge_obstacle"
)

func distanceParam() []validation.ParameterSchema {
	return []validation.ParameterSchema{{
		Name: "distance", Label: "Distance (cm)", Type: validation.TypeNumber, Required: true,
		Min: validation.Float(20), Max: validation.Float(500), Default: 100,
	}}
}

func angleParam() []validation.ParameterSchema {
	return []validation.ParameterSchema{{
		Name: "angle", Label: "Angle (deg)", Type: validation.TypeNumber, Required: true,
		Min: validation.Float(1), Max: validation.Float(360), Default: 90,
	}}
}

func conditionParam() []validation.ParameterSchema {
	return []validation.ParameterSchema{{
		Name: "condition", Label: "Condition", Type: validation.TypeText,
		Description: "Boolean expression over workflow variables, for example battery > 30 && armed",
	}}
}

// nonNegativeAltitude rejects go_to targets below ground level.
func nonNegativeAltitude(value interface{}) error {
	var z interface{}
	switch v := value.(type) {
	case map[string]interface{}:
		z = v["z"]
	case []interface{}:
		if len(v) == 3 {
			z = v[2]
		}
	}
	if z == nil {
		return nil
	}
	f, err := validation.ToFloat(z)
	if err != nil {
		return err
	}
	if f < 0 {
		return errors.New("altitude must not be negative")
	}
	return nil
}

// BuiltinTypes returns the node types every mission server knows about.
func BuiltinTypes() []Type {
	movement := func(name, label string) Type {
		return Type{Name: name, Label: label, Category: CategoryMovement,
			EstimatedDuration: 1500 * time.Millisecond, Parameters: distanceParam()}
	}
	rotation := func(name, label string) Type {
		return Type{Name: name, Label: label, Category: CategoryMovement,
			EstimatedDuration: time.Second, Parameters: angleParam()}
	}
	query := func(name, label string) Type {
		return Type{Name: name, Label: label, Category: CategorySensor, Cacheable: true,
			EstimatedDuration: 100 * time.Millisecond}
	}

	return []Type{
		{Name: Start, Label: "Start", Category: CategoryControl, IsStart: true, EstimatedDuration: 10 * time.Millisecond},
		{Name: End, Label: "End", Category: CategoryControl, IsEnd: true, ToleratesMissingInputs: true,
			EstimatedDuration: 10 * time.Millisecond},
		{Name: Takeoff, Label: "Takeoff", Category: CategoryFlight, EstimatedDuration: 500 * time.Millisecond,
			Timeout: 20 * time.Second,
			Parameters: []validation.ParameterSchema{{
				Name: "height", Label: "Height (cm)", Type: validation.TypeNumber,
				Min: validation.Float(10), Max: validation.Float(500),
			}}},
		{Name: Land, Label: "Land", Category: CategoryFlight, IsEnd: true, ToleratesMissingInputs: true,
			EstimatedDuration: 3 * time.Second, Timeout: 20 * time.Second},
		{Name: EmergencyStop, Label: "Emergency stop", Category: CategoryFlight, ToleratesMissingInputs: true,
			EstimatedDuration: 50 * time.Millisecond},
		{Name: ReturnHome, Label: "Return home", Category: CategoryFlight, EstimatedDuration: 10 * time.Second,
			Timeout: 2 * time.Minute},
		{Name: Hover, Label: "Hover", Category: CategoryFlight, EstimatedDuration: time.Second,
			Parameters: []validation.ParameterSchema{{
				Name: "duration", Label: "Duration (s)", Type: validation.TypeSlider,
				Min: validation.Float(0), Max: validation.Float(60), Default: 1,
			}}},
		movement(MoveForward, "Move forward"),
		movement(MoveBack, "Move back"),
		movement(MoveLeft, "Move left"),
		movement(MoveRight, "Move right"),
		movement(MoveUp, "Move up"),
		movement(MoveDown, "Move down"),
		rotation(RotateClockwise, "Rotate clockwise"),
		rotation(RotateCounter, "Rotate counter-clockwise"),
		{Name: Flip, Label: "Flip", Category: CategoryMovement, EstimatedDuration: time.Second,
			Parameters: []validation.ParameterSchema{{
				Name: "direction", Label: "Direction", Type: validation.TypeSelect, Required: true,
				Options: []string{"l", "r", "f", "b"},
			}}},
		{Name: GoTo, Label: "Go to", Category: CategoryMovement, EstimatedDuration: 5 * time.Second,
			Timeout: time.Minute,
			Parameters: []validation.ParameterSchema{
				{Name: "target", Label: "Target", Type: validation.TypeCoordinates, Required: true,
					Custom: nonNegativeAltitude},
				{Name: "speed", Label: "Speed (cm/s)", Type: validation.TypeSlider,
					Min: validation.Float(10), Max: validation.Float(100), Default: 50},
			}},
		query(GetBattery, "Battery level"),
		query(GetHeight, "Height"),
		query(GetStatus, "Status"),
		{Name: CaptureImage, Label: "Capture image", Category: CategoryVision, EstimatedDuration: 300 * time.Millisecond},
		{Name: QRScan, Label: "QR scan", Category: CategoryVision, EstimatedDuration: 2 * time.Second,
			Timeout: 15 * time.Second},
		{Name: DetectObject, Label: "Detect object", Category: CategoryVision, Cacheable: true,
			EstimatedDuration: 3 * time.Second,
			Parameters: []validation.ParameterSchema{
				{Name: "image", Label: "Image", Type: validation.TypeString, Required: true},
				{Name: "labels", Label: "Labels", Type: validation.TypeJSON},
				{Name: "confidence", Label: "Confidence", Type: validation.TypeSlider,
					Min: validation.Float(0), Max: validation.Float(1), Default: 0.5},
			}},
		{Name: UnipixelSegmentation, Label: "Unipixel segmentation", Category: CategoryVision, Cacheable: true,
			EstimatedDuration: 5 * time.Second, Timeout: time.Minute,
			Parameters: []validation.ParameterSchema{
				{Name: "image", Label: "Image", Type: validation.TypeString, Required: true},
				{Name: "prompt", Label: "Prompt", Type: validation.TypeText},
			}},
		{Name: AIAnalyze, Label: "AI analyze", Category: CategoryAI,
			EstimatedDuration: 8 * time.Second, Timeout: 90 * time.Second,
			Parameters: []validation.ParameterSchema{
				{Name: "prompt", Label: "Prompt", Type: validation.TypeText, Required: true},
				{Name: "model", Label: "Model", Type: validation.TypeSelect,
					Options: []string{"vision-small", "vision-large"}, Default: "vision-small"},
				{Name: "context", Label: "Context", Type: validation.TypeJSON},
			}},
		{Name: Condition, Label: "Condition", Category: CategoryLogic, IsCondition: true,
			EstimatedDuration: time.Millisecond, Parameters: conditionParam()},
		{Name: Branch, Label: "Branch", Category: CategoryLogic, IsCondition: true,
			EstimatedDuration: time.Millisecond, Parameters: conditionParam()},
		{Name: Loop, Label: "Loop", Category: CategoryLogic, EstimatedDuration: time.Millisecond,
			Parameters: []validation.ParameterSchema{{
				Name: "iterations", Label: "Iterations", Type: validation.TypeNumber, Required: true,
				Min: validation.Float(1), Max: validation.Float(100), Default: 1,
			}}},
		{Name: Wait, Label: "Wait", Category: CategoryLogic, EstimatedDuration: time.Second,
			Parameters: []validation.ParameterSchema{{
				Name: "seconds", Label: "Seconds", Type: validation.TypeNumber, Required: true,
				Min: validation.Float(0), Max: validation.Float(300),
			}}},
		{Name: SetVariable, Label: "Set variable", Category: CategoryLogic, EstimatedDuration: time.Millisecond,
			Parameters: []validation.ParameterSchema{
				{Name: "name", Label: "Name", Type: validation.TypeString, Required: true},
				{Name: "value", Label: "Value", Type: validation.TypeJSON},
			}},
		{Name: Merge, Label: "Merge", Category: CategoryLogic, ToleratesMissingInputs: true,
			EstimatedDuration: time.Millisecond},
		{Name: ChallengeObstacle, Label: "Obstacle challenge", Category: CategoryChallenge, ContinueOnFail: true,
			EstimatedDuration: 15 * time.Second, Timeout: 2 * time.Minute},
	}
}

// DefaultRegistry returns a registry holding the built-in node types.
func DefaultRegistry() *Registry {
	return NewRegistry(BuiltinTypes()...)
}

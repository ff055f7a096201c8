/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

// Built-in property spaces. Tuple-typed properties are part of the model but
// have no literal syntax yet; hosts set them through the object API.

// screenSpace is the camera: position and orientation, an orthographic or
// perspective projection with its mode-specific sizing, and a background.
var screenSpace = mustSpace(
	Binding{Name: "position", Type: TupleOf(Float, Float, Float)},
	Binding{Name: "orientation", Type: TupleOf(Float, Float, Float)},
	Binding{Name: "projection", Type: EnumOf("projection", "orthographic", "perspective")},
	Binding{Name: "ortho-scale", Type: PositiveFloat},
	Binding{Name: "focal-length", Type: PositiveFloat},
	Binding{Name: "background-color", Type: ColorType},
)

// rectangleSpace is the visual primitive: transform plus fill, edge, line,
// and text styling.
var rectangleSpace = mustSpace(
	Binding{Name: "position", Type: TupleOf(Float, Float)},
	Binding{Name: "size", Type: TupleOf(PositiveFloat, PositiveFloat)},
	Binding{Name: "rotation", Type: Float},
	Binding{Name: "fill-color", Type: ColorType},
	Binding{Name: "edge-color", Type: ColorType},
	Binding{Name: "line-width", Type: PositiveFloat},
	Binding{Name: "line-style", Type: EnumOf("line-style", "solid", "dashed", "dotted")},
	Binding{Name: "text", Type: String},
	Binding{Name: "text-color", Type: ColorType},
	Binding{Name: "text-size", Type: PositiveFloat},
	Binding{Name: "text-font", Type: String},
)

var transitionSpace = mustSpace(
	Binding{Name: "duration", Type: Duration},
)

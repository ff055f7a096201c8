/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package scene implements the object model a scene document compiles into:
// a closed property type system, immutable property spaces, sparse
// inheritance-aware containers (presets, subjects, transitions) with
// CSS-like cascading value resolution, and the extension registry a host
// configures before parsing. Everything here is renderer-agnostic; the
// parser in internal/parser builds these objects and a downstream consumer
// walks them.
package scene

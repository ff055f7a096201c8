/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package parser compiles the tab-indented scene text format into the object
// graph defined by internal/scene. A per-line tokenizer feeds a stack of
// block parsers driven by indentation depth; dedenting pops and finalizes
// parsers, and the root parser's finalization yields the document's ordered
// transition list. The first error aborts the parse; every document error
// carries a zero-based line and column and can render itself with source
// context.
package parser

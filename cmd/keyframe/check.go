/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	applog "keyframe/internal/log"
	"keyframe/internal/parser"
)

var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Check a scene script",
	Long: `Check compiles the scene script and reports the first error with
source context, or a summary of the compiled scene on success.

Example:
  keyframe check intro.kf
  keyframe check intro.kf --json`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

// checkSummary is the --json output of a successful check.
type checkSummary struct {
	File        string `json:"file"`
	Subjects    int    `json:"subjects"`
	Transitions int    `json:"transitions"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	doc, source, err := compile(args[0])
	if err != nil {
		return err
	}

	if jsonOutput {
		out, err := json.MarshalIndent(checkSummary{
			File:        args[0],
			Subjects:    len(doc.Subjects),
			Transitions: len(doc.Transitions),
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}
	fmt.Printf("%s: ok (%d subject(s), %d transition(s), %d line(s))\n",
		args[0], len(doc.Subjects), len(doc.Transitions), countLines(source))
	return nil
}

// compile reads and parses one scene file, rendering positioned errors with
// source context. The crash context tracks the input for crash reports.
func compile(path string) (*parser.Document, string, error) {
	l := applog.WithOperation(applog.WithComponent("cli"), "compile").With(slog.String("file", path))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read scene: %w", err)
	}
	source := string(data)
	crashCtx.SourcePath = path
	crashCtx.Source = source

	doc, err := parser.ParseDocument(reg, path, source)
	if err != nil {
		var perr *parser.Error
		if errors.As(err, &perr) {
			fmt.Fprint(os.Stderr, perr.Render(source))
			l.Debug("compile failed", slog.Int("line", perr.Line+1))
			return nil, "", errors.New("scene check failed")
		}
		return nil, "", err
	}
	l.Debug("compile ok",
		slog.Int("subjects", len(doc.Subjects)),
		slog.Int("transitions", len(doc.Transitions)))
	return doc, source, nil
}

func countLines(source string) int {
	n := 1
	for _, r := range source {
		if r == '\n' {
			n++
		}
	}
	return n
}

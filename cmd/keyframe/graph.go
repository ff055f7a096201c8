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
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"keyframe/internal/scene"
)

var graphCmd = &cobra.Command{
	Use:   "graph <file>",
	Short: "Print the compiled transition program",
	Long: `Graph compiles the scene script and prints its transition program:
every transition in declaration order with its target, trigger mode,
effective duration, and parameters.

Example:
  keyframe graph intro.kf
  keyframe graph intro.kf --json`,
	Args: cobra.ExactArgs(1),
	RunE: runGraph,
}

// transitionRow is one entry of the --json program listing.
type transitionRow struct {
	Index      int            `json:"index"`
	Kind       string         `json:"kind"`
	Target     string         `json:"target"`
	TargetKind string         `json:"target_kind"`
	Auto       bool           `json:"auto"`
	DurationMs *float64       `json:"duration_ms,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

func runGraph(cmd *cobra.Command, args []string) error {
	doc, _, err := compile(args[0])
	if err != nil {
		return err
	}

	rows := make([]transitionRow, len(doc.Transitions))
	for i, t := range doc.Transitions {
		rows[i] = transitionRow{
			Index:      i,
			Kind:       t.Kind(),
			Target:     targetLabel(t.Target()),
			TargetKind: t.Target().Kind(),
			Auto:       t.Auto(),
			Parameters: transitionParams(t),
		}
		if v, err := t.Get("duration"); err == nil && v != nil {
			ms := v.(float64)
			rows[i].DurationMs = &ms
		}
	}

	if jsonOutput {
		out, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	if len(rows) == 0 {
		fmt.Println("No transitions.")
		return nil
	}
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tTARGET\tKIND\tTRIGGER\tDURATION")
	for _, r := range rows {
		trigger := "manual"
		if r.Auto {
			trigger = "auto"
		}
		duration := "-"
		if r.DurationMs != nil {
			duration = fmt.Sprintf("%gms", *r.DurationMs)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", r.Index, r.Target, r.Kind, trigger, duration)
	}
	w.Flush()
	for _, line := range strings.Split(strings.TrimRight(sb.String(), "\n"), "\n") {
		fmt.Println(strings.TrimRight(line, " "))
	}
	fmt.Printf("Total: %d transition(s)\n", len(rows))
	return nil
}

func targetLabel(s *scene.Subject) string {
	if s.Name() != "" {
		return s.Name()
	}
	return "<" + s.Kind() + ">"
}

func transitionParams(t *scene.Transition) map[string]any {
	out := t.Parameters()
	if len(out) == 0 {
		return nil
	}
	return out
}

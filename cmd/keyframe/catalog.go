/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"keyframe/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the local scene catalog",
	Long: `Catalog stores compiled scene scripts in a local database so they can
be listed and searched by name or content.

Examples:
  keyframe catalog add intro intro.kf
  keyframe catalog list
  keyframe catalog search rectangle
  keyframe catalog rm intro`,
}

var catalogAddCmd = &cobra.Command{
	Use:   "add <name> <file>",
	Short: "Compile a scene script and store it under a name",
	Args:  cobra.ExactArgs(2),
	RunE:  runCatalogAdd,
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored scenes",
	Args:  cobra.NoArgs,
	RunE:  runCatalogList,
}

var catalogRmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Remove a stored scene",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogRm,
}

var catalogSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over stored scenes",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogSearch,
}

func init() {
	catalogCmd.AddCommand(catalogAddCmd)
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogRmCmd)
	catalogCmd.AddCommand(catalogSearchCmd)
}

func openCatalog() (*catalog.Catalog, error) {
	path, err := catalogPath()
	if err != nil {
		return nil, err
	}
	cat, err := catalog.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	return cat, nil
}

func runCatalogAdd(cmd *cobra.Command, args []string) error {
	name, path := args[0], args[1]
	doc, source, err := compile(path)
	if err != nil {
		return err
	}
	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	rec, err := cat.Put(context.Background(), name, source, len(doc.Transitions), len(doc.Subjects))
	if err != nil {
		return fmt.Errorf("store scene: %w", err)
	}
	if jsonOutput {
		return printJSON(rec)
	}
	fmt.Printf("Stored %q (%d subject(s), %d transition(s))\n", rec.Name, rec.Subjects, rec.Transitions)
	return nil
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	recs, err := cat.List(context.Background())
	if err != nil {
		return fmt.Errorf("list scenes: %w", err)
	}
	return printRecords(recs)
}

func runCatalogRm(cmd *cobra.Command, args []string) error {
	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	name := args[0]
	if err := cat.Delete(context.Background(), name); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return fmt.Errorf("no scene named %q", name)
		}
		return fmt.Errorf("remove scene: %w", err)
	}
	if jsonOutput {
		return printJSON(map[string]string{"removed": name})
	}
	fmt.Printf("Removed %q\n", name)
	return nil
}

func runCatalogSearch(cmd *cobra.Command, args []string) error {
	cat, err := openCatalog()
	if err != nil {
		return err
	}
	defer cat.Close()

	recs, err := cat.Search(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("search scenes: %w", err)
	}
	return printRecords(recs)
}

func printRecords(recs []catalog.Record) error {
	if jsonOutput {
		return printJSON(recs)
	}
	if len(recs) == 0 {
		fmt.Println("No scenes stored.")
		return nil
	}
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSUBJECTS\tTRANSITIONS\tUPDATED")
	for _, r := range recs {
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", r.Name, r.Subjects, r.Transitions, r.UpdatedAt.Format("2006-01-02 15:04"))
	}
	w.Flush()
	for _, line := range strings.Split(strings.TrimRight(sb.String(), "\n"), "\n") {
		fmt.Println(strings.TrimRight(line, " "))
	}
	fmt.Printf("Total: %d scene(s)\n", len(recs))
	return nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

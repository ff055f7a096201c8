/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package main provides the keyframe CLI: check and inspect scene scripts,
// and manage the local scene catalog.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"keyframe/internal/config"
	"keyframe/internal/crash"
	applog "keyframe/internal/log"
	"keyframe/internal/manifest"
	"keyframe/internal/scene"
	"keyframe/internal/telemetry"
	"keyframe/internal/version"
)

var (
	// jsonOutput is set by the --json flag.
	jsonOutput bool

	// cfg is the loaded application config, initialized on startup.
	cfg config.AppConfig

	// reg is the scene registry with extension manifests applied.
	reg *scene.Registry

	// crashCtx is filled in by commands that compile scene sources, so a
	// crash report can include the offending input.
	crashCtx = &crash.Context{}
)

func main() {
	defer crash.Recover(crashCtx)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		telemetry.Event("command_failed", map[string]any{"err": err.Error()})
		flushTelemetry()
		os.Exit(1)
	}
	flushTelemetry()
}

var rootCmd = &cobra.Command{
	Use:   "keyframe",
	Short: "Keyframe compiles scene scripts into transition programs",
	Long: `Keyframe is a compiler and catalog for animated scene scripts.

A scene script declares views, entities, and presets, assigns their
properties, and schedules transitions. Keyframe checks scripts, prints
the resulting transition program, and stores validated scenes in a
per-user catalog.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "machine-readable output")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(catalogCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("keyframe %s\n", version.String())
	},
}

// setup loads config, initializes logging and telemetry, and builds the
// scene registry from the built-ins plus any extension manifests.
func setup(cmd *cobra.Command, args []string) error {
	// Skip setup for version command
	if cmd.Name() == "version" {
		return nil
	}

	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
	})

	tcfg := telemetry.FromEnv()
	tcfg.OptIn = tcfg.OptIn || cfg.General.TelemetryOptIn
	telemetry.NewDefault(tcfg)
	telemetry.Event("command", map[string]any{"name": cmd.Name()})

	reg = scene.NewRegistry()
	for _, dir := range cfg.Extensions.Dirs {
		ms, err := manifest.LoadDir(dir)
		if err != nil {
			return fmt.Errorf("load manifests from %s: %w", dir, err)
		}
		if err := manifest.ApplyAll(reg, ms); err != nil {
			return err
		}
	}
	return nil
}

// catalogPath resolves the catalog database location from config, falling
// back to the per-user default.
func catalogPath() (string, error) {
	if cfg.Catalog.Path != "" {
		return cfg.Catalog.Path, nil
	}
	return config.DefaultCatalogPath()
}

func flushTelemetry() {
	telemetry.Flush(context.Background())
}

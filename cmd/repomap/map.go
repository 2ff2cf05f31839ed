// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/petar-djukic/go-repomap/internal/discover"
	internal "github.com/petar-djukic/go-repomap/internal/repomap"
	"github.com/petar-djukic/go-repomap/pkg/repomap"
	"github.com/petar-djukic/go-repomap/pkg/types"
)

// newMapCmd creates the "map" command.
func newMapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "map [paths...]",
		Short: "Generate a repository map",
		Long: "Map expands the given files and directories into context files, ranks them and " +
			"prints the map. Focus files get a 20x boost, mentioned files 5x and mentioned identifiers 10x.",
		Example: `  repomap map .                              # Map current directory
  repomap map src/ --map-tokens 2048         # Map src/ with token limit
  repomap map --focus-files main.go .        # Boost files you're working on`,
		RunE: runMap,
	}

	f := cmd.Flags()
	f.Int("map-tokens", repomap.DefaultMapTokens, "Maximum tokens for the generated map (0 disables the map)")
	f.StringSlice("focus-files", nil, "Files being actively investigated or modified (20x boost)")
	f.StringSlice("context-files", nil, "Additional files to include in the map (replaces positional paths)")
	f.StringSlice("mentioned-files", nil, "Files explicitly mentioned in conversation (5x boost)")
	f.StringSlice("mentioned-idents", nil, "Identifiers to trace across the codebase (10x boost)")
	f.Int("max-context-window", 0, "Maximum context window size")
	f.Float64("token-ratio", 0.25, "Estimated tokens per character")
	f.Bool("force-refresh", false, "Force refresh of caches")
	f.Bool("exclude-unranked", false, "Exclude files with PageRank 0 from the map")
	f.StringSlice("exclude-extensions", nil, "File extensions to exclude (e.g. .js,.css)")
	f.StringSlice("exclude-dirs", nil, "Directory names to exclude (e.g. build,dist)")
	f.StringSlice("exclude", nil, "Glob patterns of relative paths to exclude (e.g. '**/*_test.go')")
	f.Bool("no-gitignore", false, "Include files ignored by .gitignore")
	f.String("prefix", "", "Text prepended to the map; {other} expands to 'context ' with focus files")
	f.Bool("json", false, "Print the result as JSON")

	for _, name := range []string{
		"map-tokens", "max-context-window", "token-ratio", "exclude-unranked",
		"exclude-extensions", "exclude-dirs", "exclude", "no-gitignore", "prefix",
	} {
		viper.BindPFlag(name, f.Lookup(name))
	}
	return cmd
}

// runMap executes the map command.
func runMap(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	focusArgs, _ := f.GetStringSlice("focus-files")
	contextArgs, _ := f.GetStringSlice("context-files")
	mentionedFiles, _ := f.GetStringSlice("mentioned-files")
	mentionedIdents, _ := f.GetStringSlice("mentioned-idents")
	forceRefresh, _ := f.GetBool("force-refresh")
	asJSON, _ := f.GetBool("json")

	verbose := viper.GetBool("verbose")
	sink := &internal.StdSink{Out: cmd.OutOrStdout(), Err: cmd.ErrOrStderr()}
	log := newLogger(verbose)

	paths := args
	if len(contextArgs) > 0 {
		paths = contextArgs
	}
	opts := discover.Options{
		ExcludeExtensions: viper.GetStringSlice("exclude-extensions"),
		ExcludeDirs:       viper.GetStringSlice("exclude-dirs"),
		ExcludeGlobs:      viper.GetStringSlice("exclude"),
		NoGitignore:       viper.GetBool("no-gitignore"),
	}
	var contextFiles []string
	for _, p := range paths {
		files, err := discover.Files(p, opts)
		if err != nil {
			return fmt.Errorf("discovering files in %s: %w", p, err)
		}
		contextFiles = append(contextFiles, files...)
	}
	log.Debug().Int("files", len(contextFiles)).Strs("paths", paths).Msg("discovered context files")

	focusFiles, err := absPaths(focusArgs)
	if err != nil {
		return err
	}

	m, err := repomap.New(repomap.Config{
		Root:              viper.GetString("root"),
		MapTokens:         viper.GetInt("map-tokens"),
		CacheDir:          viper.GetString("cache-dir"),
		NoCache:           viper.GetBool("no-cache"),
		TokenRatio:        viper.GetFloat64("token-ratio"),
		ExcludeUnranked:   viper.GetBool("exclude-unranked"),
		MaxContextWindow:  viper.GetInt("max-context-window"),
		RepoContentPrefix: viper.GetString("prefix"),
		Verbose:           verbose,
		Sink:              sink,
		Logger:            log,
	})
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	defer m.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	result, err := m.Map(ctx, repomap.Request{
		FocusFiles:      focusFiles,
		ContextFiles:    contextFiles,
		MentionedFiles:  mentionedFiles,
		MentionedIdents: mentionedIdents,
		ForceRefresh:    forceRefresh,
	})
	if err != nil {
		return fmt.Errorf("generating repository map: %w", err)
	}

	if verbose {
		st := m.CacheStats()
		sink.Info(fmt.Sprintf("Tags cache: %d hits · %d parses · %d recoveries", st.Hits, st.Parses, st.Recoveries))
	}

	if asJSON {
		return printResult(cmd, result)
	}
	if result == nil {
		sink.Info("No repository map generated.")
		return nil
	}
	total := len(contextFiles) + len(focusFiles)
	sink.Info(fmt.Sprintf("Analysed %d files · ranked %d · ~%d tokens", total, m.RankedFiles(), result.Tokens))
	fmt.Fprintln(cmd.OutOrStdout(), result.Map)
	return nil
}

// printResult outputs the result as JSON to stdout.
func printResult(cmd *cobra.Command, result *types.MapResult) error {
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func absPaths(paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", p, err)
		}
		out = append(out, abs)
	}
	return out, nil
}

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	internal "github.com/petar-djukic/go-repomap/internal/repomap"
	"github.com/petar-djukic/go-repomap/pkg/repomap"
)

// newCacheCmd creates the "cache" command group.
func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the tags cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached tag entry",
		RunE:  runCacheClear,
	})
	return cmd
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	root := viper.GetString("root")
	dir := viper.GetString("cache-dir")
	if dir == "" {
		dir = filepath.Join(root, internal.TagsCacheDirName)
	}

	m, err := repomap.New(repomap.Config{
		Root:     root,
		CacheDir: dir,
		Sink:     &internal.StdSink{Out: cmd.OutOrStdout(), Err: cmd.ErrOrStderr()},
		Logger:   newLogger(viper.GetBool("verbose")),
	})
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	defer m.Close()

	if err := m.ClearCache(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cleared tags cache in %s\n", dir)
	return nil
}

// Copyright 2025 Relic ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/relic-ml/relic/internal/serialization"
)

var flagSkipChecksum bool

var inspectCmd = &cobra.Command{
	Use:   "inspect <artifact.relic>",
	Short: "Summarize an artifact: header, metadata, and payload totals",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return inspect(args[0])
	},
}

func init() {
	inspectCmd.Flags().BoolVar(&flagSkipChecksum, "skip-checksum", false,
		"skip payload checksum validation while reading")
}

func inspect(path string) error {
	reader, err := serialization.NewReaderWithOptions(path, serialization.ReaderOptions{
		SkipChecksumValidation: flagSkipChecksum,
	})
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer reader.Close()

	header := reader.Header()
	checksum := reader.Checksum()

	var totalParams, totalBytes int64
	for _, meta := range header.Tensors {
		totalParams += elementCount(meta.Shape)
		totalBytes += meta.Size
	}

	fmt.Println(titleStyle.Render("Summary"))
	table := newPlainTable(false, lipgloss.Right, lipgloss.Left)
	table.Row("artifact", path)
	table.Row("artifact_id", header.ArtifactID)
	table.Row("model_type", header.ModelType)
	table.Row("format_version", fmt.Sprintf("%d", header.FormatVersion))
	table.Row("relic_version", header.RelicVersion)
	table.Row("created_at", header.CreatedAt.Format(time.RFC3339))
	table.Row("checksum", hex.EncodeToString(checksum[:]))
	table.Row("# tensors", humanize.Comma(int64(len(header.Tensors))))
	table.Row("# parameters", humanize.Comma(totalParams))
	table.Row("# bytes", humanize.Bytes(uint64(totalBytes)))
	fmt.Println(table.Render())

	if header.Checkpoint != nil {
		cp := header.Checkpoint
		fmt.Println(titleStyle.Render("Checkpoint"))
		table := newPlainTable(false, lipgloss.Right, lipgloss.Left)
		table.Row("epoch", humanize.Comma(int64(cp.Epoch)))
		table.Row("step", humanize.Comma(cp.Step))
		table.Row("loss", fmt.Sprintf("%g", cp.Loss))
		for _, key := range sortedKeys(cp.TrainingMeta) {
			table.Row(key, fmt.Sprintf("%v", cp.TrainingMeta[key]))
		}
		fmt.Println(table.Render())
	}

	if len(header.Metadata) > 0 {
		fmt.Println(titleStyle.Render("Metadata"))
		table := newPlainTable(true, lipgloss.Right, lipgloss.Left)
		table.Headers("Key", "Value")
		keys := make([]string, 0, len(header.Metadata))
		for key := range header.Metadata {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			table.Row(key, header.Metadata[key])
		}
		fmt.Println(table.Render())
	}
	return nil
}

func elementCount(shape []int) int64 {
	count := int64(1)
	for _, dim := range shape {
		count *= int64(dim)
	}
	return count
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

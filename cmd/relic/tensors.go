// Copyright 2025 Relic ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/relic-ml/relic/internal/serialization"
)

var flagPrefix string

var tensorsCmd = &cobra.Command{
	Use:   "tensors <artifact.relic>",
	Short: "List the tensors stored in an artifact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return listTensors(args[0])
	},
}

func init() {
	tensorsCmd.Flags().StringVar(&flagPrefix, "prefix", "",
		"only list tensors whose name starts with this prefix")
}

func listTensors(path string) error {
	reader, err := serialization.NewReader(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer reader.Close()

	fmt.Println(titleStyle.Render("Tensors"))
	table := newPlainTable(true, lipgloss.Left, lipgloss.Left, lipgloss.Left, lipgloss.Right, lipgloss.Right)
	table.Headers("Name", "DType", "Shape", "Size", "Bytes")

	var listed int
	for _, name := range reader.TensorNames() {
		if flagPrefix != "" && !strings.HasPrefix(name, flagPrefix) {
			continue
		}
		meta, err := reader.TensorInfo(name)
		if err != nil {
			return err
		}
		table.Row(name, meta.DType, shapeString(meta.Shape),
			humanize.Comma(elementCount(meta.Shape)),
			humanize.Bytes(uint64(meta.Size)))
		listed++
	}
	if listed == 0 {
		fmt.Println("no tensors matched")
		return nil
	}
	fmt.Println(table.Render())
	return nil
}

func shapeString(shape []int) string {
	dims := make([]string, len(shape))
	for i, dim := range shape {
		dims[i] = fmt.Sprintf("%d", dim)
	}
	return "[" + strings.Join(dims, ", ") + "]"
}

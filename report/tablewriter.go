/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package report

import (
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

// column is one column of a report table. Numeric cells are right aligned.
type column struct {
	header  string
	numeric bool
}

func textColumns(headers ...string) []column {
	out := make([]column, len(headers))
	for i, h := range headers {
		out[i] = column{header: h}
	}
	return out
}

func numericColumns(headers ...string) []column {
	out := textColumns(headers...)
	for i := range out {
		out[i].numeric = true
	}
	return out
}

// newReportTable creates a markdown table over columns writing to w.
// Headers stay left aligned.
func newReportTable(w io.Writer, columns []column) *tablewriter.Table {
	headers := make([]string, len(columns))
	aligns := make([]tw.Align, len(columns))
	for i, c := range columns {
		headers[i] = c.header
		aligns[i] = tw.AlignLeft
		if c.numeric {
			aligns[i] = tw.AlignRight
		}
	}

	cfg := tablewriter.Config{
		Header: tw.CellConfig{
			Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			Formatting: tw.CellFormatting{AutoFormat: tw.Off},
		},
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignLeft, PerColumn: aligns},
		},
		MaxWidth: 120,
		Behavior: tw.Behavior{TrimSpace: tw.Off},
	}
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(cfg),
		tablewriter.WithHeader(headers),
		tablewriter.WithRenderer(renderer.NewBlueprint()),
		tablewriter.WithRendition(tw.Rendition{
			Symbols: tw.NewSymbols(tw.StyleMarkdown),
			Borders: tw.Border{Left: tw.On, Right: tw.On, Top: tw.Off, Bottom: tw.Off},
		}),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
	)
}

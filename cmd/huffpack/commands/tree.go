// Copyright 2026 The Huffpack Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	json "github.com/goccy/go-json"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/huffpack/huffpack/cmd/huffpack/cli"
	"github.com/huffpack/huffpack/lib/container"
	"github.com/huffpack/huffpack/lib/huffman"
)

func treeCommand() *cli.Command {
	var (
		freqSpec string
		asJSON   bool
		plain    bool
	)

	return &cli.Command{
		Name:    "tree",
		Summary: "Render the code tree for a file or frequency spec",
		Usage:   "huffpack tree [file] [flags]",
		Description: `Build the code tree a compression would use and render it.

Input is either a file (symbol frequencies are counted from its bytes)
or an explicit frequency spec via --freq, a JSON object mapping single
characters to counts. The rendering shows each node's weight and the
0/1 bit on every edge; below it the derived code table is printed.

Output is colored when stdout is a terminal; --plain forces the
unstyled form. With --json the tree is emitted as the same JSON
document the server's /api/visualize endpoint returns.`,
		Examples: []cli.Example{
			{
				Description: "Render the code tree for a file",
				Command:     "huffpack tree notes.txt",
			},
			{
				Description: "Render the tree for explicit frequencies",
				Command:     `huffpack tree --freq '{"a":3,"b":2,"c":1}'`,
			},
			{
				Description: "Emit the tree as JSON",
				Command:     "huffpack tree notes.txt --json",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("tree", pflag.ContinueOnError)
			flagSet.StringVar(&freqSpec, "freq", "", "JSON frequency spec instead of a file")
			flagSet.BoolVar(&asJSON, "json", false, "emit the tree as a JSON document")
			flagSet.BoolVar(&plain, "plain", false, "disable styled output")
			return flagSet
		},
		Run: func(args []string) error {
			table, err := loadFrequencies(args, freqSpec)
			if err != nil {
				return err
			}

			root, err := huffman.BuildTree(table)
			if err != nil {
				return err
			}

			if asJSON {
				return writeTreeJSON(os.Stdout, huffman.NewTreeView(root))
			}

			style := styledTree()
			if plain || !term.IsTerminal(int(os.Stdout.Fd())) {
				style = plainTree()
			}
			renderTree(os.Stdout, huffman.NewTreeView(root), style)
			printCodeTable(os.Stdout, huffman.BuildCodes(root))
			return nil
		},
	}
}

// loadFrequencies resolves the tree input: the bytes of the single
// file argument, or the JSON spec given with --freq.
func loadFrequencies(args []string, freqSpec string) (huffman.FrequencyTable, error) {
	if freqSpec != "" && len(args) > 0 {
		return nil, fmt.Errorf("give either a file or --freq, not both")
	}

	if freqSpec != "" {
		var spec map[string]int
		if err := json.Unmarshal([]byte(freqSpec), &spec); err != nil {
			return nil, fmt.Errorf("parsing --freq: %w", err)
		}
		return container.ParseFrequencySpec(spec)
	}

	switch len(args) {
	case 0:
		return nil, fmt.Errorf("an input file or --freq is required")
	case 1:
	default:
		return nil, fmt.Errorf("at most one input file, got %d", len(args))
	}

	content, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", args[0], err)
	}
	if len(content) == 0 {
		return nil, fmt.Errorf("%s is empty, there is no tree to build", args[0])
	}
	return huffman.Count(content), nil
}

// writeTreeJSON emits the visualization document for the tree.
func writeTreeJSON(out io.Writer, view *huffman.TreeView) error {
	document, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding tree: %w", err)
	}
	_, err = fmt.Fprintln(out, string(document))
	return err
}

// treeStyle holds the lipgloss styles of each rendered element. The
// plain variant uses empty styles, which render text unchanged.
type treeStyle struct {
	edge     lipgloss.Style
	bitZero  lipgloss.Style
	bitOne   lipgloss.Style
	symbol   lipgloss.Style
	weight   lipgloss.Style
	internal lipgloss.Style
}

// styledTree is the 256-color palette for dark terminals: faint
// connectors, blue 0-edges, orange 1-edges, green leaf symbols.
func styledTree() treeStyle {
	return treeStyle{
		edge:     lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		bitZero:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75")),
		bitOne:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208")),
		symbol:   lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
		weight:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		internal: lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
	}
}

func plainTree() treeStyle {
	return treeStyle{
		edge:     lipgloss.NewStyle(),
		bitZero:  lipgloss.NewStyle(),
		bitOne:   lipgloss.NewStyle(),
		symbol:   lipgloss.NewStyle(),
		weight:   lipgloss.NewStyle(),
		internal: lipgloss.NewStyle(),
	}
}

func (s treeStyle) bit(label string) string {
	if label == "0" {
		return s.bitZero.Render("0")
	}
	return s.bitOne.Render("1")
}

func (s treeStyle) label(node *huffman.TreeView) string {
	weight := s.weight.Render(fmt.Sprintf("(%d)", node.Freq))
	if node.IsLeaf {
		return s.symbol.Render(symbolLabel(*node.Char)) + " " + weight
	}
	return s.internal.Render("●") + " " + weight
}

// renderTree draws the tree with box-drawing connectors, one node per
// line, each edge labeled with its bit:
//
//	● (6)
//	├─0─ 'a' (3)
//	└─1─ ● (3)
//	     ├─0─ 'c' (1)
//	     └─1─ 'b' (2)
func renderTree(out io.Writer, view *huffman.TreeView, style treeStyle) {
	fmt.Fprintln(out, style.label(view))
	renderChildren(out, view, "", style)
}

func renderChildren(out io.Writer, node *huffman.TreeView, prefix string, style treeStyle) {
	for i, child := range node.Children {
		branch, continuation := "├─", "│    "
		if i == len(node.Children)-1 {
			branch, continuation = "└─", "     "
		}
		fmt.Fprintf(out, "%s%s%s%s %s\n",
			prefix,
			style.edge.Render(branch),
			style.bit(child.EdgeLabel),
			style.edge.Render("─"),
			style.label(child),
		)
		renderChildren(out, child, prefix+style.edge.Render(continuation), style)
	}
}

// symbolLabel renders a symbol for display: quoted when printable,
// hex otherwise. Space is shown as hex because a bare quoted space
// disappears between table columns.
func symbolLabel(symbol string) string {
	r := []rune(symbol)[0]
	if r != ' ' && strconv.IsPrint(r) {
		return fmt.Sprintf("'%c'", r)
	}
	return fmt.Sprintf("0x%02X", r)
}

// printCodeTable prints the code of every symbol in byte order.
func printCodeTable(out io.Writer, codes huffman.CodeTable) {
	symbols := make([]byte, 0, len(codes))
	for symbol := range codes {
		symbols = append(symbols, symbol)
	}
	slices.Sort(symbols)

	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(writer, "\nSYMBOL\tCODE\tBITS\n")
	for _, symbol := range symbols {
		code := codes[symbol]
		fmt.Fprintf(writer, "%s\t%s\t%d\n", symbolLabel(string(rune(symbol))), code, len(code))
	}
	writer.Flush()
}

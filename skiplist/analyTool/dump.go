package analyTool

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/Hakuto4838/probskip/skiplist"
)

// Dump 以表格印出 skip list 的結構，最高層在上
//
// Each column is one node in key order (at most maxNodes, 0 means all).
// A node shows its key on every layer it is linked into and "key=value
// (lv n)" on its top layer. For debugging only.
func Dump[K any, V any](w io.Writer, sl skiplist.Analyable[K, V], desc string, maxNodes int) error {
	size, level := sl.GetMaxStats()
	if _, err := fmt.Fprintf(w, "== %s: len=%d level=%d ==\n", desc, size, level); err != nil {
		return err
	}
	if level == 0 {
		_, err := fmt.Fprintln(w, "(empty)")
		return err
	}

	var nodes []skiplist.Nodelike[K, V]
	for node := sl.GetHead().GetNextAt(0); node != nil; node = node.GetNextAt(0) {
		if maxNodes > 0 && len(nodes) >= maxNodes {
			break
		}
		nodes = append(nodes, node)
	}

	header := make([]string, 0, len(nodes)+1)
	header = append(header, "layer")
	for i := range nodes {
		header = append(header, fmt.Sprintf("#%d", i))
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoWrapText(false)
	for h := level - 1; h >= 0; h-- {
		row := make([]string, 0, len(nodes)+1)
		row = append(row, fmt.Sprintf("%d", h))
		for _, node := range nodes {
			lv := node.GetLevel()
			switch {
			case h == lv-1:
				row = append(row, fmt.Sprintf("%v=%v (lv %d)", node.GetKey(), node.GetValue(), lv))
			case h < lv:
				row = append(row, fmt.Sprintf("%v", node.GetKey()))
			default:
				row = append(row, "")
			}
		}
		table.Append(row)
	}
	table.Render()
	if maxNodes > 0 && size > maxNodes {
		_, err := fmt.Fprintf(w, "... %d more\n", size-maxNodes)
		return err
	}
	return nil
}

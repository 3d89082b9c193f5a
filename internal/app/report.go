package app

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/vk/promptgrid/internal/convert"
	"github.com/vk/promptgrid/internal/graph"
	"github.com/vk/promptgrid/internal/value"
)

// printOutputs writes every node's outputs, nodes ordered by id and outputs
// by port name.
func printOutputs(w io.Writer, nodes []graph.Node) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	for _, n := range nodes {
		fmt.Fprintf(w, "%s [%s]\n", n.ID, n.Type)
		keys := make([]string, 0, len(n.Data.Outputs))
		for k := range n.Data.Outputs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "  %s = %s\n", k, formatValue(n.Data.Outputs[k]))
		}
	}
}

func formatValue(v value.Value) string {
	switch {
	case v.IsNull():
		return "null"
	case v.Tag == value.Number:
		return convert.FormatNumber(v.Num)
	default:
		return strconv.Quote(v.Str)
	}
}

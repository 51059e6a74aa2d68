package bdd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"
)

// Stats reports the node-table occupancy and garbage-collection history of
// b, in the same shape the teacher package reports them, minus the
// debug-only cache hit-rate section (folded away with _DEBUG, see
// kernel.go).
func (b *BDD) Stats() string {
	res := fmt.Sprintf("Varnum:     %d\n", b.varnum)
	res += fmt.Sprintf("Allocated:  %d\n", len(b.nodes))
	res += fmt.Sprintf("Produced:   %d\n", b.produced)
	r := (float64(b.freenum) / float64(len(b.nodes))) * 100
	res += fmt.Sprintf("Free:       %d  (%.3g %%)\n", b.freenum, r)
	res += fmt.Sprintf("Used:       %d  (%.3g %%)\n", len(b.nodes)-b.freenum, 100.0-r)
	res += "==============\n"
	res += fmt.Sprintf("# of GC:    %d\n", len(b.gcHistory))
	return res
}

// PrintSet writes a textual dump of every node reachable from n (or of
// every live node, if n is empty) to w.
func (b *BDD) PrintSet(w io.Writer, n ...Node) {
	if b.err != nil {
		fmt.Fprintf(w, "Error: %s\n", b.err)
		return
	}
	if len(n) == 1 && n[0] != nil {
		switch *n[0] {
		case 0:
			fmt.Fprintln(w, "False")
			return
		case 1:
			fmt.Fprintln(w, "True")
			return
		}
	}
	nodes := make([][4]int, 0)
	err := b.Allnodes(func(id, level, low, high int) error {
		i := sort.Search(len(nodes), func(i int) bool { return nodes[i][0] >= id })
		nodes = append(nodes, [4]int{})
		copy(nodes[i+1:], nodes[i:])
		nodes[i] = [4]int{id, level, low, high}
		return nil
	}, n...)
	if err != nil {
		fmt.Fprintln(w, err.Error())
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 0, ' ', 0)
	for _, e := range nodes {
		if e[0] > 1 {
			fmt.Fprintf(tw, "%d\t[%d\t] ? \t%d\t : %d\n", e[0], e[1], e[2], e[3])
		}
	}
	tw.Flush()
}

// PrintDot writes a DOT-format graph of every node reachable from n (or of
// the whole table, if n is empty) to filename, or to stdout if filename is
// "-".
func (b *BDD) PrintDot(filename string, n ...Node) error {
	var out *os.File
	var err error
	if filename == "-" {
		out = os.Stdout
	} else {
		out, err = os.Create(filename)
		if err != nil {
			return err
		}
		defer out.Close()
	}
	w := bufio.NewWriter(out)
	defer w.Flush()
	if b.err != nil {
		fmt.Fprintf(w, "Error: %s\n", b.err)
		return b.err
	}
	fmt.Fprintln(w, "digraph G {")
	fmt.Fprintln(w, `1 [shape=box, label="1", style=filled, shape=box, height=0.3, width=0.3];`)
	err = b.Allnodes(func(id, level, low, high int) error {
		if id > 1 {
			fmt.Fprintf(w, "%d %s\n", id, dotlabel(id, level))
			if low != 0 {
				fmt.Fprintf(w, "%d -> %d [style=dotted];\n", id, low)
			}
			if high != 0 {
				fmt.Fprintf(w, "%d -> %d [style=filled];\n", id, high)
			}
		}
		return nil
	}, n...)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "}")
	return nil
}

func dotlabel(a, b int) string {
	return fmt.Sprintf(`[label=<
	<FONT POINT-SIZE="20">%d</FONT>
	<FONT POINT-SIZE="10">[%d]</FONT>
>];`, b, a)
}

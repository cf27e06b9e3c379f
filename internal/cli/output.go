package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/trudi-group/fbas-analyzer-go/internal/fbas"
)

// output formats analysis results for a single CLI invocation, following
// the same results-only/pretty/describe toggles the results themselves are
// computed under.
type output struct {
	w          io.Writer
	resultsOnly bool
	pretty      bool
	describe    bool
	fbas        *fbas.Fbas
	groupings   *fbas.Groupings
}

func newOutput(w io.Writer, resultsOnly, pretty, describe bool, f *fbas.Fbas, g *fbas.Groupings) *output {
	o := &output{w: w, resultsOnly: resultsOnly, pretty: pretty, describe: describe, fbas: f, groupings: g}
	if !resultsOnly {
		if !pretty {
			fmt.Fprintln(o.w, "In the following dumps, nodes are identified by node IDs corresponding to their index in the input file.")
		}
		if describe {
			fmt.Fprintln(o.w, "Description strings of any \"set of sets\" have the format "+
				"(number_of_sets, number_of_distinct_nodes, (min_set_size, max_set_size, mean_set_size), "+
				"[ #members with size 0, #members with size 1, ... , #members with maximum size ]")
		}
	}
	return o
}

func (o *output) comment(s string) {
	if !o.resultsOnly {
		fmt.Fprintln(o.w, s)
	}
}

func (o *output) commentNewline() {
	if !o.resultsOnly {
		fmt.Fprintln(o.w)
	}
}

func (o *output) result(name string, r renderable) {
	if o.describe {
		fmt.Fprintf(o.w, "%s: %s\n", name, r.describeString())
		return
	}
	o.resultUncondensed(name, r)
}

func (o *output) resultUncondensed(name string, r renderable) {
	var s string
	if o.pretty {
		s = r.prettyString(o.fbas, o.groupings)
	} else {
		s = r.idString()
	}
	fmt.Fprintf(o.w, "%s: %s\n", name, s)
}

func (o *output) timedResult(name string, r renderable, d time.Duration) {
	o.result(name, r)
	fmt.Fprintf(o.w, "%s_analysis_duration: %gs\n", name, d.Seconds())
}

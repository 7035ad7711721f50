package cli

import (
	"fmt"
	"io"
)

// printScenarioRun writes the header line, rows and assertion failures of one
// scenario run.
func printScenarioRun(w io.Writer, r ScenarioRun) {
	header := fmt.Sprintf("%s %s (%s) digest %s", mark(r.Pass), r.Name, r.Pipeline, shortDigest(r.Digest))
	if r.RunID != "" {
		header += " run " + r.RunID
	}
	fmt.Fprintln(w, header)

	for _, row := range r.Rows {
		fmt.Fprintf(w, "    %s\n", formatRow(r.Pipeline, row))
	}
	for _, e := range r.Errors {
		fmt.Fprintf(w, "  %s\n", e)
	}
}

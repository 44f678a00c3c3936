package output

import (
	"fmt"
	"io"

	"github.com/inodb/intact-bridges/internal/uniprot"
)

// WriteReports writes one tab-delimited line per report, ordered by identifier.
func WriteReports(w io.Writer, reports map[string][]uniprot.Report) error {
	for _, id := range uniprot.SortedIdentifiers(reports) {
		for _, r := range reports[id] {
			if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", id, r.Kind, r.Message); err != nil {
				return err
			}
		}
	}
	return nil
}

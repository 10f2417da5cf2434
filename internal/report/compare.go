package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"codestat/internal/history"
)

// PrintComparison 输出与上一次运行的差异。
func PrintComparison(writer io.Writer, previous history.Record, deltas []history.Delta) error {
	if _, err := fmt.Fprintf(writer, "\nCompared with run %s (%s)\n", previous.ID, previous.Time.Format("2006-01-02 15:04:05")); err != nil {
		return err
	}
	if len(deltas) == 0 {
		_, err := fmt.Fprintln(writer, "no changes")
		return err
	}

	tw := tabwriter.NewWriter(writer, 0, 4, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "LANGUAGE\tFILES\tLINES\tCODE"); err != nil {
		return err
	}
	for _, delta := range deltas {
		if _, err := fmt.Fprintf(tw, "%s\t%+d\t%+d\t%+d\n", delta.Language, delta.Files, delta.Lines, delta.CodeLines); err != nil {
			return err
		}
	}
	return tw.Flush()
}

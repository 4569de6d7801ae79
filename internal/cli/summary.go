package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/fjglira/GoRPA-OrderBot/internal/domain"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// printSummary writes one line per order and the totals.
func printSummary(w io.Writer, s *domain.RunSummary, dryRun bool) {
	if s == nil {
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROW\tREF\tSTATUS\tCLICKS\tORDER\tTIME")
	for _, o := range s.Outcomes {
		order := "-"
		if o.Receipt != nil {
			order = o.Receipt.OrderNumber
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\n",
			o.Record.Row, dash(o.Record.Reference), statusColor(o.Status), o.SubmitClicks, order, o.Duration.Round(time.Millisecond))
	}
	tw.Flush()

	fmt.Fprintf(w, "\n%s %s, %s, %s\n", bold("Run "+s.RunID+":"),
		green(fmt.Sprintf("%d succeeded", s.Count(domain.StatusSucceeded))),
		red(fmt.Sprintf("%d failed", s.Count(domain.StatusFailed))),
		yellow(fmt.Sprintf("%d skipped", s.Count(domain.StatusSkipped))))
	switch {
	case dryRun:
		fmt.Fprintln(w, "Dry run: no orders were placed.")
	case s.ArchivePath != "":
		fmt.Fprintf(w, "Receipts archived to %s\n", s.ArchivePath)
	}

	for _, o := range s.Outcomes {
		if o.Err != nil {
			fmt.Fprintf(w, "%s %s: %v\n", red("error"), o.Record.Label(), o.Err)
		}
	}
}

func statusColor(status domain.OrderStatus) string {
	switch status {
	case domain.StatusSucceeded:
		return green(string(status))
	case domain.StatusFailed:
		return red(string(status))
	default:
		return yellow(string(status))
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

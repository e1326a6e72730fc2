package cli

import (
	"fmt"
	"io"
	"strings"

	"grant-fetcher/internal/api"
	"grant-fetcher/internal/domain"
	"grant-fetcher/internal/services"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const displayTimeFormat = "2006-01-02 15:04:05"

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// renderSearch prints every field of a saved search.
func renderSearch(out io.Writer, s domain.SavedSearch) {
	in := s.Filter.ToInput()

	t := newTable(out)
	t.SetTitle(s.Name)
	t.AppendHeader(table.Row{"Field", "Value"})
	t.AppendRows([]table.Row{
		{"Start year", orDash(in.StartYear)},
		{"End year", orDash(in.EndYear)},
		{"Min amount", orDash(in.MinAmount)},
		{"Max amount", orDash(in.MaxAmount)},
		{"Subjects", orDash(in.Subjects)},
		{"Populations", orDash(in.Populations)},
		{"Locations", orDash(in.Locations)},
		{"Support strategies", orDash(in.SupportStrategies)},
		{"Output prefix", orDash(s.OutputPrefix)},
	})
	if !s.SavedAt.IsZero() {
		t.AppendFooter(table.Row{"Saved", s.SavedAt.Local().Format(displayTimeFormat)})
	}
	t.Render()
}

// renderRuns prints the run history table.
func renderRuns(out io.Writer, runs []domain.FetchRun) {
	t := newTable(out)
	t.AppendHeader(table.Row{"ID", "Started", "Search", "Status", "Pages", "Hits", "Rows", "Output / Error"})
	for _, r := range runs {
		detail := r.OutputPath
		if r.Status == domain.RunStatusFailed {
			detail = strings.TrimSpace(r.ErrorCode + " " + truncate(r.ErrorMessage, 60))
		}
		t.AppendRow(table.Row{
			r.ID,
			r.StartedAt.Local().Format(displayTimeFormat),
			orDash(r.SearchName),
			statusText(r.Status),
			fmt.Sprintf("%d/%d", r.PagesFetched, r.PagesRequested),
			r.TotalHits,
			r.RowCount,
			orDash(detail),
		})
	}
	t.Render()
}

func statusText(s domain.RunStatus) string {
	switch s {
	case domain.RunStatusWritten:
		return text.FgGreen.Sprint(string(s))
	case domain.RunStatusFailed:
		return text.FgRed.Sprint(string(s))
	default:
		return text.FgYellow.Sprint(string(s))
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// renderSummary prints per-search totals with an overall footer.
func renderSummary(out io.Writer, s *services.HistorySummary) {
	t := newTable(out)
	t.AppendHeader(table.Row{"Search", "Runs", "Written", "Failed", "Pages", "Rows", "Time", "Last run"})
	for _, a := range s.Searches {
		t.AppendRow(table.Row{
			a.SearchName,
			a.RunCount,
			a.WrittenCount,
			a.FailedCount,
			a.PagesFetched,
			a.RowsWritten,
			a.TotalTime,
			a.LastRun.Local().Format(displayTimeFormat) + " " + statusText(a.LastStatus),
		})
	}
	t.AppendFooter(table.Row{"Total", s.RunCount, s.WrittenCount, s.FailedCount, "", s.RowsWritten, s.TotalTime, ""})
	t.Render()
}

// printRunResult reports a successful run.
func printRunResult(out io.Writer, res *api.RunResult) {
	rs := res.ResultSet
	if res.Saved != nil {
		fmt.Fprintf(out, "Saved search %q\n", res.Saved.Name)
	}
	if rs.NumPages > 0 {
		fmt.Fprintf(out, "Fetched pages %d-%d of %d (%d total hits)\n", rs.FirstPage, rs.LastPage, rs.NumPages, rs.TotalHits)
	} else {
		fmt.Fprintf(out, "Fetched pages %d-%d\n", rs.FirstPage, rs.LastPage)
	}
	fmt.Fprintf(out, "Wrote %d grants to %s\n", rs.RowCount, text.Bold.Sprint(res.Path))
}

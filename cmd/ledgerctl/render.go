package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	chatdomain "github.com/boddenberg/spending-insights-go/internal/chat/domain"
	"github.com/boddenberg/spending-insights-go/internal/domain"
)

// barWidth is the length of the longest bar in a chart.
const barWidth = 30

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderStats(w io.Writer, stats domain.LoadStats) {
	fmt.Fprintln(w, titleStyle.Render("Ledger loaded"))
	fmt.Fprintf(w, "%s %s\n", subtleStyle.Render("source:  "), stats.Source)
	fmt.Fprintf(w, "%s %d\n", subtleStyle.Render("rows:    "), stats.Rows)
	fmt.Fprintf(w, "%s %d\n", subtleStyle.Render("accepted:"), stats.Accepted)

	if stats.Rejected == 0 {
		fmt.Fprintf(w, "%s 0\n", subtleStyle.Render("rejected:"))
		return
	}
	fmt.Fprintf(w, "%s %s\n", subtleStyle.Render("rejected:"), warningStyle.Render(fmt.Sprint(stats.Rejected)))

	reasons := make([]string, 0, len(stats.RejectReasons))
	for r := range stats.RejectReasons {
		reasons = append(reasons, r)
	}
	sort.Strings(reasons)
	for _, r := range reasons {
		fmt.Fprintf(w, "  %-10s %d\n", r, stats.RejectReasons[r])
	}
}

func renderCategories(w io.Writer, p domain.Period, cats []domain.CategorySummary) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Top categories, %s %d", p.Label(), p.Year)))
	if len(cats) == 0 {
		fmt.Fprintln(w, subtleStyle.Render("No spending in this period."))
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
		headerStyle.Render(""), headerStyle.Render("Category"), headerStyle.Render("Amount"), headerStyle.Render("Share"))
	for _, c := range cats {
		fmt.Fprintf(tw, "%s\t%s\t$%d\t%d%%\n", c.DisplayIcon, c.Name, c.TotalAmount, c.PercentOfPeriodTotal)
	}
	tw.Flush()
}

func renderDaily(w io.Writer, p domain.Period, points []domain.DayPoint) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Cumulative spending, %s %d", p.Label(), p.Year)))
	if len(points) == 0 {
		fmt.Fprintln(w, subtleStyle.Render("No spending in this period."))
		return
	}

	peak := points[len(points)-1].Amount
	for _, pt := range points {
		fmt.Fprintf(w, "%s %s $%d\n", pt.Day, bar(pt.Amount, peak), pt.Amount)
	}
}

func renderTrend(w io.Writer, points []domain.TrendPoint) {
	fmt.Fprintln(w, titleStyle.Render("Monthly trend"))
	if len(points) == 0 {
		fmt.Fprintln(w, subtleStyle.Render("No transactions loaded."))
		return
	}

	var peak int64
	for _, pt := range points {
		if pt.Amount > peak {
			peak = pt.Amount
		}
	}
	for _, pt := range points {
		fmt.Fprintf(w, "%-3s %s $%d\n", pt.Month, bar(pt.Amount, peak), pt.Amount)
	}
}

func renderSummary(w io.Writer, insight domain.Insight) {
	c := insight.Comparison
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s vs %s", c.Current, c.Previous)))
	fmt.Fprintln(w, boxStyle.Render(insight.Narrative))

	change := fmt.Sprintf("%+.2f (%d%%)", c.Change, c.PercentChange)
	if c.Change > 0 {
		change = warningStyle.Render(change)
	}
	fmt.Fprintf(w, "%s %.2f\n", subtleStyle.Render("current: "), c.CurrentTotal)
	fmt.Fprintf(w, "%s %.2f\n", subtleStyle.Render("previous:"), c.PreviousTotal)
	fmt.Fprintf(w, "%s %s\n", subtleStyle.Render("change:  "), change)
}

func renderAnswer(w io.Writer, resp *chatdomain.ChatResponse) {
	fmt.Fprintln(w, boxStyle.Render(resp.Answer))
	if resp.Chart == nil || len(resp.Chart.Data) == 0 {
		return
	}

	fmt.Fprintln(w, titleStyle.Render(resp.Chart.Title))
	var peak int64
	for _, d := range resp.Chart.Data {
		if d.Value > peak {
			peak = d.Value
		}
	}
	for _, d := range resp.Chart.Data {
		fmt.Fprintf(w, "%-16s %s %d\n", d.Name, bar(d.Value, peak), d.Value)
	}
}

// bar scales v against peak.
func bar(v, peak int64) string {
	if peak <= 0 || v <= 0 {
		return ""
	}
	n := int(v * barWidth / peak)
	if n == 0 {
		n = 1
	}
	return strings.Repeat("█", n)
}

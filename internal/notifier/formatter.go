package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"StockScreener/internal/collector"
	"StockScreener/internal/model"
	"StockScreener/internal/recorder"
	"StockScreener/internal/screener"
)

// maxListed caps the companies listed in one message; Telegram rejects
// messages over 4096 characters.
const maxListed = 40

// FormatScreenSummary formats a screen result into a Telegram message.
func FormatScreenSummary(res *screener.Result) string {
	var b strings.Builder

	title := res.Screen.Name
	if title == "" {
		title = res.Screen.Index
	}
	b.WriteString(fmt.Sprintf("📊 <b>%s</b> | %s\n\n", html.EscapeString(title), time.Now().Format("2006-01-02")))

	report := res.Report
	if report == nil {
		report = &collector.FetchReport{}
	}
	source := "live"
	if report.FromCache {
		source = "cached"
	}
	b.WriteString(fmt.Sprintf("Index: %s (%s, fetched %s)\n", html.EscapeString(res.Screen.Index), source,
		humanize.Time(res.Snapshot.FetchedAt)))

	if len(res.Screen.Filters) > 0 {
		b.WriteString("Filters:\n")
		for i, f := range res.Screen.Filters {
			b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, html.EscapeString(f.String())))
		}
	}

	total, passed := len(res.Snapshot.Companies), len(res.Screened.Companies)
	b.WriteString(fmt.Sprintf("\n✅ <b>%d of %d companies passed</b>\n", passed, total))
	for i, c := range res.Screened.Companies {
		if i == maxListed {
			b.WriteString(fmt.Sprintf("… and %d more\n", passed-maxListed))
			break
		}
		b.WriteString(fmt.Sprintf("• <a href=\"%s\">%s</a>\n", html.EscapeString(c.Link), html.EscapeString(c.Name)))
	}

	if n := len(report.Failed); n > 0 {
		b.WriteString(fmt.Sprintf("\n⚠️ %d pages failed and were skipped\n", n))
	}
	return b.String()
}

// FormatScreenList formats the saved screens for display.
func FormatScreenList(screens []model.Screen) string {
	if len(screens) == 0 {
		return "No saved screens configured."
	}
	var b strings.Builder
	b.WriteString("📋 <b>Saved screens</b>\n")
	for _, s := range screens {
		b.WriteString(fmt.Sprintf("\n<b>%s</b> (%s)\n", html.EscapeString(s.Name), html.EscapeString(s.Index)))
		if len(s.Filters) == 0 {
			b.WriteString("  no filters\n")
		}
		for _, f := range s.Filters {
			b.WriteString(fmt.Sprintf("  • %s\n", html.EscapeString(f.String())))
		}
	}
	return b.String()
}

// FormatHistory formats recorded runs, newest first.
func FormatHistory(runs []*recorder.RunRecord) string {
	if len(runs) == 0 {
		return "No recorded runs."
	}
	var b strings.Builder
	b.WriteString("🕑 <b>Recent runs</b>\n\n")
	for _, r := range runs {
		name := r.Screen
		if name == "" {
			name = "interactive"
		}
		b.WriteString(fmt.Sprintf("%s %s/%s: %d of %d passed\n", r.Timestamp.Format("2006-01-02 15:04"),
			html.EscapeString(name), html.EscapeString(r.Index), len(r.Survivors), r.Total))
	}
	return b.String()
}

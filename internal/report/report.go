package report

import (
	"bytes"
	"fmt"
	"html"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"StockScreener/internal/calculator"
	"StockScreener/internal/model"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

var mdEscaper = strings.NewReplacer(
	`\`, `\\`, `[`, `\[`, `]`, `\]`, `*`, `\*`, `_`, `\_`, `|`, `\|`, "`", "\\`", `<`, `&lt;`,
)

// linkEscaper percent-encodes what would end or break a <...> link destination.
var linkEscaper = strings.NewReplacer(
	"<", "%3C", ">", "%3E", "\n", "%0A", "\r", "%0D", " ", "%20",
)

// Markdown renders the screen result as a Markdown document: one link per
// surviving company followed by a table of the latest reported figures.
func Markdown(snap *model.Snapshot, title string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", mdEscaper.Replace(title))

	if len(snap.Companies) == 0 {
		b.WriteString("No companies passed the screen.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "%d companies passed the screen", len(snap.Companies))
	if !snap.FetchedAt.IsZero() {
		fmt.Fprintf(&b, " (%s data fetched %s)", mdEscaper.Replace(snap.Index), snap.FetchedAt.Format("2006-01-02"))
	}
	b.WriteString(".\n\n")

	for _, c := range snap.Companies {
		fmt.Fprintf(&b, "- [%s](<%s>)\n", mdEscaper.Replace(c.Name), linkEscaper.Replace(c.Link))
	}

	b.WriteString("\n## Latest reported figures\n\n| Company |")
	for _, a := range model.Attributes {
		fmt.Fprintf(&b, " %s |", a.Label())
	}
	b.WriteString("\n| --- |")
	for range model.Attributes {
		b.WriteString(" ---: |")
	}
	b.WriteString("\n")
	for i := range snap.Companies {
		c := &snap.Companies[i]
		fmt.Fprintf(&b, "| %s |", mdEscaper.Replace(c.Name))
		for _, a := range model.Attributes {
			fmt.Fprintf(&b, " %s |", latest(a.Of(c)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func latest(series []int64) string {
	v, ok := calculator.Latest(series)
	if !ok {
		return "n/a"
	}
	return humanize.Comma(v)
}

// Render returns the report as a standalone HTML page.
func Render(snap *model.Snapshot, title string) ([]byte, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(Markdown(snap, title)), &body); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&page, "<title>%s</title>\n", html.EscapeString(title))
	page.WriteString("<style>body{font-family:sans-serif;margin:2em}table{border-collapse:collapse}" +
		"td,th{border:1px solid #ccc;padding:4px 8px}</style>\n</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}

// WriteFile writes the rendered report, creating parent directories.
func WriteFile(path string, page []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	if err := os.WriteFile(path, page, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	log.Printf("[INFO] report written: %s", path)
	return nil
}

// Open hands the report to the platform's default viewer without waiting for it.
func Open(path string) error {
	name, args := opener(runtime.GOOS, path)
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open report with %s: %w", name, err)
	}
	go cmd.Wait()
	return nil
}

func opener(goos, path string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{path}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", path}
	default:
		return "xdg-open", []string{path}
	}
}

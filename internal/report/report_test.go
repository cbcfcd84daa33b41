package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockScreener/internal/model"
)

func sampleSnapshot() *model.Snapshot {
	return &model.Snapshot{
		Index:     "FTSE_100",
		FetchedAt: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		Companies: []model.Fundamentals{
			{
				Name:         "AAA",
				Link:         "https://www.example.co.uk/share-fundamentals.asp?shareprice=AAA&share=aaa-plc",
				Revenue:      []int64{1200, 1523400},
				PreTaxProfit: []int64{-5000},
			},
			{
				Name: "B_B",
				Link: "https://www.example.co.uk/share-fundamentals.asp?shareprice=B_B",
			},
		},
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleSnapshot(), "FTSE 100 screen")

	assert.Contains(t, md, "# FTSE 100 screen")
	assert.Contains(t, md, "2 companies passed the screen (FTSE\\_100 data fetched 2026-03-02).")
	assert.Contains(t, md, "- [AAA](<https://www.example.co.uk/share-fundamentals.asp?shareprice=AAA&share=aaa-plc>)")
	assert.Contains(t, md, "| AAA | 1,523,400 | -5,000 | n/a |")
	assert.Contains(t, md, "| B\\_B | n/a | n/a | n/a |")
}

func TestMarkdown_NoSurvivors(t *testing.T) {
	md := Markdown(&model.Snapshot{Index: "FTSE_100"}, "Empty")
	assert.Contains(t, md, "No companies passed the screen.")
	assert.NotContains(t, md, "Latest reported figures")
}

func TestRender(t *testing.T) {
	page, err := Render(sampleSnapshot(), "Growers <FTSE>")
	require.NoError(t, err)
	html := string(page)

	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, "<title>Growers &lt;FTSE&gt;</title>")
	assert.Contains(t, html, `<a href="https://www.example.co.uk/share-fundamentals.asp?shareprice=AAA&amp;share=aaa-plc">AAA</a>`)
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, ">1,523,400</td>")
	assert.Contains(t, html, ">B_B</a>")
}

func TestRender_EncodesUnsafeLinkCharacters(t *testing.T) {
	snap := &model.Snapshot{Index: "FTSE_100", Companies: []model.Fundamentals{
		{Name: "ODD", Link: "https://example.co.uk/a b?shareprice=ODD>x\n- [fake](https://evil)"},
	}}
	md := Markdown(snap, "Odd links")
	assert.Contains(t, md, "- [ODD](<https://example.co.uk/a%20b?shareprice=ODD%3Ex%0A-%20[fake](https://evil)>)")

	page, err := Render(snap, "Odd links")
	require.NoError(t, err)
	html := string(page)
	assert.Contains(t, html, `<a href="https://example.co.uk/a%20b?shareprice=ODD%3Ex%0A-%20`)
	assert.Contains(t, html, ">ODD</a>")
	assert.NotContains(t, html, ">fake</a>")
}

func TestWriteFile_CreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data", "report.html")
	require.NoError(t, WriteFile(path, []byte("<html></html>")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(got))
}

func TestOpener(t *testing.T) {
	tests := []struct {
		goos string
		name string
		args []string
	}{
		{"darwin", "open", []string{"r.html"}},
		{"linux", "xdg-open", []string{"r.html"}},
		{"freebsd", "xdg-open", []string{"r.html"}},
		{"windows", "rundll32", []string{"url.dll,FileProtocolHandler", "r.html"}},
	}
	for _, tt := range tests {
		name, args := opener(tt.goos, "r.html")
		assert.Equal(t, tt.name, name, tt.goos)
		assert.Equal(t, tt.args, args, tt.goos)
	}
}

package collector

import (
	"fmt"
	"strings"
)

const testListURL = "https://www.example.co.uk/share-prices/indices/ftse-100/constituents.html"

func constituentsPage(names ...string) string {
	var b strings.Builder
	b.WriteString(`<html><body><table class="sp-constituents"><tr><th>Name</th><th>Price</th></tr>`)
	for _, n := range names {
		fmt.Fprintf(&b, `<tr><td><a href="/logo/%[1]s.png">logo</a><a href="/SharePrice.asp?shareprice=%[1]s&amp;share=%[1]s-plc">%[1]s plc</a></td><td>100</td></tr>`, n)
	}
	b.WriteString(`</table></body></html>`)
	return b.String()
}

func fundamentalsURL(name string) string {
	return fmt.Sprintf("https://www.example.co.uk/share-fundamentals.asp?shareprice=%[1]s&share=%[1]s-plc", name)
}

// fundamentalsPage renders rows most-recent-first, as the source site does.
func fundamentalsPage(rows map[string][]string) string {
	var b strings.Builder
	b.WriteString(`<html><body><table class="sp-fundamentals__table"><tr><th></th><th>2023</th><th>2022</th><th>2021</th></tr>`)
	for title, cells := range rows {
		fmt.Fprintf(&b, "<tr><td>%s</td>", title)
		for _, c := range cells {
			fmt.Fprintf(&b, "<td>%s</td>", c)
		}
		b.WriteString("</tr>")
	}
	b.WriteString(`</table></body></html>`)
	return b.String()
}

func companyPage(revenue ...string) string {
	return fundamentalsPage(map[string][]string{
		"Revenue":                 revenue,
		"Pre tax Profit":          {"30", "20", "(10)"},
		"Operating Profit / Loss": {"40", "35", "30"},
	})
}

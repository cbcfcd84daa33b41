package collector

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"StockScreener/internal/model"
)

const (
	fundamentalsRowSelector = ".sp-fundamentals__table tr"

	// shareNameParam carries the company identifier on fundamentals links.
	shareNameParam = "shareprice"
)

var cellReplacer = strings.NewReplacer(",", "", "(", "", ")", "")

// ExtractAttribute returns the values of every row whose first cell reads
// exactly rowTitle, oldest period first. No matching row yields an empty slice.
func ExtractAttribute(doc *goquery.Document, rowTitle string) ([]int64, error) {
	values := []int64{}
	var cellErr error

	doc.Find(fundamentalsRowSelector).EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cells := row.ChildrenFiltered("td")
		if cells.Length() == 0 || cells.First().Text() != rowTitle {
			return true
		}
		cells.Slice(1, goquery.ToEnd).EachWithBreak(func(_ int, cell *goquery.Selection) bool {
			v, err := ParseCell(cell.Text())
			if err != nil {
				cellErr = fmt.Errorf("row %q: %w", rowTitle, err)
				return false
			}
			values = append(values, v)
			return true
		})
		return cellErr == nil
	})
	if cellErr != nil {
		return nil, cellErr
	}

	// the page lists the most recent period first
	slices.Reverse(values)
	return values, nil
}

// ParseCell converts a table cell such as "1,234" or "(567)" to an integer.
// Parentheses denote a negative value.
func ParseCell(raw string) (int64, error) {
	text := strings.TrimSpace(raw)
	negative := strings.Contains(text, "(")
	n, err := strconv.ParseInt(cellReplacer.Replace(text), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedAttributeCell, raw)
	}
	if negative {
		n = -n
	}
	return n, nil
}

// ParseFundamentals builds a record from a fundamentals page.
func ParseFundamentals(name, link, body string) (*model.Fundamentals, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	rec := &model.Fundamentals{Name: name, Link: link}
	for _, attr := range model.Attributes {
		series, err := ExtractAttribute(doc, attr.RowTitle())
		if err != nil {
			return nil, err
		}
		if err := attr.Set(rec, series); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// NameFromLink returns the company identifier carried in the link's query.
func NameFromLink(link string) (string, error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("parse link: %w", err)
	}
	name := u.Query().Get(shareNameParam)
	if name == "" {
		return "", fmt.Errorf("link has no %q parameter", shareNameParam)
	}
	return name, nil
}

package collector

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	constituentsRowSelector = ".sp-constituents tr"

	// quotePathFragment is rewritten to fundamentalsPathFragment to turn a
	// price-quote link into the same company's fundamentals page.
	quotePathFragment        = "SharePrice.asp"
	fundamentalsPathFragment = "share-fundamentals.asp"
)

// ResolveLinks fetches the constituents page of indexID and returns one
// fundamentals-page link per table row, top to bottom.
func ResolveLinks(ctx context.Context, fetcher Fetcher, indices map[string]string, indexID string) ([]string, error) {
	listURL, ok := indices[indexID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownIndex, indexID)
	}

	body, err := fetcher.Fetch(ctx, listURL)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch constituents: %w", ErrSourceUnavailable, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: parse constituents: %w", ErrSourceUnavailable, err)
	}

	base, err := url.Parse(listURL)
	if err != nil {
		return nil, fmt.Errorf("%w: constituents url: %w", ErrSourceUnavailable, err)
	}

	var links []string
	var parseErr error
	doc.Find(constituentsRowSelector).EachWithBreak(func(_ int, row *goquery.Selection) bool {
		// second anchor of the first column
		anchor := row.ChildrenFiltered("td").First().Find("a").Eq(1)
		href, ok := anchor.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return true
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			parseErr = fmt.Errorf("%w: constituent href %q: %w", ErrSourceUnavailable, href, err)
			return false
		}
		abs := base.ResolveReference(ref).String()
		links = append(links, strings.Replace(abs, quotePathFragment, fundamentalsPathFragment, 1))
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	if len(links) == 0 {
		return nil, fmt.Errorf("%w: no constituents found at %s", ErrSourceUnavailable, listURL)
	}
	return links, nil
}

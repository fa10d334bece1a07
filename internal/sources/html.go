package sources

import (
	"io"
	"strings"

	"github.com/go-shiori/dom"
	"golang.org/x/net/html"
)

// listItem is one title/link/date triple scraped from a structured
// index page (a `<li>` or `<article>` item in a speeches listing).
type listItem struct {
	Title string
	Link  string
	Date  string
}

// scrapeListItems walks an HTML document looking for anchor elements
// nested inside list-shaped containers matched by containerSelector (a
// plain CSS selector, e.g. "li, article") and pairs each with any
// date-shaped text found in a descendant node. It is deliberately
// permissive: index pages across providers vary in markup, and a
// best-effort scrape beats strict list parsing and missing items.
func scrapeListItems(r io.Reader, containerSelector string) ([]listItem, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var items []listItem
	for _, container := range dom.QuerySelectorAll(doc, containerSelector) {
		if item, ok := extractListItem(container); ok {
			items = append(items, item)
		}
	}
	return items, nil
}

func extractListItem(container *html.Node) (listItem, bool) {
	var item listItem

	if a := dom.QuerySelector(container, "a[href]"); a != nil {
		item.Link = dom.GetAttribute(a, "href")
		item.Title = strings.TrimSpace(dom.TextContent(a))
	}

	if t := dom.QuerySelector(container, "time"); t != nil {
		item.Date = strings.TrimSpace(dom.TextContent(t))
	} else if d := dom.QuerySelector(container, "[class*=date]"); d != nil {
		item.Date = strings.TrimSpace(dom.TextContent(d))
	}

	if item.Title == "" {
		return listItem{}, false
	}
	return item, true
}

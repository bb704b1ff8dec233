package content

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// Elements that never carry readable content.
const noiseSelector = "script, style, noscript, template, iframe, svg, canvas"

// Extract decodes body as HTML and derives the page title and a markdown
// rendering of the readable content. The raw HTML is kept unchanged.
func Extract(pageURL string, body []byte, contentType string) (*Page, error) {
	reader, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, fmt.Errorf("decode failed: %w", err)
	}
	root, err := html.Parse(reader)
	if err != nil {
		return nil, fmt.Errorf("parse failed: %w", err)
	}
	doc := goquery.NewDocumentFromNode(root)

	page := &Page{
		URL:  pageURL,
		HTML: string(body),
	}
	page.Title = extractTitle(doc)

	doc.Find(noiseSelector).Remove()
	doc.Find("[hidden], [aria-hidden='true']").Remove()

	cleaned, err := doc.Find("body").First().Html()
	if err != nil {
		return nil, fmt.Errorf("render failed: %w", err)
	}
	markdown, err := htmltomarkdown.ConvertString(cleaned, converter.WithDomain(baseDomain(pageURL)))
	if err != nil {
		return nil, fmt.Errorf("markdown conversion failed: %w", err)
	}
	page.Markdown = strings.TrimSpace(markdown)
	return page, nil
}

func extractTitle(doc *goquery.Document) string {
	if title := collapse(doc.Find("title").First().Text()); title != "" {
		return title
	}
	if og, ok := doc.Find("meta[property='og:title']").First().Attr("content"); ok {
		if title := collapse(og); title != "" {
			return title
		}
	}
	var title string
	doc.Find("script[type='application/ld+json']").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		title = jsonLDTitle(s.Text())
		return title == ""
	})
	if title != "" {
		return title
	}
	return collapse(doc.Find("h1").First().Text())
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func baseDomain(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

package extract

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	maxHTMLBodyBytes = 4 << 20 // 4 MiB
	DefaultMaxLinks  = 20
)

// Link is an anchor found on a page.
type Link struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

// Summary captures the parts of a page worth printing or forwarding.
type Summary struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url,omitempty"`
	Length      int    `json:"length"`
	Links       []Link `json:"links"`
}

// Summarize parses body as HTML. Relative hrefs are resolved against pageURL.
// maxLinks <= 0 uses DefaultMaxLinks.
func Summarize(body []byte, pageURL string, maxLinks int) (Summary, error) {
	if maxLinks <= 0 {
		maxLinks = DefaultMaxLinks
	}
	length := len(body)
	if len(body) > maxHTMLBodyBytes {
		body = body[:maxHTMLBodyBytes]
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Summary{}, fmt.Errorf("parse html: %w", err)
	}

	extract := func(sel string) string {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if val, ok := node.Attr("content"); ok {
				return strings.TrimSpace(val)
			}
		}
		return ""
	}

	s := Summary{
		URL:    pageURL,
		Length: length,
		Title: firstNonEmpty(
			extract(`meta[property="og:title"]`),
			doc.Find("title").First().Text(),
		),
		Description: firstNonEmpty(
			extract(`meta[property="og:description"]`),
			extract(`meta[name="description"]`),
		),
		ImageURL: resolveURL(extract(`meta[property="og:image"]`), pageURL),
		Links:    make([]Link, 0, maxLinks),
	}

	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		href = resolveURL(href, pageURL)
		if href == "" || strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "#") {
			return true
		}
		s.Links = append(s.Links, Link{
			Text: strings.Join(strings.Fields(sel.Text()), " "),
			Href: href,
		})
		return len(s.Links) < maxLinks
	})

	return s, nil
}

// resolveURL makes ref absolute against base when possible.
func resolveURL(ref, base string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	baseURL, err := url.Parse(strings.TrimSpace(base))
	if err != nil || baseURL.Host == "" {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

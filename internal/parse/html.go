package parse

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/opencouncil/meeting-ingest/internal/types"
)

// HTMLText parses an HTML document and returns its cleaned body text with
// navigation, scripts, and other noise elements removed.
func HTMLText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	doc.Find("nav, footer, header, script, style, noscript, .sidebar, .cookie-banner").Remove()

	body := doc.Find("main, article, .content, #content").First()
	if body.Length() == 0 {
		body = doc.Find("body")
	}

	return cleanWhitespace(body.Text()), nil
}

// Listing extracts one MeetingRef per row from a source listing page.
// Rows are located by attribute anchor first (data-meeting-id), then by
// table-row fallback, so the parser tolerates minor markup drift. Rows
// missing an identifier are skipped rather than failing the page.
func Listing(baseURL string, html string) ([]types.MeetingRef, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &Error{URL: baseURL, Message: "failed to parse listing HTML", Cause: err}
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, &Error{URL: baseURL, Message: "invalid listing URL", Cause: err}
	}

	rows := doc.Find("tr[data-meeting-id], li[data-meeting-id], div[data-meeting-id]")
	if rows.Length() == 0 {
		rows = doc.Find("table tr").FilterFunction(func(_ int, row *goquery.Selection) bool {
			return row.Find("a[href]").Length() > 0
		})
	}

	var refs []types.MeetingRef
	rows.Each(func(_ int, row *goquery.Selection) {
		ref := listingRow(base, row)
		if ref.ExternalID == "" {
			return
		}
		refs = append(refs, ref)
	})

	if len(refs) == 0 {
		return nil, &Error{URL: baseURL, Message: "no meeting rows found in listing"}
	}
	return refs, nil
}

func listingRow(base *url.URL, row *goquery.Selection) types.MeetingRef {
	ref := types.MeetingRef{}

	if id, ok := row.Attr("data-meeting-id"); ok {
		ref.ExternalID = strings.TrimSpace(id)
	}

	if title := row.Find(".title, .meeting-title, h2, h3, strong").First(); title.Length() > 0 {
		ref.Title = cleanWhitespace(title.Text())
	}

	if date := row.Find(".date, .meeting-date, time").First(); date.Length() > 0 {
		if dt, ok := date.Attr("datetime"); ok {
			ref.DateText = strings.TrimSpace(dt)
		} else {
			ref.DateText = cleanWhitespace(date.Text())
		}
	}

	if mt := row.Find(".type, .meeting-type").First(); mt.Length() > 0 {
		ref.Type = meetingType(mt.Text())
	}

	row.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		resolved := resolveURL(base, href)
		if resolved == "" {
			return
		}
		label := strings.ToLower(link.Text() + " " + href)
		switch {
		case strings.Contains(label, "agenda"):
			if ref.AgendaURL == "" {
				ref.AgendaURL = resolved
			}
		case strings.Contains(label, "minutes"):
			if ref.MinutesURL == "" {
				ref.MinutesURL = resolved
			}
		}
		// An identifier can also ride on a document link when the row
		// attribute is absent.
		if ref.ExternalID == "" {
			if id, ok := link.Attr("data-meeting-id"); ok {
				ref.ExternalID = strings.TrimSpace(id)
			}
		}
	})

	row.Find("img[src]").Each(func(_ int, img *goquery.Selection) {
		src, _ := img.Attr("src")
		if resolved := resolveURL(base, src); resolved != "" {
			ref.ImageURLs = append(ref.ImageURLs, resolved)
		}
	})

	if ref.Title == "" {
		// Last resort: the row's first link text.
		ref.Title = cleanWhitespace(row.Find("a").First().Text())
	}
	if ref.DateText == "" {
		ref.DateText = cleanWhitespace(row.Text())
	}

	return ref
}

func meetingType(text string) types.MeetingType {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "special":
		return types.MeetingTypeSpecial
	case "committee":
		return types.MeetingTypeCommittee
	case "regular":
		return types.MeetingTypeRegular
	default:
		return ""
	}
}

func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(parsed).String()
}

// cleanWhitespace trims each line and drops empty lines.
func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}

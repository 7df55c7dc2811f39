package fetch

import (
	"context"
	"time"

	"github.com/opencouncil/meeting-ingest/internal/types"
)

// Listing fetches the source listing page. A failure here is fatal for the
// whole batch, since without the listing no meetings can be discovered.
func (f *Fetcher) Listing(ctx context.Context, listingURL string) (types.RawDocument, error) {
	result, err := f.Get(ctx, listingURL)
	if err != nil {
		return types.RawDocument{}, err
	}
	return rawDocument(result, types.DocListing), nil
}

// Documents fetches every document referenced by a meeting row. Results and
// errors are parallel slices in document order; a failed document leaves a
// zero RawDocument and a non-nil error at its index, and never aborts the
// remaining documents.
func (f *Fetcher) Documents(ctx context.Context, ref types.MeetingRef) ([]types.RawDocument, []error) {
	type target struct {
		url  string
		kind types.DocumentKind
	}

	var targets []target
	if ref.AgendaURL != "" {
		targets = append(targets, target{ref.AgendaURL, types.DocAgenda})
	}
	if ref.MinutesURL != "" {
		targets = append(targets, target{ref.MinutesURL, types.DocMinutes})
	}
	for _, u := range ref.ImageURLs {
		targets = append(targets, target{u, types.DocImage})
	}

	docs := make([]types.RawDocument, len(targets))
	errs := make([]error, len(targets))
	for i, t := range targets {
		result, err := f.Get(ctx, t.url)
		if err != nil {
			errs[i] = err
			continue
		}
		docs[i] = rawDocument(result, t.kind)
	}
	return docs, errs
}

func rawDocument(result *Result, kind types.DocumentKind) types.RawDocument {
	return types.RawDocument{
		SourceURL:   result.URL,
		Kind:        kind,
		Content:     result.Body,
		ContentHash: Hash(result.Body),
		ContentType: result.ContentType,
		FetchedAt:   time.Now().UTC(),
	}
}

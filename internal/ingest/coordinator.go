// Package ingest provides the high-level orchestration for one ingestion
// batch: listing discovery, then a bounded-concurrency fan-out of per-meeting
// pipelines (fetch, parse, extract, categorize, upsert). Each meeting
// succeeds or fails on its own; only a listing-level failure aborts the
// batch.
package ingest

import (
	"context"
	"fmt"
	"path"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/opencouncil/meeting-ingest/internal/docstore"
	"github.com/opencouncil/meeting-ingest/internal/extract"
	"github.com/opencouncil/meeting-ingest/internal/fetch"
	"github.com/opencouncil/meeting-ingest/internal/parse"
	"github.com/opencouncil/meeting-ingest/internal/types"
)

// DefaultConcurrency bounds how many meeting pipelines run at once. Kept
// small to respect the source's rate limits.
const DefaultConcurrency = 4

// Store is the persistence surface the coordinator writes through. It is
// the only component with write access to the canonical store.
type Store interface {
	GetDocumentHashes(ctx context.Context, externalID string) (map[string]string, error)
	UpsertMeeting(ctx context.Context, meeting *types.Meeting, items []types.AgendaItem, hashes map[string]string) error
}

// Categorizer assigns taxonomy categories to meetings and agenda items.
type Categorizer interface {
	Meeting(ctx context.Context, draft *types.MeetingDraft, items []types.AgendaItem) []types.Assignment
	Item(ctx context.Context, item *types.AgendaItem) *types.Assignment
}

// Options holds configuration for running an ingestion batch.
type Options struct {
	ListingURL  string
	Concurrency int
	UseBrowser  bool
	Verbose     bool
}

// Coordinator runs ingestion batches against one source.
type Coordinator struct {
	fetcher *fetch.Fetcher
	store   Store
	docs    docstore.Store
	engine  Categorizer
	opts    Options
}

// NewCoordinator wires a coordinator from its collaborators.
func NewCoordinator(fetcher *fetch.Fetcher, store Store, docs docstore.Store, engine Categorizer, opts Options) *Coordinator {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	return &Coordinator{
		fetcher: fetcher,
		store:   store,
		docs:    docs,
		engine:  engine,
		opts:    opts,
	}
}

// IngestBatch discovers meetings from the listing page and ingests each one.
// Per-meeting failures are recorded in the report and never abort sibling
// meetings; only a failure to fetch or parse the listing itself is returned
// as an error.
func (c *Coordinator) IngestBatch(ctx context.Context) (*types.BatchReport, error) {
	report := &types.BatchReport{StartedAt: time.Now().UTC()}

	refs, err := c.discover(ctx)
	if err != nil {
		return nil, err
	}
	fmt.Printf("Found %d meetings in listing\n", len(refs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Concurrency)

	var mu sync.Mutex
	for _, ref := range refs {
		ref := ref
		g.Go(func() error {
			result := c.ingestOne(gCtx, ref)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case result.failure != nil:
				report.Failed = append(report.Failed, *result.failure)
			case result.skipped:
				report.Skipped++
			default:
				report.Ingested++
			}
			// Per-meeting failures are recorded, not returned, so one bad
			// meeting cannot cancel the group.
			return nil
		})
	}
	_ = g.Wait()

	report.FinishedAt = time.Now().UTC()
	return report, nil
}

// discover fetches and parses the source listing. Listings that come back
// suspiciously short are retried through a headless browser when enabled,
// since some portals render their meeting tables with JavaScript.
func (c *Coordinator) discover(ctx context.Context) ([]types.MeetingRef, error) {
	listing, err := c.fetcher.Listing(ctx, c.opts.ListingURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch meeting listing: %w", err)
	}

	html := string(listing.Content)
	if c.opts.UseBrowser && fetch.ShouldUseBrowser(html) {
		if c.opts.Verbose {
			fmt.Printf("[VERBOSE] Listing looks script-rendered, retrying with browser\n")
		}
		rendered, berr := fetch.WithBrowser(ctx, c.opts.ListingURL, time.Minute, c.opts.Verbose)
		if berr != nil {
			fmt.Printf("Warning: browser render failed, using static HTML: %v\n", berr)
		} else {
			html = rendered
		}
	}

	refs, err := parse.Listing(c.opts.ListingURL, html)
	if err != nil {
		return nil, fmt.Errorf("failed to parse meeting listing: %w", err)
	}
	return refs, nil
}

// meetingResult is the outcome of one meeting's pipeline.
type meetingResult struct {
	skipped bool
	failure *types.BatchFailure
}

func failed(externalID, stage string, err error) meetingResult {
	return meetingResult{failure: &types.BatchFailure{
		ExternalID: externalID,
		Stage:      stage,
		Reason:     err.Error(),
	}}
}

// ingestOne runs the full pipeline for a single meeting. It never panics the
// batch: every failure path collapses into a meetingResult.
func (c *Coordinator) ingestOne(ctx context.Context, ref types.MeetingRef) meetingResult {
	docs, errs := c.fetcher.Documents(ctx, ref)

	docFailures := 0
	hashes := make(map[string]string)
	for i, doc := range docs {
		if errs[i] != nil {
			docFailures++
			continue
		}
		hashes[doc.SourceURL] = doc.ContentHash
	}
	if len(docs) > 0 && docFailures == len(docs) {
		return failed(ref.ExternalID, "fetch", fmt.Errorf("all %d documents failed, first error: %w", len(docs), errs[0]))
	}

	stored, err := c.store.GetDocumentHashes(ctx, ref.ExternalID)
	if err != nil {
		return failed(ref.ExternalID, "persist", err)
	}

	// Unchanged-content short-circuit: only when every document fetched and
	// every hash matches what we stored last time.
	if docFailures == 0 && len(hashes) > 0 && hashesEqual(hashes, stored) {
		if c.opts.Verbose {
			fmt.Printf("[VERBOSE] %s unchanged, skipping\n", ref.ExternalID)
		}
		return meetingResult{skipped: true}
	}

	uris, storeFailures := c.storeDocuments(ctx, ref.ExternalID, docs, errs)
	docFailures += storeFailures

	parsed, parseErrs := parse.Documents(ref.ExternalID, docs)
	for _, perr := range parseErrs {
		if perr != nil {
			docFailures++
		}
	}
	if len(parsed.Blocks) == 0 {
		reason := fmt.Errorf("no document yielded usable text")
		if len(parseErrs) > 0 && parseErrs[0] != nil {
			reason = fmt.Errorf("no document yielded usable text: %w", parseErrs[0])
		}
		return failed(ref.ExternalID, "parse", reason)
	}

	draft, items, err := extract.Meeting(ref, parsed)
	if err != nil {
		return failed(ref.ExternalID, "extract", err)
	}
	draft.AgendaURI = uris.agenda
	draft.MinutesURI = uris.minutes
	draft.ImagePaths = uris.images

	assignments := c.engine.Meeting(ctx, draft, items)
	for i := range items {
		items[i].Assignment = c.engine.Item(ctx, &items[i])
	}

	status := types.StatusIngested
	if docFailures > 0 {
		status = types.StatusPartial
	}

	meeting := &types.Meeting{
		ExternalID:   draft.ExternalID,
		Title:        draft.Title,
		Date:         draft.Date,
		Type:         draft.Type,
		Status:       status,
		AgendaURI:    draft.AgendaURI,
		MinutesURI:   draft.MinutesURI,
		ImagePaths:   draft.ImagePaths,
		KeyDecisions: draft.KeyDecisions,
		Assignments:  assignments,
	}
	if err := c.store.UpsertMeeting(ctx, meeting, items, hashes); err != nil {
		return failed(ref.ExternalID, "persist", err)
	}

	fmt.Printf("Ingested %s: %q with %d agenda items\n", meeting.ExternalID, meeting.Title, len(items))
	return meetingResult{}
}

// documentURIs holds the stored locations of a meeting's documents.
type documentURIs struct {
	agenda  string
	minutes string
	images  []string
}

// storeDocuments writes each fetched document to the document store and
// collects the resulting URIs. A storage failure degrades the meeting to
// partially ingested rather than failing it.
func (c *Coordinator) storeDocuments(ctx context.Context, externalID string, docs []types.RawDocument, errs []error) (documentURIs, int) {
	var uris documentURIs
	failures := 0
	for i, doc := range docs {
		if errs[i] != nil {
			continue
		}
		key := externalID + "/" + string(doc.Kind) + "/" + docFilename(doc)
		uri, err := c.docs.Put(ctx, key, doc.ContentType, doc.Content)
		if err != nil {
			fmt.Printf("Warning: failed to store document %s: %v\n", doc.SourceURL, err)
			failures++
			continue
		}
		switch doc.Kind {
		case types.DocAgenda:
			uris.agenda = uri
		case types.DocMinutes:
			uris.minutes = uri
		case types.DocImage:
			uris.images = append(uris.images, uri)
		}
	}
	return uris, failures
}

func docFilename(doc types.RawDocument) string {
	base := path.Base(doc.SourceURL)
	if base == "." || base == "/" || base == "" {
		base = string(doc.Kind)
	}
	return base
}

func hashesEqual(fetched, stored map[string]string) bool {
	if len(stored) != len(fetched) {
		return false
	}
	for url, hash := range fetched {
		if stored[url] != hash {
			return false
		}
	}
	return true
}

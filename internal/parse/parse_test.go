package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencouncil/meeting-ingest/internal/types"
)

func htmlDoc(kind types.DocumentKind, html string) types.RawDocument {
	return types.RawDocument{
		SourceURL:   "http://example.gov/doc",
		Kind:        kind,
		Content:     []byte(html),
		ContentType: "text/html",
	}
}

func TestDocument_HTMLAgenda(t *testing.T) {
	doc := htmlDoc(types.DocAgenda, `
		<html><body>
			<nav>Site navigation</nav>
			<main>
				<h1>AGENDA</h1>
				<p>Item 1: Rezoning request</p>
			</main>
		</body></html>`)

	blocks, err := Document(doc)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, types.SectionAgenda, blocks[0].Section)
	assert.Contains(t, blocks[0].Text, "Item 1: Rezoning request")
	assert.NotContains(t, blocks[0].Text, "Site navigation")
}

func TestDocument_PlainTextMinutes(t *testing.T) {
	doc := types.RawDocument{
		SourceURL:   "http://example.gov/minutes.txt",
		Kind:        types.DocMinutes,
		Content:     []byte("MINUTES\nItem 1: Budget approval. Motion passed."),
		ContentType: "text/plain",
	}

	blocks, err := Document(doc)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, types.SectionMinutes, blocks[0].Section)
}

func TestDocument_UnsupportedContentType(t *testing.T) {
	doc := types.RawDocument{
		SourceURL:   "http://example.gov/photo.jpg",
		Kind:        types.DocAgenda,
		Content:     []byte{0xff, 0xd8},
		ContentType: "image/jpeg",
	}

	_, err := Document(doc)
	require.Error(t, err)

	var parseErr *Error
	assert.ErrorAs(t, err, &parseErr)
	assert.Contains(t, err.Error(), "unsupported content type")
}

func TestDocument_EmptyContent(t *testing.T) {
	doc := htmlDoc(types.DocAgenda, "<html><body><main>   </main></body></html>")

	_, err := Document(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no usable text")
}

func TestDocuments_FailureIsolatedPerDocument(t *testing.T) {
	docs := []types.RawDocument{
		htmlDoc(types.DocAgenda, "<html><body><main>AGENDA Item 1: Roads</main></body></html>"),
		{
			SourceURL:   "http://example.gov/minutes.bin",
			Kind:        types.DocMinutes,
			Content:     []byte{0x00},
			ContentType: "application/octet-stream",
		},
	}

	parsed, errs := Documents("2025-01-15", docs)
	require.Len(t, errs, 2)
	assert.NoError(t, errs[0])
	assert.Error(t, errs[1])

	assert.Equal(t, "2025-01-15", parsed.ExternalID)
	require.Len(t, parsed.Blocks, 1)
	assert.Contains(t, parsed.Blocks[0].Text, "Roads")
}

func TestDocuments_SkipsImagesAndEmptySlots(t *testing.T) {
	docs := []types.RawDocument{
		{}, // failed fetch slot
		{
			SourceURL:   "http://example.gov/site-plan.png",
			Kind:        types.DocImage,
			Content:     []byte{0x89, 0x50},
			ContentType: "image/png",
		},
	}

	parsed, errs := Documents("m-1", docs)
	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
	assert.Empty(t, parsed.Blocks)
}

const listingHTML = `
<html><body>
<table class="meetings">
	<tr data-meeting-id="cc-2025-001">
		<td class="date">January 15, 2025</td>
		<td class="title">City Council Regular Meeting</td>
		<td class="type">Regular</td>
		<td>
			<a href="/docs/cc-2025-001/agenda.pdf">Agenda</a>
			<a href="/docs/cc-2025-001/minutes.pdf">Minutes</a>
		</td>
	</tr>
	<tr data-meeting-id="pz-2025-004">
		<td class="date">February 3, 2025</td>
		<td class="title">Planning &amp; Zoning Committee</td>
		<td class="type">Committee</td>
		<td><a href="/docs/pz-2025-004/agenda.pdf">Agenda</a></td>
	</tr>
</table>
</body></html>`

func TestListing_ExtractsRows(t *testing.T) {
	refs, err := Listing("http://example.gov/meetings", listingHTML)
	require.NoError(t, err)
	require.Len(t, refs, 2)

	first := refs[0]
	assert.Equal(t, "cc-2025-001", first.ExternalID)
	assert.Equal(t, "City Council Regular Meeting", first.Title)
	assert.Equal(t, "January 15, 2025", first.DateText)
	assert.Equal(t, types.MeetingTypeRegular, first.Type)
	assert.Equal(t, "http://example.gov/docs/cc-2025-001/agenda.pdf", first.AgendaURL)
	assert.Equal(t, "http://example.gov/docs/cc-2025-001/minutes.pdf", first.MinutesURL)

	second := refs[1]
	assert.Equal(t, types.MeetingTypeCommittee, second.Type)
	assert.Empty(t, second.MinutesURL)
}

func TestListing_TableFallbackWithoutIDAttribute(t *testing.T) {
	html := `
	<html><body><table>
		<tr>
			<td><strong>Special Session</strong></td>
			<td><a data-meeting-id="sp-9" href="agenda.html">Agenda</a></td>
		</tr>
	</table></body></html>`

	refs, err := Listing("http://example.gov/meetings/", html)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "sp-9", refs[0].ExternalID)
	assert.Equal(t, "http://example.gov/meetings/agenda.html", refs[0].AgendaURL)
}

func TestListing_NoRows(t *testing.T) {
	_, err := Listing("http://example.gov/meetings", "<html><body><p>maintenance</p></body></html>")
	require.Error(t, err)

	var parseErr *Error
	assert.ErrorAs(t, err, &parseErr)
}

func TestListing_RowsWithoutIDSkipped(t *testing.T) {
	html := `
	<html><body><table>
		<tr data-meeting-id="ok-1"><td class="title">Good row</td><td><a href="a.pdf">Agenda</a></td></tr>
		<tr data-meeting-id=""><td class="title">No id</td><td><a href="b.pdf">Agenda</a></td></tr>
	</table></body></html>`

	refs, err := Listing("http://example.gov/", html)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "ok-1", refs[0].ExternalID)
}

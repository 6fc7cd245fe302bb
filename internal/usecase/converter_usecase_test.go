package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DRSN-tech/feedconv/internal/catalog"
	"github.com/DRSN-tech/feedconv/internal/domain"
	"github.com/DRSN-tech/feedconv/pkg/e"
	"github.com/DRSN-tech/feedconv/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feedURL = "https://toys.example/feed.xml"

const toysFeed = `<?xml version="1.0" encoding="UTF-8"?>
<offer>
  <products>
    <product id="1">
      <name>Klocki drewniane z bardzo dlugim opisem nazwy produktu, ktory nie miesci sie</name>
      <producer>B.toys</producer>
      <price gross="10.00" net="8.13"/>
      <stock quantity="5"/>
    </product>
    <product id="2">
      <name>Pociag</name>
      <producer>Janod</producer>
      <price gross="20.00" net="16.26"/>
      <stock quantity="0"/>
    </product>
    <product id="3">
      <name>Bębenek</name>
      <producer>b.toys</producer>
      <price gross="30.00" net="24.39"/>
      <stock quantity="10"/>
    </product>
  </products>
</offer>`

func newTestConverter(t *testing.T) *ConverterUseCase {
	t.Helper()

	suppliers := []domain.Supplier{
		{Name: "Toys", URL: feedURL, Format: domain.FormatSoteshop, Description: "toys"},
		{Name: "Hidden", URL: "", Format: domain.FormatIOF},
	}
	uc := NewConverterUC(suppliers, &fakeFetcher{data: map[string][]byte{feedURL: []byte(toysFeed)}},
		nil, nil, nil, nil, nil, logger.NewNopLogger())
	uc.now = func() time.Time { return time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC) }

	return uc
}

func intPtr(v int) *int { return &v }

func TestConvert_Report(t *testing.T) {
	uc := newTestConverter(t)

	res, err := uc.Convert(context.Background(), &ConvertReq{
		Supplier: "Toys",
		Filter:   catalog.Filter{Producer: "B.TOYS", MinStock: intPtr(1)},
	})
	require.NoError(t, err)

	r := res.Report
	assert.Equal(t, "Toys", r.Source)
	assert.Equal(t, domain.FormatSoteshop, r.Format)
	assert.Equal(t, 3, r.ParsedCount)
	assert.Equal(t, 2, r.WithStock)
	assert.Equal(t, 3, r.UniqueProducers)
	assert.Equal(t, 2, r.FilteredCount)
	assert.Equal(t, 15, r.Summary.TotalStock)
	assert.True(t, decimal.NewFromInt(20).Equal(r.Summary.AveragePrice))
	assert.Nil(t, r.RunID)

	total := 0
	for _, p := range r.Breakdown {
		total += p.Count
	}
	assert.Equal(t, r.ParsedCount, total)

	require.Len(t, r.Preview, 2)
	assert.Equal(t, "1", r.Preview[0].ProductID)
	assert.True(t, strings.HasSuffix(r.Preview[0].Name, "..."))
	assert.Len(t, []rune(r.Preview[0].Name), 53)
	assert.Equal(t, "Bębenek", r.Preview[1].Name)

	assert.Equal(t, "toys_20240301_102030.csv", res.FileName)
	lines := strings.Split(strings.TrimSpace(string(res.CSV)), "\n")
	assert.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "product_id;ean;name"))
}

func TestConvert_Errors(t *testing.T) {
	uc := newTestConverter(t)
	ctx := context.Background()

	_, err := uc.Convert(ctx, &ConvertReq{Supplier: "Nope"})
	var unknown *domain.UnknownSupplierError
	assert.ErrorAs(t, err, &unknown)
	assert.ErrorIs(t, err, e.ErrUnknownSupplier)

	_, err = uc.Convert(ctx, &ConvertReq{Supplier: "Hidden"})
	assert.ErrorIs(t, err, e.ErrNotConfigured)

	_, err = uc.Convert(ctx, &ConvertReq{Supplier: "Toys", Filter: catalog.Filter{MinStock: intPtr(-1)}})
	assert.ErrorIs(t, err, e.ErrInvalidMinStock)

	uc.fetcher = &fakeFetcher{err: &domain.FetchError{URL: feedURL, Err: errors.New("timeout")}}
	_, err = uc.Convert(ctx, &ConvertReq{Supplier: "Toys"})
	assert.ErrorIs(t, err, e.ErrFetchFailed)

	var fetchErr *domain.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "Toys", fetchErr.Supplier)
	assert.Equal(t, `feed fetch failed for supplier "Toys": timeout`, fetchErr.Public())
}

func TestConvert_MalformedFeed(t *testing.T) {
	uc := newTestConverter(t)
	uc.fetcher = &fakeFetcher{data: map[string][]byte{feedURL: []byte("<offer><products>")}}

	_, err := uc.Convert(context.Background(), &ConvertReq{Supplier: "Toys"})
	var parseErr *domain.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestConvertUpload_DetectsFormat(t *testing.T) {
	uc := newTestConverter(t)

	res, err := uc.ConvertUpload(context.Background(), &UploadReq{FileName: "feed.xml", Data: []byte(toysFeed)})
	require.NoError(t, err)
	assert.Equal(t, domain.FormatSoteshop, res.Report.Format)
	assert.Equal(t, 3, res.Report.FilteredCount)
	assert.Equal(t, "feed_20240301_102030.csv", res.FileName)

	_, err = uc.ConvertUpload(context.Background(), &UploadReq{FileName: "x.xml", Data: []byte("<rss><channel/></rss>")})
	var unknown *domain.UnknownFormatError
	assert.ErrorAs(t, err, &unknown)

	_, err = uc.ConvertUpload(context.Background(), &UploadReq{FileName: "x.xml"})
	assert.ErrorIs(t, err, e.ErrMissingFields)
}

func TestConvert_RecordsRunWithOutboxAndArchive(t *testing.T) {
	uc := newTestConverter(t)
	runs := &fakeRunRepo{}
	outbox := &fakeOutbox{}
	archive := newFakeArchive()
	db := &fakeDB{}
	uc.runRepo, uc.outboxRepo, uc.encoder, uc.dbPool, uc.archive = runs, outbox, fakeEncoder{}, db, archive

	ctx := context.Background()
	res, err := uc.Convert(ctx, &ConvertReq{Supplier: "Toys", Filter: catalog.Filter{MinStock: intPtr(5)}})
	require.NoError(t, err)
	require.NotNil(t, res.Report.RunID)
	require.NotNil(t, res.Report.ExportKey)

	require.Len(t, runs.runs, 1)
	run := runs.runs[0]
	assert.True(t, runs.sawTx)
	assert.Equal(t, *res.Report.RunID, run.ID)
	assert.Equal(t, domain.OriginSupplier, run.Origin)
	assert.Equal(t, 5, run.MinStock)
	assert.Equal(t, 2, run.FilteredCount)
	assert.Equal(t, 15, run.TotalStock)

	require.Len(t, outbox.events, 1)
	assert.Equal(t, EventRunCompleted, outbox.events[0].EventType)
	assert.Equal(t, run.ID, outbox.events[0].RunID)

	require.Len(t, db.txs, 1)
	assert.True(t, db.txs[0].committed)

	file, err := uc.GetExport(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, res.CSV, file.Data)
	assert.Equal(t, res.FileName, file.FileName)

	listed, err := uc.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestConvert_HistoryFailureKeepsResult(t *testing.T) {
	uc := newTestConverter(t)
	archive := newFakeArchive()
	db := &fakeDB{}
	uc.runRepo, uc.dbPool, uc.archive = &fakeRunRepo{err: errors.New("db down")}, db, archive

	res, err := uc.Convert(context.Background(), &ConvertReq{Supplier: "Toys"})
	require.NoError(t, err)
	assert.Nil(t, res.Report.RunID)
	assert.Nil(t, res.Report.ExportKey)
	assert.Len(t, archive.cleaned, 1)
	require.Len(t, db.txs, 1)
	assert.False(t, db.txs[0].committed)
}

func TestHistoryNotConfigured(t *testing.T) {
	uc := newTestConverter(t)

	_, err := uc.ListRuns(context.Background(), 10)
	assert.ErrorIs(t, err, e.ErrNotConfigured)

	_, err = uc.GetExport(context.Background(), domain.NewConversionRun("x", domain.OriginUpload, domain.FormatIOF).ID)
	assert.ErrorIs(t, err, e.ErrNotConfigured)
}

func TestListSuppliers(t *testing.T) {
	uc := newTestConverter(t)

	list := uc.ListSuppliers()
	require.Len(t, list, 2)
	assert.Equal(t, SupplierInfo{Name: "Toys", Description: "toys", Format: domain.FormatSoteshop, Configured: true}, list[0])
	assert.False(t, list[1].Configured)
}

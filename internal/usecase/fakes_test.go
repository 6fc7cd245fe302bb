package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/DRSN-tech/feedconv/internal/domain"
	"github.com/DRSN-tech/feedconv/pkg/e"
	"github.com/DRSN-tech/feedconv/pkg/tr"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type fakeFetcher struct {
	data map[string][]byte
	err  error
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.data[url], nil
}

// fakeTx подменяет только Commit/Rollback; остальные методы pgx.Tx не вызываются.
type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	t.rolledBack = true
	return nil
}

type fakeDB struct {
	txs []*fakeTx
}

func (d *fakeDB) Begin(ctx context.Context) (pgx.Tx, error) {
	return d.BeginTx(ctx, pgx.TxOptions{})
}

func (d *fakeDB) BeginTx(context.Context, pgx.TxOptions) (pgx.Tx, error) {
	tx := &fakeTx{}
	d.txs = append(d.txs, tx)
	return tx, nil
}

type fakeRunRepo struct {
	mu     sync.Mutex
	runs   []domain.ConversionRun
	err    error
	sawTx  bool
	getErr error
}

func (r *fakeRunRepo) Create(ctx context.Context, run *domain.ConversionRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := tr.TxFromCtx(ctx)
	r.sawTx = err == nil
	if r.err != nil {
		return r.err
	}
	r.runs = append(r.runs, *run)
	return nil
}

func (r *fakeRunRepo) List(_ context.Context, limit int) ([]domain.ConversionRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs[:min(limit, len(r.runs))], nil
}

func (r *fakeRunRepo) Get(_ context.Context, id uuid.UUID) (*domain.ConversionRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.runs {
		if r.runs[i].ID == id {
			run := r.runs[i]
			return &run, nil
		}
	}
	return nil, e.ErrRunNotFound
}

type fakeOutbox struct {
	events []*OutboxEvent
}

func (o *fakeOutbox) Create(_ context.Context, event *OutboxEvent) (*OutboxEvent, error) {
	o.events = append(o.events, event)
	return event, nil
}

func (o *fakeOutbox) GetAndMarkAsProcessing(context.Context, int) ([]*OutboxEvent, error) {
	return nil, nil
}

func (o *fakeOutbox) MarkAsProcessed(context.Context, int64) error { return nil }

func (o *fakeOutbox) ReleaseStale(context.Context, time.Duration) (int64, error) { return 0, nil }

type fakeEncoder struct{}

func (fakeEncoder) EncodeRunCompleted(run *domain.ConversionRun) ([]byte, error) {
	return []byte(run.ID.String()), nil
}

type fakeArchive struct {
	objects map[string][]byte
	cleaned []string
}

func newFakeArchive() *fakeArchive {
	return &fakeArchive{objects: map[string][]byte{}}
}

func (a *fakeArchive) Archive(_ context.Context, run *domain.ConversionRun, fileName string, data []byte) (string, error) {
	key := "exports/" + run.ID.String() + "/" + fileName
	a.objects[key] = data
	return key, nil
}

func (a *fakeArchive) Fetch(_ context.Context, key string) ([]byte, error) {
	data, ok := a.objects[key]
	if !ok {
		return nil, e.ErrExportNotFound
	}
	return data, nil
}

func (a *fakeArchive) CleanupExports(keys []string) {
	a.cleaned = append(a.cleaned, keys...)
}

type fakeAPI struct {
	method string
	params map[string]any
	res    map[string]any
	err    error
}

func (f *fakeAPI) Call(_ context.Context, method string, params map[string]any) (map[string]any, error) {
	f.method = method
	f.params = params
	return f.res, f.err
}

package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/DRSN-tech/catalog-service/internal/domain"
	"github.com/DRSN-tech/catalog-service/pkg/e"
	"github.com/DRSN-tech/catalog-service/pkg/tr"
	"github.com/jackc/pgx/v5"
)

// fakeTx реализует pgx.Tx в объёме, который нужен менеджеру транзакций.
type fakeTx struct {
	pgx.Tx
	mu         sync.Mutex
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rolledBack = true
	return nil
}

func (t *fakeTx) Conn() *pgx.Conn { return nil }

func (t *fakeTx) state() (bool, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.committed, t.rolledBack
}

type fakeDB struct {
	mu  sync.Mutex
	txs []*fakeTx
}

func (d *fakeDB) BeginTx(context.Context, pgx.TxOptions) (pgx.Tx, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	tx := &fakeTx{}
	d.txs = append(d.txs, tx)
	return tx, nil
}

func (d *fakeDB) last() *fakeTx {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.txs) == 0 {
		return nil
	}
	return d.txs[len(d.txs)-1]
}

// fakeProductRepo хранит товары в памяти и, как и настоящий репозиторий, проставляет
// id и временные метки при сохранении.
type fakeProductRepo struct {
	mu            sync.Mutex
	nextID        int64
	products      map[int64]domain.Product
	clock         func() time.Time
	failOn        string
	sawTx         bool
	getCalls      int
	getByIDsCalls int
	getGate       chan struct{} // если задан, GetByID ждёт его закрытия
}

func newFakeProductRepo(clock func() time.Time) *fakeProductRepo {
	return &fakeProductRepo{products: map[int64]domain.Product{}, clock: clock}
}

func (r *fakeProductRepo) checkTx(ctx context.Context) {
	if _, err := tr.TxFromCtx(ctx); err == nil {
		r.sawTx = true
	}
}

func (r *fakeProductRepo) Create(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkTx(ctx)
	if r.failOn == "create" {
		return nil, errors.New("insert failed")
	}

	r.nextID++
	saved := *p
	saved.ID = r.nextID
	saved.DateCreated = r.clock()
	saved.LastUpdated = saved.DateCreated
	r.products[saved.ID] = saved
	return &saved, nil
}

func (r *fakeProductRepo) Update(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkTx(ctx)
	if r.failOn == "update" {
		return nil, errors.New("update failed")
	}

	prev, ok := r.products[p.ID]
	if !ok {
		return nil, e.ErrProductNotFound
	}

	saved := *p
	saved.DateCreated = prev.DateCreated
	saved.LastUpdated = r.clock()
	if !saved.LastUpdated.After(prev.LastUpdated) {
		saved.LastUpdated = prev.LastUpdated.Add(time.Microsecond)
	}
	r.products[saved.ID] = saved
	return &saved, nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	r.mu.Lock()
	r.getCalls++
	gate := r.getGate
	r.mu.Unlock()
	if gate != nil {
		<-gate
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, e.ErrProductNotFound
	}
	return &p, nil
}

func (r *fakeProductRepo) GetByIDs(_ context.Context, ids []int64) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getByIDsCalls++
	res := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			res = append(res, p)
		}
	}
	return res, nil
}

func (r *fakeProductRepo) page(filter func(domain.Product) bool, page domain.Page) *domain.ProductPage {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := make([]domain.Product, 0)
	for _, p := range r.products {
		if filter(p) {
			all = append(all, p)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	res := &domain.ProductPage{Page: page, TotalElements: int64(len(all)), Products: []domain.Product{}}
	from := int(min(page.Offset(), int64(len(all))))
	to := min(from+page.Size, len(all))
	res.Products = append(res.Products, all[from:to]...)
	return res
}

func (r *fakeProductRepo) List(_ context.Context, page domain.Page) (*domain.ProductPage, error) {
	return r.page(func(domain.Product) bool { return true }, page), nil
}

func (r *fakeProductRepo) ListByCategory(_ context.Context, categoryID int64, page domain.Page) (*domain.ProductPage, error) {
	return r.page(func(p domain.Product) bool { return p.CategoryID == categoryID }, page), nil
}

func (r *fakeProductRepo) SearchByName(_ context.Context, name string, page domain.Page) (*domain.ProductPage, error) {
	name = strings.ToLower(name)
	return r.page(func(p domain.Product) bool { return strings.Contains(strings.ToLower(p.Name), name) }, page), nil
}

func (r *fakeProductRepo) Delete(ctx context.Context, id int64) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkTx(ctx)
	p, ok := r.products[id]
	if !ok {
		return nil, e.ErrProductNotFound
	}
	delete(r.products, id)
	return &p, nil
}

type fakeCategoryRepo struct {
	mu         sync.Mutex
	categories map[int64]domain.Category
}

func newFakeCategoryRepo(categories ...domain.Category) *fakeCategoryRepo {
	r := &fakeCategoryRepo{categories: map[int64]domain.Category{}}
	for _, c := range categories {
		r.categories[c.ID] = c
	}
	return r
}

func (r *fakeCategoryRepo) Create(_ context.Context, c *domain.Category) (*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.categories {
		if existing.Name == c.Name {
			return &existing, nil
		}
	}
	saved := domain.Category{ID: int64(len(r.categories) + 1), Name: c.Name}
	r.categories[saved.ID] = saved
	return &saved, nil
}

func (r *fakeCategoryRepo) GetByID(_ context.Context, id int64) (*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[id]
	if !ok {
		return nil, e.ErrCategoryNotFound
	}
	return &c, nil
}

func (r *fakeCategoryRepo) List(context.Context) ([]domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]domain.Category, 0, len(r.categories))
	for _, c := range r.categories {
		res = append(res, c)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

type fakeOutboxRepo struct {
	mu     sync.Mutex
	events []*OutboxEvent
}

func (r *fakeOutboxRepo) Create(_ context.Context, event *OutboxEvent) (*OutboxEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	event.ID = int64(len(r.events) + 1)
	r.events = append(r.events, event)
	return event, nil
}

func (r *fakeOutboxRepo) GetAndMarkAsProcessing(context.Context, int) ([]*OutboxEvent, error) {
	return nil, nil
}

func (r *fakeOutboxRepo) MarkAsProcessed(context.Context, int64) error { return nil }

func (r *fakeOutboxRepo) MarkAsPending(context.Context, int64) error { return nil }

func (r *fakeOutboxRepo) MarkAsFailed(context.Context, int64) error { return nil }

func (r *fakeOutboxRepo) types() []OutboxEventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]OutboxEventType, 0, len(r.events))
	for _, ev := range r.events {
		res = append(res, ev.EventType)
	}
	return res
}

type fakeCache struct {
	mu         sync.Mutex
	items      map[int64]domain.Product
	deleted    []int64
	getErr     error
	setCalls   int
	addGate    chan struct{} // если задан, AddProduct ждёт его закрытия
	addWaiting int
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: map[int64]domain.Product{}}
}

func (c *fakeCache) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	p, ok := c.items[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (c *fakeCache) AddProduct(_ context.Context, p *domain.Product) (bool, error) {
	c.mu.Lock()
	gate := c.addGate
	if gate != nil {
		c.addWaiting++
	}
	c.mu.Unlock()
	if gate != nil {
		<-gate
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.setCalls++
	if _, ok := c.items[p.ID]; ok {
		return false, nil
	}
	c.items[p.ID] = *p
	return true, nil
}

func (c *fakeCache) DeleteProducts(_ context.Context, ids []int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		delete(c.items, id)
	}
	c.deleted = append(c.deleted, ids...)
	return nil
}

type fakeImages struct {
	mu      sync.Mutex
	uploads []*UploadImageReq
	cleaned []string
}

func (f *fakeImages) UploadImage(_ context.Context, req *UploadImageReq) (*UploadImageRes, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, req)
	key := "products/1/image.png"
	return NewUploadImageRes(key, "http://minio:9000/product-images/"+key), nil
}

func (f *fakeImages) CleanupImages(keys []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleaned = append(f.cleaned, keys...)
}

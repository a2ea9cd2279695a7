package services_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/identity"
	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/models"
	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/services"
	"github.com/stretchr/testify/mock"
)

var errStoreDown = errors.New("connection refused")

// --- Mock CartStore ---

type mockStore struct {
	mu       sync.Mutex
	lines    map[string]map[string]*models.CartLine
	catalog  map[string]*models.Product
	seq      int
	calls    []string
	failOn   map[string]error
	failLine map[string]error // product id -> error for Upsert/Increment
}

func newMockStore(catalog ...*models.Product) *mockStore {
	s := &mockStore{
		lines:    make(map[string]map[string]*models.CartLine),
		catalog:  make(map[string]*models.Product),
		failOn:   make(map[string]error),
		failLine: make(map[string]error),
	}
	for _, p := range catalog {
		s.catalog[p.ID] = p
	}
	return s
}

func (m *mockStore) record(op string) error {
	m.calls = append(m.calls, op)
	return m.failOn[op]
}

func (m *mockStore) count(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == op {
			n++
		}
	}
	return n
}

func (m *mockStore) seed(owner, productID string, qty int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(owner, productID, qty)
}

func (m *mockStore) put(owner, productID string, qty int) {
	if m.lines[owner] == nil {
		m.lines[owner] = make(map[string]*models.CartLine)
	}
	if l, ok := m.lines[owner][productID]; ok {
		l.Quantity = qty
		return
	}
	m.seq++
	m.lines[owner][productID] = &models.CartLine{
		ID:        productID + "-line",
		UserID:    owner,
		ProductID: productID,
		Quantity:  qty,
		CreatedAt: time.Unix(int64(m.seq), 0),
	}
}

// quantities returns productID -> quantity for owner.
func (m *mockStore) quantities(owner string) map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int)
	for id, l := range m.lines[owner] {
		out[id] = l.Quantity
	}
	return out
}

func (m *mockStore) FetchByOwner(_ context.Context, owner string) ([]models.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("FetchByOwner"); err != nil {
		return nil, err
	}
	out := make([]models.CartLine, 0, len(m.lines[owner]))
	for _, l := range m.lines[owner] {
		line := *l
		if p, ok := m.catalog[l.ProductID]; ok {
			cp := *p
			line.Product = &cp
		}
		out = append(out, line)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *mockStore) Upsert(_ context.Context, owner, productID string, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("Upsert"); err != nil {
		return err
	}
	if err := m.failLine[productID]; err != nil {
		return err
	}
	m.put(owner, productID, qty)
	return nil
}

func (m *mockStore) Increment(_ context.Context, owner, productID string, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("Increment"); err != nil {
		return err
	}
	if err := m.failLine[productID]; err != nil {
		return err
	}
	current := 0
	if l, ok := m.lines[owner][productID]; ok {
		current = l.Quantity
	}
	m.put(owner, productID, current+qty)
	return nil
}

func (m *mockStore) UpdateQuantity(_ context.Context, owner, productID string, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("UpdateQuantity"); err != nil {
		return err
	}
	if l, ok := m.lines[owner][productID]; ok {
		l.Quantity = qty
	}
	return nil
}

func (m *mockStore) DeleteLine(_ context.Context, owner, productID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("DeleteLine"); err != nil {
		return err
	}
	delete(m.lines[owner], productID)
	return nil
}

func (m *mockStore) DeleteAllByOwner(_ context.Context, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("DeleteAllByOwner"); err != nil {
		return err
	}
	delete(m.lines, owner)
	return nil
}

// --- Mock ProductLookup ---

type mockProducts struct {
	byID map[string]*models.Product
	err  error
}

func newMockProducts(products ...*models.Product) *mockProducts {
	m := &mockProducts{byID: make(map[string]*models.Product)}
	for _, p := range products {
		m.byID[p.ID] = p
	}
	return m
}

func (m *mockProducts) GetByID(_ context.Context, id string) (*models.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *mockProducts) List(_ context.Context, f models.ProductFilter) ([]models.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.Product
	for _, p := range m.byID {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- Mock LocalDurableStore ---

type mockDevice struct {
	mu      sync.Mutex
	data    map[string][]byte
	sets    int
	removes int
	getErr  error
	setErr  error
}

func newMockDevice() *mockDevice {
	return &mockDevice{data: make(map[string][]byte)}
}

func (m *mockDevice) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mockDevice) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.sets++
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *mockDevice) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removes++
	delete(m.data, key)
	return nil
}

func (m *mockDevice) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

// --- Mock CartEvents ---

type mockEvents struct {
	mu      sync.Mutex
	merged  []models.CartMergedEvent
	cleared []models.CartClearedEvent
}

func (m *mockEvents) CartMerged(_ context.Context, ev models.CartMergedEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.merged = append(m.merged, ev)
}

func (m *mockEvents) CartCleared(_ context.Context, ev models.CartClearedEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleared = append(m.cleared, ev)
}

// --- Mock CheckoutPublisher ---

type MockCheckoutPublisher struct {
	mock.Mock
}

func (m *MockCheckoutPublisher) CheckoutRequested(ctx context.Context, ev models.CheckoutEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

// --- Helpers ---

func price(v float64) *float64 { return &v }

func newProduct(id, name string, listPrice float64, sale *float64) *models.Product {
	return &models.Product{
		ID:            id,
		Name:          name,
		Price:         listPrice,
		SalePrice:     sale,
		Category:      models.CategoryPCParts,
		StockQuantity: 10,
		IsActive:      true,
	}
}

type harness struct {
	svc      *services.CartService
	source   *identity.Source
	store    *mockStore
	device   *mockDevice
	products *mockProducts
	notices  *services.NoticeInbox
	events   *mockEvents
}

// newHarness builds a CartService for a device signed in as userID ("" for a
// guest). The catalog is known to both the store and the product lookup.
func newHarness(userID string, catalog ...*models.Product) *harness {
	h := &harness{
		source:   identity.NewSource(userID),
		store:    newMockStore(catalog...),
		device:   newMockDevice(),
		products: newMockProducts(catalog...),
		notices:  services.NewNoticeInbox(),
		events:   &mockEvents{},
	}
	h.svc = newServiceFor(h)
	return h
}

func newServiceFor(h *harness) *services.CartService {
	return services.NewCartService(services.CartDeps{
		Products: h.products,
		Store:    h.store,
		Device:   h.device,
		Identity: h.source,
		Notifier: h.notices,
		Events:   h.events,
	})
}

func quantities(lines []models.CartLine) map[string]int {
	out := make(map[string]int, len(lines))
	for _, l := range lines {
		out[l.ProductID] += l.Quantity
	}
	return out
}

// Package testutil implementación en memoria de los repositorios y del TxRunner para tests
// de aplicación y de handlers. Las transacciones se serializan con un mutex global y
// trabajan sobre una copia de las tablas; solo se confirman si fn no devuelve error.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/fulfillment-ledger/internal/domain"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/entity"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/inventory"
	"github.com/jhoicas/fulfillment-ledger/internal/domain/repository"
)

type locKey struct {
	productID int64
	location  string
}

type instKey struct {
	orderID int64
	number  int
}

type linkKey struct {
	orderID int64
	lineID  int64
	kind    entity.LinkKind
}

type tables struct {
	seq          int64
	products     map[int64]entity.Product
	customers    map[int64]entity.Customer
	balances     map[int64]entity.StockBalance
	locations    map[locKey]entity.LocationBalance
	lots         map[int64]entity.Lot
	movements    []entity.StockMovement
	alerts       map[int64]entity.StockAlert
	transfers    []entity.Transfer
	opExits      []entity.OperationalExit
	orders       map[int64]entity.Order
	lines        map[int64]entity.OrderLine
	events       []entity.OrderEvent
	links        map[linkKey]entity.OrderStockMovement
	receivables  map[int64]entity.Receivable
	installments map[instKey]entity.OrderInstallment
	documents    map[int64]entity.BillingDocument
	docLinks     map[instKey]entity.OrderDocument
}

func newTables() *tables {
	return &tables{
		products:     map[int64]entity.Product{},
		customers:    map[int64]entity.Customer{},
		balances:     map[int64]entity.StockBalance{},
		locations:    map[locKey]entity.LocationBalance{},
		lots:         map[int64]entity.Lot{},
		alerts:       map[int64]entity.StockAlert{},
		orders:       map[int64]entity.Order{},
		lines:        map[int64]entity.OrderLine{},
		links:        map[linkKey]entity.OrderStockMovement{},
		receivables:  map[int64]entity.Receivable{},
		installments: map[instKey]entity.OrderInstallment{},
		documents:    map[int64]entity.BillingDocument{},
		docLinks:     map[instKey]entity.OrderDocument{},
	}
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (t *tables) clone() *tables {
	return &tables{
		seq:          t.seq,
		products:     copyMap(t.products),
		customers:    copyMap(t.customers),
		balances:     copyMap(t.balances),
		locations:    copyMap(t.locations),
		lots:         copyMap(t.lots),
		movements:    append([]entity.StockMovement(nil), t.movements...),
		alerts:       copyMap(t.alerts),
		transfers:    append([]entity.Transfer(nil), t.transfers...),
		opExits:      append([]entity.OperationalExit(nil), t.opExits...),
		orders:       copyMap(t.orders),
		lines:        copyMap(t.lines),
		events:       append([]entity.OrderEvent(nil), t.events...),
		links:        copyMap(t.links),
		receivables:  copyMap(t.receivables),
		installments: copyMap(t.installments),
		documents:    copyMap(t.documents),
		docLinks:     copyMap(t.docLinks),
	}
}

func (t *tables) nextID() int64 {
	t.seq++
	return t.seq
}

// Store base de datos en memoria. Implementa el TxRunner de los servicios.
type Store struct {
	mu       sync.Mutex
	data     *tables
	failures map[string]error
	commits  int
}

// NewStore store vacío.
func NewStore() *Store {
	return &Store{data: newTables(), failures: map[string]error{}}
}

// Run ejecuta fn sobre una copia de las tablas y la confirma si no hubo error.
func (s *Store) Run(ctx context.Context, fn func(repos repository.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.data.clone()
	if err := fn(&txRepos{t: work, failures: s.failures}); err != nil {
		return err
	}
	s.data = work
	s.commits++
	return nil
}

// FailOn hace que la operación op (ej. "Receivables.Create") devuelva err hasta Reset.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

// ResetFailures quita los errores inyectados.
func (s *Store) ResetFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = map[string]error{}
}

// Commits transacciones confirmadas.
func (s *Store) Commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits
}

// SeedProduct inserta un producto activo.
func (s *Store) SeedProduct(sku, name string) *entity.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	p := entity.Product{ID: s.data.nextID(), SKU: sku, Name: name, Active: true, CreatedAt: now, UpdatedAt: now}
	s.data.products[p.ID] = p
	return &p
}

// SeedCustomer inserta un cliente activo.
func (s *Store) SeedCustomer(name, taxID string) *entity.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := entity.Customer{ID: s.data.nextID(), Name: name, TaxID: taxID, Active: true, CreatedAt: time.Now()}
	s.data.customers[c.ID] = c
	return &c
}

// Balance saldo consolidado confirmado (cero si no existe).
func (s *Store) Balance(productID int64) *entity.StockBalance {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.data.balances[productID]; ok {
		return &b
	}
	return entity.NewStockBalance(productID)
}

// LocationQty saldo confirmado del producto en la ubicación.
func (s *Store) LocationQty(productID int64, location string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lb, ok := s.data.locations[locKey{productID, location}]; ok {
		return lb.Quantity
	}
	return decimal.Zero
}

// Movements movimientos confirmados del producto en orden de inserción.
func (s *Store) Movements(productID int64) []entity.StockMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.StockMovement
	for _, m := range s.data.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out
}

// Lots lotes confirmados del producto en orden FIFO.
func (s *Store) Lots(productID int64) []*entity.Lot {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.Lot
	for _, l := range s.data.lots {
		if l.ProductID == productID {
			l := l
			out = append(out, &l)
		}
	}
	inventory.SortFIFO(out)
	return out
}

// Alerts todas las alertas del producto (abiertas y resueltas).
func (s *Store) Alerts(productID int64) []entity.StockAlert {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.StockAlert
	for _, a := range s.data.alerts {
		if a.ProductID == productID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Transfers traslados confirmados.
func (s *Store) Transfers() []entity.Transfer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.Transfer(nil), s.data.transfers...)
}

// OperationalExits salidas operativas confirmadas.
func (s *Store) OperationalExits() []entity.OperationalExit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.OperationalExit(nil), s.data.opExits...)
}

// Order pedido confirmado o nil.
func (s *Store) Order(id int64) *entity.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.data.orders[id]; ok {
		return &o
	}
	return nil
}

// Links vínculos pedido-movimiento del tipo indicado.
func (s *Store) Links(orderID int64, kind entity.LinkKind) []entity.OrderStockMovement {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.OrderStockMovement
	for k, l := range s.data.links {
		if k.orderID == orderID && k.kind == kind {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderLineID < out[j].OrderLineID })
	return out
}

// Receivables cuentas ligadas a las cuotas del pedido, por número de cuota.
func (s *Store) Receivables(orderID int64) []entity.Receivable {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.Receivable
	for _, inst := range sortedInstallments(s.data.installments, orderID) {
		out = append(out, s.data.receivables[inst.ReceivableID])
	}
	return out
}

// Documents boletos ligados al pedido, por número de cuota.
func (s *Store) Documents(orderID int64) []entity.BillingDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.BillingDocument
	for _, l := range sortedDocLinks(s.data.docLinks, orderID) {
		out = append(out, s.data.documents[l.DocumentID])
	}
	return out
}

// SetReceivableStatus cambia el estado de una cuenta por referencia (simula el módulo de cobros).
func (s *Store) SetReceivableStatus(reference string, status entity.ReceivableStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, r := range s.data.receivables {
		if r.Reference == reference {
			r.Status = status
			s.data.receivables[id] = r
			return nil
		}
	}
	return domain.ErrNotFound
}

// SetDocumentStatus cambia el estado de un boleto por número.
func (s *Store) SetDocumentStatus(number string, status entity.DocumentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, d := range s.data.documents {
		if d.Number == number {
			d.Status = status
			s.data.documents[id] = d
			return nil
		}
	}
	return domain.ErrNotFound
}

func sortedInstallments(m map[instKey]entity.OrderInstallment, orderID int64) []entity.OrderInstallment {
	var out []entity.OrderInstallment
	for k, v := range m {
		if k.orderID == orderID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

func sortedDocLinks(m map[instKey]entity.OrderDocument, orderID int64) []entity.OrderDocument {
	var out []entity.OrderDocument
	for k, v := range m {
		if k.orderID == orderID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

// ────────────────────────────────────────────────────────────────────────────
// Repositorios atados a una transacción
// ────────────────────────────────────────────────────────────────────────────

type txRepos struct {
	t        *tables
	failures map[string]error
}

var _ repository.Repositories = (*txRepos)(nil)

func (r *txRepos) fail(op string) error {
	if err, ok := r.failures[op]; ok {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *txRepos) Products() repository.ProductRepository                 { return productRepo{r} }
func (r *txRepos) Customers() repository.CustomerRepository               { return customerRepo{r} }
func (r *txRepos) Balances() repository.StockBalanceRepository            { return balanceRepo{r} }
func (r *txRepos) LocationBalances() repository.LocationBalanceRepository { return locationRepo{r} }
func (r *txRepos) Lots() repository.LotRepository                         { return lotRepo{r} }
func (r *txRepos) Movements() repository.StockMovementRepository          { return movementRepo{r} }
func (r *txRepos) Alerts() repository.StockAlertRepository                { return alertRepo{r} }
func (r *txRepos) Transfers() repository.TransferRepository               { return transferRepo{r} }
func (r *txRepos) Orders() repository.OrderRepository                     { return orderRepo{r} }
func (r *txRepos) OperationalExits() repository.OperationalExitRepository {
	return opExitRepo{r}
}
func (r *txRepos) OrderEvents() repository.OrderEventRepository           { return eventRepo{r} }
func (r *txRepos) OrderMovements() repository.OrderStockMovementRepository {
	return linkRepo{r}
}
func (r *txRepos) Receivables() repository.ReceivableRepository { return receivableRepo{r} }
func (r *txRepos) Documents() repository.BillingDocumentRepository {
	return documentRepo{r}
}

// productos

type productRepo struct{ *txRepos }

func (r productRepo) GetByID(_ context.Context, id int64) (*entity.Product, error) {
	if err := r.fail("Products.GetByID"); err != nil {
		return nil, err
	}
	p, ok := r.t.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r productRepo) ListActive(_ context.Context) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, p := range r.t.products {
		if p.Active {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type customerRepo struct{ *txRepos }

func (r customerRepo) GetByID(_ context.Context, id int64) (*entity.Customer, error) {
	c, ok := r.t.customers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// saldos

type balanceRepo struct{ *txRepos }

func (r balanceRepo) Get(_ context.Context, productID int64) (*entity.StockBalance, error) {
	if b, ok := r.t.balances[productID]; ok {
		return &b, nil
	}
	return entity.NewStockBalance(productID), nil
}

func (r balanceRepo) GetForUpdate(_ context.Context, productID int64) (*entity.StockBalance, error) {
	if err := r.fail("Balances.GetForUpdate"); err != nil {
		return nil, err
	}
	b, ok := r.t.balances[productID]
	if !ok {
		b = *entity.NewStockBalance(productID)
		r.t.balances[productID] = b
	}
	return &b, nil
}

func (r balanceRepo) Upsert(_ context.Context, b *entity.StockBalance) error {
	if err := r.fail("Balances.Upsert"); err != nil {
		return err
	}
	if b.Quantity.IsNegative() {
		return fmt.Errorf("upsert stock: saldo negativo para producto %d", b.ProductID)
	}
	r.t.balances[b.ProductID] = *b
	return nil
}

func (r balanceRepo) ListProductIDs(_ context.Context) ([]int64, error) {
	out := make([]int64, 0, len(r.t.balances))
	for id := range r.t.balances {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

type locationRepo struct{ *txRepos }

func (r locationRepo) GetForUpdate(_ context.Context, productID int64, location string) (*entity.LocationBalance, error) {
	k := locKey{productID, location}
	lb, ok := r.t.locations[k]
	if !ok {
		lb = entity.LocationBalance{ProductID: productID, Location: location, Quantity: decimal.Zero}
		r.t.locations[k] = lb
	}
	return &lb, nil
}

func (r locationRepo) Upsert(_ context.Context, lb *entity.LocationBalance) error {
	if err := r.fail("LocationBalances.Upsert"); err != nil {
		return err
	}
	if lb.Quantity.IsNegative() {
		return fmt.Errorf("upsert location stock: saldo negativo en %s", lb.Location)
	}
	r.t.locations[locKey{lb.ProductID, lb.Location}] = *lb
	return nil
}

func (r locationRepo) ListByProduct(_ context.Context, productID int64) ([]*entity.LocationBalance, error) {
	var out []*entity.LocationBalance
	for k, lb := range r.t.locations {
		if k.productID == productID {
			lb := lb
			out = append(out, &lb)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Location < out[j].Location })
	return out, nil
}

// lotes

type lotRepo struct{ *txRepos }

func (r lotRepo) Create(_ context.Context, lot *entity.Lot) error {
	if err := r.fail("Lots.Create"); err != nil {
		return err
	}
	lot.ID = r.t.nextID()
	r.t.lots[lot.ID] = *lot
	return nil
}

func (r lotRepo) ListAvailableForUpdate(ctx context.Context, productID int64) ([]*entity.Lot, error) {
	return r.ListAvailable(ctx, productID)
}

func (r lotRepo) UpdateRemaining(_ context.Context, lotID int64, remaining decimal.Decimal) error {
	if err := r.fail("Lots.UpdateRemaining"); err != nil {
		return err
	}
	l, ok := r.t.lots[lotID]
	if !ok {
		return domain.ErrNotFound
	}
	if remaining.IsNegative() || remaining.GreaterThan(l.InitialQty) {
		return fmt.Errorf("update lot: remanente %s fuera de rango", remaining)
	}
	l.RemainingQty = remaining
	r.t.lots[lotID] = l
	return nil
}

func (r lotRepo) ListAvailable(_ context.Context, productID int64) ([]*entity.Lot, error) {
	var out []*entity.Lot
	for _, l := range r.t.lots {
		if l.ProductID == productID && l.RemainingQty.IsPositive() {
			l := l
			out = append(out, &l)
		}
	}
	inventory.SortFIFO(out)
	return out, nil
}

func (r lotRepo) SumRemaining(_ context.Context, productID int64) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, l := range r.t.lots {
		if l.ProductID == productID {
			sum = sum.Add(l.RemainingQty)
		}
	}
	return sum, nil
}

func (r lotRepo) ListEnteredSince(_ context.Context, productID int64, since time.Time) ([]*entity.Lot, error) {
	var out []*entity.Lot
	for _, l := range r.t.lots {
		if l.ProductID == productID && !l.EntryDate.Before(since) {
			l := l
			out = append(out, &l)
		}
	}
	inventory.SortFIFO(out)
	return out, nil
}

// ledger

type movementRepo struct{ *txRepos }

func (r movementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	if err := r.fail("Movements.Create"); err != nil {
		return err
	}
	// mismo índice único parcial que el esquema
	if m.OriginType == entity.OriginPurchase && m.OriginID != nil {
		var line int64
		if m.OriginLineID != nil {
			line = *m.OriginLineID
		}
		if dup, _ := r.ExistsByOrigin(context.Background(), m.OriginType, *m.OriginID, line, m.Kind); dup {
			return fmt.Errorf("insert movement: %w", domain.ErrDuplicate)
		}
	}
	m.ID = r.t.nextID()
	r.t.movements = append(r.t.movements, *m)
	return nil
}

func (r movementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for i := len(r.t.movements) - 1; i >= 0; i-- {
		m := r.t.movements[i]
		if f.ProductID != 0 && m.ProductID != f.ProductID {
			continue
		}
		if f.From != nil && m.Date.Before(*f.From) {
			continue
		}
		if f.To != nil && m.Date.After(*f.To) {
			continue
		}
		out = append(out, &m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if f.Offset >= len(out) {
		return nil, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r movementRepo) SumSigned(_ context.Context, productID int64) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, m := range r.t.movements {
		if m.ProductID == productID {
			sum = sum.Add(m.SignedQuantity())
		}
	}
	return sum, nil
}

func (r movementRepo) ExistsByOrigin(_ context.Context, originType string, originID, originLineID int64, kind entity.MovementKind) (bool, error) {
	for _, m := range r.t.movements {
		if m.OriginType != originType || m.Kind != kind || m.OriginID == nil || *m.OriginID != originID {
			continue
		}
		if originLineID == 0 && m.OriginLineID == nil {
			return true, nil
		}
		if m.OriginLineID != nil && *m.OriginLineID == originLineID {
			return true, nil
		}
	}
	return false, nil
}

func (r movementRepo) SumQuantity(_ context.Context, productID int64, kind entity.MovementKind, since time.Time) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, m := range r.t.movements {
		if m.ProductID == productID && m.Kind == kind && !m.Date.Before(since) {
			sum = sum.Add(m.Quantity)
		}
	}
	return sum, nil
}

// alertas

type alertRepo struct{ *txRepos }

func (r alertRepo) GetOpen(_ context.Context, productID int64) (*entity.StockAlert, error) {
	for _, a := range r.t.alerts {
		if a.ProductID == productID && a.Status == entity.AlertOpen {
			return &a, nil
		}
	}
	return nil, nil
}

func (r alertRepo) Create(ctx context.Context, a *entity.StockAlert) error {
	if err := r.fail("Alerts.Create"); err != nil {
		return err
	}
	if open, _ := r.GetOpen(ctx, a.ProductID); open != nil {
		return fmt.Errorf("create alert: %w", domain.ErrDuplicate)
	}
	a.ID = r.t.nextID()
	r.t.alerts[a.ID] = *a
	return nil
}

func (r alertRepo) Update(_ context.Context, a *entity.StockAlert) error {
	if _, ok := r.t.alerts[a.ID]; !ok {
		return domain.ErrNotFound
	}
	r.t.alerts[a.ID] = *a
	return nil
}

func (r alertRepo) ListOpen(_ context.Context) ([]*entity.StockAlert, error) {
	var out []*entity.StockAlert
	for _, a := range r.t.alerts {
		if a.Status == entity.AlertOpen {
			a := a
			out = append(out, &a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

// traslados

type transferRepo struct{ *txRepos }

func (r transferRepo) Create(_ context.Context, t *entity.Transfer) error {
	if err := r.fail("Transfers.Create"); err != nil {
		return err
	}
	t.ID = r.t.nextID()
	r.t.transfers = append(r.t.transfers, *t)
	return nil
}

func (r transferRepo) ListByBatch(_ context.Context, batchRef string) ([]*entity.Transfer, error) {
	var out []*entity.Transfer
	for _, t := range r.t.transfers {
		if t.BatchRef == batchRef {
			t := t
			out = append(out, &t)
		}
	}
	return out, nil
}

// salidas operativas

type opExitRepo struct{ *txRepos }

func (r opExitRepo) Create(_ context.Context, e *entity.OperationalExit) error {
	if err := r.fail("OperationalExits.Create"); err != nil {
		return err
	}
	for _, x := range r.t.opExits {
		if x.MovementID == e.MovementID {
			return fmt.Errorf("insert operational exit: %w", domain.ErrDuplicate)
		}
	}
	e.ID = r.t.nextID()
	r.t.opExits = append(r.t.opExits, *e)
	return nil
}

func (r opExitRepo) ListByBatch(_ context.Context, batchRef string) ([]*entity.OperationalExit, error) {
	var out []*entity.OperationalExit
	for _, e := range r.t.opExits {
		if e.BatchRef == batchRef {
			e := e
			out = append(out, &e)
		}
	}
	return out, nil
}

// pedidos

type orderRepo struct{ *txRepos }

func (r orderRepo) Create(_ context.Context, o *entity.Order) error {
	if err := r.fail("Orders.Create"); err != nil {
		return err
	}
	o.ID = r.t.nextID()
	r.t.orders[o.ID] = *o
	return nil
}

func (r orderRepo) GetByID(_ context.Context, id int64) (*entity.Order, error) {
	o, ok := r.t.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (r orderRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Order, error) {
	return r.GetByID(ctx, id)
}

func (r orderRepo) Update(_ context.Context, o *entity.Order) error {
	if err := r.fail("Orders.Update"); err != nil {
		return err
	}
	if _, ok := r.t.orders[o.ID]; !ok {
		return domain.ErrNotFound
	}
	r.t.orders[o.ID] = *o
	return nil
}

func (r orderRepo) CreateLine(_ context.Context, l *entity.OrderLine) error {
	l.ID = r.t.nextID()
	r.t.lines[l.ID] = *l
	return nil
}

func (r orderRepo) DeleteLines(_ context.Context, orderID int64) error {
	for id, l := range r.t.lines {
		if l.OrderID == orderID {
			delete(r.t.lines, id)
		}
	}
	return nil
}

func (r orderRepo) ListLines(_ context.Context, orderID int64) ([]*entity.OrderLine, error) {
	var out []*entity.OrderLine
	for _, l := range r.t.lines {
		if l.OrderID == orderID {
			l := l
			out = append(out, &l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r orderRepo) ListLinesForUpdate(ctx context.Context, orderID int64) ([]*entity.OrderLine, error) {
	return r.ListLines(ctx, orderID)
}

type eventRepo struct{ *txRepos }

func (r eventRepo) Append(_ context.Context, e *entity.OrderEvent) error {
	e.ID = r.t.nextID()
	r.t.events = append(r.t.events, *e)
	return nil
}

func (r eventRepo) ListByOrder(_ context.Context, orderID int64) ([]*entity.OrderEvent, error) {
	var out []*entity.OrderEvent
	for _, e := range r.t.events {
		if e.OrderID == orderID {
			e := e
			out = append(out, &e)
		}
	}
	return out, nil
}

type linkRepo struct{ *txRepos }

func (r linkRepo) Exists(_ context.Context, orderID, lineID int64, kind entity.LinkKind) (bool, error) {
	_, ok := r.t.links[linkKey{orderID, lineID, kind}]
	return ok, nil
}

func (r linkRepo) Create(_ context.Context, l *entity.OrderStockMovement) error {
	if err := r.fail("OrderMovements.Create"); err != nil {
		return err
	}
	k := linkKey{l.OrderID, l.OrderLineID, l.Kind}
	if _, ok := r.t.links[k]; ok {
		return fmt.Errorf("create order movement: %w", domain.ErrDuplicate)
	}
	l.ID = r.t.nextID()
	r.t.links[k] = *l
	return nil
}

func (r linkRepo) ListByOrder(_ context.Context, orderID int64, kind entity.LinkKind) ([]*entity.OrderStockMovement, error) {
	var out []*entity.OrderStockMovement
	for k, l := range r.t.links {
		if k.orderID == orderID && k.kind == kind {
			l := l
			out = append(out, &l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// cuentas por cobrar

type receivableRepo struct{ *txRepos }

func (r receivableRepo) GetByReference(_ context.Context, reference string) (*entity.Receivable, error) {
	for _, rec := range r.t.receivables {
		if rec.Reference == reference {
			return &rec, nil
		}
	}
	return nil, nil
}

func (r receivableRepo) Create(ctx context.Context, rec *entity.Receivable) error {
	if err := r.fail("Receivables.Create"); err != nil {
		return err
	}
	if existing, _ := r.GetByReference(ctx, rec.Reference); existing != nil {
		return fmt.Errorf("create receivable: %w", domain.ErrDuplicate)
	}
	rec.ID = r.t.nextID()
	r.t.receivables[rec.ID] = *rec
	return nil
}

func (r receivableRepo) UpdateStatus(_ context.Context, id int64, status entity.ReceivableStatus) error {
	rec, ok := r.t.receivables[id]
	if !ok {
		return domain.ErrNotFound
	}
	rec.Status = status
	r.t.receivables[id] = rec
	return nil
}

func (r receivableRepo) ListByOrderForUpdate(_ context.Context, orderID int64) ([]*entity.Receivable, error) {
	var out []*entity.Receivable
	for _, inst := range sortedInstallments(r.t.installments, orderID) {
		rec := r.t.receivables[inst.ReceivableID]
		out = append(out, &rec)
	}
	return out, nil
}

func (r receivableRepo) GetInstallment(_ context.Context, orderID int64, number int) (*entity.OrderInstallment, error) {
	inst, ok := r.t.installments[instKey{orderID, number}]
	if !ok {
		return nil, nil
	}
	return &inst, nil
}

func (r receivableRepo) LinkInstallment(_ context.Context, inst *entity.OrderInstallment) error {
	k := instKey{inst.OrderID, inst.Number}
	if _, ok := r.t.installments[k]; ok {
		return fmt.Errorf("link installment: %w", domain.ErrDuplicate)
	}
	r.t.installments[k] = *inst
	return nil
}

// boletos

type documentRepo struct{ *txRepos }

func (r documentRepo) GetByNumber(_ context.Context, number string) (*entity.BillingDocument, error) {
	for _, d := range r.t.documents {
		if d.Number == number {
			return &d, nil
		}
	}
	return nil, nil
}

func (r documentRepo) Create(ctx context.Context, d *entity.BillingDocument) error {
	if err := r.fail("Documents.Create"); err != nil {
		return err
	}
	if existing, _ := r.GetByNumber(ctx, d.Number); existing != nil {
		return fmt.Errorf("create billing document: %w", domain.ErrDuplicate)
	}
	d.ID = r.t.nextID()
	r.t.documents[d.ID] = *d
	return nil
}

func (r documentRepo) UpdateStatus(_ context.Context, id int64, status entity.DocumentStatus) error {
	d, ok := r.t.documents[id]
	if !ok {
		return domain.ErrNotFound
	}
	d.Status = status
	r.t.documents[id] = d
	return nil
}

func (r documentRepo) ListByOrderForUpdate(_ context.Context, orderID int64) ([]*entity.BillingDocument, error) {
	var out []*entity.BillingDocument
	for _, l := range sortedDocLinks(r.t.docLinks, orderID) {
		d := r.t.documents[l.DocumentID]
		out = append(out, &d)
	}
	return out, nil
}

func (r documentRepo) GetLink(_ context.Context, orderID int64, number int) (*entity.OrderDocument, error) {
	l, ok := r.t.docLinks[instKey{orderID, number}]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r documentRepo) Link(_ context.Context, l *entity.OrderDocument) error {
	k := instKey{l.OrderID, l.Number}
	if _, ok := r.t.docLinks[k]; ok {
		return fmt.Errorf("link billing document: %w", domain.ErrDuplicate)
	}
	r.t.docLinks[k] = *l
	return nil
}

// FixedClock reloj fijo para los campos Now de los servicios.
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

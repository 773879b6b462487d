// Package memory is an in-process ledger store. Writes are staged on a
// transaction and applied atomically on commit; register locks taken through
// GetForUpdate are held until the root transaction ends. Nested Begin calls
// open savepoints. Reads see committed state only.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"pos-fiscal-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var (
	// ErrForeignTx is returned when a repository receives a transaction from another store.
	ErrForeignTx = errors.New("memory: transaction does not belong to this store")
	// ErrDuplicate mirrors a unique constraint violation.
	ErrDuplicate = errors.New("memory: duplicate key")
)

type closureKey struct {
	registerID uuid.UUID
	date       string
}

type stockKey struct {
	establishmentID uuid.UUID
	productID       string
}

// Store holds committed ledger state.
type Store struct {
	mu sync.RWMutex

	establishments map[uuid.UUID]domain.Establishment
	registers      map[uuid.UUID]domain.Register
	estOrdinals    map[uuid.UUID]int
	regOrdinals    map[uuid.UUID]int
	tickets        []domain.Ticket
	ticketIndex    map[string]int // tenant|number -> position in tickets
	closures       map[closureKey]domain.Closure
	stock          map[stockKey]decimal.Decimal
	audit          []domain.AuditEntry

	locksMu sync.Mutex
	locks   map[uuid.UUID]chan struct{}
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		establishments: make(map[uuid.UUID]domain.Establishment),
		registers:      make(map[uuid.UUID]domain.Register),
		estOrdinals:    make(map[uuid.UUID]int),
		regOrdinals:    make(map[uuid.UUID]int),
		ticketIndex:    make(map[string]int),
		closures:       make(map[closureKey]domain.Closure),
		stock:          make(map[stockKey]decimal.Decimal),
		locks:          make(map[uuid.UUID]chan struct{}),
	}
}

// AddEstablishment registers an establishment.
func (s *Store) AddEstablishment(e domain.Establishment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.establishments[e.ID] = e
}

// AddRegister registers a register.
func (s *Store) AddRegister(r domain.Register) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registers[r.ID] = r
}

// SetStock sets the stock quantity of a product in an establishment.
func (s *Store) SetStock(establishmentID uuid.UUID, productID string, qty decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stock[stockKey{establishmentID, productID}] = qty
}

// Stock returns the stock quantity and whether a record exists.
func (s *Store) Stock(establishmentID uuid.UUID, productID string) (decimal.Decimal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.stock[stockKey{establishmentID, productID}]
	return q, ok
}

// AuditEntries returns a copy of the audit trail.
func (s *Store) AuditEntries() []domain.AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.AuditEntry(nil), s.audit...)
}

// Tamper lets tests corrupt a committed ticket in place.
func (s *Store) Tamper(number string, fn func(*domain.Ticket)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tickets {
		if s.tickets[i].Number == number {
			fn(&s.tickets[i])
			return true
		}
	}
	return false
}

// Begin starts a root transaction. It satisfies ports.DBTransactor.
func (s *Store) Begin(_ context.Context) (pgx.Tx, error) {
	return &Tx{store: s}, nil
}

// Ping satisfies ports.HealthChecker.
func (s *Store) Ping(_ context.Context) error { return nil }

// Name satisfies ports.HealthChecker.
func (s *Store) Name() string { return "memory" }

// rowLock returns the lock for a register, establishment or tenant id.
func (s *Store) rowLock(id uuid.UUID) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = make(chan struct{}, 1)
		s.locks[id] = l
	}
	return l
}

// Tx is a staged transaction. Only Begin, Commit and Rollback are implemented;
// the embedded pgx.Tx is nil and panics on any other method.
type Tx struct {
	pgx.Tx

	store  *Store
	parent *Tx
	ops    []func(*Store) error
	held   []chan struct{}
	done   bool

	// ordinals assigned by this transaction and not yet committed
	ordinals [2]map[uuid.UUID]int
}

// Begin opens a savepoint.
func (t *Tx) Begin(_ context.Context) (pgx.Tx, error) {
	if t.done {
		return nil, pgx.ErrTxClosed
	}
	return &Tx{store: t.store, parent: t}, nil
}

// Commit applies staged writes, or hands them to the parent for a savepoint.
func (t *Tx) Commit(_ context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true

	if t.parent != nil {
		t.parent.ops = append(t.parent.ops, t.ops...)
		for kind := range t.ordinals {
			for id, n := range t.ordinals[kind] {
				t.parent.pending(ordinalKind(kind))[id] = n
			}
		}
		return nil
	}
	defer t.release()

	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.snapshot()
	for _, op := range t.ops {
		if err := op(s); err != nil {
			s.restore(snapshot)
			return fmt.Errorf("memory commit: %w", err)
		}
	}
	return nil
}

// Rollback discards staged writes. Safe after Commit.
func (t *Tx) Rollback(_ context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	t.ops = nil
	t.ordinals = [2]map[uuid.UUID]int{}
	if t.parent == nil {
		t.release()
	}
	return nil
}

func (t *Tx) root() *Tx {
	r := t
	for r.parent != nil {
		r = r.parent
	}
	return r
}

func (t *Tx) stage(op func(*Store) error) {
	t.ops = append(t.ops, op)
}

type ordinalKind int

const (
	establishmentOrdinal ordinalKind = iota
	registerOrdinal
)

func (t *Tx) pending(kind ordinalKind) map[uuid.UUID]int {
	if t.ordinals[kind] == nil {
		t.ordinals[kind] = make(map[uuid.UUID]int)
	}
	return t.ordinals[kind]
}

// ordinals returns committed numbers of kind. Caller holds mu.
func (s *Store) ordinals(kind ordinalKind) map[uuid.UUID]int {
	if kind == establishmentOrdinal {
		return s.estOrdinals
	}
	return s.regOrdinals
}

// lockRow blocks until the lock on id is free or ctx ends. The lock is held
// until the root transaction ends.
func (t *Tx) lockRow(ctx context.Context, id uuid.UUID) error {
	root := t.root()
	l := t.store.rowLock(id)
	for _, h := range root.held {
		if h == l {
			return nil
		}
	}
	select {
	case l <- struct{}{}:
		root.held = append(root.held, l)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Tx) release() {
	for _, l := range t.held {
		<-l
	}
	t.held = nil
}

type storeSnapshot struct {
	tickets     []domain.Ticket
	ticketIndex map[string]int
	closures    map[closureKey]domain.Closure
	stock       map[stockKey]decimal.Decimal
	audit       []domain.AuditEntry
	estOrdinals map[uuid.UUID]int
	regOrdinals map[uuid.UUID]int
}

func (s *Store) snapshot() storeSnapshot {
	snap := storeSnapshot{
		tickets:     append([]domain.Ticket(nil), s.tickets...),
		ticketIndex: make(map[string]int, len(s.ticketIndex)),
		closures:    make(map[closureKey]domain.Closure, len(s.closures)),
		stock:       make(map[stockKey]decimal.Decimal, len(s.stock)),
		audit:       append([]domain.AuditEntry(nil), s.audit...),
		estOrdinals: make(map[uuid.UUID]int, len(s.estOrdinals)),
		regOrdinals: make(map[uuid.UUID]int, len(s.regOrdinals)),
	}
	for k, v := range s.ticketIndex {
		snap.ticketIndex[k] = v
	}
	for k, v := range s.closures {
		snap.closures[k] = v
	}
	for k, v := range s.stock {
		snap.stock[k] = v
	}
	for k, v := range s.estOrdinals {
		snap.estOrdinals[k] = v
	}
	for k, v := range s.regOrdinals {
		snap.regOrdinals[k] = v
	}
	return snap
}

func (s *Store) restore(snap storeSnapshot) {
	s.tickets = snap.tickets
	s.ticketIndex = snap.ticketIndex
	s.closures = snap.closures
	s.stock = snap.stock
	s.audit = snap.audit
	s.estOrdinals = snap.estOrdinals
	s.regOrdinals = snap.regOrdinals
}

func asTx(s *Store, tx pgx.Tx) (*Tx, error) {
	t, ok := tx.(*Tx)
	if !ok || t.store != s {
		return nil, ErrForeignTx
	}
	if t.done {
		return nil, pgx.ErrTxClosed
	}
	return t, nil
}

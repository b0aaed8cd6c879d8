package cart

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/yazbox/yazbox-backend/pkg/errors"
	"github.com/yazbox/yazbox-backend/pkg/logger"
)

// Store is the authoritative cart for one session. Every mutation is
// persisted synchronously before it returns, so the stored blob and the
// in-memory view never diverge.
type Store struct {
	sessionID string
	storage   Storage
	logg      *logger.Logger

	mu    sync.Mutex
	items []Item
}

// NewStore rehydrates the cart for a session. A malformed persisted blob is
// logged and discarded in favor of an empty cart, never surfaced as an error.
func NewStore(ctx context.Context, sessionID string, storage Storage, logg *logger.Logger) (*Store, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	if storage == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "cart storage required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}

	s := &Store{
		sessionID: sessionID,
		storage:   storage,
		logg:      logg,
	}

	blob, err := storage.Load(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}
	if len(blob) > 0 {
		var items []Item
		if err := json.Unmarshal(blob, &items); err != nil {
			logg.Warn(logg.WithField(ctx, "session_id", sessionID), "discarding unparseable cart blob")
		} else {
			s.items = items
		}
	}

	return s, nil
}

// Add merges a product/variant into the cart. An existing line with the same
// key accumulates quantity; a new line is appended. Quantity never drops
// below the product minimum.
func (s *Store) Add(ctx context.Context, item Item) error {
	if item.ProductID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if item.Quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if item.MinOrderQty < 1 {
		item.MinOrderQty = 1
	}
	item.ID = LineKey(item.ProductID, item.VariantID)

	s.mu.Lock()
	defer s.mu.Unlock()

	merged := false
	for idx := range s.items {
		if s.items[idx].ID == item.ID {
			s.items[idx].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		item.Quantity = clampQuantity(item.MinOrderQty, item.Quantity)
		s.items = append(s.items, item)
	}

	return s.persistLocked(ctx)
}

// Remove deletes the line with the given compound key. Removing an absent
// key still re-persists but is otherwise a no-op.
func (s *Store) Remove(ctx context.Context, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.items[:0]
	for _, item := range s.items {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	s.items = kept

	return s.persistLocked(ctx)
}

// UpdateQuantity sets a line's quantity, silently clamping to the product
// minimum rather than rejecting.
func (s *Store) UpdateQuantity(ctx context.Context, itemID string, requested int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for idx := range s.items {
		if s.items[idx].ID == itemID {
			s.items[idx].Quantity = clampQuantity(s.items[idx].MinOrderQty, requested)
			return s.persistLocked(ctx)
		}
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
}

// Clear removes every line and drops the persisted blob.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	if err := s.storage.Delete(ctx, s.sessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clearing cart")
	}
	return nil
}

// Items returns the lines in insertion order.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// ItemCount is the number of distinct product/variant lines, independent of
// per-line quantity.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Total sums line subtotals.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.Subtotal())
	}
	return total
}

func (s *Store) persistLocked(ctx context.Context) error {
	blob, err := json.Marshal(s.items)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "serializing cart")
	}
	if err := s.storage.Save(ctx, s.sessionID, blob); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persisting cart")
	}
	return nil
}

func clampQuantity(minOrderQty, requested int) int {
	if minOrderQty < 1 {
		minOrderQty = 1
	}
	if requested < minOrderQty {
		return minOrderQty
	}
	return requested
}

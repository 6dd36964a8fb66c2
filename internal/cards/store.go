// Package cards holds the ordered, persisted card collection.
package cards

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/cardscan/constants"
	"github.com/joseph-ayodele/cardscan/internal/common"
	"github.com/joseph-ayodele/cardscan/internal/entity"
	"github.com/joseph-ayodele/cardscan/internal/repository"
)

// Store is the authoritative card list. The newest card sits at index 0.
// Every mutation persists the whole list before returning.
type Store struct {
	kv     repository.KV
	logger *slog.Logger

	mu    sync.Mutex
	cards []entity.Card
}

func NewStore(kv repository.KV, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{kv: kv, logger: logger, cards: []entity.Card{}}
}

// Add prepends card and persists.
func (s *Store) Add(ctx context.Context, card entity.Card) error {
	card = card.Clone()
	card.Normalize()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cards = append([]entity.Card{card}, s.cards...)
	s.logger.Info("cards.add", "count", len(s.cards))
	return s.persistLocked(ctx)
}

// Update sets one field of the card at index. List fields are split on ';'.
func (s *Store) Update(ctx context.Context, index int, field entity.Field, value string) error {
	if _, ok := entity.KindOf(field); !ok {
		return common.NewAppError("CARD_FIELD", fmt.Sprintf("unknown field %q", field), common.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkIndexLocked(index); err != nil {
		return err
	}
	if err := s.cards[index].Set(field, value); err != nil {
		return common.NewAppError("CARD_FIELD", err.Error(), common.ErrInvalidInput)
	}
	s.logger.Info("cards.update", "index", index, "field", field)
	return s.persistLocked(ctx)
}

// Delete removes the card at index; later cards shift down by one.
func (s *Store) Delete(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkIndexLocked(index); err != nil {
		return err
	}
	s.cards = append(s.cards[:index], s.cards[index+1:]...)
	s.logger.Info("cards.delete", "index", index, "count", len(s.cards))
	return s.persistLocked(ctx)
}

// Persist writes the full list under the cards key, replacing what was there.
func (s *Store) Persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked(ctx)
}

func (s *Store) persistLocked(ctx context.Context) error {
	start := time.Now()
	raw, err := json.Marshal(s.cards)
	if err != nil {
		return fmt.Errorf("encode cards: %w", err)
	}
	if err := s.kv.Put(ctx, constants.CardsKey, raw); err != nil {
		s.logger.Error("cards.persist.failed", "error", err)
		return fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	s.logger.Debug("cards.persist.ok", "count", len(s.cards), "bytes", len(raw), "elapsed_ms", time.Since(start).Milliseconds())
	return nil
}

// Load replaces the in-memory list with the persisted one. A missing key is
// not an error. Corrupt data is logged and the current list is kept.
func (s *Store) Load(ctx context.Context) error {
	raw, ok, err := s.kv.Get(ctx, constants.CardsKey)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	if !ok {
		s.logger.Debug("cards.load.empty")
		return nil
	}

	var loaded []entity.Card
	if err := json.Unmarshal(raw, &loaded); err != nil {
		s.logger.Error("cards.load.corrupt", "error", err, "bytes", len(raw))
		return nil
	}
	if loaded == nil {
		loaded = []entity.Card{}
	}
	for i := range loaded {
		loaded[i].Normalize()
	}

	s.mu.Lock()
	s.cards = loaded
	s.mu.Unlock()
	s.logger.Info("cards.load.ok", "count", len(loaded))
	return nil
}

// List returns a deep copy of the cards in display order.
func (s *Store) List() []entity.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Card, len(s.cards))
	for i, c := range s.cards {
		out[i] = c.Clone()
	}
	return out
}

// Get returns a copy of the card at index.
func (s *Store) Get(index int) (entity.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkIndexLocked(index); err != nil {
		return entity.Card{}, err
	}
	return s.cards[index].Clone(), nil
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cards)
}

func (s *Store) checkIndexLocked(index int) error {
	if index < 0 || index >= len(s.cards) {
		return common.NewAppError("CARD_INDEX",
			fmt.Sprintf("index %d out of range [0,%d)", index, len(s.cards)), common.ErrInvalidInput)
	}
	return nil
}

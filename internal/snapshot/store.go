package snapshot

import (
	"fmt"

	"tycoon/internal/game"
	"tycoon/internal/storage"
)

// KeyBusinesses is the slot holding the encoded business collection.
const KeyBusinesses = "businesses"

// Store keeps the business snapshot in one key/value slot.
type Store struct {
	kv  storage.KV
	key string
}

func NewStore(kv storage.KV) *Store {
	return &Store{kv: kv, key: KeyBusinesses}
}

func (s *Store) Save(businesses []game.Business) error {
	raw, err := Encode(businesses)
	if err != nil {
		return fmt.Errorf("encode business snapshot: %w", err)
	}
	return s.kv.Set(s.key, raw)
}

// Load returns an empty collection when nothing has been saved yet.
func (s *Store) Load() ([]game.Business, error) {
	raw, ok, err := s.kv.Get(s.key)
	if err != nil {
		return nil, fmt.Errorf("read business snapshot: %w", err)
	}
	if !ok || len(raw) == 0 {
		return []game.Business{}, nil
	}
	return Decode(raw)
}

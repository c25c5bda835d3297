package clmm

import (
	"sync"

	"github.com/glebarez/sqlite"
	"github.com/holiman/uint256"
	"gorm.io/gorm"
)

// TickRow and PositionRow are the normalized GORM rows backing the tick
// and position tables. The teacher keeps its tick/position managers
// purely in memory and only flushes the owning CorePool; this store
// follows the same shape but gives ticks and positions their own rows
// so a word's worth of ticks, or one owner's positions, can be queried
// without deserializing an entire pool's JSON blob.
type TickRow struct {
	gorm.Model
	Token0 string `gorm:"index:idx_tick_pool"`
	Token1 string `gorm:"index:idx_tick_pool"`
	Fee    uint32 `gorm:"index:idx_tick_pool"`
	Tick   int32  `gorm:"index:idx_tick_pool"`
	Info   TickInfo
}

type BitmapRow struct {
	gorm.Model
	Token0  string `gorm:"index:idx_word_pool"`
	Token1  string `gorm:"index:idx_word_pool"`
	Fee     uint32 `gorm:"index:idx_word_pool"`
	WordPos int16  `gorm:"index:idx_word_pool"`
	Word    string
}

type PositionRow struct {
	gorm.Model
	Owner     string `gorm:"index:idx_position"`
	Token0    string `gorm:"index:idx_position"`
	Token1    string `gorm:"index:idx_position"`
	Fee       uint32 `gorm:"index:idx_position"`
	TickLower int32  `gorm:"index:idx_position"`
	TickUpper int32  `gorm:"index:idx_position"`
	Info      PositionInfo
}

// Store is the GORM-backed persistence layer for pools, ticks, positions
// and their bitmaps. It also keeps an in-memory cache so a swap's tight
// loop of tick/bitmap reads doesn't round-trip through sqlite on every
// step; the teacher takes the same approach by holding its
// TickManager/PositionManager fully in memory and only calling Flush at
// the edges of a batch of operations.
type Store struct {
	db *gorm.DB

	mu        sync.RWMutex
	pools     map[PoolId]*PoolState
	ticks     map[TickKey]TickInfo
	bitmaps   map[TickBitmapKey]BitmapWord
	positions map[PositionKey]PositionInfo
}

// NewStore opens (or creates) a sqlite database at path and migrates the
// schema, following the teacher's glebarez/sqlite + gorm.Open pattern.
func NewStore(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&PoolState{}, &TickRow{}, &BitmapRow{}, &PositionRow{}); err != nil {
		return nil, err
	}
	return &Store{
		db:        db,
		pools:     make(map[PoolId]*PoolState),
		ticks:     make(map[TickKey]TickInfo),
		bitmaps:   make(map[TickBitmapKey]BitmapWord),
		positions: make(map[PositionKey]PositionInfo),
	}, nil
}

func (s *Store) GetPool(id PoolId) (*PoolState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pool, ok := s.pools[id]
	return pool, ok
}

func (s *Store) PutPool(pool *PoolState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pools[pool.PoolID] = pool
}

func (s *Store) GetTick(key TickKey) (TickInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info, ok := s.ticks[key]
	return info, ok
}

func (s *Store) PutTick(key TickKey, info TickInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ticks[key] = info
}

func (s *Store) DeleteTick(key TickKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ticks, key)
}

func (s *Store) GetBitmapWord(key TickBitmapKey) (BitmapWord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	word, ok := s.bitmaps[key]
	return word, ok
}

func (s *Store) PutBitmapWord(key TickBitmapKey, word BitmapWord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bitmaps[key] = word
}

func (s *Store) GetPosition(key PositionKey) (PositionInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info, ok := s.positions[key]
	return info, ok
}

func (s *Store) PutPosition(key PositionKey, info PositionInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions[key] = info
}

// FlushPool persists one pool and every tick/bitmap/position row that
// belongs to it, the way the teacher's CorePool.Flush persists a whole
// pool's state in one call.
func (s *Store) FlushPool(id PoolId) error {
	s.mu.RLock()
	pool, ok := s.pools[id]
	if !ok {
		s.mu.RUnlock()
		return ErrPoolNotInitialized
	}
	poolCopy := *pool

	var tickRows []TickRow
	for key, info := range s.ticks {
		if key.PoolID != id {
			continue
		}
		tickRows = append(tickRows, TickRow{
			Token0: key.PoolID.Token0.Hex(),
			Token1: key.PoolID.Token1.Hex(),
			Fee:    key.PoolID.Fee,
			Tick:   key.Tick,
			Info:   info,
		})
	}

	var bitmapRows []BitmapRow
	for key, word := range s.bitmaps {
		if key.PoolID != id {
			continue
		}
		w := word.Word
		bitmapRows = append(bitmapRows, BitmapRow{
			Token0:  key.PoolID.Token0.Hex(),
			Token1:  key.PoolID.Token1.Hex(),
			Fee:     key.PoolID.Fee,
			WordPos: key.WordPos,
			Word:    (&w).Dec(),
		})
	}

	var positionRows []PositionRow
	for key, info := range s.positions {
		if key.PoolID != id {
			continue
		}
		positionRows = append(positionRows, PositionRow{
			Owner:     key.Owner.Hex(),
			Token0:    key.PoolID.Token0.Hex(),
			Token1:    key.PoolID.Token1.Hex(),
			Fee:       key.PoolID.Fee,
			TickLower: key.TickLower,
			TickUpper: key.TickUpper,
			Info:      info,
		})
	}
	s.mu.RUnlock()

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&poolCopy).Error; err != nil {
			return err
		}
		for i := range tickRows {
			if err := tx.Save(&tickRows[i]).Error; err != nil {
				return err
			}
		}
		for i := range bitmapRows {
			if err := tx.Save(&bitmapRows[i]).Error; err != nil {
				return err
			}
		}
		for i := range positionRows {
			if err := tx.Save(&positionRows[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func parseWord(dec string) (*uint256.Int, error) {
	w := new(uint256.Int)
	if err := w.UnmarshalText([]byte(dec)); err != nil {
		return nil, err
	}
	return w, nil
}

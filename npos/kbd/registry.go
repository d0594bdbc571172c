package kbd

import "fmt"

// KeyRecord is the per-key state held by the Registry.
//
// The rank, pending flag and level are owned by the pipeline and are
// read-only outside this package.
type KeyRecord struct {
	order   uint8
	pending bool
	level   LevelState

	Toggle     uint8
	ToggleMode ToggleMode
	Char       KeyChar
}

// Order returns the key's rank in the recency ordering (0 = most recent).
func (r KeyRecord) Order() int { return int(r.order) }

// Pending reports whether a transition is waiting for dispatch.
func (r KeyRecord) Pending() bool { return r.pending }

// Level returns the key's level state.
func (r KeyRecord) Level() LevelState { return r.level }

// Registry is the fixed key table plus the recency ordering.
//
// ordered maps rank to key and is always the inverse of keys[k].order.
type Registry struct {
	keys     [MaxKeys]KeyRecord
	ordered  [MaxKeys]Key
	defaults [MaxKeys]KeyChar
}

// NewRegistry returns a registry using DefaultKeyMap.
func NewRegistry() *Registry {
	return NewRegistryWithMap(DefaultKeyMap)
}

// NewRegistryWithMap returns a registry whose compiled-in map is defaults.
// All keys start Low and ranked in key order, the placeholder last.
func NewRegistryWithMap(defaults [MaxKeys]KeyChar) *Registry {
	r := &Registry{defaults: defaults}
	rank := 0
	for k := Key(0); k < MaxKeys; k++ {
		r.keys[k].Char = defaults[k]
		if k == KeyHidden {
			continue
		}
		r.place(rank, k)
		rank++
	}
	r.place(MaxKeys-1, KeyHidden)
	return r
}

func (r *Registry) place(rank int, k Key) {
	r.ordered[rank] = k
	r.keys[k].order = uint8(rank)
}

// Record returns a copy of the key's record.
func (r *Registry) Record(key Key) (KeyRecord, bool) {
	if !key.Valid() {
		return KeyRecord{}, false
	}
	return r.keys[key], true
}

// Edit gives fn scoped access to the key's record. Only the toggle fields
// and the char mapping are written back.
func (r *Registry) Edit(key Key, fn func(rec *KeyRecord)) bool {
	if !key.Valid() || fn == nil {
		return false
	}
	rec := r.keys[key]
	fn(&rec)
	dst := &r.keys[key]
	dst.Toggle = rec.Toggle
	dst.ToggleMode = rec.ToggleMode
	dst.Char = rec.Char
	return true
}

// Level returns the key's level state.
func (r *Registry) Level(key Key) (LevelState, bool) {
	if !key.Valid() {
		return Low, false
	}
	return r.keys[key].level, true
}

// CheckLevel reports whether the key is currently in state.
func (r *Registry) CheckLevel(key Key, state LevelState) bool {
	return key.Valid() && r.keys[key].level == state
}

// IsKeyDown reports whether the key is Rising or High.
func (r *Registry) IsKeyDown(key Key) bool {
	return key.Physical() && r.keys[key].level.IsDown()
}

// IsKeyUp reports whether the key is Falling or Low.
func (r *Registry) IsKeyUp(key Key) bool {
	return key.Valid() && !r.keys[key].level.IsDown()
}

// Toggle returns the key's latch value.
func (r *Registry) Toggle(key Key) (uint8, bool) {
	if !key.Valid() {
		return 0, false
	}
	return r.keys[key].Toggle, true
}

// Char returns the key's current char mapping.
func (r *Registry) Char(key Key) (KeyChar, bool) {
	if !key.Valid() {
		return KeyChar{}, false
	}
	return r.keys[key].Char, true
}

// SetChar replaces the key's char mapping.
func (r *Registry) SetChar(key Key, c KeyChar) bool {
	if !key.Valid() {
		return false
	}
	r.keys[key].Char = c
	return true
}

// DefaultChar returns the compiled-in mapping for key.
func (r *Registry) DefaultChar(key Key) (KeyChar, bool) {
	if !key.Valid() {
		return KeyChar{}, false
	}
	return r.defaults[key], true
}

// ResetChars restores every key's compiled-in mapping. Toggle modes and
// latches are left alone.
func (r *Registry) ResetChars() {
	for k := range r.keys {
		r.keys[k].Char = r.defaults[k]
	}
}

// RecentKey returns the most recently ranked key in state, or KeyInvalid.
func (r *Registry) RecentKey(state LevelState) Key {
	for _, k := range r.ordered {
		if k == KeyHidden {
			continue
		}
		if r.keys[k].level == state {
			return k
		}
	}
	return KeyInvalid
}

// PressingKeys returns up to max down keys in recency order.
func (r *Registry) PressingKeys(max int) []Key {
	if max <= 0 {
		return nil
	}
	out := make([]Key, 0, min(max, MaxKeys))
	for _, k := range r.ordered {
		if len(out) == max {
			break
		}
		if k == KeyHidden || !r.keys[k].level.IsDown() {
			continue
		}
		out = append(out, k)
	}
	return out
}

// Ordered returns a snapshot of the recency ordering, rank 0 first.
func (r *Registry) Ordered() [MaxKeys]Key { return r.ordered }

// checkOrder verifies the ordering is a permutation inverse to the ranks.
func (r *Registry) checkOrder() error {
	var seen [MaxKeys]bool
	for rank, k := range r.ordered {
		if !k.Valid() {
			return fmt.Errorf("kbd: rank %d holds invalid key %d", rank, k)
		}
		if seen[k] {
			return fmt.Errorf("kbd: key %s ranked twice", k)
		}
		seen[k] = true
		if int(r.keys[k].order) != rank {
			return fmt.Errorf("kbd: key %s at rank %d records order %d", k, rank, r.keys[k].order)
		}
	}
	if r.ordered[MaxKeys-1] != KeyHidden {
		return fmt.Errorf("kbd: last rank holds %s", r.ordered[MaxKeys-1])
	}
	return nil
}

package kbd

//go:generate mockgen -destination=mocks/mock_capability.go -package=mocks simplenp/npos/kbd Scanner,Handler,Listener

// Scanner supplies raw asserted bits for one cycle.
//
// Implementations must be comparable (pointer receivers) so they can be
// popped by identity.
type Scanner interface {
	// ScanOnce samples the source; false means it has nothing to offer.
	ScanOnce() bool
	// IsEmpty reports that nothing changed since the previous sample.
	IsEmpty() bool
	// TakeState returns the asserted bit for key; ok is false if the
	// scanner does not claim key.
	TakeState(key Key) (next bool, ok bool)
}

// Handler gets exclusive, first-match-wins access to a transition.
type Handler interface {
	OnKeyUpdated(kb *Keyboard, key Key, state LevelState) bool
}

// Listener observes every transition and the end of each cycle that had any.
type Listener interface {
	OnKeyNotify(kb *Keyboard, key Key, state LevelState)
	OnPostKeyNotify(kb *Keyboard)
}

// Lifecycle is implemented by handlers and listeners that react to
// Enable and Disable.
type Lifecycle interface {
	OnEnabled(kb *Keyboard)
	OnDisabled(kb *Keyboard)
}

// Subscriber is implemented by listeners that react to Listen and Unlisten.
type Subscriber interface {
	OnListen(kb *Keyboard)
	OnUnlisten(kb *Keyboard)
}

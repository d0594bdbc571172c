package kbd

// Keyboard runs the scan, update and dispatch pipeline over a Registry.
//
// It is not safe for concurrent use; the main loop owns it.
type Keyboard struct {
	*Registry

	scanners  []Scanner
	handlers  []Handler
	listeners []Listener

	enabled bool

	// active is reused between cycles; last is the set used by the previous
	// update pass.
	active []Scanner
	last   []Scanner
	dirty  bool
}

// New returns a disabled keyboard over reg. A nil reg gets a default registry.
func New(reg *Registry) *Keyboard {
	if reg == nil {
		reg = NewRegistry()
	}
	return &Keyboard{Registry: reg, dirty: true}
}

// PushScanner installs s above the existing scanners.
func (kb *Keyboard) PushScanner(s Scanner) bool {
	if s == nil {
		return false
	}
	kb.scanners = append(kb.scanners, s)
	kb.dirty = true
	return true
}

// PopScanner removes the most recent installation of s, or the last scanner
// when s is nil.
func (kb *Keyboard) PopScanner(s Scanner) bool {
	i := len(kb.scanners) - 1
	if s != nil {
		for ; i >= 0 && kb.scanners[i] != s; i-- {
		}
	}
	if i < 0 {
		return false
	}
	kb.scanners = append(kb.scanners[:i], kb.scanners[i+1:]...)
	kb.dirty = true
	return true
}

// PushHandler installs h; later handlers are tried first.
func (kb *Keyboard) PushHandler(h Handler) bool {
	if h == nil {
		return false
	}
	kb.handlers = append(kb.handlers, h)
	return true
}

// PopHandler removes the most recent installation of h, or the last handler
// when h is nil.
func (kb *Keyboard) PopHandler(h Handler) bool {
	i := len(kb.handlers) - 1
	if h != nil {
		for ; i >= 0 && kb.handlers[i] != h; i-- {
		}
	}
	if i < 0 {
		return false
	}
	kb.handlers = append(kb.handlers[:i], kb.handlers[i+1:]...)
	return true
}

// Listen adds l once. It fires OnListen when l is a Subscriber.
func (kb *Keyboard) Listen(l Listener) bool {
	if l == nil {
		return false
	}
	for _, x := range kb.listeners {
		if x == l {
			return false
		}
	}
	kb.listeners = append(kb.listeners, l)
	if s, ok := l.(Subscriber); ok {
		s.OnListen(kb)
	}
	return true
}

// Unlisten removes l. It fires OnUnlisten when l is a Subscriber.
func (kb *Keyboard) Unlisten(l Listener) bool {
	if l == nil {
		return false
	}
	for i, x := range kb.listeners {
		if x != l {
			continue
		}
		kb.listeners = append(kb.listeners[:i], kb.listeners[i+1:]...)
		if s, ok := l.(Subscriber); ok {
			s.OnUnlisten(kb)
		}
		return true
	}
	return false
}

// Scanners returns the number of installed scanners.
func (kb *Keyboard) Scanners() int { return len(kb.scanners) }

// Handlers returns the number of installed handlers.
func (kb *Keyboard) Handlers() int { return len(kb.handlers) }

// Listeners returns the number of installed listeners.
func (kb *Keyboard) Listeners() int { return len(kb.listeners) }

// IsEnabled reports whether ScanOnce does anything.
func (kb *Keyboard) IsEnabled() bool { return kb.enabled }

// Enable opens the gate. It returns false if already enabled.
func (kb *Keyboard) Enable() bool {
	if kb.enabled {
		return false
	}
	kb.enabled = true
	kb.dirty = true
	kb.broadcast(func(l Lifecycle) { l.OnEnabled(kb) })
	return true
}

// Disable closes the gate. It returns false if already disabled.
func (kb *Keyboard) Disable() bool {
	if !kb.enabled {
		return false
	}
	kb.enabled = false
	kb.broadcast(func(l Lifecycle) { l.OnDisabled(kb) })
	return true
}

// broadcast calls fn once for every distinct handler or listener that
// implements Lifecycle.
func (kb *Keyboard) broadcast(fn func(Lifecycle)) {
	seen := make([]any, 0, len(kb.handlers)+len(kb.listeners))
	visit := func(x any) {
		l, ok := x.(Lifecycle)
		if !ok {
			return
		}
		for _, s := range seen {
			if s == x {
				return
			}
		}
		seen = append(seen, x)
		fn(l)
	}
	for _, h := range append([]Handler(nil), kb.handlers...) {
		visit(h)
	}
	for _, l := range append([]Listener(nil), kb.listeners...) {
		visit(l)
	}
}

// ScanOnce runs one cycle: sample the scanners, update levels and ranks,
// then dispatch. It does nothing while disabled.
func (kb *Keyboard) ScanOnce() {
	if !kb.enabled {
		return
	}

	kb.active = kb.active[:0]
	quiet := true
	for _, s := range kb.scanners {
		if !s.ScanOnce() {
			continue
		}
		kb.active = append(kb.active, s)
		if !s.IsEmpty() {
			quiet = false
		}
	}

	if !quiet || kb.dirty || kb.transitional() || !sameScanners(kb.active, kb.last) {
		kb.last = append(kb.last[:0], kb.active...)
		kb.dirty = kb.update(kb.active)
	}
	kb.Trigger()
}

func (kb *Keyboard) transitional() bool {
	for k := range kb.keys {
		if !kb.keys[k].level.Steady() {
			return true
		}
	}
	return false
}

func sameScanners(a, b []Scanner) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// resolve asks the active scanners, newest first, for key.
func resolve(active []Scanner, key Key) (next, ok bool) {
	for i := len(active) - 1; i >= 0; i-- {
		if next, ok = active[i].TakeState(key); ok {
			return next, true
		}
	}
	return false, false
}

// update advances every claimed key one step and re-ranks the keys that
// changed ahead of the ones that did not. It reports whether a key was left
// disagreeing with its switch, which needs another pass even when the
// scanners have nothing new.
func (kb *Keyboard) update(active []Scanner) (unsettled bool) {
	var (
		changed  [MaxKeys]bool
		ranked   [MaxKeys]Key
		nranked  int
		anyClaim = len(active) > 0
	)

	for k := Key(0); k < MaxKeys && anyClaim; k++ {
		if k == KeyHidden {
			continue
		}
		next, ok := resolve(active, k)
		if !ok {
			continue
		}
		rec := &kb.keys[k]
		prev := rec.level.IsDown()
		switch {
		case rec.level == Rising:
			rec.level = High
		case rec.level == Falling:
			rec.level = Low
		case prev != next && next:
			rec.level = Rising
		case prev != next:
			rec.level = Falling
		default:
			continue
		}
		if rec.level.IsDown() != next {
			unsettled = true
		}
		rec.pending = true
		changed[k] = true
		ranked[nranked] = k
		nranked++
	}
	if nranked == 0 {
		return unsettled
	}

	prevOrder := kb.ordered
	rank := 0
	for _, k := range ranked[:nranked] {
		kb.place(rank, k)
		rank++
	}
	for _, k := range prevOrder {
		if k == KeyHidden || changed[k] {
			continue
		}
		kb.place(rank, k)
		rank++
	}
	kb.place(MaxKeys-1, KeyHidden)
	return unsettled
}

// ForceKeyState sets key to state outside the scan cycle and moves it to
// rank 0. Dispatch happens on the next Trigger.
func (kb *Keyboard) ForceKeyState(key Key, state LevelState) bool {
	if !key.Physical() || state > Falling {
		return false
	}
	rec := &kb.keys[key]
	if rec.level == state {
		return false
	}
	rec.level = state
	rec.pending = true

	from := int(rec.order)
	copy(kb.ordered[1:from+1], kb.ordered[:from])
	kb.ordered[0] = key
	for rank := 0; rank <= from; rank++ {
		kb.keys[kb.ordered[rank]].order = uint8(rank)
	}
	kb.dirty = true
	return true
}

// Trigger dispatches every pending key in rank order, then sends one
// OnPostKeyNotify if any key was dispatched. It does nothing without
// handlers.
func (kb *Keyboard) Trigger() {
	if len(kb.handlers) == 0 {
		return
	}

	snapshot := kb.ordered
	triggered := false
	for _, k := range snapshot {
		rec := &kb.keys[k]
		if !rec.pending {
			continue
		}
		rec.pending = false
		triggered = true
		kb.handle(k)
	}
	if !triggered {
		return
	}

	listeners := append([]Listener(nil), kb.listeners...)
	for i := len(listeners) - 1; i >= 0; i-- {
		listeners[i].OnPostKeyNotify(kb)
	}
}

// handle reads the level afresh for each chain so listeners see a state a
// handler forced on the same key.
func (kb *Keyboard) handle(key Key) {
	handlers := append([]Handler(nil), kb.handlers...)
	listeners := append([]Listener(nil), kb.listeners...)

	state := kb.keys[key].level
	for i := len(handlers) - 1; i >= 0; i-- {
		if handlers[i].OnKeyUpdated(kb, key, state) {
			break
		}
	}
	state = kb.keys[key].level
	for i := len(listeners) - 1; i >= 0; i-- {
		listeners[i].OnKeyNotify(kb, key, state)
	}
}

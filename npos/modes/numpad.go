package modes

import (
	"simplenp/npos/kbd"
	"simplenp/npos/services/console"
)

// HostLink is the HID side of the numpad: attaching it to the keyboard
// starts host reports.
type HostLink interface {
	kbd.Listener
	StepOnce(kb *kbd.Keyboard)
}

// Typist maps the last released key to a character.
type Typist interface {
	Typed(kb *kbd.Keyboard) byte
}

// Numpad is the normal operating mode: keys go to the host and typed
// characters are echoed on the console.
type Numpad struct {
	kb    *kbd.Keyboard
	host  HostLink
	con   *console.Console
	typer Typist
	echo  echo
}

func NewNumpad(kb *kbd.Keyboard, host HostLink, con *console.Console, typer Typist) *Numpad {
	n := &Numpad{kb: kb, host: host, con: con, typer: typer}
	n.echo.n = n
	return n
}

func (n *Numpad) Name() string { return "numpad" }

func (n *Numpad) Enter() bool {
	if n.host != nil {
		n.kb.Listen(n.host)
	}
	if n.con != nil {
		n.con.SetMode(console.TTY)
		n.con.Clear()
		if n.typer != nil {
			n.kb.Listen(&n.echo)
		}
	}
	n.kb.Enable()
	return true
}

func (n *Numpad) Leave() {
	if n.host != nil {
		n.kb.Unlisten(n.host)
	}
	n.kb.Unlisten(&n.echo)
	n.kb.Disable()
}

func (n *Numpad) StepOnce() {
	if n.host != nil {
		n.host.StepOnce(n.kb)
	}
}

// echo prints the character of each released key.
type echo struct{ n *Numpad }

func (e *echo) OnKeyNotify(*kbd.Keyboard, kbd.Key, kbd.LevelState) {}

func (e *echo) OnPostKeyNotify(kb *kbd.Keyboard) {
	if ch := e.n.typer.Typed(kb); ch != 0 {
		e.n.con.Write([]byte{ch})
	}
}

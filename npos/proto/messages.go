package proto

// UFNCount is the number of user function keys.
const UFNCount = 5

// InvalidCode marks an unknown key code; InvalidToggle an unknown toggle mode.
const (
	InvalidCode   = 0xFF
	InvalidToggle = 0xFF
)

// UFNReply is the five-byte body of GET/SET UFN replies.
type UFNReply struct {
	Err    ErrCode
	UFN    uint8
	Code   uint8
	Mod    uint8
	Toggle uint8
}

// UFNFailure returns the reply for a failed request on ufn.
func UFNFailure(err ErrCode, ufn uint8) UFNReply {
	return UFNReply{Err: err, UFN: ufn, Code: InvalidCode, Toggle: InvalidToggle}
}

// Bytes encodes the reply body.
func (r UFNReply) Bytes() []byte {
	return []byte{byte(r.Err), r.UFN, r.Code, r.Mod, r.Toggle}
}

// ParseUFNReply decodes a reply body.
func ParseUFNReply(data []byte) (UFNReply, error) {
	if len(data) < 5 {
		return UFNReply{}, ErrShortData
	}
	return UFNReply{
		Err:    ErrCode(data[0]),
		UFN:    data[1],
		Code:   data[2],
		Mod:    data[3],
		Toggle: data[4],
	}, nil
}

// SetUFN is the body of a SET_UFN request.
type SetUFN struct {
	UFN    uint8
	Code   uint8
	Mod    uint8
	Toggle uint8
}

// Frame returns the SET_UFN request.
func (s SetUFN) Frame() Frame {
	return Frame{Cmd: CmdSetUFN, Data: []byte{s.UFN, s.Code, s.Mod, s.Toggle}}
}

// ParseSetUFN decodes a SET_UFN body.
func ParseSetUFN(data []byte) (SetUFN, error) {
	if len(data) < 4 {
		return SetUFN{}, ErrShortData
	}
	return SetUFN{UFN: data[0], Code: data[1], Mod: data[2], Toggle: data[3]}, nil
}

// GetUFN returns the GET_UFN request for ufn.
func GetUFN(ufn uint8) Frame {
	return Frame{Cmd: CmdGetUFN, Data: []byte{ufn}}
}

// KeyEvent is the body of a NOTIFY_KEY frame.
type KeyEvent struct {
	Key   uint8
	State uint8
}

// NotifyKey returns the notification frame for a key transition.
func NotifyKey(key, state uint8) Frame {
	return Frame{Cmd: CmdNotifyKey, Data: []byte{key, state}}
}

// ParseKeyEvent decodes a NOTIFY_KEY frame.
func ParseKeyEvent(f Frame) (KeyEvent, error) {
	if f.Cmd != CmdNotifyKey {
		return KeyEvent{}, ErrUnexpected
	}
	if len(f.Data) < 2 {
		return KeyEvent{}, ErrShortData
	}
	return KeyEvent{Key: f.Data[0], State: f.Data[1]}, nil
}

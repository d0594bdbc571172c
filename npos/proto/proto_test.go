package proto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeAll(d *Decoder, in []byte) []Frame {
	var out []Frame
	for _, b := range in {
		if f, ok := d.Push(b); ok {
			out = append(out, Frame{Cmd: f.Cmd, Data: append([]byte(nil), f.Data...)})
		}
	}
	return out
}

func TestEncodeLayout(t *testing.T) {
	b, err := NotifyKey(6, 1).Encode()
	require.NoError(t, err)
	// 02 + fe + 02 + 06 + 01 + 03 = 0x10c
	assert.Equal(t, []byte{0x02, 0xFE, 0x02, 0x06, 0x01, 0x03, 0x0C}, b)

	b, err = Frame{Cmd: CmdNop}.Encode()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x02, 0x00, 0x00, 0x03, 0x05}, b)

	_, err = Frame{Cmd: CmdNop, Data: make([]byte, 17)}.Encode()
	assert.ErrorIs(t, err, ErrDataTooLong)
}

func TestDecoderSkipsNoiseAndSplitsFrames(t *testing.T) {
	a, _ := GetUFN(3).Encode()
	b, _ := SetUFN{UFN: 1, Code: 0x3A, Mod: 0x02, Toggle: 1}.Frame().Encode()
	stream := append([]byte{0xFF, 0x00, 0x41}, a...)
	stream = append(stream, b...)

	var d Decoder
	got := decodeAll(&d, stream)
	require.Len(t, got, 2)
	assert.Equal(t, CmdGetUFN, got[0].Cmd)
	assert.Equal(t, []byte{3}, got[0].Data)
	req, err := ParseSetUFN(got[1].Data)
	require.NoError(t, err)
	assert.Equal(t, SetUFN{UFN: 1, Code: 0x3A, Mod: 0x02, Toggle: 1}, req)
	assert.Zero(t, d.Dropped)
}

func TestDecoderDropsBadChecksum(t *testing.T) {
	good, _ := GetUFN(0).Encode()
	bad := append([]byte(nil), good...)
	bad[len(bad)-1] ^= 0xFF

	var d Decoder
	got := decodeAll(&d, append(bad, good...))
	require.Len(t, got, 1)
	assert.Equal(t, 1, d.Dropped)
}

func TestDecoderRejectsLongLength(t *testing.T) {
	good, _ := Frame{Cmd: CmdNop, Data: []byte{1, 2}}.Encode()
	stream := append([]byte{STX, 0x00, 17}, good...)

	var d Decoder
	got := decodeAll(&d, stream)
	require.Len(t, got, 1)
	assert.Equal(t, []byte{1, 2}, got[0].Data)
	assert.Equal(t, 1, d.Dropped)
}

func TestDecoderAcceptsFullData(t *testing.T) {
	data := make([]byte, MaxData)
	for i := range data {
		data[i] = byte(i)
	}
	enc, err := Frame{Cmd: CmdNop, Data: data}.Encode()
	require.NoError(t, err)
	assert.Len(t, enc, MaxFrame)

	var d Decoder
	got := decodeAll(&d, enc)
	require.Len(t, got, 1)
	assert.Equal(t, data, got[0].Data)
}

func TestCmdNames(t *testing.T) {
	assert.Equal(t, "get_ufn", CmdGetUFN.String())
	assert.Equal(t, "get_ufn_reply", CmdGetUFN.Reply().String())
	assert.Equal(t, "notify_key", CmdNotifyKey.String())
	assert.False(t, CmdNotifyKey.IsReply())
	assert.True(t, CmdFlashMode.Reply().IsReply())
	assert.Equal(t, CmdFlashMode, CmdFlashMode.Reply().Request())
}

func TestUFNReply(t *testing.T) {
	r := UFNFailure(ErrInvalidUFN, 9)
	assert.Equal(t, []byte{2, 9, 0xFF, 0, 0xFF}, r.Bytes())

	got, err := ParseUFNReply(r.Bytes())
	require.NoError(t, err)
	assert.Equal(t, r, got)

	_, err = ParseUFNReply([]byte{0, 1})
	assert.ErrorIs(t, err, ErrShortData)
	assert.EqualError(t, ErrInvalidKey, "device: invalid_key")
}

func TestParseKeyEvent(t *testing.T) {
	ev, err := ParseKeyEvent(NotifyKey(14, 3))
	require.NoError(t, err)
	assert.Equal(t, KeyEvent{Key: 14, State: 3}, ev)

	_, err = ParseKeyEvent(GetUFN(0))
	assert.ErrorIs(t, err, ErrUnexpected)
}

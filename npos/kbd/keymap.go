package kbd

// DefaultKeyMap is the compiled-in character map restored on boot and by
// ResetChars. The Alt layer spells the navigation labels printed on the caps.
var DefaultKeyMap = [MaxKeys]KeyChar{
	KeySlash:    {Default: '/', Alt: '/', Code: KeyCodeKPDivide},
	KeyAsterisk: {Default: '*', Alt: '*', Code: KeyCodeKPMultiply},
	KeyMinus:    {Default: '-', Alt: '-', Code: KeyCodeKPSubtract},
	KeyNumLock:  {Code: KeyCodeNumLock},

	KeyNum7: {Default: '7', Alt: 'H', Code: KeyCodeKP7},
	KeyNum8: {Default: '8', Alt: 'U', Code: KeyCodeKP8},
	KeyNum9: {Default: '9', Alt: 'P', Code: KeyCodeKP9},
	KeyPlus: {Default: '+', Alt: '+', Code: KeyCodeKPAdd},

	KeyNum4:  {Default: '4', Alt: 'L', Code: KeyCodeKP4},
	KeyNum5:  {Default: '5', Alt: ' ', Code: KeyCodeKP5},
	KeyNum6:  {Default: '6', Alt: 'R', Code: KeyCodeKP6},
	KeyEnter: {Default: '\n', Alt: '\n', Code: KeyCodeKPEnter},

	KeyNum1: {Default: '1', Alt: 'E', Code: KeyCodeKP1},
	KeyNum2: {Default: '2', Alt: 'D', Code: KeyCodeKP2},
	KeyNum3: {Default: '3', Alt: 'S', Code: KeyCodeKP3},

	KeyNum0: {Default: '0', Alt: 'I', Code: KeyCodeKP0},
	KeyDot:  {Default: '.', Alt: 'B', Code: KeyCodeKPDecimal},
}

// UserFnKeys lists the user-programmable function keys in UFN index order.
var UserFnKeys = [...]Key{KeyUFN1, KeyUFN2, KeyUFN3, KeyUFN4, KeyUFN5}

// UserFnKey returns the key for UFN index i.
func UserFnKey(i int) (Key, bool) {
	if i < 0 || i >= len(UserFnKeys) {
		return KeyInvalid, false
	}
	return UserFnKeys[i], true
}

// UserFnIndex returns the UFN index of key, or -1.
func UserFnIndex(key Key) int {
	for i, k := range UserFnKeys {
		if k == key {
			return i
		}
	}
	return -1
}

// NumericKeys are the keys whose character follows the numlock layer.
var NumericKeys = [...]Key{
	KeyNum0, KeyNum1, KeyNum2, KeyNum3, KeyNum4,
	KeyNum5, KeyNum6, KeyNum7, KeyNum8, KeyNum9,
}

//go:build linux

package evdev

// TestBit reports whether the bit numbered pos is set in a kernel
// capability bitmask such as the one EVIOCGBIT fills in.
func TestBit(b []byte, pos uint) bool {
	return b[pos/8]&(1<<(pos%8)) != 0
}

// maxCodes reports the highest valid code for the given EV_* raw type,
// so callers know how large a capability bitmask to allocate.
func maxCodes(raw uint16) (uint, bool) {
	switch raw {
	case EV_SYN:
		return SYN_MAX, true
	case EV_KEY:
		return KEY_MAX, true
	case EV_REL:
		return REL_MAX, true
	case EV_ABS:
		return ABS_MAX, true
	case EV_MSC:
		return MSC_MAX, true
	case EV_SW:
		return SW_MAX, true
	case EV_LED:
		return LED_MAX, true
	case EV_SND:
		return SND_MAX, true
	case EV_REP:
		return REP_MAX, true
	default:
		return 0, false
	}
}

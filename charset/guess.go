package charset

// guesser tracks, byte by byte, whether a payload is still plausible as
// UTF-8, Shift_JIS or ISO-8859-1, and gathers the statistics used to break
// ties between them.
type guesser struct {
	utf8, sjis, latin1 bool

	utf8Pending int
	utf8Multi   int

	sjisPending      int
	sjisKatakana     int
	sjisKanaRun      int
	sjisDoubleRun    int
	sjisMaxKanaRun   int
	sjisMaxDoubleRun int

	latin1HighOther int
}

func (g *guesser) feed(b byte) {
	v := int(b)
	if g.utf8 {
		switch {
		case g.utf8Pending > 0:
			if v&0xC0 != 0x80 {
				g.utf8 = false
			} else {
				g.utf8Pending--
			}
		case v&0x80 == 0:
		case v&0xE0 == 0xC0:
			g.utf8Pending, g.utf8Multi = 1, g.utf8Multi+1
		case v&0xF0 == 0xE0:
			g.utf8Pending, g.utf8Multi = 2, g.utf8Multi+1
		case v&0xF8 == 0xF0:
			g.utf8Pending, g.utf8Multi = 3, g.utf8Multi+1
		default:
			g.utf8 = false
		}
	}

	if g.latin1 {
		switch {
		case v > 0x7F && v < 0xA0:
			g.latin1 = false
		case v > 0x9F && (v < 0xC0 || v == 0xD7 || v == 0xF7):
			g.latin1HighOther++
		}
	}

	if g.sjis {
		switch {
		case g.sjisPending > 0:
			if v < 0x40 || v == 0x7F || v > 0xFC {
				g.sjis = false
			} else {
				g.sjisPending--
			}
		case v == 0x80 || v == 0xA0 || v > 0xEF:
			g.sjis = false
		case v > 0xA0 && v < 0xE0:
			g.sjisKatakana++
			g.sjisDoubleRun = 0
			g.sjisKanaRun++
			g.sjisMaxKanaRun = max(g.sjisMaxKanaRun, g.sjisKanaRun)
		case v > 0x7F:
			g.sjisPending++
			g.sjisKanaRun = 0
			g.sjisDoubleRun++
			g.sjisMaxDoubleRun = max(g.sjisMaxDoubleRun, g.sjisDoubleRun)
		default:
			g.sjisKanaRun, g.sjisDoubleRun = 0, 0
		}
	}
}

// GuessEncoding picks the character set for a byte segment that carries no
// ECI. A non-nil hint always wins. Otherwise the choice is between UTF-8,
// Shift_JIS and ISO-8859-1, following the heuristics QR readers have
// converged on.
func GuessEncoding(data []byte, hint *ECI) *ECI {
	if hint != nil {
		return hint
	}
	if len(data) > 2 && data[0] == 0xFE && data[1] == 0xFF {
		return UTF16BE
	}
	g := guesser{utf8: true, sjis: true, latin1: true}
	for _, b := range data {
		if !g.utf8 && !g.sjis && !g.latin1 {
			break
		}
		g.feed(b)
	}
	if g.utf8Pending > 0 {
		g.utf8 = false
	}
	if g.sjisPending > 0 {
		g.sjis = false
	}
	bom := len(data) > 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF

	switch {
	case g.utf8 && (bom || g.utf8Multi > 0):
		return UTF8
	case g.sjis && (g.sjisMaxKanaRun >= 3 || g.sjisMaxDoubleRun >= 3):
		return ShiftJIS
	case g.latin1 && g.sjis:
		if (g.sjisMaxKanaRun == 2 && g.sjisKatakana == 2) || g.latin1HighOther*10 >= len(data) {
			return ShiftJIS
		}
		return ISO8859_1
	case g.latin1:
		return ISO8859_1
	case g.sjis:
		return ShiftJIS
	}
	return UTF8
}

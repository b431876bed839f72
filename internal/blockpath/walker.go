package blockpath

// walker is a cursor over the bytes of a path expression.
type walker struct {
	data string
	pos  int
}

func (w *walker) next() (byte, bool) {
	if w.pos >= len(w.data) {
		return 0, false
	}
	c := w.data[w.pos]
	w.pos++
	return c, true
}

func (w *walker) peek() (byte, bool) {
	if w.pos >= len(w.data) {
		return 0, false
	}
	return w.data[w.pos], true
}

func (w *walker) index() int {
	return w.pos
}

func (w *walker) rest() string {
	return w.data[w.pos:]
}

func (w *walker) skip(n int) {
	w.pos += n
	if w.pos > len(w.data) {
		w.pos = len(w.data)
	}
}

// consume advances up to, but not past, the first occurrence of until and
// returns what it walked over. If until never appears the rest of the input
// is consumed.
func (w *walker) consume(until byte) string {
	start := w.pos
	for w.pos < len(w.data) && w.data[w.pos] != until {
		w.pos++
	}
	return w.data[start:w.pos]
}

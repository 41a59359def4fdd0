package logsim

// A Signal is the logical value carried by a wire. Outputs that have never
// been driven carry Undefined, which is a real value as far as propagation
// is concerned, not an error.
type Signal uint8

// Signal values.
const (
	Low Signal = iota
	High
	Undefined
)

func (s Signal) String() string {
	switch s {
	case Low:
		return "0"
	case High:
		return "1"
	default:
		return "x"
	}
}

// Invert returns the logical complement of s. Undefined inverts to
// Undefined.
func (s Signal) Invert() Signal {
	switch s {
	case Low:
		return High
	case High:
		return Low
	default:
		return Undefined
	}
}

// Defined reports whether s is Low or High.
func (s Signal) Defined() bool { return s == Low || s == High }

package logsim

import (
	"github.com/pkg/errors"
)

// A Kind identifies one of the closed set of device types. Evaluation is
// an exhaustive switch over Kind, so adding a kind without handling it
// everywhere will not compile quietly past a vet of the switches below.
type Kind uint8

// Device kinds.
const (
	KindAnd Kind = iota
	KindOr
	KindNand
	KindNor
	KindXor
	KindDType
	KindSwitch
	KindClock
	KindSigGen
)

var kindNames = [...]string{
	KindAnd:    "AND",
	KindOr:     "OR",
	KindNand:   "NAND",
	KindNor:    "NOR",
	KindXor:    "XOR",
	KindDType:  "DTYPE",
	KindSwitch: "SWITCH",
	KindClock:  "CLOCK",
	KindSigGen: "SIGGEN",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "BAD_DEVICE"
}

// KindByName returns the Kind named s and whether s names one.
func KindByName(s string) (Kind, bool) {
	for k, n := range kindNames {
		if n == s {
			return Kind(k), true
		}
	}
	return 0, false
}

// Gate input counts are limited to this range.
const (
	MinGateInputs = 1
	MaxGateInputs = 16
)

// Qualifier classification errors. A nil error from checkQualifier or
// NewDevice means the (kind, qualifier) pair is legal.
var (
	ErrNoQualifier      = errors.New("device requires a qualifier")
	ErrQualifierPresent = errors.New("device takes no qualifier")
	ErrInvalidQualifier = errors.New("qualifier out of range for device")
	ErrBadDevice        = errors.New("unknown device kind")
	ErrDevicePresent    = errors.New("device name already defined")
)

// A Segment is one step of a SIGGEN waveform: hold Level for Duration
// cycles.
type Segment struct {
	Level    Signal
	Duration int
}

// A Qualifier carries the kind-specific parameter of a device
// declaration. Value holds the gate input count, clock half-period or
// switch initial state; Waveform holds SIGGEN segments. Present
// distinguishes "no qualifier given" from a zero value.
type Qualifier struct {
	Present  bool
	Value    int
	Waveform []Segment
}

// IntQualifier returns a plain numeric qualifier.
func IntQualifier(v int) Qualifier { return Qualifier{Present: true, Value: v} }

// NoQualifier is the absent qualifier, for DTYPE and XOR.
var NoQualifier = Qualifier{}

// WaveformQualifier returns a SIGGEN qualifier.
func WaveformQualifier(segs []Segment) Qualifier {
	return Qualifier{Present: true, Waveform: segs}
}

// checkQualifier classifies the legality of q for kind. The
// classification is total: every pair maps to exactly one of nil,
// ErrNoQualifier, ErrQualifierPresent, ErrInvalidQualifier or
// ErrBadDevice.
func checkQualifier(kind Kind, q Qualifier) error {
	switch kind {
	case KindAnd, KindOr, KindNand, KindNor:
		if !q.Present {
			return ErrNoQualifier
		}
		if q.Waveform != nil || q.Value < MinGateInputs || q.Value > MaxGateInputs {
			return ErrInvalidQualifier
		}
	case KindXor, KindDType:
		if q.Present {
			return ErrQualifierPresent
		}
	case KindSwitch:
		if !q.Present {
			return ErrNoQualifier
		}
		if q.Waveform != nil || q.Value < 0 || q.Value > 1 {
			return ErrInvalidQualifier
		}
	case KindClock:
		if !q.Present {
			return ErrNoQualifier
		}
		if q.Waveform != nil || q.Value < 1 {
			return ErrInvalidQualifier
		}
	case KindSigGen:
		if !q.Present {
			return ErrNoQualifier
		}
		if len(q.Waveform) == 0 {
			return ErrInvalidQualifier
		}
		for _, seg := range q.Waveform {
			if seg.Duration < 1 || !seg.Level.Defined() {
				return ErrInvalidQualifier
			}
		}
	default:
		return ErrBadDevice
	}
	return nil
}

// A Point names one output port of one device: the port a connection
// starts from and the thing a monitor watches. Port is NoID for the
// implicit output of single-output devices, or the interned Q/QBAR name
// for a DTYPE.
type Point struct {
	Device ID
	Port   ID
}

// A Device is one declared circuit element. Identity is the interned
// declaration name. Inputs maps an input port to the Point driving it;
// a missing key means the input is floating. Outputs holds the current
// value of each output port.
type Device struct {
	ID   ID
	Kind Kind

	Inputs  map[ID]Point
	Outputs map[ID]Signal

	inPorts  []ID // fixed port set, declaration order
	outPorts []ID

	// kind-specific parameters and state
	numInputs  int
	halfPeriod int
	counter    int
	waveform   []Segment
	segIdx     int
	segLeft    int
	memory     Signal // DTYPE stored Q
	prevClk    Signal
}

// NewDevice validates the qualifier for kind and returns a device with
// its documented default port values: Undefined for combinational
// outputs, the declared state for a SWITCH, Low for CLOCK and DTYPE
// outputs, the first waveform level for a SIGGEN.
func NewDevice(tbl *Table, id ID, kind Kind, q Qualifier) (*Device, error) {
	if err := checkQualifier(kind, q); err != nil {
		return nil, err
	}
	d := &Device{
		ID:      id,
		Kind:    kind,
		Inputs:  make(map[ID]Point),
		Outputs: make(map[ID]Signal),
	}
	switch kind {
	case KindAnd, KindOr, KindNand, KindNor:
		d.numInputs = q.Value
		for i := 1; i <= q.Value; i++ {
			d.inPorts = append(d.inPorts, tbl.Lookup(inputPortName(i)))
		}
		d.setOutput(NoID, Undefined)
	case KindXor:
		d.numInputs = 2
		d.inPorts = []ID{tbl.Lookup("I1"), tbl.Lookup("I2")}
		d.setOutput(NoID, Undefined)
	case KindDType:
		d.inPorts = []ID{
			tbl.Lookup("DATA"), tbl.Lookup("CLK"),
			tbl.Lookup("SET"), tbl.Lookup("CLEAR"),
		}
		d.memory = Low
		d.prevClk = Low
		d.setOutput(tbl.Lookup("Q"), Low)
		d.setOutput(tbl.Lookup("QBAR"), High)
	case KindSwitch:
		state := Low
		if q.Value == 1 {
			state = High
		}
		d.setOutput(NoID, state)
	case KindClock:
		d.halfPeriod = q.Value
		d.setOutput(NoID, Low)
	case KindSigGen:
		d.waveform = append([]Segment(nil), q.Waveform...)
		d.segLeft = d.waveform[0].Duration
		d.setOutput(NoID, d.waveform[0].Level)
	}
	return d, nil
}

func inputPortName(i int) string {
	if i < 10 {
		return string([]byte{'I', byte('0' + i)})
	}
	return string([]byte{'I', byte('0' + i/10), byte('0' + i%10)})
}

func (d *Device) setOutput(port ID, s Signal) {
	if _, ok := d.Outputs[port]; !ok {
		d.outPorts = append(d.outPorts, port)
	}
	d.Outputs[port] = s
}

// InputPorts returns the device's input port IDs in declaration order.
// Every listed port must be driven for the network to be runnable.
func (d *Device) InputPorts() []ID { return d.inPorts }

// OutputPorts returns the device's output port IDs in declaration order.
func (d *Device) OutputPorts() []ID { return d.outPorts }

// HasInput reports whether port is an input port of d.
func (d *Device) HasInput(port ID) bool {
	for _, p := range d.inPorts {
		if p == port {
			return true
		}
	}
	return false
}

// HasOutput reports whether port is an output port of d.
func (d *Device) HasOutput(port ID) bool {
	_, ok := d.Outputs[port]
	return ok
}

// Combinational reports whether the device's outputs are a pure function
// of its current inputs.
func (d *Device) Combinational() bool {
	switch d.Kind {
	case KindAnd, KindOr, KindNand, KindNor, KindXor:
		return true
	}
	return false
}

// evalGate computes a combinational output from the given input values.
// An Undefined input yields Undefined output unless a defined input
// already forces the result (a Low into an AND, a High into an OR).
func evalGate(kind Kind, in []Signal) Signal {
	switch kind {
	case KindAnd, KindNand:
		out := High
		for _, s := range in {
			if s == Low {
				out = Low
				break
			}
			if s == Undefined {
				out = Undefined
			}
		}
		if kind == KindNand {
			return out.Invert()
		}
		return out
	case KindOr, KindNor:
		out := Low
		for _, s := range in {
			if s == High {
				out = High
				break
			}
			if s == Undefined {
				out = Undefined
			}
		}
		if kind == KindNor {
			return out.Invert()
		}
		return out
	case KindXor:
		for _, s := range in {
			if s == Undefined {
				return Undefined
			}
		}
		if in[0] != in[1] {
			return High
		}
		return Low
	}
	return Undefined
}

package logsim

import (
	"github.com/pkg/errors"
)

// Connection and execution errors.
var (
	ErrDeviceAbsent = errors.New("no such device")
	ErrPortAbsent   = errors.New("no such port on device")
	ErrInputDriven  = errors.New("input already driven by another output")
	ErrUnstable     = errors.New("network failed to stabilize (oscillating)")
)

// A Network owns the devices of one circuit and the connections between
// them, and advances the whole circuit one discrete cycle at a time.
// It is not safe for concurrent use; a cycle runs to completion on the
// calling goroutine.
type Network struct {
	tbl     *Table
	devices map[ID]*Device
	order   []ID // declaration order
	cycle   int
}

// NewNetwork returns an empty network sharing the given symbol table.
func NewNetwork(tbl *Table) *Network {
	return &Network{tbl: tbl, devices: make(map[ID]*Device)}
}

// Table returns the symbol table the network's IDs belong to.
func (n *Network) Table() *Table { return n.tbl }

// Cycle returns the number of cycles executed since creation.
func (n *Network) Cycle() int { return n.cycle }

// AddDevice creates and registers a device. It fails with
// ErrDevicePresent if id is already taken, or with the qualifier
// classification error for an illegal (kind, qualifier) pair.
func (n *Network) AddDevice(id ID, kind Kind, q Qualifier) (*Device, error) {
	if _, ok := n.devices[id]; ok {
		return nil, ErrDevicePresent
	}
	d, err := NewDevice(n.tbl, id, kind, q)
	if err != nil {
		return nil, err
	}
	n.devices[id] = d
	n.order = append(n.order, id)
	return d, nil
}

// Device returns the device with the given id, or nil.
func (n *Network) Device(id ID) *Device { return n.devices[id] }

// Devices returns all device IDs in declaration order.
func (n *Network) Devices() []ID {
	return append([]ID(nil), n.order...)
}

// FindDevices returns the IDs of all devices of the given kind, in
// declaration order.
func (n *Network) FindDevices(kind Kind) []ID {
	var ids []ID
	for _, id := range n.order {
		if n.devices[id].Kind == kind {
			ids = append(ids, id)
		}
	}
	return ids
}

// Connect wires the output src to the input (dstDev, dstPort). An input
// accepts at most one driver; a second connection fails with
// ErrInputDriven and leaves the first one intact. Fan-out from an output
// is unrestricted.
func (n *Network) Connect(src Point, dstDev, dstPort ID) error {
	from := n.devices[src.Device]
	if from == nil {
		return errors.Wrap(ErrDeviceAbsent, n.tbl.Name(src.Device))
	}
	if !from.HasOutput(src.Port) {
		return errors.Wrap(ErrPortAbsent, n.tbl.Name(src.Device)+"."+n.tbl.Name(src.Port))
	}
	to := n.devices[dstDev]
	if to == nil {
		return errors.Wrap(ErrDeviceAbsent, n.tbl.Name(dstDev))
	}
	if !to.HasInput(dstPort) {
		return errors.Wrap(ErrPortAbsent, n.tbl.Name(dstDev)+"."+n.tbl.Name(dstPort))
	}
	if _, ok := to.Inputs[dstPort]; ok {
		return errors.Wrap(ErrInputDriven, n.tbl.Name(dstDev)+"."+n.tbl.Name(dstPort))
	}
	to.Inputs[dstPort] = src
	return nil
}

// FloatingInputs returns every undriven input as a (device, port) pair,
// in declaration order. A runnable network returns none.
func (n *Network) FloatingInputs() []Point {
	var floating []Point
	for _, id := range n.order {
		d := n.devices[id]
		for _, p := range d.InputPorts() {
			if _, ok := d.Inputs[p]; !ok {
				floating = append(floating, Point{Device: id, Port: p})
			}
		}
	}
	return floating
}

// Signal returns the current value of the given output point.
func (n *Network) Signal(p Point) (Signal, error) {
	d := n.devices[p.Device]
	if d == nil {
		return Undefined, errors.Wrap(ErrDeviceAbsent, n.tbl.Name(p.Device))
	}
	s, ok := d.Outputs[p.Port]
	if !ok {
		return Undefined, errors.Wrap(ErrPortAbsent, n.tbl.Name(p.Device)+"."+n.tbl.Name(p.Port))
	}
	return s, nil
}

// SetSwitch sets the output of a SWITCH device. Switches change only
// through this call, never during a cycle.
func (n *Network) SetSwitch(id ID, s Signal) error {
	d := n.devices[id]
	if d == nil {
		return errors.Wrap(ErrDeviceAbsent, n.tbl.Name(id))
	}
	if d.Kind != KindSwitch {
		return errors.Errorf("%s is a %s, not a SWITCH", n.tbl.Name(id), d.Kind)
	}
	if !s.Defined() {
		return errors.New("switch state must be 0 or 1")
	}
	d.Outputs[NoID] = s
	return nil
}

// inputSignal reads the value currently driven into (d, port), or
// Undefined when the input floats.
func (n *Network) inputSignal(d *Device, port ID) Signal {
	src, ok := d.Inputs[port]
	if !ok {
		return Undefined
	}
	return n.devices[src.Device].Outputs[src.Port]
}

// ExecuteCycle advances every stateful device by one tick and settles all
// combinational outputs. On failure to settle it returns ErrUnstable and
// rolls every output back to its value before the cycle, leaving the
// network in its last known-good state.
func (n *Network) ExecuteCycle() error {
	// snapshot of end-of-previous-cycle values; stateful devices read
	// their inputs from here so that their next state never depends on
	// same-cycle combinational results
	snap := n.snapshot()

	for _, id := range n.order {
		n.advanceState(n.devices[id], snap)
	}

	if err := n.settle(); err != nil {
		n.restore(snap)
		return err
	}
	n.cycle++
	return nil
}

// ExecuteCycles runs count cycles in order, stopping at the first
// unstable cycle.
func (n *Network) ExecuteCycles(count int) error {
	for i := 0; i < count; i++ {
		if err := n.ExecuteCycle(); err != nil {
			return errors.Wrapf(err, "cycle %d", n.cycle+1)
		}
	}
	return nil
}

func (n *Network) snapshot() map[Point]Signal {
	snap := make(map[Point]Signal)
	for id, d := range n.devices {
		for p, s := range d.Outputs {
			snap[Point{Device: id, Port: p}] = s
		}
	}
	return snap
}

// restore rolls combinational outputs back to their snapshot values.
// Stateful devices keep their advanced state: only the combinational
// results of the failing cycle are discarded.
func (n *Network) restore(snap map[Point]Signal) {
	for pt, s := range snap {
		if d := n.devices[pt.Device]; d.Combinational() {
			d.Outputs[pt.Port] = s
		}
	}
}

func snapInput(snap map[Point]Signal, d *Device, port ID) Signal {
	src, ok := d.Inputs[port]
	if !ok {
		return Undefined
	}
	return snap[src]
}

// advanceState advances one stateful device using only previous-cycle
// input values.
func (n *Network) advanceState(d *Device, snap map[Point]Signal) {
	switch d.Kind {
	case KindClock:
		d.counter++
		if d.counter >= d.halfPeriod {
			d.counter = 0
			d.Outputs[NoID] = d.Outputs[NoID].Invert()
		}
	case KindSigGen:
		d.segLeft--
		if d.segLeft <= 0 {
			d.segIdx = (d.segIdx + 1) % len(d.waveform)
			d.segLeft = d.waveform[d.segIdx].Duration
		}
		d.Outputs[NoID] = d.waveform[d.segIdx].Level
	case KindDType:
		data := snapInput(snap, d, n.tbl.Lookup("DATA"))
		clk := snapInput(snap, d, n.tbl.Lookup("CLK"))
		set := snapInput(snap, d, n.tbl.Lookup("SET"))
		clear := snapInput(snap, d, n.tbl.Lookup("CLEAR"))
		if d.prevClk == Low && clk == High {
			d.memory = data
		}
		// SET/CLEAR are level-sensitive and win over the clocked
		// transfer
		if set == High {
			d.memory = High
		}
		if clear == High {
			d.memory = Low
		}
		d.prevClk = clk
		d.Outputs[n.tbl.Lookup("Q")] = d.memory
		d.Outputs[n.tbl.Lookup("QBAR")] = d.memory.Invert()
	}
}

// settle recomputes combinational outputs in synchronous passes until a
// full pass changes nothing. The pass count is bounded by the device
// count: a genuinely oscillating network fails instead of hanging. A
// network that goes quiet while a combinational output is still
// Undefined has an undefined feedback loop (every input of a runnable
// network is driven, and all stateful sources are defined) and fails the
// same way.
func (n *Network) settle() error {
	type pending struct {
		d *Device
		s Signal
	}
	limit := 2*len(n.order) + 4
	next := make([]pending, 0, len(n.order))
	var in []Signal
	for pass := 0; ; pass++ {
		if pass > limit {
			return ErrUnstable
		}
		next = next[:0]
		changed := false
		for _, id := range n.order {
			d := n.devices[id]
			if !d.Combinational() {
				continue
			}
			in = in[:0]
			for _, p := range d.InputPorts() {
				in = append(in, n.inputSignal(d, p))
			}
			s := evalGate(d.Kind, in)
			if s != d.Outputs[NoID] {
				changed = true
			}
			next = append(next, pending{d, s})
		}
		for _, p := range next {
			p.d.Outputs[NoID] = p.s
		}
		if !changed {
			break
		}
	}
	// Undefined left on a combinational output is fine when it traces to
	// a floating input upstream; otherwise it can only come from a
	// feedback loop that never resolves.
	excused := make(map[ID]bool)
	for growing := true; growing; {
		growing = false
		for _, id := range n.order {
			d := n.devices[id]
			if !d.Combinational() || excused[id] || d.Outputs[NoID] != Undefined {
				continue
			}
			for _, p := range d.InputPorts() {
				src, ok := d.Inputs[p]
				if !ok {
					excused[id] = true
					growing = true
					break
				}
				drv := n.devices[src.Device]
				if drv.Outputs[src.Port] != Undefined {
					continue
				}
				if !drv.Combinational() || excused[src.Device] {
					excused[id] = true
					growing = true
					break
				}
			}
		}
	}
	for _, id := range n.order {
		d := n.devices[id]
		if d.Combinational() && d.Outputs[NoID] == Undefined && !excused[id] {
			return errors.Wrap(ErrUnstable, n.tbl.Name(id))
		}
	}
	return nil
}

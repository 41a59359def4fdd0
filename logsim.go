package logsim

import (
	"strings"

	"github.com/pkg/errors"
)

// ErrNotLoaded is returned by Simulator methods called before a
// successful Load.
var ErrNotLoaded = errors.New("no circuit loaded")

// A Simulator ties the front end and the engine together behind the
// surface a presentation layer consumes: load a netlist, run cycles,
// flip switches, manage monitors, read traces. One Simulator is owned
// by one caller context at a time; it does no locking of its own.
type Simulator struct {
	tbl  *Table
	net  *Network
	mons *Monitors
}

// New returns a Simulator with no circuit loaded.
func New() *Simulator { return &Simulator{} }

// Load parses source and replaces the current circuit. The previous
// network and all monitor traces are discarded whether or not the parse
// succeeds. On failure the diagnostics describe every problem found and
// the simulator reverts to the unloaded state.
func (s *Simulator) Load(source string) ([]Diagnostic, error) {
	tbl := NewTable()
	net := NewNetwork(tbl)
	mons := NewMonitors(net)
	diags := Parse(source, net, mons)
	s.tbl, s.net, s.mons = nil, nil, nil
	if len(diags) > 0 {
		return diags, errors.Errorf("netlist has %d error(s)", len(diags))
	}
	s.tbl, s.net, s.mons = tbl, net, mons
	return nil, nil
}

// Network returns the loaded network, or nil.
func (s *Simulator) Network() *Network { return s.net }

// Monitors returns the monitor set of the loaded network, or nil.
func (s *Simulator) Monitors() *Monitors { return s.mons }

// ExecuteCycles advances the circuit by count cycles, recording every
// monitored output after each one. On an unstable cycle it stops and
// returns ErrUnstable; traces keep the cycles completed before the
// failure.
func (s *Simulator) ExecuteCycles(count int) error {
	if s.net == nil {
		return ErrNotLoaded
	}
	for i := 0; i < count; i++ {
		if err := s.net.ExecuteCycle(); err != nil {
			return errors.Wrapf(err, "cycle %d", s.net.Cycle()+1)
		}
		s.mons.Record()
	}
	return nil
}

// SetSwitch sets the named SWITCH device to the given state. It must not
// be called while a cycle is executing.
func (s *Simulator) SetSwitch(name string, state Signal) error {
	if s.net == nil {
		return ErrNotLoaded
	}
	id := s.tbl.Query(name)
	if id == NoID {
		return errors.Wrap(ErrDeviceAbsent, name)
	}
	return s.net.SetSwitch(id, state)
}

// AddMonitor starts recording the output named by ref ("G1" or "D.Q").
func (s *Simulator) AddMonitor(ref string) error {
	if s.net == nil {
		return ErrNotLoaded
	}
	pt, err := s.point(ref)
	if err != nil {
		return err
	}
	return s.mons.Add(pt)
}

// RemoveMonitor stops recording the output named by ref. Removing an
// output that is not monitored is not an error.
func (s *Simulator) RemoveMonitor(ref string) error {
	if s.net == nil {
		return ErrNotLoaded
	}
	pt, err := s.point(ref)
	if err != nil {
		return err
	}
	s.mons.Remove(pt)
	return nil
}

// Trace returns the recorded values of the output named by ref, oldest
// first.
func (s *Simulator) Trace(ref string) ([]Signal, error) {
	if s.net == nil {
		return nil, ErrNotLoaded
	}
	pt, err := s.point(ref)
	if err != nil {
		return nil, err
	}
	return s.mons.Trace(pt), nil
}

// Device returns the named device for inspection, or nil.
func (s *Simulator) Device(name string) *Device {
	if s.net == nil {
		return nil
	}
	id := s.tbl.Query(name)
	if id == NoID {
		return nil
	}
	return s.net.Device(id)
}

// FindDevices returns the names of all devices of the given kind, in
// declaration order.
func (s *Simulator) FindDevices(kind Kind) []string {
	if s.net == nil {
		return nil
	}
	var names []string
	for _, id := range s.net.FindDevices(kind) {
		names = append(names, s.tbl.Name(id))
	}
	return names
}

// point resolves an output reference of the form "name" or "name.PORT".
func (s *Simulator) point(ref string) (Point, error) {
	devName, portName, hasPort := strings.Cut(ref, ".")
	dev := s.tbl.Query(devName)
	if dev == NoID || s.net.Device(dev) == nil {
		return Point{}, errors.Wrap(ErrDeviceAbsent, devName)
	}
	pt := Point{Device: dev, Port: NoID}
	if hasPort {
		pt.Port = s.tbl.Query(portName)
		if pt.Port == NoID {
			return Point{}, errors.Wrap(ErrPortAbsent, ref)
		}
	}
	if !s.net.Device(dev).HasOutput(pt.Port) {
		return Point{}, errors.Wrap(ErrPortAbsent, ref)
	}
	return pt, nil
}

// PointName renders a monitor point back to its textual form.
func (s *Simulator) PointName(pt Point) string {
	if pt.Port == NoID {
		return s.tbl.Name(pt.Device)
	}
	return s.tbl.Name(pt.Device) + "." + s.tbl.Name(pt.Port)
}

package logsim

import (
	"github.com/pkg/errors"
)

// ErrMonitorPresent is returned when adding a monitor on an output that
// already has one.
var ErrMonitorPresent = errors.New("output already monitored")

// Monitors records, per cycle, the value of each watched output. Traces
// are appended in cycle order and never reordered or deduplicated.
type Monitors struct {
	net    *Network
	points []Point
	traces map[Point][]Signal
}

// NewMonitors returns an empty monitor set over net.
func NewMonitors(net *Network) *Monitors {
	return &Monitors{net: net, traces: make(map[Point][]Signal)}
}

// Add starts monitoring the given output. It fails if the output does
// not exist or is already monitored.
func (m *Monitors) Add(p Point) error {
	if _, err := m.net.Signal(p); err != nil {
		return err
	}
	if _, ok := m.traces[p]; ok {
		return errors.Wrap(ErrMonitorPresent, m.pointName(p))
	}
	m.points = append(m.points, p)
	m.traces[p] = nil
	return nil
}

// Remove stops monitoring the given output and drops its trace. Removing
// an output that is not monitored is a no-op.
func (m *Monitors) Remove(p Point) {
	if _, ok := m.traces[p]; !ok {
		return
	}
	delete(m.traces, p)
	for i, q := range m.points {
		if q == p {
			m.points = append(m.points[:i], m.points[i+1:]...)
			break
		}
	}
}

// Points returns the monitored outputs in the order they were added.
func (m *Monitors) Points() []Point {
	return append([]Point(nil), m.points...)
}

// Record appends the current value of every monitored output to its
// trace. The network calls it once per executed cycle.
func (m *Monitors) Record() {
	for _, p := range m.points {
		s, _ := m.net.Signal(p)
		m.traces[p] = append(m.traces[p], s)
	}
}

// Trace returns the recorded values for the given output, oldest first,
// or nil if the output is not monitored.
func (m *Monitors) Trace(p Point) []Signal {
	return append([]Signal(nil), m.traces[p]...)
}

func (m *Monitors) pointName(p Point) string {
	tbl := m.net.Table()
	if p.Port == NoID {
		return tbl.Name(p.Device)
	}
	return tbl.Name(p.Device) + "." + tbl.Name(p.Port)
}

package logsim

import (
	"fmt"
	"strings"
)

// Describe captures the loaded circuit as a declarative document: every
// device with its kind and qualifier, every connection, every monitor,
// all in declaration order. The document regenerates netlist source via
// Source, so parsing a valid netlist, describing it and reparsing yields
// an isomorphic network.
func (s *Simulator) Describe() *NetlistDoc {
	if s.net == nil {
		return nil
	}
	doc := &NetlistDoc{}
	for _, id := range s.net.Devices() {
		d := s.net.Device(id)
		dd := DeviceDoc{Name: s.tbl.Name(id), Kind: d.Kind.String()}
		switch d.Kind {
		case KindAnd, KindOr, KindNand, KindNor:
			dd.Inputs = d.numInputs
		case KindSwitch:
			state := 0
			if d.Outputs[NoID] == High {
				state = 1
			}
			dd.State = &state
		case KindClock:
			dd.Period = d.halfPeriod
		case KindSigGen:
			for _, seg := range d.waveform {
				lvl := 0
				if seg.Level == High {
					lvl = 1
				}
				dd.Waveform = append(dd.Waveform, SegmentDoc{Level: lvl, Duration: seg.Duration})
			}
		}
		doc.Devices = append(doc.Devices, dd)
	}
	for _, id := range s.net.Devices() {
		d := s.net.Device(id)
		for _, port := range d.InputPorts() {
			src, ok := d.Inputs[port]
			if !ok {
				continue
			}
			doc.Connections = append(doc.Connections, ConnDoc{
				From: s.PointName(src),
				To:   s.tbl.Name(id) + "." + s.tbl.Name(port),
			})
		}
	}
	for _, pt := range s.mons.Points() {
		doc.Monitors = append(doc.Monitors, s.PointName(pt))
	}
	return doc
}

// Netlist regenerates netlist source for the loaded circuit.
func (s *Simulator) Netlist() string {
	doc := s.Describe()
	if doc == nil {
		return ""
	}
	return doc.Source()
}

// Source renders the document as netlist source text.
func (d *NetlistDoc) Source() string {
	var b strings.Builder
	for _, dev := range d.Devices {
		fmt.Fprintf(&b, "define %s as %s;\n", dev.Name, dev.clause())
	}
	for _, c := range d.Connections {
		fmt.Fprintf(&b, "connect %s to %s;\n", c.From, c.To)
	}
	for _, m := range d.Monitors {
		fmt.Fprintf(&b, "monitor %s;\n", m)
	}
	b.WriteString("END\n")
	return b.String()
}

func (dev *DeviceDoc) clause() string {
	switch dev.Kind {
	case "AND", "OR", "NAND", "NOR":
		return fmt.Sprintf("%s %d inputs", dev.Kind, dev.Inputs)
	case "SWITCH":
		state := 0
		if dev.State != nil {
			state = *dev.State
		}
		return fmt.Sprintf("SWITCH %d state", state)
	case "CLOCK":
		return fmt.Sprintf("CLOCK period %d", dev.Period)
	case "SIGGEN":
		var b strings.Builder
		b.WriteString("SIGGEN")
		for _, seg := range dev.Waveform {
			fmt.Fprintf(&b, " %d %d", seg.Level, seg.Duration)
		}
		b.WriteString(" waveform")
		return b.String()
	default: // DTYPE, XOR
		return dev.Kind
	}
}

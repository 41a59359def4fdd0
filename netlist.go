package logsim

import (
	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
)

// A NetlistDoc is the declarative, machine-readable form of a circuit.
// It round-trips through YAML; field tags are JSON tags because the YAML
// codec converts through JSON.
type NetlistDoc struct {
	Devices     []DeviceDoc `json:"devices"`
	Connections []ConnDoc   `json:"connections,omitempty"`
	Monitors    []string    `json:"monitors,omitempty"`
}

// A DeviceDoc declares one device. Exactly one qualifier field is
// meaningful per kind: Inputs for gates, State for switches, Period for
// clocks, Waveform for signal generators.
type DeviceDoc struct {
	Name     string       `json:"name"`
	Kind     string       `json:"kind"`
	Inputs   int          `json:"inputs,omitempty"`
	State    *int         `json:"state,omitempty"`
	Period   int          `json:"period,omitempty"`
	Waveform []SegmentDoc `json:"waveform,omitempty"`
}

// A SegmentDoc is one SIGGEN waveform step.
type SegmentDoc struct {
	Level    int `json:"level"`
	Duration int `json:"duration"`
}

// A ConnDoc wires the output From into the input To, both in "name" or
// "name.PORT" form.
type ConnDoc struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ExportYAML renders the loaded circuit as a YAML netlist document.
func (s *Simulator) ExportYAML() ([]byte, error) {
	doc := s.Describe()
	if doc == nil {
		return nil, ErrNotLoaded
	}
	return yaml.Marshal(doc)
}

// LoadYAML loads a circuit from a YAML netlist document. The document is
// lowered to netlist source and goes through the same validation as
// Load, so diagnostics refer to the generated source.
func (s *Simulator) LoadYAML(data []byte) ([]Diagnostic, error) {
	var doc NetlistDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "invalid netlist document")
	}
	return s.Load(doc.Source())
}

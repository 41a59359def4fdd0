// Package simtest provides utility functions for testing circuits.
package simtest

import (
	"strings"
	"testing"

	"github.com/dlsim/logsim"
)

// Load parses src into a fresh simulator and fails the test on any
// diagnostic.
func Load(t *testing.T, src string) *logsim.Simulator {
	t.Helper()
	sim := logsim.New()
	diags, err := sim.Load(src)
	if err != nil {
		var b strings.Builder
		for _, d := range diags {
			b.WriteString("\n")
			b.WriteString(d.String())
		}
		t.Fatalf("load failed: %v%s", err, b.String())
	}
	return sim
}

// CompareTraces loads two netlists, runs both for the given number of
// cycles and compares the traces of every output monitored by the first.
// Both netlists must monitor the same outputs under the same names.
func CompareTraces(t *testing.T, cycles int, src1, src2 string) {
	t.Helper()

	sim1 := Load(t, src1)
	sim2 := Load(t, src2)

	if err := sim1.ExecuteCycles(cycles); err != nil {
		t.Fatal(err)
	}
	if err := sim2.ExecuteCycles(cycles); err != nil {
		t.Fatal(err)
	}

	mons1 := sim1.Monitors().Points()
	mons2 := sim2.Monitors().Points()
	if len(mons1) != len(mons2) {
		t.Fatalf("monitor count mismatch: %d != %d", len(mons1), len(mons2))
	}

	for _, pt := range mons1 {
		name := sim1.PointName(pt)
		tr1, err := sim1.Trace(name)
		if err != nil {
			t.Fatal(err)
		}
		tr2, err := sim2.Trace(name)
		if err != nil {
			t.Fatalf("output %s not monitored by second netlist: %v", name, err)
		}
		if len(tr1) != len(tr2) {
			t.Fatalf("%s: trace length mismatch: %d != %d", name, len(tr1), len(tr2))
		}
		for cycle := range tr1 {
			if tr1[cycle] != tr2[cycle] {
				t.Fatalf("%s: cycle %d: expected %s, got %s\n%s\n%s",
					name, cycle+1, tr1[cycle], tr2[cycle], TraceString(tr1), TraceString(tr2))
			}
		}
	}
}

// TraceString renders a trace as a compact waveform string, e.g. "0011x1".
func TraceString(trace []logsim.Signal) string {
	var b strings.Builder
	for _, s := range trace {
		b.WriteString(s.String())
	}
	return b.String()
}

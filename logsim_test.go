package logsim_test

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"

	ls "github.com/dlsim/logsim"
	"github.com/dlsim/logsim/simtest"
)

// Three DTYPEs wired as a divide-by-two chain off a period-2 clock.
const rippleCounter = `
define CK as CLOCK period 2;
define D1 D2 D3 as DTYPE;
define OFF as SWITCH 0 state;

connect CK to D1.CLK;
connect D1.QBAR to D1.DATA;
connect D1.Q to D2.CLK;
connect D2.QBAR to D2.DATA;
connect D2.Q to D3.CLK;
connect D3.QBAR to D3.DATA;

connect OFF to D1.SET;
connect OFF to D1.CLEAR;
connect OFF to D2.SET;
connect OFF to D2.CLEAR;
connect OFF to D3.SET;
connect OFF to D3.CLEAR;

monitor D1.Q, D2.Q, D3.Q;
END
`

func TestRippleCounter(t *testing.T) {
	sim := simtest.Load(t, rippleCounter)
	if err := sim.ExecuteCycles(16); err != nil {
		t.Fatal(err)
	}
	td := []struct {
		ref  string
		want string
	}{
		{"D1.Q", "0011110000111100"},
		{"D2.Q", "0001111111100000"},
		{"D3.Q", "0000111111111111"},
	}
	for _, tc := range td {
		trace, err := sim.Trace(tc.ref)
		if err != nil {
			t.Fatal(err)
		}
		if got := simtest.TraceString(trace); got != tc.want {
			t.Errorf("%s = %s, want %s", tc.ref, got, tc.want)
		}
	}
}

func TestSwitchChangesPropagate(t *testing.T) {
	sim := simtest.Load(t, `
		define A B as SWITCH 0 state;
		define G as AND 2 inputs;
		connect A to G.I1;
		connect B to G.I2;
		monitor G;
		END`)
	steps := []struct {
		a, b ls.Signal
		want ls.Signal
	}{
		{ls.Low, ls.Low, ls.Low},
		{ls.High, ls.Low, ls.Low},
		{ls.High, ls.High, ls.High},
		{ls.Low, ls.High, ls.Low},
	}
	for _, st := range steps {
		if err := sim.SetSwitch("A", st.a); err != nil {
			t.Fatal(err)
		}
		if err := sim.SetSwitch("B", st.b); err != nil {
			t.Fatal(err)
		}
		if err := sim.ExecuteCycles(1); err != nil {
			t.Fatal(err)
		}
	}
	trace, err := sim.Trace("G")
	if err != nil {
		t.Fatal(err)
	}
	want := "0010"
	if got := simtest.TraceString(trace); got != want {
		t.Errorf("G = %s, want %s", got, want)
	}
}

func TestSetSwitchErrors(t *testing.T) {
	sim := simtest.Load(t, `
		define SW as SWITCH 0 state;
		define CK as CLOCK period 1;
		monitor SW, CK;
		END`)
	if err := sim.SetSwitch("NOPE", ls.High); errors.Cause(err) != ls.ErrDeviceAbsent {
		t.Errorf("unknown device: got %v, want ErrDeviceAbsent", err)
	}
	if err := sim.SetSwitch("CK", ls.High); err == nil {
		t.Error("setting a CLOCK as a switch did not fail")
	}
	if err := sim.SetSwitch("SW", ls.Undefined); err == nil {
		t.Error("setting a switch to an undefined state did not fail")
	}
	if err := sim.SetSwitch("SW", ls.High); err != nil {
		t.Errorf("valid SetSwitch failed: %v", err)
	}
}

func TestMonitorManagement(t *testing.T) {
	sim := simtest.Load(t, `
		define CK as CLOCK period 1;
		define D as DTYPE;
		define ON as SWITCH 1 state;
		define OFF as SWITCH 0 state;
		connect CK to D.CLK;
		connect ON to D.DATA;
		connect OFF to D.SET;
		connect OFF to D.CLEAR;
		monitor CK;
		END`)
	if err := sim.ExecuteCycles(2); err != nil {
		t.Fatal(err)
	}
	// a monitor added mid-run records from the next cycle only
	if err := sim.AddMonitor("D.Q"); err != nil {
		t.Fatal(err)
	}
	if err := sim.AddMonitor("D.Q"); errors.Cause(err) != ls.ErrMonitorPresent {
		t.Errorf("duplicate monitor: got %v, want ErrMonitorPresent", err)
	}
	if err := sim.AddMonitor("D.BOGUS"); errors.Cause(err) != ls.ErrPortAbsent {
		t.Errorf("bad port: got %v, want ErrPortAbsent", err)
	}
	if err := sim.AddMonitor("NOPE"); errors.Cause(err) != ls.ErrDeviceAbsent {
		t.Errorf("bad device: got %v, want ErrDeviceAbsent", err)
	}
	if err := sim.ExecuteCycles(2); err != nil {
		t.Fatal(err)
	}

	ck, err := sim.Trace("CK")
	if err != nil {
		t.Fatal(err)
	}
	if len(ck) != 4 {
		t.Errorf("CK trace length = %d, want 4", len(ck))
	}
	dq, err := sim.Trace("D.Q")
	if err != nil {
		t.Fatal(err)
	}
	if len(dq) != 2 {
		t.Errorf("D.Q trace length = %d, want 2", len(dq))
	}

	if err := sim.RemoveMonitor("CK"); err != nil {
		t.Fatal(err)
	}
	// removal drops the trace and is idempotent
	if err := sim.RemoveMonitor("CK"); err != nil {
		t.Fatal(err)
	}
	ck, err = sim.Trace("CK")
	if err != nil {
		t.Fatal(err)
	}
	if len(ck) != 0 {
		t.Errorf("removed monitor still has a %d sample trace", len(ck))
	}
}

func TestNotLoaded(t *testing.T) {
	sim := ls.New()
	if err := sim.ExecuteCycles(1); errors.Cause(err) != ls.ErrNotLoaded {
		t.Errorf("ExecuteCycles: got %v, want ErrNotLoaded", err)
	}
	if err := sim.SetSwitch("SW", ls.High); errors.Cause(err) != ls.ErrNotLoaded {
		t.Errorf("SetSwitch: got %v, want ErrNotLoaded", err)
	}
	if err := sim.AddMonitor("SW"); errors.Cause(err) != ls.ErrNotLoaded {
		t.Errorf("AddMonitor: got %v, want ErrNotLoaded", err)
	}
	if _, err := sim.Trace("SW"); errors.Cause(err) != ls.ErrNotLoaded {
		t.Errorf("Trace: got %v, want ErrNotLoaded", err)
	}
}

func TestLoadFailureUnloads(t *testing.T) {
	sim := simtest.Load(t, `
		define SW as SWITCH 1 state;
		monitor SW;
		END`)
	diags, err := sim.Load("define SW as SWITCH 3 state;\nEND")
	if err == nil {
		t.Fatal("loading a bad netlist did not fail")
	}
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1: %v", len(diags), diags)
	}
	if err := sim.ExecuteCycles(1); errors.Cause(err) != ls.ErrNotLoaded {
		t.Errorf("simulator still runs after a failed load: %v", err)
	}
}

func TestFindDevices(t *testing.T) {
	sim := simtest.Load(t, rippleCounter)
	if got := sim.FindDevices(ls.KindDType); len(got) != 3 || got[0] != "D1" || got[2] != "D3" {
		t.Errorf("DTYPE devices = %v", got)
	}
	if got := sim.FindDevices(ls.KindClock); len(got) != 1 || got[0] != "CK" {
		t.Errorf("CLOCK devices = %v", got)
	}
	if got := sim.FindDevices(ls.KindXor); got != nil {
		t.Errorf("XOR devices = %v, want none", got)
	}
}

func TestUnstableCycleKeepsEarlierTraces(t *testing.T) {
	sim := simtest.Load(t, `
		define SW as SWITCH 0 state;
		define N1 N2 as NAND 2 inputs;
		connect SW to N1.I1;
		connect SW to N2.I2;
		connect N1 to N2.I1;
		connect N2 to N1.I2;
		monitor N1;
		END`)
	// switch low: both nands settle high
	if err := sim.ExecuteCycles(2); err != nil {
		t.Fatal(err)
	}
	// switch high: the cross-coupled pair has no stable point to reach
	// from (1,1) and the cycle must fail
	if err := sim.SetSwitch("SW", ls.High); err != nil {
		t.Fatal(err)
	}
	err := sim.ExecuteCycles(2)
	if errors.Cause(err) != ls.ErrUnstable {
		t.Fatalf("got %v, want ErrUnstable", err)
	}
	trace, err := sim.Trace("N1")
	if err != nil {
		t.Fatal(err)
	}
	if got := simtest.TraceString(trace); got != "11" {
		t.Errorf("trace after failed cycle = %s, want 11", got)
	}
}

func Example() {
	sim := ls.New()
	diags, err := sim.Load(`
		define SW as SWITCH 1 state;
		define CK as CLOCK period 1;
		define G as AND 2 inputs;
		connect SW to G.I1;
		connect CK to G.I2;
		monitor G;
		END`)
	if err != nil {
		for _, d := range diags {
			fmt.Println(d)
		}
		return
	}
	if err := sim.ExecuteCycles(6); err != nil {
		fmt.Println(err)
		return
	}
	trace, _ := sim.Trace("G")
	for _, s := range trace {
		fmt.Print(s)
	}
	fmt.Println()
	// Output:
	// 101010
}

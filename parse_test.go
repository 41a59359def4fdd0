package logsim_test

import (
	"reflect"
	"strings"
	"testing"

	ls "github.com/dlsim/logsim"
)

func parseSrc(src string) (*ls.Network, *ls.Monitors, []ls.Diagnostic) {
	tbl := ls.NewTable()
	net := ls.NewNetwork(tbl)
	mons := ls.NewMonitors(net)
	diags := ls.Parse(src, net, mons)
	return net, mons, diags
}

const goodNetlist = `
# a pair of nand gates fed by switches
define SW1 SW2 as SWITCH 0 state;
define G1 G2 as NAND 2 inputs;
connect SW1 to G1.I1;
connect SW1 to G1.I2;
connect SW2 to G2.I1;
connect SW2 to G2.I2;
monitor G1, G2;
END
`

func TestParseValidNetlist(t *testing.T) {
	net, mons, diags := parseSrc(goodNetlist)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	tbl := net.Table()

	var kinds []string
	for _, id := range net.Devices() {
		kinds = append(kinds, net.Device(id).Kind.String())
	}
	want := []string{"SWITCH", "SWITCH", "NAND", "NAND"}
	if !reflect.DeepEqual(kinds, want) {
		t.Errorf("device kinds = %v, want %v", kinds, want)
	}

	g1 := net.Device(tbl.Query("G1"))
	src, ok := g1.Inputs[tbl.Query("I1")]
	if !ok || src != (ls.Point{Device: tbl.Query("SW1"), Port: ls.NoID}) {
		t.Errorf("G1.I1 driver = %+v, want SW1", src)
	}

	pts := mons.Points()
	if len(pts) != 2 {
		t.Fatalf("monitor count = %d, want 2", len(pts))
	}
	if pts[0].Device != tbl.Query("G1") || pts[1].Device != tbl.Query("G2") {
		t.Errorf("monitor points = %+v", pts)
	}
}

func TestParseCommentsIgnored(t *testing.T) {
	commented := strings.Replace(goodNetlist,
		"define G1 G2 as NAND 2 inputs;",
		"define G1 G2 ** inline note ** as NAND 2 inputs; # trailing", 1)
	_, _, diags := parseSrc(commented)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
}

// Every malformed statement yields a diagnostic while later statements
// still parse; one bad construct must not hide the rest of the file.
func TestParseCollectsAllErrors(t *testing.T) {
	td := []struct {
		name string
		src  string
		want []string // substring per expected diagnostic, in order
	}{
		{"bad switch state",
			"define SW as SWITCH 3 state;\nEND",
			[]string{"must be 0 or 1"}},
		{"input count range",
			"define G as NAND 17 inputs;\nEND",
			[]string{"between 1 and 16"}},
		{"missing qualifier keyword",
			"define G as NAND 2;\nEND",
			[]string{`expected keyword "inputs"`}},
		{"dtype with qualifier",
			"define D as DTYPE 2;\nEND",
			[]string{"DTYPE takes no qualifier"}},
		{"keyword as name",
			"define CLOCK as DTYPE;\nEND",
			[]string{"reserved keyword"}},
		{"redefinition",
			"define A as XOR;\ndefine A as DTYPE;\nconnect A to A.I1;\nconnect A to A.I2;\nEND",
			[]string{"already defined"}},
		{"undefined device in connect",
			"define G as AND 1 inputs;\nconnect NOPE to G.I1;\nEND",
			[]string{`undefined device "NOPE"`, "inputs are floating: G.I1"}},
		{"dot on non dtype output",
			"define SW as SWITCH 0 state;\ndefine G as AND 1 inputs;\nconnect SW.Q to G.I1;\nEND",
			[]string{"no such output port", "inputs are floating: G.I1"}},
		{"fan-in violation",
			"define SW1 SW2 as SWITCH 0 state;\ndefine G as AND 1 inputs;\nconnect SW1 to G.I1;\nconnect SW2 to G.I1;\nEND",
			[]string{"already driven"}},
		{"floating inputs",
			"define G as NAND 2 inputs;\ndefine SW as SWITCH 0 state;\nconnect SW to G.I1;\nmonitor G;\nEND",
			[]string{"inputs are floating: G.I2"}},
		{"duplicate monitor",
			"define SW as SWITCH 0 state;\nmonitor SW;\nmonitor SW;\nEND",
			[]string{"already monitored"}},
		{"missing END",
			"define SW as SWITCH 0 state;\n",
			[]string{"expected END"}},
		{"unrecognized character",
			"define SW as SWITCH 0 state;\n@\nEND",
			[]string{"unrecognized character"}},
		{"bad siggen level",
			"define SG as SIGGEN 2 5 waveform;\nEND",
			[]string{"expected 0 or 1 or keyword 'waveform'"}},
		{"several errors at once",
			"define SW as SWITCH 5 state;\ndefine G as NAND 0 inputs;\nconnect X to G.I1;\nEND",
			[]string{"must be 0 or 1", "between 1 and 16", `undefined device "X"`}},
	}
	for _, tc := range td {
		t.Run(tc.name, func(t *testing.T) {
			_, _, diags := parseSrc(tc.src)
			if len(diags) != len(tc.want) {
				t.Fatalf("got %d diagnostics, want %d:\n%v", len(diags), len(tc.want), diags)
			}
			for i, want := range tc.want {
				if !strings.Contains(diags[i].Msg, want) {
					t.Errorf("diagnostic %d = %q, want substring %q", i, diags[i].Msg, want)
				}
			}
		})
	}
}

// A connection with an empty input port must not be registered, and
// parsing must continue with the statements that follow it.
func TestParseRecoversAfterEmptyPort(t *testing.T) {
	net, mons, diags := parseSrc(`
		define SW as SWITCH 1 state;
		define D2 as DTYPE;
		define Z as SWITCH 0 state;
		connect SW to D2.;
		connect SW to D2.DATA;
		connect SW to D2.CLK;
		connect Z to D2.SET;
		connect Z to D2.CLEAR;
		monitor D2.Q;
		END`)
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1: %v", len(diags), diags)
	}
	if !strings.Contains(diags[0].Msg, "input port") {
		t.Errorf("diagnostic = %q", diags[0].Msg)
	}
	tbl := net.Table()
	d2 := net.Device(tbl.Query("D2"))
	if len(d2.Inputs) != 4 {
		t.Errorf("D2 has %d driven inputs, want 4 (bad statement must not register)", len(d2.Inputs))
	}
	if len(mons.Points()) != 1 {
		t.Errorf("later monitor statement was not processed")
	}
}

func TestParseMultiNameDefinition(t *testing.T) {
	net, _, diags := parseSrc(`
		define A, B, C as CLOCK period 2;
		monitor A, B, C;
		END`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if got := len(net.FindDevices(ls.KindClock)); got != 3 {
		t.Errorf("clock count = %d, want 3", got)
	}
	// declaration order is preserved
	tbl := net.Table()
	var names []string
	for _, id := range net.Devices() {
		names = append(names, tbl.Name(id))
	}
	if !reflect.DeepEqual(names, []string{"A", "B", "C"}) {
		t.Errorf("declaration order = %v", names)
	}
}

func TestDiagnosticRendering(t *testing.T) {
	_, _, diags := parseSrc("define SW as SWITCH state;\nEND")
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics: %v", len(diags), diags)
	}
	out := diags[0].String()
	if !strings.Contains(out, "syntax error") {
		t.Errorf("missing class: %q", out)
	}
	if !strings.Contains(out, "define SW as SWITCH state;") {
		t.Errorf("missing source line: %q", out)
	}
	if !strings.Contains(out, "^") {
		t.Errorf("missing caret: %q", out)
	}
}

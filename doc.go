/*
Package logsim simulates networks of digital logic devices described in a
small netlist language.

A netlist declares devices, wires outputs to inputs point to point, and
selects outputs to monitor:

	define SW1 SW2 as SWITCH 0 state;
	define G1 as NAND 2 inputs;
	connect SW1 to G1.I1;
	connect SW2 to G1.I2;
	monitor G1;
	END

Grammar:

	file       = { definition | connection | monitor } "END"
	definition = "define" name {[","] name} "as" kindclause ";"
	kindclause = "SWITCH" ("0"|"1") "state"
	           | ("AND"|"OR"|"NAND"|"NOR") number "inputs"
	           | "CLOCK" "period" number
	           | "DTYPE" | "XOR"
	           | "SIGGEN" ("0"|"1") number {("0"|"1") number} "waveform"
	connection = "connect" output "to" input ";"
	monitor    = "monitor" output {[","] output} ";"
	output     = name ["." ("Q"|"QBAR")]
	input      = name "." ("DATA"|"CLK"|"SET"|"CLEAR"|"I"digits)

Line comments run from "#" to the end of the line; block comments are
bracketed by a pair of "**" markers. Parsing collects every error it can
find in one pass instead of stopping at the first.

Simulation is cycle-stepped, not timing-accurate: each cycle first
advances stateful devices (clocks, signal generators, edge-triggered
D-types) from the previous cycle's values, then settles all combinational
outputs to a fixed point. Signals are tri-state (low, high, undefined).
A network that cannot settle within a bounded number of passes fails the
cycle with an oscillation error instead of hanging.
*/
package logsim

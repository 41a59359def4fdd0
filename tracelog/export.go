package tracelog

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/pkg/errors"

	"github.com/dlsim/logsim"
)

// WriteCSV writes all monitored traces of sim to w as a table: a "cycle"
// column followed by one column per monitored output, one row per
// executed cycle.
func WriteCSV(w io.Writer, sim *logsim.Simulator) error {
	mons := sim.Monitors()
	if mons == nil {
		return errors.New("no circuit loaded")
	}
	points := mons.Points()
	header := []string{"cycle"}
	traces := make([][]logsim.Signal, len(points))
	rows := 0
	for i, pt := range points {
		header = append(header, sim.PointName(pt))
		traces[i] = mons.Trace(pt)
		if len(traces[i]) > rows {
			rows = len(traces[i])
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "write header")
	}
	record := make([]string, len(points)+1)
	for cycle := 0; cycle < rows; cycle++ {
		record[0] = strconv.Itoa(cycle + 1)
		for i := range points {
			if cycle < len(traces[i]) {
				record[i+1] = traces[i][cycle].String()
			} else {
				record[i+1] = ""
			}
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrapf(err, "write cycle %d", cycle+1)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flush")
}

// A sample is one monitored value at one cycle, the JSONL record shape.
type sample struct {
	Signal string `json:"signal"`
	Cycle  int    `json:"cycle"`
	Value  string `json:"value"`
}

// WriteJSONL writes all monitored traces of sim to w as JSON Lines, one
// object per (signal, cycle) sample.
func WriteJSONL(w io.Writer, sim *logsim.Simulator) error {
	mons := sim.Monitors()
	if mons == nil {
		return errors.New("no circuit loaded")
	}
	enc := json.NewEncoder(w)
	for _, pt := range mons.Points() {
		name := sim.PointName(pt)
		for cycle, v := range mons.Trace(pt) {
			if err := enc.Encode(sample{Signal: name, Cycle: cycle + 1, Value: v.String()}); err != nil {
				return errors.Wrapf(err, "encode %s@%d", name, cycle+1)
			}
		}
	}
	return nil
}

package impact

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
)

// TracePoint is one row of a multiplier trace CSV.
type TracePoint struct {
	Tick       int     `csv:"tick"`
	Multiplier float64 `csv:"multiplier"`
}

// Trace replays a recorded multiplier sequence, one value per tick. After
// the last value it yields 0, or starts over when Loop is set.
type Trace struct {
	values []float64
	pos    int
	Loop   bool
}

// NewTrace wraps a sequence of values.
func NewTrace(values []float64) *Trace {
	return &Trace{values: values}
}

// LoadTrace reads a tick,multiplier CSV. Rows are replayed in file order.
func LoadTrace(r io.Reader) (*Trace, error) {
	var rows []TracePoint
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("parsing trace: %w", err)
	}
	values := make([]float64, len(rows))
	for i, row := range rows {
		values[i] = row.Multiplier
	}
	return NewTrace(values), nil
}

// LoadTraceFile reads a trace CSV from disk.
func LoadTraceFile(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening trace: %w", err)
	}
	defer f.Close()
	return LoadTrace(f)
}

// WriteTrace writes values as a tick,multiplier CSV with a header row.
func WriteTrace(w io.Writer, values []float64) error {
	rows := make([]TracePoint, len(values))
	for i, v := range values {
		rows[i] = TracePoint{Tick: i, Multiplier: v}
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("writing trace: %w", err)
	}
	return nil
}

// Next implements Source.
func (t *Trace) Next() float64 {
	if t.pos >= len(t.values) {
		if !t.Loop || len(t.values) == 0 {
			return 0
		}
		t.pos = 0
	}
	v := t.values[t.pos]
	t.pos++
	return v
}

// Done reports whether a non-looping trace has been fully replayed.
func (t *Trace) Done() bool {
	return !t.Loop && t.pos >= len(t.values)
}

// Len returns the number of recorded ticks.
func (t *Trace) Len() int {
	return len(t.values)
}

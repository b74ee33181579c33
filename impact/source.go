// Package impact produces the per-tick impact multiplier that drives the
// particle field: a constant, a recorded trace, or an amplitude envelope
// followed over decoded audio.
package impact

// Source yields one impact multiplier per tick. Values are nominally >= 0
// and are not clamped.
type Source interface {
	Next() float64
}

// Constant is a Source that never changes.
type Constant float64

// Next implements Source.
func (c Constant) Next() float64 {
	return float64(c)
}

// Func adapts a function to a Source.
type Func func() float64

// Next implements Source.
func (f Func) Next() float64 {
	return f()
}

// Recorder passes values through from a Source and keeps them.
type Recorder struct {
	src    Source
	values []float64
}

// NewRecorder wraps src.
func NewRecorder(src Source) *Recorder {
	return &Recorder{src: src}
}

// Next implements Source.
func (r *Recorder) Next() float64 {
	v := r.src.Next()
	r.values = append(r.values, v)
	return v
}

// Values returns every value produced so far.
func (r *Recorder) Values() []float64 {
	return r.values
}

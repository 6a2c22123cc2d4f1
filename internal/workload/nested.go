package workload

// Shape sizes the nested-loop benchmark.
type Shape struct {
	Outer  int
	Middle int
	Inner  int
	Vec    int
}

// DefaultShape is 10x10x100 iterations over 32-element vectors.
var DefaultShape = Shape{Outer: 10, Middle: 10, Inner: 100, Vec: 32}

// Records is the number of vector elements touched by one run.
func (sh Shape) Records() int {
	return sh.Outer * sh.Middle * sh.Inner * sh.Vec
}

// Scopes is the number of scopes one instrumented run opens.
func (sh Shape) Scopes() int {
	return sh.Outer * (1 + sh.Middle*(1+sh.Inner*2))
}

// Nested runs outer{middle{inner{dot, axpy}}} over small float vectors and
// returns a checksum so the arithmetic cannot be optimized away. A nil
// Scoper runs it without any scope calls.
func Nested(s Scoper, sh Shape) (float64, error) {
	a := make([]float64, sh.Vec)
	b := make([]float64, sh.Vec)
	for i := range a {
		a[i] = float64(i) * 0.5
		b[i] = 1 / float64(i+1)
	}

	var sum float64
	for range sh.Outer {
		err := scope(s, "outer", func() error {
			for range sh.Middle {
				err := scope(s, "middle", func() error {
					for range sh.Inner {
						if err := scope(s, "dot", func() error {
							sum += dot(a, b)
							return nil
						}); err != nil {
							return err
						}
						if err := scope(s, "axpy", func() error {
							axpy(1e-9, a, b)
							return nil
						}); err != nil {
							return err
						}
					}
					return nil
				})
				if err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return sum, err
		}
	}
	return sum, nil
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

// axpy computes b = alpha*a + b in place.
func axpy(alpha float64, a, b []float64) {
	for i := range a {
		b[i] += alpha * a[i]
	}
}

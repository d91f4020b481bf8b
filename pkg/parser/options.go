package parser

// MaxCoordinate is the largest vertex coordinate magnitude accepted, in
// document units. Beyond it volumes and areas overflow float64.
const MaxCoordinate = 1e12

// Limits bounds the resources a single document may consume. A zero field
// disables that limit.
type Limits struct {
	MaxBytes     int64
	MaxDepth     int
	MaxNodes     int
	MaxTriangles int
}

// DefaultLimits returns the limits used when none are configured
func DefaultLimits() Limits {
	return Limits{
		MaxBytes:     64 << 20,
		MaxDepth:     256,
		MaxNodes:     100_000,
		MaxTriangles: 10_000_000,
	}
}

type options struct {
	limits Limits
	source string
}

// Option configures Parse
type Option func(*options)

// WithLimits replaces the default limits
func WithLimits(l Limits) Option {
	return func(o *options) {
		o.limits = l
	}
}

// WithSource records the document name in the scene metadata
func WithSource(name string) Option {
	return func(o *options) {
		o.source = name
	}
}

func newOptions(opts []Option) options {
	o := options{limits: DefaultLimits()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// maxNesting is the JSON bracket depth allowed for a node depth limit: every
// node level adds an object and a children array, plus headroom for the
// geometry and transform payloads.
func (l Limits) maxNesting() int {
	if l.MaxDepth <= 0 {
		return 0
	}
	return 2*l.MaxDepth + 16
}

package debugdraw

// Defaults used when no option overrides them.
const (
	// DefaultInitialCapacity is the initial vertex buffer capacity in vertices.
	DefaultInitialCapacity = 36

	// DefaultQueueName is the render queue lines are submitted to.
	DefaultQueueName = "Line Queue"
)

// Option configures a LineRenderer during creation.
//
// Example:
//
//	lr, err := debugdraw.NewLineRenderer(dev, rc,
//	    debugdraw.WithInitialCapacity(1024),
//	    debugdraw.WithQueueName("Gizmos"))
type Option func(*options)

type options struct {
	initialCapacity int
	queueName       string
	label           string
}

func defaultOptions() options {
	return options{
		initialCapacity: DefaultInitialCapacity,
		queueName:       DefaultQueueName,
	}
}

// WithInitialCapacity sets the initial vertex buffer capacity in vertices.
// The buffer still grows on demand. Values below 2 are ignored.
func WithInitialCapacity(n int) Option {
	return func(o *options) {
		if n >= 2 {
			o.initialCapacity = n
		}
	}
}

// WithQueueName sets the render queue the renderer submits to.
// An empty name is ignored.
func WithQueueName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.queueName = name
		}
	}
}

// WithLabel prefixes the debug labels of every resource the renderer
// creates, e.g. "hud/" yields "hud/LineBuffer".
func WithLabel(prefix string) Option {
	return func(o *options) {
		o.label = prefix
	}
}

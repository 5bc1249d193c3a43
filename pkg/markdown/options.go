package markdown

const diagnosticsModule = "markdown"

// Diagnostics receives non-fatal conversion warnings. The application logger
// satisfies it.
type Diagnostics interface {
	Warn(module, message string, details map[string]interface{})
}

type nopDiagnostics struct{}

func (nopDiagnostics) Warn(string, string, map[string]interface{}) {}

type options struct {
	diagnostics Diagnostics
}

// Option configures a conversion in either direction.
type Option func(*options)

// WithDiagnostics reports unsupported constructs and repaired input to d.
func WithDiagnostics(d Diagnostics) Option {
	return func(o *options) {
		if d != nil {
			o.diagnostics = d
		}
	}
}

func newOptions(opts []Option) options {
	o := options{diagnostics: nopDiagnostics{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) warn(message string, details map[string]interface{}) {
	o.diagnostics.Warn(diagnosticsModule, message, details)
}

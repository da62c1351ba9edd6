package platform

// BootstrapPhase names the bootstrap phase a module failure occurred in.
type BootstrapPhase string

const (
	PhaseValidate   BootstrapPhase = "validate"
	PhaseInitialize BootstrapPhase = "initialize"
	PhaseMiddleware BootstrapPhase = "middleware"
	PhaseRoutes     BootstrapPhase = "routes"
)

// ModuleFailure records why one module dropped out of bootstrap.
type ModuleFailure struct {
	Module string
	Phase  BootstrapPhase
	Err    error
}

// Report is the outcome of one Bootstrap run. Failed holds the modules
// that dropped out, in the order they failed; Initialized holds the names
// that made it through every phase, in registration order. A module appears
// in exactly one of the two lists.
type Report struct {
	Initialized []string
	Failed      []ModuleFailure
}

// Ok reports whether every enabled module bootstrapped cleanly.
func (r *Report) Ok() bool {
	return len(r.Failed) == 0
}

// FailureFor returns the recorded failure for a module name, if any.
func (r *Report) FailureFor(name string) (ModuleFailure, bool) {
	for _, f := range r.Failed {
		if f.Module == name {
			return f, true
		}
	}
	return ModuleFailure{}, false
}

// FailedNames returns just the names from Failed, in failure order.
func (r *Report) FailedNames() []string {
	if len(r.Failed) == 0 {
		return nil
	}
	names := make([]string, len(r.Failed))
	for i, f := range r.Failed {
		names[i] = f.Module
	}
	return names
}

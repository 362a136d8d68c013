package run

// Generator reconstructs a Run from its persisted submission bytes.
// The Spec Store keys generators by the same type label a spec was
// stored under, so recovery after a restart can dispatch each
// recovered spec to the code that knows how to turn it back into a
// live Run (spec.md §4.H).
type Generator interface {
	// Generate builds a Run from the raw submission bytes previously
	// passed to the Spec Store. uninstalling is true when the run's own
	// state namespace records that an uninstall was already in
	// progress at the time of the crash; the generator must then
	// return the UNINSTALLING variant directly so progress resumes
	// instead of restarting the service from scratch.
	Generate(name string, data []byte, uninstalling bool) (Run, error)
}

// Generators is a set of Generator implementations keyed by type
// label. It is a plain map: lookups are by type label, and iteration
// order is not defined.
type Generators map[string]Generator

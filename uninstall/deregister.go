package uninstall

// Framework-wide deregister states (spec.md §4.J).
const (
	Pending  State = "PENDING"
	Prepared State = "PREPARED"
	Complete State = "COMPLETE"
)

const (
	eventStart        = "start"
	eventUnregistered = "unregistered"
)

// DeregisterStep is the single framework-wide uninstall step: PENDING
// on construction, PREPARED once Start is called, COMPLETE once the
// resource manager's unregistered callback fires.
type DeregisterStep struct {
	sm *StateMachine
}

// NewDeregisterStep builds a DeregisterStep in PENDING, invoking
// onTransition (which may be nil) after each successful move.
func NewDeregisterStep(onTransition Callback) *DeregisterStep {
	sm, err := NewBuilder().
		WithName("deregister-framework").
		WithCurrentState(Pending).
		AddRule(eventStart, &Rule{From: Pending, To: Prepared}).
		AddRule(eventUnregistered, &Rule{From: Prepared, To: Complete}).
		WithTransitionCallback(onTransition).
		Build()
	if err != nil {
		// Build only fails on a missing current state, which is always
		// set above; unreachable in practice.
		panic(err)
	}
	return &DeregisterStep{sm: sm}
}

// Start moves PENDING -> PREPARED. Returns ErrInvalidTransition if the
// step is not currently PENDING.
func (d *DeregisterStep) Start() error {
	return d.sm.Transition(eventStart)
}

// Unregistered moves PREPARED -> COMPLETE. Returns ErrInvalidTransition
// if the step is not currently PREPARED.
func (d *DeregisterStep) Unregistered() error {
	return d.sm.Transition(eventUnregistered)
}

// State returns the step's current state.
func (d *DeregisterStep) State() State {
	return d.sm.Current()
}

// Done reports whether the step has reached COMPLETE.
func (d *DeregisterStep) Done() bool {
	return d.sm.Current() == Complete
}

package submitter

// State is a stage of the per-order submission flow.
type State string

const (
	StateFilling    State = "filling"
	StatePreviewing State = "previewing"
	StateSubmitting State = "submitting"
	StateValidating State = "validating"
	StateConfirming State = "confirming"
	StateReceipting State = "receipting"
	StateAdvancing  State = "advancing"
	StateDone       State = "done"
)

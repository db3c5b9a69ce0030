package export

// State is the lifecycle stage of a Job.
type State int

const (
	Idle State = iota
	Preparing
	Rendering
	Finalizing
	Done
	Failed
)

var stateNames = [...]string{"idle", "preparing", "rendering", "finalizing", "done", "failed"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether the job has finished, successfully or not.
func (s State) Terminal() bool { return s == Done || s == Failed }

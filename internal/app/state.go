package app

// State is a step of a generate or publish run.
type State int

const (
	Idle State = iota
	Generating
	CopyingStaticAssets
	GeneratingRedirects
	Authenticating
	Syncing
	Verifying
	Done
	Failed
)

var stateNames = [...]string{
	Idle:                "idle",
	Generating:          "generating",
	CopyingStaticAssets: "copying static assets",
	GeneratingRedirects: "generating redirects",
	Authenticating:      "authenticating",
	Syncing:             "syncing",
	Verifying:           "verifying",
	Done:                "done",
	Failed:              "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool { return s == Done || s == Failed }

// run records the states one run went through.
type run struct {
	states  []State
	onState func(State)
}

func (r *run) enter(s State) {
	r.states = append(r.states, s)
	if r.onState != nil {
		r.onState(s)
	}
}

func (r *run) current() State {
	if len(r.states) == 0 {
		return Idle
	}
	return r.states[len(r.states)-1]
}

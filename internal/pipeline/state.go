package pipeline

type State int

const (
	Extracting State = iota
	Windowing
	Classifying
	Computing
	Writing
	Skipping
	Animating
	Done
)

var stateNames = map[State]string{
	Extracting:  "EXTRACTING",
	Windowing:   "WINDOWING",
	Classifying: "CLASSIFYING",
	Computing:   "COMPUTING",
	Writing:     "WRITING",
	Skipping:    "SKIPPING",
	Animating:   "ANIMATING",
	Done:        "DONE",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// Scene outcomes recorded in the run report.
const (
	OutcomeWritten     = "written"
	OutcomeCloudy      = "cloudy"
	OutcomeBandMissing = "band_missing"
)

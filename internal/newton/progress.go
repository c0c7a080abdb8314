package newton

// ProgressUpdate carries the progress of one engine to the user interface.
type ProgressUpdate struct {
	// EngineIndex identifies the engine when several run side by side.
	EngineIndex int
	// Value is the normalized progress, from 0.0 to 1.0.
	Value float64
}

// ProgressReporter is the callback core strategies use to report progress
// without knowing how it is delivered.
type ProgressReporter func(progress float64)

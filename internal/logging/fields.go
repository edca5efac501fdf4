package logging

const (
	// FieldComponent names the package or subsystem emitting the record.
	FieldComponent = "component"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to do next.
	FieldErrorHint = "error_hint"
	// FieldImpact describes the user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldEpisode is the episode directory name (e.g. episode_0007).
	FieldEpisode = "episode"
	// FieldPath is a source file or relative asset path.
	FieldPath = "path"
	// FieldDestination is the destination episode directory.
	FieldDestination = "destination"
	// FieldRunID is the journal identifier of the current run.
	FieldRunID = "run_id"
)

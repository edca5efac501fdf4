package materialize

// Outcome describes what happened to one referenced asset.
type Outcome string

const (
	OutcomeCopied         Outcome = "copied"
	OutcomeSkippedMissing Outcome = "skipped_missing"
	OutcomeSkippedUnsafe  Outcome = "skipped_unsafe"
)

// AssetResult records the outcome for one relative path.
type AssetResult struct {
	Path    string
	Outcome Outcome
	Bytes   int64
}

// Report aggregates a single materialization.
type Report struct {
	Destination    string
	Frames         int
	Assets         []AssetResult
	AuxiliaryFiles []string
	Bytes          int64
}

// Copied returns the number of assets copied.
func (r Report) Copied() int {
	return r.count(OutcomeCopied)
}

// Skipped returns the number of assets that were referenced but not copied.
func (r Report) Skipped() int {
	return len(r.Assets) - r.Copied()
}

// Missing lists the referenced paths that were absent at the source.
func (r Report) Missing() []string {
	return r.paths(OutcomeSkippedMissing)
}

// Unsafe lists the referenced paths rejected because they leave the episode root.
func (r Report) Unsafe() []string {
	return r.paths(OutcomeSkippedUnsafe)
}

func (r Report) count(outcome Outcome) int {
	n := 0
	for _, asset := range r.Assets {
		if asset.Outcome == outcome {
			n++
		}
	}
	return n
}

func (r Report) paths(outcome Outcome) []string {
	var out []string
	for _, asset := range r.Assets {
		if asset.Outcome == outcome {
			out = append(out, asset.Path)
		}
	}
	return out
}

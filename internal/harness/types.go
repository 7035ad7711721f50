package harness

// Row is one read-back record rendered as a canonical map.
// Absent values are omitted rather than stored as null.
type Row map[string]any

// Output is the canonical read-back of one run.
type Output struct {
	Scenario string `json:"scenario"`
	Pipeline string `json:"pipeline"`
	Rows     []Row  `json:"rows"`

	// Canonical is the canonical JSON of the whole output. Digest is its
	// domain-separated SHA-256; equal digests mean byte-identical runs.
	Canonical []byte `json:"-"`
	Digest    string `json:"digest"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	Output *Output `json:"output"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// canonicalRows converts rows to the shape canon.Marshal accepts.
func canonicalRows(rows []Row) []map[string]any {
	out := make([]map[string]any, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	return out
}

package validate

// State is the terminal validation state of a single secret. Each
// secret starts UNCHECKED and reaches exactly one terminal state per
// validation pass; there are no retries.
type State string

const (
	StateUnchecked   State = "UNCHECKED"
	StateMissing     State = "MISSING"
	StateNoAccess    State = "NO_ACCESS"
	StatePlaceholder State = "PLACEHOLDER"
	StateValid       State = "VALID"
)

// Severity tags an outcome with its effect on the deployment. The
// three-way split replaces the old boolean-plus-log-line reporting: a
// Warning lets the deployment proceed, a Fatal aborts it.
type Severity int

const (
	SeverityOk Severity = iota
	SeverityWarning
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityOk:
		return "OK"
	case SeverityWarning:
		return "WARNING"
	case SeverityFatal:
		return "FAIL"
	}
	return "UNKNOWN"
}

// Outcome is the result of validating one secret (or one aggregate
// check, like JWT consistency).
type Outcome struct {
	Secret   string
	GSMID    string
	State    State
	Severity Severity
	Message  string
}

// Report aggregates outcomes for a validation phase. It preserves the
// (ok, messages) contract the deployment scripts consume.
type Report struct {
	outcomes []Outcome
}

// Add appends an outcome.
func (r *Report) Add(o Outcome) {
	r.outcomes = append(r.outcomes, o)
}

// Merge appends every outcome of another report.
func (r *Report) Merge(other *Report) {
	r.outcomes = append(r.outcomes, other.outcomes...)
}

// Ok reports whether the phase passed: no fatal outcome present.
func (r *Report) Ok() bool {
	for _, o := range r.outcomes {
		if o.Severity == SeverityFatal {
			return false
		}
	}
	return true
}

// Outcomes returns the outcomes in insertion order.
func (r *Report) Outcomes() []Outcome {
	return append([]Outcome(nil), r.outcomes...)
}

// Messages renders the human-readable message list, severity-prefixed,
// in insertion order.
func (r *Report) Messages() []string {
	msgs := make([]string, 0, len(r.outcomes))
	for _, o := range r.outcomes {
		msgs = append(msgs, o.Severity.String()+": "+o.Message)
	}
	return msgs
}

// Failures returns only the fatal outcomes.
func (r *Report) Failures() []Outcome {
	var fatal []Outcome
	for _, o := range r.outcomes {
		if o.Severity == SeverityFatal {
			fatal = append(fatal, o)
		}
	}
	return fatal
}

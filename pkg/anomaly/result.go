package anomaly

import "fmt"

// Verdict is the outcome of classifying one sample.
type Verdict uint8

const (
	// Stored means the sample became a baseline. No rule was evaluated.
	Stored Verdict = iota
	Normal
	Anomalous
)

var verdictNames = map[Verdict]string{
	Stored:    "Stored",
	Normal:    "Normal",
	Anomalous: "Anomalous",
}

func (v Verdict) String() string {
	if name, ok := verdictNames[v]; ok {
		return name
	}
	return fmt.Sprintf("Verdict(%d)", v)
}

// Rule identifies the check that produced a finding.
type Rule uint8

const (
	RuleStatic Rule = iota + 1
	RuleCounter
	RuleEntropy
)

func (r Rule) String() string {
	switch r {
	case RuleStatic:
		return "static"
	case RuleCounter:
		return "counter"
	case RuleEntropy:
		return "entropy"
	}
	return fmt.Sprintf("Rule(%d)", r)
}

// Finding is one flagged deviation. Position is -1 for whole-sample
// findings.
type Finding struct {
	Rule     Rule
	Position int
	Expected byte
	Observed byte
	Step     int
	Reason   string
}

func (f Finding) String() string {
	if f.Position < 0 {
		return fmt.Sprintf("%s: %s", f.Rule, f.Reason)
	}
	return fmt.Sprintf("%s @%d: %s", f.Rule, f.Position, f.Reason)
}

// Result carries the verdict together with everything the rules derived from
// the baseline, so a report can be rendered without access to the engine.
type Result struct {
	Verdict Verdict

	// Slot is the baseline slot the sample was stored in, or -1.
	Slot int

	Findings   []Finding // binding: static and counter rules
	Advisories []Finding // entropy rule

	ExpectedEntropy float64
	SampleEntropy   float64

	// Per-position classification of the baseline. Static[i] is true when
	// every baseline agrees on byte i; Expected[i] is that value. Counters[i]
	// is true when byte i is a linear counter with step Steps[i].
	Static   []bool
	Expected []byte
	Counters []bool
	Steps    []int
}

// Anomalous reports whether the verdict is Anomalous.
func (r Result) Anomalous() bool {
	return r.Verdict == Anomalous
}

package anomaly

import (
	"bufio"
	"fmt"
	"io"
)

// WriteReport renders r as the per-rule tables shown on the console: the
// expected value of each static byte (?? where bytes change), the step of
// each counter, the sample, and one alert line per finding.
func WriteReport(w io.Writer, sample []byte, r Result) error {
	bw := bufio.NewWriter(w)

	if r.Verdict == Stored {
		fmt.Fprintf(bw, "Stored to baseline slot %d\n", r.Slot)
		return bw.Flush()
	}

	fmt.Fprintln(bw, "RULE 1: Static bytes")
	fmt.Fprint(bw, "Expected Normal  : ")
	for i, static := range r.Static {
		if static {
			fmt.Fprintf(bw, "%02X ", r.Expected[i])
		} else {
			fmt.Fprint(bw, "?? ")
		}
	}
	fmt.Fprintln(bw)
	writeSample(bw, sample)
	writeFindings(bw, r.Findings, RuleStatic)

	fmt.Fprintln(bw, "RULE 2: Expected counter values")
	fmt.Fprint(bw, "Expected Normal  : ")
	for i, counter := range r.Counters {
		if counter {
			fmt.Fprintf(bw, "%-3d", r.Steps[i])
		} else {
			fmt.Fprint(bw, "   ")
		}
	}
	fmt.Fprintln(bw)
	writeSample(bw, sample)
	writeFindings(bw, r.Findings, RuleCounter)

	fmt.Fprintln(bw, "RULE 3: Entropy (advisory)")
	fmt.Fprintf(bw, "Expected Normal  : %.3f\n", r.ExpectedEntropy)
	fmt.Fprintf(bw, "Input Buffer     : %.3f\n", r.SampleEntropy)
	for _, f := range r.Advisories {
		fmt.Fprintf(bw, " [NOTE] --> %s\n", f.Reason)
	}

	fmt.Fprintf(bw, "Result: %s\n", r.Verdict)
	return bw.Flush()
}

func writeSample(w io.Writer, sample []byte) {
	fmt.Fprint(w, "Input Buffer     : ")
	for _, b := range sample {
		fmt.Fprintf(w, "%02X ", b)
	}
	fmt.Fprintln(w)
}

func writeFindings(w io.Writer, findings []Finding, rule Rule) {
	for _, f := range findings {
		if f.Rule != rule {
			continue
		}
		fmt.Fprintf(w, " [ALERT] --> Anomaly at position %d (%s)\n", f.Position, f.Reason)
	}
}

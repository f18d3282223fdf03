// Package anomaly classifies fixed-width memory samples against a small
// learned population of baseline samples.
//
// The first Config.Baselines samples are stored as the baseline. Every later
// sample is checked by three rules:
//
//   - static bytes: a position on which all baselines agree must keep that
//     value
//   - linear counters: a position that moved by the same non-zero step
//     between every pair of consecutive baselines must stay reachable from
//     the first baseline by whole steps
//   - entropy range: the sample's Shannon entropy should stay within a band
//     around the mean baseline entropy
//
// The first two rules decide the verdict. The entropy rule only produces
// advisories.
package anomaly

package anomaly

import "fmt"

// staticPositions marks the positions on which every baseline agrees.
func staticPositions(slots [][]byte) ([]bool, []byte) {
	width := len(slots[0])
	static := make([]bool, width)
	expected := make([]byte, width)
	for i := 0; i < width; i++ {
		ref := slots[0][i]
		static[i] = true
		for _, s := range slots[1:] {
			if s[i] != ref {
				static[i] = false
				break
			}
		}
		if static[i] {
			expected[i] = ref
		}
	}
	return static, expected
}

// counterPositions marks the positions that advance by the same non-zero
// step between every pair of consecutive baselines. Differences are taken on
// the byte values, without wrap-around.
func counterPositions(slots [][]byte) ([]bool, []int) {
	width := len(slots[0])
	counters := make([]bool, width)
	steps := make([]int, width)
	for i := 0; i < width; i++ {
		step := int(slots[1][i]) - int(slots[0][i])
		if step == 0 {
			continue
		}
		counter := true
		for j := 1; j < len(slots); j++ {
			if int(slots[j][i])-int(slots[j-1][i]) != step {
				counter = false
				break
			}
		}
		if counter {
			counters[i] = true
			steps[i] = step
		}
	}
	return counters, steps
}

func checkStatic(sample []byte, static []bool, expected []byte) []Finding {
	var out []Finding
	for i, ok := range static {
		if !ok || sample[i] == expected[i] {
			continue
		}
		out = append(out, Finding{
			Rule:     RuleStatic,
			Position: i,
			Expected: expected[i],
			Observed: sample[i],
			Reason:   fmt.Sprintf("previously static byte %02X has changed to %02X", expected[i], sample[i]),
		})
	}
	return out
}

func checkCounters(sample, first []byte, counters []bool, steps []int) []Finding {
	var out []Finding
	for i, ok := range counters {
		if !ok {
			continue
		}
		if euclidMod(int(sample[i])-int(first[i]), steps[i]) == 0 {
			continue
		}
		out = append(out, Finding{
			Rule:     RuleCounter,
			Position: i,
			Expected: first[i],
			Observed: sample[i],
			Step:     steps[i],
			Reason:   fmt.Sprintf("counter with step %d cannot reach %02X from %02X", steps[i], sample[i], first[i]),
		})
	}
	return out
}

// euclidMod returns the remainder of a divided by m in [0, |m|).
func euclidMod(a, m int) int {
	if m < 0 {
		m = -m
	}
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}

func checkEntropy(expected, observed, low, high float64) (Finding, bool) {
	switch {
	case observed > expected*high:
		return Finding{
			Rule:     RuleEntropy,
			Position: -1,
			Reason:   fmt.Sprintf("entropy %.3f above %.1fx baseline %.3f", observed, high, expected),
		}, true
	case observed < expected*low:
		return Finding{
			Rule:     RuleEntropy,
			Position: -1,
			Reason:   fmt.Sprintf("entropy %.3f below %.1fx baseline %.3f", observed, low, expected),
		}, true
	}
	return Finding{}, false
}

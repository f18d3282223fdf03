package anomaly

import "math"

// Entropy returns the Shannon entropy of data in bits per byte, computed over
// the frequency of each of the 256 byte values. An empty slice has entropy 0.
func Entropy(data []byte) float64 {
	if len(data) == 0 {
		return 0
	}
	var counts [256]int
	for _, b := range data {
		counts[b]++
	}
	n := float64(len(data))
	var h float64
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		h += p * math.Log2(1/p)
	}
	return h
}

func meanEntropy(samples [][]byte) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += Entropy(s)
	}
	return sum / float64(len(samples))
}

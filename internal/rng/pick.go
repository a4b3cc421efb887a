package rng

// Shuffle permutes s in place with a Fisher-Yates pass from the end,
// swapping each index i with floor(r()*(i+1)).
func Shuffle[T any](r Source, s []T) []T {
	for i := len(s) - 1; i > 0; i-- {
		j := int(r.Float64() * float64(i+1))
		s[i], s[j] = s[j], s[i]
	}
	return s
}

// Choose returns a uniformly chosen element. It returns the zero value
// without consuming the stream when s is empty.
func Choose[T any](r Source, s []T) T {
	var zero T
	if len(s) == 0 {
		return zero
	}
	return s[int(r.Float64()*float64(len(s)))]
}

// WeightedChoose picks an element with probability proportional to its
// weight. Non-positive weights count as 1. The roll is walked down by each
// weight in turn; the last element is returned if rounding skips them all.
func WeightedChoose[T any](r Source, items []T, weight func(T) float64) T {
	var zero T
	if len(items) == 0 {
		return zero
	}

	w := func(item T) float64 {
		if v := weight(item); v > 0 {
			return v
		}
		return 1
	}

	total := 0.0
	for _, item := range items {
		total += w(item)
	}

	roll := r.Float64() * total
	for _, item := range items {
		roll -= w(item)
		if roll <= 0 {
			return item
		}
	}
	return items[len(items)-1]
}

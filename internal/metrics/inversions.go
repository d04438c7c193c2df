package metrics

import "github.com/san-kum/soapsort/internal/soap"

// Sample is the array disorder after one interaction. Swaps is cumulative.
type Sample struct {
	Interaction int `json:"interaction"`
	Inversions  int `json:"inversions"`
	Swaps       int `json:"swaps"`
}

// Inversions watches the slice being sorted and records its inversion count
// after every interaction. It must wrap the same slice passed to Sort.
type Inversions[T soap.Number] struct {
	name    string
	arr     []T
	stride  int
	swaps   int
	history []Sample
}

// NewInversions samples every stride-th interaction; stride < 1 samples all.
func NewInversions[T soap.Number](arr []T, stride int) *Inversions[T] {
	if stride < 1 {
		stride = 1
	}
	m := &Inversions[T]{
		name:   "inversions",
		arr:    arr,
		stride: stride,
	}
	m.Reset()
	return m
}

func (m *Inversions[T]) Name() string { return m.name }

func (m *Inversions[T]) OnInteraction(ev soap.Interaction) {
	if ev.Number%m.stride != 0 {
		return
	}
	m.history = append(m.history, Sample{
		Interaction: ev.Number,
		Inversions:  CountInversions(m.arr),
		Swaps:       m.swaps,
	})
}

func (m *Inversions[T]) OnSwap(soap.Swap) { m.swaps++ }

func (m *Inversions[T]) Value() float64 { return float64(CountInversions(m.arr)) }

// Reset restarts the history with the current disorder as interaction 0.
func (m *Inversions[T]) Reset() {
	m.swaps = 0
	m.history = append(m.history[:0], Sample{Inversions: CountInversions(m.arr)})
}

func (m *Inversions[T]) History() []Sample { return m.history }

// CountInversions counts pairs i < j with arr[i] > arr[j] by merge sort on
// a copy. arr is left untouched.
func CountInversions[T soap.Number](arr []T) int {
	if len(arr) < 2 {
		return 0
	}
	work := make([]T, len(arr))
	copy(work, arr)
	buf := make([]T, len(arr))
	return mergeCount(work, buf)
}

func mergeCount[T soap.Number](a, buf []T) int {
	n := len(a)
	if n < 2 {
		return 0
	}
	mid := n / 2
	count := mergeCount(a[:mid], buf[:mid]) + mergeCount(a[mid:], buf[mid:])

	i, j, k := 0, mid, 0
	for i < mid && j < n {
		if a[i] <= a[j] {
			buf[k] = a[i]
			i++
		} else {
			buf[k] = a[j]
			count += mid - i
			j++
		}
		k++
	}
	for i < mid {
		buf[k] = a[i]
		i++
		k++
	}
	for j < n {
		buf[k] = a[j]
		j++
		k++
	}
	copy(a, buf[:n])
	return count
}

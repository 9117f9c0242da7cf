package domain

// Partition splits items into consecutive batches of at most size elements.
// The last batch holds the remainder. A size below 1 is treated as 1.
func Partition[T any](items []T, size int) [][]T {
	if size < 1 {
		size = 1
	}
	batches := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		batches = append(batches, items[start:end:end])
	}
	return batches
}

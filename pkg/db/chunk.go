package db

// Chunk splits items into slices of at most size elements, preserving
// order. The store caps IN-predicate membership, so id lookups are issued
// per chunk and results concatenated in the original relative order.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 || len(items) == 0 {
		return nil
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for size < len(items) {
		chunks = append(chunks, items[:size])
		items = items[size:]
	}
	return append(chunks, items)
}

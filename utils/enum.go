package utils

// CycleEnum steps current by direction through the values 0..last,
// wrapping at both ends.
func CycleEnum[T ~int](current T, direction int, last T) T {
	n := int(last) + 1
	return T(((int(current)+direction)%n + n) % n)
}

package utils

// Value dereferences v, returning the zero value for nil. Optional API fields
// such as page links arrive as pointers.
func Value[T any](v *T) T {
	if v == nil {
		return *new(T)
	}
	return *v
}

func Ptr[T any](v T) *T {
	return &v
}

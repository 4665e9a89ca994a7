package sse

// ClosedObject exports closedObject for testing.
func ClosedObject(p []byte) bool {
	return closedObject(p)
}

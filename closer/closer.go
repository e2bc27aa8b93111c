package closer

// Closer is an entity that can be closed exactly once. Subsequent calls to
// Close are no-ops
type Closer interface {
	Close()
	IsClosed() <-chan struct{}
}

// IsClosed reports whether the provided Closer has been closed
func IsClosed(c Closer) bool {
	select {
	case <-c.IsClosed():
		return true
	default:
		return false
	}
}

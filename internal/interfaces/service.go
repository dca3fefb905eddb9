package interfaces

// Service is a network surface of the escrow daemon. Start must not block;
// Stop drains in-flight requests before returning.
type Service interface {
	Start() error
	Stop()
}

package interfaces

// Service interface defines the methods that every kind of interface the
// daemon exposes must be compliant with.
type Service interface {
	Start() error
	Stop()
}

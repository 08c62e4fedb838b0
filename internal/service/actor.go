package service

// Actor identifies the authenticated caller of an operation. Identity is
// always passed explicitly; no service reads ambient session state.
type Actor struct {
	ID   uint
	Role string
}

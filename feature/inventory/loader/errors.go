package loader

import "fmt"

// IntegrityViolation reports a uniqueness constraint broken during a write:
// duplicate (device, path) directory, duplicate (directory, path) media file
// or duplicate device slug. It is fatal to the enclosing transaction and is
// never retried; duplicate paths within one dump pass are a producer bug that
// must surface loudly.
type IntegrityViolation struct {
	Message string
	Err     error
}

func (e *IntegrityViolation) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *IntegrityViolation) Unwrap() error {
	return e.Err
}

// IntegrityFault reports an engine internal inconsistency: an update record
// arrived without its expected attached media file reference.
type IntegrityFault struct {
	Path string
}

func (e *IntegrityFault) Error() string {
	return fmt.Sprintf("update record for path %q has no attached media file", e.Path)
}

package mesh

import (
	"github.com/osuushi/guardplan/fault"
	"github.com/pkg/errors"
)

// Threading errors up and down every ring walk, ear test and edge flip would
// add a ton of complexity to the code. Instead, we panic with a
// TriangulationError, and Triangulate recovers to convert it to a fault.

type TriangulationError struct {
	error
}

// Panic with a TriangulationError.
func fatalf(format string, args ...interface{}) {
	panic(TriangulationError{errors.Errorf(format, args...)})
}

// Converts a recovered TriangulationError to a TRIANGULATION_FAILED fault.
// Anything else is a programming error and keeps panicking.
func HandleTriangulatePanicRecover(r interface{}) error {
	if r != nil {
		if triangulationError, ok := r.(TriangulationError); ok {
			return fault.WrapWithCode(triangulationError.error, fault.CodeTriangulationFailed, "triangulation failed")
		}
		panic(r)
	}
	return nil
}

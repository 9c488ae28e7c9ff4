package fault

import "errors"

// GetCode extracts the code from err. A nil error is CodeOK and a foreign
// error is CodeInternal.
func GetCode(err error) Code {
	if err == nil {
		return CodeOK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// GetMeta returns the metadata of the outermost *Error in err's chain.
func GetMeta(err error) map[string]interface{} {
	var e *Error
	if errors.As(err, &e) {
		return e.Meta
	}
	return nil
}

// GetMessage returns the message of the outermost *Error, or err.Error().
func GetMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

func IsCode(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

func IsInvalidGeometry(err error) bool {
	return IsCode(err, CodeInvalidGeometry)
}

func IsTriangulationFailed(err error) bool {
	return IsCode(err, CodeTriangulationFailed)
}

func IsEmptyGuardGroup(err error) bool {
	return IsCode(err, CodeEmptyGuardGroup)
}

func IsMissingField(err error) bool {
	return IsCode(err, CodeMissingField)
}

// InvalidGeometry is shorthand for Newf(CodeInvalidGeometry, ...).
func InvalidGeometry(format string, args ...interface{}) *Error {
	return Newf(CodeInvalidGeometry, format, args...)
}

// MissingField reports a required document field that was absent. The field
// path is kept in the metadata under "field".
func MissingField(path string) *Error {
	return Newf(CodeMissingField, "required field %q is missing", path).WithMeta("field", path)
}

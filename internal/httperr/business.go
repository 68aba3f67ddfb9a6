package httperr

import "errors"

// BusinessError is a rule violation identified by a stable snake_case code.
// The handlers layer decides the status and message for each code.
type BusinessError string

func (e BusinessError) Error() string {
	return string(e)
}

func ErrBusiness(code string) error {
	return BusinessError(code)
}

// Code returns the business code carried by err, if any.
func Code(err error) (string, bool) {
	var be BusinessError
	if errors.As(err, &be) {
		return string(be), true
	}
	return "", false
}

func IsBusiness(err error, code string) bool {
	got, ok := Code(err)
	return ok && got == code
}

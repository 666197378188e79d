package httperr

import "errors"

// BusinessError é uma regra de negócio violada. Code vira o error_code da
// resposta; Cause, quando existe, fica só no log.
type BusinessError struct {
	Code  string
	Cause error
}

func (e BusinessError) Error() string {
	if e.Cause != nil {
		return e.Code + ": " + e.Cause.Error()
	}
	return e.Code
}

func (e BusinessError) Unwrap() error {
	return e.Cause
}

// Is compara só pelo código, para que errors.Is funcione com a causa anexada.
func (e BusinessError) Is(target error) bool {
	t, ok := target.(BusinessError)
	return ok && t.Code == e.Code
}

func ErrBusiness(code string) error {
	return BusinessError{Code: code}
}

// Wrap anexa a falha de infraestrutura que originou a regra violada.
func Wrap(code string, cause error) error {
	return BusinessError{Code: code, Cause: cause}
}

func IsBusiness(err error, code string) bool {
	c, ok := Code(err)
	return ok && c == code
}

func Code(err error) (string, bool) {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code, true
	}
	return "", false
}

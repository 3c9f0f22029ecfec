package service

import "errors"

// ErrorKind clasifica los fallos que AuthService expone a sus llamadores.
type ErrorKind string

const (
	KindValidation         ErrorKind = "ValidationError"
	KindDuplicateAccount   ErrorKind = "DuplicateAccount"
	KindAccountNotFound    ErrorKind = "AccountNotFound"
	KindAlreadyVerified    ErrorKind = "AlreadyVerified"
	KindOtpNotFound        ErrorKind = "OtpNotFound"
	KindOtpExpired         ErrorKind = "OtpExpired"
	KindInvalidOtp         ErrorKind = "InvalidOtp"
	KindInvalidCredentials ErrorKind = "InvalidCredentials"
	KindInvalidToken       ErrorKind = "InvalidToken"
	KindRateLimited        ErrorKind = "RateLimited"
	KindDependencyFailure  ErrorKind = "DependencyFailure"
)

// Error es el error tipado de la capa de servicio. Message siempre es seguro
// para mostrar al cliente; Err conserva la causa interna para logs.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is compara por Kind, asi errors.Is(err, ErrInvalidOtp) funciona con cualquier mensaje.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrValidation         = &Error{Kind: KindValidation, Message: "invalid request"}
	ErrDuplicateAccount   = &Error{Kind: KindDuplicateAccount, Message: "User already exists"}
	ErrAccountNotFound    = &Error{Kind: KindAccountNotFound, Message: "User not found"}
	ErrAlreadyVerified    = &Error{Kind: KindAlreadyVerified, Message: "Account already verified"}
	ErrOtpNotFound        = &Error{Kind: KindOtpNotFound, Message: "OTP not found or expired"}
	ErrOtpExpired         = &Error{Kind: KindOtpExpired, Message: "OTP expired, request a new one"}
	ErrInvalidOtp         = &Error{Kind: KindInvalidOtp, Message: "Invalid OTP, try again"}
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials, Message: "Invalid email or password"}
	ErrInvalidToken       = &Error{Kind: KindInvalidToken, Message: "Invalid or expired token"}
	ErrRateLimited        = &Error{Kind: KindRateLimited, Message: "Too many requests, try again later"}
	ErrDependencyFailure  = &Error{Kind: KindDependencyFailure, Message: "Server error"}
)

func validationError(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

func dependencyFailure(err error) error {
	return &Error{Kind: KindDependencyFailure, Message: ErrDependencyFailure.Message, Err: err}
}

// KindOf devuelve la clase de err; cualquier error no tipado cuenta como DependencyFailure.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindDependencyFailure
}

// PublicMessage devuelve el mensaje apto para el cliente.
func PublicMessage(err error) string {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Message
	}
	return ErrDependencyFailure.Message
}

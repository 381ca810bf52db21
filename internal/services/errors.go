package services

import (
	"errors"
	"fmt"
)

// Sentinel errors of the supporting services.
var (
	ErrNoActiveBatch       = errors.New("no daily process opened for today")
	ErrQRCodeNotFound      = errors.New("qr code not found")
	ErrLineNotFound        = errors.New("line not found")
	ErrPatientNotFound     = errors.New("patient not found")
	ErrProcessNotFound     = errors.New("medication process not found")
	ErrActiveProcessExists = errors.New("patient already has an active process for this step today")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrUnauthenticated     = errors.New("unauthenticated")
	ErrUsernameTaken       = errors.New("username already registered")
)

// ValidationError carries a caller-facing message for a malformed request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// DispatchErrorKind classifies why a scan dispatch failed as a whole.
type DispatchErrorKind string

const (
	KindInvalidToken        DispatchErrorKind = "InvalidToken"
	KindUnauthorized        DispatchErrorKind = "Unauthorized"
	KindNoActiveBatch       DispatchErrorKind = "NoActiveBatch"
	KindUnknownLine         DispatchErrorKind = "UnknownLine"
	KindNoEligibleProcesses DispatchErrorKind = "NoEligibleProcesses"
	KindInvalidRequest      DispatchErrorKind = "InvalidRequest"
	KindStoreUnavailable    DispatchErrorKind = "StoreUnavailable"
)

var userMessages = map[DispatchErrorKind]string{
	KindInvalidToken:        "El código QR no es válido, está inactivo o no corresponde a este proceso",
	KindUnauthorized:        "Debe iniciar sesión para registrar escaneos",
	KindNoActiveBatch:       "No hay un proceso diario abierto para hoy",
	KindUnknownLine:         "La línea de destino no existe",
	KindNoEligibleProcesses: "No hay pacientes pendientes para este escaneo en la línea seleccionada",
	KindInvalidRequest:      "La solicitud de escaneo es inválida",
	KindStoreUnavailable:    "Servicio no disponible temporalmente, intente de nuevo",
}

// UserMessage is the staff-facing text for k.
func (k DispatchErrorKind) UserMessage() string { return userMessages[k] }

// Retriable reports whether the caller may simply repeat the scan.
func (k DispatchErrorKind) Retriable() bool { return k == KindStoreUnavailable }

// DispatchError is the typed failure of DispatchServiceContract.Dispatch.
// UserMessage is safe to show to staff; Err is for logs only.
type DispatchError struct {
	Kind        DispatchErrorKind
	UserMessage string
	Err         error
}

func (e *DispatchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *DispatchError) Unwrap() error { return e.Err }

func newDispatchError(kind DispatchErrorKind, err error) *DispatchError {
	return &DispatchError{Kind: kind, UserMessage: userMessages[kind], Err: err}
}

// AsDispatchError extracts a *DispatchError from err's chain.
func AsDispatchError(err error) (*DispatchError, bool) {
	var de *DispatchError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

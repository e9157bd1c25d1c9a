package services

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/choprek/utils"
	"gorm.io/gorm"
)

// Precondition errors. They are detected before anything is written and reach the caller as-is.
var (
	ErrInvalidInput            = errors.New("invalid input")
	ErrPermissionDenied        = errors.New("permission denied")
	ErrNoActiveMenu            = errors.New("no active menu")
	ErrMenuNotFound            = errors.New("menu not found")
	ErrMenuActive              = errors.New("cannot delete the active menu")
	ErrOptionNotOnMenu         = errors.New("option is not on the active menu")
	ErrOrderNotFound           = errors.New("order not found")
	ErrOrderAlreadyAssigned    = errors.New("order already assigned to a delivery")
	ErrDeliveryNotFound        = errors.New("delivery not found")
	ErrDriverNotFound          = errors.New("driver not found")
	ErrDriverHasDeliveries     = errors.New("cannot delete driver with existing deliveries")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrUserNotFound            = errors.New("user not found")
	ErrEmailTaken              = errors.New("email already registered")
	ErrInvalidCredentials      = errors.New("invalid credentials")
)

var preconditionErrors = []error{
	ErrInvalidInput,
	ErrPermissionDenied,
	ErrNoActiveMenu,
	ErrMenuNotFound,
	ErrMenuActive,
	ErrOptionNotOnMenu,
	ErrOrderNotFound,
	ErrOrderAlreadyAssigned,
	ErrDeliveryNotFound,
	ErrDriverNotFound,
	ErrDriverHasDeliveries,
	ErrInvalidStatusTransition,
	ErrUserNotFound,
	ErrEmailTaken,
	ErrInvalidCredentials,
}

// OperationError is returned when the store fails underneath an operation.
// The message only names the operation; the cause stays reachable through Unwrap.
type OperationError struct {
	Op  string
	Err error
}

func (e *OperationError) Error() string {
	return "failed to " + e.Op
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

func (e *OperationError) Cause() error {
	return e.Err
}

// IsPrecondition reports whether err is one of the business-rule errors above.
func IsPrecondition(err error) bool {
	for _, target := range preconditionErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// fail logs the original error and normalises store failures into an OperationError.
func fail(op string, err error, fields logrus.Fields) error {
	if err == nil {
		return nil
	}
	if IsPrecondition(err) {
		utils.InfoLogger.WithFields(fields).WithError(err).Infof("%s rejected", op)
		return err
	}
	utils.ErrorLogger.WithFields(fields).WithError(err).Errorf("failed to %s", op)
	return &OperationError{Op: op, Err: err}
}

func invalid(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidInput, format, args...)
}

func notFound(err error, sentinel error, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Wrapf(sentinel, "id %s", id)
	}
	return err
}

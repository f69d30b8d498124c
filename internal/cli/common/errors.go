package common

import (
	"github.com/ynhstate/ynhstate/faults"
)

func ValidationError(message string, cause error) error {
	return faults.NewTypedError(faults.ValidationError, message, cause)
}

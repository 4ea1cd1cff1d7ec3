package ledger

import (
	"errors"
	"fmt"
	"strings"
)

// Errors returned by the ledger client.
var (
	ErrAssetNotFound = errors.New("asset not found")
	ErrBadAmount     = errors.New("invalid amount")
	ErrNotConnected  = errors.New("not connected to the ledger network")
)

// missingFunctionMarkers are substrings of remote errors raised when a query reaches a function the deployed contract
// does not have.
var missingFunctionMarkers = []string{ //nolint:gochecknoglobals // constant list
	"Query failed",
	"not found in contract",
}

// FunctionError is returned when the contract rejects a call in a way that suggests the function is missing from the
// deployed contract. The remote error is kept in Err.
type FunctionError struct {
	Function string
	Contract string
	Err      error
}

func (e *FunctionError) Error() string {
	return fmt.Sprintf("function %s not found in contract %q: check the contract provides this function and its name "+
		"is correct", e.Function, e.Contract)
}

func (e *FunctionError) Unwrap() error {
	return e.Err
}

// enrich wraps err in a FunctionError when its message carries a missing function marker.
func enrich(contract, function string, err error) error {
	for _, m := range missingFunctionMarkers {
		if strings.Contains(err.Error(), m) {
			return &FunctionError{Function: function, Contract: contract, Err: err}
		}
	}

	return err
}

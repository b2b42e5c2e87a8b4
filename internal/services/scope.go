package services

import (
	"fmt"

	apperrors "ecomcli/internal/errors"
)

// Scope selects which period of a report a query reads
type Scope string

const (
	ScopeCurrent  Scope = "current"
	ScopePrevious Scope = "previous"
)

// ParseScope parses a scope query value; empty means current
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case "", ScopeCurrent:
		return ScopeCurrent, nil
	case ScopePrevious:
		return ScopePrevious, nil
	}
	return "", apperrors.NewInvalidParameter(fmt.Sprintf("unsupported scope %q, expected current or previous", s)).
		WithContext("scope", s)
}

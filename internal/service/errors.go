package service

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	ErrImageUnresolved    = errors.New("image unresolved")
	ErrPersistenceCorrupt = errors.New("persisted cart is corrupt")
	ErrInvalidCartItem    = errors.New("invalid cart item")
	ErrInvalidSession     = errors.New("invalid cart session")
	ErrCartEmpty          = errors.New("cart is empty")
	ErrValidationFailed   = errors.New("validation failed")
	ErrCheckoutClosed     = errors.New("checkout already submitted")
	ErrCheckoutNotValid   = errors.New("checkout not validated")
)

// ValidationError 字段级校验错误，Fields 为字段到提示文案的映射
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return ErrValidationFailed.Error() + ": " + strings.Join(keys, ", ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind identifies which inventory invariant was violated
type ErrorKind string

const (
	KindMissingField    ErrorKind = "missing_field"
	KindMissingSheet    ErrorKind = "missing_sheet"
	KindUnknownHost     ErrorKind = "unknown_host"
	KindInvalidSettings ErrorKind = "invalid_settings"
)

// Domain errors - one sentinel per kind, matched through errors.Is
var (
	ErrMissingField    = errors.New("row is missing host_name or group")
	ErrMissingSheet    = errors.New("hosts sheet not found")
	ErrUnknownHost     = errors.New("unknown host_name")
	ErrInvalidSettings = errors.New("invalid settings document")
)

// InventoryError carries the context of a fatal inventory error. Row is the
// 1-based data row index within Sheet, or 0 when not applicable.
type InventoryError struct {
	Kind   ErrorKind
	Sheet  string
	Row    int
	Field  string
	Host   any
	Group  any
	Detail string
}

func (e *InventoryError) Error() string {
	var b strings.Builder
	b.WriteString(e.sentinel().Error())

	var parts []string
	if e.Sheet != "" {
		parts = append(parts, fmt.Sprintf("sheet=%s", e.Sheet))
	}
	if e.Row > 0 {
		parts = append(parts, fmt.Sprintf("row=%d", e.Row))
	}
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Kind == KindMissingField || e.Kind == KindUnknownHost {
		parts = append(parts, fmt.Sprintf("host_name=%s", formatValue(e.Host)))
	}
	if e.Kind == KindMissingField {
		parts = append(parts, fmt.Sprintf("group=%s", formatValue(e.Group)))
	}
	if len(parts) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(parts, " "))
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

// Is lets errors.Is match the kind sentinel
func (e *InventoryError) Is(target error) bool {
	return target == e.sentinel()
}

func (e *InventoryError) sentinel() error {
	switch e.Kind {
	case KindMissingField:
		return ErrMissingField
	case KindMissingSheet:
		return ErrMissingSheet
	case KindUnknownHost:
		return ErrUnknownHost
	default:
		return ErrInvalidSettings
	}
}

func formatValue(v any) string {
	if v == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%v", v)
}

// Error constructors with context
func NewMissingFieldError(sheet string, row int, field string, host, group any) error {
	return &InventoryError{Kind: KindMissingField, Sheet: sheet, Row: row, Field: field, Host: host, Group: group}
}

func NewMissingSheetError(sheet string) error {
	return &InventoryError{Kind: KindMissingSheet, Sheet: sheet}
}

func NewUnknownHostError(sheet string, row int, host string) error {
	return &InventoryError{Kind: KindUnknownHost, Sheet: sheet, Row: row, Host: host}
}

func NewInvalidSettingsError(field, detail string) error {
	return &InventoryError{Kind: KindInvalidSettings, Field: field, Detail: detail}
}

// KindOf returns the kind of an inventory error, or "" for other errors
func KindOf(err error) ErrorKind {
	var invErr *InventoryError
	if errors.As(err, &invErr) {
		return invErr.Kind
	}
	return ""
}

// IsInventoryError reports whether err violates an inventory invariant
func IsInventoryError(err error) bool {
	return KindOf(err) != ""
}

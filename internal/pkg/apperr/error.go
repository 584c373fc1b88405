package apperr

import (
	"fmt"
	"strings"
)

const (
	invalidArgumentCode  = "INVALID_ARGUMENT"
	invalidValueTypeCode = "INVALID_VALUE_TYPE"
	internalErrorCode    = "INTERNAL_ERROR"
	encodeCode           = "ENCODE_ERROR"
	provisionCode        = "PROVISION_ERROR"
	publishCode          = "PUBLISH_ERROR"
)

type messageCause struct {
	Msg   string
	Cause error
}

func (e *messageCause) Message() string   { return e.Msg }
func (e *messageCause) CauseError() error { return e.Cause }
func (e *messageCause) Unwrap() error     { return e.Cause }

func formatError(code, msg string, cause error) string {
	if cause != nil {
		return fmt.Sprintf("[%s] %s: %v", code, msg, cause)
	}
	return fmt.Sprintf("[%s] %s", code, msg)
}

type InvalidArgErr struct {
	messageCause
}

func NewInvalidArgErr(msg string, cause error) *InvalidArgErr {
	return &InvalidArgErr{messageCause: messageCause{Msg: msg, Cause: cause}}
}

func (e *InvalidArgErr) Error() string { return formatError(invalidArgumentCode, e.Msg, e.Cause) }
func (e *InvalidArgErr) Code() string  { return invalidArgumentCode }

// InvalidValueTypeErr is returned when a binding is given a value type that no
// serializer can handle. It keeps the rejected type and the accepted forms so
// callers can report both.
type InvalidValueTypeErr struct {
	messageCause
	Field    string
	TypeName string
	Accepted []string
}

func NewInvalidValueTypeErr(field, typeName string, accepted []string) *InvalidValueTypeErr {
	msg := fmt.Sprintf("the value of %s must be %s. The type %s does not qualify",
		field, joinAccepted(accepted), typeName)
	return &InvalidValueTypeErr{
		messageCause: messageCause{Msg: msg},
		Field:        field,
		TypeName:     typeName,
		Accepted:     append([]string(nil), accepted...),
	}
}

func (e *InvalidValueTypeErr) Error() string { return formatError(invalidValueTypeCode, e.Msg, e.Cause) }
func (e *InvalidValueTypeErr) Code() string  { return invalidValueTypeCode }

type InternalErr struct {
	messageCause
}

func NewInternalErr(msg string, cause error) *InternalErr {
	return &InternalErr{messageCause: messageCause{Msg: msg, Cause: cause}}
}

func (e *InternalErr) Error() string { return formatError(internalErrorCode, e.Msg, e.Cause) }
func (e *InternalErr) Code() string  { return internalErrorCode }

type EncodeErr struct {
	messageCause
}

func NewEncodeErr(msg string, cause error) *EncodeErr {
	return &EncodeErr{messageCause: messageCause{Msg: msg, Cause: cause}}
}

func (e *EncodeErr) Error() string { return formatError(encodeCode, e.Msg, e.Cause) }
func (e *EncodeErr) Code() string  { return encodeCode }

type ProvisionErr struct {
	messageCause
}

func NewProvisionErr(msg string, cause error) *ProvisionErr {
	return &ProvisionErr{messageCause: messageCause{Msg: msg, Cause: cause}}
}

func (e *ProvisionErr) Error() string { return formatError(provisionCode, e.Msg, e.Cause) }
func (e *ProvisionErr) Code() string  { return provisionCode }

type PublishErr struct {
	messageCause
}

func NewPublishErr(msg string, cause error) *PublishErr {
	return &PublishErr{messageCause: messageCause{Msg: msg, Cause: cause}}
}

func (e *PublishErr) Error() string { return formatError(publishCode, e.Msg, e.Cause) }
func (e *PublishErr) Code() string  { return publishCode }

// joinAccepted renders "a, b, c or d".
func joinAccepted(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " or " + items[len(items)-1]
}

package entity

import (
	"reflect"

	"google.golang.org/protobuf/proto"
)

// SpecificRecord is implemented by Avro record types generated from a schema.
// Generated structs carry avro field tags and return their writer schema.
type SpecificRecord interface {
	Schema() string
	SchemaName() string
}

// ValueKind tags the serializer family a value type belongs to.
type ValueKind int

const (
	ValueKindUnset ValueKind = iota
	ValueKindRawBytes
	ValueKindText
	ValueKindSchemaRecord
	ValueKindProtoMessage
)

var (
	bytesType          = reflect.TypeOf([]byte(nil))
	stringType         = reflect.TypeOf("")
	specificRecordType = reflect.TypeOf((*SpecificRecord)(nil)).Elem()
	protoMessageType   = reflect.TypeOf((*proto.Message)(nil)).Elem()
)

// acceptedValueForms lists the value forms in the order they are reported.
var acceptedValueForms = []string{"[]byte", "string", "SpecificRecord", "proto.Message"}

func (k ValueKind) String() string {
	switch k {
	case ValueKindRawBytes:
		return "raw_bytes"
	case ValueKindText:
		return "text"
	case ValueKindSchemaRecord:
		return "schema_record"
	case ValueKindProtoMessage:
		return "proto_message"
	default:
		return "unset"
	}
}

// ClassifyValueType reports which serializer family t belongs to. The second
// result is false when t is nil or fits none of them.
func ClassifyValueType(t reflect.Type) (ValueKind, bool) {
	switch {
	case t == nil:
		return ValueKindUnset, false
	case t == bytesType:
		return ValueKindRawBytes, true
	case t == stringType:
		return ValueKindText, true
	case implements(t, specificRecordType):
		return ValueKindSchemaRecord, true
	case implements(t, protoMessageType):
		return ValueKindProtoMessage, true
	}
	return ValueKindUnset, false
}

// implements also checks *t so that generated structs with pointer receivers
// can be named by their struct type.
func implements(t, iface reflect.Type) bool {
	if t.Implements(iface) {
		return true
	}
	return t.Kind() != reflect.Pointer && t.Kind() != reflect.Interface && reflect.PointerTo(t).Implements(iface)
}

func typeName(t reflect.Type) string {
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}

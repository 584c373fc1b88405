package entity

import (
	"reflect"
	"strings"
	"sync"

	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
)

// TypeRegistry resolves declarative type names (as found in config files) to
// Go types. Unknown names fall back to the linked protobuf message registry,
// so any generated message can be named by its full name.
type TypeRegistry struct {
	mu    sync.RWMutex
	types map[string]reflect.Type
	proto *protoregistry.Types
}

// NewTypeRegistry returns a registry with the built-in names bytes, string,
// int64 and int32 registered.
func NewTypeRegistry() *TypeRegistry {
	r := &TypeRegistry{
		types: make(map[string]reflect.Type),
		proto: protoregistry.GlobalTypes,
	}
	r.Register("bytes", bytesType)
	r.RegisterValue("string", "")
	r.RegisterValue("int64", int64(0))
	r.RegisterValue("int32", int32(0))
	return r
}

// Register binds name to t, replacing any earlier binding. Names are case-insensitive.
func (r *TypeRegistry) Register(name string, t reflect.Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[normalize(name)] = t
}

// RegisterValue binds name to the dynamic type of v.
func (r *TypeRegistry) RegisterValue(name string, v any) {
	r.Register(name, reflect.TypeOf(v))
}

// Lookup returns the type bound to name.
func (r *TypeRegistry) Lookup(name string) (reflect.Type, bool) {
	r.mu.RLock()
	t, ok := r.types[normalize(name)]
	r.mu.RUnlock()
	if ok {
		return t, true
	}
	if r.proto == nil {
		return nil, false
	}

	mt, err := r.proto.FindMessageByName(protoreflect.FullName(strings.TrimSpace(name)))
	if err != nil {
		return nil, false
	}
	return reflect.TypeOf(mt.Zero().Interface()), true
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

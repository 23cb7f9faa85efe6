package wrenpp

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// TypeID is the stable per-registry identity of a native type exposed
// to script code.
type TypeID uint32

// typeInfo records the script-side identity of a registered native type.
type typeInfo struct {
	id     TypeID
	typ    reflect.Type
	module string
	class  string
}

// TypeRegistry assigns stable ids to native types and records the
// script-side class and module they are bound to. Registration is
// explicit: a type gets its id when it is bound to a class, and binding
// the same type twice, or two types to the same class, is an error.
//
// A registry belongs to one VM. It is safe for concurrent reads, which
// lets bound methods resolve types while another goroutine inspects the
// registry for diagnostics.
type TypeRegistry struct {
	mu     sync.RWMutex
	byType map[reflect.Type]*typeInfo
	byID   map[TypeID]*typeInfo
	nextID TypeID
}

func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		byType: make(map[reflect.Type]*typeInfo),
		byID:   make(map[TypeID]*typeInfo),
		nextID: 1,
	}
}

// Register binds a native type to a script class, assigning its id.
func (r *TypeRegistry) Register(module, class string, typ reflect.Type) (TypeID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byType[typ]; ok {
		return 0, fmt.Errorf("wrenpp: type %s is already registered as %s.%s",
			typ, existing.module, existing.class)
	}
	for _, info := range r.byType {
		if info.module == module && info.class == class {
			return 0, fmt.Errorf("wrenpp: class %s.%s is already bound to type %s",
				module, class, info.typ)
		}
	}

	info := &typeInfo{id: r.nextID, typ: typ, module: module, class: class}
	r.nextID++
	r.byType[typ] = info
	r.byID[info.id] = info
	return info.id, nil
}

// IDOf returns the id of a registered type.
func (r *TypeRegistry) IDOf(typ reflect.Type) (TypeID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.byType[typ]
	if !ok {
		return 0, &NotRegisteredError{Type: typ}
	}
	return info.id, nil
}

// ClassNameOf returns the script class a registered type is bound to.
func (r *TypeRegistry) ClassNameOf(typ reflect.Type) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.byType[typ]
	if !ok {
		return "", &NotRegisteredError{Type: typ}
	}
	return info.class, nil
}

// ModuleNameOf returns the module a registered type is bound to.
func (r *TypeRegistry) ModuleNameOf(typ reflect.Type) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.byType[typ]
	if !ok {
		return "", &NotRegisteredError{Type: typ}
	}
	return info.module, nil
}

func (r *TypeRegistry) lookupID(id TypeID) (*typeInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.byID[id]
	return info, ok
}

func (r *TypeRegistry) lookupType(typ reflect.Type) (*typeInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.byType[typ]
	return info, ok
}

// RegisteredTypes lists registered types in id order. Diagnostic aid.
func (r *TypeRegistry) RegisteredTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	infos := make([]*typeInfo, 0, len(r.byType))
	for _, info := range r.byType {
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].id < infos[j].id })
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = fmt.Sprintf("%s.%s (%s)", info.module, info.class, info.typ)
	}
	return names
}

package wrenpp

import (
	"errors"
	"reflect"
	"testing"
)

type alpha struct{ a int }
type beta struct{ b int }

func TestTypeRegistryAssignsDistinctStableIDs(t *testing.T) {
	r := NewTypeRegistry()
	aID, err := r.Register("main", "Alpha", reflect.TypeOf(alpha{}))
	if err != nil {
		t.Fatal(err)
	}
	bID, err := r.Register("main", "Beta", reflect.TypeOf(beta{}))
	if err != nil {
		t.Fatal(err)
	}
	if aID == bID {
		t.Fatalf("distinct types share id %d", aID)
	}

	for i := 0; i < 3; i++ {
		got, err := r.IDOf(reflect.TypeOf(alpha{}))
		if err != nil {
			t.Fatal(err)
		}
		if got != aID {
			t.Fatalf("id changed between lookups: %d then %d", aID, got)
		}
	}
}

func TestTypeRegistryRejectsDoubleRegistration(t *testing.T) {
	r := NewTypeRegistry()
	if _, err := r.Register("main", "Alpha", reflect.TypeOf(alpha{})); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Register("other", "AlphaAgain", reflect.TypeOf(alpha{})); err == nil {
		t.Error("registering the same type twice succeeded")
	}
	if _, err := r.Register("main", "Alpha", reflect.TypeOf(beta{})); err == nil {
		t.Error("binding two types to one class succeeded")
	}
}

func TestTypeRegistryNames(t *testing.T) {
	r := NewTypeRegistry()
	if _, err := r.Register("geometry", "Alpha", reflect.TypeOf(alpha{})); err != nil {
		t.Fatal(err)
	}
	class, err := r.ClassNameOf(reflect.TypeOf(alpha{}))
	if err != nil || class != "Alpha" {
		t.Errorf("class %q, err %v", class, err)
	}
	module, err := r.ModuleNameOf(reflect.TypeOf(alpha{}))
	if err != nil || module != "geometry" {
		t.Errorf("module %q, err %v", module, err)
	}
}

func TestTypeRegistryUnboundLookupFails(t *testing.T) {
	r := NewTypeRegistry()
	if _, err := r.IDOf(reflect.TypeOf(beta{})); err == nil {
		t.Error("unbound IDOf succeeded")
	}
	var nr *NotRegisteredError
	_, err := r.ClassNameOf(reflect.TypeOf(beta{}))
	if err == nil {
		t.Fatal("unbound ClassNameOf succeeded")
	}
	if !errors.As(err, &nr) {
		t.Errorf("error type %T, want *NotRegisteredError", err)
	}
}

// Package module holds the contract API modules satisfy and the port lookup between them
// It sits below modkit so a module package can export its own Ports type without a cycle
package module

import (
	"fmt"
	"reflect"

	phttp "stylefix/internal/platform/net/http"
)

// Module is one mountable slice of the API (guidance, rewrite, suggest, meta)
// Prefix is "" for modules that serve no routes and only export ports
type Module interface {
	Name() string
	Prefix() string
	MountRoutes(r phttp.Router)
	Ports() any
}

// PortsOf finds a T in m's Ports bundle: the bundle itself, or the first exported field
// that implements T. Pointer bundles are dereferenced
func PortsOf[T any](m Module) (T, bool) {
	var zero T
	p := m.Ports()
	if p == nil {
		return zero, false
	}
	if v, ok := p.(T); ok {
		return v, true
	}
	rv := reflect.Indirect(reflect.ValueOf(p))
	if rv.Kind() != reflect.Struct {
		return zero, false
	}
	for i := range rv.NumField() {
		if f := rv.Field(i); f.CanInterface() {
			if v, ok := f.Interface().(T); ok {
				return v, true
			}
		}
	}
	return zero, false
}

// MustPortsOf is PortsOf for wiring code, where a missing port is a programming error
func MustPortsOf[T any](m Module) T {
	v, ok := PortsOf[T](m)
	if !ok {
		panic(fmt.Sprintf("module %s: no port implements %s", m.Name(), reflect.TypeFor[T]()))
	}
	return v
}

// Package ffi implements the foreign-function bridge of spec.md §4.D: given
// a prepared call descriptor (here, the reflect.Value of the Go function
// captured at registration time, whose Type() is read at call time, standing
// in for a C ABI descriptor - see SPEC_FULL.md §8), marshal dynamic values
// to native arguments, invoke, and
// unmarshal the result. Grounded on the teacher's
// internal/interp/external_functions.go (registry of wrapped Go functions)
// and ffi_callback.go/marshal.go (reflect-based marshalling).
package ffi

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/tinylisp/tinylisp/internal/ierrors"
	"github.com/tinylisp/tinylisp/internal/object"
)

// Bind registers a Go function as a Foreign value. argTypes and returnType
// are type tags (see ParseTypeTag) describing how dynamic values marshal to
// and from fn's native Go parameter/return types.
func Bind(name string, fn any, argTypes []object.Value, returnType object.Value) (*object.Foreign, error) {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func {
		return nil, ierrors.New(ierrors.CategoryType, "Bind(%s): not a function", name)
	}
	return &object.Foreign{
		Name:       name,
		Native:     rv,
		ArgTypes:   argTypes,
		ReturnType: returnType,
	}, nil
}

// Stub registers a Foreign value with no native pointer bound - calling it
// is an error, not a crash (invariant 5 of spec.md §3).
func Stub(name string, argTypes []object.Value, returnType object.Value) *object.Foreign {
	return &object.Foreign{Name: name, ArgTypes: argTypes, ReturnType: returnType}
}

// ParseTypeTag parses a textual type tag ("int", "float", "string", "bool",
// "void", or "(ptr tag)") into the Value form Foreign.ArgTypes/ReturnType
// expect.
func ParseTypeTag(s string) object.Value {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		inner := strings.Fields(strings.TrimSuffix(strings.TrimPrefix(s, "("), ")"))
		if len(inner) == 2 && inner[0] == "ptr" {
			return object.List(object.InternSymbol("ptr"), object.InternSymbol(inner[1]))
		}
	}
	return object.InternSymbol(s)
}

// describeType reduces a type tag Value to a bare kind name plus, for
// pointer types, the tag naming the pointee.
func describeType(t object.Value) (kind string, ptrTag string, isPtr bool) {
	if cell, ok := t.(*object.Cons); ok {
		if sym, ok := cell.Car.(*object.Symbol); ok && sym.Name == "ptr" {
			tag := ""
			if rest, ok := cell.Cdr.(*object.Cons); ok {
				if s, ok := rest.Car.(*object.Symbol); ok {
					tag = s.Name
				}
			}
			return "ptr", tag, true
		}
	}
	if sym, ok := t.(*object.Symbol); ok {
		return sym.Name, "", false
	}
	return "", "", false
}

// Call invokes f with args, marshalling per the table in spec.md §4.D and
// zip-iterating (args, f.ArgTypes) so "too many"/"too few arguments" is
// detected by whichever list runs out first (SPEC_FULL.md §11).
func Call(f *object.Foreign, args []object.Value) (object.Value, error) {
	if f.ReturnType == nil {
		ierrors.Fatal(fmt.Sprintf("foreign call %s: missing return-type descriptor", f.Name))
	}
	if f.IsStub() {
		return nil, ierrors.New(ierrors.CategoryForeignStub, "foreign call %s: NULL native pointer (stub)", f.Name)
	}

	fnType := f.Native.Type()
	reflectArgs := make([]reflect.Value, 0, len(args))

	ai, ti := 0, 0
	for ai < len(args) && ti < len(f.ArgTypes) {
		rv, err := marshalArg(f.ArgTypes[ti], args[ai])
		if err != nil {
			return nil, err
		}
		if ti < fnType.NumIn() {
			pt := fnType.In(ti)
			if rv.Type() != pt && rv.Type().ConvertibleTo(pt) {
				rv = rv.Convert(pt)
			}
		}
		reflectArgs = append(reflectArgs, rv)
		ai++
		ti++
	}
	if ai < len(args) {
		return nil, ierrors.New(ierrors.CategoryArity, "Too many arguments")
	}
	if ti < len(f.ArgTypes) {
		return nil, ierrors.New(ierrors.CategoryArity, "Too few arguments")
	}

	results := f.Native.Call(reflectArgs)
	return unmarshalReturn(f.ReturnType, results)
}

func marshalArg(argType object.Value, v object.Value) (reflect.Value, error) {
	kind, ptrTag, isPtr := describeType(argType)
	switch {
	case isPtr:
		p, ok := v.(*object.Ptr)
		if !ok {
			return reflect.Value{}, typeErr(v, "(ptr "+ptrTag+")")
		}
		return reflect.ValueOf(p.Val), nil
	case kind == "int":
		iv, ok := v.(*object.Int)
		if !ok {
			return reflect.Value{}, typeErr(v, "int")
		}
		return reflect.ValueOf(iv.Val), nil
	case kind == "float":
		fv, ok := v.(*object.Float)
		if !ok {
			return reflect.Value{}, typeErr(v, "float")
		}
		return reflect.ValueOf(fv.Val), nil
	case kind == "string":
		sv, ok := v.(*object.String)
		if !ok {
			return reflect.Value{}, typeErr(v, "string")
		}
		return reflect.ValueOf(sv.String()), nil
	case kind == "bool":
		bv, ok := v.(*object.Bool)
		if !ok {
			return reflect.Value{}, typeErr(v, "bool")
		}
		return reflect.ValueOf(bv.Val), nil
	default:
		return reflect.Value{}, ierrors.New(ierrors.CategoryType, "unsupported foreign argument type %q", kind)
	}
}

func unmarshalReturn(returnType object.Value, results []reflect.Value) (object.Value, error) {
	kind, ptrTag, isPtr := describeType(returnType)
	switch {
	case kind == "void":
		return object.Nil, nil
	case isPtr:
		if len(results) == 0 {
			return object.Nil, nil
		}
		return &object.Ptr{Val: results[0].Interface(), TagName: ptrTag}, nil
	case kind == "string":
		if len(results) == 0 {
			return object.NewString(""), nil
		}
		rv := results[0]
		if (rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface) && rv.IsNil() {
			return object.NewString(""), nil
		}
		return object.NewString(fmt.Sprint(rv.Interface())), nil
	case kind == "int":
		return object.NewInt(toInt64(results[0])), nil
	case kind == "bool":
		return object.Of(results[0].Bool()), nil
	case kind == "float":
		return object.NewFloat(toFloat32(results[0])), nil
	default:
		return nil, ierrors.New(ierrors.CategoryType, "unsupported foreign return type %q", kind)
	}
}

func typeErr(v object.Value, want string) error {
	return ierrors.New(ierrors.CategoryType, "Invalid type of arg: expected %s, got %s (%s)", want, v.Tag(), v.String())
}

func toInt64(rv reflect.Value) int64 {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint())
	default:
		return 0
	}
}

func toFloat32(rv reflect.Value) float32 {
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return float32(rv.Float())
	default:
		return 0
	}
}

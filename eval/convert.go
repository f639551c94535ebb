package eval

import (
	"encoding"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
)

// FromGo converts a Go value into a [Value].
//
// Maps with string keys become mappings with sorted keys; [yaml.MapSlice]
// keeps its document order. Structs become mappings of their exported
// fields, named by their json tag when present. Functions are not
// converted; wrap them with [Func] or [Variadic].
func FromGo(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case *Helper:
		return Callable(t)
	case *Mapping:
		return Map(t)
	case *Options:
		return optionsValue(t)
	case bool:
		return Bool(t)
	case string:
		return String(t)
	case []byte:
		return String(string(t))
	case int:
		return Number(float64(t))
	case int64:
		return Number(float64(t))
	case uint64:
		return Number(float64(t))
	case float64:
		return Number(t)
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = FromGo(item)
		}

		return Seq(items...)
	case map[string]any:
		m := NewMapping()
		for _, k := range sortedKeys(t) {
			m.Set(k, FromGo(t[k]))
		}

		return Map(m)
	case yaml.MapSlice:
		m := NewMapping()
		for _, item := range t {
			m.Set(fmt.Sprint(item.Key), FromGo(item.Value))
		}

		return Map(m)
	case encoding.TextMarshaler:
		if text, err := t.MarshalText(); err == nil {
			return String(string(text))
		}
	}

	return fromReflect(reflect.ValueOf(v))
}

func fromReflect(rv reflect.Value) Value {
	switch rv.Kind() {
	case reflect.Bool:
		return Bool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Number(float64(rv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		return Number(float64(rv.Uint()))
	case reflect.Float32, reflect.Float64:
		return Number(rv.Float())
	case reflect.String:
		return String(rv.String())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return Seq()
		}

		items := make([]Value, rv.Len())
		for i := range items {
			items[i] = FromGo(rv.Index(i).Interface())
		}

		return Seq(items...)
	case reflect.Map:
		if rv.IsNil() {
			return Map(nil)
		}

		entries := make(map[string]reflect.Value, rv.Len())

		iter := rv.MapRange()
		for iter.Next() {
			entries[fmt.Sprint(iter.Key().Interface())] = iter.Value()
		}

		m := NewMapping()
		for _, k := range sortedKeys(entries) {
			m.Set(k, FromGo(entries[k].Interface()))
		}

		return Map(m)
	case reflect.Struct:
		return fromStruct(rv)
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null()
		}

		return FromGo(rv.Elem().Interface())
	case reflect.Invalid, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return Null()
	}

	return String(fmt.Sprint(rv.Interface()))
}

func fromStruct(rv reflect.Value) Value {
	m := NewMapping()
	rt := rv.Type()

	for i := range rt.NumField() {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		name := field.Name

		if tag, ok := field.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}

			if tagName != "" {
				name = tagName
			}
		}

		m.Set(name, FromGo(rv.Field(i).Interface()))
	}

	return Map(m)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	return keys
}

// Native converts v into plain Go values: nil, bool, float64, string,
// []any and map[string]any. Callables convert to their *Helper and
// options to their *Options.
func (v Value) Native() any {
	switch v.kind {
	case KindBoolean:
		return v.b
	case KindNumber:
		return v.n
	case KindString, KindSafeString:
		return v.s
	case KindSequence:
		items := make([]any, len(v.seq))
		for i, item := range v.seq {
			items[i] = item.Native()
		}

		return items
	case KindMapping:
		m := make(map[string]any, v.m.Len())
		for k, item := range v.m.All() {
			m[k] = item.Native()
		}

		return m
	case KindCallable:
		return v.fn
	case KindOptions:
		return v.opts
	default:
		return nil
	}
}

// MapSlice converts a mapping into a [yaml.MapSlice] that preserves key
// order, recursively. Other values convert as with [Value.Native].
func (v Value) MapSlice() any {
	switch v.kind {
	case KindMapping:
		out := make(yaml.MapSlice, 0, v.m.Len())
		for k, item := range v.m.All() {
			out = append(out, yaml.MapItem{Key: k, Value: item.MapSlice()})
		}

		return out
	case KindSequence:
		items := make([]any, len(v.seq))
		for i, item := range v.seq {
			items[i] = item.MapSlice()
		}

		return items
	default:
		return v.Native()
	}
}

package props

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// NullValue the null value
func NullValue() Value {
	return Value{kind: Null}
}

// Str create a string value
func Str(s string) Value {
	return Value{kind: String, str: s}
}

// Num create a number value
func Num(n float64) Value {
	return Value{kind: Number, num: n}
}

// Boolean create a boolean value
func Boolean(b bool) Value {
	return Value{kind: Bool, boolean: b}
}

// List create an array value
func List(values ...Value) Value {
	if values == nil {
		values = []Value{}
	}
	return Value{kind: Array, array: values}
}

// Map create an object value
func Map(values map[string]Value) Value {
	if values == nil {
		values = map[string]Value{}
	}
	return Value{kind: Object, object: values}
}

// Of cast a golang value (the result of a JSON decoding, a map, a slice,
// a struct ...) to a props value
func Of(v interface{}) (Value, error) {
	switch value := v.(type) {
	case nil:
		return NullValue(), nil
	case Value:
		return value, nil
	case *Value:
		if value == nil {
			return NullValue(), nil
		}
		return *value, nil
	case string:
		return Str(value), nil
	case bool:
		return Boolean(value), nil
	case float64:
		return Num(value), nil
	case float32:
		return Num(float64(value)), nil
	case int:
		return Num(float64(value)), nil
	case int32:
		return Num(float64(value)), nil
	case int64:
		return Num(float64(value)), nil
	case uint:
		return Num(float64(value)), nil
	case uint32:
		return Num(float64(value)), nil
	case uint64:
		return Num(float64(value)), nil
	case []interface{}:
		values := make([]Value, 0, len(value))
		for _, item := range value {
			v, err := Of(item)
			if err != nil {
				return NullValue(), err
			}
			values = append(values, v)
		}
		return List(values...), nil
	case map[string]interface{}:
		values := make(map[string]Value, len(value))
		for key, item := range value {
			v, err := Of(item)
			if err != nil {
				return NullValue(), err
			}
			values[key] = v
		}
		return Map(values), nil
	}

	// structs, typed maps and slices go through JSON
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Struct, reflect.Map, reflect.Slice, reflect.Array, reflect.Ptr:
		data, err := json.Marshal(v)
		if err != nil {
			return NullValue(), fmt.Errorf("[Props] %s", err.Error())
		}
		return Parse(data)
	}

	return NullValue(), fmt.Errorf("[Props] the type %T does not support", v)
}

// Parse a JSON document
func Parse(data []byte) (Value, error) {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return NullValue(), fmt.Errorf("[Props] %s", err.Error())
	}
	return Of(v)
}

// Kind the value kind
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull check if the value is null
func (v Value) IsNull() bool {
	return v.kind == Null
}

// Str the string value
func (v Value) Str() (string, bool) {
	return v.str, v.kind == String
}

// Num the number value
func (v Value) Num() (float64, bool) {
	return v.num, v.kind == Number
}

// Bool the boolean value
func (v Value) Bool() (bool, bool) {
	return v.boolean, v.kind == Bool
}

// Items the array items
func (v Value) Items() []Value {
	return v.array
}

// Get the object field
func (v Value) Get(key string) (Value, bool) {
	if v.kind != Object {
		return NullValue(), false
	}
	value, has := v.object[key]
	return value, has
}

// Keys the sorted object keys
func (v Value) Keys() []string {
	keys := make([]string, 0, len(v.object))
	for key := range v.object {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Interface cast the value to the golang value JSON decoding would give
func (v Value) Interface() interface{} {
	switch v.kind {
	case String:
		return v.str
	case Number:
		return v.num
	case Bool:
		return v.boolean
	case Array:
		values := make([]interface{}, 0, len(v.array))
		for _, item := range v.array {
			values = append(values, item.Interface())
		}
		return values
	case Object:
		values := make(map[string]interface{}, len(v.object))
		for key, item := range v.object {
			values[key] = item.Interface()
		}
		return values
	}
	return nil
}

// MarshalJSON serialize the value, the object keys are sorted so the same
// props always give the same text
func (v Value) MarshalJSON() ([]byte, error) {
	var sb strings.Builder
	if err := v.write(&sb); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}

// UnmarshalJSON parse the value
func (v *Value) UnmarshalJSON(data []byte) error {
	value, err := Parse(data)
	if err != nil {
		return err
	}
	*v = value
	return nil
}

// JSON the serialized value, "null" when the value can't be serialized
func (v Value) JSON() string {
	data, err := v.MarshalJSON()
	if err != nil {
		return "null"
	}
	return string(data)
}

// Equal check if the values are deeply equal
func (v Value) Equal(other Value) bool {
	return v.JSON() == other.JSON()
}

func (v Value) write(sb *strings.Builder) error {
	switch v.kind {
	case Null:
		sb.WriteString("null")

	case String:
		data, err := json.Marshal(v.str)
		if err != nil {
			return err
		}
		sb.Write(data)

	case Number:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return fmt.Errorf("[Props] unsupported number %v", v.num)
		}
		data, err := json.Marshal(v.num)
		if err != nil {
			return err
		}
		sb.Write(data)

	case Bool:
		if v.boolean {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}

	case Array:
		sb.WriteByte('[')
		for i, item := range v.array {
			if i > 0 {
				sb.WriteByte(',')
			}
			if err := item.write(sb); err != nil {
				return err
			}
		}
		sb.WriteByte(']')

	case Object:
		sb.WriteByte('{')
		for i, key := range v.Keys() {
			if i > 0 {
				sb.WriteByte(',')
			}
			data, err := json.Marshal(key)
			if err != nil {
				return err
			}
			sb.Write(data)
			sb.WriteByte(':')
			if err := v.object[key].write(sb); err != nil {
				return err
			}
		}
		sb.WriteByte('}')
	}
	return nil
}

package v8

import (
	jsoniter "github.com/json-iterator/go"
	"rogchap.com/v8go"
)

// JsValue cast golang value to JavasScript value
//
// *  ---------------------------------------------------
// *  | Golang                  | Javascript            |
// *  ---------------------------------------------------
// *  | nil                     | null                  |
// *  | bool                    | boolean               |
// *  | int, int8 ... uint32    | number(int)           |
// *  | float32, float64        | number(float)         |
// *  | string                  | string                |
// *  | json.Marshaler          | JSON.parse(value)     |
// *  | map, slice, struct      | JSON.parse(value)     |
// *  ---------------------------------------------------
func JsValue(ctx *v8go.Context, value interface{}) (*v8go.Value, error) {

	switch v := value.(type) {

	case nil:
		return v8go.Null(ctx.Isolate()), nil

	case string, int32, uint32, bool, float64:
		return v8go.NewValue(ctx.Isolate(), v)

	case int:
		return v8go.NewValue(ctx.Isolate(), int32(v))

	case int8:
		return v8go.NewValue(ctx.Isolate(), int32(v))

	case int16:
		return v8go.NewValue(ctx.Isolate(), int32(v))

	case uint8:
		return v8go.NewValue(ctx.Isolate(), int32(v))

	case uint16:
		return v8go.NewValue(ctx.Isolate(), int32(v))

	case float32:
		return v8go.NewValue(ctx.Isolate(), float64(v))

	default:
		data, err := jsoniter.Marshal(value)
		if err != nil {
			return nil, err
		}
		return v8go.JSONParse(ctx, string(data))
	}
}

// GoValue cast JavasScript value to Golang value
//
// *  ---------------------------------------------------
// *  | JavaScript            | Golang                  |
// *  ---------------------------------------------------
// *  | null                  | nil                     |
// *  | undefined             | nil                     |
// *  | boolean               | bool                    |
// *  | number                | float64                 |
// *  | string                | string                  |
// *  | object                | map[string]interface{}  |
// *  | array                 | []interface{}           |
// *  ---------------------------------------------------
func GoValue(value *v8go.Value) (interface{}, error) {

	if value == nil || value.IsNullOrUndefined() {
		return nil, nil
	}

	if value.IsString() {
		return value.String(), nil
	}

	if value.IsBoolean() {
		return value.Boolean(), nil
	}

	if value.IsNumber() {
		return value.Number(), nil
	}

	if value.IsFunction() {
		return nil, nil
	}

	data, err := value.MarshalJSON()
	if err != nil {
		return nil, err
	}

	var goValue interface{}
	err = jsoniter.Unmarshal(data, &goValue)
	if err != nil {
		return nil, err
	}

	return goValue, nil
}

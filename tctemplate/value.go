package tctemplate

import (
	"fmt"
	"math"
	"reflect"
	"strconv"

	json "github.com/goccy/go-json"
)

// stringify renders an interpolated value. Missing and nil values render
// as the empty string; maps, slices and structs render as compact JSON.
func stringify(val any, found bool) string {
	if !found || val == nil {
		return ""
	}

	switch typed := val.(type) {
	case string:
		return typed
	case bool:
		return strconv.FormatBool(typed)
	case float64:
		return formatFloat(typed, 64)
	case float32:
		return formatFloat(float64(typed), 32)
	case fmt.Stringer:
		return typed.String()
	}

	rv := reflect.ValueOf(val)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct, reflect.Pointer:
		if data, err := json.Marshal(val); err == nil {
			return string(data)
		}
	}

	return fmt.Sprint(val)
}

// formatFloat prints the shortest decimal form, switching to exponent
// notation outside [1e-6, 1e21).
func formatFloat(f float64, bits int) string {
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case math.IsNaN(f):
		return "NaN"
	}

	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		return strconv.FormatFloat(f, 'g', -1, bits)
	}

	return strconv.FormatFloat(f, 'f', -1, bits)
}

package dto

import (
	"bytes"
	"encoding/json"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// FlexInt accepts a JSON number or a numeric string.
type FlexInt int

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var text string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &text); err != nil {
			return flexError("string", f)
		}
		text = strings.TrimSpace(text)
	} else {
		text = string(data)
	}

	if n, err := strconv.Atoi(text); err == nil {
		*f = FlexInt(n)
		return nil
	}
	n, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return flexError(string(data), f)
	}
	*f = FlexInt(int(math.Max(-math.MaxInt32, math.Min(n, math.MaxInt32))))
	return nil
}

// Int returns the value or fallback when absent.
func (f *FlexInt) Int(fallback int) int {
	if f == nil {
		return fallback
	}
	return int(*f)
}

// FlexBool accepts a JSON boolean, 0/1, or a string such as "true" or "0".
type FlexBool bool

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	text := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &text); err != nil {
			return flexError("string", f)
		}
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(text))
	if err != nil {
		return flexError(text, f)
	}
	*f = FlexBool(parsed)
	return nil
}

// Bool returns the value or fallback when absent.
func (f *FlexBool) Bool(fallback bool) bool {
	if f == nil {
		return fallback
	}
	return bool(*f)
}

// StringList accepts an array of strings or a single comma separated string.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var joined string
		if err := json.Unmarshal(data, &joined); err != nil {
			return flexError("string", l)
		}
		*l = nil
		for _, part := range strings.Split(joined, ",") {
			if part = strings.TrimSpace(part); part != "" {
				*l = append(*l, part)
			}
		}
		return nil
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return flexError(string(data), l)
	}
	*l = items
	return nil
}

// flexError is reported as a type error so the decoder attaches the field
// name.
func flexError(value string, target any) error {
	return &json.UnmarshalTypeError{Value: value, Type: reflect.TypeOf(target).Elem()}
}

package effect

import "encoding/json"

// DecodeJSON decodes data into T. A decode failure is reported as an absent
// value, so effects built on it produce a "result absent" action instead of an error.
func DecodeJSON[T any](data []byte) (T, bool) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		var zero T
		return zero, false
	}
	return v, true
}

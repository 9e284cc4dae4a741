package observability

// Field is a key-value pair attached to a log entry or span.
type Field struct {
	Key   string
	Value any
}

// String creates a string field.
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an integer field.
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Int64 creates an int64 field.
func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

// Bool creates a boolean field.
func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Duration creates a field carrying a value already formatted as a string
// (durations are logged pre-formatted to keep the Field type dependency-free).
func Duration(key string, value string) Field {
	return Field{Key: key, Value: value}
}

// Error creates a field from an error, using the conventional "error" key.
func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Any creates a field from an arbitrary value.
func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

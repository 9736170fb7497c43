package guard

// Args converts tagged values into driver arguments, preserving
// positional order. An empty or nil input yields nil, so statements
// with zero placeholders execute without a bind step.
func Args(values []Value) []any {
	if len(values) == 0 {
		return nil
	}
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v.Arg()
	}
	return args
}

// TypeTags renders the positional bind-type tag string for a value
// sequence: 'i' for integer, 'd' for float, 's' for text. The tags are
// carried into debug log entries alongside the rendered SQL.
func TypeTags(values []Value) string {
	if len(values) == 0 {
		return ""
	}
	tags := make([]byte, len(values))
	for i, v := range values {
		switch v.Kind() {
		case KindInt:
			tags[i] = 'i'
		case KindFloat:
			tags[i] = 'd'
		default:
			tags[i] = 's'
		}
	}
	return string(tags)
}

// fieldValues extracts the values of a field sequence in order.
func fieldValues(fields []Field) []Value {
	values := make([]Value, len(fields))
	for i, f := range fields {
		values[i] = f.Value
	}
	return values
}

// unnamed wraps positional parameters (WHERE params, custom query
// params) as fields without column names for logging. Masking only
// applies to named fields; bare positional values carry no column
// identity to match against.
func unnamed(values []Value) []Field {
	if len(values) == 0 {
		return nil
	}
	fields := make([]Field, len(values))
	for i, v := range values {
		fields[i] = Field{Value: v}
	}
	return fields
}

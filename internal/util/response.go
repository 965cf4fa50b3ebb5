package util

type Envelope map[string]any

func Error(message string) Envelope {
	return Envelope{"error": message}
}

// ErrorDetails is Error with field-level details attached.
func ErrorDetails(message string, details any) Envelope {
	if details == nil {
		return Error(message)
	}
	return Envelope{"error": message, "details": details}
}

func Data(key string, value any) Envelope {
	return Envelope{key: value}
}

package lang

// Status classifies the outcome of parsing or interpreting an equation. The
// taxonomy mirrors the host language's error kinds so a UI can present them
// without string matching.
type Status int

const (
	// StatusInit marks an equation that has never been evaluated.
	StatusInit Status = iota
	// StatusSuccess marks a completed parse or evaluation.
	StatusSuccess
	StatusSyntaxError
	StatusNameError
	StatusTypeError
	StatusZeroDivisionError
	StatusValueError
	StatusMemoryError
	StatusOverflowError
	StatusRecursionError
	StatusIndexError
	StatusKeyError
	StatusAttributeError
)

var statusNames = map[Status]string{
	StatusInit:              "Init",
	StatusSuccess:           "Success",
	StatusSyntaxError:       "SyntaxError",
	StatusNameError:         "NameError",
	StatusTypeError:         "TypeError",
	StatusZeroDivisionError: "ZeroDivisionError",
	StatusValueError:        "ValueError",
	StatusMemoryError:       "MemoryError",
	StatusOverflowError:     "OverflowError",
	StatusRecursionError:    "RecursionError",
	StatusIndexError:        "IndexError",
	StatusKeyError:          "KeyError",
	StatusAttributeError:    "AttributeError",
}

// String returns the canonical status name.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "Unknown"
}

// IsError reports whether the status denotes a failure. StatusInit is not an
// error; it only means "not evaluated yet".
func (s Status) IsError() bool {
	return s != StatusInit && s != StatusSuccess
}

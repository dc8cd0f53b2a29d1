// internal/form/validators.go
package form

import "strconv"

// NonEmpty requires trimmed input of at least min characters. Fails
// with failMsg and re-prompts otherwise.
func NonEmpty(min int, failMsg string) Validator {
	return func(raw string) (any, error) {
		if len([]rune(raw)) < min {
			return nil, &ValidationError{Message: failMsg}
		}
		return raw, nil
	}
}

// ID requires a positive integer identifier typed as digits.
func ID(failMsg string) Validator {
	return func(raw string) (any, error) {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 {
			return nil, &ValidationError{Message: failMsg}
		}
		return n, nil
	}
}

// IntOrDefault parses an integer, substituting def for empty,
// unparsable, or below-min input. It never fails: numeric fields fall
// back to their documented default instead of re-prompting.
func IntOrDefault(def, min int) Validator {
	return func(raw string) (any, error) {
		if raw == "" {
			return def, nil
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < min {
			return def, nil
		}
		return n, nil
	}
}

// OptionalText accepts anything, including empty input. A "-" answer
// is treated as skipped.
func OptionalText() Validator {
	return func(raw string) (any, error) {
		if raw == "-" {
			return "", nil
		}
		return raw, nil
	}
}

// OptionalYear parses a publication year, dropping anything that is
// not a plain number.
func OptionalYear() Validator {
	return func(raw string) (any, error) {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return 0, nil
		}
		return n, nil
	}
}

// Text accepts any input verbatim.
func Text() Validator {
	return func(raw string) (any, error) {
		return raw, nil
	}
}

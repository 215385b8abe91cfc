// Package validate checks the shape of decoded JSON payloads before any
// store access. Checks run in a fixed order and stop at the first failure.
package validate

import "github.com/PaulBabatuyi/sup-api/internal/apperr"

// Payload is a decoded JSON object.
type Payload map[string]any

// User checks a user payload: username must be present and text.
func User(p Payload) error {
	return firstFailure(
		required(p, "username"),
		text(p, "username"),
	)
}

// Signup checks a user payload that also carries a password.
// The username checks run first, then the password checks.
func Signup(p Payload) error {
	return firstFailure(
		required(p, "username"),
		text(p, "username"),
		required(p, "password"),
		text(p, "password"),
	)
}

// Message checks a message payload in the order text, to, from.
func Message(p Payload) error {
	return firstFailure(
		required(p, "text"),
		text(p, "text"),
		nonEmptyText(p, "to"),
		nonEmptyText(p, "from"),
	)
}

// check is a deferred field check; nil means it passed.
type check func() error

func firstFailure(checks ...check) error {
	for _, c := range checks {
		if err := c(); err != nil {
			return err
		}
	}
	return nil
}

func required(p Payload, field string) check {
	return func() error {
		if !truthy(p[field]) {
			return apperr.MissingField(field)
		}
		return nil
	}
}

func text(p Payload, field string) check {
	return func() error {
		if _, ok := p[field].(string); !ok {
			return apperr.WrongType(field)
		}
		return nil
	}
}

// nonEmptyText folds absence into the type failure: a missing recipient is
// reported as "Incorrect field type".
func nonEmptyText(p Payload, field string) check {
	return func() error {
		s, ok := p[field].(string)
		if !ok || s == "" {
			return apperr.WrongType(field)
		}
		return nil
	}
}

// truthy treats null, false, 0 and "" as absent, like a loosely typed client
// would.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case float64:
		return x != 0
	default:
		return true
	}
}

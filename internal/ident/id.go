// Package ident holds the identifier type shared by the wire protocol, the
// REST client and the credential store.
//
// The server is inconsistent about id encoding: the same player shows up as
// 42 in one payload and "42" in the next. ID decodes both forms to the same
// canonical string, so plain == comparison is always safe.
package ident

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// System is the reserved sender id for non-player chat announcements.
const System ID = "system"

type ID string

// FromInt builds an ID from a numeric server id.
func FromInt(n int64) ID {
	return ID(strconv.FormatInt(n, 10))
}

// Parse normalizes free-form user input ("42", " 42 ", "guest_1_x") to an ID.
func Parse(s string) ID {
	return canonical(strings.TrimSpace(s))
}

func (id ID) String() string { return string(id) }

func (id ID) IsZero() bool { return id == "" }

// Numeric reports whether the id is an integer, which is how the server
// expects it back in KICK_PLAYER and friends.
func (id ID) Numeric() (int64, bool) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	return n, err == nil
}

// Equal compares two ids after normalizing both sides.
func Equal(a, b ID) bool {
	return canonical(string(a)) == canonical(string(b))
}

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("ident: %w", err)
		}
		*id = canonical(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("ident: id must be a string or a number, got %s", data)
	}
	*id = canonical(n.String())
	return nil
}

func (id ID) MarshalJSON() ([]byte, error) {
	if n, ok := id.Numeric(); ok {
		return []byte(strconv.FormatInt(n, 10)), nil
	}
	return json.Marshal(string(id))
}

// canonical turns integral numbers into their shortest decimal form so that
// 42, "42", "042" and 42.0 all end up as "42".
func canonical(s string) ID {
	if s == "" {
		return ""
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ID(strconv.FormatInt(n, 10))
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int64(f)) {
		return ID(strconv.FormatInt(int64(f), 10))
	}
	return ID(s)
}

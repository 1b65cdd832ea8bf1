package validators

import (
	"errors"
	"strings"
)

var ErrMissingToken = errors.New("missing bearer token")

// BearerToken extracts the token from an Authorization header. A bare token
// without the scheme is accepted.
func BearerToken(header string) (string, error) {
	fields := strings.Fields(header)
	switch {
	case len(fields) == 2 && strings.EqualFold(fields[0], "bearer"):
		return fields[1], nil
	case len(fields) == 1 && !strings.EqualFold(fields[0], "bearer"):
		return fields[0], nil
	}
	return "", ErrMissingToken
}

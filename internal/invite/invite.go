// Package invite builds and parses shareable call links.
package invite

import (
	"errors"
	"net/url"
	"strings"
)

// QueryKey is the query parameter carrying the identity to call.
const QueryKey = "call"

var ErrNoIdentity = errors.New("invite has no identity")

// Build returns base without its query or fragment, with ?call=<id>.
func Build(base, id string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	u.RawQuery = url.Values{QueryKey: {id}}.Encode()
	u.Fragment = ""
	return u.String(), nil
}

// Parse accepts a raw identity or an invite link and returns the identity.
func Parse(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", ErrNoIdentity
	}

	if !strings.Contains(input, "://") && !strings.Contains(input, "?") {
		return input, nil
	}

	u, err := url.Parse(input)
	if err != nil {
		return "", err
	}
	id := strings.TrimSpace(u.Query().Get(QueryKey))
	if id == "" {
		return "", ErrNoIdentity
	}
	return id, nil
}

package database

import (
	"net/url"
	"strings"
)

// ConstructDatabaseURL combines a server URL with a database name.
// An empty name returns the base URL unchanged. sslmode=disable is added
// when the URL does not set sslmode itself.
func ConstructDatabaseURL(baseURL, databaseName string) string {
	if databaseName == "" {
		return baseURL
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return baseURL
	}

	u.Path = "/" + databaseName

	query := u.Query()
	if query.Get("sslmode") == "" {
		query.Set("sslmode", "disable")
	}
	u.RawQuery = query.Encode()

	return u.String()
}

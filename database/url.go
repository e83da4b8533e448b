package database

import (
	"fmt"
	"strings"
)

// ConstructDatabaseURL joins a server URL and a database name into a connection URL.
// An empty name leaves the base URL untouched. Query parameters on the base URL are
// preserved and sslmode=disable is appended unless an sslmode is already given.
func ConstructDatabaseURL(baseURL, databaseName string) string {
	if databaseName == "" {
		return baseURL
	}

	base, query, hasQuery := strings.Cut(strings.TrimRight(baseURL, "/"), "?")
	base = strings.TrimRight(base, "/")

	databaseURL := fmt.Sprintf("%s/%s", base, databaseName)
	if hasQuery {
		databaseURL = fmt.Sprintf("%s?%s", databaseURL, query)
	}

	if strings.Contains(databaseURL, "sslmode=") {
		return databaseURL
	}
	if hasQuery && query != "" {
		return databaseURL + "&sslmode=disable"
	}
	if hasQuery {
		return databaseURL + "sslmode=disable"
	}
	return databaseURL + "?sslmode=disable"
}

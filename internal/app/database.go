package app

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/lib/pq"

	"github.com/riskibarqy/pickup-games/internal/config"
)

const maxTracedQueryLength = 512

// DatabaseURL is the connection string shared by the API and the migration CLI.
func DatabaseURL(cfg config.Config) string {
	raw := strings.TrimSpace(cfg.DBURL)
	if cfg.DBDisablePreparedBinary {
		raw = withDefaultParam(raw, "disable_prepared_binary_result", "yes")
	}
	return raw
}

// withDefaultParam sets a query parameter on URL-style DSNs unless it is already present.
// Key/value DSNs are returned unchanged.
func withDefaultParam(raw, key, value string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return raw
	}
	q := u.Query()
	if q.Has(key) {
		return raw
	}
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}

// dbNameFromURL accepts both postgres:// URLs and key=value DSNs.
func dbNameFromURL(raw string) string {
	dsn := strings.TrimSpace(raw)
	if strings.Contains(dsn, "://") {
		converted, err := pq.ParseURL(dsn)
		if err != nil {
			return ""
		}
		dsn = converted
	}
	for _, kv := range strings.Fields(dsn) {
		if name, ok := strings.CutPrefix(kv, "dbname="); ok {
			return strings.Trim(name, `"'`)
		}
	}
	return ""
}

// formatDBQueryForTrace flattens SQL to one line and cuts it on a rune boundary.
func formatDBQueryForTrace(query string) string {
	flat := strings.Join(strings.Fields(query), " ")
	if len(flat) <= maxTracedQueryLength {
		return flat
	}
	cut := maxTracedQueryLength
	for cut > 0 && !utf8.RuneStart(flat[cut]) {
		cut--
	}
	return flat[:cut] + "..."
}

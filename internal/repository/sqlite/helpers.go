package sqlite

import "database/sql"

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// nullToInt converts sql.NullInt64 to int64, zero when NULL
func nullToInt(ni sql.NullInt64) int64 {
	if ni.Valid {
		return ni.Int64
	}
	return 0
}

// nullToPort converts sql.NullInt64 to a port, zero (not remapped) when NULL or out of range
func nullToPort(ni sql.NullInt64) uint16 {
	if !ni.Valid || ni.Int64 <= 0 || ni.Int64 > 65535 {
		return 0
	}
	return uint16(ni.Int64)
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// intToNull stores zero as NULL
func intToNull(i int64) sql.NullInt64 {
	if i == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: i, Valid: true}
}

// portToNull stores an unremapped port as NULL
func portToNull(p uint16) sql.NullInt64 {
	return intToNull(int64(p))
}

package clickhouse

// DatabaseName is the default ClickHouse database for mirrored entries
const DatabaseName = "logbook"

// TableAccessEntries is the table storing mirrored access log entries (MergeTree)
const TableAccessEntries = "access_entries"

// Columns mirror the record file schema 1:1, including the string-typed
// Time field, so a ClickHouse row always round-trips to the same line the
// file store wrote.
const schemaAccessEntries = `
CREATE TABLE IF NOT EXISTS ` + TableAccessEntries + ` (
	agent String,
	time String,
	method LowCardinality(String),
	resource String,
	version LowCardinality(String),
	status UInt16
) ENGINE = MergeTree()
ORDER BY time
`

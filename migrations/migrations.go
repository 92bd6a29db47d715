// Package migrations embeds the schema for the postgres ledger and the clickhouse event table
package migrations

import "embed"

// FS holds postgres/*.sql and clickhouse/*.sql in golang-migrate naming
//
//go:embed postgres/*.sql clickhouse/*.sql
var FS embed.FS

// Source directories inside FS
const (
	Postgres   = "postgres"
	Clickhouse = "clickhouse"
)

// Package db embeds the SQL migrations for every supported database driver.
package db

import "embed"

// Migrations holds one directory per driver: migrations/postgres and migrations/sqlite.
//
//go:embed migrations
var Migrations embed.FS

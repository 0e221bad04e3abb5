package database

import (
	"context"
	"fmt"
)

// TableExists checks for a table in the given schema.
func (db *DB) TableExists(ctx context.Context, schema, table string) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_schema = $1
			AND table_name = $2
		)`
	if err := db.GetContext(ctx, &exists, query, schema, table); err != nil {
		return false, fmt.Errorf("failed to check if table exists: %w", err)
	}
	return exists, nil
}

// RequiredTables lists the tables every read path depends on.
var RequiredTables = []string{"flow_stats", "forecast_1h", "system_events"}

// CheckSchema reports the first required table that is missing.
func (db *DB) CheckSchema(ctx context.Context) error {
	for _, table := range RequiredTables {
		ok, err := db.TableExists(ctx, Schema, table)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("table %s.%s does not exist", Schema, table)
		}
	}
	return nil
}

func (db *DB) GetVersion(ctx context.Context) (string, error) {
	var version string
	if err := db.GetContext(ctx, &version, "SELECT version()"); err != nil {
		return "", fmt.Errorf("failed to get database version: %w", err)
	}
	return version, nil
}

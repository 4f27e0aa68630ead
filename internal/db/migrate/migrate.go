package migrate

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/gokatarajesh/trivia-api/db/migrations"
)

// Commands accepted by Run.
const (
	CommandUp     = "up"
	CommandDown   = "down"
	CommandStatus = "status"
)

// TableName records applied migrations.
const TableName = "goose_db_version"

// Run applies the embedded Postgres migrations to db.
func Run(ctx context.Context, db *sql.DB, command string) error {
	goose.SetBaseFS(migrations.FS)
	goose.SetTableName(TableName)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	switch command {
	case CommandUp:
		if err := goose.UpContext(ctx, db, "."); err != nil {
			return fmt.Errorf("migrate up: %w", err)
		}
	case CommandDown:
		if err := goose.DownContext(ctx, db, "."); err != nil {
			return fmt.Errorf("migrate down: %w", err)
		}
	case CommandStatus:
		if err := goose.StatusContext(ctx, db, "."); err != nil {
			return fmt.Errorf("migrate status: %w", err)
		}
	default:
		return fmt.Errorf("unknown migration command %q (use %s, %s or %s)", command, CommandUp, CommandDown, CommandStatus)
	}
	return nil
}

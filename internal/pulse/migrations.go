package pulse

import (
	"database/sql"

	"github.com/HerbHall/pollnow/pkg/plugin"
)

// Migrations returns the schema changes owned by the pulse plugin.
func Migrations() []plugin.Migration {
	return []plugin.Migration{
		{
			Version:     1,
			Description: "create pulse catalog tables",
			Up: func(tx *sql.Tx) error {
				stmts := []string{
					`CREATE TABLE IF NOT EXISTS pulse_hosts (
						id TEXT PRIMARY KEY,
						name TEXT NOT NULL UNIQUE,
						address TEXT NOT NULL DEFAULT '',
						host_group TEXT NOT NULL DEFAULT '',
						created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
					)`,

					`CREATE TABLE IF NOT EXISTS pulse_objects (
						id TEXT PRIMARY KEY,
						host_id TEXT NOT NULL REFERENCES pulse_hosts(id),
						name TEXT NOT NULL,
						kind TEXT NOT NULL,
						type TEXT NOT NULL,
						item_key TEXT NOT NULL DEFAULT '',
						target TEXT NOT NULL DEFAULT '',
						master_id TEXT NOT NULL DEFAULT '',
						enabled INTEGER NOT NULL DEFAULT 1,
						created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
						updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
						UNIQUE(host_id, kind, name)
					)`,
					`CREATE INDEX IF NOT EXISTS idx_pulse_objects_host ON pulse_objects(host_id, kind)`,
					`CREATE INDEX IF NOT EXISTS idx_pulse_objects_master ON pulse_objects(master_id)`,
				}
				return execAll(tx, stmts)
			},
		},
		{
			Version:     2,
			Description: "create poll results and execute tasks",
			Up: func(tx *sql.Tx) error {
				stmts := []string{
					`CREATE TABLE IF NOT EXISTS pulse_results (
						id INTEGER PRIMARY KEY AUTOINCREMENT,
						object_id TEXT NOT NULL REFERENCES pulse_objects(id),
						host_id TEXT NOT NULL,
						success INTEGER NOT NULL,
						value TEXT NOT NULL DEFAULT '',
						latency_ms REAL,
						packet_loss REAL,
						error_message TEXT,
						checked_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
					)`,
					`CREATE INDEX IF NOT EXISTS idx_pulse_results_object_time ON pulse_results(object_id, checked_at)`,

					`CREATE TABLE IF NOT EXISTS pulse_tasks (
						id TEXT PRIMARY KEY,
						object_id TEXT NOT NULL REFERENCES pulse_objects(id),
						status TEXT NOT NULL,
						error TEXT NOT NULL DEFAULT '',
						created_at DATETIME NOT NULL,
						updated_at DATETIME NOT NULL
					)`,
					`CREATE INDEX IF NOT EXISTS idx_pulse_tasks_status ON pulse_tasks(status, updated_at)`,
				}
				return execAll(tx, stmts)
			},
		},
	}
}

func execAll(tx *sql.Tx, stmts []string) error {
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

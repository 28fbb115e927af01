package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema creates the three relations.  Statements are idempotent so Migrate
// can run on every deploy.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS experiences (
        id          VARCHAR(64)   NOT NULL PRIMARY KEY,
        title       VARCHAR(255)  NOT NULL,
        description TEXT          NOT NULL,
        price       DECIMAL(10,2) NOT NULL CHECK (price >= 0),
        image       VARCHAR(512)  NOT NULL DEFAULT '',
        duration    VARCHAR(64)   NOT NULL DEFAULT '',
        location    VARCHAR(255)  NOT NULL DEFAULT '',
        rating      DECIMAL(2,1)  NOT NULL DEFAULT 0,
        reviews     INT           NOT NULL DEFAULT 0
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS timeslots (
        id            VARCHAR(128) NOT NULL PRIMARY KEY,
        experience_id VARCHAR(64)  NOT NULL,
        date          DATE         NOT NULL,
        time          VARCHAR(16)  NOT NULL,
        total_spots   INT          NOT NULL CHECK (total_spots >= 0),
        spots_left    INT          NOT NULL,
        CONSTRAINT chk_timeslots_spots CHECK (spots_left >= 0 AND spots_left <= total_spots),
        CONSTRAINT fk_timeslots_experience FOREIGN KEY (experience_id) REFERENCES experiences(id),
        INDEX idx_timeslots_experience_date (experience_id, date)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS bookings (
        id             CHAR(36)     NOT NULL PRIMARY KEY,
        experience_id  VARCHAR(64)  NOT NULL,
        timeslot_id    VARCHAR(128) NOT NULL,
        date           DATE         NOT NULL,
        time           VARCHAR(16)  NOT NULL,
        customer_name  VARCHAR(255) NOT NULL,
        customer_email VARCHAR(255) NOT NULL,
        seats          INT          NOT NULL CHECK (seats > 0),
        created_at     DATETIME     NOT NULL,
        CONSTRAINT fk_bookings_timeslot FOREIGN KEY (timeslot_id) REFERENCES timeslots(id),
        INDEX idx_bookings_timeslot (timeslot_id)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates any missing tables.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate statement %d: %w", i+1, err)
		}
	}
	return nil
}

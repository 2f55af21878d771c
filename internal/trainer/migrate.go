package trainer

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AutoMigrate applies the session store schema at startup.
func AutoMigrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS pgcrypto`); err != nil {
		log.Printf("trainer: migrate pgcrypto: %v", err)
		return err
	}

	if _, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS game_sessions (
          id                 uuid PRIMARY KEY DEFAULT gen_random_uuid(),
          title              TEXT NOT NULL,
          work_id            TEXT NOT NULL,
          take_ids           TEXT[] NOT NULL DEFAULT '{}',
          owner_id           TEXT NOT NULL,
          shuffle_generation BIGINT NOT NULL DEFAULT 0,
          created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
      )
    `); err != nil {
		log.Printf("trainer: migrate game_sessions: %v", err)
		return err
	}

	if _, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS session_members (
          session_id uuid NOT NULL REFERENCES game_sessions(id) ON DELETE CASCADE,
          user_id    TEXT NOT NULL,
          role       TEXT NOT NULL DEFAULT 'member',
          created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
          PRIMARY KEY (session_id, user_id)
      )
    `); err != nil {
		log.Printf("trainer: migrate session_members: %v", err)
		return err
	}

	if _, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS session_notes (
          session_id uuid NOT NULL REFERENCES game_sessions(id) ON DELETE CASCADE,
          user_id    TEXT NOT NULL,
          work_id    TEXT NOT NULL,
          take_id    TEXT NOT NULL,
          payload    JSONB NOT NULL DEFAULT '{}',
          updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
          PRIMARY KEY (session_id, user_id, work_id, take_id)
      )
    `); err != nil {
		log.Printf("trainer: migrate session_notes: %v", err)
		return err
	}

	return nil
}

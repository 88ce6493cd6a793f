package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// Schema is idempotent and safe to run on every start.
const Schema = `
CREATE TABLE IF NOT EXISTS public.user_profile
(
    user_id    VARCHAR PRIMARY KEY,
    email      VARCHAR     NOT NULL,
    user_info  JSONB       NOT NULL DEFAULT '{}',
    profile    JSONB       NOT NULL DEFAULT '{}',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS ux_user_profile_email ON public.user_profile (email);

CREATE TABLE IF NOT EXISTS public.fitness_plan
(
    user_id         VARCHAR PRIMARY KEY,
    plan            JSONB       NOT NULL,
    completed_dates DATE[]      NOT NULL DEFAULT '{}',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS public.weight_entry
(
    id         UUID PRIMARY KEY,
    user_id    VARCHAR          NOT NULL,
    date       TIMESTAMPTZ      NOT NULL,
    weight     DOUBLE PRECISION NOT NULL CHECK (weight > 0),
    notes      TEXT,
    created_at TIMESTAMPTZ      NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ      NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS ix_weight_entry_user_date ON public.weight_entry (user_id, date);

CREATE TABLE IF NOT EXISTS public.workout_entry
(
    id         UUID PRIMARY KEY,
    user_id    VARCHAR     NOT NULL,
    date       TIMESTAMPTZ NOT NULL,
    workout_id VARCHAR,
    notes      TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS ix_workout_entry_user_date ON public.workout_entry (user_id, date);
`

func EnsureSchema(ctx context.Context, dbPool *pgxpool.Pool) error {
	if _, err := dbPool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	log.Debugln("db schema ensured")
	return nil
}

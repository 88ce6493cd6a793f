package plans

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/cheongchoi112/ai-fitness-api/internal/telemetry/tracing"
	"github.com/cheongchoi112/ai-fitness-api/pkg"
)

const planColumns = `user_id, plan, completed_dates, created_at, updated_at`

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Get(ctx context.Context, userID string) (_ *FitnessPlan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		`SELECT `+planColumns+` FROM fitness_plan WHERE user_id = $1;`,
		userID,
	)
	if err != nil {
		return nil, pkg.WrapStoreErr(err)
	}

	plan, err := pgx.CollectExactlyOneRow(rows, scanPlan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, pkg.WrapStoreErr(err)
	}
	return &plan, nil
}

// Save creates the user's plan or replaces its plan document.
// Completed dates of an existing plan are kept.
func (r *Repo) Save(ctx context.Context, userID string, plan json.RawMessage) (_ *FitnessPlan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.save")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO fitness_plan (user_id, plan, created_at, updated_at)
				VALUES ($1, $2, $3, $3)
			ON CONFLICT (user_id) DO UPDATE SET
				plan = EXCLUDED.plan,
				updated_at = EXCLUDED.updated_at
			RETURNING `+planColumns+`;`,
		userID, plan, time.Now().UTC(),
	)
	if err != nil {
		return nil, pkg.WrapStoreErr(err)
	}

	saved, err := pgx.CollectExactlyOneRow(rows, scanPlan)
	if err != nil {
		return nil, pkg.WrapStoreErr(err)
	}
	return &saved, nil
}

// ToggleCompletion adds day to the completed dates if absent and removes it otherwise.
// The check and the write happen in one statement, so concurrent toggles of the
// same plan serialize on the row lock.
func (r *Repo) ToggleCompletion(ctx context.Context, userID string, day time.Time) (_ *FitnessPlan, completed bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.toggle")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", userID))
	span.SetAttributes(attribute.String("day", day.Format(pkg.DateLayout)))

	rows, err := r.db.Query(
		ctx,
		`UPDATE fitness_plan SET
				completed_dates = CASE
					WHEN $2::date = ANY(completed_dates) THEN array_remove(completed_dates, $2::date)
					ELSE array_append(completed_dates, $2::date)
				END,
				updated_at = NOW()
			WHERE user_id = $1
			RETURNING `+planColumns+`, $2::date = ANY(completed_dates);`,
		userID, day,
	)
	if err != nil {
		return nil, false, pkg.WrapStoreErr(err)
	}

	plan, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (FitnessPlan, error) {
		var p FitnessPlan
		err := row.Scan(&p.UserID, &p.Plan, &p.CompletedDates, &p.CreatedAt, &p.UpdatedAt, &completed)
		return p, err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, ErrPlanNotFound
	}
	if err != nil {
		return nil, false, pkg.WrapStoreErr(err)
	}

	normalizeDates(&plan)
	return &plan, completed, nil
}

func scanPlan(row pgx.CollectableRow) (FitnessPlan, error) {
	var p FitnessPlan
	if err := row.Scan(&p.UserID, &p.Plan, &p.CompletedDates, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return FitnessPlan{}, err
	}
	normalizeDates(&p)
	return p, nil
}

func normalizeDates(p *FitnessPlan) {
	if p.CompletedDates == nil {
		p.CompletedDates = []time.Time{}
	}
	for i, d := range p.CompletedDates {
		p.CompletedDates[i] = pkg.Day(d)
	}
}

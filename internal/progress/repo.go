package progress

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/cheongchoi112/ai-fitness-api/internal/telemetry/tracing"
	"github.com/cheongchoi112/ai-fitness-api/pkg"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

const (
	weightColumns  = `id::text, user_id, date, weight, notes, created_at, updated_at`
	workoutColumns = `id::text, user_id, date, workout_id, notes, created_at, updated_at`
)

func (r *Repo) WeightHistory(ctx context.Context, userID string, dateRange DateRange) (_ []WeightEntry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progress.weight.history")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		`SELECT `+weightColumns+`
			FROM weight_entry
			WHERE user_id = $1
				AND ($2::timestamptz IS NULL OR date >= $2)
				AND ($3::timestamptz IS NULL OR date <= $3)
			ORDER BY date ASC, created_at ASC;`,
		userID, dateRange.Start, dateRange.End,
	)
	if err != nil {
		return nil, pkg.WrapStoreErr(err)
	}

	entries, err := pgx.CollectRows(rows, scanWeightEntry)
	if err != nil {
		return nil, pkg.WrapStoreErr(err)
	}

	span.SetAttributes(attribute.Int("entries", len(entries)))
	return entries, nil
}

func (r *Repo) AddWeight(ctx context.Context, entry WeightEntry) (_ *WeightEntry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progress.weight.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("entry.id", entry.ID))

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO weight_entry
				(id, user_id, date, weight, notes, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $6)
			RETURNING `+weightColumns+`;`,
		entry.ID, entry.UserID, entry.Date, entry.Weight, entry.Notes, entry.CreatedAt,
	)
	if err != nil {
		return nil, pkg.WrapStoreErr(err)
	}

	added, err := pgx.CollectExactlyOneRow(rows, scanWeightEntry)
	if err != nil {
		return nil, pkg.WrapStoreErr(fmt.Errorf("collect added weight entry: %w", err))
	}
	return &added, nil
}

// UpdateWeight changes only the non-nil fields of the update.
func (r *Repo) UpdateWeight(ctx context.Context, userID, entryID string, update WeightUpdate) (_ *WeightEntry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progress.weight.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("entry.id", entryID))

	rows, err := r.db.Query(
		ctx,
		`UPDATE weight_entry SET
				date = COALESCE($3, date),
				weight = COALESCE($4, weight),
				notes = COALESCE($5, notes),
				updated_at = NOW()
			WHERE user_id = $1 AND id = $2
			RETURNING `+weightColumns+`;`,
		userID, entryID, update.Date, update.Weight, update.Notes,
	)
	if err != nil {
		return nil, pkg.WrapStoreErr(err)
	}

	updated, err := pgx.CollectExactlyOneRow(rows, scanWeightEntry)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrWeightEntryNotFound
	}
	if err != nil {
		return nil, pkg.WrapStoreErr(err)
	}
	return &updated, nil
}

func (r *Repo) DeleteWeight(ctx context.Context, userID, entryID string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progress.weight.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("entry.id", entryID))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM weight_entry WHERE user_id = $1 AND id = $2;`,
		userID, entryID,
	)
	if err != nil {
		return pkg.WrapStoreErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrWeightEntryNotFound
	}
	return nil
}

func (r *Repo) WorkoutHistory(ctx context.Context, userID string, dateRange DateRange) (_ []WorkoutEntry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progress.workout.history")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		`SELECT `+workoutColumns+`
			FROM workout_entry
			WHERE user_id = $1
				AND ($2::timestamptz IS NULL OR date >= $2)
				AND ($3::timestamptz IS NULL OR date <= $3)
			ORDER BY date ASC, created_at ASC;`,
		userID, dateRange.Start, dateRange.End,
	)
	if err != nil {
		return nil, pkg.WrapStoreErr(err)
	}

	entries, err := pgx.CollectRows(rows, scanWorkoutEntry)
	if err != nil {
		return nil, pkg.WrapStoreErr(err)
	}

	span.SetAttributes(attribute.Int("entries", len(entries)))
	return entries, nil
}

func (r *Repo) AddWorkout(ctx context.Context, entry WorkoutEntry) (_ *WorkoutEntry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progress.workout.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("entry.id", entry.ID))

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO workout_entry
				(id, user_id, date, workout_id, notes, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $6)
			RETURNING `+workoutColumns+`;`,
		entry.ID, entry.UserID, entry.Date, entry.WorkoutID, entry.Notes, entry.CreatedAt,
	)
	if err != nil {
		return nil, pkg.WrapStoreErr(err)
	}

	added, err := pgx.CollectExactlyOneRow(rows, scanWorkoutEntry)
	if err != nil {
		return nil, pkg.WrapStoreErr(fmt.Errorf("collect added workout entry: %w", err))
	}
	return &added, nil
}

func (r *Repo) UpdateWorkout(ctx context.Context, userID, entryID string, update WorkoutUpdate) (_ *WorkoutEntry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progress.workout.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("entry.id", entryID))

	rows, err := r.db.Query(
		ctx,
		`UPDATE workout_entry SET
				date = COALESCE($3, date),
				workout_id = COALESCE($4, workout_id),
				notes = COALESCE($5, notes),
				updated_at = NOW()
			WHERE user_id = $1 AND id = $2
			RETURNING `+workoutColumns+`;`,
		userID, entryID, update.Date, update.WorkoutID, update.Notes,
	)
	if err != nil {
		return nil, pkg.WrapStoreErr(err)
	}

	updated, err := pgx.CollectExactlyOneRow(rows, scanWorkoutEntry)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrWorkoutEntryNotFound
	}
	if err != nil {
		return nil, pkg.WrapStoreErr(err)
	}
	return &updated, nil
}

func (r *Repo) DeleteWorkout(ctx context.Context, userID, entryID string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progress.workout.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("entry.id", entryID))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM workout_entry WHERE user_id = $1 AND id = $2;`,
		userID, entryID,
	)
	if err != nil {
		return pkg.WrapStoreErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrWorkoutEntryNotFound
	}
	return nil
}

func scanWeightEntry(row pgx.CollectableRow) (WeightEntry, error) {
	var e WeightEntry
	err := row.Scan(&e.ID, &e.UserID, &e.Date, &e.Weight, &e.Notes, &e.CreatedAt, &e.UpdatedAt)
	e.Date = e.Date.UTC()
	return e, err
}

func scanWorkoutEntry(row pgx.CollectableRow) (WorkoutEntry, error) {
	var e WorkoutEntry
	err := row.Scan(&e.ID, &e.UserID, &e.Date, &e.WorkoutID, &e.Notes, &e.CreatedAt, &e.UpdatedAt)
	e.Date = e.Date.UTC()
	return e, err
}

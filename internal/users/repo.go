package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/cheongchoi112/ai-fitness-api/internal/telemetry/tracing"
	"github.com/cheongchoi112/ai-fitness-api/pkg"
)

const userColumns = `user_id, email, user_info, profile, created_at, updated_at`

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Get(ctx context.Context, userID string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		`SELECT `+userColumns+` FROM user_profile WHERE user_id = $1;`,
		userID,
	)
	if err != nil {
		return nil, pkg.WrapStoreErr(err)
	}

	user, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, pkg.WrapStoreErr(err)
	}
	return &user, nil
}

// Upsert creates the user profile or overwrites email, user info and survey answers.
func (r *Repo) Upsert(ctx context.Context, user User) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.upsert")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", user.UserID))

	userInfoJson, err := json.Marshal(user.UserInfo)
	if err != nil {
		return nil, fmt.Errorf("marshal user info: %w", err)
	}
	profileJson, err := json.Marshal(user.Profile)
	if err != nil {
		return nil, fmt.Errorf("marshal profile: %w", err)
	}

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO user_profile (user_id, email, user_info, profile, created_at, updated_at)
				VALUES ($1, $2, $3, $4, NOW(), NOW())
			ON CONFLICT (user_id) DO UPDATE SET
				email = EXCLUDED.email,
				user_info = EXCLUDED.user_info,
				profile = EXCLUDED.profile,
				updated_at = NOW()
			RETURNING `+userColumns+`;`,
		user.UserID, user.Email, userInfoJson, profileJson,
	)
	if err == nil {
		var saved User
		saved, err = pgx.CollectExactlyOneRow(rows, scanUser)
		if err == nil {
			return &saved, nil
		}
	}
	if pkg.IsUniqueViolationError(err) {
		return nil, pkg.NewValidationError("Email is already registered to another user")
	}
	return nil, pkg.WrapStoreErr(err)
}

// GoalWeight reads the desired weight from the stored survey answers.
func (r *Repo) GoalWeight(ctx context.Context, userID string) (_ *float64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.goal-weight")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", userID))

	var desiredWeightJson []byte
	err = r.db.QueryRow(
		ctx,
		`SELECT profile->'desiredWeight' FROM user_profile WHERE user_id = $1;`,
		userID,
	).Scan(&desiredWeightJson)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, pkg.WrapStoreErr(err)
	}

	return goalWeightFromJson(desiredWeightJson), nil
}

// DeleteAccount removes the profile, the plan and all progress entries of the user
// in one transaction. ErrUserNotFound is returned, and nothing is deleted, if there is no profile.
func (r *Repo) DeleteAccount(ctx context.Context, userID string) (_ *DeleteResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.delete-account")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", userID))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, pkg.WrapStoreErr(err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				err = fmt.Errorf("failed to rollback transaction: %w: %w", rollbackErr, err)
			}
		} else {
			err = pkg.WrapStoreErr(tx.Commit(ctx))
		}
	}()

	profileTag, err := tx.Exec(ctx, `DELETE FROM user_profile WHERE user_id = $1;`, userID)
	if err != nil {
		return nil, pkg.WrapStoreErr(err)
	}
	if profileTag.RowsAffected() == 0 {
		return nil, ErrUserNotFound
	}

	planTag, err := tx.Exec(ctx, `DELETE FROM fitness_plan WHERE user_id = $1;`, userID)
	if err != nil {
		return nil, pkg.WrapStoreErr(err)
	}
	if _, err = tx.Exec(ctx, `DELETE FROM weight_entry WHERE user_id = $1;`, userID); err != nil {
		return nil, pkg.WrapStoreErr(err)
	}
	if _, err = tx.Exec(ctx, `DELETE FROM workout_entry WHERE user_id = $1;`, userID); err != nil {
		return nil, pkg.WrapStoreErr(err)
	}

	return &DeleteResult{
		UserDeleted: true,
		PlanDeleted: planTag.RowsAffected() > 0,
	}, nil
}

func scanUser(row pgx.CollectableRow) (User, error) {
	var (
		u            User
		userInfoJson []byte
		profileJson  []byte
	)
	if err := row.Scan(&u.UserID, &u.Email, &userInfoJson, &profileJson, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return User{}, err
	}
	if err := json.Unmarshal(userInfoJson, &u.UserInfo); err != nil {
		return User{}, fmt.Errorf("unmarshal user info: %w", err)
	}
	if err := json.Unmarshal(profileJson, &u.Profile); err != nil {
		return User{}, fmt.Errorf("unmarshal profile: %w", err)
	}
	return u, nil
}

// goalWeightFromJson treats a missing, malformed or non-positive value as no goal.
func goalWeightFromJson(raw []byte) *float64 {
	if len(raw) == 0 {
		return nil
	}
	var desired pkg.FlexFloat
	if err := json.Unmarshal(raw, &desired); err != nil || !desired.Valid || desired.Value <= 0 {
		return nil
	}
	return desired.Ptr()
}

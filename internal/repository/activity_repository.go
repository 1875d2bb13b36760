package repository

import (
	"context"

	"activity-ticketing/internal/model"
	apperrors "activity-ticketing/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ActivityRepository interface {
	List(ctx context.Context) ([]*model.Activity, error)
	FindByID(ctx context.Context, id int) (*model.Activity, error)
}

type ActivityRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewActivityRepository(pool *pgxpool.Pool) ActivityRepository {
	return &ActivityRepositoryImpl{
		pool: pool,
	}
}

func (r *ActivityRepositoryImpl) List(ctx context.Context) ([]*model.Activity, error) {
	query := `
		SELECT id, organization_id, title, start_time, end_time, status,
		       created_at, updated_at
		FROM activities
		WHERE status = $1
		ORDER BY start_time
	`

	rows, err := r.pool.Query(ctx, query, model.ActivityStatusPublished)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := make([]*model.Activity, 0)

	for rows.Next() {
		var activity model.Activity
		err := rows.Scan(
			&activity.ID,
			&activity.OrganizationID,
			&activity.Title,
			&activity.StartTime,
			&activity.EndTime,
			&activity.Status,
			&activity.CreatedAt,
			&activity.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		activities = append(activities, &activity)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return activities, nil
}

func (r *ActivityRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Activity, error) {
	query := `
		SELECT id, organization_id, title, start_time, end_time, status,
		       created_at, updated_at
		FROM activities
		WHERE id = $1
	`

	var activity model.Activity
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&activity.ID,
		&activity.OrganizationID,
		&activity.Title,
		&activity.StartTime,
		&activity.EndTime,
		&activity.Status,
		&activity.CreatedAt,
		&activity.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrActivityNotFound
		}
		return nil, err
	}

	return &activity, nil
}

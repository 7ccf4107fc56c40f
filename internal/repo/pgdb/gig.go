package pgdb

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gig-marketplace-api/internal/common"
	"gig-marketplace-api/internal/entity"
	"gig-marketplace-api/internal/repo/repo_errors"
	"gig-marketplace-api/pkg/postgres"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const gigColumns = "gig.id, gig.user_id, gig.title, gig.description, gig.tier, gig.price_min, gig.price_max, gig.keywords, " +
	"gig.start_date, gig.end_date, gig.slug, gig.is_removed, gig.completed_at, gig.created_at, gig_pipeline.status"

type GigRepo struct {
	*postgres.Postgres
}

func NewGigRepo(pgdb *postgres.Postgres) *GigRepo {
	return &GigRepo{pgdb}
}

func scanGig(row rowScanner) (*entity.Gig, error) {
	var gig entity.Gig
	var completedAt sql.NullTime
	err := row.Scan(&gig.Id, &gig.UserId, &gig.Title, &gig.Description, &gig.Tier, &gig.PriceMin, &gig.PriceMax,
		pq.Array(&gig.Keywords), &gig.StartDate, &gig.EndDate, &gig.Slug, &gig.IsRemoved, &completedAt,
		&gig.CreatedAt, &gig.PipelineStatus)
	if err != nil {
		return nil, err
	}
	if completedAt.Valid {
		gig.CompletedAt = &completedAt.Time
	}

	return &gig, nil
}

func (r *GigRepo) selectGigs() squirrel.SelectBuilder {
	return r.SqlBuilder.
		Select(gigColumns).
		From("gig").
		InnerJoin("gig_pipeline on gig_pipeline.gig_id = gig.id")
}

func (r *GigRepo) CreateGig(ctx context.Context, input *entity.CreateGigInput) (uuid.UUID, error) {
	var gigId uuid.UUID
	err := r.InTx(ctx, func(tx *sql.Tx) error {
		createGigSql, args, _ := r.SqlBuilder.
			Insert("gig").
			Columns("user_id", "title", "description", "tier", "price_min", "price_max", "keywords", "start_date", "end_date", "slug").
			Values(input.UserId, input.Title, input.Description, input.Tier, input.PriceMin, input.PriceMax,
				pq.Array(input.Keywords), input.StartDate, input.EndDate, input.Slug).
			Suffix("RETURNING id").
			ToSql()

		if err := tx.QueryRowContext(ctx, createGigSql, args...).Scan(&gigId); err != nil {
			if isUniqueViolation(err) {
				return repo_errors.ErrAlreadyExists
			}

			return err
		}

		createPipelineSql, args, _ := r.SqlBuilder.
			Insert("gig_pipeline").
			Columns("gig_id", "status").
			Values(gigId, common.PipelineOpen).
			ToSql()

		_, err := tx.ExecContext(ctx, createPipelineSql, args...)
		return err
	})
	if err != nil {
		return uuid.Nil, err
	}

	return gigId, nil
}

func (r *GigRepo) getGig(ctx context.Context, where squirrel.Sqlizer) (*entity.Gig, error) {
	getGigSql, args, _ := r.selectGigs().Where(where).ToSql()

	gig, err := scanGig(r.Database.QueryRowContext(ctx, getGigSql, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo_errors.ErrNotFound
		}

		return nil, err
	}

	return gig, nil
}

func (r *GigRepo) GetGigById(ctx context.Context, id uuid.UUID) (*entity.Gig, error) {
	return r.getGig(ctx, squirrel.Eq{"gig.id": id})
}

func (r *GigRepo) GetGigBySlug(ctx context.Context, slug string) (*entity.Gig, error) {
	return r.getGig(ctx, squirrel.Eq{"gig.slug": slug})
}

func (r *GigRepo) queryGigs(ctx context.Context, builder squirrel.SelectBuilder) ([]entity.Gig, error) {
	sqlReq, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.Database.QueryContext(ctx, sqlReq, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	gigs := make([]entity.Gig, 0)
	for rows.Next() {
		gig, err := scanGig(rows)
		if err != nil {
			return gigs, err
		}
		gigs = append(gigs, *gig)
	}
	if err = rows.Err(); err != nil {
		return gigs, err
	}

	return gigs, nil
}

func (r *GigRepo) GetOpenGigs(ctx context.Context, filter *entity.GigFilter, pg *entity.PaginationInput) ([]entity.Gig, error) {
	builder := r.selectGigs().
		Where("gig.is_removed = false").
		Where("gig_pipeline.status = ?", common.PipelineOpen).
		Where(gigFilterCondition(filter)).
		OrderBy("gig.created_at DESC").
		Offset(uint64(pg.Offset)).
		Limit(uint64(pg.Limit))

	return r.queryGigs(ctx, builder)
}

func (r *GigRepo) GetOwnerGigs(ctx context.Context, ownerId uuid.UUID, status string) ([]entity.Gig, error) {
	builder := r.selectGigs().
		Where("gig.user_id = ?", ownerId).
		Where("gig.is_removed = false").
		OrderBy("gig.created_at DESC")

	if status != "" {
		builder = builder.Where("gig_pipeline.status = ?", status)
	}

	return r.queryGigs(ctx, builder)
}

func (r *GigRepo) CountOwnerGigsByStatus(ctx context.Context, ownerId uuid.UUID) (map[string]int, error) {
	countSql, args, _ := r.SqlBuilder.
		Select("gig_pipeline.status", "count(*)").
		From("gig").
		InnerJoin("gig_pipeline on gig_pipeline.gig_id = gig.id").
		Where("gig.user_id = ?", ownerId).
		Where("gig.is_removed = false").
		GroupBy("gig_pipeline.status").
		ToSql()

	rows, err := r.Database.QueryContext(ctx, countSql, args...)
	if err != nil {
		return nil, err
	}

	return scanCounts(rows)
}

func (r *GigRepo) RemoveGig(ctx context.Context, id uuid.UUID) error {
	removeSql, args, _ := r.SqlBuilder.
		Update("gig").
		Set("is_removed", true).
		Where("id = ?", id).
		Where("is_removed = false").
		Where(squirrel.Expr("EXISTS (SELECT 1 FROM gig_pipeline WHERE gig_pipeline.gig_id = gig.id AND gig_pipeline.status = ?)", common.PipelineOpen)).
		ToSql()

	res, err := r.Database.ExecContext(ctx, removeSql, args...)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repo_errors.ErrStatusMismatch
	}

	return nil
}

func (r *GigRepo) CompleteGig(ctx context.Context, id uuid.UUID, completedAt time.Time) error {
	return r.InTx(ctx, func(tx *sql.Tx) error {
		updatePipelineSql, args, _ := r.SqlBuilder.
			Update("gig_pipeline").
			Set("status", common.PipelineCompleted).
			Set("updated_at", completedAt).
			Where("gig_id = ?", id).
			Where("status = ?", common.PipelineInProgress).
			ToSql()

		res, err := tx.ExecContext(ctx, updatePipelineSql, args...)
		if err != nil {
			return err
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return repo_errors.ErrStatusMismatch
		}

		updateGigSql, args, _ := r.SqlBuilder.
			Update("gig").
			Set("completed_at", completedAt).
			Where("id = ?", id).
			ToSql()

		_, err = tx.ExecContext(ctx, updateGigSql, args...)
		return err
	})
}

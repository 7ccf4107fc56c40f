package pgdb

import (
	"context"
	"database/sql"
	"errors"

	"gig-marketplace-api/internal/common"
	"gig-marketplace-api/internal/entity"
	"gig-marketplace-api/internal/repo/repo_errors"
	"gig-marketplace-api/pkg/postgres"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

const bidColumns = "bid.id, bid.gig_id, bid.provider_id, bid.user_id, bid.proposal, bid.bid_price, bid.status, bid.created_at, " +
	"COALESCE(users.name, '')"

type BidRepo struct {
	*postgres.Postgres
}

func NewBidRepo(pgdb *postgres.Postgres) *BidRepo {
	return &BidRepo{pgdb}
}

func scanBid(row rowScanner, extra ...any) (*entity.Bid, error) {
	var bid entity.Bid
	dest := []any{&bid.Id, &bid.GigId, &bid.ProviderId, &bid.UserId, &bid.Proposal, &bid.BidPrice,
		&bid.Status, &bid.CreatedAt, &bid.ProviderName}

	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	return &bid, nil
}

func (r *BidRepo) selectBids() squirrel.SelectBuilder {
	return r.SqlBuilder.
		Select(bidColumns).
		From("bid").
		LeftJoin("users on users.id = bid.provider_id")
}

// CreateBid inserts a pending bid under a share lock on the gig's pipeline
// row. It fails with ErrStatusMismatch once the pipeline has left open.
func (r *BidRepo) CreateBid(ctx context.Context, input *entity.CreateBidInput) (uuid.UUID, error) {
	var bidId uuid.UUID

	err := r.InTx(ctx, func(tx *sql.Tx) error {
		lockPipelineSql, args, _ := r.SqlBuilder.
			Select("status").
			From("gig_pipeline").
			Where("gig_id = ?", input.GigId).
			Suffix("FOR SHARE").
			ToSql()

		var pipelineStatus string
		if err := tx.QueryRowContext(ctx, lockPipelineSql, args...).Scan(&pipelineStatus); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return repo_errors.ErrNotFound
			}

			return err
		}
		if pipelineStatus != common.PipelineOpen {
			return repo_errors.ErrStatusMismatch
		}

		createBidSql, args, _ := r.SqlBuilder.
			Insert("bid").
			Columns("gig_id", "provider_id", "user_id", "proposal", "bid_price", "status").
			Values(input.GigId, input.ProviderId, input.UserId, input.Proposal, input.BidPrice, common.BidPending).
			Suffix("RETURNING id").
			ToSql()

		if err := tx.QueryRowContext(ctx, createBidSql, args...).Scan(&bidId); err != nil {
			if isUniqueViolation(err) {
				return repo_errors.ErrAlreadyExists
			}

			return err
		}

		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	return bidId, nil
}

func (r *BidRepo) getBidById(ctx context.Context, q queryRower, id uuid.UUID) (*entity.Bid, error) {
	getBidSql, args, _ := r.selectBids().Where("bid.id = ?", id).ToSql()

	bid, err := scanBid(q.QueryRowContext(ctx, getBidSql, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo_errors.ErrNotFound
		}

		return nil, err
	}

	return bid, nil
}

func (r *BidRepo) GetBidById(ctx context.Context, id uuid.UUID) (*entity.Bid, error) {
	return r.getBidById(ctx, r.Database, id)
}

func (r *BidRepo) HasProviderBid(ctx context.Context, gigId uuid.UUID, providerId uuid.UUID) (bool, error) {
	existsSql, args, _ := r.SqlBuilder.
		Select("1").
		Prefix("SELECT EXISTS (").
		From("bid").
		Where("gig_id = ?", gigId).
		Where("provider_id = ?", providerId).
		Suffix(")").
		ToSql()

	var exists bool
	if err := r.Database.QueryRowContext(ctx, existsSql, args...).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

func (r *BidRepo) queryBids(ctx context.Context, builder squirrel.SelectBuilder) ([]entity.Bid, error) {
	sqlReq, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.Database.QueryContext(ctx, sqlReq, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bids := make([]entity.Bid, 0)
	for rows.Next() {
		bid, err := scanBid(rows)
		if err != nil {
			return bids, err
		}
		bids = append(bids, *bid)
	}
	if err = rows.Err(); err != nil {
		return bids, err
	}

	return bids, nil
}

func (r *BidRepo) GetGigBids(ctx context.Context, gigId uuid.UUID) ([]entity.Bid, error) {
	return r.queryBids(ctx, r.selectBids().
		Where("bid.gig_id = ?", gigId).
		OrderBy("bid.created_at DESC"))
}

func (r *BidRepo) GetAcceptedBids(ctx context.Context, gigId uuid.UUID) ([]entity.Bid, error) {
	return r.queryBids(ctx, r.selectBids().
		Where("bid.gig_id = ?", gigId).
		Where("bid.status = ?", common.BidAccepted))
}

func (r *BidRepo) AcceptBid(ctx context.Context, gigId uuid.UUID, bidId uuid.UUID) (*entity.AcceptBidResult, error) {
	var result entity.AcceptBidResult

	err := r.InTx(ctx, func(tx *sql.Tx) error {
		lockPipelineSql, args, _ := r.SqlBuilder.
			Select("status").
			From("gig_pipeline").
			Where("gig_id = ?", gigId).
			Suffix("FOR UPDATE").
			ToSql()

		var pipelineStatus string
		if err := tx.QueryRowContext(ctx, lockPipelineSql, args...).Scan(&pipelineStatus); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return repo_errors.ErrNotFound
			}

			return err
		}
		if pipelineStatus != common.PipelineOpen {
			return repo_errors.ErrStatusMismatch
		}

		lockBidSql, args, _ := r.SqlBuilder.
			Select("status").
			From("bid").
			Where("id = ?", bidId).
			Where("gig_id = ?", gigId).
			Suffix("FOR UPDATE").
			ToSql()

		var bidStatus string
		if err := tx.QueryRowContext(ctx, lockBidSql, args...).Scan(&bidStatus); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return repo_errors.ErrNotFound
			}

			return err
		}
		if bidStatus != common.BidPending {
			return repo_errors.ErrBidNotPending
		}

		decideSql, args, _ := r.SqlBuilder.
			Update("bid").
			Set("status", squirrel.Expr("CASE WHEN id = ? THEN ? ELSE ? END", bidId, common.BidAccepted, common.BidRejected)).
			Where("gig_id = ?", gigId).
			Where("status = ?", common.BidPending).
			Suffix("RETURNING provider_id, status").
			ToSql()

		rows, err := tx.QueryContext(ctx, decideSql, args...)
		if err != nil {
			return err
		}

		for rows.Next() {
			var providerId uuid.UUID
			var status string
			if err := rows.Scan(&providerId, &status); err != nil {
				rows.Close()
				return err
			}
			if status == common.BidRejected {
				result.RejectedProviders = append(result.RejectedProviders, providerId)
			}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		advanceSql, args, _ := r.SqlBuilder.
			Update("gig_pipeline").
			Set("status", common.PipelineInProgress).
			Set("updated_at", squirrel.Expr("now()")).
			Where("gig_id = ?", gigId).
			Where("status = ?", common.PipelineOpen).
			ToSql()

		if _, err := tx.ExecContext(ctx, advanceSql, args...); err != nil {
			return err
		}

		accepted, err := r.getBidById(ctx, tx, bidId)
		if err != nil {
			return err
		}
		result.Accepted = *accepted

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *BidRepo) GetProviderBids(ctx context.Context, providerId uuid.UUID, status string) ([]entity.ProviderBid, error) {
	builder := r.selectBids().
		Columns("gig.title", "gig.slug", "gig_pipeline.status").
		InnerJoin("gig on gig.id = bid.gig_id").
		InnerJoin("gig_pipeline on gig_pipeline.gig_id = bid.gig_id").
		Where("bid.provider_id = ?", providerId).
		OrderBy("bid.created_at DESC")

	if status != "" {
		builder = builder.Where("bid.status = ?", status)
	}

	sqlReq, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.Database.QueryContext(ctx, sqlReq, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bids := make([]entity.ProviderBid, 0)
	for rows.Next() {
		var pb entity.ProviderBid
		bid, err := scanBid(rows, &pb.GigTitle, &pb.GigSlug, &pb.PipelineStatus)
		if err != nil {
			return bids, err
		}
		pb.Bid = *bid
		bids = append(bids, pb)
	}
	if err = rows.Err(); err != nil {
		return bids, err
	}

	return bids, nil
}

func (r *BidRepo) CountProviderBidsByStatus(ctx context.Context, providerId uuid.UUID) (map[string]int, error) {
	countSql, args, _ := r.SqlBuilder.
		Select("status", "count(*)").
		From("bid").
		Where("provider_id = ?", providerId).
		GroupBy("status").
		ToSql()

	rows, err := r.Database.QueryContext(ctx, countSql, args...)
	if err != nil {
		return nil, err
	}

	return scanCounts(rows)
}

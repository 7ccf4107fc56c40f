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

const paymentColumns = "id, gig_id, provider_id, user_id, amount, payment_method, order_id, transaction_id, status, request_status, created_at"

type PaymentRepo struct {
	*postgres.Postgres
}

func NewPaymentRepo(pgdb *postgres.Postgres) *PaymentRepo {
	return &PaymentRepo{pgdb}
}

func scanPayment(row rowScanner) (*entity.Payment, error) {
	var p entity.Payment
	err := row.Scan(&p.Id, &p.GigId, &p.ProviderId, &p.UserId, &p.Amount, &p.PaymentMethod, &p.OrderId,
		&p.TransactionId, &p.Status, &p.RequestStatus, &p.CreatedAt)
	if err != nil {
		return nil, err
	}

	return &p, nil
}

// UpsertHeldPayment creates the held payment for a gig or points an existing,
// not yet completed one at a fresh order. A completed payment is left alone
// and reported as ErrStatusMismatch.
func (r *PaymentRepo) UpsertHeldPayment(ctx context.Context, input *entity.UpsertPaymentInput) (*entity.Payment, error) {
	upsertSql, args, _ := r.SqlBuilder.
		Insert("payment").
		Columns("id", "gig_id", "provider_id", "user_id", "amount", "payment_method", "order_id", "status", "request_status").
		Values(input.Id, input.GigId, input.ProviderId, input.UserId, input.Amount, input.PaymentMethod, input.OrderId,
			common.PaymentHeld, common.RequestPending).
		Suffix(
			"ON CONFLICT (payment_method, gig_id) DO UPDATE SET "+
				"order_id = EXCLUDED.order_id, amount = EXCLUDED.amount, provider_id = EXCLUDED.provider_id, "+
				"status = EXCLUDED.status, request_status = EXCLUDED.request_status, updated_at = now() "+
				"WHERE payment.status <> ? RETURNING "+paymentColumns, common.PaymentCompleted).
		ToSql()

	payment, err := scanPayment(r.Database.QueryRowContext(ctx, upsertSql, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo_errors.ErrStatusMismatch
		}

		return nil, err
	}

	return payment, nil
}

func (r *PaymentRepo) GetPaymentByGig(ctx context.Context, paymentMethod string, gigId uuid.UUID) (*entity.Payment, error) {
	getSql, args, _ := r.SqlBuilder.
		Select(paymentColumns).
		From("payment").
		Where("payment_method = ?", paymentMethod).
		Where("gig_id = ?", gigId).
		ToSql()

	payment, err := scanPayment(r.Database.QueryRowContext(ctx, getSql, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo_errors.ErrNotFound
		}

		return nil, err
	}

	return payment, nil
}

func (r *PaymentRepo) SettleCapture(ctx context.Context, input *entity.SettleInput) (*entity.SettleResult, error) {
	var result entity.SettleResult

	err := r.InTx(ctx, func(tx *sql.Tx) error {
		completeSql, args, _ := r.SqlBuilder.
			Update("payment").
			Set("status", common.PaymentCompleted).
			Set("request_status", common.RequestAccepted).
			Set("transaction_id", input.TransactionId).
			Set("updated_at", squirrel.Expr("now()")).
			Where("id = ?", input.PaymentId).
			Where(squirrel.Or{
				squirrel.Eq{"status": common.PaymentHeld},
				squirrel.Eq{"request_status": common.RequestPending},
			}).
			ToSql()

		res, err := tx.ExecContext(ctx, completeSql, args...)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		result.PaymentCompleted = affected > 0

		// the partial unique index makes a second completed earning for the gig a no-op
		earningSql, args, _ := r.SqlBuilder.
			Insert("provider_earning").
			Columns("user_id", "provider_id", "gig_id", "amount", "status").
			Values(input.PayerId, input.ProviderId, input.GigId, input.Amount, common.EarningCompleted).
			Suffix("ON CONFLICT (gig_id) WHERE status = 'completed' DO NOTHING").
			ToSql()

		res, err = tx.ExecContext(ctx, earningSql, args...)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		if err != nil {
			return err
		}
		result.EarningCreated = affected > 0

		approveSql, args, _ := r.SqlBuilder.
			Update("review_rating").
			Set("status", common.ReviewApproved).
			Set("updated_at", squirrel.Expr("now()")).
			Where("gig_id = ?", input.GigId).
			Suffix("RETURNING provider_id").
			ToSql()

		rows, err := tx.QueryContext(ctx, approveSql, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		seen := make(map[uuid.UUID]bool)
		for rows.Next() {
			var providerId uuid.UUID
			if err := rows.Scan(&providerId); err != nil {
				return err
			}
			result.ReviewsApproved++
			if !seen[providerId] {
				seen[providerId] = true
				result.ReviewedProviders = append(result.ReviewedProviders, providerId)
			}
		}

		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

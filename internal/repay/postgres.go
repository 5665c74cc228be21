package repay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresEngine reconciles payments against PostgreSQL. Each payment runs in
// one transaction: the installment row is locked, the payment appended, and
// the cached totals recomputed from the payment ledger before commit.
type PostgresEngine struct {
	db          *pgxpool.Pool
	flatLateFee float64
}

// NewPostgresEngine builds a Postgres-backed reconciliation engine.
func NewPostgresEngine(db *pgxpool.Pool, flatLateFee float64) *PostgresEngine {
	return &PostgresEngine{db: db, flatLateFee: flatLateFee}
}

const installmentColumns = `repay_id, loan_id, client_id, due_date, repay_amount, paid_amount,
	late_fee, status, last_paid_date, payment_method, receipt_no, remark, create_date`

// ApplyPayment records the payment and updates the installment atomically.
func (e *PostgresEngine) ApplyPayment(ctx context.Context, in PaymentInput) (Summary, error) {
	if in.Amount <= 0 {
		return Summary{}, ErrAmountNotPositive
	}
	if in.PaidDate.IsZero() {
		in.PaidDate = time.Now().UTC()
	}

	tx, err := e.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Summary{}, fmt.Errorf("%w: %w", ErrReconciliationFailed, err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	row := tx.QueryRow(ctx, `SELECT `+installmentColumns+` FROM repay
		WHERE repay_id = $1 FOR UPDATE`, in.InstallmentID)
	inst, err := scanInstallment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Summary{}, ErrInstallmentNotFound
	}
	if err != nil {
		return Summary{}, fmt.Errorf("%w: %w", ErrReconciliationFailed, err)
	}

	if (in.LoanNumber != "" && in.LoanNumber != inst.LoanNumber) ||
		(in.ClientID != 0 && in.ClientID != inst.ClientID) {
		return Summary{}, ErrInstallmentMismatch
	}

	fee := lateFeeFor(inst, in, e.flatLateFee)

	paymentID := uuid.NewString()
	if _, err := tx.Exec(ctx, `INSERT INTO repay_payments
		(id, repay_id, loan_id, client_id, amount, late_fee, paid_date, payment_method, receipt_no, remark)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		paymentID, inst.ID, inst.LoanNumber, inst.ClientID, in.Amount, fee,
		in.PaidDate, in.PaymentMethod, in.ReceiptNo, in.Remark); err != nil {
		return Summary{}, fmt.Errorf("%w: %w", ErrReconciliationFailed, err)
	}

	// Totals come from the payment ledger, never from incrementing the cached
	// columns, so a replayed update cannot drift them.
	var totalPaid, totalFee float64
	if err := tx.QueryRow(ctx, `SELECT COALESCE(SUM(amount), 0), COALESCE(SUM(late_fee), 0)
		FROM repay_payments WHERE repay_id = $1`, inst.ID).Scan(&totalPaid, &totalFee); err != nil {
		return Summary{}, fmt.Errorf("%w: %w", ErrReconciliationFailed, err)
	}

	status := statusFor(inst.Amount, totalPaid)
	if _, err := tx.Exec(ctx, `UPDATE repay SET
			paid_amount = $1,
			late_fee = $2,
			status = $3,
			last_paid_date = $4,
			payment_method = COALESCE(NULLIF($5, ''), payment_method),
			receipt_no = COALESCE(NULLIF($6, ''), receipt_no),
			remark = COALESCE(NULLIF($7, ''), remark)
		WHERE repay_id = $8`,
		totalPaid, totalFee, status, in.PaidDate,
		in.PaymentMethod, in.ReceiptNo, in.Remark, inst.ID); err != nil {
		return Summary{}, fmt.Errorf("%w: %w", ErrReconciliationFailed, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Summary{}, fmt.Errorf("%w: %w", ErrReconciliationFailed, err)
	}

	inst.PaidAmount = totalPaid
	inst.LateFee = totalFee
	inst.Status = status
	inst.LastPaidDate = &in.PaidDate
	if in.PaymentMethod != "" {
		inst.PaymentMethod = in.PaymentMethod
	}
	if in.ReceiptNo != "" {
		inst.ReceiptNo = in.ReceiptNo
	}
	if in.Remark != "" {
		inst.Remark = in.Remark
	}

	return Summary{
		PaymentID:      paymentID,
		InstallmentID:  inst.ID,
		TotalPaid:      round2(totalPaid),
		Remaining:      remainingAmount(inst.Amount, totalPaid),
		LateFeeCharged: fee,
		LateFeeTotal:   round2(totalFee),
		Status:         status,
		Installment:    inst,
	}, nil
}

// Get fetches one installment by id.
func (e *PostgresEngine) Get(ctx context.Context, installmentID int64) (Installment, error) {
	row := e.db.QueryRow(ctx, `SELECT `+installmentColumns+` FROM repay WHERE repay_id = $1`, installmentID)
	inst, err := scanInstallment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Installment{}, ErrInstallmentNotFound
	}
	return inst, err
}

// ListByClient returns the client's installments ordered by due date.
// Installments of unsigned loans are filtered out unless includeHidden.
func (e *PostgresEngine) ListByClient(ctx context.Context, clientID int64, includeHidden bool) ([]Installment, error) {
	query := `SELECT r.repay_id, r.loan_id, r.client_id, r.due_date, r.repay_amount, r.paid_amount,
			r.late_fee, r.status, r.last_paid_date, r.payment_method, r.receipt_no, r.remark, r.create_date
		FROM repay r
		JOIN loans l ON l.loan_number = r.loan_id
		WHERE r.client_id = $1`
	if !includeHidden {
		query += ` AND l.contract_signed = TRUE`
	}
	query += ` ORDER BY r.due_date, r.repay_id`

	rows, err := e.db.Query(ctx, query, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Installment
	for rows.Next() {
		inst, err := scanInstallment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, rows.Err()
}

// ListPayments returns the append-only payment history of one installment.
func (e *PostgresEngine) ListPayments(ctx context.Context, installmentID int64) ([]Payment, error) {
	rows, err := e.db.Query(ctx, `SELECT id, repay_id, loan_id, client_id, amount, late_fee,
			paid_date, payment_method, receipt_no, remark, created_at
		FROM repay_payments WHERE repay_id = $1 ORDER BY created_at, id`, installmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.InstallmentID, &p.LoanNumber, &p.ClientID, &p.Amount,
			&p.LateFee, &p.PaidDate, &p.PaymentMethod, &p.ReceiptNo, &p.Remark, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanInstallment(row pgx.Row) (Installment, error) {
	var inst Installment
	err := row.Scan(&inst.ID, &inst.LoanNumber, &inst.ClientID, &inst.DueDate, &inst.Amount,
		&inst.PaidAmount, &inst.LateFee, &inst.Status, &inst.LastPaidDate,
		&inst.PaymentMethod, &inst.ReceiptNo, &inst.Remark, &inst.CreateDate)
	return inst, err
}

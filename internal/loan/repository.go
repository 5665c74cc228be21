package loan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists loans and their repayment schedules. Loan and schedule
// writes that belong together happen inside one transaction.
type Repository interface {
	CreateWithSchedule(ctx context.Context, ln Loan, schedule []ScheduleEntry) error
	ReplaceWithSchedule(ctx context.Context, ln Loan, schedule []ScheduleEntry) error
	GetByNumber(ctx context.Context, loanNumber string) (Loan, error)
	ScheduleCount(ctx context.Context, loanNumber string) (int, error)
	InsertSchedule(ctx context.Context, ln Loan, schedule []ScheduleEntry) error
	SignContract(ctx context.Context, loanNumber string, clientID int64, photoRef string) error
	ContractSigned(ctx context.Context, loanNumber string) (bool, error)
	RecordsByClient(ctx context.Context, clientID int64) ([]Record, error)
	CustomerInfo(ctx context.Context, loanNumber string, clientID int64) (CustomerInfo, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed loan repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const loanColumns = `loan_number, customer_id, customer_name, currency, loan_amount,
	interest_rate, interest_amount, payment_frequency, payment_amount, term, repay_amount,
	created_date, payment_due_date, contract_signed, signed_photo, lender_name, audit, created_at`

// CreateWithSchedule inserts the loan row and all installments atomically.
// A loan never exists without its schedule.
func (r *PostgresRepository) CreateWithSchedule(ctx context.Context, ln Loan, schedule []ScheduleEntry) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM loans WHERE loan_number = $1)`, ln.LoanNumber).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return ErrDuplicate
	}

	if err := insertLoan(ctx, tx, ln); err != nil {
		return err
	}
	if err := insertSchedule(ctx, tx, ln, schedule); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ReplaceWithSchedule drops the existing loan, its installments, and their
// payment history, then recreates everything from the new terms. Used only
// behind an explicit replace flag.
func (r *PostgresRepository) ReplaceWithSchedule(ctx context.Context, ln Loan, schedule []ScheduleEntry) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM repay_payments WHERE loan_id = $1`, ln.LoanNumber); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM repay WHERE loan_id = $1`, ln.LoanNumber); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM loans WHERE loan_number = $1`, ln.LoanNumber); err != nil {
		return err
	}

	if err := insertLoan(ctx, tx, ln); err != nil {
		return err
	}
	if err := insertSchedule(ctx, tx, ln, schedule); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetByNumber fetches a loan by its number.
func (r *PostgresRepository) GetByNumber(ctx context.Context, loanNumber string) (Loan, error) {
	row := r.db.QueryRow(ctx, `SELECT `+loanColumns+` FROM loans WHERE loan_number = $1`, loanNumber)
	ln, err := scanLoan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Loan{}, ErrNotFound
	}
	return ln, err
}

// ScheduleCount reports how many installments exist for the loan.
func (r *PostgresRepository) ScheduleCount(ctx context.Context, loanNumber string) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM repay WHERE loan_id = $1`, loanNumber).Scan(&n)
	return n, err
}

// InsertSchedule persists installments for a loan whose schedule is missing.
// It refuses to touch a loan that already has one.
func (r *PostgresRepository) InsertSchedule(ctx context.Context, ln Loan, schedule []ScheduleEntry) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	var n int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM repay WHERE loan_id = $1`, ln.LoanNumber).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrScheduleExists
	}

	if err := insertSchedule(ctx, tx, ln, schedule); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// SignContract stores the signed artifact reference and flips the signed flag
// for the loan identified by (loanNumber, clientID).
func (r *PostgresRepository) SignContract(ctx context.Context, loanNumber string, clientID int64, photoRef string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE loans SET signed_photo = $1, contract_signed = TRUE
		WHERE loan_number = $2 AND customer_id = $3`, photoRef, loanNumber, clientID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrClientMismatch
	}
	return nil
}

// ContractSigned reports the visibility flag for a loan.
func (r *PostgresRepository) ContractSigned(ctx context.Context, loanNumber string) (bool, error) {
	var signed bool
	err := r.db.QueryRow(ctx, `SELECT contract_signed FROM loans WHERE loan_number = $1`, loanNumber).Scan(&signed)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, ErrNotFound
	}
	return signed, err
}

// RecordsByClient lists loan summary rows for one client.
func (r *PostgresRepository) RecordsByClient(ctx context.Context, clientID int64) ([]Record, error) {
	rows, err := r.db.Query(ctx, `SELECT loan_number, loan_amount, interest_amount, created_date,
		payment_due_date, lender_name FROM loans WHERE customer_id = $1 ORDER BY created_date, loan_number`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.LoanNumber, &rec.LoanAmount, &rec.InterestAmount,
			&rec.CreatedDate, &rec.PaymentDueDate, &rec.LenderName); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CustomerInfo returns the contract-signing view for (loanNumber, clientID).
func (r *PostgresRepository) CustomerInfo(ctx context.Context, loanNumber string, clientID int64) (CustomerInfo, error) {
	var info CustomerInfo
	err := r.db.QueryRow(ctx, `SELECT loan_number, customer_id, customer_name, signed_photo, contract_signed
		FROM loans WHERE loan_number = $1 AND customer_id = $2`, loanNumber, clientID).
		Scan(&info.LoanNumber, &info.CustomerID, &info.CustomerName, &info.SignedPhoto, &info.ContractSigned)
	if errors.Is(err, pgx.ErrNoRows) {
		return CustomerInfo{}, ErrNotFound
	}
	return info, err
}

func insertLoan(ctx context.Context, tx pgx.Tx, ln Loan) error {
	audit := ln.Audit
	if audit == nil {
		audit = map[string]string{}
	}
	auditJSON, err := json.Marshal(audit)
	if err != nil {
		return fmt.Errorf("encode audit: %w", err)
	}

	_, err = tx.Exec(ctx, `INSERT INTO loans
		(loan_number, customer_id, customer_name, currency, loan_amount, interest_rate,
		 interest_amount, payment_frequency, payment_amount, term, repay_amount,
		 created_date, payment_due_date, lender_name, audit)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		ln.LoanNumber, ln.CustomerID, ln.CustomerName, ln.Currency, ln.LoanAmount, ln.InterestRate,
		ln.InterestAmount, ln.PaymentFrequency, ln.PaymentAmount, ln.Term, ln.RepayAmount,
		ln.CreatedDate, ln.PaymentDueDate, ln.LenderName, string(auditJSON))
	return err
}

func insertSchedule(ctx context.Context, tx pgx.Tx, ln Loan, schedule []ScheduleEntry) error {
	for _, entry := range schedule {
		if _, err := tx.Exec(ctx, `INSERT INTO repay (loan_id, client_id, due_date, repay_amount)
			VALUES ($1, $2, $3, $4)`, ln.LoanNumber, ln.CustomerID, entry.DueDate, entry.Amount); err != nil {
			return fmt.Errorf("insert installment: %w", err)
		}
	}
	return nil
}

func scanLoan(row pgx.Row) (Loan, error) {
	var (
		ln        Loan
		auditJSON string
		createdAt time.Time
	)
	err := row.Scan(&ln.LoanNumber, &ln.CustomerID, &ln.CustomerName, &ln.Currency, &ln.LoanAmount,
		&ln.InterestRate, &ln.InterestAmount, &ln.PaymentFrequency, &ln.PaymentAmount, &ln.Term,
		&ln.RepayAmount, &ln.CreatedDate, &ln.PaymentDueDate, &ln.ContractSigned, &ln.SignedPhoto,
		&ln.LenderName, &auditJSON, &createdAt)
	if err != nil {
		return Loan{}, err
	}
	ln.CreatedAt = createdAt.UTC()
	if auditJSON != "" {
		if err := json.Unmarshal([]byte(auditJSON), &ln.Audit); err != nil {
			ln.Audit = nil
		}
	}
	return ln, nil
}

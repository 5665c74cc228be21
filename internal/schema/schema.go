package schema

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Ensure creates the ledger tables when they do not exist yet. Schema
// evolution beyond this bootstrap is handled outside the application.
func Ensure(ctx context.Context, db *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS clients (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			occupation TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT '',
			photo TEXT NOT NULL DEFAULT '',
			passport_number TEXT NOT NULL DEFAULT '',
			driver_license_number TEXT NOT NULL DEFAULT '',
			owner_of_vehicle_number TEXT NOT NULL DEFAULT '',
			business_license_number TEXT NOT NULL DEFAULT '',
			vehicle_number_plate TEXT NOT NULL DEFAULT ''
		)`,

		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			token_version INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		`CREATE TABLE IF NOT EXISTS loans (
			loan_number TEXT PRIMARY KEY,
			customer_id BIGINT NOT NULL REFERENCES clients(id),
			customer_name TEXT NOT NULL DEFAULT '',
			currency TEXT NOT NULL DEFAULT '',
			loan_amount DOUBLE PRECISION NOT NULL,
			interest_rate DOUBLE PRECISION NOT NULL,
			interest_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
			payment_frequency INT NOT NULL,
			payment_amount DOUBLE PRECISION NOT NULL,
			term INT NOT NULL,
			repay_amount DOUBLE PRECISION NOT NULL,
			created_date DATE NOT NULL,
			payment_due_date DATE,
			contract_signed BOOLEAN NOT NULL DEFAULT FALSE,
			signed_photo TEXT NOT NULL DEFAULT '',
			lender_name TEXT NOT NULL DEFAULT '',
			audit TEXT NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		`CREATE TABLE IF NOT EXISTS repay (
			repay_id BIGSERIAL PRIMARY KEY,
			loan_id TEXT NOT NULL REFERENCES loans(loan_number) ON DELETE CASCADE,
			client_id BIGINT NOT NULL,
			due_date DATE NOT NULL,
			repay_amount DOUBLE PRECISION NOT NULL,
			paid_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
			late_fee DOUBLE PRECISION NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'pending',
			last_paid_date TIMESTAMPTZ,
			payment_method TEXT NOT NULL DEFAULT '',
			receipt_no TEXT NOT NULL DEFAULT '',
			remark TEXT NOT NULL DEFAULT '',
			create_date TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_repay_client ON repay(client_id)`,
		`CREATE INDEX IF NOT EXISTS idx_repay_loan ON repay(loan_id)`,

		`CREATE TABLE IF NOT EXISTS repay_payments (
			id UUID PRIMARY KEY,
			repay_id BIGINT NOT NULL REFERENCES repay(repay_id),
			loan_id TEXT NOT NULL,
			client_id BIGINT NOT NULL,
			amount DOUBLE PRECISION NOT NULL,
			late_fee DOUBLE PRECISION NOT NULL DEFAULT 0,
			paid_date TIMESTAMPTZ NOT NULL,
			payment_method TEXT NOT NULL DEFAULT '',
			receipt_no TEXT NOT NULL DEFAULT '',
			remark TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_repay_payments_repay ON repay_payments(repay_id)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	return nil
}

package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the referenced client does not exist.
var ErrNotFound = errors.New("client not found")

// ErrNoFields indicates a partial update carried nothing to change.
var ErrNoFields = errors.New("no fields to update")

// Repository persists clients.
type Repository interface {
	Create(ctx context.Context, c Client) (int64, error)
	Get(ctx context.Context, id int64) (Client, error)
	All(ctx context.Context) ([]Client, error)
	Update(ctx context.Context, id int64, input UpdateInput) error
	NextID(ctx context.Context) (int64, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed client repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const clientColumns = `id, name, phone, occupation, address, photo, passport_number,
	driver_license_number, owner_of_vehicle_number, business_license_number, vehicle_number_plate`

// Create inserts a client and returns the generated identifier.
func (r *PostgresRepository) Create(ctx context.Context, c Client) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `INSERT INTO clients
		(name, phone, occupation, address, photo, passport_number, driver_license_number,
		 owner_of_vehicle_number, business_license_number, vehicle_number_plate)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		c.Name, c.Phone, c.Occupation, c.Address, c.Photo, c.PassportNumber,
		c.DriverLicenseNumber, c.OwnerOfVehicleNumber, c.BusinessLicenseNumber, c.VehicleNumberPlate,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert client: %w", err)
	}
	return id, nil
}

// Get fetches a client by identifier.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (Client, error) {
	row := r.db.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id)
	c, err := scanClient(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Client{}, ErrNotFound
	}
	return c, err
}

// All returns every registered client.
func (r *PostgresRepository) All(ctx context.Context) ([]Client, error) {
	rows, err := r.db.Query(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// Update overwrites only the supplied fields.
func (r *PostgresRepository) Update(ctx context.Context, id int64, input UpdateInput) error {
	sets := make([]string, 0, 10)
	args := make([]any, 0, 11)

	add := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, *value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	add("name", input.Name)
	add("phone", input.Phone)
	add("occupation", input.Occupation)
	add("address", input.Address)
	add("photo", input.Photo)
	add("passport_number", input.PassportNumber)
	add("driver_license_number", input.DriverLicenseNumber)
	add("owner_of_vehicle_number", input.OwnerOfVehicleNumber)
	add("business_license_number", input.BusinessLicenseNumber)
	add("vehicle_number_plate", input.VehicleNumberPlate)

	if len(sets) == 0 {
		return ErrNoFields
	}

	args = append(args, id)
	sql := fmt.Sprintf("UPDATE clients SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	cmd, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// NextID returns the identifier the next created client will likely receive.
func (r *PostgresRepository) NextID(ctx context.Context) (int64, error) {
	var maxID *int64
	if err := r.db.QueryRow(ctx, `SELECT MAX(id) FROM clients`).Scan(&maxID); err != nil {
		return 0, err
	}
	if maxID == nil {
		return 1, nil
	}
	return *maxID + 1, nil
}

func scanClient(row pgx.Row) (Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Occupation, &c.Address, &c.Photo,
		&c.PassportNumber, &c.DriverLicenseNumber, &c.OwnerOfVehicleNumber,
		&c.BusinessLicenseNumber, &c.VehicleNumberPlate)
	return c, err
}

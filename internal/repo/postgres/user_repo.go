package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vendora/vendora/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, req *domain.RegisterRequest, passwordHash, otpHash string, otpExpires time.Time) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	SetOTP(ctx context.Context, userID int64, otpHash string, expiresAt time.Time) error
	MarkVerified(ctx context.Context, userID int64) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

// ErrDuplicate is returned when an email or username collides with an
// existing row (unique constraint 23505).
var ErrDuplicate = errors.New("duplicate user")

const userCols = `u.id, u.role, u.name, u.email, u.username, u.password_hash, u.is_verified,
	u.otp_hash, u.otp_expires,
	u.personal_hno, u.personal_street, u.personal_city, u.personal_state, u.personal_zip, u.personal_country,
	u.created_at, u.updated_at,
	v.store_name, v.phone,
	v.store_hno, v.store_street, v.store_city, v.store_state, v.store_zip, v.store_country`

const userFrom = ` FROM users u LEFT JOIN vendor_profiles v ON v.user_id = u.id `

func (r *userRepository) Create(ctx context.Context, req *domain.RegisterRequest, passwordHash, otpHash string, otpExpires time.Time) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	addr := req.PersonalAddress
	if addr == nil {
		addr = &domain.Address{}
	}

	const insertUser = `
		INSERT INTO users (role, name, email, username, password_hash, is_verified, otp_hash, otp_expires,
			personal_hno, personal_street, personal_city, personal_state, personal_zip, personal_country)
		VALUES ($1, $2, $3, $4, $5, false, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at`

	u := domain.User{
		Role:            req.Role,
		Name:            req.Name,
		Email:           req.Email,
		Username:        req.Username,
		PasswordHash:    passwordHash,
		OTPHash:         otpHash,
		OTPExpires:      &otpExpires,
		PersonalAddress: *addr,
	}

	err = tx.QueryRow(ctx, insertUser,
		req.Role, req.Name, req.Email, req.Username, passwordHash, otpHash, otpExpires,
		addr.HNo, addr.Street, addr.City, addr.State, addr.Zip, addr.Country,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}

	if req.Role == domain.RoleVendor {
		store := req.StoreAddress
		if store == nil {
			store = &domain.Address{}
		}

		const insertVendor = `
			INSERT INTO vendor_profiles (user_id, store_name, phone,
				store_hno, store_street, store_city, store_state, store_zip, store_country)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

		if _, err := tx.Exec(ctx, insertVendor,
			u.ID, req.StoreName, req.Phone,
			store.HNo, store.Street, store.City, store.State, store.Zip, store.Country,
		); err != nil {
			return nil, err
		}

		u.Vendor = &domain.VendorProfile{
			StoreName:    req.StoreName,
			Phone:        req.Phone,
			StoreAddress: *store,
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &u, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	const q = `SELECT ` + userCols + userFrom + `WHERE u.email = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	u, err := scanUser(r.pool.QueryRow(ctx, q, email))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return u, err
}

func (r *userRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	const q = `SELECT ` + userCols + userFrom + `WHERE u.id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	u, err := scanUser(r.pool.QueryRow(ctx, q, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return u, err
}

func (r *userRepository) SetOTP(ctx context.Context, userID int64, otpHash string, expiresAt time.Time) error {
	const q = `UPDATE users SET otp_hash = $2, otp_expires = $3, updated_at = now() WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, userID, otpHash, expiresAt)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}

func (r *userRepository) MarkVerified(ctx context.Context, userID int64) error {
	const q = `
		UPDATE users
		SET is_verified = true, otp_hash = NULL, otp_expires = NULL, updated_at = now()
		WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, userID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u         domain.User
		otpHash   *string
		storeName *string
		phone     *string
		storeHNo, storeStreet, storeCity, storeState, storeZip, storeCountry *string
	)

	err := row.Scan(
		&u.ID, &u.Role, &u.Name, &u.Email, &u.Username, &u.PasswordHash, &u.IsVerified,
		&otpHash, &u.OTPExpires,
		&u.PersonalAddress.HNo, &u.PersonalAddress.Street, &u.PersonalAddress.City,
		&u.PersonalAddress.State, &u.PersonalAddress.Zip, &u.PersonalAddress.Country,
		&u.CreatedAt, &u.UpdatedAt,
		&storeName, &phone,
		&storeHNo, &storeStreet, &storeCity, &storeState, &storeZip, &storeCountry,
	)
	if err != nil {
		return nil, err
	}

	if otpHash != nil {
		u.OTPHash = *otpHash
	}

	if storeName != nil {
		u.Vendor = &domain.VendorProfile{
			StoreName: *storeName,
			Phone:     deref(phone),
			StoreAddress: domain.Address{
				HNo:     deref(storeHNo),
				Street:  deref(storeStreet),
				City:    deref(storeCity),
				State:   deref(storeState),
				Zip:     deref(storeZip),
				Country: deref(storeCountry),
			},
		}
	}

	return &u, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

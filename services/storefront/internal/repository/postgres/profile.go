package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/storefront/pkg/database"
	"github.com/utafrali/storefront/services/storefront/internal/domain"
)

const getProfileQuery = `
		SELECT user_id, first_name, last_name, email, COALESCE(phone, ''),
		       COALESCE(shipping_address, 'null'::jsonb), COALESCE(billing_address, 'null'::jsonb)
		FROM profiles
		WHERE user_id = $1`

const upsertProfileQuery = `
		INSERT INTO profiles (user_id, first_name, last_name, email, phone, shipping_address, billing_address)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			shipping_address = EXCLUDED.shipping_address,
			billing_address = EXCLUDED.billing_address,
			updated_at = NOW()`

// ProfileRepository implements repository.ProfileRepository using PostgreSQL.
// Addresses are stored as JSONB documents.
type ProfileRepository struct {
	db database.DBTX
}

// NewProfileRepository creates a new PostgreSQL-backed profile repository.
func NewProfileRepository(db database.DBTX) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Get retrieves the profile of userID, or nil when none exists.
func (r *ProfileRepository) Get(ctx context.Context, userID string) (_ *domain.Profile, err error) {
	ctx, end := database.TraceQuery(ctx, "GetProfile", getProfileQuery)
	defer func() { end(err) }()

	var (
		p                 domain.Profile
		shipping, billing []byte
	)
	err = r.db.QueryRow(ctx, getProfileQuery, userID).Scan(
		&p.UserID,
		&p.FirstName,
		&p.LastName,
		&p.Email,
		&p.Phone,
		&shipping,
		&billing,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	if p.ShippingAddress, err = decodeAddress(shipping); err != nil {
		return nil, fmt.Errorf("decode shipping address of %s: %w", userID, err)
	}
	if p.BillingAddress, err = decodeAddress(billing); err != nil {
		return nil, fmt.Errorf("decode billing address of %s: %w", userID, err)
	}

	return &p, nil
}

// Upsert writes p, replacing any stored profile with the same user ID. It is
// used by the seed command; the account view never writes profiles.
func (r *ProfileRepository) Upsert(ctx context.Context, p domain.Profile) (err error) {
	ctx, end := database.TraceQuery(ctx, "UpsertProfile", upsertProfileQuery)
	defer func() { end(err) }()

	shipping, err := encodeAddress(p.ShippingAddress)
	if err != nil {
		return fmt.Errorf("encode shipping address: %w", err)
	}
	billing, err := encodeAddress(p.BillingAddress)
	if err != nil {
		return fmt.Errorf("encode billing address: %w", err)
	}

	_, err = r.db.Exec(ctx, upsertProfileQuery,
		p.UserID, p.FirstName, p.LastName, p.Email, p.Phone, shipping, billing,
	)
	if err != nil {
		return fmt.Errorf("upsert profile %s: %w", p.UserID, err)
	}
	return nil
}

// encodeAddress returns nil for a missing address so the column stays NULL.
func encodeAddress(addr *domain.AddressRecord) ([]byte, error) {
	if addr == nil {
		return nil, nil
	}
	return json.Marshal(addr)
}

func decodeAddress(raw []byte) (*domain.AddressRecord, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var addr *domain.AddressRecord
	if err := json.Unmarshal(raw, &addr); err != nil {
		return nil, err
	}
	return addr, nil
}

package shoes

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/kickstock-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/kickstock-backend/pkg/errors"
)

// racingRepo lets another writer change the row between the state check and
// the guarded update.
type racingRepo struct {
	Repository
	rival map[string]any
}

func (r racingRepo) WithTx(tx *gorm.DB) Repository {
	return racingRepo{Repository: r.Repository.WithTx(tx), rival: r.rival}
}

func (r racingRepo) UpdateGuarded(ctx context.Context, id uint, guard map[string]any, updates map[string]any) (int64, error) {
	if err := r.Repository.Update(ctx, id, r.rival); err != nil {
		return 0, err
	}
	return r.Repository.UpdateGuarded(ctx, id, guard, updates)
}

func (e *testEnv) racingService(t *testing.T, rival map[string]any) Service {
	t.Helper()
	svc, err := NewService(racingRepo{Repository: NewRepository(e.client.DB()), rival: rival}, e.client, e.audit, e.metrics, e.logg)
	require.NoError(t, err)
	return svc
}

func TestGuardedUpdateLosesToRivalWriter(t *testing.T) {
	soldCtx := ListingContext{BuyerUsername: str("late-buyer"), SalePrice: dec("210")}

	tests := []struct {
		name    string
		prepare func(t *testing.T, env *testEnv, shoeID uint)
		rival   map[string]any
		act     func(svc Service, shoeID uint) error
		trail   []string
	}{
		{
			name: "listing",
			prepare: func(t *testing.T, env *testEnv, shoeID uint) {
				_, err := env.svc.TransitionListing(context.Background(), shoeID, enums.ListingStatusListed, ListingContext{})
				require.NoError(t, err)
			},
			rival: map[string]any{
				"listing_status": enums.ListingStatusSold.String(),
				"buyer_username": "first-buyer",
			},
			act: func(svc Service, shoeID uint) error {
				_, err := svc.TransitionListing(context.Background(), shoeID, enums.ListingStatusSold, soldCtx)
				return err
			},
			trail: []string{"created", "listed"},
		},
		{
			name:    "payment",
			prepare: func(t *testing.T, env *testEnv, shoeID uint) { env.sell(t, shoeID) },
			rival:   map[string]any{"payment_status": enums.PaymentStatusFailed.String()},
			act: func(svc Service, shoeID uint) error {
				_, err := svc.TransitionPayment(context.Background(), shoeID, enums.PaymentStatusCompleted, "ops")
				return err
			},
			trail: []string{"created", "listed", "sold"},
		},
		{
			name: "shipping",
			prepare: func(t *testing.T, env *testEnv, shoeID uint) {
				env.sell(t, shoeID)
				_, err := env.svc.TransitionPayment(context.Background(), shoeID, enums.PaymentStatusCompleted, "")
				require.NoError(t, err)
			},
			rival: map[string]any{"shipping_status": enums.ShippingStatusShipped.String()},
			act: func(svc Service, shoeID uint) error {
				_, err := svc.TransitionShipping(context.Background(), shoeID, enums.ShippingStatusShipped, ShippingContext{})
				return err
			},
			trail: []string{"created", "listed", "sold", "payment_completed"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			shoe := env.createAirMax(t)
			tc.prepare(t, env, shoe.ID)
			before, err := env.svc.ListTransactions(context.Background(), shoe.ID)
			require.NoError(t, err)

			err = tc.act(env.racingService(t, tc.rival), shoe.ID)
			require.Error(t, err)
			assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)

			assert.Equal(t, tc.trail, trailActions(t, env, shoe.ID))
			after, err := env.svc.ListTransactions(context.Background(), shoe.ID)
			require.NoError(t, err)
			assert.Len(t, after, len(before))
		})
	}
}

func TestSoldRejectsSalePriceOutsideColumn(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	shoe := env.createAirMax(t)
	_, err := env.svc.TransitionListing(ctx, shoe.ID, enums.ListingStatusListed, ListingContext{})
	require.NoError(t, err)

	for _, price := range []string{"100000000", "1e9", "12.345", "-1"} {
		_, err := env.svc.TransitionListing(ctx, shoe.ID, enums.ListingStatusSold, ListingContext{
			BuyerUsername: str("buyer"),
			SalePrice:     dec(price),
		})
		typed := pkgerrors.As(err)
		require.NotNil(t, typed, price)
		assert.Equal(t, pkgerrors.CodeValidation, typed.Code(), price)
		assert.Contains(t, typed.Details(), "sale_price", price)
	}

	sold, err := env.svc.TransitionListing(ctx, shoe.ID, enums.ListingStatusSold, ListingContext{
		BuyerUsername: str("buyer"),
		SalePrice:     dec("99999999.99"),
	})
	require.NoError(t, err)
	assert.Equal(t, enums.ListingStatusSold, sold.ListingStatus)
	assert.Equal(t, []string{"created", "listed", "sold"}, trailActions(t, env, shoe.ID))
}

func TestNumericColumnFits(t *testing.T) {
	tests := []struct {
		col   numericColumn
		value string
		fits  bool
	}{
		{sizeColumn, "10.5", true},
		{sizeColumn, "999.99", true},
		{sizeColumn, "1000", false},
		{sizeColumn, "9.125", false},
		{sizeColumn, "10.50", true},
		{moneyColumn, "99999999.99", true},
		{moneyColumn, "100000000", false},
		{moneyColumn, "-99999999.99", true},
		{moneyColumn, "0.001", false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.fits, tc.col.fits(decimal.RequireFromString(tc.value)), "%+v %s", tc.col, tc.value)
	}
}

func TestMapWriteErrorClassifiesDriverErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code pkgerrors.Code
	}{
		{"duplicate upc", &pgconn.PgError{Code: "23505", ConstraintName: "idx_shoes_upc"}, pkgerrors.CodeConflict},
		{"duplicate listing", &pgconn.PgError{Code: "23505", ConstraintName: "idx_shoes_ebay_listing_id"}, pkgerrors.CodeConflict},
		{"missing owner", &pgconn.PgError{Code: "23503", ConstraintName: "fk_shoes_user"}, pkgerrors.CodeNotFound},
		{"overflow", &pgconn.PgError{Code: "22003"}, pkgerrors.CodeStorage},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := mapWriteError(tc.err, "create shoe")
			assert.True(t, pkgerrors.IsCode(err, tc.code), "got %v", err)
		})
	}
}

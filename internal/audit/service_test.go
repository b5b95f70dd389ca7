package audit

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/angelmondragon/kickstock-backend/pkg/db"
	"github.com/angelmondragon/kickstock-backend/pkg/db/dbtest"
	"github.com/angelmondragon/kickstock-backend/pkg/db/models"
	"github.com/angelmondragon/kickstock-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/kickstock-backend/pkg/errors"
)

func setup(t *testing.T) (*db.Client, Service, []uint) {
	t.Helper()
	client := dbtest.Open(t)
	userID := dbtest.SeedUser(t, client, "auditor@example.com")

	shoeIDs := make([]uint, 0, 2)
	for _, brand := range []string{"Nike", "Adidas"} {
		shoe := models.Shoe{
			Base:           models.NewBase(nil),
			UserID:         userID,
			Brand:          brand,
			Width:          "M",
			Condition:      "Brand New, in Box",
			ListingStatus:  enums.ListingStatusNotListed,
			PaymentStatus:  enums.PaymentStatusPending,
			ShippingStatus: enums.ShippingStatusNotShipped,
		}
		require.NoError(t, client.DB().Create(&shoe).Error)
		shoeIDs = append(shoeIDs, shoe.ID)
	}

	svc, err := NewService(NewRepository(client.DB()))
	require.NoError(t, err)
	return client, svc, shoeIDs
}

func TestRecordAppendsEntry(t *testing.T) {
	_, svc, shoes := setup(t)

	entry, err := svc.Record(context.Background(), RecordInput{ShoeID: shoes[0], ActionType: " photographed ", Actor: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "photographed", entry.ActionType)
	assert.Equal(t, "alice", entry.Actor)
	assert.NotZero(t, entry.ID)
}

func TestRecordDefaultsActorToSystem(t *testing.T) {
	_, svc, shoes := setup(t)

	entry, err := svc.Record(context.Background(), RecordInput{ShoeID: shoes[0], ActionType: "created"})
	require.NoError(t, err)
	assert.Equal(t, enums.ActorSystem, entry.Actor)
}

func TestRecordValidation(t *testing.T) {
	_, svc, shoes := setup(t)
	ctx := context.Background()

	_, err := svc.Record(ctx, RecordInput{ShoeID: shoes[0], ActionType: "  "})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Record(ctx, RecordInput{ShoeID: 9999, ActionType: "listed"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.Trail(ctx, 9999)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestTrailIsOrderedAndIsolated(t *testing.T) {
	_, svc, shoes := setup(t)
	ctx := context.Background()
	target, other := shoes[0], shoes[1]

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for i := 0; i < 10; i++ {
			if _, err := svc.Record(gctx, RecordInput{ShoeID: other, ActionType: fmt.Sprintf("noise-%d", i)}); err != nil {
				return err
			}
		}
		return nil
	})
	g.Go(func() error {
		for _, action := range []string{"created", "listed", "sold"} {
			if _, err := svc.Record(gctx, RecordInput{ShoeID: target, ActionType: action}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, g.Wait())

	trail, err := svc.Trail(ctx, target)
	require.NoError(t, err)
	require.Len(t, trail, 3)
	assert.Equal(t, []string{"created", "listed", "sold"}, actions(trail))
	for i := 1; i < len(trail); i++ {
		assert.Less(t, trail[i-1].ID, trail[i].ID)
		assert.False(t, trail[i].CreatedAt.Before(trail[i-1].CreatedAt))
	}

	noise, err := svc.Trail(ctx, other)
	require.NoError(t, err)
	assert.Len(t, noise, 10)
}

func TestWithTxRollsBackEntry(t *testing.T) {
	client, svc, shoes := setup(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := svc.WithTx(tx).Record(ctx, RecordInput{ShoeID: shoes[0], ActionType: "listed"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	trail, err := svc.Trail(ctx, shoes[0])
	require.NoError(t, err)
	assert.Empty(t, trail)
}

func actions(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ActionType)
	}
	return out
}

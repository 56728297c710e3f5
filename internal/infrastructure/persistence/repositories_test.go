package persistence

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/sales"
	"github.com/storefront/backend/internal/domain/settings"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormBulkRepository_Products(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	p1, err := catalog.NewProduct("Lamp", "Desk lamp", decimal.RequireFromString("19.99"), 5, true)
	require.NoError(t, err)
	p2, err := catalog.NewProduct("Chair", "", decimal.RequireFromString("120"), 0, false)
	require.NoError(t, err)

	require.NoError(t, repo.Create(ctx, p1))
	require.NoError(t, repo.Create(ctx, p2))
	assert.NotZero(t, p1.ID)
	assert.Greater(t, p2.ID, p1.ID)
	assert.False(t, p1.CreatedAt.IsZero())

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Lamp", all[0].Name)
	assert.True(t, all[0].Price.Equal(decimal.RequireFromString("19.99")))
	assert.Equal(t, "Chair", all[1].Name)
	assert.False(t, all[1].Visible)

	deleted, err := repo.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	all, err = repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestGormSettingRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormSettingRepository(db)
	ctx := context.Background()

	s, err := settings.NewSetting("currency", settings.SettingTypeCurrency, "USD", "EUR", true)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, s))

	t.Run("find by name", func(t *testing.T) {
		found, err := repo.FindByName(ctx, "currency")
		require.NoError(t, err)
		assert.Equal(t, s.ID, found.ID)
		assert.Equal(t, "EUR", found.Value)
		assert.True(t, found.Builtin)
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := repo.FindByName(ctx, "nope")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("update", func(t *testing.T) {
		s.Value = "GBP"
		require.NoError(t, repo.Update(ctx, s))
		found, err := repo.FindByName(ctx, "currency")
		require.NoError(t, err)
		assert.Equal(t, "GBP", found.Value)
	})

	t.Run("update missing row", func(t *testing.T) {
		err := repo.Update(ctx, &settings.Setting{ID: 999, Type: settings.SettingTypeString})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("duplicate name", func(t *testing.T) {
		dup, err := settings.NewSetting("currency", settings.SettingTypeString, "", "", false)
		require.NoError(t, err)
		assert.ErrorIs(t, repo.Create(ctx, dup), shared.ErrAlreadyExists)
	})
}

func TestGormUserRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()

	admin, err := identity.NewUser("Admin@Shop.test", "hash", "Ada", "Admin", identity.RoleAdmin)
	require.NoError(t, err)
	customer, err := identity.NewUser("buyer@shop.test", "hash", "Bo", "Buyer", identity.RoleCustomer)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, admin))
	require.NoError(t, repo.Create(ctx, customer))

	found, err := repo.FindByEmail(ctx, " ADMIN@shop.test ")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, found.ID)

	_, err = repo.FindByEmail(ctx, "ghost@shop.test")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	deleted, err := repo.DeleteAllExcept(ctx, identity.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	remaining, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, identity.RoleAdmin, remaining[0].Role)
}

func TestGormWishlistRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormWishlistRepository(db)
	ctx := context.Background()

	w, err := identity.NewWishlist(7, "Birthday", []uint{30, 10, 20, 10})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, w))
	assert.NotZero(t, w.ID)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, []uint{30, 10, 20}, all[0].ProductIDs)

	deleted, err := repo.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var links int64
	require.NoError(t, db.Model(&models.WishlistProductModel{}).Count(&links).Error)
	assert.Zero(t, links)
}

func TestGormCategoryRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCategoryRepository(db)
	ctx := context.Background()

	root, err := catalog.NewCategory("Home", "", "", []uint{3, 1})
	require.NoError(t, err)
	child, err := catalog.NewCategory("Lighting", "", "", nil)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, root))
	require.NoError(t, repo.Create(ctx, child))

	require.NoError(t, repo.SetParent(ctx, child.ID, &root.ID))
	assert.ErrorIs(t, repo.SetParent(ctx, 999, nil), shared.ErrNotFound)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "home", all[0].Slug)
	assert.Equal(t, []uint{3, 1}, all[0].ProductIDs)
	assert.Nil(t, all[0].ParentCategoryID)
	require.NotNil(t, all[1].ParentCategoryID)
	assert.Equal(t, root.ID, *all[1].ParentCategoryID)
	assert.Empty(t, all[1].ProductIDs)

	deleted, err := repo.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
}

func TestGormOrderRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	userID := uint(4)
	order, err := sales.NewOrder(&userID, "Ann Lee", "ann@shop.test",
		[]sales.OrderItem{
			{ProductID: 1, Quantity: 2, Price: decimal.RequireFromString("5.50")},
			{ProductID: 2, Quantity: 1, Price: decimal.RequireFromString("3")},
		},
		sales.OrderDelivery{MethodID: 1, Address: "1 Main St", City: "Springfield", Country: "US"},
		sales.OrderPayment{MethodID: 2},
	)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, order))
	assert.NotZero(t, order.ID)

	require.NoError(t, repo.UpdateStatus(ctx, order.ID, sales.OrderStatusShipped))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, 999, sales.OrderStatusShipped), shared.ErrNotFound)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	got := all[0]
	assert.Equal(t, sales.OrderStatusShipped, got.Status)
	require.NotNil(t, got.UserID)
	assert.Equal(t, userID, *got.UserID)
	assert.Equal(t, "Springfield", got.Delivery.City)
	assert.Equal(t, uint(2), got.Payment.MethodID)
	require.Len(t, got.Items, 2)
	assert.Equal(t, uint(1), got.Items[0].ProductID)
	assert.True(t, got.Total().Equal(decimal.RequireFromString("14")))

	deleted, err := repo.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var items int64
	require.NoError(t, db.Model(&models.OrderItemModel{}).Count(&items).Error)
	assert.Zero(t, items)
}

func TestDeleteAll_EmptyTableTwice(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	repos := map[string]interface {
		DeleteAll(ctx context.Context) (int64, error)
	}{
		"settings":       NewGormSettingRepository(db),
		"products":       NewGormProductRepository(db),
		"productPhotos":  NewGormProductPhotoRepository(db),
		"categories":     NewGormCategoryRepository(db),
		"paymentMethods": NewGormPaymentMethodRepository(db),
		"orders":         NewGormOrderRepository(db),
		"pages":          NewGormPageRepository(db),
	}
	for name, repo := range repos {
		t.Run(name, func(t *testing.T) {
			for range 2 {
				deleted, err := repo.DeleteAll(ctx)
				require.NoError(t, err)
				assert.Zero(t, deleted)
			}
		})
	}
}

func TestGormUserRepository_DeleteAllExceptTwice(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()

	t.Run("empty table", func(t *testing.T) {
		for range 2 {
			deleted, err := repo.DeleteAllExcept(ctx, identity.RoleAdmin)
			require.NoError(t, err)
			assert.Zero(t, deleted)
		}
	})

	t.Run("only kept accounts left", func(t *testing.T) {
		admin, err := identity.NewUser("admin@shop.test", "hash", "", "", identity.RoleAdmin)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, admin))

		for range 2 {
			deleted, err := repo.DeleteAllExcept(ctx, identity.RoleAdmin)
			require.NoError(t, err)
			assert.Zero(t, deleted)
		}
		remaining, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, remaining, 1)
	})
}

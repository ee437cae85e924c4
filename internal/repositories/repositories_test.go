package repositories_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"xivttw/internal/models"
	"xivttw/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupDB opens a private in-memory SQLite database with every table migrated.
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, repositories.AutoMigrate(db))
	return db
}

func boolPtr(b bool) *bool { return &b }

func TestGORMProductRepository(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	repo := repositories.NewGORMProductRepository(db)
	catRepo := repositories.NewGORMCategoryRepository(db)

	cat := &models.Category{Name: "Hoodies", Slug: "hoodies"}
	require.NoError(t, catRepo.Create(ctx, cat))

	featured := &models.Product{Name: "Blvck Hoodie", Slug: "blvck-hoodie", Price: decimal.RequireFromString("60.00"),
		CategoryID: &cat.ID, Featured: true, Sizes: []string{"M", "L"}}
	plain := &models.Product{Name: "Blvck Tee", Slug: "blvck-tee", Price: decimal.RequireFromString("25.50")}
	draft := &models.Product{Name: "Draft Cap", Slug: "draft-cap", Price: decimal.NewFromInt(15), Status: models.ProductStatusDraft}
	for _, p := range []*models.Product{featured, plain, draft} {
		require.NoError(t, repo.Create(ctx, p))
		assert.NotEmpty(t, p.ID)
	}

	t.Run("active filter", func(t *testing.T) {
		products, err := repo.List(ctx, models.ProductFilter{Status: models.ProductStatusActive})
		require.NoError(t, err)
		assert.Len(t, products, 2)
	})

	t.Run("featured filter with category join", func(t *testing.T) {
		products, err := repo.List(ctx, models.ProductFilter{Status: models.ProductStatusActive, Featured: boolPtr(true)})
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "Blvck Hoodie", products[0].Name)
		require.NotNil(t, products[0].Category)
		assert.Equal(t, "hoodies", products[0].Category.Slug)
		assert.Equal(t, []string{"M", "L"}, products[0].Sizes)
	})

	t.Run("limit", func(t *testing.T) {
		products, err := repo.List(ctx, models.ProductFilter{Limit: 1})
		require.NoError(t, err)
		assert.Len(t, products, 1)
	})

	t.Run("get keeps price", func(t *testing.T) {
		got, err := repo.GetByID(ctx, plain.ID)
		require.NoError(t, err)
		assert.True(t, got.Price.Equal(decimal.RequireFromString("25.5")), "got %s", got.Price)
	})

	t.Run("duplicate slug", func(t *testing.T) {
		err := repo.Create(ctx, &models.Product{Name: "Copy", Slug: "blvck-tee", Price: decimal.NewFromInt(1)})
		assert.ErrorIs(t, err, repositories.ErrDuplicate)
	})

	t.Run("update and delete", func(t *testing.T) {
		plain.Featured = true
		plain.Price = decimal.NewFromInt(30)
		require.NoError(t, repo.Update(ctx, plain))
		got, err := repo.GetByID(ctx, plain.ID)
		require.NoError(t, err)
		assert.True(t, got.Featured)
		assert.True(t, got.Price.Equal(decimal.NewFromInt(30)))

		require.NoError(t, repo.Delete(ctx, plain.ID))
		_, err = repo.GetByID(ctx, plain.ID)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, plain.ID), repositories.ErrNotFound)
		assert.ErrorIs(t, repo.Update(ctx, &models.Product{ID: "missing", Slug: "missing"}), repositories.ErrNotFound)
	})

	t.Run("count", func(t *testing.T) {
		n, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("category delete detaches products", func(t *testing.T) {
		require.NoError(t, catRepo.Delete(ctx, cat.ID))
		got, err := repo.GetByID(ctx, featured.ID)
		require.NoError(t, err)
		assert.Nil(t, got.CategoryID)
		assert.ErrorIs(t, catRepo.Delete(ctx, cat.ID), repositories.ErrNotFound)
	})
}

func TestGORMCartRepository_OwnerScoping(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMCartRepository(setupDB(t))

	anon := models.CartOwner{SessionID: "session_abc"}
	user := models.CartOwner{UserID: "admin-1"}

	require.NoError(t, repo.Create(ctx, &models.CartItem{SessionID: anon.SessionID, ProductID: "p1", Quantity: 2, Size: "M"}))
	require.NoError(t, repo.Create(ctx, &models.CartItem{UserID: user.UserID, ProductID: "p1", Quantity: 1, Size: "M"}))

	line, err := repo.FindLine(ctx, anon, "p1", "M", "")
	require.NoError(t, err)
	assert.Equal(t, 2, line.Quantity)

	_, err = repo.FindLine(ctx, anon, "p1", "L", "")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	require.NoError(t, repo.UpdateQuantity(ctx, anon, line.ID, 7))
	assert.ErrorIs(t, repo.UpdateQuantity(ctx, user, line.ID, 1), repositories.ErrNotFound, "another owner cannot touch the line")

	items, err := repo.ListByOwner(ctx, anon)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 7, items[0].Quantity)

	require.NoError(t, repo.DeleteByOwner(ctx, anon))
	items, err = repo.ListByOwner(ctx, anon)
	require.NoError(t, err)
	assert.Empty(t, items)

	items, err = repo.ListByOwner(ctx, user)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func newOrder(key string) *models.Order {
	subtotal := decimal.NewFromInt(120)
	tax := decimal.RequireFromString("9.60")
	return &models.Order{
		IdempotencyKey:    key,
		CustomerName:      "Ada Obi",
		CustomerEmail:     "ada@example.com",
		PaymentMethod:     "squadco",
		PaymentStatus:     models.PaymentPending,
		FulfillmentStatus: models.FulfillmentUnfulfilled,
		Subtotal:          subtotal,
		ShippingCost:      decimal.Zero,
		TaxAmount:         tax,
		TotalAmount:       subtotal.Add(tax),
		Items: []models.OrderItem{
			{ProductID: "p1", ProductName: "Blvck Hoodie", Quantity: 2, Price: decimal.NewFromInt(60), Size: "M"},
		},
	}
}

func TestGORMOrderRepository(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMOrderRepository(setupDB(t))

	first, created, err := repo.CreateIfAbsent(ctx, newOrder("key-1"))
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, first.ID)

	again, created, err := repo.CreateIfAbsent(ctx, newOrder("key-1"))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)

	other, created, err := repo.CreateIfAbsent(ctx, newOrder("key-2"))
	require.NoError(t, err)
	assert.True(t, created)

	require.NoError(t, repo.AttachPayment(ctx, first.ID, "BLVCK_1_ABC", "https://pay.example/checkout"))
	byRef, err := repo.GetByReference(ctx, "BLVCK_1_ABC")
	require.NoError(t, err)
	assert.Equal(t, first.ID, byRef.ID)
	require.Len(t, byRef.Items, 1)
	assert.Equal(t, "Blvck Hoodie", byRef.Items[0].ProductName)
	assert.True(t, byRef.TotalAmount.Equal(decimal.RequireFromString("129.60")))

	require.NoError(t, repo.MarkPaid(ctx, first.ID))

	paid, err := repo.List(ctx, models.OrderFilter{Status: models.StatusPaid})
	require.NoError(t, err)
	require.Len(t, paid, 1)
	assert.Equal(t, first.ID, paid[0].ID)

	pending, err := repo.List(ctx, models.OrderFilter{Status: models.StatusPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, other.ID, pending[0].ID)

	require.NoError(t, repo.UpdateFulfillment(ctx, first.ID, models.FulfillmentProcessing))
	processing, err := repo.List(ctx, models.OrderFilter{Status: models.StatusProcessing})
	require.NoError(t, err)
	assert.Len(t, processing, 1)

	all, err := repo.List(ctx, models.OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, repo.Delete(ctx, other.ID))
	_, err = repo.GetByID(ctx, other.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.ErrorIs(t, repo.MarkPaid(ctx, other.ID), repositories.ErrNotFound)
}

func TestGORMSessionAndAttemptRepositories(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	sessions := repositories.NewGORMSessionRepository(db)
	attempts := repositories.NewGORMAttemptRepository(db)

	now := time.Now()
	s := &models.AdminSession{ID: "sid-1", UserID: "admin-1", Role: models.RoleAdmin, CreatedAt: now, ExpiresAt: now.Add(24 * time.Hour)}
	require.NoError(t, sessions.Create(ctx, s))

	got, err := sessions.Get(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, "admin-1", got.UserID)

	list, err := sessions.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, sessions.Delete(ctx, "sid-1"))
	require.NoError(t, sessions.Delete(ctx, "sid-1"), "delete is idempotent")
	_, err = sessions.Get(ctx, "sid-1")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	a, err := attempts.Get(ctx, "admin@xivttw.com")
	require.NoError(t, err)
	assert.Equal(t, 0, a.Failures)

	a.Failures = 4
	require.NoError(t, attempts.Save(ctx, a))
	lockedUntil := now.Add(15 * time.Minute)
	a.Failures = 5
	a.LockedUntil = &lockedUntil
	require.NoError(t, attempts.Save(ctx, a))

	a, err = attempts.Get(ctx, "admin@xivttw.com")
	require.NoError(t, err)
	assert.Equal(t, 5, a.Failures)
	require.NotNil(t, a.LockedUntil)
	assert.True(t, a.Locked(now))

	require.NoError(t, attempts.Reset(ctx, "admin@xivttw.com"))
	a, err = attempts.Get(ctx, "admin@xivttw.com")
	require.NoError(t, err)
	assert.Equal(t, 0, a.Failures)
}

func TestGORMContactRepository(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMContactRepository(setupDB(t))

	msg := &models.ContactMessage{Name: "Ada", Email: "ada@example.com", Subject: "Sizing", Message: "Do hoodies run large?"}
	require.NoError(t, repo.Create(ctx, msg))
	require.NoError(t, repo.SetRead(ctx, msg.ID, true))

	msgs, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].Read)

	assert.ErrorIs(t, repo.SetRead(ctx, "missing", true), repositories.ErrNotFound)
}

func TestGORMAdminUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMAdminUserRepository(setupDB(t))

	require.NoError(t, repo.Create(ctx, &models.AdminUser{Email: "ops@xivttw.com", PasswordHash: "x", Role: models.RoleSuperAdmin}))
	err := repo.Create(ctx, &models.AdminUser{Email: "ops@xivttw.com", PasswordHash: "y"})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)

	u, err := repo.GetByEmail(ctx, "ops@xivttw.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleSuperAdmin, u.Role)

	_, err = repo.GetByEmail(ctx, "nobody@xivttw.com")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

package repositories_test

import (
	"errors"
	"testing"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProduct(t *testing.T, repo repositories.ProductRepository, title string, price int) *models.Product {
	t.Helper()
	p := &models.Product{Title: title, Producer: "Acme", Year: 2020, Country: "US", Price: price, Quantity: 10}
	require.NoError(t, repo.Create(p))
	return p
}

func seedUser(t *testing.T, repo repositories.UserRepository, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Password: "hash"}
	require.NoError(t, repo.Create(u))
	return u
}

func TestProductRepository_CRUD(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repositories.NewGORMProductRepository(db)

	p := seedProduct(t, repo, "Lamp", 40)
	assert.NotEmpty(t, p.ID)

	got, err := repo.GetByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lamp", got.Title)

	got.Title = "Desk Lamp"
	got.Price = 0
	require.NoError(t, repo.Update(got))
	got, err = repo.GetByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Desk Lamp", got.Title)
	assert.Equal(t, 0, got.Price, "zero values are written too")

	require.NoError(t, repo.Delete(p.ID))
	_, err = repo.GetByID(p.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	err = repo.Delete(p.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	err = repo.Update(&models.Product{ID: "missing", Title: "x"})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestProductRepository_Queries(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repositories.NewGORMProductRepository(db)

	_, _, err := repo.PriceRange()
	assert.True(t, errors.Is(err, apperr.ErrNotFound), "empty catalog has no price range")

	seedProduct(t, repo, "Cheap", 10)
	seedProduct(t, repo, "Mid", 50)
	seedProduct(t, repo, "Pricey", 90)
	other := &models.Product{Title: "Mid", Producer: "Other", Year: 2021, Country: "FR", Price: 55}
	require.NoError(t, repo.Create(other))

	products, err := repo.FindByPriceBetween(20, 60)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, 50, products[0].Price)
	assert.Equal(t, 55, products[1].Price)

	products, err = repo.FindByProducer("Other")
	require.NoError(t, err)
	assert.Len(t, products, 1)

	products, err = repo.SearchByProducerOrTitle("Mid")
	require.NoError(t, err)
	assert.Len(t, products, 2)

	lo, hi, err := repo.PriceRange()
	require.NoError(t, err)
	assert.Equal(t, 10, lo)
	assert.Equal(t, 90, hi)

	all, err := repo.GetAll()
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestUserRepository_UniqueUsername(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repositories.NewGORMUserRepository(db)

	u := seedUser(t, repo, "alice")
	assert.Equal(t, models.RoleUser, u.Role)

	err := repo.Create(&models.User{Username: "alice", Email: "other@example.com", Password: "hash"})
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("username = ?", "alice").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUserRepository_Cart(t *testing.T) {
	db := testutil.NewDB(t)
	users := repositories.NewGORMUserRepository(db)
	products := repositories.NewGORMProductRepository(db)

	alice := seedUser(t, users, "alice")
	a := seedProduct(t, products, "A", 100)
	b := seedProduct(t, products, "B", 50)

	require.NoError(t, users.AddCartItem(alice.ID, a.ID))
	require.NoError(t, users.AddCartItem(alice.ID, b.ID))
	require.NoError(t, users.AddCartItem(alice.ID, a.ID))

	got, err := users.GetByUsername("alice")
	require.NoError(t, err)
	require.Len(t, got.Cart, 3)
	assert.Equal(t, []string{"A", "B", "A"}, titles(got.CartProducts()))

	require.NoError(t, users.RemoveCartItem(alice.ID, a.ID))
	got, err = users.GetByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, titles(got.CartProducts()), "only one unit is removed")

	err = users.RemoveCartItem(alice.ID, "missing")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	require.NoError(t, users.AddCartItem(alice.ID, b.ID))
	got, err = users.GetByID(alice.ID)
	require.NoError(t, err)
	require.Len(t, got.Cart, 3)

	// Only the listed rows go; the unit added last stays.
	require.NoError(t, users.RemoveCartItems(alice.ID, []uint{got.Cart[0].ID, got.Cart[1].ID}))
	got, err = users.GetByID(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, titles(got.CartProducts()))

	err = users.RemoveCartItems(alice.ID, []uint{got.Cart[0].ID, 9999})
	assert.True(t, errors.Is(err, apperr.ErrConflict), "a row that vanished is a concurrent change")
	assert.NoError(t, users.RemoveCartItems(alice.ID, nil))
}

func TestUserRepository_CartKeepsDeletedProducts(t *testing.T) {
	db := testutil.NewDB(t)
	users := repositories.NewGORMUserRepository(db)
	products := repositories.NewGORMProductRepository(db)

	alice := seedUser(t, users, "alice")
	a := seedProduct(t, products, "A", 100)
	require.NoError(t, users.AddCartItem(alice.ID, a.ID))
	require.NoError(t, products.Delete(a.ID))

	got, err := users.GetByUsername("alice")
	require.NoError(t, err)
	require.Len(t, got.Cart, 1)
	require.NotNil(t, got.Cart[0].Product)
	assert.Equal(t, "A", got.Cart[0].Product.Title)
}

func TestUserRepository_UpdateAndBumpVersion(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repositories.NewGORMUserRepository(db)

	alice := seedUser(t, repo, "alice")
	seedUser(t, repo, "bob")

	alice.Email = "alice@new.example.com"
	alice.Role = models.RoleAdmin
	require.NoError(t, repo.Update(alice))

	got, err := repo.GetByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@new.example.com", got.Email)
	assert.Equal(t, models.RoleAdmin, got.Role)

	got.Username = "bob"
	err = repo.Update(got)
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	stale, err := repo.GetByUsername("alice")
	require.NoError(t, err)
	fresh := *stale

	require.NoError(t, repo.BumpVersion(&fresh))
	assert.Equal(t, stale.Version+1, fresh.Version)

	err = repo.BumpVersion(stale)
	assert.True(t, errors.Is(err, apperr.ErrConflict), "a stale version must not win")
}

func TestOrderRepository(t *testing.T) {
	db := testutil.NewDB(t)
	orders := repositories.NewGORMOrderRepository(db)
	users := repositories.NewGORMUserRepository(db)
	products := repositories.NewGORMProductRepository(db)

	_, err := orders.Latest()
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	alice := seedUser(t, users, "alice")
	bob := seedUser(t, users, "bob")
	a := seedProduct(t, products, "A", 100)

	first := &models.Order{UserID: alice.ID, TotalPrice: 100, Items: []models.OrderItem{{ProductID: a.ID}}}
	require.NoError(t, orders.Create(first))
	second := &models.Order{UserID: bob.ID, TotalPrice: 200, Items: []models.OrderItem{{ProductID: a.ID}, {ProductID: a.ID}}}
	require.NoError(t, orders.Create(second))
	assert.Greater(t, second.ID, first.ID)

	latest, err := orders.Latest()
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
	assert.Len(t, latest.Products(), 2)

	mine, err := orders.GetByUser(alice.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, first.ID, mine[0].ID)

	all, err := orders.GetAll()
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = orders.GetByID(9999)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	ordered, err := products.IsOrdered(a.ID)
	require.NoError(t, err)
	assert.True(t, ordered)
}

func TestGORMTransactor_RollsBack(t *testing.T) {
	db := testutil.NewDB(t)
	users := repositories.NewGORMUserRepository(db)
	products := repositories.NewGORMProductRepository(db)
	tx := repositories.NewGORMTransactor(db)

	alice := seedUser(t, users, "alice")
	a := seedProduct(t, products, "A", 100)
	require.NoError(t, users.AddCartItem(alice.ID, a.ID))

	boom := errors.New("boom")
	err := tx.WithinTransaction(func(u repositories.UserRepository, o repositories.OrderRepository) error {
		require.NoError(t, o.Create(&models.Order{UserID: alice.ID, Items: []models.OrderItem{{ProductID: a.ID}}}))
		cart, err := u.GetByID(alice.ID)
		require.NoError(t, err)
		require.NoError(t, u.RemoveCartItems(alice.ID, []uint{cart.Cart[0].ID}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var orderCount int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	assert.Zero(t, orderCount)

	got, err := users.GetByID(alice.ID)
	require.NoError(t, err)
	assert.Len(t, got.Cart, 1)
}

func TestAuditRepositories(t *testing.T) {
	db := testutil.NewDB(t)

	for name, repo := range map[string]repositories.AuditRepository{
		"gorm":   repositories.NewGORMAuditRepository(db),
		"memory": repositories.NewMemoryAuditRepository(),
	} {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, repo.Append(&models.AuditEvent{Token: "abc123", Phase: models.AuditStart, Site: "s"}))
			require.NoError(t, repo.Append(&models.AuditEvent{Token: "zzz999", Phase: models.AuditAuth}))
			require.NoError(t, repo.Append(&models.AuditEvent{Token: "abc123", Phase: models.AuditEnd, Site: "s"}))

			events, err := repo.GetByToken("abc123")
			require.NoError(t, err)
			require.Len(t, events, 2)
			assert.Equal(t, models.AuditStart, events[0].Phase)
			assert.Equal(t, models.AuditEnd, events[1].Phase)
			assert.False(t, events[0].CreatedAt.IsZero())
		})
	}
}

func titles(products []models.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Title)
	}
	return out
}

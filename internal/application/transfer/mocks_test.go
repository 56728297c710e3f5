package transferapp

import (
	"context"
	"io"
	"strings"

	"github.com/storefront/backend/internal/domain/bulk"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/content"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/sales"
	"github.com/storefront/backend/internal/domain/settings"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/transfer"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

// MockCollection is a mock implementation of transfer.Collection
type MockCollection struct {
	mock.Mock
}

func (m *MockCollection) Export(ctx context.Context) ([]transfer.Record, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]transfer.Record), args.Error(1)
}

func (m *MockCollection) Import(ctx context.Context, records []transfer.Record, idMaps transfer.IDMaps) (transfer.IDMap, error) {
	args := m.Called(ctx, records, idMaps)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(transfer.IDMap), args.Error(1)
}

func (m *MockCollection) Clear(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockTransferRunRepository is a mock implementation of bulk.TransferRunRepository
type MockTransferRunRepository struct {
	mock.Mock
}

func (m *MockTransferRunRepository) Save(ctx context.Context, run *bulk.TransferRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockTransferRunRepository) FindRecent(ctx context.Context, limit int) ([]bulk.TransferRun, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]bulk.TransferRun), args.Error(1)
}

// stubDecoder returns a fixed dataset, with photos when set
type stubDecoder struct {
	dataset transfer.Dataset
	photos  transfer.PhotoStage
	err     error
}

func (d stubDecoder) Decode(context.Context, string, io.Reader) (*transfer.Archive, error) {
	if d.err != nil {
		return nil, d.err
	}
	return &transfer.Archive{Dataset: d.dataset, Photos: d.photos}, nil
}

// MockPhotoStage is a mock implementation of transfer.PhotoStage
type MockPhotoStage struct {
	mock.Mock
}

func (m *MockPhotoStage) Publish(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockPhotoStage) Revoke(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockPhotoStage) Close() error {
	return m.Called().Error(0)
}

// memRepo is an in-memory shared.BulkRepository. Assigned ids start at 100
// so tests can tell archive ids and store ids apart.
type memRepo[T any] struct {
	rows      []T
	next      uint
	setID     func(*T, uint)
	getID     func(*T) uint
	createErr error
}

func newMemRepo[T any](get func(*T) uint, set func(*T, uint)) *memRepo[T] {
	return &memRepo[T]{next: 100, getID: get, setID: set}
}

func (r *memRepo[T]) FindAll(context.Context) ([]T, error) {
	return append([]T(nil), r.rows...), nil
}

func (r *memRepo[T]) Create(_ context.Context, entity *T) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.setID(entity, r.next)
	r.next++
	r.rows = append(r.rows, *entity)
	return nil
}

func (r *memRepo[T]) DeleteAll(context.Context) (int64, error) {
	n := int64(len(r.rows))
	r.rows = nil
	return n, nil
}

func (r *memRepo[T]) find(id uint) *T {
	for i := range r.rows {
		if r.getID(&r.rows[i]) == id {
			return &r.rows[i]
		}
	}
	return nil
}

type memSettings struct {
	*memRepo[settings.Setting]
}

func newMemSettings() *memSettings {
	return &memSettings{newMemRepo(
		func(s *settings.Setting) uint { return s.ID },
		func(s *settings.Setting, id uint) { s.ID = id },
	)}
}

func (r *memSettings) FindByName(_ context.Context, name string) (*settings.Setting, error) {
	for i := range r.rows {
		if r.rows[i].Name == name {
			s := r.rows[i]
			return &s, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memSettings) Update(_ context.Context, setting *settings.Setting) error {
	row := r.find(setting.ID)
	if row == nil {
		return shared.ErrNotFound
	}
	*row = *setting
	return nil
}

type memUsers struct {
	*memRepo[identity.User]
}

func newMemUsers() *memUsers {
	return &memUsers{newMemRepo(
		func(u *identity.User) uint { return u.ID },
		func(u *identity.User, id uint) { u.ID = id },
	)}
}

func (r *memUsers) FindByEmail(_ context.Context, email string) (*identity.User, error) {
	for i := range r.rows {
		if r.rows[i].Email == strings.ToLower(email) {
			u := r.rows[i]
			return &u, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memUsers) DeleteAllExcept(_ context.Context, keep identity.Role) (int64, error) {
	kept := r.rows[:0]
	var n int64
	for _, u := range r.rows {
		if u.Role == keep {
			kept = append(kept, u)
			continue
		}
		n++
	}
	r.rows = kept
	return n, nil
}

type memCategories struct {
	*memRepo[catalog.Category]
}

func newMemCategories() *memCategories {
	return &memCategories{newMemRepo(
		func(c *catalog.Category) uint { return c.ID },
		func(c *catalog.Category, id uint) { c.ID = id },
	)}
}

func (r *memCategories) SetParent(_ context.Context, id uint, parentID *uint) error {
	row := r.find(id)
	if row == nil {
		return shared.ErrNotFound
	}
	row.ParentCategoryID = parentID
	return nil
}

type memOrders struct {
	*memRepo[sales.Order]
}

func newMemOrders() *memOrders {
	return &memOrders{newMemRepo(
		func(o *sales.Order) uint { return o.ID },
		func(o *sales.Order, id uint) { o.ID = id },
	)}
}

func (r *memOrders) UpdateStatus(_ context.Context, id uint, status sales.OrderStatus) error {
	row := r.find(id)
	if row == nil {
		return shared.ErrNotFound
	}
	row.Status = status
	return nil
}

// memStore backs every collection with in-memory repositories
type memStore struct {
	settings        *memSettings
	users           *memUsers
	wishlists       *memRepo[identity.Wishlist]
	products        *memRepo[catalog.Product]
	productPhotos   *memRepo[catalog.ProductPhoto]
	categories      *memCategories
	attributeTypes  *memRepo[catalog.AttributeType]
	deliveryMethods *memRepo[sales.DeliveryMethod]
	paymentMethods  *memRepo[sales.PaymentMethod]
	orders          *memOrders
	returns         *memRepo[sales.Return]
	pages           *memRepo[content.Page]
}

func newMemStore() *memStore {
	return &memStore{
		settings:  newMemSettings(),
		users:     newMemUsers(),
		wishlists: newMemRepo(func(w *identity.Wishlist) uint { return w.ID }, func(w *identity.Wishlist, id uint) { w.ID = id }),
		products:  newMemRepo(func(p *catalog.Product) uint { return p.ID }, func(p *catalog.Product, id uint) { p.ID = id }),
		productPhotos: newMemRepo(func(p *catalog.ProductPhoto) uint { return p.ID },
			func(p *catalog.ProductPhoto, id uint) { p.ID = id }),
		categories: newMemCategories(),
		attributeTypes: newMemRepo(func(a *catalog.AttributeType) uint { return a.ID },
			func(a *catalog.AttributeType, id uint) { a.ID = id }),
		deliveryMethods: newMemRepo(func(m *sales.DeliveryMethod) uint { return m.ID },
			func(m *sales.DeliveryMethod, id uint) { m.ID = id }),
		paymentMethods: newMemRepo(func(m *sales.PaymentMethod) uint { return m.ID },
			func(m *sales.PaymentMethod, id uint) { m.ID = id }),
		orders:  newMemOrders(),
		returns: newMemRepo(func(r *sales.Return) uint { return r.ID }, func(r *sales.Return, id uint) { r.ID = id }),
		pages:   newMemRepo(func(p *content.Page) uint { return p.ID }, func(p *content.Page, id uint) { p.ID = id }),
	}
}

func (s *memStore) collections() *Collections {
	return NewCollections(Repositories{
		Settings:        s.settings,
		Users:           s.users,
		Wishlists:       s.wishlists,
		Products:        s.products,
		ProductPhotos:   s.productPhotos,
		Categories:      s.categories,
		AttributeTypes:  s.attributeTypes,
		DeliveryMethods: s.deliveryMethods,
		PaymentMethods:  s.paymentMethods,
		Orders:          s.orders,
		Returns:         s.returns,
		Pages:           s.pages,
	}, WithBcryptCost(bcrypt.MinCost))
}

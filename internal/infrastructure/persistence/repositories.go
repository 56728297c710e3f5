package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/content"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/sales"
	"github.com/storefront/backend/internal/domain/settings"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSettingRepository implements settings.Repository using GORM
type GormSettingRepository struct {
	*GormBulkRepository[settings.Setting, models.SettingModel, *models.SettingModel]
	db *gorm.DB
}

// NewGormSettingRepository creates a new GormSettingRepository
func NewGormSettingRepository(db *gorm.DB) *GormSettingRepository {
	return &GormSettingRepository{
		GormBulkRepository: NewGormBulkRepository[settings.Setting, models.SettingModel](db),
		db:                 db,
	}
}

// FindByName finds a setting by its unique name
func (r *GormSettingRepository) FindByName(ctx context.Context, name string) (*settings.Setting, error) {
	var model models.SettingModel
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Update overwrites the mutable columns of an existing setting
func (r *GormSettingRepository) Update(ctx context.Context, setting *settings.Setting) error {
	result := r.db.WithContext(ctx).Model(&models.SettingModel{}).
		Where("id = ?", setting.ID).
		Updates(map[string]any{
			"builtin":       setting.Builtin,
			"type":          setting.Type,
			"default_value": setting.DefaultValue,
			"value":         setting.Value,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GormUserRepository implements identity.UserRepository using GORM
type GormUserRepository struct {
	*GormBulkRepository[identity.User, models.UserModel, *models.UserModel]
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{
		GormBulkRepository: NewGormBulkRepository[identity.User, models.UserModel](db),
		db:                 db,
	}
}

// FindByEmail finds a user by email, case-insensitively
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// DeleteAllExcept removes every account whose role differs from keep
func (r *GormUserRepository) DeleteAllExcept(ctx context.Context, keep identity.Role) (int64, error) {
	result := r.db.WithContext(ctx).Where("role <> ?", keep).Delete(&models.UserModel{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// NewGormWishlistRepository creates the wishlist repository; product links are owned rows.
func NewGormWishlistRepository(db *gorm.DB) *GormBulkRepository[identity.Wishlist, models.WishlistModel, *models.WishlistModel] {
	return NewGormBulkRepository[identity.Wishlist, models.WishlistModel](db,
		WithPreload("Products"),
		WithDependents(&models.WishlistProductModel{}),
	)
}

// NewGormProductRepository creates the product repository
func NewGormProductRepository(db *gorm.DB) *GormBulkRepository[catalog.Product, models.ProductModel, *models.ProductModel] {
	return NewGormBulkRepository[catalog.Product, models.ProductModel](db)
}

// NewGormProductPhotoRepository creates the product photo repository
func NewGormProductPhotoRepository(db *gorm.DB) *GormBulkRepository[catalog.ProductPhoto, models.ProductPhotoModel, *models.ProductPhotoModel] {
	return NewGormBulkRepository[catalog.ProductPhoto, models.ProductPhotoModel](db)
}

// NewGormAttributeTypeRepository creates the attribute type repository
func NewGormAttributeTypeRepository(db *gorm.DB) *GormBulkRepository[catalog.AttributeType, models.AttributeTypeModel, *models.AttributeTypeModel] {
	return NewGormBulkRepository[catalog.AttributeType, models.AttributeTypeModel](db)
}

// GormCategoryRepository implements catalog.CategoryRepository using GORM
type GormCategoryRepository struct {
	*GormBulkRepository[catalog.Category, models.CategoryModel, *models.CategoryModel]
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{
		GormBulkRepository: NewGormBulkRepository[catalog.Category, models.CategoryModel](db,
			WithPreload("Products"),
			WithDependents(&models.CategoryProductModel{}),
		),
		db: db,
	}
}

// SetParent links a category to its parent, or detaches it when parentID is nil
func (r *GormCategoryRepository) SetParent(ctx context.Context, id uint, parentID *uint) error {
	result := r.db.WithContext(ctx).Model(&models.CategoryModel{}).
		Where("id = ?", id).
		Update("parent_category_id", parentID)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// NewGormDeliveryMethodRepository creates the delivery method repository
func NewGormDeliveryMethodRepository(db *gorm.DB) *GormBulkRepository[sales.DeliveryMethod, models.DeliveryMethodModel, *models.DeliveryMethodModel] {
	return NewGormBulkRepository[sales.DeliveryMethod, models.DeliveryMethodModel](db)
}

// NewGormPaymentMethodRepository creates the payment method repository
func NewGormPaymentMethodRepository(db *gorm.DB) *GormBulkRepository[sales.PaymentMethod, models.PaymentMethodModel, *models.PaymentMethodModel] {
	return NewGormBulkRepository[sales.PaymentMethod, models.PaymentMethodModel](db)
}

// GormOrderRepository implements sales.OrderRepository using GORM
type GormOrderRepository struct {
	*GormBulkRepository[sales.Order, models.OrderModel, *models.OrderModel]
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{
		GormBulkRepository: NewGormBulkRepository[sales.Order, models.OrderModel](db,
			WithPreload("Items"),
			WithDependents(&models.OrderItemModel{}),
		),
		db: db,
	}
}

// UpdateStatus sets the status of one order
func (r *GormOrderRepository) UpdateStatus(ctx context.Context, id uint, status sales.OrderStatus) error {
	result := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// NewGormReturnRepository creates the return repository
func NewGormReturnRepository(db *gorm.DB) *GormBulkRepository[sales.Return, models.ReturnModel, *models.ReturnModel] {
	return NewGormBulkRepository[sales.Return, models.ReturnModel](db)
}

// NewGormPageRepository creates the page repository
func NewGormPageRepository(db *gorm.DB) *GormBulkRepository[content.Page, models.PageModel, *models.PageModel] {
	return NewGormBulkRepository[content.Page, models.PageModel](db)
}

var (
	_ settings.Repository             = (*GormSettingRepository)(nil)
	_ identity.UserRepository         = (*GormUserRepository)(nil)
	_ identity.WishlistRepository     = NewGormWishlistRepository(nil)
	_ catalog.ProductRepository       = NewGormProductRepository(nil)
	_ catalog.ProductPhotoRepository  = NewGormProductPhotoRepository(nil)
	_ catalog.CategoryRepository      = (*GormCategoryRepository)(nil)
	_ catalog.AttributeTypeRepository = NewGormAttributeTypeRepository(nil)
	_ sales.DeliveryMethodRepository  = NewGormDeliveryMethodRepository(nil)
	_ sales.PaymentMethodRepository   = NewGormPaymentMethodRepository(nil)
	_ sales.OrderRepository           = (*GormOrderRepository)(nil)
	_ sales.ReturnRepository          = NewGormReturnRepository(nil)
	_ content.PageRepository          = NewGormPageRepository(nil)
)

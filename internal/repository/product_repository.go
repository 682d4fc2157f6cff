package repository

import (
	"errors"
	"strings"

	"github.com/freshcart/internal/models"

	"gorm.io/gorm"
)

// ProductRepository 商品数据访问接口（只读）
type ProductRepository interface {
	List(filter ProductListFilter) ([]models.Product, error)
	GetByID(id uint) (*models.Product, error)
	ListByIDs(ids []uint) ([]models.Product, error)
}

// GormProductRepository GORM 实现
type GormProductRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓库
func NewProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// List 商品列表，按 id 升序返回，排序交给上层
func (r *GormProductRepository) List(filter ProductListFilter) ([]models.Product, error) {
	query := r.db.Model(&models.Product{})
	if category := strings.TrimSpace(filter.Category); category != "" {
		query = query.Where(equalFoldExpr("category"), strings.ToLower(category))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		condition, args := containsCondition(r.db, search, "name", "description")
		query = query.Where(condition, args...)
	}

	products := make([]models.Product, 0)
	if err := query.Order("id ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// GetByID 根据 ID 获取商品，不存在时返回 nil
func (r *GormProductRepository) GetByID(id uint) (*models.Product, error) {
	if id == 0 {
		return nil, nil
	}
	var product models.Product
	if err := r.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// ListByIDs 批量获取商品
func (r *GormProductRepository) ListByIDs(ids []uint) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	var products []models.Product
	if err := r.db.Where("id IN ?", ids).Order("id ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

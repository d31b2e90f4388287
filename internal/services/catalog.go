package services

import (
	"fmt"
	"kvartal/internal/db"
	"kvartal/internal/models"
	"kvartal/internal/storage"
	"kvartal/internal/utils"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const shopCacheTTL = time.Minute

func productsCacheKey(categoryID *uint) string {
	if categoryID == nil {
		return "shop:products:all"
	}
	return fmt.Sprintf("shop:products:category:%d", *categoryID)
}

const categoriesCacheKey = "shop:categories"

// ListCategories returns all categories by name.
func ListCategories() ([]models.Category, error) {
	if cached, ok := utils.GetCache().Get(categoriesCacheKey).([]models.Category); ok {
		return cached, nil
	}

	var categories []models.Category
	if err := db.DB.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	utils.GetCache().Set(categoriesCacheKey, categories, shopCacheTTL)
	return categories, nil
}

func GetCategory(id uint) (*models.Category, error) {
	var category models.Category
	if err := db.DB.First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// ListProducts returns the products of one category, or all of them when
// categoryID is nil.
func ListProducts(categoryID *uint) ([]models.Product, error) {
	key := productsCacheKey(categoryID)
	if cached, ok := utils.GetCache().Get(key).([]models.Product); ok {
		return cached, nil
	}

	q := db.DB.Preload("Category").Order("id ASC")
	if categoryID != nil {
		q = q.Where("category_id = ?", *categoryID)
	}
	var products []models.Product
	if err := q.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	utils.GetCache().Set(key, products, shopCacheTTL)
	return products, nil
}

func GetProduct(id uint) (*models.Product, error) {
	var product models.Product
	if err := db.DB.Preload("Category").First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateCategory adds a catalog category.
func CreateCategory(name, description string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" || len([]rune(name)) > 100 {
		return nil, fmt.Errorf("category name: %w", ErrInvalidInput)
	}
	category := models.Category{Name: name, Description: description}
	if err := db.DB.Create(&category).Error; err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	invalidateShop()
	return &category, nil
}

// ProductInput describes a new product. ImagePath, when set, points at a local
// file that is copied into the media dir, shrunk to fit 800x800.
type ProductInput struct {
	Name        string
	Description string
	CategoryID  uint
	Price       decimal.Decimal
	ImagePath   string
}

// CreateProduct adds a product to an existing category.
func CreateProduct(in ProductInput) (*models.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || len([]rune(name)) > 200 {
		return nil, fmt.Errorf("product name: %w", ErrInvalidInput)
	}
	if in.Price.IsNegative() {
		return nil, fmt.Errorf("negative price: %w", ErrInvalidInput)
	}
	if _, err := GetCategory(in.CategoryID); err != nil {
		return nil, err
	}

	product := models.Product{
		Name:        name,
		Description: in.Description,
		CategoryID:  in.CategoryID,
		Price:       in.Price.Round(2),
	}
	if in.ImagePath != "" {
		rel, err := Media.SaveFile(in.ImagePath, storage.ProductImagesDir, storage.ProductMaxSide)
		if err != nil {
			return nil, err
		}
		product.Image = rel
	}

	if err := db.DB.Create(&product).Error; err != nil {
		removeImage(product.Image)
		return nil, fmt.Errorf("create product: %w", err)
	}
	invalidateShop()
	return &product, nil
}

// invalidateShop drops cached shop listings after a catalog change.
func invalidateShop() {
	utils.GetCache().Purge()
}

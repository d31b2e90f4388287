package handlers

import (
	"net/http"

	"kvartal/internal/services"

	"github.com/gin-gonic/gin"
)

type ShopHandler struct{}

func NewShopHandler() *ShopHandler {
	return &ShopHandler{}
}

func (h *ShopHandler) Home(c *gin.Context) {
	products, err := services.ListProducts(nil)
	if err != nil {
		serverError(c, err)
		return
	}
	categories, err := services.ListCategories()
	if err != nil {
		serverError(c, err)
		return
	}
	Render(c, http.StatusOK, "shop/home.html", gin.H{
		"Products":   products,
		"Categories": categories,
	})
}

func (h *ShopHandler) Category(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	category, err := services.GetCategory(id)
	if err != nil {
		renderLookupError(c, err, "Category")
		return
	}
	products, err := services.ListProducts(&category.ID)
	if err != nil {
		serverError(c, err)
		return
	}
	categories, err := services.ListCategories()
	if err != nil {
		serverError(c, err)
		return
	}
	Render(c, http.StatusOK, "shop/home.html", gin.H{
		"Products":   products,
		"Categories": categories,
		"Category":   category,
	})
}

func (h *ShopHandler) Product(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	product, err := services.GetProduct(id)
	if err != nil {
		renderLookupError(c, err, "Product")
		return
	}
	Render(c, http.StatusOK, "shop/product.html", gin.H{"Product": product})
}

package public

import (
	"strings"

	"github.com/freshcart/internal/http/response"
	"github.com/freshcart/internal/models"
	"github.com/freshcart/internal/service"

	"github.com/gin-gonic/gin"
)

// ProductView 商品展示结构
type ProductView struct {
	models.Product
	DiscountPercent int    `json:"discount_percent"`
	ImageURL        string `json:"image_url,omitempty"`
}

// PublicConfig 前台配置
type PublicConfig struct {
	FreeDeliveryThreshold models.Money `json:"free_delivery_threshold"`
	DeliveryFee           models.Money `json:"delivery_fee"`
	CurrencySymbol        string       `json:"currency_symbol"`
	Categories            []string     `json:"categories"`
}

// GetConfig 获取前台配置
func (h *Handler) GetConfig(c *gin.Context) {
	response.Success(c, PublicConfig{
		FreeDeliveryThreshold: models.NewMoneyFromDecimal(h.Pricing.Threshold()),
		DeliveryFee:           models.NewMoneyFromDecimal(h.Pricing.Fee()),
		CurrencySymbol:        h.Config.Checkout.CurrencySymbol,
		Categories:            h.CatalogService.Categories(),
	})
}

// GetCategories 获取分类标签
func (h *Handler) GetCategories(c *gin.Context) {
	response.Success(c, h.CatalogService.Categories())
}

// GetProducts 商品列表（分类、关键字、排序）
func (h *Handler) GetProducts(c *gin.Context) {
	products, err := h.CatalogService.Browse(c.Request.Context(), service.BrowseQuery{
		Category: strings.TrimSpace(c.Query("category")),
		Query:    strings.TrimSpace(c.Query("q")),
		Sort:     strings.TrimSpace(c.Query("sort")),
	})
	if err != nil {
		respondWithMappedError(c, err, catalogErrorRules, response.CodeInternal, msgInternal)
		return
	}

	items := make([]service.ImageItem, 0, len(products))
	for _, product := range products {
		items = append(items, service.ImageItem{ID: product.ID, Name: product.Name})
	}
	urls := h.ImageService.ResolveMany(c.Request.Context(), items)

	views := make([]ProductView, 0, len(products))
	for _, product := range products {
		views = append(views, ProductView{
			Product:         product,
			DiscountPercent: product.DiscountPercent(),
			ImageURL:        urls[product.ID],
		})
	}
	response.Success(c, views)
}

// GetProduct 商品详情
func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := parseProductID(c, "id")
	if !ok {
		return
	}
	product, err := h.CatalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondWithMappedError(c, err, catalogErrorRules, response.CodeInternal, msgInternal)
		return
	}
	view := ProductView{
		Product:         *product,
		DiscountPercent: product.DiscountPercent(),
	}
	if url, err := h.ImageService.Resolve(c.Request.Context(), product.Name); err == nil {
		view.ImageURL = url
	}
	response.Success(c, view)
}

package constants

// 商品分类常量
const (
	// CategoryAll 表示不过滤分类的哨兵值
	CategoryAll = "All Products"
)

// DefaultCategories 首页分类标签（顺序即展示顺序）
var DefaultCategories = []string{
	CategoryAll,
	"Vegetables",
	"Meat",
	"Groceries",
	"Fruits",
	"Dairy",
	"Bakery",
	"Beverages",
}

// 商品排序方式常量
const (
	SortByName      = "name"
	SortByPriceLow  = "price-low"
	SortByPriceHigh = "price-high"
)

// 计价常量
const (
	FreeDeliveryThreshold = 499
	DeliveryFee           = 40
	CurrencySymbol        = "₹"
)

// 购物车常量
const (
	CartSlotPrefix     = "cart"
	CartSessionHeader  = "X-Cart-Session"
	CartSessionCtxKey  = "cart_session"
	DefaultProductUnit = "kg"
)

// 下单常量
const (
	WhatsAppBaseURL = "https://wa.me/"
)

// 图片存储提供方常量
const (
	StorageProviderS3     = "s3"
	StorageProviderPublic = "public"
)

// 队列常量
const (
	QueueDefault       = "default"
	QueueImages        = "images"
	TaskImageWarmCache = "image:warm"
)

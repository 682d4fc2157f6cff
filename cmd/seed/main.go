package main

import (
	"errors"
	"strings"

	"github.com/freshcart/internal/config"
	"github.com/freshcart/internal/logger"
	"github.com/freshcart/internal/models"

	"gorm.io/gorm"
)

type seedProduct struct {
	Name        string
	Category    string
	Price       string
	FinalPrice  string
	Unit        string
	Description string
}

var seedProducts = []seedProduct{
	{Name: "Fresh Tomato", Category: "Vegetables", Price: "40", FinalPrice: "32", Unit: "kg", Description: "Farm fresh red tomatoes"},
	{Name: "Red Onion", Category: "Vegetables", Price: "35", FinalPrice: "35", Unit: "kg", Description: "Crisp red onions from Nashik"},
	{Name: "Potato", Category: "Vegetables", Price: "30", FinalPrice: "25", Unit: "kg", Description: "All purpose potatoes"},
	{Name: "Spinach Bunch", Category: "Vegetables", Price: "20", FinalPrice: "18", Unit: "pc", Description: "Leafy green spinach"},
	{Name: "Chicken Curry Cut", Category: "Meat", Price: "260", FinalPrice: "229", Unit: "kg", Description: "Skinless curry cut chicken"},
	{Name: "Mutton Boneless", Category: "Meat", Price: "850", FinalPrice: "799", Unit: "kg", Description: "Tender boneless mutton"},
	{Name: "Basmati Rice", Category: "Groceries", Price: "180", FinalPrice: "149", Unit: "kg", Description: "Long grain aged basmati"},
	{Name: "Toor Dal", Category: "Groceries", Price: "160", FinalPrice: "145", Unit: "kg", Description: "Unpolished toor dal"},
	{Name: "Sunflower Oil", Category: "Groceries", Price: "210", FinalPrice: "189.50", Unit: "l", Description: "Refined sunflower oil"},
	{Name: "Banana", Category: "Fruits", Price: "60", FinalPrice: "48", Unit: "dozen", Description: "Ripe robusta bananas"},
	{Name: "Apple Shimla", Category: "Fruits", Price: "220", FinalPrice: "199", Unit: "kg", Description: "Sweet Shimla apples"},
	{Name: "Alphonso Mango", Category: "Fruits", Price: "600", FinalPrice: "540", Unit: "dozen", Description: "Ratnagiri alphonso mangoes"},
	{Name: "Toned Milk", Category: "Dairy", Price: "56", FinalPrice: "54", Unit: "l", Description: "Pasteurised toned milk"},
	{Name: "Paneer", Category: "Dairy", Price: "90", FinalPrice: "85", Unit: "pc", Description: "Fresh malai paneer 200g"},
	{Name: "Whole Wheat Bread", Category: "Bakery", Price: "50", FinalPrice: "45", Unit: "pc", Description: "Soft whole wheat loaf"},
	{Name: "Masala Chai", Category: "Beverages", Price: "120", FinalPrice: "99", Unit: "pc", Description: "Spiced tea blend 250g"},
}

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()
	stdLog := logger.StdLogger()

	// 连接数据库
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}, false); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(models.DB); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	created := 0
	for _, item := range seedProducts {
		product := models.Product{
			Name:        item.Name,
			Category:    item.Category,
			Price:       models.MustMoney(item.Price),
			FinalPrice:  models.MustMoney(item.FinalPrice),
			Unit:        item.Unit,
			Description: item.Description,
		}
		var existing models.Product
		err := models.DB.Where("LOWER(name) = ?", strings.ToLower(product.Name)).First(&existing).Error
		if err == nil {
			stdLog.Printf("Product already exists: %s", product.Name)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			stdLog.Printf("Failed to query product %s: %v", product.Name, err)
			continue
		}
		if err := models.DB.Create(&product).Error; err != nil {
			stdLog.Printf("Failed to create product %s: %v", product.Name, err)
			continue
		}
		created++
		stdLog.Printf("Created product: %s", product.Name)
	}

	logger.Infow("seed_finished", "created", created, "total", len(seedProducts))
}

package domain

import "github.com/shopspring/decimal"

// Row is the grouped base projection of one product: catalog fields plus
// price maxima and summed stock over the configured stock locations.
// Products with no stock row at a configured location do not appear at
// all, matching the stock-filter placement of the legacy reports.
type Row struct {
	ID              int64           `gorm:"column:id"`
	Number          int64           `gorm:"column:number"`
	Name            string          `gorm:"column:name"`
	SKU             string          `gorm:"column:sku"`
	EAN             string          `gorm:"column:ean"`
	CategoryNumber  int64           `gorm:"column:category_number"`
	GroupName       string          `gorm:"column:group_name"`
	Metatags        string          `gorm:"column:metatags"`
	Units           string          `gorm:"column:units"`
	UnitsMultiplier int64           `gorm:"column:units_multiplier"`
	VATPercent      int64           `gorm:"column:vat_percent"`
	EshopFlag       string          `gorm:"column:eshop_flag"`
	EshopInfo       string          `gorm:"column:eshop_info"`
	Warranty        int64           `gorm:"column:warranty"`
	Description     string          `gorm:"column:description"`
	Attributes      string          `gorm:"column:attributes"`
	Price1          decimal.Decimal `gorm:"column:price1"`
	Price2          decimal.Decimal `gorm:"column:price2"`
	Price3          decimal.Decimal `gorm:"column:price3"`
	Price4          decimal.Decimal `gorm:"column:price4"`
	Price5          decimal.Decimal `gorm:"column:price5"`
	StockQuantity   int64           `gorm:"column:stock_quantity"`
	StockMinimum    int64           `gorm:"column:stock_minimum"`
	MasterProductID int64           `gorm:"column:master_product_id"`
}

// Product is the assembled view: base row plus extension categories and,
// for compounded products, the slave listing. A compounded product's
// stock quantity is the summed stock of its first slave.
type Product struct {
	Row

	// ExtensionCategories holds the extra category numbers beyond
	// CategoryNumber, sorted ascending.
	ExtensionCategories []int64
	SlaveProductNames   string
	SlaveProductSKUs    string
}

// ExtRow maps one product to one extension category.
type ExtRow struct {
	ProductID      int64 `gorm:"column:product_id"`
	CategoryNumber int64 `gorm:"column:category_number"`
}

// SlaveRow is one component of a compounded product, in insertion order.
type SlaveRow struct {
	MasterProductID int64  `gorm:"column:master_product_id"`
	SlaveProductID  int64  `gorm:"column:slave_product_id"`
	SlaveCount      int64  `gorm:"column:slave_count"`
	Name            string `gorm:"column:name"`
	SKU             string `gorm:"column:sku"`
}

// StateRow backs the product change-detection fingerprint.
type StateRow struct {
	ID             int64  `gorm:"column:id"`
	Name           string `gorm:"column:name"`
	CategoryNumber int64  `gorm:"column:category_number"`
	Metatags       string `gorm:"column:metatags"`
	EAN            string `gorm:"column:ean"`
	SKU            string `gorm:"column:sku"`
	EshopFlag      string `gorm:"column:eshop_flag"`
	Warranty       int64  `gorm:"column:warranty"`
	StockMinimum   int64  `gorm:"column:stock_minimum"`
	Attributes     string `gorm:"column:attributes"`
}

// UpdateCountRow carries a summed update counter of a product's joined
// sub-rows; absent sub-rows never produce a row here and are normalized
// to zero by the caller.
type UpdateCountRow struct {
	ProductID int64 `gorm:"column:product_id"`
	Sum       int64 `gorm:"column:sum_update_count"`
}

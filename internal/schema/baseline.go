package schema

import (
	"fmt"
	"sort"

	"github.com/spf13/viper"
)

// Baseline is the versioned mapping from table name to the exhaustive,
// sorted set of column names the queries in this layer hard-code. It is
// checked against the live schema before any of those queries run.
type Baseline map[string][]string

// Table names of the normalized legacy mirror.
const (
	TableInvoices           = "invoices"
	TableInvoicePayments    = "invoice_payments"
	TableProducts           = "products"
	TableProductCategories  = "product_categories"
	TableProductCategoryExt = "product_category_ext"
	TableProductDetails     = "product_details"
	TableProductGroups      = "product_groups"
	TableProductItems       = "product_items"
	TableProductStatus      = "product_status"
	TableStockMovements     = "stock_movements"
	TableCounterparts       = "counterparts"
	TableCashRegister       = "cash_register_receipts"
)

// Default returns the baseline matching the current mirror schema.
func Default() Baseline {
	return Baseline{
		TableInvoices: {
			"company_id", "due_date", "id", "issue_date", "issued_at",
			"paid_by_variable_symbol", "payment_method", "shipping_method",
			"total", "update_count", "variable_symbol",
		},
		TableInvoicePayments: {
			"amount", "amount_currency", "amount_currency_invoice", "bank_id",
			"currency", "id", "invoice_id", "log_user", "logged_at", "method",
			"paid_on", "update_count",
		},
		TableProducts: {
			"attributes", "category_number", "ean", "eshop_flag", "eshop_info",
			"group_number", "id", "metatags", "name", "number", "sku",
			"small_note", "stock_minimum", "units", "units_multiplier",
			"vat_percent", "warranty",
		},
		TableProductCategories: {
			"id", "name", "number", "parent_number", "position",
		},
		TableProductCategoryExt: {
			"category_number", "product_id",
		},
		TableProductDetails: {
			"attributes", "description", "product_id", "update_count",
		},
		TableProductGroups: {
			"name", "number",
		},
		TableProductItems: {
			"id", "master_product_id", "slave_count", "slave_product_id",
		},
		TableProductStatus: {
			"price1", "price2", "price3", "price4", "price5", "product_id",
			"stock_number", "stock_quantity", "update_count",
		},
		TableStockMovements: {
			"company_id", "id", "is_expense", "moved_on", "movement_kind",
			"stock_number", "total", "variable_symbol",
		},
		TableCounterparts: {
			"added_on", "city", "company_id", "company_name", "country",
			"country_code", "due_days", "email", "id", "individual", "name",
			"note", "phone", "phone2", "phone3", "price_group", "small_note",
			"street", "tax_id", "update_count", "vat_id", "zip",
		},
		TableCashRegister: {
			"amount", "id", "logged_at", "payload", "recorded_on", "storno_uid",
		},
	}
}

// LoadBaseline reads a baseline override from a YAML file of the shape
// table -> [columns]. An empty path yields the compiled-in default.
func LoadBaseline(path string) (Baseline, error) {
	if path == "" {
		return Default(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read schema baseline: %w", err)
	}

	baseline := Baseline{}
	for table := range v.AllSettings() {
		columns := v.GetStringSlice(table)
		sort.Strings(columns)
		baseline[table] = columns
	}
	if len(baseline) == 0 {
		return nil, fmt.Errorf("schema baseline %s defines no tables", path)
	}
	return baseline, nil
}

package domain

// Category is one node of the product category tree. The tree hangs off
// ParentNumber, not the row identifier; a parent number of zero marks a
// root node.
type Category struct {
	ID           int64  `gorm:"column:id"`
	Name         string `gorm:"column:name"`
	Number       int64  `gorm:"column:number"`
	ParentNumber int64  `gorm:"column:parent_number"`
	Position     int64  `gorm:"column:position"`
}

// StateRow backs the category change-detection fingerprint.
type StateRow struct {
	ID           int64  `gorm:"column:id"`
	Name         string `gorm:"column:name"`
	Number       int64  `gorm:"column:number"`
	ParentNumber int64  `gorm:"column:parent_number"`
	Position     int64  `gorm:"column:position"`
}

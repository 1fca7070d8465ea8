package models

import "github.com/shopspring/decimal"

// Department is external reference data; requisitions denormalize its name
// and keep the id.
type Department struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CatalogItem is a selectable item in a department's catalog. CurrentStock
// here is the live value; line items copy it at selection time.
type CatalogItem struct {
	ItemCode         string          `json:"itemCode"`
	Description      string          `json:"description"`
	SubGroup         string          `json:"subGroup"`
	ExtraDescription string          `json:"extraDescription"`
	Make             string          `json:"make"`
	CurrentStock     decimal.Decimal `json:"currentStock"`
	UOM              string          `json:"uom"`
	DepartmentID     string          `json:"departmentId"`
}

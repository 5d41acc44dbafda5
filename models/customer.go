package models

import (
	"context"
	"strings"

	"bitbucket.org/mmdatafocus/fama_reports/config"
)

type Customer struct {
	Name          string `gorm:"column:name;primaryKey" json:"name"`
	CustomerName  string `gorm:"column:customer_name" json:"customerName"`
	CustomerGroup string `gorm:"column:customer_group" json:"customerGroup"`
	Territory     string `gorm:"column:territory" json:"territory"`
	Disabled      int    `gorm:"column:disabled" json:"disabled"`
}

func (Customer) TableName() string {
	return "tabCustomer"
}

// GetCustomers lists customers by name. A non-empty name narrows the list to that customer.
func GetCustomers(ctx context.Context, name string) ([]*Customer, error) {
	db := config.GetDB()
	var customers []*Customer
	query := db.WithContext(ctx).Model(&Customer{}).Select("name", "customer_name")
	if name = strings.TrimSpace(name); name != "" {
		query = query.Where("name = ?", name)
	}
	if err := query.Order("name").Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

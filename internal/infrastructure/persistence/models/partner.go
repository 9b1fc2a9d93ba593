package models

import (
	"github.com/erp/vendorledger/internal/domain/partner"
)

// VendorModel is the persistence model for vendors.
type VendorModel struct {
	BaseModel
	Code          string `gorm:"type:varchar(50);not null"`
	Name          string `gorm:"type:varchar(200);not null"`
	GSTIN         string `gorm:"column:gstin;type:varchar(20)"`
	BankName      string `gorm:"type:varchar(100)"`
	AccountNumber string `gorm:"type:varchar(50)"`
	IFSC          string `gorm:"column:ifsc;type:varchar(20)"`
	IsActive      bool   `gorm:"not null"`
}

// TableName returns the table name for GORM
func (VendorModel) TableName() string {
	return "vendors"
}

// ToDomain converts the row to a domain vendor.
func (m *VendorModel) ToDomain() *partner.Vendor {
	return &partner.Vendor{
		BaseEntity:    m.BaseModel.ToDomain(),
		Code:          m.Code,
		Name:          m.Name,
		GSTIN:         m.GSTIN,
		BankName:      m.BankName,
		AccountNumber: m.AccountNumber,
		IFSC:          m.IFSC,
		IsActive:      m.IsActive,
	}
}

// VendorModelFromDomain creates a row from a domain vendor.
func VendorModelFromDomain(v *partner.Vendor) *VendorModel {
	m := &VendorModel{
		Code:          v.Code,
		Name:          v.Name,
		GSTIN:         v.GSTIN,
		BankName:      v.BankName,
		AccountNumber: v.AccountNumber,
		IFSC:          v.IFSC,
		IsActive:      v.IsActive,
	}
	m.FromDomainBaseEntity(v.BaseEntity)
	return m
}

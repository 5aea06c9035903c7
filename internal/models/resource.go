package models

import (
	"time"
)

// Resource represents one inventoried asset row
type Resource struct {
	ID                   int64     `json:"id"`
	SlNo                 string    `json:"sl_no"`
	Description          string    `json:"description"`
	ServiceTag           string    `json:"service_tag"`
	IdentificationNumber string    `json:"identification_number"`
	ProcurementDate      string    `json:"procurement_date"`
	Cost                 float64   `json:"cost"`
	Location             string    `json:"location"`
	SectionLocation      string    `json:"section_location,omitempty"`
	ProductCategory      string    `json:"product_category,omitempty"`
	Department           string    `json:"department"`
	ParentDepartment     string    `json:"parent_department"`
	CreatedBy            string    `json:"created_by,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// CreateResourceRequest represents the request body for creating a resource
type CreateResourceRequest struct {
	SlNo                 string  `json:"sl_no"`
	Description          string  `json:"description" validate:"required"`
	ServiceTag           string  `json:"service_tag"`
	IdentificationNumber string  `json:"identification_number" validate:"required"`
	ProcurementDate      string  `json:"procurement_date"`
	Cost                 float64 `json:"cost"`
	Location             string  `json:"location"`
	SectionLocation      string  `json:"section_location"`
	ProductCategory      string  `json:"product_category"`
	Department           string  `json:"department"`
	ParentDepartment     string  `json:"parent_department" validate:"required"`
}

// UpdateResourceRequest represents the request body for updating a resource.
// Nil fields are left untouched.
type UpdateResourceRequest struct {
	SlNo                 *string  `json:"sl_no,omitempty"`
	Description          *string  `json:"description,omitempty"`
	ServiceTag           *string  `json:"service_tag,omitempty"`
	IdentificationNumber *string  `json:"identification_number,omitempty"`
	ProcurementDate      *string  `json:"procurement_date,omitempty"`
	Cost                 *float64 `json:"cost,omitempty"`
	Location             *string  `json:"location,omitempty"`
	SectionLocation      *string  `json:"section_location,omitempty"`
	ProductCategory      *string  `json:"product_category,omitempty"`
	Department           *string  `json:"department,omitempty"`
	ParentDepartment     *string  `json:"parent_department,omitempty"`
}

// ResourceListFilter carries the query-string filters of a list request
type ResourceListFilter struct {
	Search           string
	Location         string
	Department       string
	ParentDepartment string
	ProductCategory  string
	CostMin          *float64
	CostMax          *float64
}

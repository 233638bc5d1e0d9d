package dto

import "time"

// PosSettingsRequest body para POST /posapi/settings.
type PosSettingsRequest struct {
	MerchantTin  string `json:"merchantTin" validate:"required"`
	PosNo        string `json:"posNo" validate:"required"`
	DistrictCode string `json:"districtCode,omitempty"`
	BranchNo     string `json:"branchNo,omitempty"`
	BillIDSuffix string `json:"billIdSuffix,omitempty"`
}

// PosSettingsResponse configuración POS guardada.
type PosSettingsResponse struct {
	MerchantTin  string    `json:"merchantTin"`
	PosNo        string    `json:"posNo"`
	DistrictCode string    `json:"districtCode"`
	BranchNo     string    `json:"branchNo"`
	BillIDSuffix string    `json:"billIdSuffix"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

package transport

import "github.com/google/uuid"

type VehicleResponse struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"displayName"`
	Plate       string    `json:"plate"`
	DailyRate   *string   `json:"dailyRate"`
}

type OfferingResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	UnitPrice   string    `json:"unitPrice"`
	Mandatory   bool      `json:"mandatory"`
	MaxQuantity *int      `json:"maxQuantity,omitempty"`
}

type PackageResponse struct {
	ID                      uuid.UUID   `json:"id"`
	Name                    string      `json:"name"`
	ModifierType            string      `json:"modifierType"`
	ModifierValue           string      `json:"modifierValue"`
	AllowDiscountOnModifier bool        `json:"allowDiscountOnModifier"`
	IncludedOfferingIDs     []uuid.UUID `json:"includedOfferingIds"`
}

type DiscountResponse struct {
	ID    uuid.UUID `json:"id"`
	Code  string    `json:"code"`
	Type  string    `json:"type"`
	Value string    `json:"value"`
}

type DiscountLookupRequest struct {
	Code string `uri:"code" validate:"required,min=2,max=40,alphanum"`
}

type IDRequest struct {
	ID string `uri:"id" validate:"required,uuid"`
}

type ListResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

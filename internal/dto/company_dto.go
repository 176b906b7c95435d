package dto

import (
	"time"

	"github.com/oppspot/oppspot-api/internal/models"
)

// CompanyResponse is the serialized representation returned to API clients.
type CompanyResponse struct {
	ID             uint      `json:"id"`
	Name           string    `json:"name"`
	RegistrationNo string    `json:"registration_no"`
	Domain         string    `json:"domain"`
	Sector         string    `json:"sector"`
	Country        string    `json:"country"`
	CreatedAt      time.Time `json:"created_at"`
}

// CompanyListResponse wraps a page of companies.
type CompanyListResponse struct {
	Items      []CompanyResponse `json:"items"`
	Pagination PaginationMeta    `json:"pagination"`
}

// NewCompanyResponse converts a model into a DTO.
func NewCompanyResponse(model models.Company) CompanyResponse {
	return CompanyResponse{
		ID:             model.ID,
		Name:           model.Name,
		RegistrationNo: model.RegistrationNo,
		Domain:         model.Domain,
		Sector:         model.Sector,
		Country:        model.Country,
		CreatedAt:      model.CreatedAt,
	}
}

// NewCompanyResponseSlice converts a slice of models into DTOs.
func NewCompanyResponseSlice(companies []models.Company) []CompanyResponse {
	responses := make([]CompanyResponse, 0, len(companies))
	for _, company := range companies {
		responses = append(responses, NewCompanyResponse(company))
	}
	return responses
}

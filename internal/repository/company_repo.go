package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oppspot/oppspot-api/internal/models"
)

// CompanyFilter describes search and pagination options for the catalogue.
type CompanyFilter struct {
	Search  string
	Sector  string
	Country string
	Pagination
}

// CompanyRepository persists the company intelligence catalogue.
type CompanyRepository interface {
	GetByID(ctx context.Context, id uint) (models.Company, error)
	List(ctx context.Context, filter CompanyFilter) ([]models.Company, int64, error)
	Upsert(ctx context.Context, company *models.Company) error
}

type companyRepository struct {
	db *gorm.DB
}

// NewCompanyRepository instantiates a GORM-backed repository.
func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

func (r *companyRepository) GetByID(ctx context.Context, id uint) (models.Company, error) {
	var company models.Company
	if err := r.db.WithContext(ctx).First(&company, id).Error; err != nil {
		return models.Company{}, err
	}
	return company, nil
}

func (r *companyRepository) List(ctx context.Context, filter CompanyFilter) ([]models.Company, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Company{})

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(strings.TrimSpace(filter.Search)) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(domain) LIKE ?", pattern, pattern)
	}
	if filter.Sector != "" {
		query = query.Where("sector = ?", filter.Sector)
	}
	if filter.Country != "" {
		query = query.Where("country = ?", filter.Country)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	window := filter.Pagination.Normalize()

	var companies []models.Company
	err := query.
		Order("name ASC").
		Offset(window.Offset()).
		Limit(window.PageSize).
		Find(&companies).Error
	if err != nil {
		return nil, 0, err
	}

	return companies, total, nil
}

// Upsert inserts the company or refreshes it when the registration number
// already exists, so re-running an import stays idempotent.
func (r *companyRepository) Upsert(ctx context.Context, company *models.Company) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "registration_no"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "domain", "sector", "country", "import_job_id", "updated_at"}),
		}).
		Create(company).Error
}

package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/sqlgrader-api/internal/models"
)

// RegradeRunRepository persists bulk regrade audit rows.
type RegradeRunRepository interface {
	Create(ctx context.Context, run *models.RegradeRun) error
	List(ctx context.Context) ([]models.RegradeRun, error)
}

type regradeRunRepository struct {
	db *gorm.DB
}

// NewRegradeRunRepository constructs the regrade audit repository.
func NewRegradeRunRepository(db *gorm.DB) RegradeRunRepository {
	return &regradeRunRepository{db: db}
}

func (r *regradeRunRepository) Create(ctx context.Context, run *models.RegradeRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *regradeRunRepository) List(ctx context.Context) ([]models.RegradeRun, error) {
	var runs []models.RegradeRun
	if err := r.db.WithContext(ctx).Order("started_at DESC").Find(&runs).Error; err != nil {
		return nil, err
	}

	return runs, nil
}

package repositories

import (
	"context"
	"fmt"
	"time"

	"medication-tracking-service/internal/domain/entities"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QRCodeRepository struct {
	db *gorm.DB
}

func NewQRCodeRepository(db *gorm.DB) QRCodeRepositoryContract {
	return &QRCodeRepository{db: db}
}

func (r *QRCodeRepository) Create(ctx context.Context, code *entities.QRCode) error {
	if err := r.db.WithContext(ctx).Create(code).Error; err != nil {
		return fmt.Errorf("create qr code: %w", err)
	}
	return nil
}

func (r *QRCodeRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.QRCode, error) {
	var q entities.QRCode
	if err := r.db.WithContext(ctx).First(&q, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("get qr code %s: %w", id, translate(err))
	}
	return &q, nil
}

// SetActive is the only mutation a QR code accepts after issue.
func (r *QRCodeRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res := r.db.WithContext(ctx).Model(&entities.QRCode{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_active": active, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return fmt.Errorf("set qr code %s active=%t: %w", id, active, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("set qr code %s active=%t: %w", id, active, ErrNotFound)
	}
	return nil
}

func (r *QRCodeRepository) ListAll(ctx context.Context) ([]*entities.QRCode, error) {
	var out []*entities.QRCode
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list qr codes: %w", err)
	}
	return out, nil
}

package repository

import (
	"context"
	"errors"
	"time"

	"github.com/contactdesk/contactdesk/internal/model"
	"github.com/contactdesk/contactdesk/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ContactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// List returns one owner's contacts with paging plus the total count
func (r *ContactRepository) List(ctx context.Context, userID uint, limit, offset int) ([]model.Contact, int64, error) {
	var contacts []model.Contact
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Contact{}).Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		logger.GetLogger().Error("Failed to count contacts",
			zap.Uint("user_id", userID),
			zap.Error(err),
		)
		return nil, 0, err
	}

	if err := query.Limit(limit).Offset(offset).Order("id").Find(&contacts).Error; err != nil {
		logger.GetLogger().Error("Failed to list contacts",
			zap.Uint("user_id", userID),
			zap.Error(err),
		)
		return nil, 0, err
	}

	return contacts, total, nil
}

// ListAll returns every contact regardless of owner. Restricted to
// moderator/admin callers at the route level.
func (r *ContactRepository) ListAll(ctx context.Context, limit, offset int) ([]model.Contact, int64, error) {
	var contacts []model.Contact
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Contact{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Limit(limit).Offset(offset).Order("id").Find(&contacts).Error; err != nil {
		logger.GetLogger().Error("Failed to list all contacts", zap.Error(err))
		return nil, 0, err
	}

	return contacts, total, nil
}

// GetByID finds a contact owned by userID. Returns (nil, nil) when absent.
func (r *ContactRepository) GetByID(ctx context.Context, id, userID uint) (*model.Contact, error) {
	var contact model.Contact

	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&contact)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.GetLogger().Error("Failed to get contact",
			zap.Uint("contact_id", id),
			zap.Uint("user_id", userID),
			zap.Error(result.Error),
		)
		return nil, result.Error
	}

	return &contact, nil
}

// Create inserts a new contact row
func (r *ContactRepository) Create(ctx context.Context, contact *model.Contact) error {
	start := time.Now()

	if err := r.db.WithContext(ctx).Create(contact).Error; err != nil {
		logger.GetLogger().Error("Failed to create contact",
			zap.Uint("user_id", contact.UserID),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return err
	}

	return nil
}

// Update persists field changes on an existing contact
func (r *ContactRepository) Update(ctx context.Context, contact *model.Contact) error {
	if err := r.db.WithContext(ctx).Save(contact).Error; err != nil {
		logger.GetLogger().Error("Failed to update contact",
			zap.Uint("contact_id", contact.ID),
			zap.Error(err),
		)
		return err
	}

	return nil
}

// Delete removes a contact owned by userID. Returns false when no row matched.
func (r *ContactRepository) Delete(ctx context.Context, id, userID uint) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.Contact{})
	if result.Error != nil {
		logger.GetLogger().Error("Failed to delete contact",
			zap.Uint("contact_id", id),
			zap.Uint("user_id", userID),
			zap.Error(result.Error),
		)
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// Search finds an owner's contacts whose name or email contains query
func (r *ContactRepository) Search(ctx context.Context, userID uint, query string, limit, offset int) ([]model.Contact, error) {
	var contacts []model.Contact
	pattern := "%" + query + "%"

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ?", pattern, pattern, pattern).
		Limit(limit).Offset(offset).Order("id").
		Find(&contacts).Error
	if err != nil {
		logger.GetLogger().Error("Failed to search contacts",
			zap.Uint("user_id", userID),
			zap.Error(err),
		)
		return nil, err
	}

	return contacts, nil
}

// UpcomingBirthdays returns contacts whose birthday (month and day, year
// ignored) falls within the next days days. The window may wrap across
// New Year, in which case it splits into two month-day ranges.
func (r *ContactRepository) UpcomingBirthdays(ctx context.Context, userID uint, days, limit, offset int) ([]model.Contact, error) {
	var contacts []model.Contact

	today := time.Now()
	end := today.AddDate(0, 0, days)
	todayStr := today.Format("01-02")
	endStr := end.Format("01-02")

	query := r.db.WithContext(ctx).Where("user_id = ?", userID)

	if todayStr <= endStr {
		query = query.Where("to_char(birthday, 'MM-DD') BETWEEN ? AND ?", todayStr, endStr)
	} else {
		// Window wraps past December 31st
		query = query.Where("to_char(birthday, 'MM-DD') >= ? OR to_char(birthday, 'MM-DD') <= ?", todayStr, endStr)
	}

	err := query.Limit(limit).Offset(offset).Order("id").Find(&contacts).Error
	if err != nil {
		logger.GetLogger().Error("Failed to query upcoming birthdays",
			zap.Uint("user_id", userID),
			zap.Int("days", days),
			zap.Error(err),
		)
		return nil, err
	}

	return contacts, nil
}

package service

import (
	"context"
	"time"

	"github.com/contactdesk/contactdesk/internal/dto"
	apperrors "github.com/contactdesk/contactdesk/internal/errors"
	"github.com/contactdesk/contactdesk/internal/model"
	"gorm.io/datatypes"
)

// ContactStore is the persistence contract ContactService runs on.
// repository.ContactRepository satisfies it.
type ContactStore interface {
	List(ctx context.Context, userID uint, limit, offset int) ([]model.Contact, int64, error)
	ListAll(ctx context.Context, limit, offset int) ([]model.Contact, int64, error)
	GetByID(ctx context.Context, id, userID uint) (*model.Contact, error)
	Create(ctx context.Context, contact *model.Contact) error
	Update(ctx context.Context, contact *model.Contact) error
	Delete(ctx context.Context, id, userID uint) (bool, error)
	Search(ctx context.Context, userID uint, query string, limit, offset int) ([]model.Contact, error)
	UpcomingBirthdays(ctx context.Context, userID uint, days, limit, offset int) ([]model.Contact, error)
}

// ContactService owns the per-user contact book. Every operation except
// ListAll is scoped to the owning user; rows belonging to other users
// are indistinguishable from rows that do not exist.
type ContactService struct {
	contacts ContactStore
}

func NewContactService(contacts ContactStore) *ContactService {
	return &ContactService{contacts: contacts}
}

// List returns a page of the user's contacts with the total row count
func (s *ContactService) List(ctx context.Context, userID uint, limit, offset int) ([]model.Contact, int64, error) {
	contacts, total, err := s.contacts.List(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return contacts, total, nil
}

// ListAll returns a page over every user's contacts. The caller is
// responsible for gating this behind the moderator/admin role check.
func (s *ContactService) ListAll(ctx context.Context, limit, offset int) ([]model.Contact, int64, error) {
	contacts, total, err := s.contacts.ListAll(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return contacts, total, nil
}

// Get returns the user's contact by id
func (s *ContactService) Get(ctx context.Context, id, userID uint) (*model.Contact, error) {
	contact, err := s.contacts.GetByID(ctx, id, userID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if contact == nil {
		return nil, apperrors.ErrContactNotFound
	}
	return contact, nil
}

// Create inserts a new contact owned by userID
func (s *ContactService) Create(ctx context.Context, userID uint, req dto.ContactRequest) (*model.Contact, error) {
	birthday, err := parseBirthday(req.Birthday)
	if err != nil {
		return nil, err
	}

	contact := &model.Contact{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		Birthday:       birthday,
		AdditionalData: req.AdditionalData,
		UserID:         userID,
	}
	if err := s.contacts.Create(ctx, contact); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return contact, nil
}

// Update replaces every mutable field of the user's contact
func (s *ContactService) Update(ctx context.Context, id, userID uint, req dto.ContactRequest) (*model.Contact, error) {
	contact, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	birthday, err := parseBirthday(req.Birthday)
	if err != nil {
		return nil, err
	}

	contact.FirstName = req.FirstName
	contact.LastName = req.LastName
	contact.Email = req.Email
	contact.Phone = req.Phone
	contact.Birthday = birthday
	contact.AdditionalData = req.AdditionalData

	if err := s.contacts.Update(ctx, contact); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return contact, nil
}

// Delete removes the user's contact by id
func (s *ContactService) Delete(ctx context.Context, id, userID uint) error {
	deleted, err := s.contacts.Delete(ctx, id, userID)
	if err != nil {
		return apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if !deleted {
		return apperrors.ErrContactNotFound
	}
	return nil
}

// Search returns the user's contacts whose first name, last name or
// email contains the query, case-insensitively.
func (s *ContactService) Search(ctx context.Context, userID uint, query string, limit, offset int) ([]model.Contact, error) {
	contacts, err := s.contacts.Search(ctx, userID, query, limit, offset)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return contacts, nil
}

// UpcomingBirthdays returns the user's contacts with a birthday in the
// next days days, counting by calendar month and day so the year stored
// on the row does not matter.
func (s *ContactService) UpcomingBirthdays(ctx context.Context, userID uint, days, limit, offset int) ([]model.Contact, error) {
	contacts, err := s.contacts.UpcomingBirthdays(ctx, userID, days, limit, offset)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return contacts, nil
}

func parseBirthday(value string) (datatypes.Date, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		// binding:"datetime" already rejects this shape; kept for callers
		// that construct requests outside gin.
		return datatypes.Date{}, apperrors.WrapError(apperrors.ErrVerification, err)
	}
	return datatypes.Date(t), nil
}

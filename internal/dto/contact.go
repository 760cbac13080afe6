package dto

import (
	"time"

	"github.com/contactdesk/contactdesk/internal/model"
)

type ContactRequest struct {
	FirstName      string  `json:"first_name" binding:"required,min=1,max=50"`
	LastName       string  `json:"last_name" binding:"required,min=1,max=50"`
	Email          string  `json:"email" binding:"required,email,max=50"`
	Phone          string  `json:"phone" binding:"required,min=1,max=50"`
	Birthday       string  `json:"birthday" binding:"required,datetime=2006-01-02,beforetoday"`
	AdditionalData *string `json:"additional_data" binding:"omitempty,max=250"`
}

type ContactResponse struct {
	ID             uint      `json:"id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Birthday       string    `json:"birthday"`
	AdditionalData *string   `json:"additional_data"`
	UserID         uint      `json:"user_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewContactResponse builds the API view of a contact row
func NewContactResponse(contact *model.Contact) ContactResponse {
	return ContactResponse{
		ID:             contact.ID,
		FirstName:      contact.FirstName,
		LastName:       contact.LastName,
		Email:          contact.Email,
		Phone:          contact.Phone,
		Birthday:       time.Time(contact.Birthday).Format("2006-01-02"),
		AdditionalData: contact.AdditionalData,
		UserID:         contact.UserID,
		CreatedAt:      contact.CreatedAt,
		UpdatedAt:      contact.UpdatedAt,
	}
}

// NewContactListResponse maps a slice of rows
func NewContactListResponse(contacts []model.Contact) []ContactResponse {
	res := make([]ContactResponse, 0, len(contacts))
	for i := range contacts {
		res = append(res, NewContactResponse(&contacts[i]))
	}
	return res
}

package handlers

import (
	"context"

	"go.uber.org/zap"

	"github.com/luisriego/MatisseAPI-sub001/application/commands"
	"github.com/luisriego/MatisseAPI-sub001/application/ports"
	"github.com/luisriego/MatisseAPI-sub001/domain/core/aggregates"
	"github.com/luisriego/MatisseAPI-sub001/domain/core/valueobjects"
)

// OwnerHandler handles owner commands
type OwnerHandler struct {
	owners ports.OwnerRepository
	logger *zap.Logger
}

// NewOwnerHandler creates a new owner handler
func NewOwnerHandler(owners ports.OwnerRepository, logger *zap.Logger) *OwnerHandler {
	return &OwnerHandler{owners: owners, logger: logger}
}

// CreateOwner executes CreateOwnerCommand
func (h *OwnerHandler) CreateOwner(ctx context.Context, cmd commands.CreateOwnerCommand) error {
	id, err := valueobjects.OwnerIDFromString(cmd.OwnerID)
	if err != nil {
		return err
	}
	email, phone, err := contactInfo(cmd.Email, cmd.Phone)
	if err != nil {
		return err
	}

	owner, err := aggregates.CreateNewOwner(id, cmd.Name, email, phone)
	if err != nil {
		return err
	}
	return h.owners.Save(ctx, owner)
}

// UpdateContactInfo executes UpdateOwnerContactInfoCommand
func (h *OwnerHandler) UpdateContactInfo(ctx context.Context, cmd commands.UpdateOwnerContactInfoCommand) error {
	id, err := valueobjects.OwnerIDFromString(cmd.OwnerID)
	if err != nil {
		return err
	}
	email, phone, err := contactInfo(cmd.Email, cmd.Phone)
	if err != nil {
		return err
	}

	owner, err := h.owners.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := owner.UpdateContactInfo(email, phone); err != nil {
		return err
	}
	return h.owners.Save(ctx, owner)
}

func contactInfo(rawEmail, rawPhone string) (valueobjects.Email, valueobjects.Phone, error) {
	email, err := valueobjects.NewEmail(rawEmail)
	if err != nil {
		return valueobjects.Email{}, valueobjects.Phone{}, err
	}
	phone, err := valueobjects.NewPhone(rawPhone)
	if err != nil {
		return valueobjects.Email{}, valueobjects.Phone{}, err
	}
	return email, phone, nil
}

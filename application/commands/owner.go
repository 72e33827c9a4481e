package commands

import "github.com/luisriego/MatisseAPI-sub001/pkg/utils"

// CreateOwnerCommand registers an owner
type CreateOwnerCommand struct {
	OwnerID string `json:"owner_id" validate:"required,uuid"`
	Name    string `json:"name" validate:"required,max=255"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"omitempty,e164"`
}

// Validate validates the command
func (c CreateOwnerCommand) Validate() error { return utils.ValidateStruct(c) }

// TargetID returns the owner id
func (c CreateOwnerCommand) TargetID() string { return c.OwnerID }

// UpdateOwnerContactInfoCommand replaces the email and phone of an owner
type UpdateOwnerContactInfoCommand struct {
	OwnerID string `json:"owner_id" validate:"required,uuid"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"omitempty,e164"`
}

// Validate validates the command
func (c UpdateOwnerContactInfoCommand) Validate() error { return utils.ValidateStruct(c) }

// TargetID returns the owner id
func (c UpdateOwnerContactInfoCommand) TargetID() string { return c.OwnerID }

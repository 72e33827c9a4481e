package commands

import "github.com/luisriego/MatisseAPI-sub001/pkg/utils"

// RegisterCondominiumCommand registers a condominium
type RegisterCondominiumCommand struct {
	CondominiumID string `json:"condominium_id" validate:"required,uuid"`
	Name          string `json:"name" validate:"required,max=255"`
	Street        string `json:"street" validate:"required"`
	City          string `json:"city" validate:"required"`
	PostalCode    string `json:"postal_code"`
	Country       string `json:"country"`
}

// Validate validates the command
func (c RegisterCondominiumCommand) Validate() error { return utils.ValidateStruct(c) }

// TargetID returns the condominium id
func (c RegisterCondominiumCommand) TargetID() string { return c.CondominiumID }

// RenameCondominiumCommand changes the name of a condominium
type RenameCondominiumCommand struct {
	CondominiumID string `json:"condominium_id" validate:"required,uuid"`
	Name          string `json:"name" validate:"required,max=255"`
}

// Validate validates the command
func (c RenameCondominiumCommand) Validate() error { return utils.ValidateStruct(c) }

// TargetID returns the condominium id
func (c RenameCondominiumCommand) TargetID() string { return c.CondominiumID }

// ChangeCondominiumAddressCommand moves a condominium to a new address
type ChangeCondominiumAddressCommand struct {
	CondominiumID string `json:"condominium_id" validate:"required,uuid"`
	Street        string `json:"street" validate:"required"`
	City          string `json:"city" validate:"required"`
	PostalCode    string `json:"postal_code"`
	Country       string `json:"country"`
}

// Validate validates the command
func (c ChangeCondominiumAddressCommand) Validate() error { return utils.ValidateStruct(c) }

// TargetID returns the condominium id
func (c ChangeCondominiumAddressCommand) TargetID() string { return c.CondominiumID }

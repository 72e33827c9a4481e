package commands

import "github.com/luisriego/MatisseAPI-sub001/pkg/utils"

// CreateUnitCommand adds a unit to an existing condominium
type CreateUnitCommand struct {
	UnitID        string `json:"unit_id" validate:"required,uuid"`
	CondominiumID string `json:"condominium_id" validate:"required,uuid"`
	Identifier    string `json:"identifier" validate:"required,max=50"`
}

// Validate validates the command
func (c CreateUnitCommand) Validate() error { return utils.ValidateStruct(c) }

// TargetID returns the unit id
func (c CreateUnitCommand) TargetID() string { return c.UnitID }

// AssignUnitOwnerCommand gives a unit to an existing owner
type AssignUnitOwnerCommand struct {
	UnitID  string `json:"unit_id" validate:"required,uuid"`
	OwnerID string `json:"owner_id" validate:"required,uuid"`
}

// Validate validates the command
func (c AssignUnitOwnerCommand) Validate() error { return utils.ValidateStruct(c) }

// TargetID returns the unit id
func (c AssignUnitOwnerCommand) TargetID() string { return c.UnitID }

// RemoveUnitOwnerCommand leaves a unit without owner
type RemoveUnitOwnerCommand struct {
	UnitID string `json:"unit_id" validate:"required,uuid"`
}

// Validate validates the command
func (c RemoveUnitOwnerCommand) Validate() error { return utils.ValidateStruct(c) }

// TargetID returns the unit id
func (c RemoveUnitOwnerCommand) TargetID() string { return c.UnitID }

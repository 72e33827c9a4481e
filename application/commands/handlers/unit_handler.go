package handlers

import (
	"context"

	"go.uber.org/zap"

	"github.com/luisriego/MatisseAPI-sub001/application/commands"
	"github.com/luisriego/MatisseAPI-sub001/application/ports"
	"github.com/luisriego/MatisseAPI-sub001/domain/core/aggregates"
	"github.com/luisriego/MatisseAPI-sub001/domain/core/valueobjects"
)

// UnitHandler handles unit commands
type UnitHandler struct {
	units        ports.UnitRepository
	condominiums ports.CondominiumRepository
	owners       ports.OwnerRepository
	logger       *zap.Logger
}

// NewUnitHandler creates a new unit handler
func NewUnitHandler(
	units ports.UnitRepository,
	condominiums ports.CondominiumRepository,
	owners ports.OwnerRepository,
	logger *zap.Logger,
) *UnitHandler {
	return &UnitHandler{
		units:        units,
		condominiums: condominiums,
		owners:       owners,
		logger:       logger,
	}
}

// CreateUnit executes CreateUnitCommand; the condominium must exist
func (h *UnitHandler) CreateUnit(ctx context.Context, cmd commands.CreateUnitCommand) error {
	unitID, err := valueobjects.UnitIDFromString(cmd.UnitID)
	if err != nil {
		return err
	}
	condominiumID, err := valueobjects.CondominiumIDFromString(cmd.CondominiumID)
	if err != nil {
		return err
	}
	if _, err := h.condominiums.FindByID(ctx, condominiumID); err != nil {
		return err
	}

	unit, err := aggregates.CreateNewUnit(unitID, condominiumID, cmd.Identifier)
	if err != nil {
		return err
	}
	return h.units.Save(ctx, unit)
}

// AssignOwner executes AssignUnitOwnerCommand; the owner must exist
func (h *UnitHandler) AssignOwner(ctx context.Context, cmd commands.AssignUnitOwnerCommand) error {
	ownerID, err := valueobjects.OwnerIDFromString(cmd.OwnerID)
	if err != nil {
		return err
	}
	if _, err := h.owners.FindByID(ctx, ownerID); err != nil {
		return err
	}

	unit, err := h.load(ctx, cmd.UnitID)
	if err != nil {
		return err
	}
	if err := unit.AssignOwner(ownerID); err != nil {
		return err
	}
	return h.units.Save(ctx, unit)
}

// RemoveOwner executes RemoveUnitOwnerCommand
func (h *UnitHandler) RemoveOwner(ctx context.Context, cmd commands.RemoveUnitOwnerCommand) error {
	unit, err := h.load(ctx, cmd.UnitID)
	if err != nil {
		return err
	}
	if err := unit.RemoveOwner(); err != nil {
		return err
	}
	return h.units.Save(ctx, unit)
}

func (h *UnitHandler) load(ctx context.Context, unitID string) (*aggregates.Unit, error) {
	id, err := valueobjects.UnitIDFromString(unitID)
	if err != nil {
		return nil, err
	}
	return h.units.FindByID(ctx, id)
}

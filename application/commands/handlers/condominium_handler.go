package handlers

import (
	"context"

	"go.uber.org/zap"

	"github.com/luisriego/MatisseAPI-sub001/application/commands"
	"github.com/luisriego/MatisseAPI-sub001/application/ports"
	"github.com/luisriego/MatisseAPI-sub001/domain/core/aggregates"
	"github.com/luisriego/MatisseAPI-sub001/domain/core/valueobjects"
)

// CondominiumHandler handles condominium commands
type CondominiumHandler struct {
	condominiums ports.CondominiumRepository
	logger       *zap.Logger
}

// NewCondominiumHandler creates a new condominium handler
func NewCondominiumHandler(condominiums ports.CondominiumRepository, logger *zap.Logger) *CondominiumHandler {
	return &CondominiumHandler{condominiums: condominiums, logger: logger}
}

// Register executes RegisterCondominiumCommand
func (h *CondominiumHandler) Register(ctx context.Context, cmd commands.RegisterCondominiumCommand) error {
	id, err := valueobjects.CondominiumIDFromString(cmd.CondominiumID)
	if err != nil {
		return err
	}
	address, err := valueobjects.NewAddress(cmd.Street, cmd.City, cmd.PostalCode, cmd.Country)
	if err != nil {
		return err
	}

	condominium, err := aggregates.RegisterCondominium(id, cmd.Name, address)
	if err != nil {
		return err
	}
	return h.condominiums.Save(ctx, condominium)
}

// Rename executes RenameCondominiumCommand
func (h *CondominiumHandler) Rename(ctx context.Context, cmd commands.RenameCondominiumCommand) error {
	condominium, err := h.load(ctx, cmd.CondominiumID)
	if err != nil {
		return err
	}
	if err := condominium.Rename(cmd.Name); err != nil {
		return err
	}
	return h.condominiums.Save(ctx, condominium)
}

// ChangeAddress executes ChangeCondominiumAddressCommand
func (h *CondominiumHandler) ChangeAddress(ctx context.Context, cmd commands.ChangeCondominiumAddressCommand) error {
	address, err := valueobjects.NewAddress(cmd.Street, cmd.City, cmd.PostalCode, cmd.Country)
	if err != nil {
		return err
	}
	condominium, err := h.load(ctx, cmd.CondominiumID)
	if err != nil {
		return err
	}
	if err := condominium.ChangeAddress(address); err != nil {
		return err
	}
	return h.condominiums.Save(ctx, condominium)
}

func (h *CondominiumHandler) load(ctx context.Context, condominiumID string) (*aggregates.Condominium, error) {
	id, err := valueobjects.CondominiumIDFromString(condominiumID)
	if err != nil {
		return nil, err
	}
	return h.condominiums.FindByID(ctx, id)
}

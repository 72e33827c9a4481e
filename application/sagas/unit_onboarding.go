package sagas

import (
	"context"

	"go.uber.org/zap"

	"github.com/luisriego/MatisseAPI-sub001/application/commands"
	"github.com/luisriego/MatisseAPI-sub001/application/commands/bus"
	"github.com/luisriego/MatisseAPI-sub001/domain/core/valueobjects"
	"github.com/luisriego/MatisseAPI-sub001/pkg/utils"
)

// NewOwner describes an owner to create while onboarding a unit
type NewOwner struct {
	Name  string `json:"name" validate:"required,max=255"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"omitempty,e164"`
}

// UnitOnboardingRequest adds a unit to a condominium, gives it an owner and
// opens its ledger. Either ExistingOwnerID or NewOwner may be set; with
// neither the unit is left without owner.
type UnitOnboardingRequest struct {
	CondominiumID   string    `json:"condominiumId" validate:"required,uuid"`
	Identifier      string    `json:"identifier" validate:"required,max=50"`
	ExistingOwnerID string    `json:"existingOwnerId" validate:"omitempty,uuid,excluded_with=NewOwner"`
	NewOwner        *NewOwner `json:"newOwner"`
	InitialBalance  int64     `json:"initialBalance"`
	Currency        string    `json:"currency" validate:"required,len=3"`
}

// UnitOnboardingResult holds the identifiers created by the onboarding
type UnitOnboardingResult struct {
	UnitID        string `json:"unitId"`
	OwnerID       string `json:"ownerId,omitempty"`
	OwnerAssigned bool   `json:"ownerAssigned"`
}

// UnitOnboarding runs the onboarding saga through the command bus
type UnitOnboarding struct {
	commands *bus.CommandBus
	logger   *zap.Logger
}

// NewUnitOnboarding creates a new unit onboarding process
func NewUnitOnboarding(commandBus *bus.CommandBus, logger *zap.Logger) *UnitOnboarding {
	return &UnitOnboarding{commands: commandBus, logger: logger}
}

// Run onboards one unit
func (o *UnitOnboarding) Run(ctx context.Context, req UnitOnboardingRequest) (UnitOnboardingResult, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return UnitOnboardingResult{}, err
	}

	result := UnitOnboardingResult{
		UnitID:  valueobjects.NewUnitID().String(),
		OwnerID: req.ExistingOwnerID,
	}

	saga := New[UnitOnboardingResult]("unit-onboarding", o.logger)
	if req.NewOwner != nil {
		saga.AddStep(Step[UnitOnboardingResult]{
			Name: "create-owner",
			Execute: func(ctx context.Context, r *UnitOnboardingResult) error {
				r.OwnerID = valueobjects.NewOwnerID().String()
				return o.commands.Send(ctx, commands.CreateOwnerCommand{
					OwnerID: r.OwnerID,
					Name:    req.NewOwner.Name,
					Email:   req.NewOwner.Email,
					Phone:   req.NewOwner.Phone,
				})
			},
		})
	}

	saga.AddStep(Step[UnitOnboardingResult]{
		Name: "create-unit",
		Execute: func(ctx context.Context, r *UnitOnboardingResult) error {
			return o.commands.Send(ctx, commands.CreateUnitCommand{
				UnitID:        r.UnitID,
				CondominiumID: req.CondominiumID,
				Identifier:    req.Identifier,
			})
		},
	})

	if result.OwnerID != "" || req.NewOwner != nil {
		saga.AddStep(Step[UnitOnboardingResult]{
			Name: "assign-owner",
			Execute: func(ctx context.Context, r *UnitOnboardingResult) error {
				if err := o.commands.Send(ctx, commands.AssignUnitOwnerCommand{UnitID: r.UnitID, OwnerID: r.OwnerID}); err != nil {
					return err
				}
				r.OwnerAssigned = true
				return nil
			},
			Compensate: func(ctx context.Context, r *UnitOnboardingResult) error {
				if err := o.commands.Send(ctx, commands.RemoveUnitOwnerCommand{UnitID: r.UnitID}); err != nil {
					return err
				}
				r.OwnerAssigned = false
				return nil
			},
		})
	}

	saga.AddStep(Step[UnitOnboardingResult]{
		Name: "open-ledger",
		Execute: func(ctx context.Context, r *UnitOnboardingResult) error {
			return o.commands.Send(ctx, commands.OpenUnitLedgerCommand{
				UnitID:         r.UnitID,
				InitialBalance: req.InitialBalance,
				Currency:       req.Currency,
			})
		},
	})

	if err := saga.Execute(ctx, &result); err != nil {
		return result, err
	}
	return result, nil
}

package statemachine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/veloparc/velo-api/internal/models"
)

// RentalFSM wraps a rental contract with its workflow state machine
type RentalFSM struct {
	contract *models.RentalContract
	fsm      *fsm.FSM
}

// NewRentalFSM creates a state machine seeded with the contract's current state
func NewRentalFSM(contract *models.RentalContract) *RentalFSM {
	r := &RentalFSM{
		contract: contract,
	}

	r.fsm = fsm.NewFSM(
		contract.State,
		fsm.Events{
			// draft → confirmed
			{Name: "confirm", Src: []string{models.ContractStateDraft}, Dst: models.ContractStateConfirmed},

			// confirmed → ongoing
			{Name: "start", Src: []string{models.ContractStateConfirmed}, Dst: models.ContractStateOngoing},

			// ongoing → done
			{Name: "finish", Src: []string{models.ContractStateOngoing}, Dst: models.ContractStateDone},

			// any non-terminal → cancelled
			{Name: "cancel", Src: []string{models.ContractStateDraft, models.ContractStateConfirmed, models.ContractStateOngoing}, Dst: models.ContractStateCancelled},

			// cancelled → draft (reset)
			{Name: "reset", Src: []string{models.ContractStateCancelled}, Dst: models.ContractStateDraft},
		},
		fsm.Callbacks{},
	)

	return r
}

// Confirm transitions the contract to confirmed
func (r *RentalFSM) Confirm(ctx context.Context) error {
	if !r.contract.MayConfirm() {
		return fmt.Errorf("contract cannot be confirmed in current state: %s", r.contract.State)
	}

	if err := r.fsm.Event(ctx, "confirm"); err != nil {
		return fmt.Errorf("failed to confirm contract: %w", err)
	}

	r.contract.State = r.fsm.Current()
	return nil
}

// Start transitions the contract to ongoing
func (r *RentalFSM) Start(ctx context.Context) error {
	if !r.contract.MayStart() {
		return fmt.Errorf("contract cannot start in current state: %s", r.contract.State)
	}

	if err := r.fsm.Event(ctx, "start"); err != nil {
		return fmt.Errorf("failed to start contract: %w", err)
	}

	r.contract.State = r.fsm.Current()
	return nil
}

// Finish transitions the contract to done
func (r *RentalFSM) Finish(ctx context.Context) error {
	if !r.contract.MayFinish() {
		return fmt.Errorf("contract cannot be finished in current state: %s", r.contract.State)
	}

	if err := r.fsm.Event(ctx, "finish"); err != nil {
		return fmt.Errorf("failed to finish contract: %w", err)
	}

	r.contract.State = r.fsm.Current()
	return nil
}

// Cancel transitions the contract to cancelled
func (r *RentalFSM) Cancel(ctx context.Context) error {
	if !r.contract.MayCancel() {
		return fmt.Errorf("contract cannot be cancelled in current state: %s", r.contract.State)
	}

	if err := r.fsm.Event(ctx, "cancel"); err != nil {
		return fmt.Errorf("failed to cancel contract: %w", err)
	}

	r.contract.State = r.fsm.Current()
	return nil
}

// ResetDraft transitions a cancelled contract back to draft
func (r *RentalFSM) ResetDraft(ctx context.Context) error {
	if !r.contract.MayResetDraft() {
		return fmt.Errorf("contract cannot be reset in current state: %s", r.contract.State)
	}

	if err := r.fsm.Event(ctx, "reset"); err != nil {
		return fmt.Errorf("failed to reset contract: %w", err)
	}

	r.contract.State = r.fsm.Current()
	return nil
}

// Current returns the current state
func (r *RentalFSM) Current() string {
	return r.fsm.Current()
}

// Can checks if a transition is possible
func (r *RentalFSM) Can(event string) bool {
	return r.fsm.Can(event)
}

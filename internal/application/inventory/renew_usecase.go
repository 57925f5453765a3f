package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/heladeria-api/internal/application/dto"
	"github.com/jhoicas/heladeria-api/internal/application/ports"
	"github.com/jhoicas/heladeria-api/internal/domain/access"
	"github.com/jhoicas/heladeria-api/internal/domain/entity"
	"github.com/jhoicas/heladeria-api/internal/domain/inventory"
	"github.com/jhoicas/heladeria-api/internal/domain/repository"
	"github.com/jhoicas/heladeria-api/pkg/logger"
)

// RenewUseCase renueva el inventario de complementos: los deja en cero dentro de una transacción
// y registra un movimiento RENEWAL por cada ingrediente renovado. Las bases se omiten.
type RenewUseCase struct {
	txRunner  ports.TxRunner
	publisher ports.EventPublisher
	log       *logger.Logger
}

// NewRenewUseCase construye el caso de uso.
func NewRenewUseCase(txRunner ports.TxRunner, publisher ports.EventPublisher, log *logger.Logger) *RenewUseCase {
	if publisher == nil {
		publisher = ports.NopPublisher{}
	}
	return &RenewUseCase{txRunner: txRunner, publisher: publisher, log: log.Component("inventory")}
}

// RenewIngredients renueva los ingredientes indicados y devuelve cuántos complementos quedaron en cero.
func (uc *RenewUseCase) RenewIngredients(ctx context.Context, actor access.Actor, in dto.RenewIngredientsRequest) (*dto.RenewIngredientsResponse, error) {
	if err := access.Authorize(actor, access.OpRenewIngredients); err != nil {
		return nil, err
	}
	now := time.Now()
	out := &dto.RenewIngredientsResponse{Skipped: []string{}}
	var renewed []string

	err := uc.txRunner.Run(ctx, func(
		ingredientRepo repository.IngredientRepository,
		_ repository.ProductRepository,
		_ repository.SaleRepository,
		movRepo repository.InventoryMovementRepository,
	) error {
		for _, id := range uniqueIDs(in.IngredientIDs) {
			ing, err := ingredientRepo.GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if ing == nil {
				out.Skipped = append(out.Skipped, id)
				continue
			}
			before := ing.Stock
			if !inventory.Renew(ing) {
				out.Skipped = append(out.Skipped, id)
				continue
			}
			if err := ingredientRepo.UpdateStock(ctx, ing.ID, ing.Stock); err != nil {
				return err
			}
			if err := movRepo.Create(ctx, &entity.InventoryMovement{
				ID:           uuid.New().String(),
				IngredientID: ing.ID,
				Type:         entity.MovementTypeRenewal,
				Delta:        ing.Stock - before,
				StockBefore:  before,
				StockAfter:   ing.Stock,
				CreatedBy:    actor.UserID,
				CreatedAt:    now,
			}); err != nil {
				return err
			}
			renewed = append(renewed, ing.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out.Renewed = len(renewed)

	uc.log.Info().
		Str("actor", actor.UserID).
		Int("renewed", out.Renewed).
		Int("skipped", len(out.Skipped)).
		Msg("complementos renovados")

	if len(renewed) > 0 {
		event := ports.Event{
			Type:       ports.EventIngredientsRenewed,
			Key:        actor.UserID,
			OccurredAt: now,
			Payload: dto.IngredientsRenewedEvent{
				IngredientIDs: renewed,
				RenewedBy:     actor.UserID,
				RenewedAt:     now,
			},
		}
		if err := uc.publisher.Publish(ctx, event); err != nil {
			uc.log.Warn().Err(err).Str("event", event.Type).Msg("no se pudo publicar el evento")
		}
	}
	return out, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

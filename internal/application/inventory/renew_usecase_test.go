package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/heladeria-api/internal/application/dto"
	"github.com/jhoicas/heladeria-api/internal/application/ports"
	"github.com/jhoicas/heladeria-api/internal/domain"
	"github.com/jhoicas/heladeria-api/internal/domain/access"
	"github.com/jhoicas/heladeria-api/internal/domain/entity"
	"github.com/jhoicas/heladeria-api/internal/infrastructure/memory"
	"github.com/jhoicas/heladeria-api/pkg/logger"
)

type capturePublisher struct{ events []ports.Event }

func (p *capturePublisher) Publish(_ context.Context, e ports.Event) error {
	p.events = append(p.events, e)
	return nil
}

func seed(t *testing.T, s *memory.Store, id string, kind entity.IngredientKind, stock int) {
	t.Helper()
	now := time.Now()
	require.NoError(t, s.Ingredients().Create(context.Background(), &entity.Ingredient{
		ID: id, Name: id, Kind: kind, Price: decimal.NewFromInt(1), Stock: stock, CreatedAt: now, UpdatedAt: now,
	}))
}

func stock(t *testing.T, s *memory.Store, id string) int {
	t.Helper()
	ing, err := s.Ingredients().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, ing)
	return ing.Stock
}

func TestRenewIngredients_SoloComplementos(t *testing.T) {
	s := memory.NewStore()
	seed(t, s, "base", entity.IngredientBase, 7)
	seed(t, s, "chispas", entity.IngredientComplement, 4)
	seed(t, s, "fresas", entity.IngredientComplement, -2)
	pub := &capturePublisher{}
	uc := NewRenewUseCase(s, pub, logger.Nop())
	employee := access.NewActor("u-emp", entity.RoleEmployee)

	out, err := uc.RenewIngredients(context.Background(), employee, dto.RenewIngredientsRequest{
		IngredientIDs: []string{"base", "chispas", "fresas", "chispas", "no-existe"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Renewed)
	assert.ElementsMatch(t, []string{"base", "no-existe"}, out.Skipped)

	assert.Equal(t, 7, stock(t, s, "base"))
	assert.Equal(t, 0, stock(t, s, "chispas"))
	assert.Equal(t, 0, stock(t, s, "fresas"))

	movs, err := s.Movements().ListByIngredient(context.Background(), "chispas", 10)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeRenewal, movs[0].Type)
	assert.Equal(t, -4, movs[0].Delta)
	assert.Equal(t, "u-emp", movs[0].CreatedBy)

	movs, err = s.Movements().ListByIngredient(context.Background(), "fresas", 10)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, 2, movs[0].Delta)

	require.Len(t, pub.events, 1)
	assert.Equal(t, "ingredients.renewed", pub.events[0].Type)
}

func TestRenewIngredients_SinComplementosNoPublica(t *testing.T) {
	s := memory.NewStore()
	seed(t, s, "base", entity.IngredientBase, 3)
	pub := &capturePublisher{}
	uc := NewRenewUseCase(s, pub, logger.Nop())

	out, err := uc.RenewIngredients(context.Background(), access.NewActor("u-admin", entity.RoleAdministrator),
		dto.RenewIngredientsRequest{IngredientIDs: []string{"base"}})
	require.NoError(t, err)
	assert.Zero(t, out.Renewed)
	assert.Empty(t, pub.events)
}

func TestRenewIngredients_ClienteRechazado(t *testing.T) {
	s := memory.NewStore()
	seed(t, s, "chispas", entity.IngredientComplement, 4)
	uc := NewRenewUseCase(s, nil, logger.Nop())

	_, err := uc.RenewIngredients(context.Background(), access.NewActor("u-cli", entity.RoleClient),
		dto.RenewIngredientsRequest{IngredientIDs: []string{"chispas"}})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, 4, stock(t, s, "chispas"))
}

package access_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/heladeria-api/internal/domain"
	"github.com/jhoicas/heladeria-api/internal/domain/access"
	"github.com/jhoicas/heladeria-api/internal/domain/entity"
)

var (
	admin    = access.NewActor("u-admin", entity.RoleAdministrator)
	employee = access.NewActor("u-emp", entity.RoleEmployee)
	client   = access.NewActor("u-cli", entity.RoleClient)
	anon     = access.Anonymous()
)

func TestPredicados(t *testing.T) {
	assert.True(t, access.IsAdmin(admin))
	assert.False(t, access.IsAdmin(employee))
	assert.False(t, access.IsAdmin(client))

	assert.True(t, access.IsEmployee(admin))
	assert.True(t, access.IsEmployee(employee))
	assert.False(t, access.IsEmployee(client))

	assert.True(t, access.IsCustomer(admin))
	assert.True(t, access.IsCustomer(employee))
	assert.True(t, access.IsCustomer(client))

	for _, pred := range []access.Predicate{access.IsAdmin, access.IsEmployee, access.IsCustomer} {
		assert.False(t, pred(anon), "anónimo nunca cumple un predicado de rol")
	}

	// Rol válido pero sin autenticar: se deniega.
	assert.False(t, access.IsAdmin(access.Actor{Role: entity.RoleAdministrator}))
}

func TestAuthorize_ClienteNoCreaIngredientes(t *testing.T) {
	err := access.Authorize(client, access.OpCreateIngredient)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.True(t, domain.IsAuthorization(err))

	assert.NoError(t, access.Authorize(employee, access.OpCreateIngredient))
}

func TestAuthorize_Tabla(t *testing.T) {
	tests := []struct {
		op      access.Operation
		allowed map[string]bool // anon, client, employee, admin
	}{
		{access.OpListProducts, map[string]bool{"anon": true, "client": true, "employee": true, "admin": true}},
		{access.OpGetProduct, map[string]bool{"anon": true, "client": true, "employee": true, "admin": true}},
		{access.OpCreateProduct, map[string]bool{"employee": true, "admin": true}},
		{access.OpDeleteIngredient, map[string]bool{"employee": true, "admin": true}},
		{access.OpRecordSale, map[string]bool{"client": true, "employee": true, "admin": true}},
		{access.OpListSales, map[string]bool{"admin": true}},
		{access.OpMostProfitable, map[string]bool{"admin": true}},
		{access.OpMyPurchases, map[string]bool{"client": true, "employee": true, "admin": true}},
		{access.OpCreateUser, map[string]bool{"admin": true}},
	}
	actors := map[string]access.Actor{"anon": anon, "client": client, "employee": employee, "admin": admin}
	for _, tt := range tests {
		for name, actor := range actors {
			assert.Equal(t, tt.allowed[name], access.Allowed(actor, tt.op), "%s en %s", name, tt.op)
		}
	}
}

func TestAuthorize_AnonimoRecibeUnauthorized(t *testing.T) {
	assert.ErrorIs(t, access.Authorize(anon, access.OpRecordSale), domain.ErrUnauthorized)
	assert.ErrorIs(t, access.Authorize(anon, access.Operation("desconocida")), domain.ErrUnauthorized)
	assert.ErrorIs(t, access.Authorize(admin, access.Operation("desconocida")), domain.ErrForbidden)
}

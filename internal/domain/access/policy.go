// Package access define la política de autorización por rol.
// ADMINISTRATOR incluye los permisos de EMPLOYEE, que incluye los de CLIENT.
package access

import (
	"github.com/jhoicas/heladeria-api/internal/domain"
	"github.com/jhoicas/heladeria-api/internal/domain/entity"
)

// Actor quien invoca una operación.
type Actor struct {
	UserID        string
	Role          entity.Role
	Authenticated bool
}

// Anonymous actor sin sesión.
func Anonymous() Actor { return Actor{} }

// NewActor actor autenticado con el rol dado.
func NewActor(userID string, role entity.Role) Actor {
	return Actor{UserID: userID, Role: role, Authenticated: true}
}

// IsAdmin autenticado y ADMINISTRATOR.
func IsAdmin(a Actor) bool {
	return a.Authenticated && a.Role == entity.RoleAdministrator
}

// IsEmployee autenticado y EMPLOYEE o ADMINISTRATOR.
func IsEmployee(a Actor) bool {
	return a.Authenticated && (a.Role == entity.RoleEmployee || a.Role == entity.RoleAdministrator)
}

// IsCustomer autenticado con cualquiera de los tres roles.
func IsCustomer(a Actor) bool {
	if !a.Authenticated {
		return false
	}
	switch a.Role {
	case entity.RoleClient, entity.RoleEmployee, entity.RoleAdministrator:
		return true
	}
	return false
}

// IsAuthenticated cualquier sesión válida.
func IsAuthenticated(a Actor) bool { return a.Authenticated }

func public(Actor) bool { return true }

// Operation operación protegida por la política.
type Operation string

// Operaciones del sistema.
const (
	OpListProducts     Operation = "products.list"
	OpGetProduct       Operation = "products.get"
	OpCreateProduct    Operation = "products.create"
	OpEditProduct      Operation = "products.edit"
	OpDeleteProduct    Operation = "products.delete"
	OpMostProfitable   Operation = "products.most_profitable"
	OpListIngredients  Operation = "ingredients.list"
	OpCreateIngredient Operation = "ingredients.create"
	OpEditIngredient   Operation = "ingredients.edit"
	OpDeleteIngredient Operation = "ingredients.delete"
	OpRenewIngredients Operation = "ingredients.renew"
	OpRecordSale       Operation = "sales.record"
	OpListSales        Operation = "sales.list"
	OpExportSales      Operation = "sales.export"
	OpMyPurchases      Operation = "sales.mine"
	OpViewReceipt      Operation = "sales.receipt"
	OpDashboard        Operation = "dashboard.view"
	OpCreateUser       Operation = "users.create"
)

// Predicate condición que el actor debe cumplir.
type Predicate func(Actor) bool

var table = map[Operation]Predicate{
	OpListProducts:     public,
	OpGetProduct:       public,
	OpCreateProduct:    IsEmployee,
	OpEditProduct:      IsEmployee,
	OpDeleteProduct:    IsEmployee,
	OpMostProfitable:   IsAdmin,
	OpListIngredients:  IsEmployee,
	OpCreateIngredient: IsEmployee,
	OpEditIngredient:   IsEmployee,
	OpDeleteIngredient: IsEmployee,
	OpRenewIngredients: IsEmployee,
	OpRecordSale:       IsCustomer,
	OpListSales:        IsAdmin,
	OpExportSales:      IsAdmin,
	OpMyPurchases:      IsAuthenticated,
	OpViewReceipt:      IsAuthenticated,
	OpDashboard:        IsAuthenticated,
	OpCreateUser:       IsAdmin,
}

// Allowed evalúa el predicado de la operación. Operaciones desconocidas se deniegan.
func Allowed(a Actor, op Operation) bool {
	pred, ok := table[op]
	if !ok {
		return false
	}
	return pred(a)
}

// Authorize devuelve nil si el actor puede ejecutar op; ErrUnauthorized si no hay sesión
// y la operación no es pública; ErrForbidden si el rol no alcanza.
func Authorize(a Actor, op Operation) error {
	if Allowed(a, op) {
		return nil
	}
	if !a.Authenticated {
		return domain.ErrUnauthorized
	}
	return domain.ErrForbidden
}

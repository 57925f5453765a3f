// Package memory implementa los puertos de persistencia en memoria. Lo usan los tests y
// el arranque con STORE_DRIVER=memory (demo sin PostgreSQL).
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/heladeria-api/internal/application/ports"
	"github.com/jhoicas/heladeria-api/internal/domain"
	"github.com/jhoicas/heladeria-api/internal/domain/entity"
	"github.com/jhoicas/heladeria-api/internal/domain/repository"
)

type productRow struct {
	product       entity.Product // sin Ingredients
	ingredientIDs []string
}

type state struct {
	ingredients map[string]entity.Ingredient
	products    map[string]productRow
	users       map[string]entity.User
	sales       []entity.Sale
	movements   []entity.InventoryMovement
	nextSaleID  int64
}

func (s *state) clone() *state {
	out := &state{
		ingredients: make(map[string]entity.Ingredient, len(s.ingredients)),
		products:    make(map[string]productRow, len(s.products)),
		users:       make(map[string]entity.User, len(s.users)),
		sales:       append([]entity.Sale(nil), s.sales...),
		movements:   append([]entity.InventoryMovement(nil), s.movements...),
		nextSaleID:  s.nextSaleID,
	}
	for k, v := range s.ingredients {
		out.ingredients[k] = v
	}
	for k, v := range s.products {
		v.ingredientIDs = append([]string(nil), v.ingredientIDs...)
		out.products[k] = v
	}
	for k, v := range s.users {
		out.users[k] = v
	}
	return out
}

// Store guarda todo el estado detrás de un mutex. Las transacciones se serializan (txMu) y
// se revierten restaurando una copia del estado tomada al inicio.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	st   *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{st: &state{
		ingredients: map[string]entity.Ingredient{},
		products:    map[string]productRow{},
		users:       map[string]entity.User{},
		nextSaleID:  1,
	}}
}

// Ingredients repositorio de ingredientes.
func (s *Store) Ingredients() *IngredientRepo { return &IngredientRepo{s: s} }

// Products repositorio de productos.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

// Sales repositorio de ventas.
func (s *Store) Sales() *SaleRepo { return &SaleRepo{s: s} }

// Users repositorio de usuarios.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// Movements repositorio del diario de inventario.
func (s *Store) Movements() *MovementRepo { return &MovementRepo{s: s} }

var _ ports.TxRunner = (*Store)(nil)

// Run ejecuta fn en exclusión mutua con otras transacciones. Si fn falla el estado vuelve al previo.
func (s *Store) Run(ctx context.Context, fn func(
	ingredientRepo repository.IngredientRepository,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	movRepo repository.InventoryMovementRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.st.clone()
	s.mu.RUnlock()

	if err := fn(s.Ingredients(), s.Products(), s.Sales(), s.Movements()); err != nil {
		s.mu.Lock()
		s.st = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// Ingredientes

var _ repository.IngredientRepository = (*IngredientRepo)(nil)

// IngredientRepo ingredientes en memoria.
type IngredientRepo struct{ s *Store }

// Create inserta; nombre repetido -> ErrDuplicate.
func (r *IngredientRepo) Create(_ context.Context, ing *entity.Ingredient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.st.ingredients {
		if other.Name == ing.Name {
			return domain.ErrDuplicate
		}
	}
	if _, ok := r.s.st.ingredients[ing.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.st.ingredients[ing.ID] = *ing
	return nil
}

// GetByID (nil, nil) si no existe.
func (r *IngredientRepo) GetByID(_ context.Context, id string) (*entity.Ingredient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ing, ok := r.s.st.ingredients[id]
	if !ok {
		return nil, nil
	}
	return &ing, nil
}

// GetByName búsqueda por nombre exacto.
func (r *IngredientRepo) GetByName(_ context.Context, name string) (*entity.Ingredient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, ing := range r.s.st.ingredients {
		if ing.Name == name {
			out := ing
			return &out, nil
		}
	}
	return nil, nil
}

// GetForUpdate igual que GetByID: la exclusión la da Store.Run.
func (r *IngredientRepo) GetForUpdate(ctx context.Context, id string) (*entity.Ingredient, error) {
	return r.GetByID(ctx, id)
}

// Update reemplaza los datos del ingrediente salvo el stock, que solo cambia con UpdateStock.
func (r *IngredientRepo) Update(_ context.Context, ing *entity.Ingredient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.st.ingredients[ing.ID]
	if !ok {
		return domain.ErrNotFound
	}
	for id, other := range r.s.st.ingredients {
		if id != ing.ID && other.Name == ing.Name {
			return domain.ErrDuplicate
		}
	}
	row := *ing
	row.Stock = current.Stock
	r.s.st.ingredients[ing.ID] = row
	return nil
}

// UpdateStock fija el stock.
func (r *IngredientRepo) UpdateStock(_ context.Context, id string, stock int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ing, ok := r.s.st.ingredients[id]
	if !ok {
		return domain.ErrNotFound
	}
	ing.Stock = stock
	r.s.st.ingredients[id] = ing
	return nil
}

// List ordenados por nombre.
func (r *IngredientRepo) List(_ context.Context) ([]*entity.Ingredient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := make([]*entity.Ingredient, 0, len(r.s.st.ingredients))
	for _, ing := range r.s.st.ingredients {
		ing := ing
		list = append(list, &ing)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

// Delete falla con ValidationError si algún producto lo usa; borra su diario.
func (r *IngredientRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.ingredients[id]; !ok {
		return domain.ErrNotFound
	}
	for _, row := range r.s.st.products {
		for _, ingID := range row.ingredientIDs {
			if ingID == id {
				return domain.NewValidationError("id", "el ingrediente está en uso por algún producto")
			}
		}
	}
	delete(r.s.st.ingredients, id)
	kept := r.s.st.movements[:0]
	for _, m := range r.s.st.movements {
		if m.IngredientID != id {
			kept = append(kept, m)
		}
	}
	r.s.st.movements = kept
	return nil
}

// Count número de ingredientes.
func (r *IngredientRepo) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.st.ingredients), nil
}

// Productos

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo productos en memoria; la composición guarda IDs y se resuelve en cada lectura.
type ProductRepo struct{ s *Store }

func (r *ProductRepo) validateRow(p *entity.Product) ([]string, error) {
	ids := p.IngredientIDs()
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return nil, domain.NewValidationError("ingredient_ids", "un ingrediente no puede repetirse en el producto")
		}
		seen[id] = true
		if _, ok := r.s.st.ingredients[id]; !ok {
			return nil, domain.NewValidationError("ingredient_ids", "algún ingrediente no existe")
		}
	}
	for id, other := range r.s.st.products {
		if id != p.ID && other.product.Name == p.Name {
			return nil, domain.ErrDuplicate
		}
	}
	return ids, nil
}

// Create inserta el producto con su composición.
func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.products[p.ID]; ok {
		return domain.ErrDuplicate
	}
	ids, err := r.validateRow(p)
	if err != nil {
		return err
	}
	row := productRow{product: *p, ingredientIDs: ids}
	row.product.Ingredients = nil
	r.s.st.products[p.ID] = row
	return nil
}

// Update reemplaza el producto y su composición.
func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.products[p.ID]; !ok {
		return domain.ErrNotFound
	}
	ids, err := r.validateRow(p)
	if err != nil {
		return err
	}
	row := productRow{product: *p, ingredientIDs: ids}
	row.product.Ingredients = nil
	r.s.st.products[p.ID] = row
	return nil
}

func (r *ProductRepo) hydrate(row productRow) *entity.Product {
	p := row.product
	p.Ingredients = make([]entity.Ingredient, 0, len(row.ingredientIDs))
	for _, id := range row.ingredientIDs {
		if ing, ok := r.s.st.ingredients[id]; ok {
			p.Ingredients = append(p.Ingredients, ing)
		}
	}
	return &p
}

// GetByID (nil, nil) si no existe.
func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.s.st.products[id]
	if !ok {
		return nil, nil
	}
	return r.hydrate(row), nil
}

// GetByName búsqueda por nombre exacto.
func (r *ProductRepo) GetByName(_ context.Context, name string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, row := range r.s.st.products {
		if row.product.Name == name {
			return r.hydrate(row), nil
		}
	}
	return nil, nil
}

// List ordenados por nombre.
func (r *ProductRepo) List(_ context.Context) ([]*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := make([]*entity.Product, 0, len(r.s.st.products))
	for _, row := range r.s.st.products {
		list = append(list, r.hydrate(row))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

// Delete elimina el producto y sus ventas.
func (r *ProductRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.products[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.st.products, id)
	kept := r.s.st.sales[:0]
	for _, sale := range r.s.st.sales {
		if sale.ProductID != id {
			kept = append(kept, sale)
		}
	}
	r.s.st.sales = kept
	return nil
}

// Count número de productos.
func (r *ProductRepo) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.st.products), nil
}

// CountByIngredient cuántos productos usan el ingrediente.
func (r *ProductRepo) CountByIngredient(_ context.Context, ingredientID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, row := range r.s.st.products {
		for _, id := range row.ingredientIDs {
			if id == ingredientID {
				n++
				break
			}
		}
	}
	return n, nil
}

// Ventas

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo ventas en memoria (solo alta).
type SaleRepo struct{ s *Store }

// Create asigna el siguiente ID. ErrNotFound si el producto no existe.
func (r *SaleRepo) Create(_ context.Context, sale *entity.Sale) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.st.products[sale.ProductID]; !ok {
		return domain.ErrNotFound
	}
	sale.ID = r.s.st.nextSaleID
	r.s.st.nextSaleID++
	r.s.st.sales = append(r.s.st.sales, *sale)
	return nil
}

func (r *SaleRepo) details(sale entity.Sale) entity.SaleWithDetails {
	out := entity.SaleWithDetails{Sale: sale}
	if row, ok := r.s.st.products[sale.ProductID]; ok {
		out.ProductName = row.product.Name
	}
	if u, ok := r.s.st.users[sale.UserID]; ok {
		out.Username = u.Username
	}
	return out
}

// GetByID (nil, nil) si no existe.
func (r *SaleRepo) GetByID(_ context.Context, id int64) (*entity.SaleWithDetails, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, sale := range r.s.st.sales {
		if sale.ID == id {
			d := r.details(sale)
			return &d, nil
		}
	}
	return nil, nil
}

func matches(sale entity.Sale, f repository.SaleFilter) bool {
	if f.UserID != "" && sale.UserID != f.UserID {
		return false
	}
	if f.From != nil && sale.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && sale.CreatedAt.After(*f.To) {
		return false
	}
	return true
}

// List más recientes primero.
func (r *SaleRepo) List(_ context.Context, f repository.SaleFilter) ([]entity.SaleWithDetails, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := make([]entity.SaleWithDetails, 0)
	for _, sale := range r.s.st.sales {
		if matches(sale, f) {
			list = append(list, r.details(sale))
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID > list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	if f.Limit > 0 && len(list) > f.Limit {
		list = list[:f.Limit]
	}
	return list, nil
}

// Summarize agregados del filtro (ignora Limit).
func (r *SaleRepo) Summarize(_ context.Context, f repository.SaleFilter) (repository.SalesSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out repository.SalesSummary
	for _, sale := range r.s.st.sales {
		if !matches(sale, f) {
			continue
		}
		out.Count++
		out.Units += sale.Quantity
		out.Revenue = out.Revenue.Add(sale.Total)
	}
	return out, nil
}

// Usuarios

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo usuarios en memoria.
type UserRepo struct{ s *Store }

// Create username repetido -> ErrUsernameAlreadyTaken.
func (r *UserRepo) Create(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.st.users {
		if u.Username == user.Username {
			return domain.ErrUsernameAlreadyTaken
		}
	}
	r.s.st.users[user.ID] = *user
	return nil
}

// GetByID (nil, nil) si no existe.
func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.st.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// GetByUsername búsqueda por username.
func (r *UserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.st.users {
		if u.Username == username {
			out := u
			return &out, nil
		}
	}
	return nil, nil
}

// Movimientos

var _ repository.InventoryMovementRepository = (*MovementRepo)(nil)

// MovementRepo diario de inventario en memoria.
type MovementRepo struct{ s *Store }

// Create agrega el movimiento.
func (r *MovementRepo) Create(_ context.Context, m *entity.InventoryMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.st.movements = append(r.s.st.movements, *m)
	return nil
}

// ListByIngredient más recientes primero.
func (r *MovementRepo) ListByIngredient(_ context.Context, ingredientID string, limit int) ([]*entity.InventoryMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.InventoryMovement
	for i := len(r.s.st.movements) - 1; i >= 0; i-- {
		m := r.s.st.movements[i]
		if m.IngredientID != ingredientID {
			continue
		}
		list = append(list, &m)
		if limit > 0 && len(list) == limit {
			break
		}
	}
	return list, nil
}

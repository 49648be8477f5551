package rpc

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/iliyamo/food-ordering/internal/apperr"
	"github.com/iliyamo/food-ordering/internal/model"
	"github.com/iliyamo/food-ordering/internal/repository"
)

type menuListResult struct {
	Items      []*model.MenuItem     `json:"items"`
	Categories []*model.MenuCategory `json:"categories"`
}

type getItemParams struct {
	ItemID uint64 `json:"itemId"`
}

type addItemParams struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	Category    string   `json:"category"`
	Image       string   `json:"image"`
	Available   *bool    `json:"available"`
}

type updateItemParams struct {
	ID uint64 `json:"id"`
	addItemParams
}

// menuList returns available items plus the grouped category view.
// Responses are served from the Redis cache when fresh.
func (g *Gateway) menuList(ctx context.Context, _ *model.User, _ json.RawMessage) (any, error) {
	if body, ok := g.menuCache.Get(ctx); ok {
		return json.RawMessage(body), nil
	}
	items, err := g.menu.ListAvailable(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	result := menuListResult{Items: items, Categories: model.GroupByCategory(items)}
	if body, err := json.Marshal(result); err == nil {
		g.menuCache.Set(ctx, body)
	}
	return result, nil
}

// menuGetAll is the legacy flat list used by older clients.
func (g *Gateway) menuGetAll(ctx context.Context, _ *model.User, _ json.RawMessage) (any, error) {
	items, err := g.menu.ListAvailable(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return items, nil
}

func (g *Gateway) menuGetItem(ctx context.Context, _ *model.User, params json.RawMessage) (any, error) {
	var p getItemParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if p.ItemID == 0 {
		return nil, apperr.Validation("itemId is required")
	}
	item, err := g.menu.GetByID(ctx, p.ItemID)
	if err != nil {
		return nil, menuErr(err)
	}
	return item, nil
}

// menuAddItem creates a menu item. Validation rejects a non-positive
// price before any persistence write happens.
func (g *Gateway) menuAddItem(ctx context.Context, caller *model.User, params json.RawMessage) (any, error) {
	var p addItemParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if err := validateItem(&p); err != nil {
		return nil, err
	}

	available := true
	if p.Available != nil {
		available = *p.Available
	}
	item, err := g.menu.Create(ctx, &model.MenuItem{
		Name:        p.Name,
		Description: p.Description,
		Price:       model.Round2(*p.Price),
		Category:    p.Category,
		Image:       p.Image,
		Available:   available,
		KitchenCode: caller.KitchenCode,
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	g.menuCache.Invalidate(ctx)
	return item, nil
}

// menuUpdateItem edits an existing item; setting available=false is
// the soft-delete path.
func (g *Gateway) menuUpdateItem(ctx context.Context, _ *model.User, params json.RawMessage) (any, error) {
	var p updateItemParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, apperr.Validation("id is required")
	}
	if err := validateItem(&p.addItemParams); err != nil {
		return nil, err
	}

	existing, err := g.menu.GetByID(ctx, p.ID)
	if err != nil {
		return nil, menuErr(err)
	}
	existing.Name = p.Name
	existing.Description = p.Description
	existing.Price = model.Round2(*p.Price)
	existing.Category = p.Category
	existing.Image = p.Image
	if p.Available != nil {
		existing.Available = *p.Available
	}
	item, err := g.menu.Update(ctx, existing)
	if err != nil {
		return nil, menuErr(err)
	}
	g.menuCache.Invalidate(ctx)
	return item, nil
}

func validateItem(p *addItemParams) error {
	if p.Name == "" || p.Category == "" {
		return apperr.Validation("name and category are required")
	}
	if p.Price == nil {
		return apperr.Validation("price is required")
	}
	if *p.Price <= 0 {
		return apperr.Validation("price must be positive")
	}
	return nil
}

func menuErr(err error) error {
	if errors.Is(err, repository.ErrMenuItemNotFound) {
		return apperr.NotFound("menu item not found")
	}
	return apperr.Internal(err)
}

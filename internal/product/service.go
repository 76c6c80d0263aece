package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lavka.org/internal/auth"
)

// CreateInput carries new product data.
type CreateInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// UpdateInput lists the mutable product fields; nil means "leave as is".
type UpdateInput struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
}

// Service provides product CRUD and the creator-match ownership predicate.
type Service struct {
	store Store
}

// NewService constructs Service.
func NewService(store Store) (*Service, error) {
	if store == nil {
		return nil, errors.New("product: store is required")
	}
	return &Service{store: store}, nil
}

// Create stores a product owned by the authenticated creator.
func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (*Product, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", auth.ErrInvalidInput)
	}
	if err := validate(in.Title, in.Description, in.Price); err != nil {
		return nil, err
	}
	p := &Product{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		OwnerID:     ownerID,
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("%w: %v", auth.ErrCreationFailed, err)
	}
	return p, nil
}

// List returns all products.
func (s *Service) List(ctx context.Context) ([]*Product, error) {
	return s.store.List(ctx)
}

// Get returns one product by id.
func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: product id is required", auth.ErrInvalidInput)
	}
	return s.store.FindByID(ctx, id)
}

// Update applies the partial update. Ownership is enforced by the route
// guard before this is reached; the owner never changes here.
func (s *Service) Update(ctx context.Context, id string, upd UpdateInput) (*Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: product id is required", auth.ErrInvalidInput)
	}
	p, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title is required", auth.ErrInvalidInput)
		}
		p.Title = title
	}
	if upd.Description != nil {
		desc := strings.TrimSpace(*upd.Description)
		if desc == "" {
			return nil, fmt.Errorf("%w: description is required", auth.ErrInvalidInput)
		}
		p.Description = desc
	}
	if upd.Price != nil {
		if *upd.Price <= 0 {
			return nil, fmt.Errorf("%w: price must be positive", auth.ErrInvalidInput)
		}
		p.Price = *upd.Price
	}
	if err := s.store.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a product by id.
func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: product id is required", auth.ErrInvalidInput)
	}
	if _, err := s.store.FindByID(ctx, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

// OwnedBy is the creator-match ownership predicate. A missing record or
// a store fault reads as "not owner": the check fails closed rather than
// letting an error escape past the decision engine.
func (s *Service) OwnedBy(subjectID, productID string) auth.Ownership {
	return func(ctx context.Context) (bool, error) {
		if strings.TrimSpace(productID) == "" {
			return false, nil
		}
		p, err := s.store.FindByID(ctx, productID)
		if err != nil {
			return false, nil
		}
		return p.OwnerID == subjectID, nil
	}
}

func validate(title, description string, price float64) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title is required", auth.ErrInvalidInput)
	}
	if strings.TrimSpace(description) == "" {
		return fmt.Errorf("%w: description is required", auth.ErrInvalidInput)
	}
	if price <= 0 {
		return fmt.Errorf("%w: price must be positive", auth.ErrInvalidInput)
	}
	return nil
}

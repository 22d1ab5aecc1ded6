package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/transport"
)

const searchLimit = 20

type ProductService struct {
	Repo   *repo.GormRepo
	Index  search.Index
	Events events.Publisher
}

func (s *ProductService) CreateProduct(ctx context.Context, userID uint, in transport.CreateProductRequest) (*models.Product, error) {
	prod := models.Product{
		Name:        in.Name,
		Price:       in.Price,
		Description: in.Description,
		UserID:      userID,
	}
	if prod.Description == nil && !in.DescriptionSet {
		empty := ""
		prod.Description = &empty
	}

	err := s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		taken, err := tx.ProductNameTaken(ctx, prod.Name, 0)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("product with name %q already exists: %w", prod.Name, ErrConflict)
		}
		return tx.CreateProduct(ctx, &prod)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("product with name %q already exists: %w", prod.Name, ErrConflict)
		}
		return nil, err
	}

	s.reindex(ctx, prod)
	publish(ctx, s.Events, events.TopicProduct, prod.ID, map[string]any{
		"type":      "product_created",
		"productID": prod.ID,
		"name":      prod.Name,
		"price":     prod.Price,
		"userID":    userID,
	})
	return &prod, nil
}

// DeleteProduct removes the product and returns what it looked like.
// Cart items that reference it are kept.
func (s *ProductService) DeleteProduct(ctx context.Context, id uint) (*models.Product, error) {
	var deleted *models.Product
	err := s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		prod, err := tx.GetProduct(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.DeleteProduct(ctx, id); err != nil {
			return err
		}
		deleted = prod
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
		}
		return nil, err
	}

	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("search_delete_failed", "product_id", id, "error", err)
		}
	}
	publish(ctx, s.Events, events.TopicProduct, id, map[string]any{
		"type":      "product_deleted",
		"productID": id,
	})
	return deleted, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	prod, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return prod, nil
}

func (s *ProductService) FindProductsByName(ctx context.Context, name string) ([]models.Product, error) {
	items, err := s.Repo.FindProductsByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("products named %q: %w", name, ErrNotFound)
	}
	return items, nil
}

// PatchProduct applies the fields that differ from the stored row.
// changed is false when nothing had to be written.
func (s *ProductService) PatchProduct(ctx context.Context, id uint, patch transport.PatchProductRequest) (prod *models.Product, changed bool, err error) {
	err = s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		cur, err := tx.GetProduct(ctx, id)
		if err != nil {
			return err
		}

		if patch.Name != nil && *patch.Name != cur.Name {
			taken, err := tx.ProductNameTaken(ctx, *patch.Name, id)
			if err != nil {
				return err
			}
			if taken {
				return fmt.Errorf("product with name %q already exists: %w", *patch.Name, ErrConflict)
			}
			cur.Name = *patch.Name
			changed = true
		}
		if patch.Price != nil && *patch.Price != cur.Price {
			cur.Price = *patch.Price
			changed = true
		}
		if patch.DescriptionSet && !sameText(patch.Description, cur.Description) {
			cur.Description = patch.Description
			changed = true
		}

		prod = cur
		if !changed {
			return nil
		}
		now := time.Now().UTC()
		cur.Updated = &now
		return tx.SaveProduct(ctx, cur)
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, false, fmt.Errorf("product %d: %w", id, ErrNotFound)
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, false, fmt.Errorf("product %d rename: %w", id, ErrConflict)
		}
		return nil, false, err
	}

	if changed {
		s.reindex(ctx, *prod)
		publish(ctx, s.Events, events.TopicProduct, prod.ID, map[string]any{
			"type":      "product_updated",
			"productID": prod.ID,
			"name":      prod.Name,
			"price":     prod.Price,
		})
	}
	return prod, changed, nil
}

func (s *ProductService) GetProducts(ctx context.Context) ([]models.Product, error) {
	return s.Repo.GetProducts(ctx)
}

// SearchProducts asks the search index first and falls back to the
// database when there is no index or it is unavailable.
func (s *ProductService) SearchProducts(ctx context.Context, q string) ([]search.Doc, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fmt.Errorf("empty search query: %w", ErrValidation)
	}

	if s.Index != nil {
		docs, err := s.Index.Search(ctx, q, searchLimit)
		if err == nil {
			return docs, nil
		}
		logging.FromContext(ctx).Warn("search_index_failed", "reason", "falling back to db", "error", err)
	}

	items, err := s.Repo.SearchProducts(ctx, q, searchLimit)
	if err != nil {
		return nil, err
	}
	docs := make([]search.Doc, 0, len(items))
	for _, p := range items {
		docs = append(docs, search.DocFromProduct(p))
	}
	return docs, nil
}

func (s *ProductService) reindex(ctx context.Context, p models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("search_index_failed", "product_id", p.ID, "error", err)
	}
}

func sameText(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

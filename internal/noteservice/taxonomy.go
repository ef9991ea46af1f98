package noteservice

import (
	"context"
	"fmt"
	"strings"

	"github.com/jly61/knowledge-and-blog/internal/apperr"
	"github.com/jly61/knowledge-and-blog/internal/models"
	"github.com/jly61/knowledge-and-blog/internal/parser"
	"github.com/jly61/knowledge-and-blog/internal/store"
)

// CategoryInput carries the writable fields of a category.
type CategoryInput struct {
	Name        string
	Description string
	Color       string
}

// TagInput carries the writable fields of a tag.
type TagInput struct {
	Name  string
	Color string
}

// ListCategories returns every category with the owner's note count.
func (s *Service) ListCategories(ctx context.Context, ownerID string) ([]store.CategoryCount, error) {
	return s.store.CategoryCounts(ctx, ownerID)
}

// CreateCategory adds a category; its slug is derived from the name.
func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	slug, err := slugFor(in.Name)
	if err != nil {
		return nil, err
	}
	now := s.now()
	c := &models.Category{
		ID:          s.newID(),
		Name:        strings.TrimSpace(in.Name),
		Slug:        slug,
		Description: in.Description,
		Color:       in.Color,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.InsertCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateCategory renames or recolors a category.
func (s *Service) UpdateCategory(ctx context.Context, id string, in CategoryInput) (*models.Category, error) {
	slug, err := slugFor(in.Name)
	if err != nil {
		return nil, err
	}
	var c *models.Category
	err = s.store.WithTx(ctx, func(tx *store.Tx) error {
		var err error
		if c, err = tx.GetCategory(ctx, id); err != nil {
			return err
		}
		c.Name = strings.TrimSpace(in.Name)
		c.Slug = slug
		c.Description = in.Description
		c.Color = in.Color
		c.UpdatedAt = s.now()
		return tx.UpdateCategory(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCategory removes a category that no note or post uses.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	return s.store.WithTx(ctx, func(tx *store.Tx) error {
		return tx.DeleteCategory(ctx, id)
	})
}

// ListTags returns every tag with the owner's note count.
func (s *Service) ListTags(ctx context.Context, ownerID string) ([]store.TagCount, error) {
	return s.store.TagCounts(ctx, ownerID)
}

// CreateTag adds a tag; its slug is derived from the name.
func (s *Service) CreateTag(ctx context.Context, in TagInput) (*models.Tag, error) {
	slug, err := slugFor(in.Name)
	if err != nil {
		return nil, err
	}
	now := s.now()
	t := &models.Tag{
		ID:        s.newID(),
		Name:      strings.TrimSpace(in.Name),
		Slug:      slug,
		Color:     in.Color,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.InsertTag(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateTag renames or recolors a tag.
func (s *Service) UpdateTag(ctx context.Context, id string, in TagInput) (*models.Tag, error) {
	slug, err := slugFor(in.Name)
	if err != nil {
		return nil, err
	}
	var t *models.Tag
	err = s.store.WithTx(ctx, func(tx *store.Tx) error {
		var err error
		if t, err = tx.GetTag(ctx, id); err != nil {
			return err
		}
		t.Name = strings.TrimSpace(in.Name)
		t.Slug = slug
		t.Color = in.Color
		t.UpdatedAt = s.now()
		return tx.UpdateTag(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// DeleteTag removes a tag that no note carries.
func (s *Service) DeleteTag(ctx context.Context, id string) error {
	return s.store.WithTx(ctx, func(tx *store.Tx) error {
		return tx.DeleteTag(ctx, id)
	})
}

func slugFor(name string) (string, error) {
	slug := parser.Slugify(name)
	if slug == "" {
		return "", fmt.Errorf("%w: name %q yields an empty slug", apperr.ErrInvalid, name)
	}
	return slug, nil
}

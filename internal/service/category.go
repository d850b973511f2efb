package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/chinhnt-ps/portfolio-be/internal/apperr"
	"github.com/chinhnt-ps/portfolio-be/internal/models"

	"gorm.io/gorm"
)

// CategoryService is the classification catalog consulted by the
// transaction orchestrator's existence checks.
type CategoryService struct {
	db *gorm.DB
}

type CategoryView struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Icon      string    `json:"icon,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,max=64"`
	Type string `json:"type" binding:"required,oneof=EXPENSE INCOME"`
	Icon string `json:"icon" binding:"max=64"`
}

type UpdateCategoryRequest struct {
	Name *string `json:"name"`
	Type *string `json:"type"`
	Icon *string `json:"icon"`
}

func toCategoryView(c *models.Category) CategoryView {
	return CategoryView{
		ID:        c.ID,
		Name:      c.Name,
		Type:      c.Type,
		Icon:      c.Icon,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (s *CategoryService) find(tx *gorm.DB, userID, id uint) (*models.Category, error) {
	var c models.Category
	if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("category not found")
		}
		return nil, fmt.Errorf("load category: %w", err)
	}
	return &c, nil
}

func (s *CategoryService) Create(userID uint, req CreateCategoryRequest) (*CategoryView, error) {
	c := models.Category{
		UserID: userID,
		Name:   req.Name,
		Type:   req.Type,
		Icon:   req.Icon,
	}
	if err := s.db.Create(&c).Error; err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	v := toCategoryView(&c)
	return &v, nil
}

func (s *CategoryService) List(userID uint) ([]CategoryView, error) {
	var rows []models.Category
	if err := s.db.Where("user_id = ?", userID).
		Order("type ASC, name ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	views := make([]CategoryView, 0, len(rows))
	for i := range rows {
		views = append(views, toCategoryView(&rows[i]))
	}
	return views, nil
}

func (s *CategoryService) Update(userID, id uint, req UpdateCategoryRequest) (*CategoryView, error) {
	c, err := s.find(s.db, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Type != nil {
		if *req.Type != "EXPENSE" && *req.Type != "INCOME" {
			return nil, apperr.Validationf("unknown category type %q", *req.Type)
		}
		c.Type = *req.Type
	}
	if req.Icon != nil {
		c.Icon = *req.Icon
	}

	if err := s.db.Save(c).Error; err != nil {
		return nil, fmt.Errorf("save category: %w", err)
	}
	v := toCategoryView(c)
	return &v, nil
}

func (s *CategoryService) Delete(userID, id uint) error {
	c, err := s.find(s.db, userID, id)
	if err != nil {
		return err
	}
	if err := s.db.Delete(c).Error; err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

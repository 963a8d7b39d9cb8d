package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/BookCnk/sit-football-club/internal/models"
	"github.com/BookCnk/sit-football-club/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ShopItemInput is the body of a create request.
type ShopItemInput struct {
	Name        string           `json:"name" validate:"max=200"`
	Subtitle    *string          `json:"subtitle" validate:"omitempty,max=200"`
	Price       *decimal.Decimal `json:"price"`
	Badge       *string          `json:"badge" validate:"omitempty,max=50"`
	Images      models.Images    `json:"images"`
	Sizes       models.Sizes     `json:"sizes"`
	Description string           `json:"description"`
	Payment     *string          `json:"payment"`
	Shipping    *string          `json:"shipping"`
}

// ShopItemPatch is the body of a partial update, keyed by JSON field name.
// Unknown keys are ignored.
type ShopItemPatch map[string]json.RawMessage

var shopItemMessages = fieldMessages{
	"Name.max":     "Name must be 200 characters or fewer.",
	"Subtitle.max": "Subtitle must be 200 characters or fewer.",
	"Badge.max":    "Badge must be 50 characters or fewer.",
}

// ShopItemService handles business logic related to shop items.
type ShopItemService struct {
	repo     repositories.ShopItemRepository
	validate *validator.Validate
}

// NewShopItemService creates a new ShopItemService.
func NewShopItemService(repo repositories.ShopItemRepository) *ShopItemService {
	return &ShopItemService{
		repo:     repo,
		validate: validator.New(),
	}
}

// ListShopItems retrieves all shop items, newest first.
func (s *ShopItemService) ListShopItems(ctx context.Context) ([]models.ShopItem, error) {
	return s.repo.List(ctx)
}

// GetShopItem retrieves a single shop item.
func (s *ShopItemService) GetShopItem(ctx context.Context, id uint) (*models.ShopItem, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return item, nil
}

// CreateShopItem validates and stores a new shop item.
func (s *ShopItemService) CreateShopItem(ctx context.Context, input ShopItemInput) (*models.ShopItem, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" || input.Price == nil || input.Images.IsEmpty() || strings.TrimSpace(input.Description) == "" {
		return nil, invalid("", "Missing required fields: name, price, images, description")
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, firstViolation(err, shopItemMessages)
	}
	if input.Price.IsNegative() {
		return nil, invalid("price", "Price must not be negative.")
	}

	item := &models.ShopItem{
		Name:        input.Name,
		Subtitle:    input.Subtitle,
		Price:       *input.Price,
		Badge:       input.Badge,
		Images:      input.Images,
		Sizes:       input.Sizes,
		Description: input.Description,
		Payment:     input.Payment,
		Shipping:    input.Shipping,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateShopItem applies a partial update. Only known fields are written.
func (s *ShopItemService) UpdateShopItem(ctx context.Context, id uint, patch ShopItemPatch) (*models.ShopItem, error) {
	fields, err := patch.columns()
	if err != nil {
		return nil, err
	}
	item, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return item, nil
}

// DeleteShopItem removes a shop item.
func (s *ShopItemService) DeleteShopItem(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return translateRepoError(err)
	}
	return nil
}

// columns validates the patch and converts it to column updates.
func (p ShopItemPatch) columns() (map[string]any, error) {
	fields := make(map[string]any)

	requiredText := func(key, label string, max int) error {
		raw, ok := p[key]
		if !ok {
			return nil
		}
		var v *string
		if err := json.Unmarshal(raw, &v); err != nil || v == nil || strings.TrimSpace(*v) == "" {
			return invalid(key, fmt.Sprintf("%s must be a non-empty string.", label))
		}
		if max > 0 && len([]rune(*v)) > max {
			return invalid(key, fmt.Sprintf("%s must be %d characters or fewer.", label, max))
		}
		fields[key] = strings.TrimSpace(*v)
		return nil
	}
	optionalText := func(key, label string, max int) error {
		raw, ok := p[key]
		if !ok {
			return nil
		}
		var v *string
		if err := json.Unmarshal(raw, &v); err != nil {
			return invalid(key, fmt.Sprintf("%s must be a string or null.", label))
		}
		if v != nil && max > 0 && len([]rune(*v)) > max {
			return invalid(key, fmt.Sprintf("%s must be %d characters or fewer.", label, max))
		}
		fields[key] = v
		return nil
	}

	if err := requiredText("name", "Name", 200); err != nil {
		return nil, err
	}
	if err := requiredText("description", "Description", 0); err != nil {
		return nil, err
	}
	for _, f := range []struct {
		key, label string
		max        int
	}{
		{"subtitle", "Subtitle", 200},
		{"badge", "Badge", 50},
		{"payment", "Payment", 0},
		{"shipping", "Shipping", 0},
	} {
		if err := optionalText(f.key, f.label, f.max); err != nil {
			return nil, err
		}
	}

	if raw, ok := p["price"]; ok {
		var price decimal.Decimal
		if err := json.Unmarshal(raw, &price); err != nil {
			return nil, invalid("price", "Price must be a number.")
		}
		if price.IsNegative() {
			return nil, invalid("price", "Price must not be negative.")
		}
		fields["price"] = price
	}
	if raw, ok := p["images"]; ok {
		var images models.Images
		if err := json.Unmarshal(raw, &images); err != nil || images.IsEmpty() {
			return nil, invalid("images", "Images must not be empty.")
		}
		fields["images"] = images
	}
	if raw, ok := p["sizes"]; ok {
		var sizes models.Sizes
		if err := json.Unmarshal(raw, &sizes); err != nil {
			return nil, invalid("sizes", "Sizes must be a list of labels or null.")
		}
		fields["sizes"] = sizes
	}
	return fields, nil
}

// translateRepoError maps repository sentinels onto service errors.
func translateRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrRecordNotFound):
		return &NotFoundError{Message: "Not found"}
	case errors.Is(err, repositories.ErrInUse):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	default:
		return err
	}
}

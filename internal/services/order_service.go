package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"strings"
	"time"

	"github.com/BookCnk/sit-football-club/internal/config"
	"github.com/BookCnk/sit-football-club/internal/models"
	"github.com/BookCnk/sit-football-club/internal/repositories"
	"github.com/BookCnk/sit-football-club/internal/storage"

	"github.com/go-playground/validator/v10"
)

// Paging limits for the admin order list.
const (
	DefaultPageSize = 10
	MaxPageSize     = 50
)

// OrderSubmission is the text part of a public order form.
type OrderSubmission struct {
	ShopItemID   int    `validate:"gt=0"`
	ContactPhone string `validate:"min=8"`
	ContactEmail string `validate:"required,contains=@"`
	SelectedSize string `validate:"max=20"`
	ScreenName   string `validate:"max=100"`
	ScreenNumber string `validate:"max=10"`
}

// SlipFile is the payment slip attached to an order. ContentType is the
// type declared by the client.
type SlipFile struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

var submissionMessages = fieldMessages{
	"ShopItemID":   "Invalid shop item.",
	"ContactPhone": "Contact phone is required.",
	"ContactEmail": "Valid contact email is required.",
	"SelectedSize": "Selected size must be 20 characters or fewer.",
	"ScreenName":   "Screen name must be 100 characters or fewer.",
	"ScreenNumber": "Screen number must be 10 characters or fewer.",
}

// OrderListParams are the raw paging and filter inputs of the admin list.
type OrderListParams struct {
	Page     int
	PageSize int
	Status   string
	Search   string
}

// Pagination describes the page returned by ListOrders.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// OrderPage is one page of the admin order list.
type OrderPage struct {
	Data       []models.ShopOrder `json:"data"`
	Pagination Pagination         `json:"pagination"`
}

// Summary is the dashboard header: order counts per status and catalogue size.
type Summary struct {
	Orders      map[models.OrderStatus]int64 `json:"orders"`
	TotalOrders int64                        `json:"totalOrders"`
	ShopItems   int64                        `json:"shopItems"`
}

// OrderService handles business logic related to shop orders.
type OrderService struct {
	orderRepo repositories.ShopOrderRepository
	itemRepo  repositories.ShopItemRepository
	store     storage.ObjectStore
	bucket    string
	publisher EventPublisher
	validate  *validator.Validate
	now       func() time.Time
}

// NewOrderService creates a new OrderService. publisher may be nil, in which
// case no order events are emitted.
func NewOrderService(orderRepo repositories.ShopOrderRepository, itemRepo repositories.ShopItemRepository, store storage.ObjectStore, bucket string, publisher EventPublisher) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		itemRepo:  itemRepo,
		store:     store,
		bucket:    bucket,
		publisher: publisher,
		validate:  validator.New(),
		now:       time.Now,
	}
}

// SubmitOrder validates a public order, uploads its slip and stores one
// pending order. Nothing is written when validation fails, and no order row
// exists when the upload fails.
func (s *OrderService) SubmitOrder(ctx context.Context, sub OrderSubmission, slip *SlipFile) (*models.ShopOrder, error) {
	sub.ContactPhone = strings.TrimSpace(sub.ContactPhone)
	sub.ContactEmail = strings.TrimSpace(sub.ContactEmail)
	sub.SelectedSize = strings.TrimSpace(sub.SelectedSize)
	sub.ScreenName = strings.TrimSpace(sub.ScreenName)
	sub.ScreenNumber = strings.TrimSpace(sub.ScreenNumber)

	if err := s.validate.Struct(sub); err != nil {
		return nil, firstViolation(err, submissionMessages)
	}
	if err := checkSlip(slip); err != nil {
		return nil, err
	}

	item, err := s.itemRepo.GetByID(ctx, uint(sub.ShopItemID))
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, &NotFoundError{Message: "Shop item not found."}
		}
		return nil, fmt.Errorf("failed to load shop item %d: %w", sub.ShopItemID, err)
	}
	if !item.AcceptsSize(sub.SelectedSize) {
		return nil, invalid("selectedSize", "Please select a valid size.")
	}

	if err := s.store.EnsurePublicBucket(ctx, s.bucket); err != nil {
		return nil, s.storageFailure(err, false)
	}
	key := storage.SlipKey(item.ID, s.now(), slip.Filename)
	if err := s.store.Upload(ctx, s.bucket, key, slip.ContentType, slip.Content, slip.Size); err != nil {
		return nil, s.storageFailure(err, true)
	}

	order := &models.ShopOrder{
		ShopItemID:   item.ID,
		ContactPhone: sub.ContactPhone,
		ContactEmail: sub.ContactEmail,
		SelectedSize: optional(sub.SelectedSize),
		ScreenName:   optional(sub.ScreenName),
		ScreenNumber: optional(sub.ScreenNumber),
		SlipImageURL: s.store.PublicURL(s.bucket, key),
		SlipFilePath: key,
		Status:       models.OrderStatusPending,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		// The slip would otherwise be orphaned.
		if rmErr := s.store.Remove(context.WithoutCancel(ctx), s.bucket, key); rmErr != nil {
			log.Printf("Failed to remove orphaned slip %s: %v", key, rmErr)
		}
		return nil, fmt.Errorf("failed to store order: %w", err)
	}

	log.Printf("Order %d submitted for shop item %d", order.ID, order.ShopItemID)
	s.publish(ctx, newOrderEvent(EventOrderCreated, order))
	return order, nil
}

func checkSlip(slip *SlipFile) error {
	switch {
	case slip == nil || slip.Content == nil || slip.Size <= 0:
		return invalid("slip", "Slip image is required.")
	case !strings.HasPrefix(strings.ToLower(slip.ContentType), "image/"):
		return invalid("slip", "Slip must be an image file.")
	case slip.Size > storage.MaxSlipSizeBytes:
		return invalid("slip", "Slip image must be 5MB or smaller.")
	}
	return nil
}

// storageFailure turns a storage error into an operator-facing error.
func (s *OrderService) storageFailure(err error, uploading bool) error {
	var cfgErr *config.Error
	if errors.As(err, &cfgErr) {
		return &OperatorError{Message: cfgErr.Message, Err: err}
	}
	if uploading {
		return &OperatorError{
			Message: fmt.Sprintf("Slip upload failed for bucket %q. Check SUPABASE_SERVICE_ROLE_KEY and Supabase storage access.", s.bucket),
			Err:     err,
		}
	}
	var stErr *storage.Error
	if errors.As(err, &stErr) {
		return &OperatorError{Message: stErr.Error(), Err: err}
	}
	return fmt.Errorf("failed to prepare slip bucket %q: %w", s.bucket, err)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ListOrders returns one page of orders, newest first. Page is clamped to at
// least 1 and the page size to [1, MaxPageSize].
func (s *OrderService) ListOrders(ctx context.Context, params OrderListParams) (*OrderPage, error) {
	page := max(params.Page, 1)
	pageSize := min(max(params.PageSize, 1), MaxPageSize)

	filter := repositories.OrderFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   strings.TrimSpace(params.Search),
	}
	if status := strings.TrimSpace(params.Status); status != "" && !strings.EqualFold(status, "all") {
		parsed, err := models.ParseOrderStatus(status)
		if err != nil {
			return nil, invalid("status", "Invalid status filter.")
		}
		filter.Status = parsed
	}

	orders, total, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	if orders == nil {
		orders = []models.ShopOrder{}
	}

	return &OrderPage{
		Data: orders,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: TotalPages(total, pageSize),
		},
	}, nil
}

// TotalPages is ceil(total/pageSize), never less than 1.
func TotalPages(total int64, pageSize int) int {
	if pageSize < 1 {
		return 1
	}
	return max(1, int(math.Ceil(float64(total)/float64(pageSize))))
}

// GetOrder retrieves a single order with its item summary.
func (s *OrderService) GetOrder(ctx context.Context, id uint) (*models.ShopOrder, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return order, nil
}

// UpdateOrderStatus moves an order to a new status. Unknown statuses are
// rejected before anything is written.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id uint, status string) (*models.ShopOrder, error) {
	parsed, err := models.ParseOrderStatus(status)
	if err != nil {
		return nil, invalid("status", "Invalid status value.")
	}

	order, err := s.orderRepo.UpdateStatus(ctx, id, parsed)
	if err != nil {
		return nil, translateRepoError(err)
	}

	log.Printf("Order %d marked %s", order.ID, order.Status)
	s.publish(ctx, newOrderEvent(EventOrderStatusChanged, order))
	return order, nil
}

// DeleteOrder removes an order. The slip object is kept as payment evidence.
func (s *OrderService) DeleteOrder(ctx context.Context, id uint) error {
	if err := s.orderRepo.Delete(ctx, id); err != nil {
		return translateRepoError(err)
	}
	s.publish(ctx, OrderEvent{Type: EventOrderDeleted, OrderID: id, At: s.now()})
	return nil
}

// Summary counts orders per status and the items in the catalogue.
func (s *OrderService) Summary(ctx context.Context) (*Summary, error) {
	counts, err := s.orderRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	items, err := s.itemRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count shop items: %w", err)
	}

	summary := &Summary{Orders: make(map[models.OrderStatus]int64, len(models.OrderStatuses)), ShopItems: items}
	for _, status := range models.OrderStatuses {
		summary.Orders[status] = 0
	}
	for _, c := range counts {
		summary.Orders[c.Status] = c.Count
		summary.TotalOrders += c.Count
	}
	return summary, nil
}

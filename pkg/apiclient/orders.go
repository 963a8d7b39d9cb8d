package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"

	"github.com/BookCnk/sit-football-club/internal/models"
	"github.com/BookCnk/sit-football-club/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderListParams selects a page of the admin order list. Zero values are
// left to the server defaults; "all" means no status filter.
type OrderListParams struct {
	Page     int
	PageSize int
	Status   string
	Search   string
}

// Query encodes the params as a query string, including the leading "?".
func (p OrderListParams) Query() string {
	values := url.Values{}
	if p.Page > 0 {
		values.Set("page", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		values.Set("pageSize", strconv.Itoa(p.PageSize))
	}
	if p.Status != "" && p.Status != "all" {
		values.Set("status", p.Status)
	}
	if search := strings.TrimSpace(p.Search); search != "" {
		values.Set("search", search)
	}
	if len(values) == 0 {
		return ""
	}
	return "?" + values.Encode()
}

// Slip is the payment slip attached to an order.
type Slip struct {
	Filename    string
	ContentType string
	Data        []byte
}

// OrderForm is a public order submission.
type OrderForm struct {
	ShopItemID   uint
	ContactPhone string
	ContactEmail string
	SelectedSize string
	ScreenName   string
	ScreenNumber string
	Slip         *Slip
}

// encode writes the form as multipart/form-data. The slip part keeps its
// own content type, which the server checks.
func (f OrderForm) encode() ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := [][2]string{
		{"shopItemId", strconv.FormatUint(uint64(f.ShopItemID), 10)},
		{"contactPhone", f.ContactPhone},
		{"contactEmail", f.ContactEmail},
		{"selectedSize", f.SelectedSize},
		{"screenName", f.ScreenName},
		{"screenNumber", f.ScreenNumber},
	}
	for _, kv := range fields {
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", err
		}
	}
	if f.Slip != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="slipFile"; filename=%q`, f.Slip.Filename))
		h.Set("Content-Type", f.Slip.ContentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.Slip.Data); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// SubmitOrder places a public order with its payment slip.
func (c *Client) SubmitOrder(ctx context.Context, form OrderForm) (*models.OrderReceipt, error) {
	body, contentType, err := form.encode()
	if err != nil {
		return nil, fmt.Errorf("failed to encode order form: %w", err)
	}
	var out struct {
		Message string              `json:"message"`
		Order   models.OrderReceipt `json:"order"`
	}
	if err := c.call(ctx, request{method: fiber.MethodPost, path: "/api/orders", body: body, contentType: contentType}, &out); err != nil {
		return nil, err
	}
	c.Invalidate(TagOrders)
	return &out.Order, nil
}

// ListOrders returns one page of orders. Admin only.
func (c *Client) ListOrders(ctx context.Context, params OrderListParams) (*services.OrderPage, error) {
	var page services.OrderPage
	if err := c.query(ctx, "/api/orders"+params.Query(), []string{TagOrders}, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetOrder returns one order. Admin only.
func (c *Client) GetOrder(ctx context.Context, id uint) (*models.ShopOrder, error) {
	var order models.ShopOrder
	if err := c.query(ctx, fmt.Sprintf("/api/orders/%d", id), []string{TagOrders}, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateOrderStatus moves an order to status. Admin only.
func (c *Client) UpdateOrderStatus(ctx context.Context, id uint, status models.OrderStatus) (*models.ShopOrder, error) {
	var order models.ShopOrder
	err := c.call(ctx, request{
		method:   fiber.MethodPatch,
		path:     fmt.Sprintf("/api/orders/%d", id),
		jsonBody: map[string]models.OrderStatus{"status": status},
	}, &order)
	if err != nil {
		return nil, err
	}
	c.Invalidate(TagOrders)
	return &order, nil
}

// DeleteOrder removes an order. Admin only.
func (c *Client) DeleteOrder(ctx context.Context, id uint) (*Message, error) {
	var out Message
	if err := c.call(ctx, request{method: fiber.MethodDelete, path: fmt.Sprintf("/api/orders/%d", id)}, &out); err != nil {
		return nil, err
	}
	c.Invalidate(TagOrders)
	return &out, nil
}

// Summary returns the dashboard counts. Admin only.
func (c *Client) Summary(ctx context.Context) (*services.Summary, error) {
	var out services.Summary
	if err := c.call(ctx, request{method: fiber.MethodGet, path: "/api/admin/summary"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

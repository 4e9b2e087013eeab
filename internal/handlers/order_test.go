package handlers_test

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/example/storedash/internal/models"
)

func orderPayload(orderID int, customerID string, products []map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"orderId":   orderID,
		"orderDate": "2024-03-15",
		"status":    models.OrderStatusPending,
		"customer":  customerID,
		"shippingAddress": map[string]interface{}{
			"street":     "12 Market St",
			"city":       "Cairo",
			"postalCode": 11511,
		},
		"paymentInfo": map[string]interface{}{
			"paymentMethod":     "card",
			"transactionId":     900111,
			"billingPostalCode": 11511,
		},
		"products": products,
	}
}

func seedOrder(t *testing.T, db *gorm.DB, orderID int, total float64, status string, date string) models.Order {
	t.Helper()

	orderDate, err := time.Parse("2006-01-02", date)
	require.NoError(t, err)

	customer := seedCustomer(t, db, 9000+orderID, fmt.Sprintf("Customer %d", orderID),
		fmt.Sprintf("c%d@example.com", orderID), fmt.Sprintf("0101%07d", orderID))

	order := models.Order{
		OrderID:    orderID,
		Status:     status,
		OrderDate:  orderDate,
		TotalPrice: total,
		CustomerID: customer.ID,
	}
	require.NoError(t, db.Create(&order).Error)
	return order
}

func TestAddOrderComputesTotal(t *testing.T) {
	app, db, cfg := newTestApp(t)
	_, token := seedUser(t, db, cfg, "merchant", models.RoleAdmin)

	customer := seedCustomer(t, db, 1001, "Ali Hassan", "ali@example.com", "01012345678")
	tote := seedProduct(t, db, "Leather Tote", 10)
	frame := seedProduct(t, db, "Frame", 20)

	payload := orderPayload(2001, customer.ID.String(), []map[string]interface{}{
		{"productId": tote.ID.String(), "quantity": 2},
		{"productId": frame.ID.String(), "quantity": 1},
	})
	// Caller-supplied totals are ignored.
	payload["totalPrice"] = 1.0

	status, body := doJSON(t, app, "POST", "/api/orders", payload, token)
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "Order created successfully", body["message"])

	order := body["newOrder"].(map[string]interface{})
	assert.EqualValues(t, 40, order["total_price"])
	assert.EqualValues(t, 2001, order["order_id"])
	assert.Equal(t, "Ali Hassan", order["customer"].(map[string]interface{})["customer_name"])
	assert.Equal(t, "paid", order["payment_info"].(map[string]interface{})["payment_status"])
	assert.Equal(t, 2, listLen(t, order, "products"))
}

func TestAddOrderUnknownCustomerCreatesNothing(t *testing.T) {
	app, db, cfg := newTestApp(t)
	_, token := seedUser(t, db, cfg, "merchant", models.RoleAdmin)

	tote := seedProduct(t, db, "Leather Tote", 10)
	payload := orderPayload(2001, "6a5e9c1e-0000-4000-8000-000000000000", []map[string]interface{}{
		{"productId": tote.ID.String(), "quantity": 1},
	})

	status, body := doJSON(t, app, "POST", "/api/orders", payload, token)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Customer not found", body["message"])

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestAddOrderValidation(t *testing.T) {
	app, db, cfg := newTestApp(t)
	_, token := seedUser(t, db, cfg, "merchant", models.RoleAdmin)

	customer := seedCustomer(t, db, 1001, "Ali Hassan", "ali@example.com", "01012345678")
	tote := seedProduct(t, db, "Leather Tote", 10)
	items := []map[string]interface{}{{"productId": tote.ID.String(), "quantity": 1}}

	status, body := doJSON(t, app, "POST", "/api/orders", map[string]interface{}{"orderId": 1}, token)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "All fields are required", body["message"])

	payload := orderPayload(2001, customer.ID.String(), items)
	payload["status"] = "teleported"
	status, body = doJSON(t, app, "POST", "/api/orders", payload, token)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Invalid status", body["message"])

	payload = orderPayload(2001, customer.ID.String(), items)
	payload["orderDate"] = "15/03/2024"
	status, body = doJSON(t, app, "POST", "/api/orders", payload, token)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Invalid date format. Use YYYY-MM-DD", body["message"])

	payload = orderPayload(2001, customer.ID.String(), []map[string]interface{}{
		{"productId": tote.ID.String(), "quantity": 0},
	})
	status, body = doJSON(t, app, "POST", "/api/orders", payload, token)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Quantity must be at least 1", body["message"])

	payload = orderPayload(2001, customer.ID.String(), []map[string]interface{}{
		{"productId": "6a5e9c1e-0000-4000-8000-000000000000", "quantity": 1},
	})
	status, body = doJSON(t, app, "POST", "/api/orders", payload, token)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Product with ID 6a5e9c1e-0000-4000-8000-000000000000 not found", body["message"])
}

func TestAddOrderDuplicateOrderID(t *testing.T) {
	app, db, cfg := newTestApp(t)
	_, token := seedUser(t, db, cfg, "merchant", models.RoleAdmin)

	customer := seedCustomer(t, db, 1001, "Ali Hassan", "ali@example.com", "01012345678")
	tote := seedProduct(t, db, "Leather Tote", 10)
	items := []map[string]interface{}{{"productId": tote.ID.String(), "quantity": 1}}

	status, _ := doJSON(t, app, "POST", "/api/orders", orderPayload(2001, customer.ID.String(), items), token)
	require.Equal(t, fiber.StatusCreated, status)

	status, body := doJSON(t, app, "POST", "/api/orders", orderPayload(2001, customer.ID.String(), items), token)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Order ID must be unique", body["message"])
}

func TestUpdateOrderStatus(t *testing.T) {
	app, db, cfg := newTestApp(t)
	_, token := seedUser(t, db, cfg, "merchant", models.RoleAdmin)

	seedOrder(t, db, 2001, 40, models.OrderStatusPending, "2024-03-15")

	status, body := doJSON(t, app, "PATCH", "/api/orders/2001", map[string]interface{}{}, token)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Status is required", body["message"])

	status, body = doJSON(t, app, "PATCH", "/api/orders/2001", map[string]interface{}{"status": "teleported"}, token)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Invalid status", body["message"])

	// Any status from the set is accepted regardless of the current one.
	status, body = doJSON(t, app, "PATCH", "/api/orders/2001", map[string]interface{}{"status": models.OrderStatusDelivered}, token)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, models.OrderStatusDelivered, body["status"])

	status, body = doJSON(t, app, "PATCH", "/api/orders/9999", map[string]interface{}{"status": models.OrderStatusShipped}, token)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "Order not found", body["message"])
}

func TestUpdateOrderWithProductsMergesQuantities(t *testing.T) {
	app, db, cfg := newTestApp(t)
	_, token := seedUser(t, db, cfg, "merchant", models.RoleAdmin)

	customer := seedCustomer(t, db, 1001, "Ali Hassan", "ali@example.com", "01012345678")
	tote := seedProduct(t, db, "Leather Tote", 10)
	frame := seedProduct(t, db, "Frame", 20)

	payload := orderPayload(2001, customer.ID.String(), []map[string]interface{}{
		{"productId": tote.ID.String(), "quantity": 1},
	})
	status, _ := doJSON(t, app, "POST", "/api/orders", payload, token)
	require.Equal(t, fiber.StatusCreated, status)

	status, body := doJSON(t, app, "PATCH", "/api/orders/with-products/2001", map[string]interface{}{
		"products": []map[string]interface{}{
			{"productId": tote.ID.String(), "quantity": 2},
			{"productId": frame.ID.String(), "quantity": 1},
		},
	}, token)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Order updated successfully", body["message"])

	order := body["updatedOrder"].(map[string]interface{})
	assert.Equal(t, models.OrderStatusProcessing, order["status"])
	// 3 totes at 10 plus 1 frame at 20.
	assert.EqualValues(t, 50, order["total_price"])

	quantities := map[string]float64{}
	for _, raw := range order["products"].([]interface{}) {
		item := raw.(map[string]interface{})
		quantities[item["product_id"].(string)] = item["quantity"].(float64)
	}
	assert.EqualValues(t, 3, quantities[tote.ID.String()])
	assert.EqualValues(t, 1, quantities[frame.ID.String()])
}

func TestDeleteOrderRemovesLineItems(t *testing.T) {
	app, db, cfg := newTestApp(t)
	_, token := seedUser(t, db, cfg, "merchant", models.RoleAdmin)

	customer := seedCustomer(t, db, 1001, "Ali Hassan", "ali@example.com", "01012345678")
	tote := seedProduct(t, db, "Leather Tote", 10)

	payload := orderPayload(2001, customer.ID.String(), []map[string]interface{}{
		{"productId": tote.ID.String(), "quantity": 1},
	})
	status, _ := doJSON(t, app, "POST", "/api/orders", payload, token)
	require.Equal(t, fiber.StatusCreated, status)

	status, body := doJSON(t, app, "DELETE", "/api/orders/2001", nil, token)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Order deleted successfully", body["message"])

	var orders, items int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	require.NoError(t, db.Model(&models.OrderProduct{}).Count(&items).Error)
	assert.EqualValues(t, 0, orders)
	assert.EqualValues(t, 0, items)
}

func TestGetOrderByID(t *testing.T) {
	app, db, _ := newTestApp(t)

	seedOrder(t, db, 2001, 40, models.OrderStatusPending, "2024-03-15")

	status, body := doJSON(t, app, "GET", "/api/orders/2001", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 2001, body["order_id"])
	assert.NotNil(t, body["customer"])

	status, body = doJSON(t, app, "GET", "/api/orders/not-a-number", nil, "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "Order not found", body["message"])
}

func TestListOrdersPriceRange(t *testing.T) {
	app, db, _ := newTestApp(t)

	seedOrder(t, db, 101, 30, models.OrderStatusPending, "2024-03-01")
	seedOrder(t, db, 102, 75, models.OrderStatusShipped, "2024-03-02")
	seedOrder(t, db, 103, 120, models.OrderStatusPending, "2024-03-03")

	status, body := doJSON(t, app, "GET", "/api/orders?priceMin=50&priceMax=100", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, 1, listLen(t, body, "orders"))

	order := body["orders"].([]interface{})[0].(map[string]interface{})
	assert.EqualValues(t, 75, order["total_price"])
	assert.EqualValues(t, 1, body["totalOrders"])
}

func TestListOrdersRejectsBadPrice(t *testing.T) {
	app, db, _ := newTestApp(t)

	seedOrder(t, db, 101, 30, models.OrderStatusPending, "2024-03-01")

	status, body := doJSON(t, app, "GET", "/api/orders?totalPrice=expensive", nil, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Invalid price format", body["message"])
}

func TestListOrdersFilters(t *testing.T) {
	app, db, _ := newTestApp(t)

	seedOrder(t, db, 101, 30, models.OrderStatusPending, "2024-03-01")
	seedOrder(t, db, 102, 75, models.OrderStatusShipped, "2024-03-02")

	status, body := doJSON(t, app, "GET", "/api/orders?status=shipped", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 1, listLen(t, body, "orders"))

	status, body = doJSON(t, app, "GET", "/api/orders?orderId=101", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 1, listLen(t, body, "orders"))

	// Filtering on the joined customer name.
	status, body = doJSON(t, app, "GET", "/api/orders?customerName=customer%20102", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 1, listLen(t, body, "orders"))
}

func TestListOrdersSearch(t *testing.T) {
	app, db, _ := newTestApp(t)

	seedOrder(t, db, 101, 30, models.OrderStatusPending, "2024-03-01")
	seedOrder(t, db, 102, 75, models.OrderStatusShipped, "2024-03-02")
	seedOrder(t, db, 103, 120, models.OrderStatusPending, "2024-03-03")

	// Text search hits the status column.
	status, body := doJSON(t, app, "GET", "/api/orders?search=shipped", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 1, listLen(t, body, "orders"))

	// Numeric search adds a floor on the total, so 75 also matches 120.
	status, body = doJSON(t, app, "GET", "/api/orders?search=75", nil, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 2, listLen(t, body, "orders"))
}

func TestListOrdersSorting(t *testing.T) {
	app, db, _ := newTestApp(t)

	seedOrder(t, db, 101, 120, models.OrderStatusPending, "2024-03-01")
	seedOrder(t, db, 102, 30, models.OrderStatusPending, "2024-03-02")
	seedOrder(t, db, 103, 75, models.OrderStatusPending, "2024-03-03")

	status, body := doJSON(t, app, "GET", "/api/orders?sortBy=totalPrice&order=asc", nil, "")
	require.Equal(t, fiber.StatusOK, status)

	var totals []float64
	for _, raw := range body["orders"].([]interface{}) {
		totals = append(totals, raw.(map[string]interface{})["total_price"].(float64))
	}
	assert.Equal(t, []float64{30, 75, 120}, totals)
}

func TestGetOrdersByDateRange(t *testing.T) {
	app, db, _ := newTestApp(t)

	seedOrder(t, db, 101, 30, models.OrderStatusPending, "2024-01-01")
	seedOrder(t, db, 102, 75, models.OrderStatusPending, "2024-01-05")
	seedOrder(t, db, 103, 120, models.OrderStatusPending, "2024-01-10")

	status, body := doJSON(t, app, "GET", "/api/orders/by-date", nil, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Start date and end date are required", body["message"])

	status, body = doJSON(t, app, "GET", "/api/orders/by-date?startDate=01/01/2024&endDate=2024-01-05", nil, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Invalid date format. Use YYYY-MM-DD", body["message"])

	// Both bounds are inclusive.
	status, raw := doRaw(t, app, "GET", "/api/orders/by-date?startDate=2024-01-01&endDate=2024-01-05", nil, "")
	require.Equal(t, fiber.StatusOK, status)

	var orders []map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &orders))
	assert.Len(t, orders, 2)
}

func TestAddOrderRequiresAuth(t *testing.T) {
	app, _, _ := newTestApp(t)

	status, body := doJSON(t, app, "POST", "/api/orders", map[string]interface{}{}, "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "No token, authorization denied", body["message"])
}

package service

import (
	"context"
	"testing"

	"go-flowershop-admin/internal/model"
	"go-flowershop-admin/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCustomer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	customer, err := f.customers.CreateCustomer(ctx, CreateCustomerRequest{
		FirstName: " Liza ",
		LastName:  "Soberano",
		Email:     "Liza@Example.COM",
		Phone:     "09181112222",
		City:      "Makati",
	})
	require.NoError(t, err)
	assert.Equal(t, "Liza", customer.FirstName)
	assert.Equal(t, "liza@example.com", customer.Email)
	assert.Equal(t, "Liza Soberano", customer.FullName())

	_, err = f.customers.CreateCustomer(ctx, CreateCustomerRequest{FirstName: "Other", Email: "LIZA@example.com"})
	requireCode(t, err, apperr.CodeConflict)

	_, err = f.customers.CreateCustomer(ctx, CreateCustomerRequest{FirstName: "Nope", Email: "not-an-email"})
	appErr := requireCode(t, err, apperr.CodeValidation)
	assert.Equal(t, "email", appErr.Field())

	got, err := f.customers.GetCustomer(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "Makati", got.City)

	_, err = f.customers.GetCustomer(ctx, 999)
	requireCode(t, err, apperr.CodeNotFound)
}

func TestListCustomersCountsOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	item := OrderItemRequest{ProductName: "Lily"}
	for i := 0; i < 2; i++ {
		_, err := f.orders.CreateOrder(ctx, orderRequest("ana@example.com", item), staff)
		require.NoError(t, err)
	}
	_, err := f.customers.CreateCustomer(ctx, CreateCustomerRequest{FirstName: "Ben", LastName: "Cruz", Email: "ben@example.com"})
	require.NoError(t, err)

	all, err := f.customers.ListCustomers(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)

	counts := map[string]int64{}
	for _, c := range all {
		counts[c.Email] = c.OrderCount
	}
	assert.Equal(t, map[string]int64{"ana@example.com": 2, "ben@example.com": 0}, counts)

	found, err := f.customers.ListCustomers(ctx, "CRUZ")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Ben", found[0].FirstName)
	assert.EqualValues(t, 2, f.count(t, &model.Customer{}))
}

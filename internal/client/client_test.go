package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/example/rpnd/internal/api"
	"github.com/example/rpnd/internal/calc"
	"github.com/example/rpnd/internal/logging"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	s, err := api.NewServer(api.Config{}, calc.NewRegistry(), logging.NewLogger(io.Discard, logging.LevelError))
	require.NoError(t, err)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	c, err := New(ts.URL+"/", time.Second)
	require.NoError(t, err)
	return c
}

func TestClient_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	id, err := c.Create(ctx)
	require.NoError(t, err)
	require.Equal(t, "stack_1", id)

	ids, err := c.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"stack_1"}, ids)

	_, err = c.Push(ctx, id, 12)
	require.NoError(t, err)
	stack, err := c.Push(ctx, id, 3)
	require.NoError(t, err)
	require.Equal(t, []float64{12, 3}, stack)

	stack, err = c.Operate(ctx, id, "/")
	require.NoError(t, err)
	require.Equal(t, []float64{4}, stack)

	v, stack, err := c.Pop(ctx, id)
	require.NoError(t, err)
	require.Equal(t, 4.0, v)
	require.Empty(t, stack)

	_, err = c.Push(ctx, id, 1)
	require.NoError(t, err)
	require.NoError(t, c.Clear(ctx, id))
	stack, err = c.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, []float64{}, stack)

	require.NoError(t, c.Delete(ctx, id))
	err = c.Delete(ctx, id)
	require.True(t, IsNotFound(err))
}

func TestClient_APIErrorDetail(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	id, err := c.Create(ctx)
	require.NoError(t, err)
	_, err = c.Push(ctx, id, 5)
	require.NoError(t, err)

	_, err = c.Operate(ctx, id, "+")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	require.Equal(t, "Not enough operands", apiErr.Detail)
	require.False(t, IsNotFound(err))
}

func TestClient_OperateEveryOperator(t *testing.T) {
	tests := []struct {
		op   string
		want float64
	}{
		{op: "+", want: 15},
		{op: "-", want: 9},
		{op: "*", want: 36},
		{op: "/", want: 4},
		{op: "div", want: 4},
	}
	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			ctx := context.Background()
			c := newTestClient(t)

			id, err := c.Create(ctx)
			require.NoError(t, err)
			_, err = c.Push(ctx, id, 12)
			require.NoError(t, err)
			_, err = c.Push(ctx, id, 3)
			require.NoError(t, err)

			stack, err := c.Operate(ctx, id, tt.op)
			require.NoError(t, err)
			require.Equal(t, []float64{tt.want}, stack)
		})
	}
}

func TestClient_OperateUnknownOperator(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	id, err := c.Create(ctx)
	require.NoError(t, err)
	_, err = c.Push(ctx, id, 5)
	require.NoError(t, err)
	_, err = c.Push(ctx, id, 3)
	require.NoError(t, err)

	_, err = c.Operate(ctx, id, "pow")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	require.Equal(t, "Unknown operator", apiErr.Detail)

	stack, err := c.Get(ctx, id)
	require.NoError(t, err)
	require.Empty(t, stack)
}

func TestOperatePath(t *testing.T) {
	require.Equal(t, "rpn/op/div/stack/stack_1", operatePath("stack_1", "/"))
	require.Equal(t, "rpn/op/add/stack/a%20b", operatePath("a b", "+"))
	require.Equal(t, "rpn/op/mul/stack/s", operatePath("s", "mul"))
}

func TestNew_RejectsBadURL(t *testing.T) {
	_, err := New("ftp://example.com", 0)
	require.Error(t, err)
	_, err = New("::", 0)
	require.Error(t, err)
}

package order

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeActivity struct {
	mu      sync.Mutex
	touched []string
}

func (f *fakeActivity) TouchActivity(ctx context.Context, deviceID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touched = append(f.touched, deviceID)
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeActivity) {
	t.Helper()
	activity := &fakeActivity{}
	return NewService(NewMemoryStore(), activity, zerolog.Nop()), activity
}

func testItems() []Item {
	return []Item{
		{ProductID: "pt_1", Name: "PT LEVE", Category: "pt", Quantity: 10, Unit: "un"},
		{ProductID: "gn_3", Name: "GUARD 23X23 GOL", Category: "gn", Quantity: 2, Unit: "un"},
	}
}

func TestStartCreatesPendingOrder(t *testing.T) {
	svc, activity := newTestService(t)
	ctx := context.Background()

	o, err := svc.Start(ctx, "OP-1001", "TAB-AB12-CD34-EF5678", "Operador-EF5678", "", testItems())
	require.NoError(t, err)

	assert.Equal(t, "OP-1001", o.OrderCode)
	assert.Equal(t, StatusPending, o.Status)
	assert.False(t, o.Completed())
	assert.NotNil(t, o.StartedAt)
	assert.Nil(t, o.CompletedAt)
	assert.Len(t, o.Items, 2)
	assert.Equal(t, []string{"TAB-AB12-CD34-EF5678"}, activity.touched)
}

func TestStartMintsOrderCodeWhenEmpty(t *testing.T) {
	svc, _ := newTestService(t)

	o, err := svc.Start(context.Background(), "  ", "", "", "", nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(o.OrderCode, "OP-"))
}

func TestStartDuplicateOrderCode(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Start(ctx, "OP-1001", "", "", "", nil)
	require.NoError(t, err)

	_, err = svc.Start(ctx, "OP-1001", "", "", "", nil)
	assert.ErrorIs(t, err, ErrOrderExists)
}

func TestCompleteOrder(t *testing.T) {
	svc, activity := newTestService(t)
	ctx := context.Background()

	_, err := svc.Start(ctx, "OP-2002", "TAB-AB12-CD34-EF5678", "", "", testItems())
	require.NoError(t, err)

	o, err := svc.Complete(ctx, "OP-2002", "TAB-AB12-CD34-EF5678")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, o.Status)
	assert.True(t, o.Completed())
	assert.NotNil(t, o.CompletedAt)
	assert.Len(t, activity.touched, 2)
}

func TestCompleteUnknownOrder(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Complete(context.Background(), "OP-9999", "")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestListFiltersByStatus(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Start(ctx, "OP-1", "", "", "", nil)
	require.NoError(t, err)
	_, err = svc.Start(ctx, "OP-2", "", "", "", nil)
	require.NoError(t, err)
	_, err = svc.Complete(ctx, "OP-1", "")
	require.NoError(t, err)

	pending, err := svc.List(ctx, StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "OP-2", pending[0].OrderCode)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRemoveOrder(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Start(ctx, "OP-3", "", "", "", nil)
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, "OP-3"))
	assert.ErrorIs(t, svc.Remove(ctx, "OP-3"), ErrOrderNotFound)
}

func TestNilActivityDoesNotPanic(t *testing.T) {
	svc := NewService(NewMemoryStore(), nil, zerolog.Nop())

	_, err := svc.Start(context.Background(), "OP-4", "TAB-AB12-CD34-EF5678", "", "", nil)
	require.NoError(t, err)
}

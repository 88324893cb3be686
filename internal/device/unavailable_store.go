package device

import "context"

// UnavailableStore is the Store used when no storage backend could be
// opened. Reads behave as "nothing exists", writes are no-ops, and
// administrative operations report the store as unavailable so the operator
// learns why nothing can be approved. With this store in place no device is
// ever authorized.
type UnavailableStore struct{}

// NewUnavailableStore creates a Store representing absent storage.
func NewUnavailableStore() *UnavailableStore {
	return &UnavailableStore{}
}

func (*UnavailableStore) Find(context.Context, string) (*Device, error) {
	return nil, ErrDeviceNotFound
}

func (*UnavailableStore) FindAny(context.Context, string) (*Device, error) {
	return nil, ErrDeviceNotFound
}

func (*UnavailableStore) List(context.Context) ([]*Device, error) {
	return nil, ErrStoreUnavailable
}

func (*UnavailableStore) Create(context.Context, *Device) (bool, error) {
	return false, nil
}

func (*UnavailableStore) SetStatus(context.Context, string, Status) error {
	return ErrStoreUnavailable
}

func (*UnavailableStore) Delete(context.Context, string) error {
	return ErrStoreUnavailable
}

func (*UnavailableStore) DeleteAll(context.Context) (int64, error) {
	return 0, ErrStoreUnavailable
}

func (*UnavailableStore) TouchActivity(context.Context, string) error {
	return nil
}

var _ Store = (*UnavailableStore)(nil)

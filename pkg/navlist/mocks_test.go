package navlist

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/cros-webui/webui-go/pkg/volume"
)

// MockResolver implements VolumeResolver for testing. Return values may be
// functions with the method's signature to compute results per call.
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) GetVolumeInfo(path string) *volume.Info {
	args := m.Called(path)
	if fn, ok := args.Get(0).(func(string) *volume.Info); ok {
		return fn(path)
	}
	info, _ := args.Get(0).(*volume.Info)
	return info
}

func (m *MockResolver) ResolvePath(ctx context.Context, path string) (*volume.Entry, error) {
	args := m.Called(ctx, path)
	if fn, ok := args.Get(0).(func(context.Context, string) (*volume.Entry, error)); ok {
		return fn(ctx, path)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*volume.Entry), args.Error(1)
}

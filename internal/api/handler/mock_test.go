package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/edvin/opsdash/internal/errdefs"
	"github.com/edvin/opsdash/internal/model"
)

// fakeInventory serves a fixed environment set.
type fakeInventory struct {
	envs map[string]*model.Environment
}

func newFakeInventory(envs ...*model.Environment) *fakeInventory {
	inv := &fakeInventory{envs: map[string]*model.Environment{}}
	for _, env := range envs {
		inv.envs[env.Name] = env
	}
	return inv
}

func (f *fakeInventory) Environments() ([]model.Environment, error) {
	out := make([]model.Environment, 0, len(f.envs))
	for _, env := range f.envs {
		out = append(out, *env)
	}
	return out, nil
}

func (f *fakeInventory) Environment(name string) (*model.Environment, error) {
	env, ok := f.envs[name]
	if !ok {
		return nil, &errdefs.NotFoundError{Kind: "environment", ID: name}
	}
	return env, nil
}

func (f *fakeInventory) Credentials(name string) (*model.Environment, error) {
	return f.Environment(name)
}

type mockController struct{ mock.Mock }

func (m *mockController) Status(ctx context.Context, containerName string) (*model.ContainerStatus, error) {
	args := m.Called(ctx, containerName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ContainerStatus), args.Error(1)
}

func (m *mockController) Start(ctx context.Context, containerName string) error {
	return m.Called(ctx, containerName).Error(0)
}

func (m *mockController) Stop(ctx context.Context, containerName string) error {
	return m.Called(ctx, containerName).Error(0)
}

func (m *mockController) Restart(ctx context.Context, containerName string) error {
	return m.Called(ctx, containerName).Error(0)
}

func (m *mockController) TailLogs(ctx context.Context, containerName string, lines int) (string, error) {
	args := m.Called(ctx, containerName, lines)
	return args.String(0), args.Error(1)
}

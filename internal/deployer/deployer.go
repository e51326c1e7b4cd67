package deployer

import (
	"context"

	"github.com/edvin/opsdash/internal/model"
)

// Controller is the narrow container-control surface the orchestrators
// consume. Operations are synchronous and idempotent; failures map to
// errdefs.ContainerError at the call site.
type Controller interface {
	Status(ctx context.Context, containerName string) (*model.ContainerStatus, error)
	Start(ctx context.Context, containerName string) error
	Stop(ctx context.Context, containerName string) error
	Restart(ctx context.Context, containerName string) error
	TailLogs(ctx context.Context, containerName string, lines int) (string, error)
}

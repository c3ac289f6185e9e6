package resources

import (
	"context"

	"vet-console/internal/domain/entity"
)

// Client es el acceso al servicio REST remoto, uno por kind.
// Create/Update mandan el draft completo; el caller refresca con List después.
type Client interface {
	List(ctx context.Context, kind entity.Kind) ([]entity.Record, error)
	Search(ctx context.Context, kind entity.Kind, variant string, params map[string]string) ([]entity.Record, error)
	Create(ctx context.Context, kind entity.Kind, draft entity.Draft) (entity.Record, error)
	Update(ctx context.Context, kind entity.Kind, id string, draft entity.Draft) (entity.Record, error)
	Delete(ctx context.Context, kind entity.Kind, id string) error
}

package vectorindex

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/talentrank/internal/db"
	"github.com/kailas-cloud/talentrank/internal/domain"
	"github.com/kailas-cloud/talentrank/internal/domain/candidate"
)

// EnsureIndexes creates any missing namespace index for both entity kinds and
// reports how many were created.
func (c *Client) EnsureIndexes(ctx context.Context) (int, error) {
	if c.cfg.Dimensions <= 0 {
		return 0, errors.New("ensure indexes: dimensions must be positive")
	}

	created := 0
	for _, kind := range []candidate.Kind{candidate.KindCandidate, candidate.KindCompany} {
		for _, ns := range domain.Namespaces {
			name := IndexName(kind, ns)
			exists, err := c.store.IndexExists(ctx, name)
			if err != nil {
				return created, fmt.Errorf("probe %s: %w", name, err)
			}
			if exists {
				continue
			}

			def := db.NewVectorIndex(name, KeyPrefix(kind, ns), c.cfg.Dimensions, c.cfg.HNSWM, c.cfg.EFConstruction)
			err = c.store.CreateIndex(ctx, def)
			if err != nil && !errors.Is(err, db.ErrIndexExists) {
				return created, fmt.Errorf("create %s: %w", name, err)
			}
			if err == nil {
				created++
				c.logger.Info("vector index created", zap.String("index", name), zap.Int("dims", c.cfg.Dimensions))
			}
		}
	}
	return created, nil
}

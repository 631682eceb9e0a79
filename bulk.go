package bizdesk

import (
	"context"
	"fmt"
)

// AddMany adds a batch of records with a single persist. Every record gets a
// fresh id and the same creation time, and BeforeCreate runs per record. If any
// record fails, nothing is written.
//
// On success recs is updated in place with ids and timestamps, and the ids are
// returned in batch order. Checks run per record.
func (c *Collection[T]) AddMany(ctx context.Context, recs []T, checks ...Check[T]) ([]string, error) {
	if len(recs) == 0 {
		return nil, nil
	}

	var ids []string
	err := c.db.runMiddleware(ctx, &OpInfo{
		Operation: OpAddMany, Collection: c.schema.Collection,
		ModelName: c.schema.ModelName, Model: recs,
	}, func(ctx context.Context) error {
		c.mu.Lock()
		defer c.mu.Unlock()
		if err := c.load(ctx); err != nil {
			return err
		}

		now := c.db.Now()
		taken := make(map[string]bool, len(recs))
		batch := make([]T, len(recs))
		copy(batch, recs)

		for i := range batch {
			if err := c.prepare(ctx, &batch[i], now, taken, checks); err != nil {
				return fmt.Errorf("bizdesk: AddMany %s item %d: %w", c.schema.Collection, i, err)
			}
			taken[getModelID(&batch[i])] = true
		}

		next := make([]T, 0, len(c.records)+len(batch))
		next = append(next, c.records...)
		next = append(next, batch...)
		if err := c.commit(ctx, string(OpAddMany), next); err != nil {
			return err
		}

		ids = make([]string, len(batch))
		for i := range batch {
			ids[i] = getModelID(&batch[i])
		}
		copy(recs, batch)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

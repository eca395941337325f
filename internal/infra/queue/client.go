package queue

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"

	adapterqueue "github.com/scenariowizard/worker/internal/adapter/queue/scenario"
)

// Deduplication window for identical generation requests. Long enough to
// absorb duplicate submissions, short enough to allow deliberate re-runs.
const deduplicationWindow = 15 * time.Minute

// Client is insert-only (no worker).
type Client struct {
	client *river.Client[pgx.Tx]
}

func NewClient(ctx context.Context, pool *pgxpool.Pool) (*Client, error) {
	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{})
	if err != nil {
		return nil, err
	}

	return &Client{
		client: client,
	}, nil
}

func (c *Client) Close() error {
	// river.Client doesn't need explicit close for insert-only mode
	return nil
}

// EnqueueGeneration inserts a scenario generation job. Duplicate submissions
// with the same targets inside the deduplication window are coalesced.
func (c *Client) EnqueueGeneration(ctx context.Context, documentID string, featureIDs []string, testTypes []string, provider string) error {
	_, err := c.client.Insert(ctx, adapterqueue.Args{
		DocumentID: documentID,
		FeatureIDs: featureIDs,
		Provider:   provider,
		TestTypes:  testTypes,
	}, &river.InsertOpts{
		UniqueOpts: river.UniqueOpts{
			ByArgs:   true,
			ByPeriod: deduplicationWindow,
		},
	})
	return err
}

package testutil

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/spanner"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/pricing-service/internal/app/price/domain"
	"github.com/light-bringer/pricing-service/internal/models/m_outbox"
	"github.com/light-bringer/pricing-service/internal/models/m_product"
)

// CreateTestProduct writes a product row with the given status and returns its id.
func CreateTestProduct(t *testing.T, client *spanner.Client, name string, status domain.ProductStatus) string {
	t.Helper()

	productID := uuid.New().String()
	mutation := m_product.NewModel().UpsertMut(&m_product.Data{
		ProductID: productID,
		Name:      name,
		Status:    string(status),
	})
	_, err := client.Apply(context.Background(), []*spanner.Mutation{mutation})
	require.NoError(t, err, "failed to create test product")

	return productID
}

// CreateActiveTestProduct writes an active product and returns its id.
func CreateActiveTestProduct(t *testing.T, client *spanner.Client, name string) string {
	t.Helper()
	return CreateTestProduct(t, client, name, domain.ProductStatusActive)
}

// AssertOutboxEvent verifies an outbox event exists with the given event type.
func AssertOutboxEvent(t *testing.T, client *spanner.Client, eventType string) {
	t.Helper()

	stmt := spanner.Statement{
		SQL:    "SELECT event_id FROM outbox_events WHERE event_type = @eventType",
		Params: map[string]interface{}{"eventType": eventType},
	}
	iter := client.Single().Query(context.Background(), stmt)
	defer iter.Stop()

	row, err := iter.Next()
	require.NoError(t, err, "outbox event not found for type: %s", eventType)
	require.NotNil(t, row, "outbox event not found for type: %s", eventType)
}

// CreateTestOutboxEvent writes an outbox row in the given status and returns
// its id. A zero processedAt leaves processed_at NULL.
func CreateTestOutboxEvent(t *testing.T, client *spanner.Client, eventType, aggregateID, status string, processedAt time.Time) string {
	t.Helper()

	eventID := uuid.New().String()
	mutation := m_outbox.NewModel().InsertMut(&m_outbox.Data{
		EventID:     eventID,
		EventType:   eventType,
		AggregateID: aggregateID,
		Payload:     spanner.NullJSON{Value: map[string]string{"product_id": aggregateID}, Valid: true},
		Status:      status,
		ProcessedAt: spanner.NullTime{Time: processedAt, Valid: !processedAt.IsZero()},
	})
	_, err := client.Apply(context.Background(), []*spanner.Mutation{mutation})
	require.NoError(t, err, "failed to create test outbox event")

	return eventID
}

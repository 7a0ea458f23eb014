package cloud

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/ANIKETSHETTY47/price-plan-comparator/internal/domain"
)

// meterMarker is the sort key of the item that registers a meter, so a meter
// stored with no readings still reads back as known.
const meterMarker = "#meter"

const batchSize = 25 // DynamoDB batch write limit

type dynamoAPI interface {
	dynamodb.QueryAPIClient
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// DynamoDBStore keeps meter readings in a table keyed by
// smartMeterId (partition) and readingKey (sort).
type DynamoDBStore struct {
	svc   dynamoAPI
	table string
}

// NewDynamoDBStore creates a reading store backed by DynamoDB.
func NewDynamoDBStore(ctx context.Context, region, table string) (*DynamoDBStore, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return &DynamoDBStore{svc: dynamodb.NewFromConfig(cfg), table: table}, nil
}

// readingItem is the table layout of a single reading.
type readingItem struct {
	SmartMeterID string `dynamodbav:"smartMeterId"`
	ReadingKey   string `dynamodbav:"readingKey"`
	Timestamp    int64  `dynamodbav:"timestamp,omitempty"`
	Reading      string `dynamodbav:"reading,omitempty"`
}

// Readings queries every item of the meter's partition.
func (s *DynamoDBStore) Readings(ctx context.Context, smartMeterID string) ([]domain.ElectricityReading, bool, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("smartMeterId = :mid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":mid": &types.AttributeValueMemberS{Value: smartMeterID},
		},
	}

	known := false
	readings := []domain.ElectricityReading{}
	paginator := dynamodb.NewQueryPaginator(s.svc, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, false, fmt.Errorf("failed to query DynamoDB: %w", err)
		}

		var items []readingItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, false, fmt.Errorf("failed to unmarshal readings: %w", err)
		}
		for _, it := range items {
			known = true
			if it.ReadingKey == meterMarker {
				continue
			}
			value, err := domain.NewDecimal(it.Reading)
			if err != nil {
				return nil, false, fmt.Errorf("reading %s: %w", it.ReadingKey, err)
			}
			readings = append(readings, domain.ElectricityReading{
				Time:    time.Unix(0, it.Timestamp).UTC(),
				Reading: value,
			})
		}
	}
	if !known {
		return nil, false, nil
	}
	return readings, true, nil
}

// Append registers the meter and batch-writes its readings.
func (s *DynamoDBStore) Append(ctx context.Context, smartMeterID string, readings []domain.ElectricityReading) error {
	items := make([]readingItem, 0, len(readings)+1)
	items = append(items, readingItem{SmartMeterID: smartMeterID, ReadingKey: meterMarker})
	for _, r := range readings {
		items = append(items, readingItem{
			SmartMeterID: smartMeterID,
			ReadingKey:   fmt.Sprintf("%020d#%s", r.Time.UnixNano(), uuid.NewString()),
			Timestamp:    r.Time.UnixNano(),
			Reading:      r.Reading.String(),
		})
	}

	for i := 0; i < len(items); i += batchSize {
		end := i + batchSize
		if end > len(items) {
			end = len(items)
		}

		writeRequests := make([]types.WriteRequest, 0, end-i)
		for j, it := range items[i:end] {
			item, err := attributevalue.MarshalMap(it)
			if err != nil {
				return fmt.Errorf("failed to marshal reading %d: %w", i+j, err)
			}
			writeRequests = append(writeRequests, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: item},
			})
		}

		if err := s.writeBatch(ctx, writeRequests); err != nil {
			return err
		}
	}
	return nil
}

// writeBatch resubmits unprocessed items a few times before giving up.
func (s *DynamoDBStore) writeBatch(ctx context.Context, requests []types.WriteRequest) error {
	pending := map[string][]types.WriteRequest{s.table: requests}
	for attempt := 0; attempt < 3 && len(pending[s.table]) > 0; attempt++ {
		out, err := s.svc.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
		if err != nil {
			return fmt.Errorf("failed to batch write items: %w", err)
		}
		pending = out.UnprocessedItems
		if pending == nil {
			return nil
		}
	}
	if n := len(pending[s.table]); n > 0 {
		return fmt.Errorf("failed to batch write items: %d left unprocessed", n)
	}
	return nil
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoStore implements Store on a DynamoDB table with partition key
// "k". Values live in the binary attribute "v"; expiring keys carry an
// epoch-seconds "ttl" attribute for DynamoDB's expiry reaper plus an
// "expires_at" copy checked on read, since reaping can lag well behind
// the deadline.
type DynamoStore struct {
	client    *dynamodb.Client
	tableName string
}

// NewDynamoStore builds a DynamoDB-backed store from the default AWS
// credential chain.
func NewDynamoStore(ctx context.Context, tableName, region string) (*DynamoStore, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("dynamodb: load aws config: %w", err)
	}

	return &DynamoStore{
		client:    dynamodb.NewFromConfig(cfg),
		tableName: tableName,
	}, nil
}

func (d *DynamoStore) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(d.tableName),
		Key:            d.itemKey(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("dynamodb: get item: %w", err)
	}
	if result.Item == nil {
		return nil, ErrKeyNotFound
	}

	if expired(result.Item) {
		_ = d.Delete(ctx, key)
		return nil, ErrKeyNotFound
	}

	value, ok := result.Item["v"].(*types.AttributeValueMemberB)
	if !ok {
		return nil, fmt.Errorf("dynamodb: item %q has no binary value", key)
	}
	return value.Value, nil
}

func (d *DynamoStore) Set(ctx context.Context, key string, value []byte) error {
	return d.put(ctx, key, value, nil)
}

func (d *DynamoStore) SetWithExpiry(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	deadline := time.Now().Add(ttl)
	return d.put(ctx, key, value, &deadline)
}

func (d *DynamoStore) put(ctx context.Context, key string, value []byte, deadline *time.Time) error {
	item := map[string]types.AttributeValue{
		"k": &types.AttributeValueMemberS{Value: key},
		"v": &types.AttributeValueMemberB{Value: value},
	}
	if deadline != nil {
		epoch := strconv.FormatInt(deadline.Unix(), 10)
		item["expires_at"] = &types.AttributeValueMemberN{Value: epoch}
		item["ttl"] = &types.AttributeValueMemberN{Value: epoch}
	}

	_, err := d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("dynamodb: put item: %w", err)
	}
	return nil
}

func (d *DynamoStore) CompareAndSet(ctx context.Context, key string, expected, replacement []byte) (bool, error) {
	_, err := d.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(d.tableName),
		Key:                 d.itemKey(key),
		UpdateExpression:    aws.String("SET #v = :new"),
		ConditionExpression: aws.String("#v = :old"),
		ExpressionAttributeNames: map[string]string{
			"#v": "v",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":new": &types.AttributeValueMemberB{Value: replacement},
			":old": &types.AttributeValueMemberB{Value: expected},
		},
	})
	if err != nil {
		var conflict *types.ConditionalCheckFailedException
		if errors.As(err, &conflict) {
			return false, nil
		}
		return false, fmt.Errorf("dynamodb: conditional update: %w", err)
	}
	return true, nil
}

func (d *DynamoStore) Delete(ctx context.Context, key string) error {
	_, err := d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(d.tableName),
		Key:       d.itemKey(key),
	})
	if err != nil {
		return fmt.Errorf("dynamodb: delete item: %w", err)
	}
	return nil
}

func (d *DynamoStore) Ping(ctx context.Context) error {
	_, err := d.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(d.tableName),
	})
	return err
}

// Close is a no-op; the client rides on a shared HTTP transport.
func (d *DynamoStore) Close() error {
	return nil
}

func (d *DynamoStore) itemKey(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"k": &types.AttributeValueMemberS{Value: key},
	}
}

func expired(item map[string]types.AttributeValue) bool {
	attr, ok := item["expires_at"].(*types.AttributeValueMemberN)
	if !ok {
		return false
	}
	epoch, err := strconv.ParseInt(attr.Value, 10, 64)
	if err != nil {
		return false
	}
	return !time.Unix(epoch, 0).After(time.Now())
}

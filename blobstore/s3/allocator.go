package s3

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DDBClient is the interface for DynamoDB operations.
type DDBClient interface {
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// ErrInvalidCounter is returned when the counter item has an unexpected shape.
var ErrInvalidCounter = errors.New("invalid position counter in DynamoDB")

const counterAttr = "next_position"

// DDBAllocator hands out record positions from per-bucket atomic counters
// in DynamoDB. S3 has no atomic increment, so several processes sharing one
// S3 prefix use this to avoid claiming the same position.
//
// Table schema:
//   - Partition key: namespace (string) - the database prefix
//   - Sort key: bucket (number) - the record bucket id
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name recgo-positions \
//	  --attribute-definitions AttributeName=namespace,AttributeType=S AttributeName=bucket,AttributeType=N \
//	  --key-schema AttributeName=namespace,KeyType=HASH AttributeName=bucket,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type DDBAllocator struct {
	client    DDBClient
	tableName string
	namespace string
}

// NewDDBAllocator creates a position allocator backed by the given table.
func NewDDBAllocator(client DDBClient, tableName, namespace string) *DDBAllocator {
	return &DDBAllocator{
		client:    client,
		tableName: tableName,
		namespace: namespace,
	}
}

func (a *DDBAllocator) key(bucket int32) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"namespace": &types.AttributeValueMemberS{Value: a.namespace},
		"bucket":    &types.AttributeValueMemberN{Value: strconv.FormatInt(int64(bucket), 10)},
	}
}

// Next atomically reserves the next position in bucket.
func (a *DDBAllocator) Next(ctx context.Context, bucket int32) (int64, error) {
	resp, err := a.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(a.tableName),
		Key:              a.key(bucket),
		UpdateExpression: aws.String("ADD " + counterAttr + " :one"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to allocate position in bucket %d: %w", bucket, err)
	}
	next, err := parseCounter(resp.Attributes)
	if err != nil {
		return 0, err
	}
	return next - 1, nil
}

// Peek returns the position the next call to Next would hand out.
func (a *DDBAllocator) Peek(ctx context.Context, bucket int32) (int64, error) {
	resp, err := a.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(a.tableName),
		Key:            a.key(bucket),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to read position counter for bucket %d: %w", bucket, err)
	}
	if len(resp.Item) == 0 {
		return 0, nil
	}
	return parseCounter(resp.Item)
}

func parseCounter(item map[string]types.AttributeValue) (int64, error) {
	attr, ok := item[counterAttr].(*types.AttributeValueMemberN)
	if !ok {
		return 0, ErrInvalidCounter
	}
	n, err := strconv.ParseInt(attr.Value, 10, 64)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCounter, attr.Value)
	}
	return n, nil
}

// Package dynamodb stores the mind map as a single DynamoDB item.
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"pgy3-backend/infrastructure/persistence"
)

const (
	DefaultKey  = "default"
	documentSK  = "DOCUMENT"
	partitionPK = "MINDMAP#"
)

// API is the subset of the DynamoDB client the medium uses.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

type item struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	Body      string `dynamodbav:"Body"`
	UpdatedAt string `dynamodbav:"UpdatedAt"`
}

type Medium struct {
	client    API
	tableName string
	key       string
}

func New(client API, tableName, key string) *Medium {
	if key == "" {
		key = DefaultKey
	}
	return &Medium{client: client, tableName: tableName, key: key}
}

func (m *Medium) Name() string { return "dynamodb" }

func (m *Medium) itemKey() map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: partitionPK + m.key},
		"SK": &types.AttributeValueMemberS{Value: documentSK},
	}
}

func (m *Medium) Read(ctx context.Context) ([]byte, error) {
	proj := expression.NamesList(expression.Name("Body"))
	expr, err := expression.NewBuilder().WithProjection(proj).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	out, err := m.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:                aws.String(m.tableName),
		Key:                      m.itemKey(),
		ConsistentRead:           aws.Bool(true),
		ProjectionExpression:     expr.Projection(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		return nil, classify("get item", err)
	}
	if len(out.Item) == 0 {
		return nil, persistence.ErrNoDocument
	}

	var it item
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	return []byte(it.Body), nil
}

func (m *Medium) Write(ctx context.Context, data []byte) error {
	av, err := m.marshal(data)
	if err != nil {
		return err
	}
	_, err = m.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(m.tableName),
		Item:      av,
	})
	if err != nil {
		return classify("put item", err)
	}
	return nil
}

func (m *Medium) Create(ctx context.Context, data []byte) (bool, error) {
	av, err := m.marshal(data)
	if err != nil {
		return false, err
	}
	expr, err := expression.NewBuilder().
		WithCondition(expression.Name("PK").AttributeNotExists()).
		Build()
	if err != nil {
		return false, fmt.Errorf("failed to build expression: %w", err)
	}

	_, err = m.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(m.tableName),
		Item:                     av,
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return false, nil
		}
		return false, classify("conditional put item", err)
	}
	return true, nil
}

func (m *Medium) marshal(data []byte) (map[string]types.AttributeValue, error) {
	av, err := attributevalue.MarshalMap(item{
		PK:        partitionPK + m.key,
		SK:        documentSK,
		Body:      string(data),
		UpdatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal item: %w", err)
	}
	return av, nil
}

// classify keeps the AWS error code visible in the message.
func classify(op string, err error) error {
	var ae smithy.APIError
	if errors.As(err, &ae) {
		return fmt.Errorf("%s: %s: %w", op, ae.ErrorCode(), err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

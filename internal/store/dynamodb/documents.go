package dynamodb

import (
	"context"
	"fmt"

	"github.com/snikjou/usagemig/internal/constants"
	apperrors "github.com/snikjou/usagemig/internal/errors"
	"github.com/snikjou/usagemig/internal/store"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// QueryPage returns up to limit documents matching q in id order, skipping
// the first offset matches. The type index sorts on id, so a restarted
// pagination pass observes the same ordering as the aborted one.
func (c *Container) QueryPage(ctx context.Context, q store.Query, offset, limit int) ([]store.Document, error) {
	if limit <= 0 {
		return nil, nil
	}

	expr, err := buildQueryExpression(q)
	if err != nil {
		return nil, apperrors.ErrDatabaseError("failed to build query expression", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(c.table),
		IndexName:                 aws.String(c.index),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(int32(limit)), //nolint:gosec // limit is a small positive page size
	}

	c.logger.Debug("calling external service",
		"operation", "DynamoDB.Query",
		"table", c.table,
		"index", c.index,
		"offset", offset,
		"limit", limit,
	)

	skip := offset
	page := make([]store.Document, 0, limit)

	paginator := dynamodb.NewQueryPaginator(c.client, input)
	for paginator.HasMorePages() && len(page) < limit {
		out, pageErr := paginator.NextPage(ctx)
		if pageErr != nil {
			return nil, c.mapError("query documents", pageErr)
		}

		for _, item := range out.Items {
			if skip > 0 {
				skip--
				continue
			}

			doc, convErr := fromItem(item)
			if convErr != nil {
				return nil, apperrors.ErrDatabaseError("failed to unmarshal document", convErr)
			}

			page = append(page, doc)
			if len(page) == limit {
				break
			}
		}
	}

	return page, nil
}

// ReadByID fetches a single document by its id.
func (c *Container) ReadByID(ctx context.Context, id string) (store.Document, error) {
	c.logger.Debug("calling external service",
		"operation", "DynamoDB.GetItem",
		"table", c.table,
		"id", id,
	)

	out, err := c.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.table),
		Key: map[string]types.AttributeValue{
			constants.FieldID: &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, c.mapError("read document", err)
	}

	if out.Item == nil {
		return nil, apperrors.ErrNotFound(fmt.Sprintf("document not found: %s", id), nil)
	}

	return fromItem(out.Item)
}

// Upsert overwrites the document keyed by its id. PutItem replaces the
// whole item, which is exactly the last-write-wins semantics the migration
// relies on for safe reruns.
func (c *Container) Upsert(ctx context.Context, doc store.Document) (store.Document, error) {
	item, err := toItem(doc)
	if err != nil {
		return nil, apperrors.ErrDatabaseError("failed to marshal document", err)
	}

	c.logger.Debug("calling external service",
		"operation", "DynamoDB.PutItem",
		"table", c.table,
		"id", doc.ID(),
	)

	if _, err := c.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.table),
		Item:      item,
	}); err != nil {
		return nil, c.mapError("upsert document", err)
	}

	return doc, nil
}

// buildQueryExpression translates a store.Query into a key condition on the
// type index plus an optional filter over the non-key predicates.
func buildQueryExpression(q store.Query) (expression.Expression, error) {
	builder := expression.NewBuilder().
		WithKeyCondition(expression.Key(constants.FieldType).Equal(expression.Value(q.DocType)))

	var filters []expression.ConditionBuilder

	if q.Role != "" {
		filters = append(filters, expression.Name(constants.FieldRole).Equal(expression.Value(q.Role)))
	}
	if q.UsageDefined != nil {
		if *q.UsageDefined {
			filters = append(filters, expression.Name(constants.FieldUsage).AttributeExists())
		} else {
			filters = append(filters, expression.Name(constants.FieldUsage).AttributeNotExists())
		}
	}
	if q.UpdatedBy != "" {
		filters = append(filters, expression.Name(constants.FieldUpdatedBy).Equal(expression.Value(q.UpdatedBy)))
	}

	if len(filters) > 0 {
		combined := filters[0]
		for _, f := range filters[1:] {
			combined = combined.And(f)
		}
		builder = builder.WithFilter(combined)
	}

	return builder.Build()
}

// toItem converts an open document into DynamoDB attribute values.
func toItem(doc store.Document) (map[string]types.AttributeValue, error) {
	return attributevalue.MarshalMap(map[string]any(doc))
}

// fromItem converts DynamoDB attribute values back into an open document.
// Numbers come back as float64, matching the JSON conventions of
// store.Document.
func fromItem(item map[string]types.AttributeValue) (store.Document, error) {
	var m map[string]any
	if err := attributevalue.UnmarshalMap(item, &m); err != nil {
		return nil, err
	}
	return store.Document(m), nil
}

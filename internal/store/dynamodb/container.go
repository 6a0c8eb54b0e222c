// Package dynamodb implements the store.Container contract on DynamoDB.
// Documents live in a single table keyed by id, with a global secondary
// index partitioned on type and sorted by id so discovery queries have a
// deterministic complete ordering.
package dynamodb

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"

	apperrors "github.com/snikjou/usagemig/internal/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

// Options carries everything needed to reach the document table.
type Options struct {
	Table           string
	Index           string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// Container implements the store.Container interface using DynamoDB.
type Container struct {
	client *dynamodb.Client
	table  string
	index  string
	logger *slog.Logger
}

// New creates a DynamoDB-backed container around an existing client.
func New(client *dynamodb.Client, table, index string, logger *slog.Logger) *Container {
	return &Container{
		client: client,
		table:  table,
		index:  index,
		logger: logger,
	}
}

// Connect builds a DynamoDB client and validates that the table and index
// exist before any discovery starts. A configured access key takes
// precedence; otherwise the ambient AWS credential chain is used.
func Connect(ctx context.Context, opts Options, logger *slog.Logger) (*Container, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, "")))
		logger.Debug("using configured access key for authentication")
	} else {
		logger.Debug("using ambient credential chain for authentication")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, apperrors.ErrInvalidConfig("failed to load AWS configuration", err)
	}

	var clientOpts []func(*dynamodb.Options)
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		})
	}

	c := New(dynamodb.NewFromConfig(awsCfg, clientOpts...), opts.Table, opts.Index, logger)

	if err := c.ping(ctx); err != nil {
		return nil, err
	}

	logger.Info("connected to document store", "table", c.table, "index", c.index)

	return c, nil
}

// ping validates the connection by reading the table metadata before any
// documents are touched.
func (c *Container) ping(ctx context.Context) error {
	c.logger.Debug("calling external service",
		"operation", "DynamoDB.DescribeTable",
		"table", c.table,
	)

	out, err := c.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(c.table),
	})
	if err != nil {
		return c.mapError("describe table", err)
	}

	for _, gsi := range out.Table.GlobalSecondaryIndexes {
		if aws.ToString(gsi.IndexName) == c.index {
			return nil
		}
	}

	return apperrors.ErrNotFound(fmt.Sprintf("index %q not found on table %q", c.index, c.table), nil)
}

// mapError classifies an AWS SDK error into the application taxonomy.
func (c *Container) mapError(op string, err error) error {
	if isResponseTooLarge(err) {
		return apperrors.ErrResponseTooLarge("response exceeded the transport size limit", err)
	}

	var notFound *types.ResourceNotFoundException
	if stderrors.As(err, &notFound) {
		return apperrors.ErrNotFound("table or index not found", err)
	}

	var apiErr smithy.APIError
	if stderrors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "UnrecognizedClientException", "AccessDeniedException",
			"InvalidSignatureException", "MissingAuthenticationTokenException":
			return apperrors.ErrUnauthorized("invalid credentials", err)
		}
	}

	return apperrors.ErrDatabaseError("failed to "+op, err)
}

// Transport-limit failures are only distinguishable by message content.
// The markers cover the gateway variants seen in production plus the
// DynamoDB response-size ceiling.
var responseTooLargeMarkers = []string{
	"header value is too long",
	"linetoolong",
	"response size exceeded",
	"exceeded maximum allowed payload size",
}

func isResponseTooLarge(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range responseTooLargeMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

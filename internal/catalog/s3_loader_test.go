package catalog

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"storefront/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockObjectGetter is a mock implementation of the S3 GetObject API.
type mockObjectGetter struct {
	mock.Mock
}

func (m *mockObjectGetter) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.GetObjectOutput), args.Error(1)
}

func TestS3Loader_Load_Success(t *testing.T) {
	client := new(mockObjectGetter)
	loader := newS3Loader(client, "catalog-bucket", zerolog.Nop())
	ctx := context.Background()

	client.On("GetObject", ctx, mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return aws.ToString(in.Bucket) == "catalog-bucket" && aws.ToString(in.Key) == "catalog/products.json"
	})).Return(&s3.GetObjectOutput{
		Body: io.NopCloser(strings.NewReader(testCatalogJSON)),
	}, nil).Once()

	products, err := loader.Load(ctx, "catalog/products.json")

	require.NoError(t, err)
	assert.Len(t, products, 2)
	client.AssertExpectations(t)
}

func TestS3Loader_Load_Error(t *testing.T) {
	client := new(mockObjectGetter)
	loader := newS3Loader(client, "catalog-bucket", zerolog.Nop())
	ctx := context.Background()

	client.On("GetObject", ctx, mock.Anything).
		Return(nil, errors.New("access denied")).Once()

	products, err := loader.Load(ctx, "products.json")

	assert.Error(t, err)
	assert.Nil(t, products)
	assert.Contains(t, err.Error(), "bucket=catalog-bucket")
}

func TestFallbackLoader_S3Success(t *testing.T) {
	ctx := context.Background()
	s3L := new(mockLoader)
	fileL := new(mockLoader)

	s3L.On("Load", ctx, "catalog/products.json").
		Return([]model.Product{sampleProduct("s3")}, nil).Once()

	loader := NewFallbackLoader(s3L, fileL, "catalog/", true, zerolog.Nop())
	products, err := loader.Load(ctx, "products.json")

	require.NoError(t, err)
	assert.Equal(t, "s3", products[0].ID)
	fileL.AssertNotCalled(t, "Load", mock.Anything, mock.Anything)
}

func TestFallbackLoader_FallsBackToFile(t *testing.T) {
	ctx := context.Background()
	s3L := new(mockLoader)
	fileL := new(mockLoader)

	s3L.On("Load", ctx, "catalog/products.json").
		Return(nil, errors.New("s3 down")).Once()
	fileL.On("Load", ctx, "products.json").
		Return([]model.Product{sampleProduct("local")}, nil).Once()

	loader := NewFallbackLoader(s3L, fileL, "catalog/", true, zerolog.Nop())
	products, err := loader.Load(ctx, "products.json")

	require.NoError(t, err)
	assert.Equal(t, "local", products[0].ID)
	s3L.AssertExpectations(t)
	fileL.AssertExpectations(t)
}

func TestFallbackLoader_S3Disabled(t *testing.T) {
	ctx := context.Background()
	fileL := new(mockLoader)

	fileL.On("Load", ctx, "products.json").
		Return([]model.Product{sampleProduct("local")}, nil).Once()

	loader := NewFallbackLoader(nil, fileL, "catalog/", false, zerolog.Nop())
	products, err := loader.Load(ctx, "products.json")

	require.NoError(t, err)
	assert.Len(t, products, 1)
	fileL.AssertExpectations(t)
}

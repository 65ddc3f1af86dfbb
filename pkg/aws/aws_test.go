package aws

import (
	"context"
	"errors"
	"testing"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSecretsAPI struct{ mock.Mock }

func (m *mockSecretsAPI) GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	args := m.Called(ctx, *in.SecretId)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretsmanager.GetSecretValueOutput), args.Error(1)
}

type mockSNSAPI struct{ mock.Mock }

func (m *mockSNSAPI) Publish(ctx context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, *in.TopicArn, *in.Message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sns.PublishOutput), args.Error(1)
}

func TestGetSecret_CachesValue(t *testing.T) {
	api := new(mockSecretsAPI)
	api.On("GetSecretValue", mock.Anything, "webhook-secret").
		Return(&secretsmanager.GetSecretValueOutput{SecretString: sdkaws.String("s3cr3t")}, nil).Once()

	client := NewSecretsClientWithAPI(api)

	for i := 0; i < 3; i++ {
		v, err := client.GetSecret(context.Background(), "webhook-secret")
		require.NoError(t, err)
		assert.Equal(t, "s3cr3t", v)
	}
	api.AssertExpectations(t)
}

func TestGetSecret_EmptyValueIsAnError(t *testing.T) {
	api := new(mockSecretsAPI)
	api.On("GetSecretValue", mock.Anything, "empty").
		Return(&secretsmanager.GetSecretValueOutput{}, nil)

	_, err := NewSecretsClientWithAPI(api).GetSecret(context.Background(), "empty")
	assert.Error(t, err)
}

func TestGetSecret_WrapsAPIError(t *testing.T) {
	boom := errors.New("access denied")
	api := new(mockSecretsAPI)
	api.On("GetSecretValue", mock.Anything, "nope").Return(nil, boom)

	_, err := NewSecretsClientWithAPI(api).GetSecret(context.Background(), "nope")
	assert.ErrorIs(t, err, boom)
}

func TestSNSPublish(t *testing.T) {
	t.Run("publishes message body", func(t *testing.T) {
		api := new(mockSNSAPI)
		api.On("Publish", mock.Anything, "arn:aws:sns:eu-west-2:000000000000:payments", `{"ok":true}`).
			Return(&sns.PublishOutput{}, nil).Once()

		err := NewSNSClientWithAPI(api).Publish(context.Background(), "arn:aws:sns:eu-west-2:000000000000:payments", []byte(`{"ok":true}`))
		assert.NoError(t, err)
		api.AssertExpectations(t)
	})

	t.Run("rejects empty topic", func(t *testing.T) {
		api := new(mockSNSAPI)
		err := NewSNSClientWithAPI(api).Publish(context.Background(), "", []byte("x"))
		assert.Error(t, err)
		api.AssertNotCalled(t, "Publish")
	})
}

func TestNilMetricsClientIsNoop(t *testing.T) {
	var m *MetricsClient
	assert.NoError(t, m.RecordCount(context.Background(), MetricHTTPRequests, nil))
}

package bootstrap

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/config"
	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/conversation"
	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/pkg/logging"
)

func TestBuildLLMClientRequiresConfig(t *testing.T) {
	_, err := BuildLLMClient(context.Background(), nil, nil, nil, logging.New("error"))
	require.Error(t, err)
}

func TestBuildLLMClientNothingConfigured(t *testing.T) {
	_, err := BuildLLMClient(context.Background(), &appconfig.Config{}, nil, nil, logging.New("error"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no LLM configured")
}

func TestBuildLLMClientBedrockOnly(t *testing.T) {
	cfg := &appconfig.Config{BedrockModelID: "anthropic.claude-3-haiku", AWSRegion: "us-east-1"}
	awsCfg := aws.Config{Region: "us-east-1"}

	llm, err := BuildLLMClient(context.Background(), cfg, &awsCfg, nil, logging.New("error"))
	require.NoError(t, err)
	assert.IsType(t, &conversation.BedrockLLMClient{}, llm.Client)
	assert.Equal(t, "anthropic.claude-3-haiku", llm.ModelID)
	llm.Close()
}

func TestBuildLLMClientBedrockWithoutAWSConfig(t *testing.T) {
	cfg := &appconfig.Config{BedrockModelID: "anthropic.claude-3-haiku"}

	_, err := BuildLLMClient(context.Background(), cfg, nil, nil, logging.New("error"))
	require.Error(t, err)
}

func TestBuildSessionStoreFallsBackToMemory(t *testing.T) {
	store := BuildSessionStore(context.Background(), &appconfig.Config{}, logging.New("error"))
	assert.IsType(t, &conversation.MemorySessionStore{}, store)
}

func TestBuildSessionStoreUsesRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &appconfig.Config{RedisAddr: mr.Addr(), SessionTTL: 0}

	store := BuildSessionStore(context.Background(), cfg, logging.New("error"))
	assert.IsType(t, &conversation.RedisSessionStore{}, store)
}

func TestBuildRedisClientUnreachableReturnsNil(t *testing.T) {
	cfg := &appconfig.Config{RedisAddr: "127.0.0.1:1"}
	assert.Nil(t, BuildRedisClient(context.Background(), cfg, logging.New("error"), true))
}

func TestBuildCatalogStoreDemo(t *testing.T) {
	store, closeFn, err := BuildCatalogStore(context.Background(), &appconfig.Config{SeedDemoData: true}, logging.New("error"))
	require.NoError(t, err)
	defer closeFn()

	barbers, err := store.ListBarbers(context.Background())
	require.NoError(t, err)
	assert.Len(t, barbers, 3)
}

func TestBuildCatalogStoreRequiresDatabaseURL(t *testing.T) {
	_, _, err := BuildCatalogStore(context.Background(), &appconfig.Config{}, logging.New("error"))
	require.Error(t, err)
}

func TestBuildLedgerWithoutDatabase(t *testing.T) {
	ledger, db, err := BuildLedger(&appconfig.Config{}, logging.New("error"))
	require.NoError(t, err)
	assert.Nil(t, ledger)
	assert.Nil(t, db)
}

func TestBuildNotifierDefaultsToStub(t *testing.T) {
	svc := BuildNotifier(&appconfig.Config{EmailProvider: "sendgrid", SalonName: "Test Salon"}, nil, logging.New("error"))
	require.NotNil(t, svc)
}

func TestBuildArchiverDisabledWithoutBucket(t *testing.T) {
	awsCfg := aws.Config{Region: "us-east-1"}
	assert.Nil(t, BuildArchiver(&appconfig.Config{}, &awsCfg, logging.New("error")))
	assert.NotNil(t, BuildArchiver(&appconfig.Config{ArchiveBucket: "transcripts"}, &awsCfg, logging.New("error")))
}

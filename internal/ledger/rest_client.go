package ledger

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"medichain-server/internal/config"
)

// Default REST bridge endpoints per network.
var networkBaseURLs = map[string]string{
	"testnet":    "https://testnet.hashio.network/api/v1",
	"mainnet":    "https://mainnet.hashio.network/api/v1",
	"previewnet": "https://previewnet.hashio.network/api/v1",
}

type submitMessageRequest struct {
	TopicID    string `json:"topicId"`
	Message    string `json:"message"` // base64
	OperatorID string `json:"operatorId"`
}

type submitMessageResponse struct {
	SequenceNumber     uint64 `json:"sequenceNumber"`
	ConsensusTimestamp string `json:"consensusTimestamp"`
	Status             string `json:"status"`
	Error              string `json:"error,omitempty"`
}

type createTopicRequest struct {
	Memo       string `json:"memo"`
	OperatorID string `json:"operatorId"`
}

type createTopicResponse struct {
	TopicID string `json:"topicId"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

type createAccountRequest struct {
	PublicKey      string `json:"publicKey"`
	InitialBalance int64  `json:"initialBalance"`
	OperatorID     string `json:"operatorId"`
}

type createAccountResponse struct {
	AccountID string `json:"accountId"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

type balanceResponse struct {
	AccountID string `json:"accountId"`
	Balance   string `json:"balance"`
	Error     string `json:"error,omitempty"`
}

// RESTClient talks to a ledger REST bridge over HTTP. Submission waits
// synchronously for the receipt; the bridge enforces consensus ordering.
type RESTClient struct {
	httpClient *resty.Client
	network    string
	operatorID string
	logger     *zap.Logger
}

// NewRESTClient builds a ledger client from configuration. MaxAttempts and
// NodeWaitSecs bound how long a single logical call may take before the
// caller sees a failure.
func NewRESTClient(cfg config.LedgerConfig, log *zap.Logger) *RESTClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = networkBaseURLs[cfg.Network]
	}

	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 5
	}
	nodeWait := cfg.NodeWaitSecs
	if nodeWait < 1 {
		nodeWait = 15
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(time.Duration(nodeWait) * time.Second).
		SetRetryCount(attempts - 1).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetAuthToken(cfg.OperatorKey)

	return &RESTClient{
		httpClient: client,
		network:    cfg.Network,
		operatorID: cfg.OperatorID,
		logger:     log,
	}
}

func (c *RESTClient) Network() string {
	return c.network
}

func (c *RESTClient) CreateTopic(ctx context.Context, memo string) (string, error) {
	var response createTopicResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(createTopicRequest{Memo: memo, OperatorID: c.operatorID}).
		SetResult(&response).
		Post("/topics")
	if err != nil {
		return "", fmt.Errorf("create topic: %w", err)
	}
	if resp.IsError() || response.TopicID == "" {
		return "", fmt.Errorf("create topic: status %d: %s", resp.StatusCode(), response.Error)
	}

	c.logger.Info("Created ledger topic",
		zap.String("topic_id", response.TopicID),
		zap.String("memo", memo),
	)
	return response.TopicID, nil
}

func (c *RESTClient) SubmitMessage(ctx context.Context, topicID string, message []byte) (Receipt, error) {
	request := submitMessageRequest{
		TopicID:    topicID,
		Message:    base64.StdEncoding.EncodeToString(message),
		OperatorID: c.operatorID,
	}

	var response submitMessageResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(request).
		SetResult(&response).
		Post(fmt.Sprintf("/topics/%s/messages", topicID))
	if err != nil {
		return Receipt{}, fmt.Errorf("submit message to topic %s: %w", topicID, err)
	}
	if resp.IsError() {
		return Receipt{}, fmt.Errorf("submit message to topic %s: status %d: %s",
			topicID, resp.StatusCode(), response.Error)
	}

	c.logger.Debug("Submitted topic message",
		zap.String("topic_id", topicID),
		zap.Uint64("sequence_number", response.SequenceNumber),
	)
	return Receipt{
		SequenceNumber:     response.SequenceNumber,
		ConsensusTimestamp: response.ConsensusTimestamp,
	}, nil
}

func (c *RESTClient) CreateAccount(ctx context.Context, publicKey string, initialBalance int64) (string, error) {
	request := createAccountRequest{
		PublicKey:      publicKey,
		InitialBalance: initialBalance,
		OperatorID:     c.operatorID,
	}

	var response createAccountResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(request).
		SetResult(&response).
		Post("/accounts")
	if err != nil {
		return "", fmt.Errorf("create account: %w", err)
	}
	if resp.IsError() || response.AccountID == "" {
		return "", fmt.Errorf("create account: status %d: %s", resp.StatusCode(), response.Error)
	}

	c.logger.Info("Created ledger account",
		zap.String("account_id", response.AccountID),
	)
	return response.AccountID, nil
}

func (c *RESTClient) GetBalance(ctx context.Context, accountID string) (string, error) {
	var response balanceResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&response).
		Get(fmt.Sprintf("/accounts/%s/balance", accountID))
	if err != nil {
		return "", fmt.Errorf("get balance for %s: %w", accountID, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("get balance for %s: status %d: %s",
			accountID, resp.StatusCode(), response.Error)
	}
	return response.Balance, nil
}

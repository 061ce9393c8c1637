package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"medichain-server/internal/config"
)

type pinResponse struct {
	IpfsHash string `json:"IpfsHash"`
	PinSize  int64  `json:"PinSize"`
}

// PinClient uploads files through a pinning service and reads them back
// through gateways. Retrieval falls back across the configured gateways in
// order, returning the first successful response.
type PinClient struct {
	httpClient *resty.Client
	gateways   []string
	logger     *zap.Logger
}

// NewPinClient builds a storage client from configuration.
func NewPinClient(cfg config.StorageConfig, log *zap.Logger) *PinClient {
	timeout := cfg.TimeoutSecs
	if timeout < 1 {
		timeout = 30
	}

	client := resty.New().
		SetBaseURL(cfg.PinURL).
		SetTimeout(time.Duration(timeout) * time.Second).
		SetHeader("pinata_api_key", cfg.APIKey).
		SetHeader("pinata_secret_api_key", cfg.APISecret)

	return &PinClient{
		httpClient: client,
		gateways:   cfg.Gateways,
		logger:     log,
	}
}

// Put pins data and returns its CID.
func (c *PinClient) Put(ctx context.Context, data []byte, filename, mimeType string) (string, error) {
	metadata, _ := json.Marshal(map[string]interface{}{
		"name": filename,
		"keyvalues": map[string]string{
			"timestamp": strconv.FormatInt(time.Now().Unix(), 10),
			"type":      "medical_record",
		},
	})

	var response pinResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetFileReader("file", filename, bytes.NewReader(data)).
		SetFormData(map[string]string{
			"pinataMetadata": string(metadata),
			"pinataOptions":  `{"cidVersion":0}`,
		}).
		SetResult(&response).
		Post("/pinning/pinFileToIPFS")
	if err != nil {
		return "", fmt.Errorf("pin file: %w", err)
	}
	if resp.IsError() || response.IpfsHash == "" {
		return "", fmt.Errorf("pin file: status %d", resp.StatusCode())
	}

	c.logger.Info("Pinned file to storage",
		zap.String("cid", response.IpfsHash),
		zap.String("filename", filename),
		zap.Int("size", len(data)),
	)
	return response.IpfsHash, nil
}

// Get retrieves the bytes for a CID, trying each gateway until one succeeds
// or all fail.
func (c *PinClient) Get(ctx context.Context, cid string) ([]byte, string, error) {
	var lastErr error
	for _, gateway := range c.gateways {
		url := fmt.Sprintf("%s/ipfs/%s", gateway, cid)
		resp, err := c.httpClient.R().
			SetContext(ctx).
			SetDoNotParseResponse(false).
			Get(url)
		if err != nil {
			lastErr = err
			c.logger.Warn("Gateway fetch failed",
				zap.String("gateway", gateway),
				zap.String("cid", cid),
				zap.Error(err),
			)
			continue
		}
		if resp.IsError() {
			lastErr = fmt.Errorf("gateway %s: status %d", gateway, resp.StatusCode())
			continue
		}
		return resp.Body(), resp.Header().Get("Content-Type"), nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no gateways configured")
	}
	return nil, "", fmt.Errorf("retrieve %s from all gateways: %w", cid, lastErr)
}

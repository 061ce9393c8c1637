package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"medichain-server/internal/config"
)

func TestPinClient_Put_ReturnsCID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/pinning/pinFileToIPFS", r.URL.Path)
		require.Equal(t, "test-key", r.Header.Get("pinata_api_key"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.NotEmpty(t, r.FormValue("pinataMetadata"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"IpfsHash":"QmPinnedCID","PinSize":42}`))
	}))
	defer server.Close()

	client := NewPinClient(config.StorageConfig{
		PinURL:      server.URL,
		APIKey:      "test-key",
		APISecret:   "test-secret",
		TimeoutSecs: 5,
	}, zap.NewNop())

	cid, err := client.Put(context.Background(), []byte("file body"), "report.pdf", "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "QmPinnedCID", cid)
}

func TestPinClient_Put_ErrorStatusFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewPinClient(config.StorageConfig{PinURL: server.URL, TimeoutSecs: 5}, zap.NewNop())

	_, err := client.Put(context.Background(), []byte("file body"), "report.pdf", "application/pdf")
	require.Error(t, err)
}

func TestPinClient_Get_FallsBackAcrossGateways(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer broken.Close()

	var served bool
	working := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/ipfs/QmTestCID", r.URL.Path)
		served = true
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("record payload"))
	}))
	defer working.Close()

	client := NewPinClient(config.StorageConfig{
		PinURL:      "http://unused.invalid",
		Gateways:    []string{broken.URL, working.URL},
		TimeoutSecs: 5,
	}, zap.NewNop())

	data, contentType, err := client.Get(context.Background(), "QmTestCID")
	require.NoError(t, err)
	assert.True(t, served)
	assert.Equal(t, []byte("record payload"), data)
	assert.Equal(t, "text/plain", contentType)
}

func TestPinClient_Get_AllGatewaysFailing(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	client := NewPinClient(config.StorageConfig{
		PinURL:      "http://unused.invalid",
		Gateways:    []string{broken.URL, broken.URL},
		TimeoutSecs: 5,
	}, zap.NewNop())

	_, _, err := client.Get(context.Background(), "QmTestCID")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all gateways")
}

func TestPinClient_Get_NoGatewaysConfigured(t *testing.T) {
	client := NewPinClient(config.StorageConfig{PinURL: "http://unused.invalid", TimeoutSecs: 5}, zap.NewNop())

	_, _, err := client.Get(context.Background(), "QmTestCID")
	require.Error(t, err)
}

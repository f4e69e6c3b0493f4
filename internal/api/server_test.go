package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/novaland-labs/marketplace/internal/api"
	"github.com/novaland-labs/marketplace/internal/config"
	"github.com/novaland-labs/marketplace/internal/models"
	"github.com/novaland-labs/marketplace/internal/pinning"
	"github.com/novaland-labs/marketplace/internal/services"
	"github.com/novaland-labs/marketplace/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testOwner = "0x742d35Cc6634C0532925a3b844Bc9e7595f0bEb1"

type stubRegistry struct {
	properties []models.Property
	txHash     string
}

func (s *stubRegistry) VerifyConnection(ctx context.Context) error { return nil }

func (s *stubRegistry) FetchProperties(ctx context.Context) ([]models.Property, error) {
	return s.properties, nil
}

func (s *stubRegistry) GetProperty(ctx context.Context, productID uint64) (*models.Property, error) {
	for i := range s.properties {
		if s.properties[i].ProductID == productID {
			return &s.properties[i], nil
		}
	}
	return nil, fmt.Errorf("property %d not found in registry", productID)
}

func (s *stubRegistry) AddProperty(ctx context.Context, auth *bind.TransactOpts, args services.AddPropertyArgs) (string, error) {
	return s.txHash, nil
}

func (s *stubRegistry) DelistProperty(ctx context.Context, auth *bind.TransactOpts, productID uint64) (string, error) {
	return s.txHash, nil
}

func (s *stubRegistry) PurchaseProperty(ctx context.Context, auth *bind.TransactOpts, productID uint64, priceWei *big.Int) (string, error) {
	return s.txHash, nil
}

func (s *stubRegistry) WaitForConfirmation(ctx context.Context, txHash string) (*utils.TransactionReceipt, error) {
	return &utils.TransactionReceipt{TransactionHash: txHash, Status: "0x1"}, nil
}

type stubPinner struct{}

func (stubPinner) HasCredentials() bool { return true }

func (stubPinner) UploadAll(ctx context.Context, files []models.PendingFile) ([]models.UploadResult, error) {
	results := make([]models.UploadResult, len(files))
	for i, file := range files {
		results[i] = models.UploadResult{URL: "https://gateway.pinata.cloud/ipfs/" + file.Name}
	}
	return results, nil
}

type stubWallet struct{}

func (stubWallet) RequestAccounts(ctx context.Context) ([]string, error) {
	return []string{testOwner}, nil
}

func (stubWallet) Address() string { return testOwner }

func (stubWallet) NewTransactor(ctx context.Context) (*bind.TransactOpts, error) {
	return &bind.TransactOpts{Context: ctx}, nil
}

func newTestServer(t *testing.T, registry services.RegistryService) *api.APIServer {
	t.Helper()
	dbService, err := services.NewSqliteDBService(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { dbService.Close() })

	cfg := &config.Config{
		ContractAddress: testOwner,
		PinataAPIKey:    "key",
		PinataAPISecret: "secret",
		PrivateKey:      "configured",
	}

	var pinner pinning.Pinner = stubPinner{}
	submission := services.NewSubmissionService(dbService.GetDB(), pinner, registry, stubWallet{})
	threads := services.NewThreadService(dbService.GetDB())
	return api.NewAPIServer(cfg, submission, registry, stubWallet{}, threads)
}

func decodeJSON(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, out))
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t, &stubRegistry{})

	resp, err := server.App().Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStatusEndpoint(t *testing.T) {
	server := newTestServer(t, &stubRegistry{})

	resp, err := server.App().Test(httptest.NewRequest(http.MethodGet, "/api/status", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var status struct {
		State               string   `json:"state"`
		SubmissionReady     bool     `json:"submission_ready"`
		ConfigurationErrors []string `json:"configuration_errors"`
	}
	decodeJSON(t, resp, &status)
	assert.Equal(t, "idle", status.State)
	assert.True(t, status.SubmissionReady)
	assert.Empty(t, status.ConfigurationErrors)
}

func TestListPropertiesFiltersDelisted(t *testing.T) {
	server := newTestServer(t, &stubRegistry{properties: []models.Property{
		{ProductID: 1, Title: "Sea View Apartment", IsListed: true},
		{ProductID: 2, Title: "Sold House", IsListed: false},
		{ProductID: 3, Title: "Riverside Land", IsListed: true},
	}})

	resp, err := server.App().Test(httptest.NewRequest(http.MethodGet, "/api/properties", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Properties []models.Property `json:"properties"`
	}
	decodeJSON(t, resp, &body)
	require.Len(t, body.Properties, 2)
	assert.Equal(t, uint64(1), body.Properties[0].ProductID)
	assert.Equal(t, uint64(3), body.Properties[1].ProductID)
}

func TestGetProperty(t *testing.T) {
	server := newTestServer(t, &stubRegistry{properties: []models.Property{
		{ProductID: 7, Title: "Sea View Apartment", IsListed: true},
	}})

	t.Run("Found", func(t *testing.T) {
		resp, err := server.App().Test(httptest.NewRequest(http.MethodGet, "/api/properties/7", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("NotFound", func(t *testing.T) {
		resp, err := server.App().Test(httptest.NewRequest(http.MethodGet, "/api/properties/99", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("BadID", func(t *testing.T) {
		resp, err := server.App().Test(httptest.NewRequest(http.MethodGet, "/api/properties/abc", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestDeriveIDEndpoint(t *testing.T) {
	server := newTestServer(t, &stubRegistry{})

	t.Run("Success", func(t *testing.T) {
		payload := `{"title":"Sea View Apartment","category":"Apartment","price":"1.5","owner_address":"` + testOwner + `"}`
		req := httptest.NewRequest(http.MethodPost, "/api/properties/derive-id", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")

		resp, err := server.App().Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			NftID string `json:"nft_id"`
		}
		decodeJSON(t, resp, &body)
		want, err := utils.DerivePropertyID("Sea View Apartment", "Apartment", "1.5", testOwner)
		require.NoError(t, err)
		assert.Equal(t, want, body.NftID)
	})

	t.Run("IncompleteInput", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/properties/derive-id", strings.NewReader(`{"title":"x"}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := server.App().Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func submitForm(t *testing.T, fields map[string]string, imageNames []string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	for _, name := range imageNames {
		part, err := writer.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = part.Write([]byte("jpeg"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/properties", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func validFormFields() map[string]string {
	return map[string]string{
		"title":         "Sea View Apartment",
		"category":      "Apartment",
		"price":         "1.5",
		"country":       "Portugal",
		"state":         "Lisbon",
		"city":          "Lisbon",
		"postal_code":   "1100-148",
		"description":   "Two bedrooms",
		"owner_address": testOwner,
	}
}

func TestSubmitPropertyEndpoint(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		server := newTestServer(t, &stubRegistry{txHash: "0xdeadbeef"})

		resp, err := server.App().Test(submitForm(t, validFormFields(), []string{"front.jpg"}), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var outcome models.SubmissionOutcome
		decodeJSON(t, resp, &outcome)
		assert.Equal(t, models.OutcomeSucceeded, outcome.Kind)
		assert.Equal(t, "0xdeadbeef", outcome.TransactionHash)
		assert.NotEmpty(t, outcome.NftID)
	})

	t.Run("ValidationFailure", func(t *testing.T) {
		server := newTestServer(t, &stubRegistry{txHash: "0xdeadbeef"})

		fields := validFormFields()
		fields["title"] = ""
		resp, err := server.App().Test(submitForm(t, fields, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var outcome models.SubmissionOutcome
		decodeJSON(t, resp, &outcome)
		assert.Equal(t, models.OutcomeValidationFailed, outcome.Kind)
		assert.NotEmpty(t, outcome.Reasons)
	})

	t.Run("NotMultipart", func(t *testing.T) {
		server := newTestServer(t, &stubRegistry{})

		req := httptest.NewRequest(http.MethodPost, "/api/properties", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := server.App().Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestPurchaseEndpointRejectsDelisted(t *testing.T) {
	server := newTestServer(t, &stubRegistry{
		txHash: "0xdeadbeef",
		properties: []models.Property{
			{ProductID: 1, Title: "Sold House", IsListed: false, PriceWei: big.NewInt(1)},
		},
	})

	resp, err := server.App().Test(httptest.NewRequest(http.MethodPost, "/api/properties/1/purchase", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestOfferEndpoints(t *testing.T) {
	server := newTestServer(t, &stubRegistry{})

	openThread := func(t *testing.T) *http.Response {
		payload := `{"property_id":1,"buyer_wallet":"0xBUYER","seller_wallet":"0xSELLER","property_title":"Sea View Apartment"}`
		req := httptest.NewRequest(http.MethodPost, "/api/threads", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		resp, err := server.App().Test(req)
		require.NoError(t, err)
		return resp
	}

	resp := openThread(t)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var thread models.OfferThread
	decodeJSON(t, resp, &thread)
	assert.Equal(t, "0xbuyer", thread.BuyerWallet)

	// A second open offer from the same buyer is a conflict.
	resp = openThread(t)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, err := server.App().Test(httptest.NewRequest(http.MethodGet, "/api/properties/1/offer-status?buyer=0xbuyer", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var status struct {
		HasOpenOffer bool `json:"has_open_offer"`
	}
	decodeJSON(t, resp, &status)
	assert.True(t, status.HasOpenOffer)

	resp, err = server.App().Test(httptest.NewRequest(http.MethodGet, "/api/threads?buyer=0xbuyer", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	closeReq := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/threads/%d/close", thread.ID), nil)
	resp, err = server.App().Test(closeReq)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = server.App().Test(httptest.NewRequest(http.MethodGet, "/api/properties/1/offer-status?buyer=0xbuyer", nil))
	require.NoError(t, err)
	decodeJSON(t, resp, &status)
	assert.False(t, status.HasOpenOffer)

	// Missing query parameters are caller errors.
	resp, err = server.App().Test(httptest.NewRequest(http.MethodGet, "/api/threads", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

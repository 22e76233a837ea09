package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ferreirogomes/rtoken/event_listener"
	"github.com/ferreirogomes/rtoken/handlers"
	"github.com/ferreirogomes/rtoken/ledger"
	"github.com/ferreirogomes/rtoken/models"
	"github.com/ferreirogomes/rtoken/services"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router  http.Handler
	token   *services.Token
	store   *event_listener.MemoryStore
	creator models.Address
}

// newTestServer monta o roteador sobre um ledger em memória com 1000 unidades
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := event_listener.NewMemoryStore()
	creator := solana.NewWallet().PublicKey()
	token, err := services.New(context.Background(), "Restricted", "RTK", decimal.NewFromInt(1000), creator,
		ledger.NewMemory(nil), services.WithDecimals(0))
	require.NoError(t, err)

	return &testServer{
		router:  handlers.NewRouter(token, store),
		token:   token,
		store:   store,
		creator: creator,
	}
}

func (s *testServer) do(t *testing.T, method, path string, caller *models.Address, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if caller != nil {
		req.Header.Set(handlers.AccountHeader, caller.String())
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func (s *testServer) balance(t *testing.T, addr models.Address) string {
	t.Helper()
	rr := s.do(t, "GET", "/balances/"+addr.String(), nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var resp handlers.AmountResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Amount.String()
}

// TestGetInfo testa os metadados do token
func TestGetInfo(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, "GET", "/token", nil, nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	var info models.TokenInfo
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &info))
	assert.Equal(t, "RTK", info.Symbol)
	assert.Equal(t, uint8(0), info.Decimals)
	assert.Equal(t, "1000", info.TotalSupply.String())
}

// TestTransferEndToEnd testa a transferência válida via HTTP
func TestTransferEndToEnd(t *testing.T) {
	s := newTestServer(t)
	x := solana.NewWallet().PublicKey()

	rr := s.do(t, "GET", "/restrictions/detect?from="+s.creator.String()+"&to="+x.String()+"&amount=100", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var detect handlers.RestrictionResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &detect))
	assert.Equal(t, models.CodeSuccess, detect.Code)
	assert.Equal(t, "SUCCESS", detect.Message)

	rr = s.do(t, "POST", "/transfers", &s.creator, handlers.TransferRequest{To: x.String(), Amount: decimal.NewFromInt(100)})
	assert.Equal(t, http.StatusOK, rr.Code)

	assert.Equal(t, "900", s.balance(t, s.creator))
	assert.Equal(t, "100", s.balance(t, x))
}

// TestTransferToNullAddress testa a rejeição com código e mensagem
func TestTransferToNullAddress(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, "POST", "/transfers", &s.creator, handlers.TransferRequest{To: models.NullAddress.String(), Amount: decimal.NewFromInt(100)})

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	var resp handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ILLEGAL_TRANSFER_TO_ZERO_ADDRESS", resp.Error)
	require.NotNil(t, resp.RestrictionCode)
	assert.Equal(t, models.CodeZeroAddressRecipient, *resp.RestrictionCode)
	assert.Equal(t, "1000", s.balance(t, s.creator))
}

func TestDetectNullAddress(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, "GET", "/restrictions/detect?from="+s.creator.String()+"&to=11111111111111111111111111111111&amount=5", nil, nil)

	require.Equal(t, http.StatusOK, rr.Code)
	var detect handlers.RestrictionResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &detect))
	assert.Equal(t, models.CodeZeroAddressRecipient, detect.Code)
	assert.Equal(t, "ILLEGAL_TRANSFER_TO_ZERO_ADDRESS", detect.Message)
}

func TestDetectRejectsBadInput(t *testing.T) {
	s := newTestServer(t)
	x := solana.NewWallet().PublicKey().String()

	assert.Equal(t, http.StatusBadRequest, s.do(t, "GET", "/restrictions/detect?from=nope&to="+x, nil, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, "GET", "/restrictions/detect?from="+x+"&to="+x+"&amount=abc", nil, nil).Code)
}

// TestDetectRejectsAmountsTransfersReject garante que a prévia não responde
// SUCCESS para quantidades que POST /transfers rejeitaria
func TestDetectRejectsAmountsTransfersReject(t *testing.T) {
	s := newTestServer(t)
	x := solana.NewWallet().PublicKey().String()

	for _, raw := range []string{"-1", "0.5", "1e100", "1e40000000"} {
		rr := s.do(t, "GET", "/restrictions/detect?from="+s.creator.String()+"&to="+x+"&amount="+raw, nil, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code, raw)
	}
	rr := s.do(t, "GET", "/restrictions/detect?from="+s.creator.String()+"&to="+x+"&amount=0", nil, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestMessageForCode(t *testing.T) {
	s := newTestServer(t)
	cases := map[string]string{
		"0":   "SUCCESS",
		"1":   "ILLEGAL_TRANSFER_TO_ZERO_ADDRESS",
		"9":   "UNKNOWN",
		"255": "UNKNOWN",
	}
	for code, want := range cases {
		rr := s.do(t, "GET", "/restrictions/"+code+"/message", nil, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		var resp handlers.RestrictionResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, want, resp.Message, "código %s", code)
	}

	assert.Equal(t, http.StatusBadRequest, s.do(t, "GET", "/restrictions/256/message", nil, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, "GET", "/restrictions/x/message", nil, nil).Code)
}

func TestListRules(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, "GET", "/restrictions", nil, nil)

	require.Equal(t, http.StatusOK, rr.Code)
	var rules []map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rules))
	require.Len(t, rules, 1)
	assert.Equal(t, "zero_address_recipient", rules[0]["name"])
	assert.Equal(t, float64(1), rules[0]["code"])
}

func TestTransferRequiresCaller(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, "POST", "/transfers", nil, handlers.TransferRequest{To: solana.NewWallet().PublicKey().String(), Amount: decimal.NewFromInt(1)})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestTransferInsufficientBalance(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, "POST", "/transfers", &s.creator, handlers.TransferRequest{To: solana.NewWallet().PublicKey().String(), Amount: decimal.NewFromInt(1001)})
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestTransferRejectsFractionalAmount(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, "POST", "/transfers", &s.creator, handlers.TransferRequest{To: solana.NewWallet().PublicKey().String(), Amount: decimal.RequireFromString("1.5")})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// TestMutationsRejectOversizedAmounts envia expoentes enormes em corpos pequenos;
// a resposta deve ser 400 sem expandir o número
func TestMutationsRejectOversizedAmounts(t *testing.T) {
	s := newTestServer(t)
	x := solana.NewWallet().PublicKey().String()
	spender := solana.NewWallet().PublicKey()

	for _, raw := range []string{"1e100", "1e40000000", "1e2000000000"} {
		rr := s.do(t, "POST", "/transfers", &s.creator,
			json.RawMessage(fmt.Sprintf(`{"to":%q,"amount":%q}`, x, raw)))
		assert.Equal(t, http.StatusBadRequest, rr.Code, "transfer %s", raw)

		rr = s.do(t, "POST", "/approvals", &s.creator,
			json.RawMessage(fmt.Sprintf(`{"spender":%q,"amount":%q}`, spender.String(), raw)))
		assert.Equal(t, http.StatusBadRequest, rr.Code, "approve %s", raw)

		rr = s.do(t, "POST", "/transfers/from", &spender,
			json.RawMessage(fmt.Sprintf(`{"from":%q,"to":%q,"amount":%q}`, s.creator.String(), x, raw)))
		assert.Equal(t, http.StatusBadRequest, rr.Code, "transferFrom %s", raw)
	}
	assert.Equal(t, "1000", s.balance(t, s.creator))
}

// TestApproveAndTransferFrom testa o fluxo delegado
func TestApproveAndTransferFrom(t *testing.T) {
	s := newTestServer(t)
	spender := solana.NewWallet().PublicKey()
	x := solana.NewWallet().PublicKey()

	rr := s.do(t, "POST", "/approvals", &s.creator, handlers.ApproveRequest{Spender: spender.String(), Amount: decimal.NewFromInt(50)})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = s.do(t, "POST", "/transfers/from", &spender, handlers.TransferFromRequest{From: s.creator.String(), To: models.NullAddress.String(), Amount: decimal.NewFromInt(10)})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = s.do(t, "POST", "/transfers/from", &spender, handlers.TransferFromRequest{From: s.creator.String(), To: x.String(), Amount: decimal.NewFromInt(60)})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = s.do(t, "POST", "/transfers/from", &spender, handlers.TransferFromRequest{From: s.creator.String(), To: x.String(), Amount: decimal.NewFromInt(20)})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = s.do(t, "GET", "/allowances/"+s.creator.String()+"/"+spender.String(), nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var allowance handlers.AmountResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &allowance))
	assert.Equal(t, "30", allowance.Amount.String())
	assert.Equal(t, "980", s.balance(t, s.creator))
	assert.Equal(t, "20", s.balance(t, x))
}

func TestListEvents(t *testing.T) {
	s := newTestServer(t)
	ev := ledger.NewEvent(models.EventTransfer, s.creator, solana.NewWallet().PublicKey(), decimal.NewFromInt(1))
	require.NoError(t, s.store.SaveEvent(context.Background(), ev))

	rr := s.do(t, "GET", "/events?limit=5", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var events []models.Event
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &events))
	require.Len(t, events, 1)
	assert.Equal(t, ev.ID, events[0].ID)

	assert.Equal(t, http.StatusBadRequest, s.do(t, "GET", "/events?limit=-1", nil, nil).Code)
}

func TestGetBalanceRejectsBadAddress(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusBadRequest, s.do(t, "GET", "/balances/not-base58!", nil, nil).Code)
}

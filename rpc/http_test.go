package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"stackstream/core/types"
	"stackstream/native/gateway"
	"stackstream/native/registry"
	"stackstream/native/subscription"
	"stackstream/state"
	"stackstream/storage"
)

const (
	testToken    = "test-token"
	ownerHex     = "0x00000000000000000000000000000000000000f0"
	treasuryHex  = "0x00000000000000000000000000000000000000fe"
	creatorHex   = "0x0000000000000000000000000000000000000001"
	fanHex       = "0x0000000000000000000000000000000000000003"
	contentHash  = "0x0101010101010101010101010101010101010101010101010101010101010101"
	testBalances = 100_000_000
)

func mustAddr(t *testing.T, raw string) [20]byte {
	t.Helper()
	addr, err := parseAddress(raw)
	require.NoError(t, err)
	return addr
}

func newTestServer(t *testing.T) (*Server, *state.Manager) {
	t.Helper()
	t.Setenv("STACKSTREAM_RPC_TOKEN", testToken)

	manager := state.NewManager(storage.NewMemDB())
	owner := mustAddr(t, ownerHex)
	treasury := mustAddr(t, treasuryHex)
	vault := mustAddr(t, "0x00000000000000000000000000000000000000fd")

	reg := registry.NewEngine()
	reg.SetState(manager)
	reg.SetOwner(owner)
	reg.SetTreasury(treasury)

	gw := gateway.NewEngine()
	gw.SetState(manager)
	gw.SetOwner(owner)
	gw.SetTreasury(treasury)
	gw.SetGiftVault(vault)

	subs := subscription.NewEngine()
	subs.SetState(manager)
	subs.SetOwner(owner)
	subs.SetTreasury(treasury)

	for _, raw := range []string{creatorHex, fanHex} {
		addr := mustAddr(t, raw)
		require.NoError(t, manager.PutAccount(addr[:], &types.Account{BalanceSTX: big.NewInt(testBalances)}))
	}

	return NewServer(reg, gw, subs, nil), manager
}

func call(t *testing.T, server *Server, method string, params any, token string) (*httptest.ResponseRecorder, RPCResponse) {
	t.Helper()
	body := map[string]any{"jsonrpc": "2.0", "id": 1, "method": method}
	if params != nil {
		body["params"] = []any{params}
	}
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	server.handle(recorder, req)

	var resp RPCResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	return recorder, resp
}

func TestHandleRejectsMalformedRequests(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("{not json")))
	recorder := httptest.NewRecorder()
	server.handle(recorder, req)
	var resp RPCResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	require.Equal(t, codeParseError, resp.Error.Code)

	recorder, resp = call(t, server, "no_suchMethod", map[string]any{}, "")
	require.Equal(t, http.StatusNotFound, recorder.Code)
	require.Equal(t, codeMethodNotFound, resp.Error.Code)
}

func TestRegistryLifecycleOverRPC(t *testing.T) {
	server, _ := newTestServer(t)

	recorder, resp := call(t, server, "registry_registerCreator", registerCreatorParams{
		Caller:   creatorHex,
		Username: "Alice",
		Bio:      "streams art",
	}, "")
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Nil(t, resp.Error)
	profile, ok := resp.Result.(map[string]any)
	require.True(t, ok)
	require.Equal(t, "alice", profile["username"])
	require.Equal(t, float64(100), profile["reputationScore"])

	_, resp = call(t, server, "registry_getCreatorByUsername", map[string]any{"username": "alice"}, "")
	require.Nil(t, resp.Error)

	recorder, resp = call(t, server, "registry_getCreator", map[string]any{"address": fanHex}, "")
	require.Equal(t, http.StatusNotFound, recorder.Code)
	require.Equal(t, codeNotFound, resp.Error.Code)

	// Duplicate registration surfaces as a conflict.
	recorder, resp = call(t, server, "registry_registerCreator", registerCreatorParams{
		Caller:   creatorHex,
		Username: "alice2",
	}, "")
	require.Equal(t, http.StatusConflict, recorder.Code)
	require.Equal(t, codeConflict, resp.Error.Code)
}

func TestGatewayPurchaseOverRPC(t *testing.T) {
	server, _ := newTestServer(t)

	recorder, resp := call(t, server, "gateway_purchaseContent", purchaseContentParams{
		Buyer:     fanHex,
		Creator:   creatorHex,
		ContentID: 1,
		Price:     "1000000",
	}, "")
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Nil(t, resp.Error)

	_, resp = call(t, server, "gateway_hasValidAccess", accessQueryParams{
		User:      fanHex,
		Creator:   creatorHex,
		ContentID: 1,
	}, "")
	require.Nil(t, resp.Error)
	access, ok := resp.Result.(map[string]any)
	require.True(t, ok)
	require.Equal(t, true, access["hasAccess"])

	_, resp = call(t, server, "gateway_stats", nil, "")
	require.Nil(t, resp.Error)
	stats, ok := resp.Result.(map[string]any)
	require.True(t, ok)
	require.Equal(t, "1000000", stats["totalVolume"])

	// Out-of-band price is invalid params.
	recorder, resp = call(t, server, "gateway_purchaseContent", purchaseContentParams{
		Buyer:     fanHex,
		Creator:   creatorHex,
		ContentID: 2,
		Price:     "50000",
	}, "")
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	require.Equal(t, codeInvalidParams, resp.Error.Code)
}

func TestSubscriptionFlowOverRPC(t *testing.T) {
	server, _ := newTestServer(t)

	_, resp := call(t, server, "sub_createTier", createTierParams{
		Creator:      creatorHex,
		Name:         "basic",
		MonthlyPrice: "10000000",
	}, "")
	require.Nil(t, resp.Error)

	_, resp = call(t, server, "sub_subscribe", subscribeParams{
		Subscriber: fanHex,
		Creator:    creatorHex,
		Tier:       "basic",
	}, "")
	require.Nil(t, resp.Error)

	_, resp = call(t, server, "sub_getSubscription", subscriptionRefParams{
		Subscriber: fanHex,
		Creator:    creatorHex,
	}, "")
	require.Nil(t, resp.Error)
	sub, ok := resp.Result.(map[string]any)
	require.True(t, ok)
	require.Equal(t, true, sub["active"])
	require.Equal(t, "10000000", sub["monthlyPrice"])

	_, resp = call(t, server, "sub_checkAccess", subscriptionRefParams{
		Subscriber: fanHex,
		Creator:    creatorHex,
	}, "")
	require.Nil(t, resp.Error)

	_, resp = call(t, server, "sub_cancel", subscriptionRefParams{
		Subscriber: fanHex,
		Creator:    creatorHex,
	}, "")
	require.Nil(t, resp.Error)

	// The access gate reports the lapsed subscription as not found while the
	// boolean read stays error-free.
	recorder, resp := call(t, server, "sub_checkAccess", subscriptionRefParams{
		Subscriber: fanHex,
		Creator:    creatorHex,
	}, "")
	require.Equal(t, http.StatusNotFound, recorder.Code)
	require.Equal(t, codeNotFound, resp.Error.Code)

	_, resp = call(t, server, "sub_isActive", subscriptionRefParams{
		Subscriber: fanHex,
		Creator:    creatorHex,
	}, "")
	require.Nil(t, resp.Error)
	active, ok := resp.Result.(map[string]any)
	require.True(t, ok)
	require.Equal(t, false, active["active"])

	// Lifetime subscriber count survives the cancellation.
	_, resp = call(t, server, "sub_creatorStats", map[string]any{"creator": creatorHex}, "")
	require.Nil(t, resp.Error)
	stats, ok := resp.Result.(map[string]any)
	require.True(t, ok)
	require.Equal(t, "1", stats["totalSubscribers"])
	require.Equal(t, "0", stats["activeSubscribers"])
}

func TestAdminMethodsRequireAuth(t *testing.T) {
	server, _ := newTestServer(t)
	params := adjustReputationParams{Caller: ownerHex, Creator: creatorHex, Score: 500}

	recorder, resp := call(t, server, "registry_adjustReputation", params, "")
	require.Equal(t, http.StatusUnauthorized, recorder.Code)
	require.Equal(t, codeUnauthorized, resp.Error.Code)

	recorder, resp = call(t, server, "registry_adjustReputation", params, "wrong-token")
	require.Equal(t, http.StatusUnauthorized, recorder.Code)
	require.Equal(t, codeUnauthorized, resp.Error.Code)

	// With the right token the call reaches the engine; the target creator is
	// unregistered so the engine reports not found.
	_, resp = call(t, server, "registry_registerCreator", registerCreatorParams{
		Caller:   creatorHex,
		Username: "alice",
	}, "")
	require.Nil(t, resp.Error)
	recorder, resp = call(t, server, "registry_adjustReputation", params, testToken)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Nil(t, resp.Error)
}

func TestOwnerOnlyEnforcedByEngine(t *testing.T) {
	server, _ := newTestServer(t)
	// The caller inside the payload must still be the contract owner even
	// when the bearer token is valid.
	recorder, resp := call(t, server, "gateway_setPlatformTreasury", setTreasuryParams{
		Caller:   fanHex,
		Treasury: treasuryHex,
	}, testToken)
	require.Equal(t, http.StatusForbidden, recorder.Code)
	require.Equal(t, codeUnauthorized, resp.Error.Code)

	recorder, resp = call(t, server, "gateway_setPlatformTreasury", setTreasuryParams{
		Caller:   ownerHex,
		Treasury: treasuryHex,
	}, testToken)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Nil(t, resp.Error)
}

func TestMethodRoutingTable(t *testing.T) {
	server, _ := newTestServer(t)
	for _, method := range []string{
		"registry_registerCreator", "registry_getCreator", "gateway_purchaseContent",
		"gateway_claimGift", "sub_createTier", "sub_totals",
	} {
		handler, _ := server.route(method)
		require.NotNil(t, handler, fmt.Sprintf("method %s must be routable", method))
	}
	handler, _ := server.route("gateway_unknown")
	require.Nil(t, handler)
}

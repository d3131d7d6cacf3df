package rpc

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stackstream/native/gateway"
	"stackstream/native/registry"
	"stackstream/native/subscription"
	"stackstream/observability"
)

const (
	jsonRPCVersion  = "2.0"
	maxRequestBytes = 1 << 20 // 1 MiB
)

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeUnauthorized   = -32001
	codeServerError    = -32000
	codeNotFound       = -32004
	codeConflict       = -32010
	codeInsufficient   = -32015
)

// Server exposes the settlement engines over JSON-RPC 2.0. Admin methods
// require the bearer token from STACKSTREAM_RPC_TOKEN.
type Server struct {
	registry     *registry.Engine
	gateway      *gateway.Engine
	subscription *subscription.Engine

	authToken string
	logger    *slog.Logger
}

// NewServer wires the three engines into one RPC surface.
func NewServer(reg *registry.Engine, gw *gateway.Engine, subs *subscription.Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		registry:     reg,
		gateway:      gw,
		subscription: subs,
		authToken:    strings.TrimSpace(os.Getenv("STACKSTREAM_RPC_TOKEN")),
		logger:       logger,
	}
}

// Handler returns the HTTP handler serving the RPC endpoint and the
// Prometheus metrics endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handle)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Start serves the RPC surface until the listener fails.
func (s *Server) Start(addr string) error {
	s.logger.Info("starting JSON-RPC server", "addr", addr)
	return http.ListenAndServe(addr, s.Handler())
}

type RPCRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      int               `json:"id"`
}

type RPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func writeError(w http.ResponseWriter, status int, id interface{}, code int, message string, data interface{}) {
	if status <= 0 {
		status = http.StatusBadRequest
	}
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	errObj := &RPCError{Code: code, Message: message}
	if data != nil {
		errObj.Data = data
	}
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Error: errObj}
	_ = json.NewEncoder(w).Encode(resp)
}

func writeResult(w http.ResponseWriter, id interface{}, result interface{}) {
	resp := RPCResponse{JSONRPC: jsonRPCVersion, ID: id, Result: result}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeEngineError translates module sentinel errors into RPC error codes.
func writeEngineError(w http.ResponseWriter, id interface{}, err error) {
	status := http.StatusInternalServerError
	code := codeServerError
	switch {
	case errors.Is(err, registry.ErrInvalidInput),
		errors.Is(err, gateway.ErrInvalidInput),
		errors.Is(err, subscription.ErrInvalidInput),
		errors.Is(err, subscription.ErrTierFull):
		status, code = http.StatusBadRequest, codeInvalidParams
	case errors.Is(err, registry.ErrNotFound),
		errors.Is(err, gateway.ErrNotFound),
		errors.Is(err, subscription.ErrNotFound),
		errors.Is(err, subscription.ErrSubscriptionExpired):
		status, code = http.StatusNotFound, codeNotFound
	case errors.Is(err, registry.ErrAlreadyExists),
		errors.Is(err, gateway.ErrAlreadyAccessed),
		errors.Is(err, subscription.ErrAlreadyExists):
		status, code = http.StatusConflict, codeConflict
	case errors.Is(err, registry.ErrOwnerOnly),
		errors.Is(err, registry.ErrUnauthorized),
		errors.Is(err, gateway.ErrOwnerOnly),
		errors.Is(err, gateway.ErrUnauthorized),
		errors.Is(err, subscription.ErrOwnerOnly):
		status, code = http.StatusForbidden, codeUnauthorized
	case errors.Is(err, registry.ErrInsufficientFunds),
		errors.Is(err, gateway.ErrInsufficientFunds),
		errors.Is(err, subscription.ErrInsufficientFunds):
		status, code = http.StatusPaymentRequired, codeInsufficient
	}
	writeError(w, status, id, code, err.Error(), nil)
}

func decodeParams(req *RPCRequest, out any) error {
	if len(req.Params) == 0 {
		return fmt.Errorf("params required")
	}
	return json.Unmarshal(req.Params[0], out)
}

type handlerFunc func(w http.ResponseWriter, req *RPCRequest)

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	defer func() {
		_ = reader.Close()
	}()

	w.Header().Set("Content-Type", "application/json")

	body, err := io.ReadAll(reader)
	if err != nil {
		status := http.StatusBadRequest
		message := "failed to read request body"
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			status = http.StatusRequestEntityTooLarge
			message = fmt.Sprintf("request body exceeds %d bytes", maxRequestBytes)
		}
		writeError(w, status, nil, codeInvalidRequest, message, err.Error())
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		writeError(w, http.StatusBadRequest, nil, codeInvalidRequest, "request body required", nil)
		return
	}

	req := &RPCRequest{}
	if err := json.Unmarshal(body, req); err != nil {
		writeError(w, http.StatusBadRequest, nil, codeParseError, "invalid JSON payload", err.Error())
		return
	}
	if req.JSONRPC != "" && req.JSONRPC != jsonRPCVersion {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "unsupported jsonrpc version", req.JSONRPC)
		return
	}
	if req.Method == "" {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidRequest, "method required", nil)
		return
	}

	handler, needsAuth := s.route(req.Method)
	if handler == nil {
		writeError(w, http.StatusNotFound, req.ID, codeMethodNotFound, "method not found", req.Method)
		return
	}
	if needsAuth {
		if authErr := s.requireAuth(r); authErr != nil {
			writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
			return
		}
	}

	start := time.Now()
	recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	handler(recorder, req)
	module, method := splitMethod(req.Method)
	observability.ModuleMetrics().Observe(module, method, recorder.status, time.Since(start))
}

func (s *Server) route(method string) (handlerFunc, bool) {
	switch method {
	case "registry_registerCreator":
		return s.handleRegisterCreator, false
	case "registry_updateProfile":
		return s.handleUpdateProfile, false
	case "registry_updateCategory":
		return s.handleUpdateCategory, false
	case "registry_verifyIdentity":
		return s.handleVerifyIdentity, false
	case "registry_refundVerificationStake":
		return s.handleRefundVerificationStake, false
	case "registry_addContent":
		return s.handleAddContent, false
	case "registry_toggleContentStatus":
		return s.handleToggleContentStatus, false
	case "registry_recordContentAccess":
		return s.handleRecordContentAccess, false
	case "registry_adjustReputation":
		return s.handleAdjustReputation, true
	case "registry_setPlatformTreasury":
		return s.handleRegistrySetTreasury, true
	case "registry_getCreator":
		return s.handleGetCreator, false
	case "registry_getCreatorByUsername":
		return s.handleGetCreatorByUsername, false
	case "registry_getContent":
		return s.handleGetContent, false
	case "registry_totalCreators":
		return s.handleTotalCreators, false
	case "registry_contentCount":
		return s.handleContentCount, false
	case "registry_badgeOwner":
		return s.handleBadgeOwner, false

	case "gateway_purchaseContent":
		return s.handlePurchaseContent, false
	case "gateway_purchaseBatch":
		return s.handlePurchaseBatch, false
	case "gateway_calculateBatchPrice":
		return s.handleCalculateBatchPrice, false
	case "gateway_createBundle":
		return s.handleCreateBundle, false
	case "gateway_purchaseBundle":
		return s.handlePurchaseBundle, false
	case "gateway_deactivateBundle":
		return s.handleDeactivateBundle, true
	case "gateway_giftContent":
		return s.handleGiftContent, false
	case "gateway_claimGift":
		return s.handleClaimGift, false
	case "gateway_verifyAccess":
		return s.handleVerifyAccess, false
	case "gateway_revokeAccess":
		return s.handleRevokeAccess, false
	case "gateway_hasValidAccess":
		return s.handleHasValidAccess, false
	case "gateway_getAccessToken":
		return s.handleGetAccessToken, false
	case "gateway_getUserAccessToken":
		return s.handleGetUserAccessToken, false
	case "gateway_userTransactions":
		return s.handleUserTransactions, false
	case "gateway_getTransaction":
		return s.handleGetTransaction, false
	case "gateway_getBundle":
		return s.handleGetBundle, false
	case "gateway_getGift":
		return s.handleGetGift, false
	case "gateway_stats":
		return s.handleGatewayStats, false
	case "gateway_creatorStats":
		return s.handleGatewayCreatorStats, false
	case "gateway_setPlatformTreasury":
		return s.handleGatewaySetTreasury, true

	case "sub_createTier":
		return s.handleCreateTier, false
	case "sub_subscribe":
		return s.handleSubscribe, false
	case "sub_cancel":
		return s.handleCancelSubscription, false
	case "sub_upgrade":
		return s.handleUpgradeSubscription, false
	case "sub_toggleAutoRenew":
		return s.handleToggleAutoRenew, false
	case "sub_checkAccess":
		return s.handleCheckSubscriptionAccess, false
	case "sub_isActive":
		return s.handleIsSubscriptionActive, false
	case "sub_getTier":
		return s.handleGetTier, false
	case "sub_getSubscription":
		return s.handleGetSubscription, false
	case "sub_creatorStats":
		return s.handleSubscriptionCreatorStats, false
	case "sub_referralEarnings":
		return s.handleReferralEarnings, false
	case "sub_totals":
		return s.handleSubscriptionTotals, false
	case "sub_deactivateTier":
		return s.handleDeactivateTier, true
	case "sub_setPlatformTreasury":
		return s.handleSubscriptionSetTreasury, true
	}
	return nil, false
}

func splitMethod(method string) (module, name string) {
	if idx := strings.IndexByte(method, '_'); idx > 0 {
		return method[:idx], method[idx+1:]
	}
	return "unknown", method
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) requireAuth(r *http.Request) *RPCError {
	if s.authToken == "" {
		return &RPCError{Code: codeUnauthorized, Message: "RPC authentication token not configured"}
	}
	header := r.Header.Get("Authorization")
	if header == "" {
		return &RPCError{Code: codeUnauthorized, Message: "missing Authorization header"}
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return &RPCError{Code: codeUnauthorized, Message: "Authorization header must use Bearer scheme"}
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		return &RPCError{Code: codeUnauthorized, Message: "missing bearer token"}
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.authToken)) != 1 {
		return &RPCError{Code: codeUnauthorized, Message: "invalid RPC credentials"}
	}
	return nil
}

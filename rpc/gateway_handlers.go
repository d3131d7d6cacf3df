package rpc

import (
	"net/http"

	"stackstream/native/gateway"
)

type purchaseContentParams struct {
	Buyer     string `json:"buyer"`
	Creator   string `json:"creator"`
	ContentID uint64 `json:"contentId"`
	Price     string `json:"price"`
}

type purchaseBatchParams struct {
	Buyer      string   `json:"buyer"`
	Creator    string   `json:"creator"`
	ContentIDs []uint64 `json:"contentIds"`
	TotalPrice string   `json:"totalPrice"`
}

type batchPriceParams struct {
	Count     uint64 `json:"count"`
	UnitPrice string `json:"unitPrice"`
}

type createBundleParams struct {
	Creator     string   `json:"creator"`
	ContentIDs  []uint64 `json:"contentIds"`
	Price       string   `json:"price"`
	DiscountBps uint64   `json:"discountBps"`
}

type bundleRefParams struct {
	Caller   string `json:"caller"`
	Creator  string `json:"creator"`
	BundleID uint64 `json:"bundleId"`
}

type giftContentParams struct {
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Creator   string `json:"creator"`
	ContentID uint64 `json:"contentId"`
	Price     string `json:"price"`
}

type claimGiftParams struct {
	Caller string `json:"caller"`
	Sender string `json:"sender"`
	GiftID uint64 `json:"giftId"`
}

type tokenRefParams struct {
	Caller  string `json:"caller"`
	TokenID uint64 `json:"tokenId"`
}

type accessQueryParams struct {
	User      string `json:"user"`
	Creator   string `json:"creator"`
	ContentID uint64 `json:"contentId"`
}

type tokenResult struct {
	ID          uint64 `json:"id"`
	Purchaser   string `json:"purchaser"`
	Creator     string `json:"creator"`
	ContentID   uint64 `json:"contentId"`
	Active      bool   `json:"active"`
	Price       string `json:"price"`
	PurchasedAt int64  `json:"purchasedAt"`
}

type transactionResult struct {
	ID         uint64   `json:"id"`
	Buyer      string   `json:"buyer"`
	Creator    string   `json:"creator"`
	ContentIDs []uint64 `json:"contentIds"`
	Total      string   `json:"total"`
	IsBatch    bool     `json:"isBatch"`
	Timestamp  int64    `json:"timestamp"`
}

type bundleResult struct {
	Creator     string   `json:"creator"`
	ID          uint64   `json:"id"`
	ContentIDs  []uint64 `json:"contentIds"`
	Price       string   `json:"price"`
	DiscountBps uint64   `json:"discountBps"`
	Active      bool     `json:"active"`
}

type giftResult struct {
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	ID        uint64 `json:"id"`
	Creator   string `json:"creator"`
	ContentID uint64 `json:"contentId"`
	Price     string `json:"price"`
	Claimed   bool   `json:"claimed"`
	SentAt    int64  `json:"sentAt"`
}

func formatToken(token *gateway.AccessToken) tokenResult {
	return tokenResult{
		ID:          token.ID,
		Purchaser:   formatAddress(token.Purchaser),
		Creator:     formatAddress(token.Creator),
		ContentID:   token.ContentID,
		Active:      token.Active,
		Price:       bigString(token.Price),
		PurchasedAt: token.PurchasedAt,
	}
}

func formatTransaction(tx *gateway.Transaction) transactionResult {
	return transactionResult{
		ID:         tx.ID,
		Buyer:      formatAddress(tx.Buyer),
		Creator:    formatAddress(tx.Creator),
		ContentIDs: tx.ContentIDs,
		Total:      bigString(tx.Total),
		IsBatch:    tx.IsBatch,
		Timestamp:  tx.Timestamp,
	}
}

func formatBundle(bundle *gateway.Bundle) bundleResult {
	return bundleResult{
		Creator:     formatAddress(bundle.Creator),
		ID:          bundle.ID,
		ContentIDs:  bundle.ContentIDs,
		Price:       bigString(bundle.Price),
		DiscountBps: bundle.DiscountBps,
		Active:      bundle.Active,
	}
}

func formatGift(gift *gateway.Gift) giftResult {
	return giftResult{
		Sender:    formatAddress(gift.Sender),
		Recipient: formatAddress(gift.Recipient),
		ID:        gift.ID,
		Creator:   formatAddress(gift.Creator),
		ContentID: gift.ContentID,
		Price:     bigString(gift.Price),
		Claimed:   gift.Claimed,
		SentAt:    gift.SentAt,
	}
}

func (s *Server) handlePurchaseContent(w http.ResponseWriter, req *RPCRequest) {
	var params purchaseContentParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	buyer, err := parseAddress(params.Buyer)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	creator, err := parseAddress(params.Creator)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	price, err := parseAmount(params.Price)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	tokenID, err := s.gateway.PurchaseContent(buyer, creator, params.ContentID, price)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]uint64{"tokenId": tokenID})
}

func (s *Server) handlePurchaseBatch(w http.ResponseWriter, req *RPCRequest) {
	var params purchaseBatchParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	buyer, err := parseAddress(params.Buyer)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	creator, err := parseAddress(params.Creator)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	total, err := parseAmount(params.TotalPrice)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	txID, err := s.gateway.PurchaseBatch(buyer, creator, params.ContentIDs, total)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]uint64{"transactionId": txID})
}

func (s *Server) handleCalculateBatchPrice(w http.ResponseWriter, req *RPCRequest) {
	var params batchPriceParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	unitPrice, err := parseAmount(params.UnitPrice)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	total := s.gateway.CalculateBatchPrice(params.Count, unitPrice)
	writeResult(w, req.ID, map[string]string{"total": bigString(total)})
}

func (s *Server) handleCreateBundle(w http.ResponseWriter, req *RPCRequest) {
	var params createBundleParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	creator, err := parseAddress(params.Creator)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	price, err := parseAmount(params.Price)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	bundleID, err := s.gateway.CreateBundle(creator, params.ContentIDs, price, params.DiscountBps)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]uint64{"bundleId": bundleID})
}

func (s *Server) handlePurchaseBundle(w http.ResponseWriter, req *RPCRequest) {
	var params bundleRefParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	buyer, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	creator, err := parseAddress(params.Creator)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	txID, err := s.gateway.PurchaseBundle(buyer, creator, params.BundleID)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]uint64{"transactionId": txID})
}

func (s *Server) handleDeactivateBundle(w http.ResponseWriter, req *RPCRequest) {
	var params bundleRefParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	creator, err := parseAddress(params.Creator)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.gateway.DeactivateBundle(caller, creator, params.BundleID); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleGiftContent(w http.ResponseWriter, req *RPCRequest) {
	var params giftContentParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	sender, err := parseAddress(params.Sender)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	recipient, err := parseAddress(params.Recipient)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	creator, err := parseAddress(params.Creator)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	price, err := parseAmount(params.Price)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	giftID, err := s.gateway.GiftContent(sender, recipient, creator, params.ContentID, price)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]uint64{"giftId": giftID})
}

func (s *Server) handleClaimGift(w http.ResponseWriter, req *RPCRequest) {
	var params claimGiftParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	sender, err := parseAddress(params.Sender)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	tokenID, err := s.gateway.ClaimGift(caller, sender, params.GiftID)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]uint64{"tokenId": tokenID})
}

func (s *Server) handleVerifyAccess(w http.ResponseWriter, req *RPCRequest) {
	var params tokenRefParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	active, err := s.gateway.VerifyAccess(caller, params.TokenID)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]bool{"active": active})
}

func (s *Server) handleRevokeAccess(w http.ResponseWriter, req *RPCRequest) {
	var params tokenRefParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.gateway.RevokeAccess(caller, params.TokenID); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleHasValidAccess(w http.ResponseWriter, req *RPCRequest) {
	var params accessQueryParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	user, err := parseAddress(params.User)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	creator, err := parseAddress(params.Creator)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	hasAccess, err := s.gateway.HasValidAccess(user, creator, params.ContentID)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]bool{"hasAccess": hasAccess})
}

func (s *Server) handleGetUserAccessToken(w http.ResponseWriter, req *RPCRequest) {
	var params accessQueryParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	user, err := parseAddress(params.User)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	creator, err := parseAddress(params.Creator)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	token, ok, err := s.gateway.GetUserAccessToken(user, creator, params.ContentID)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, req.ID, codeNotFound, "token not found", nil)
		return
	}
	writeResult(w, req.ID, formatToken(token))
}

func (s *Server) handleGetAccessToken(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		TokenID uint64 `json:"tokenId"`
	}
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	token, ok, err := s.gateway.GetAccessToken(params.TokenID)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, req.ID, codeNotFound, "token not found", nil)
		return
	}
	writeResult(w, req.ID, formatToken(token))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		TransactionID uint64 `json:"transactionId"`
	}
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	tx, ok, err := s.gateway.GetTransaction(params.TransactionID)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, req.ID, codeNotFound, "transaction not found", nil)
		return
	}
	writeResult(w, req.ID, formatTransaction(tx))
}

func (s *Server) handleGetBundle(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Creator  string `json:"creator"`
		BundleID uint64 `json:"bundleId"`
	}
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	creator, err := parseAddress(params.Creator)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	bundle, ok, err := s.gateway.GetBundle(creator, params.BundleID)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, req.ID, codeNotFound, "bundle not found", nil)
		return
	}
	writeResult(w, req.ID, formatBundle(bundle))
}

func (s *Server) handleGetGift(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Sender    string `json:"sender"`
		Recipient string `json:"recipient"`
		GiftID    uint64 `json:"giftId"`
	}
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	sender, err := parseAddress(params.Sender)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	recipient, err := parseAddress(params.Recipient)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	gift, ok, err := s.gateway.GetGift(sender, recipient, params.GiftID)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, req.ID, codeNotFound, "gift not found", nil)
		return
	}
	writeResult(w, req.ID, formatGift(gift))
}

func (s *Server) handleGatewayStats(w http.ResponseWriter, req *RPCRequest) {
	total, err := s.gateway.TotalTransactions()
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	volume, err := s.gateway.TotalVolume()
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]string{
		"totalTransactions": formatUint(total),
		"totalVolume":       bigString(volume),
	})
}

func (s *Server) handleGatewayCreatorStats(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Creator string `json:"creator"`
	}
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	creator, err := parseAddress(params.Creator)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	stats, err := s.gateway.CreatorPaymentStats(creator)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]string{
		"transactions": formatUint(stats.Transactions),
		"revenue":      bigString(stats.Revenue),
		"contentSold":  formatUint(stats.ContentSold),
	})
}

func (s *Server) handleUserTransactions(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		User string `json:"user"`
	}
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	user, err := parseAddress(params.User)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	count, err := s.gateway.UserTransactionCount(user)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]uint64{"transactions": count})
}

func (s *Server) handleGatewaySetTreasury(w http.ResponseWriter, req *RPCRequest) {
	var params setTreasuryParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	treasury, err := parseAddress(params.Treasury)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.gateway.SetPlatformTreasury(caller, treasury); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

package rpc

import (
	"net/http"

	"stackstream/native/subscription"
)

type createTierParams struct {
	Creator        string `json:"creator"`
	Name           string `json:"name"`
	MonthlyPrice   string `json:"monthlyPrice"`
	Description    string `json:"description"`
	MaxSubscribers uint64 `json:"maxSubscribers"`
}

type subscribeParams struct {
	Subscriber string `json:"subscriber"`
	Creator    string `json:"creator"`
	Tier       string `json:"tier"`
	Referrer   string `json:"referrer,omitempty"`
}

type subscriptionRefParams struct {
	Subscriber string `json:"subscriber"`
	Creator    string `json:"creator"`
}

type upgradeParams struct {
	Subscriber string `json:"subscriber"`
	Creator    string `json:"creator"`
	Tier       string `json:"tier"`
}

type tierRefParams struct {
	Caller  string `json:"caller"`
	Creator string `json:"creator"`
	Name    string `json:"name"`
}

type tierResult struct {
	Creator            string `json:"creator"`
	Name               string `json:"name"`
	Level              uint8  `json:"level"`
	MonthlyPrice       string `json:"monthlyPrice"`
	Description        string `json:"description"`
	MaxSubscribers     uint64 `json:"maxSubscribers"`
	CurrentSubscribers uint64 `json:"currentSubscribers"`
	Active             bool   `json:"active"`
	CreatedAt          int64  `json:"createdAt"`
}

type subscriptionResult struct {
	Subscriber   string `json:"subscriber"`
	Creator      string `json:"creator"`
	TierName     string `json:"tierName"`
	TierLevel    uint8  `json:"tierLevel"`
	MonthlyPrice string `json:"monthlyPrice"`
	Active       bool   `json:"active"`
	AutoRenew    bool   `json:"autoRenew"`
	Referrer     string `json:"referrer,omitempty"`
	StartedAt    int64  `json:"startedAt"`
}

func formatTier(tier *subscription.Tier) tierResult {
	return tierResult{
		Creator:            formatAddress(tier.Creator),
		Name:               tier.Name,
		Level:              tier.Level,
		MonthlyPrice:       bigString(tier.MonthlyPrice),
		Description:        tier.Description,
		MaxSubscribers:     tier.MaxSubscribers,
		CurrentSubscribers: tier.CurrentSubscribers,
		Active:             tier.Active,
		CreatedAt:          tier.CreatedAt,
	}
}

func formatSubscription(sub *subscription.Subscription) subscriptionResult {
	result := subscriptionResult{
		Subscriber:   formatAddress(sub.Subscriber),
		Creator:      formatAddress(sub.Creator),
		TierName:     sub.TierName,
		TierLevel:    sub.TierLevel,
		MonthlyPrice: bigString(sub.MonthlyPrice),
		Active:       sub.Active,
		AutoRenew:    sub.AutoRenew,
		StartedAt:    sub.StartedAt,
	}
	var zero [20]byte
	if sub.Referrer != zero {
		result.Referrer = formatAddress(sub.Referrer)
	}
	return result
}

func (s *Server) handleCreateTier(w http.ResponseWriter, req *RPCRequest) {
	var params createTierParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	creator, err := parseAddress(params.Creator)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	price, err := parseAmount(params.MonthlyPrice)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	level, err := s.subscription.CreateTier(creator, params.Name, price, params.Description, params.MaxSubscribers)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]uint8{"level": level})
}

func (s *Server) handleSubscribe(w http.ResponseWriter, req *RPCRequest) {
	var params subscribeParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	subscriber, err := parseAddress(params.Subscriber)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	creator, err := parseAddress(params.Creator)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	referrer, err := parseOptionalAddress(params.Referrer)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.subscription.Subscribe(subscriber, creator, params.Tier, referrer); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleCancelSubscription(w http.ResponseWriter, req *RPCRequest) {
	var params subscriptionRefParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	subscriber, err := parseAddress(params.Subscriber)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	creator, err := parseAddress(params.Creator)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.subscription.CancelSubscription(subscriber, creator); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleUpgradeSubscription(w http.ResponseWriter, req *RPCRequest) {
	var params upgradeParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	subscriber, err := parseAddress(params.Subscriber)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	creator, err := parseAddress(params.Creator)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.subscription.UpgradeSubscription(subscriber, creator, params.Tier); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleToggleAutoRenew(w http.ResponseWriter, req *RPCRequest) {
	var params subscriptionRefParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	subscriber, err := parseAddress(params.Subscriber)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	creator, err := parseAddress(params.Creator)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	autoRenew, err := s.subscription.ToggleAutoRenew(subscriber, creator)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]bool{"autoRenew": autoRenew})
}

func (s *Server) handleCheckSubscriptionAccess(w http.ResponseWriter, req *RPCRequest) {
	var params subscriptionRefParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	subscriber, err := parseAddress(params.Subscriber)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	creator, err := parseAddress(params.Creator)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.subscription.CheckSubscriptionAccess(subscriber, creator); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]bool{"access": true})
}

func (s *Server) handleIsSubscriptionActive(w http.ResponseWriter, req *RPCRequest) {
	var params subscriptionRefParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	subscriber, err := parseAddress(params.Subscriber)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	creator, err := parseAddress(params.Creator)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	active, err := s.subscription.IsSubscriptionActive(subscriber, creator)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]bool{"active": active})
}

func (s *Server) handleGetTier(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Creator string `json:"creator"`
		Name    string `json:"name"`
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
	tier, ok, err := s.subscription.GetTier(creator, params.Name)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, req.ID, codeNotFound, "tier not found", nil)
		return
	}
	writeResult(w, req.ID, formatTier(tier))
}

func (s *Server) handleGetSubscription(w http.ResponseWriter, req *RPCRequest) {
	var params subscriptionRefParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	subscriber, err := parseAddress(params.Subscriber)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	creator, err := parseAddress(params.Creator)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	sub, ok, err := s.subscription.GetSubscription(subscriber, creator)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, req.ID, codeNotFound, "subscription not found", nil)
		return
	}
	writeResult(w, req.ID, formatSubscription(sub))
}

func (s *Server) handleSubscriptionCreatorStats(w http.ResponseWriter, req *RPCRequest) {
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
	stats, err := s.subscription.CreatorSubscriptionStats(creator)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]string{
		"totalSubscribers":  formatUint(stats.TotalSubscribers),
		"activeSubscribers": formatUint(stats.ActiveSubscribers),
		"totalRevenue":      bigString(stats.TotalRevenue),
		"tiersCreated":      formatUint(stats.TiersCreated),
	})
}

func (s *Server) handleReferralEarnings(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Referrer string `json:"referrer"`
	}
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	referrer, err := parseAddress(params.Referrer)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	stats, err := s.subscription.ReferralEarnings(referrer)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]string{
		"referrals": formatUint(stats.Referrals),
		"earned":    bigString(stats.Earned),
	})
}

func (s *Server) handleSubscriptionTotals(w http.ResponseWriter, req *RPCRequest) {
	total, err := s.subscription.TotalSubscriptions()
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	active, err := s.subscription.TotalActiveSubscriptions()
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]uint64{
		"total":  total,
		"active": active,
	})
}

func (s *Server) handleDeactivateTier(w http.ResponseWriter, req *RPCRequest) {
	var params tierRefParams
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
	if err := s.subscription.DeactivateTier(caller, creator, params.Name); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleSubscriptionSetTreasury(w http.ResponseWriter, req *RPCRequest) {
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
	if err := s.subscription.SetPlatformTreasury(caller, treasury); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

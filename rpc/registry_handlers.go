package rpc

import (
	"encoding/hex"
	"net/http"

	"stackstream/native/registry"
)

type registerCreatorParams struct {
	Caller    string `json:"caller"`
	Username  string `json:"username"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatarUrl"`
}

type updateProfileParams struct {
	Caller    string `json:"caller"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatarUrl"`
}

type updateCategoryParams struct {
	Caller   string `json:"caller"`
	Category string `json:"category"`
}

type callerParams struct {
	Caller string `json:"caller"`
}

type addContentParams struct {
	Caller      string `json:"caller"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Hash        string `json:"hash"`
	Price       string `json:"price"`
}

type contentRefParams struct {
	Caller    string `json:"caller"`
	Creator   string `json:"creator"`
	ContentID uint64 `json:"contentId"`
}

type recordAccessParams struct {
	Caller       string `json:"caller"`
	Creator      string `json:"creator"`
	ContentID    uint64 `json:"contentId"`
	CreatorShare string `json:"creatorShare"`
}

type adjustReputationParams struct {
	Caller  string `json:"caller"`
	Creator string `json:"creator"`
	Score   uint64 `json:"score"`
}

type setTreasuryParams struct {
	Caller   string `json:"caller"`
	Treasury string `json:"treasury"`
}

type profileResult struct {
	Address           string `json:"address"`
	Username          string `json:"username"`
	Bio               string `json:"bio"`
	AvatarURL         string `json:"avatarUrl"`
	Category          string `json:"category"`
	Verified          bool   `json:"verified"`
	ReputationScore   uint64 `json:"reputationScore"`
	TotalContent      uint64 `json:"totalContent"`
	TotalRevenue      string `json:"totalRevenue"`
	RegisteredAt      int64  `json:"registeredAt"`
	VerificationStake string `json:"verificationStake"`
}

type contentResult struct {
	Creator     string `json:"creator"`
	ID          uint64 `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Hash        string `json:"hash"`
	Price       string `json:"price"`
	Active      bool   `json:"active"`
	AccessCount uint64 `json:"accessCount"`
	Revenue     string `json:"revenue"`
}

func formatProfile(profile *registry.Profile) profileResult {
	return profileResult{
		Address:           formatAddress(profile.Address),
		Username:          profile.Username,
		Bio:               profile.Bio,
		AvatarURL:         profile.AvatarURL,
		Category:          profile.Category,
		Verified:          profile.Verified,
		ReputationScore:   profile.ReputationScore,
		TotalContent:      profile.TotalContent,
		TotalRevenue:      bigString(profile.TotalRevenue),
		RegisteredAt:      profile.RegisteredAt,
		VerificationStake: bigString(profile.VerificationStake),
	}
}

func formatContent(content *registry.Content) contentResult {
	return contentResult{
		Creator:     formatAddress(content.Creator),
		ID:          content.ID,
		Title:       content.Title,
		Description: content.Description,
		Hash:        "0x" + hex.EncodeToString(content.Hash[:]),
		Price:       bigString(content.Price),
		Active:      content.Active,
		AccessCount: content.AccessCount,
		Revenue:     bigString(content.Revenue),
	}
}

func (s *Server) handleRegisterCreator(w http.ResponseWriter, req *RPCRequest) {
	var params registerCreatorParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	profile, err := s.registry.RegisterCreator(caller, params.Username, params.Bio, params.AvatarURL)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, formatProfile(profile))
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, req *RPCRequest) {
	var params updateProfileParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	profile, err := s.registry.UpdateProfile(caller, params.Bio, params.AvatarURL)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, formatProfile(profile))
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, req *RPCRequest) {
	var params updateCategoryParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	profile, err := s.registry.UpdateCategory(caller, params.Category)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, formatProfile(profile))
}

func (s *Server) handleVerifyIdentity(w http.ResponseWriter, req *RPCRequest) {
	var params callerParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	badgeID, err := s.registry.VerifyIdentity(caller)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]uint64{"badgeId": badgeID})
}

func (s *Server) handleRefundVerificationStake(w http.ResponseWriter, req *RPCRequest) {
	var params callerParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	profile, err := s.registry.RefundVerificationStake(caller)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, formatProfile(profile))
}

func (s *Server) handleAddContent(w http.ResponseWriter, req *RPCRequest) {
	var params addContentParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	hash, err := parseHash(params.Hash)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	price, err := parseAmount(params.Price)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	contentID, err := s.registry.AddContent(caller, params.Title, params.Description, hash, price)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]uint64{"contentId": contentID})
}

func (s *Server) handleToggleContentStatus(w http.ResponseWriter, req *RPCRequest) {
	var params contentRefParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	active, err := s.registry.ToggleContentStatus(caller, params.ContentID)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]bool{"active": active})
}

func (s *Server) handleRecordContentAccess(w http.ResponseWriter, req *RPCRequest) {
	var params recordAccessParams
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
	share, err := parseAmount(params.CreatorShare)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.registry.RecordContentAccess(caller, creator, params.ContentID, share); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleAdjustReputation(w http.ResponseWriter, req *RPCRequest) {
	var params adjustReputationParams
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
	if err := s.registry.AdjustCreatorReputation(caller, creator, params.Score); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleRegistrySetTreasury(w http.ResponseWriter, req *RPCRequest) {
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
	if err := s.registry.SetPlatformTreasury(caller, treasury); err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleGetCreator(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Address string `json:"address"`
	}
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	addr, err := parseAddress(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	profile, ok, err := s.registry.GetCreator(addr)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, req.ID, codeNotFound, "creator not found", nil)
		return
	}
	writeResult(w, req.ID, formatProfile(profile))
}

func (s *Server) handleGetCreatorByUsername(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Username string `json:"username"`
	}
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	profile, ok, err := s.registry.GetCreatorByUsername(params.Username)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, req.ID, codeNotFound, "creator not found", nil)
		return
	}
	writeResult(w, req.ID, formatProfile(profile))
}

func (s *Server) handleGetContent(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Creator   string `json:"creator"`
		ContentID uint64 `json:"contentId"`
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
	content, ok, err := s.registry.GetContent(creator, params.ContentID)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, req.ID, codeNotFound, "content not found", nil)
		return
	}
	writeResult(w, req.ID, formatContent(content))
}

func (s *Server) handleTotalCreators(w http.ResponseWriter, req *RPCRequest) {
	total, err := s.registry.TotalCreators()
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]uint64{"totalCreators": total})
}

func (s *Server) handleContentCount(w http.ResponseWriter, req *RPCRequest) {
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
	count, err := s.registry.CreatorContentCount(creator)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]uint64{"contentCount": count})
}

func (s *Server) handleBadgeOwner(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		BadgeID uint64 `json:"badgeId"`
	}
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	owner, ok, err := s.registry.BadgeOwner(params.BadgeID)
	if err != nil {
		writeEngineError(w, req.ID, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, req.ID, codeNotFound, "badge not found", nil)
		return
	}
	writeResult(w, req.ID, map[string]string{"owner": formatAddress(owner)})
}

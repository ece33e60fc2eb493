package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"

	"code.trustnet.io/repmarket/logging"
	"code.trustnet.io/repmarket/market"
	"code.trustnet.io/repmarket/types"
	"code.trustnet.io/repmarket/types/num"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("failed to write response", logging.Error(err))
	}
}

// writeError maps the engine's error taxonomy onto HTTP statuses: not-found
// errors to 404, authorization to 403, state conflicts to 409, economic
// guards and bad requests to 422/400.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, types.ErrMarketDoesNotExist),
		errors.Is(err, types.ErrInvalidProfileID):
		status = http.StatusNotFound
	case errors.Is(err, types.ErrMarketAlreadyExists),
		errors.Is(err, types.ErrInactiveMarket),
		errors.Is(err, types.ErrMarketNotGraduated),
		errors.Is(err, types.ErrPaused):
		status = http.StatusConflict
	case errors.Is(err, types.ErrUnauthorizedGraduation),
		errors.Is(err, types.ErrUnauthorizedWithdrawal),
		errors.Is(err, types.ErrUnauthorizedDonationUpdate),
		errors.Is(err, types.ErrUnauthorizedAdminAction):
		status = http.StatusForbidden
	case errors.Is(err, types.ErrInsufficientFunds),
		errors.Is(err, types.ErrInsufficientVotesOwned),
		errors.Is(err, types.ErrInsufficientVotesToSell),
		errors.Is(err, types.ErrNoFundsToWithdraw),
		errors.Is(err, types.ErrInsufficientInitialLiquidity):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, types.ErrInvalidMarketConfigOption),
		errors.Is(err, types.ErrZeroAddressNotAllowed),
		errors.Is(err, types.ErrLastMarketConfig):
		status = http.StatusBadRequest
	}
	var slippageErr *types.SlippageLimitExceededError
	if errors.As(err, &slippageErr) {
		status = http.StatusUnprocessableEntity
	}
	var creationErr *types.MarketCreationUnauthorizedError
	if errors.As(err, &creationErr) {
		status = http.StatusForbidden
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

func (s *Server) profileParam(w http.ResponseWriter, ps httprouter.Params) (uint64, bool) {
	id, err := strconv.ParseUint(ps.ByName("profile"), 10, 64)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid profile id"})
		return 0, false
	}
	return id, true
}

func (s *Server) outcomeParam(w http.ResponseWriter, raw string) (types.Outcome, bool) {
	outcome, err := types.ParseOutcome(raw)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return 0, false
	}
	return outcome, true
}

func parseAmount(raw string) (*num.Uint, bool) {
	u, overflow := num.UintFromString(raw, 10)
	return u, !overflow
}

type marketResponse struct {
	ProfileID        uint64 `json:"profileId"`
	TrustVotes       uint64 `json:"trustVotes"`
	DistrustVotes    uint64 `json:"distrustVotes"`
	Reserve          string `json:"reserve"`
	State            string `json:"state"`
	InitialLiquidity string `json:"initialLiquidity"`
	InitialVotes     uint64 `json:"initialVotes"`
}

func toMarketResponse(m *types.Market) marketResponse {
	return marketResponse{
		ProfileID:        m.ProfileID,
		TrustVotes:       m.TrustVotes,
		DistrustVotes:    m.DistrustVotes,
		Reserve:          m.Reserve.String(),
		State:            m.State().String(),
		InitialLiquidity: m.Config.InitialLiquidity.String(),
		InitialVotes:     m.Config.InitialVotes,
	}
}

type buyResponse struct {
	VotesBought uint64 `json:"votesBought"`
	Cost        string `json:"cost"`
	EntryFee    string `json:"entryFee"`
	Donation    string `json:"donation"`
	Refund      string `json:"refund"`
	NewPrice    string `json:"newPrice"`
	MinPrice    string `json:"minPrice"`
	MaxPrice    string `json:"maxPrice"`
}

func toBuyResponse(r *market.BuyResult) buyResponse {
	return buyResponse{
		VotesBought: r.VotesBought,
		Cost:        r.Cost.String(),
		EntryFee:    r.EntryFee.String(),
		Donation:    r.Donation.String(),
		Refund:      r.Refund.String(),
		NewPrice:    r.NewPrice.String(),
		MinPrice:    r.MinPrice.String(),
		MaxPrice:    r.MaxPrice.String(),
	}
}

type sellResponse struct {
	VotesSold uint64 `json:"votesSold"`
	Proceeds  string `json:"proceeds"`
	ExitFee   string `json:"exitFee"`
	Payout    string `json:"payout"`
	NewPrice  string `json:"newPrice"`
	MinPrice  string `json:"minPrice"`
	MaxPrice  string `json:"maxPrice"`
}

func toSellResponse(r *market.SellResult) sellResponse {
	return sellResponse{
		VotesSold: r.VotesSold,
		Proceeds:  r.Proceeds.String(),
		ExitFee:   r.ExitFee.String(),
		Payout:    r.Payout.String(),
		NewPrice:  r.NewPrice.String(),
		MinPrice:  r.MinPrice.String(),
		MaxPrice:  r.MaxPrice.String(),
	}
}

type createMarketRequest struct {
	Party       string `json:"party"`
	ConfigIndex int    `json:"configIndex"`
}

func (s *Server) createMarket(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req := createMarketRequest{}
	if !s.decode(w, r, &req) {
		return
	}
	mkt, err := s.engine.CreateMarketWithConfig(r.Context(), req.Party, req.ConfigIndex)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toMarketResponse(mkt))
}

type createMarketAdminRequest struct {
	Party       string `json:"party"`
	MarketOwner string `json:"marketOwner"`
	ConfigIndex int    `json:"configIndex"`
}

func (s *Server) createMarketAdmin(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req := createMarketAdminRequest{}
	if !s.decode(w, r, &req) {
		return
	}
	mkt, err := s.engine.CreateMarketWithConfigAdmin(r.Context(), req.Party, req.MarketOwner, req.ConfigIndex)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toMarketResponse(mkt))
}

func (s *Server) listMarkets(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	s.writeJSON(w, http.StatusOK, s.engine.MarketProfileIDs())
}

func (s *Server) getMarket(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	id, ok := s.profileParam(w, ps)
	if !ok {
		return
	}
	mkt, err := s.engine.GetMarket(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toMarketResponse(mkt))
}

func (s *Server) votePrice(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	id, ok := s.profileParam(w, ps)
	if !ok {
		return
	}
	outcome, ok := s.outcomeParam(w, ps.ByName("outcome"))
	if !ok {
		return
	}
	price, err := s.engine.VotePrice(id, outcome)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"price": price.String()})
}

func (s *Server) userVotes(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	id, ok := s.profileParam(w, ps)
	if !ok {
		return
	}
	p, err := s.engine.GetUserVotes(ps.ByName("holder"), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]uint64{
		"trustHeld":    p.TrustHeld,
		"distrustHeld": p.DistrustHeld,
	})
}

func (s *Server) participants(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	id, ok := s.profileParam(w, ps)
	if !ok {
		return
	}
	holders, err := s.engine.Participants(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	count, _ := s.engine.ParticipantCount(id)
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":   count,
		"holders": holders,
	})
}

type buyRequest struct {
	Party         string `json:"party"`
	Outcome       string `json:"outcome"`
	Funds         string `json:"funds"`
	ExpectedVotes uint64 `json:"expectedVotes"`
	SlippageBps   uint64 `json:"slippageBps"`
}

func (s *Server) buy(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	s.handleBuy(w, r, ps, false)
}

func (s *Server) simulateBuy(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	s.handleBuy(w, r, ps, true)
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request, ps httprouter.Params, simulate bool) {
	id, ok := s.profileParam(w, ps)
	if !ok {
		return
	}
	req := buyRequest{}
	if !s.decode(w, r, &req) {
		return
	}
	outcome, ok := s.outcomeParam(w, req.Outcome)
	if !ok {
		return
	}
	funds, ok := parseAmount(req.Funds)
	if !ok {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid funds amount"})
		return
	}
	var (
		res *market.BuyResult
		err error
	)
	if simulate {
		res, err = s.engine.SimulateBuy(req.Party, id, outcome, funds, req.ExpectedVotes, req.SlippageBps)
	} else {
		res, err = s.engine.BuyVotes(r.Context(), req.Party, id, outcome, funds, req.ExpectedVotes, req.SlippageBps)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toBuyResponse(res))
}

type sellRequest struct {
	Party   string `json:"party"`
	Outcome string `json:"outcome"`
	Votes   uint64 `json:"votes"`
}

func (s *Server) sell(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	s.handleSell(w, r, ps, false)
}

func (s *Server) simulateSell(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	s.handleSell(w, r, ps, true)
}

func (s *Server) handleSell(w http.ResponseWriter, r *http.Request, ps httprouter.Params, simulate bool) {
	id, ok := s.profileParam(w, ps)
	if !ok {
		return
	}
	req := sellRequest{}
	if !s.decode(w, r, &req) {
		return
	}
	outcome, ok := s.outcomeParam(w, req.Outcome)
	if !ok {
		return
	}
	var (
		res *market.SellResult
		err error
	)
	if simulate {
		res, err = s.engine.SimulateSell(req.Party, id, outcome, req.Votes)
	} else {
		res, err = s.engine.SellVotes(r.Context(), req.Party, id, outcome, req.Votes)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toSellResponse(res))
}

type partyRequest struct {
	Party string `json:"party"`
}

func (s *Server) graduate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := s.profileParam(w, ps)
	if !ok {
		return
	}
	req := partyRequest{}
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.engine.GraduateMarket(r.Context(), req.Party, id); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "graduated"})
}

func (s *Server) withdraw(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := s.profileParam(w, ps)
	if !ok {
		return
	}
	req := partyRequest{}
	if !s.decode(w, r, &req) {
		return
	}
	amount, err := s.engine.WithdrawGraduatedMarketFunds(r.Context(), req.Party, id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"amount": amount.String()})
}

type donationRecipientRequest struct {
	Party     string `json:"party"`
	Recipient string `json:"recipient"`
}

func (s *Server) updateDonationRecipient(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, ok := s.profileParam(w, ps)
	if !ok {
		return
	}
	req := donationRecipientRequest{}
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.engine.UpdateDonationRecipient(r.Context(), req.Party, id, req.Recipient); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"recipient": req.Recipient})
}

func (s *Server) withdrawDonations(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req := partyRequest{}
	if !s.decode(w, r, &req) {
		return
	}
	amount, err := s.engine.WithdrawDonations(r.Context(), req.Party)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"amount": amount.String()})
}

func (s *Server) recentActivity(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid limit"})
			return
		}
		limit = n
	}
	if s.activity == nil {
		s.writeJSON(w, http.StatusOK, []struct{}{})
		return
	}
	s.writeJSON(w, http.StatusOK, s.activity.Recent(limit))
}

func (s *Server) feeConfig(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	fees := s.engine.FeeConfig()
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"entryBps":           fees.EntryBps,
		"exitBps":            fees.ExitBps,
		"donationBps":        fees.DonationBps,
		"protocolFeeAddress": fees.ProtocolFeeAddress,
	})
}

type configResponse struct {
	Index            int    `json:"index"`
	InitialLiquidity string `json:"initialLiquidity"`
	InitialVotes     uint64 `json:"initialVotes"`
}

func (s *Server) listConfigs(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	cfgs := s.engine.MarketConfigs()
	out := make([]configResponse, 0, len(cfgs))
	for i, c := range cfgs {
		out = append(out, configResponse{
			Index:            i,
			InitialLiquidity: c.InitialLiquidity.String(),
			InitialVotes:     c.InitialVotes,
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

type addConfigRequest struct {
	Party            string `json:"party"`
	InitialLiquidity string `json:"initialLiquidity"`
	InitialVotes     uint64 `json:"initialVotes"`
}

func (s *Server) addConfig(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req := addConfigRequest{}
	if !s.decode(w, r, &req) {
		return
	}
	liquidity, ok := parseAmount(req.InitialLiquidity)
	if !ok {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid liquidity amount"})
		return
	}
	idx, err := s.engine.AddMarketConfig(r.Context(), req.Party, liquidity, req.InitialVotes)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]int{"index": idx})
}

func (s *Server) removeConfig(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	idx, err := strconv.Atoi(ps.ByName("index"))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid config index"})
		return
	}
	req := partyRequest{}
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.engine.RemoveMarketConfig(r.Context(), req.Party, idx); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

type setBpsRequest struct {
	Party string `json:"party"`
	Bps   uint64 `json:"bps"`
}

func (s *Server) setEntryFee(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req := setBpsRequest{}
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.engine.SetEntryProtocolFeeBasisPoints(r.Context(), req.Party, req.Bps); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]uint64{"entryBps": req.Bps})
}

func (s *Server) setExitFee(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req := setBpsRequest{}
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.engine.SetExitProtocolFeeBasisPoints(r.Context(), req.Party, req.Bps); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]uint64{"exitBps": req.Bps})
}

func (s *Server) setDonationFee(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req := setBpsRequest{}
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.engine.SetDonationBasisPoints(r.Context(), req.Party, req.Bps); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]uint64{"donationBps": req.Bps})
}

type setAddressRequest struct {
	Party   string `json:"party"`
	Address string `json:"address"`
}

func (s *Server) setFeeAddress(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req := setAddressRequest{}
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.engine.SetProtocolFeeAddress(r.Context(), req.Party, req.Address); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"protocolFeeAddress": req.Address})
}

type setEnforcementRequest struct {
	Party    string `json:"party"`
	Enforced bool   `json:"enforced"`
}

func (s *Server) setAllowlistEnforcement(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req := setEnforcementRequest{}
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.engine.SetAllowListEnforcement(req.Party, req.Enforced); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"enforced": req.Enforced})
}

type setAllowedRequest struct {
	Party     string `json:"party"`
	ProfileID uint64 `json:"profileId"`
	Allowed   bool   `json:"allowed"`
}

func (s *Server) setProfileAllowed(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	req := setAllowedRequest{}
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.engine.SetUserAllowedToCreateMarket(req.Party, req.ProfileID, req.Allowed); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"allowed": req.Allowed})
}

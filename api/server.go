// Package api exposes the engine over HTTP/JSON: the trade and query surface
// callers use, the admin surface operators use, and the activity feed
// off-process indexers tail.
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"code.trustnet.io/repmarket/logging"
	"code.trustnet.io/repmarket/market"
	"code.trustnet.io/repmarket/subscribers"
	"code.trustnet.io/repmarket/types"
	"code.trustnet.io/repmarket/types/num"
)

// MarketEngine is the engine surface the API serves.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/market_engine_mock.go -package mocks code.trustnet.io/repmarket/api MarketEngine
type MarketEngine interface {
	CreateMarketWithConfig(ctx context.Context, caller string, configIndex int) (*types.Market, error)
	CreateMarketWithConfigAdmin(ctx context.Context, caller, marketOwner string, configIndex int) (*types.Market, error)
	BuyVotes(ctx context.Context, caller string, profileID uint64, outcome types.Outcome, fundsSent *num.Uint, expectedVotes, slippageBps uint64) (*market.BuyResult, error)
	SellVotes(ctx context.Context, caller string, profileID uint64, outcome types.Outcome, count uint64) (*market.SellResult, error)
	SimulateBuy(caller string, profileID uint64, outcome types.Outcome, fundsSent *num.Uint, expectedVotes, slippageBps uint64) (*market.BuyResult, error)
	SimulateSell(caller string, profileID uint64, outcome types.Outcome, count uint64) (*market.SellResult, error)
	GraduateMarket(ctx context.Context, caller string, profileID uint64) error
	WithdrawGraduatedMarketFunds(ctx context.Context, caller string, profileID uint64) (*num.Uint, error)
	UpdateDonationRecipient(ctx context.Context, caller string, profileID uint64, newRecipient string) error
	WithdrawDonations(ctx context.Context, caller string) (*num.Uint, error)

	GetMarket(profileID uint64) (*types.Market, error)
	VotePrice(profileID uint64, outcome types.Outcome) (*num.Uint, error)
	GetUserVotes(holder string, profileID uint64) (types.Participant, error)
	ParticipantCount(profileID uint64) (int, error)
	Participants(profileID uint64) ([]string, error)
	MarketProfileIDs() []uint64
	MarketConfigs() []types.MarketConfig
	FeeConfig() types.FeeConfig

	AddMarketConfig(ctx context.Context, caller string, initialLiquidity *num.Uint, initialVotes uint64) (int, error)
	RemoveMarketConfig(ctx context.Context, caller string, index int) error
	SetEntryProtocolFeeBasisPoints(ctx context.Context, caller string, bps uint64) error
	SetExitProtocolFeeBasisPoints(ctx context.Context, caller string, bps uint64) error
	SetDonationBasisPoints(ctx context.Context, caller string, bps uint64) error
	SetProtocolFeeAddress(ctx context.Context, caller, address string) error
	SetAllowListEnforcement(caller string, enforced bool) error
	SetUserAllowedToCreateMarket(caller string, profileID uint64, allowed bool) error
}

// Server serves the engine over HTTP.
type Server struct {
	log      *logging.Logger
	cfg      Config
	engine   MarketEngine
	activity *subscribers.MarketActivity
	srv      *http.Server
}

// NewServer returns a server ready to Start. The activity subscriber may be
// nil, the feed endpoint then serves an empty list.
func NewServer(log *logging.Logger, cfg Config, engine MarketEngine, activity *subscribers.MarketActivity) *Server {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())
	return &Server{
		log:      log,
		cfg:      cfg,
		engine:   engine,
		activity: activity,
	}
}

func (s *Server) routes() *httprouter.Router {
	router := httprouter.New()

	router.POST("/api/v1/markets", s.createMarket)
	router.GET("/api/v1/markets", s.listMarkets)
	router.GET("/api/v1/markets/:profile", s.getMarket)
	router.GET("/api/v1/markets/:profile/price/:outcome", s.votePrice)
	router.GET("/api/v1/markets/:profile/votes/:holder", s.userVotes)
	router.GET("/api/v1/markets/:profile/participants", s.participants)
	router.POST("/api/v1/markets/:profile/buy", s.buy)
	router.POST("/api/v1/markets/:profile/sell", s.sell)
	router.POST("/api/v1/markets/:profile/simulate-buy", s.simulateBuy)
	router.POST("/api/v1/markets/:profile/simulate-sell", s.simulateSell)
	router.POST("/api/v1/markets/:profile/graduate", s.graduate)
	router.POST("/api/v1/markets/:profile/withdraw", s.withdraw)
	router.POST("/api/v1/markets/:profile/donation-recipient", s.updateDonationRecipient)
	router.POST("/api/v1/donations/withdraw", s.withdrawDonations)
	router.GET("/api/v1/activity", s.recentActivity)
	router.GET("/api/v1/fees", s.feeConfig)
	router.GET("/api/v1/configs", s.listConfigs)

	router.POST("/api/v1/admin/markets", s.createMarketAdmin)
	router.POST("/api/v1/admin/configs", s.addConfig)
	router.POST("/api/v1/admin/configs/:index/remove", s.removeConfig)
	router.POST("/api/v1/admin/fees/entry", s.setEntryFee)
	router.POST("/api/v1/admin/fees/exit", s.setExitFee)
	router.POST("/api/v1/admin/fees/donation", s.setDonationFee)
	router.POST("/api/v1/admin/fees/address", s.setFeeAddress)
	router.POST("/api/v1/admin/allowlist", s.setAllowlistEnforcement)
	router.POST("/api/v1/admin/allowlist/profiles", s.setProfileAllowed)

	return router
}

// Start runs the HTTP server until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.IP, s.cfg.Port)
	s.srv = &http.Server{
		Addr:    addr,
		Handler: s.routes(),
	}
	s.log.Info("api server started", logging.String("address", addr))

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout.Get())
		defer cancel()
		return s.srv.Shutdown(sctx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

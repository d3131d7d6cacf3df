package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"strings"

	"stackstream/config"
	"stackstream/core/events"
	coretypes "stackstream/core/types"
	"stackstream/native/gateway"
	"stackstream/native/registry"
	"stackstream/native/subscription"
	"stackstream/observability"
	"stackstream/observability/logging"
	"stackstream/rpc"
	"stackstream/state"
	"stackstream/storage"
)

// metricsEmitter forwards settlement events into the Prometheus counters and
// logs every emitted event.
type metricsEmitter struct {
	logger *slog.Logger
}

func (m metricsEmitter) Emit(evt events.Event) {
	carrier, ok := evt.(interface{ Event() *coretypes.Event })
	if !ok {
		return
	}
	payload := carrier.Event()
	if payload == nil {
		return
	}
	m.logger.Info("event emitted", slog.String("type", payload.Type))

	kind := settlementKind(payload.Type)
	if kind == "" {
		return
	}
	amount, ok := parseEventAmount(payload.Attributes)
	if !ok {
		return
	}
	observability.SettlementMetrics().RecordSettlement(kind, amount)
}

// parseEventAmount pulls the settled value out of an event's attributes.
func parseEventAmount(attrs map[string]string) (*big.Int, bool) {
	for _, key := range []string{"price", "total", "amount"} {
		raw, ok := attrs[key]
		if !ok {
			continue
		}
		value, ok := new(big.Int).SetString(raw, 10)
		if !ok {
			return nil, false
		}
		return value, true
	}
	return nil, false
}

func settlementKind(eventType string) string {
	switch eventType {
	case gateway.EventTypeContentPurchased:
		return "purchase"
	case gateway.EventTypeBatchPurchased:
		return "batch"
	case gateway.EventTypeBundlePurchased:
		return "bundle"
	case gateway.EventTypeGiftSent:
		return "gift"
	case subscription.EventTypeSubscribed:
		return "subscription"
	default:
		return ""
	}
}

func mustAddress(raw, field string) [20]byte {
	if strings.TrimSpace(raw) == "" {
		panic(fmt.Sprintf("config field %s is required", field))
	}
	addr, err := config.DecodeAddress(raw)
	if err != nil {
		panic(fmt.Sprintf("Failed to decode %s address: %v", field, err))
	}
	return addr
}

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("STACKSTREAM_ENV"))
	logger := logging.Setup("stackstreamd", env)

	cfg, err := config.Load(*configFile)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	var db storage.Database
	if strings.TrimSpace(cfg.DataDir) == "" {
		logger.Warn("no data directory configured, state will not survive restarts")
		db = storage.NewMemDB()
	} else {
		leveldb, err := storage.NewLevelDB(cfg.DataDir)
		if err != nil {
			panic(fmt.Sprintf("Failed to open database: %v", err))
		}
		db = leveldb
	}
	defer db.Close()

	manager := state.NewManager(db)
	emitter := metricsEmitter{logger: logger}

	owner := mustAddress(cfg.Owner, "Owner")
	treasury := mustAddress(cfg.Treasury, "Treasury")
	giftVault := mustAddress(cfg.GiftVault, "GiftVault")

	reg := registry.NewEngine()
	reg.SetState(manager)
	reg.SetEmitter(emitter)
	reg.SetParams(cfg.Params)
	reg.SetOwner(owner)
	reg.SetTreasury(treasury)

	gw := gateway.NewEngine()
	gw.SetState(manager)
	gw.SetEmitter(emitter)
	gw.SetParams(cfg.Params)
	gw.SetOwner(owner)
	gw.SetTreasury(treasury)
	gw.SetGiftVault(giftVault)

	subs := subscription.NewEngine()
	subs.SetState(manager)
	subs.SetEmitter(emitter)
	subs.SetParams(cfg.Params)
	subs.SetOwner(owner)
	subs.SetTreasury(treasury)

	server := rpc.NewServer(reg, gw, subs, logger)
	logger.Info("node configured",
		slog.String("treasury", cfg.Treasury),
		slog.String("rpc", cfg.RPCAddress),
	)
	if err := server.Start(cfg.RPCAddress); err != nil {
		logger.Error("RPC server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

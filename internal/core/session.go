package core

import (
	"log/slog"
	"sync"
	"time"

	"CanDash/internal/bus"
	"CanDash/internal/model"
	"CanDash/internal/vehicle"
)

// Session manages the lifecycle of one bridge run: the shared state, the
// transport, the handler with its loops and the optional monitor.
type Session struct {
	Cfg     *model.Config
	State   *vehicle.State
	Handler *Handler
	Monitor *Monitor

	log       *slog.Logger
	started   bool
	startLock sync.Mutex
}

// NewSession loads configuration from cfgPath (falling back to defaults
// when the file is missing) and constructs all components. The transport is
// chosen by the fallback chain: socketcan, then SLCAN, then disabled.
func NewSession(cfgPath string, log *slog.Logger) *Session {
	cfg, err := model.LoadConfig(cfgPath)
	if err != nil {
		log.Warn("config not loaded, using defaults", "path", cfgPath, "err", err)
		cfg = model.DefaultConfig()
	}

	state := vehicle.NewState()
	state.SetDebugMode(cfg.Debug)

	b, enabled := openBus(cfg.Bus, log)
	s := &Session{
		Cfg:     cfg,
		State:   state,
		Handler: NewHandler(state, b, enabled, time.Duration(cfg.TransmitIntervalMs)*time.Millisecond, log),
		log:     log,
	}
	if cfg.MonitorAddr != "" {
		s.Monitor = NewMonitor(cfg.MonitorAddr, state, time.Duration(cfg.MonitorIntervalMs)*time.Millisecond, log)
	}
	return s
}

// openBus walks the transport fallback chain. The returned flag is false
// only for the disabled bus, which the receiver treats as "no channel".
func openBus(cfg model.BusConfig, log *slog.Logger) (bus.Bus, bool) {
	if cfg.Interface != "" {
		b, err := bus.OpenSocketCAN(cfg.Interface)
		if err == nil {
			log.Info("bus initialized", "transport", "socketcan", "interface", cfg.Interface)
			return b, true
		}
		log.Warn("socketcan unavailable", "interface", cfg.Interface, "err", err)
	}
	if cfg.SlcanDevice != "" {
		b, err := bus.OpenSLCAN(cfg.SlcanDevice, cfg.SlcanBaud)
		if err == nil {
			log.Info("bus initialized", "transport", "slcan", "device", cfg.SlcanDevice)
			return b, true
		}
		log.Warn("slcan unavailable", "device", cfg.SlcanDevice, "err", err)
	}
	log.Warn("no bus channel available, running in simulation mode")
	return bus.NewDisabled(), false
}

// StartAll launches the handler loops and the monitor.
func (s *Session) StartAll() {
	s.startLock.Lock()
	defer s.startLock.Unlock()
	if s.started {
		return
	}
	s.Handler.Start()
	if s.Monitor != nil {
		s.Monitor.Start()
	}
	s.started = true
}

// StopAll stops everything gracefully; the bus is closed by the handler.
func (s *Session) StopAll() {
	s.startLock.Lock()
	defer s.startLock.Unlock()
	if !s.started {
		return
	}
	s.Handler.Stop()
	if s.Monitor != nil {
		s.Monitor.Stop()
	}
	s.started = false
}

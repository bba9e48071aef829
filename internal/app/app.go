package app

import (
	"context"
	"net/http"
	"time"

	"chatcore/internal/snapshotjob"
	"chatcore/pkg/banner"
	"chatcore/pkg/config"
	"chatcore/pkg/engine"
	"chatcore/pkg/logger"
	"chatcore/pkg/models"
	"chatcore/pkg/store"
)

// App wires the engine to the snapshot store, the simulator, the sweep
// job and the debug HTTP surface. The snapshot store must be opened
// before Run.
type App struct {
	eff     config.EffectiveConfigResult
	version string
	eng     *engine.Engine
}

func New(eff config.EffectiveConfigResult, version string) *App {
	return &App{eff: eff, version: version}
}

// Run hydrates the engine and blocks serving the debug surface until ctx
// is cancelled.
func (a *App) Run(ctx context.Context) error {
	banner.PrintWithEff(a.eff, a.version)

	a.eng = engine.New(engineConfig(a.eff.Config), store.Persist{})
	if err := a.hydrate(); err != nil {
		return err
	}
	a.eng.StartSimulator(ctx)

	cancelSweep, err := snapshotjob.Start(ctx, a.eff.Config)
	if err != nil {
		return err
	}
	defer cancelSweep()

	srv := &http.Server{Addr: a.eff.Addr, Handler: a.routes()}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()
	logger.Info("debug_server_listening", "addr", a.eff.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// hydrate loads the durable fields from the snapshot, seeding a demo
// dataset when the store is fresh.
func (a *App) hydrate() error {
	localID, err := store.LocalUserID()
	if err != nil {
		return err
	}
	if localID == "" {
		if err := a.seed(); err != nil {
			return err
		}
		localID, err = store.LocalUserID()
		if err != nil {
			return err
		}
	}

	users, err := store.ListUsers()
	if err != nil {
		return err
	}
	chats, err := store.ListChats()
	if err != nil {
		return err
	}
	logs := make(map[string][]models.Message, len(chats))
	for _, c := range chats {
		msgs, err := store.ListMessages(c.ID)
		if err != nil {
			return err
		}
		logs[c.ID] = msgs
	}
	return a.eng.Hydrate(localID, users, chats, logs)
}

func engineConfig(cfg *config.Config) engine.Config {
	s := cfg.Simulator
	return engine.Config{
		AckDelay:         time.Duration(s.AckDelayMs) * time.Millisecond,
		GroupCreateDelay: time.Duration(s.GroupCreateDelayMs) * time.Millisecond,
		TypingInterval:   time.Duration(s.TypingIntervalMs) * time.Millisecond,
		TypingStartProb:  s.TypingStartProb,
		TypingStopProb:   s.TypingStopProb,
		TypingMinDur:     time.Duration(s.TypingMinMs) * time.Millisecond,
		TypingMaxDur:     time.Duration(s.TypingMaxMs) * time.Millisecond,
		TypingRate:       s.TypingRatePerSec,
	}
}

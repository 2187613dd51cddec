package websocket

import (
	"fmt"
	"job-portal/pkg/logger"
	"time"

	"github.com/robfig/cron/v3"
)

type Pinger interface {
	PingAll() int
}

// KeepAlive sends a ping frame to every open connection on a fixed schedule.
// It never waits for a reply and never closes anything.
type KeepAlive struct {
	cron     *cron.Cron
	pinger   Pinger
	interval time.Duration
	log      logger.Logger
}

func NewKeepAlive(pinger Pinger, interval time.Duration, log logger.Logger) *KeepAlive {
	return &KeepAlive{
		cron:     cron.New(cron.WithSeconds()),
		pinger:   pinger,
		interval: interval,
		log:      log,
	}
}

func (k *KeepAlive) Start() error {
	k.log.Info("Starting keep-alive", "interval", k.interval.String())

	if _, err := k.cron.AddFunc(fmt.Sprintf("@every %s", k.interval), k.tick); err != nil {
		return fmt.Errorf("schedule keep-alive: %w", err)
	}

	k.cron.Start()
	return nil
}

func (k *KeepAlive) Stop() {
	k.log.Info("Stopping keep-alive")
	<-k.cron.Stop().Done()
}

func (k *KeepAlive) tick() {
	sent := k.pinger.PingAll()
	k.log.Debug("Keep-alive sent", "connections", sent)
}

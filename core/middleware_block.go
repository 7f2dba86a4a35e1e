package core

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/folio-sh/folio/notify"
	"github.com/folio-sh/folio/topk"
	"github.com/keilerkonzept/topk/sliding"
)

const (
	// blockDuration is how long an abusive client stays blocked once
	// flagged. Entries expire from the cache on their own.
	blockDuration = 1 * time.Hour
	blockCost     = 1
	blockKeyPre   = "blocked_ip:"

	sketchWindowTicks = 6
	sketchK           = 100
	sketchTickSize    = 1000
	sketchWidth       = 2048
	sketchDepth       = 3
)

// BlockIp flags clients that dominate the request stream within a
// sliding window and rejects their requests until the block expires.
// Detection runs whenever the feature is enabled; rejection only when
// it is also activated, so an operator can observe before enforcing.
type BlockIp struct {
	app    *App
	sketch *topk.Sketch
}

func NewBlockIp(app *App) *BlockIp {
	instance := sliding.New(sketchK, sketchWindowTicks,
		sliding.WithWidth(sketchWidth), sliding.WithDepth(sketchDepth))
	return &BlockIp{
		app:    app,
		sketch: topk.NewSketch(instance, sketchTickSize),
	}
}

// IsBlocked reports whether the IP currently has a block entry.
func (b *BlockIp) IsBlocked(ip string) bool {
	_, found := b.app.Cache().Get(blockKeyPre + ip)
	return found
}

// Block adds the IP to the blocklist with TTL.
func (b *BlockIp) Block(ip string) error {
	if ok := b.app.Cache().SetWithTTL(blockKeyPre+ip, true, blockCost, blockDuration); !ok {
		return ErrCacheRejected
	}
	// Make the block visible to the next request from this client.
	b.app.Cache().Wait()
	return nil
}

// Execute is the middleware entry point.
func (b *BlockIp) Execute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cfg := b.app.Config()
		if !cfg.BlockIp.Enabled {
			next.ServeHTTP(w, r)
			return
		}

		ip := b.app.GetClientIP(r)

		if cfg.BlockIp.Activated && b.IsBlocked(ip) {
			WriteJsonError(w, errorIpBlocked)
			return
		}

		for _, offender := range b.sketch.ProcessTick(ip) {
			if err := b.Block(offender); err != nil {
				b.app.Logger().Error("failed to block ip", "ip", offender, "err", err)
				continue
			}
			b.app.Logger().Warn("ip blocked for excessive requests", "ip", offender)
			if n := b.app.Notifier(); n != nil {
				_ = n.Send(r.Context(), notify.Notification{
					Timestamp: time.Now(),
					Type:      notify.AlarmNotification,
					Level:     slog.LevelWarn,
					Source:    "block_ip",
					Message:   "ip blocked for excessive requests",
					Fields:    map[string]any{"ip": offender},
				})
			}
		}

		next.ServeHTTP(w, r)
	})
}

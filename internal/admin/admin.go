package admin

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"WellnessTips_V1.0/internal/utility"
	"WellnessTips_V1.0/internal/wellness"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// Monitor reports host metrics and pushes periodic snapshots to websocket clients.
type Monitor struct {
	StartTime time.Time
	cache     *wellness.Cache
	hub       *utility.Hub
}

func NewMonitor(startTime time.Time, cache *wellness.Cache, hub *utility.Hub) *Monitor {
	return &Monitor{StartTime: startTime, cache: cache, hub: hub}
}

// ServerHealth collects system-level metrics. Collector failures leave the
// corresponding section empty instead of failing the request.
func (m *Monitor) ServerHealth() map[string]interface{} {
	runtimeInfo := map[string]interface{}{
		"uptime":     time.Since(m.StartTime).Round(time.Second).String(),
		"start_time": m.StartTime.Format(time.RFC3339),
		"goroutines": runtime.NumGoroutine(),
		"go_version": runtime.Version(),
	}
	if hInfo, err := host.Info(); err == nil {
		runtimeInfo["os"] = hInfo.OS
		runtimeInfo["platform"] = hInfo.Platform
		runtimeInfo["arch"] = hInfo.KernelArch
		runtimeInfo["hostname"] = hInfo.Hostname
	}

	cpuInfo := map[string]interface{}{"cores": runtime.NumCPU()}
	// Interval 0 compares against the previous call instead of blocking.
	if cpuPercent, err := cpu.Percent(0, false); err == nil && len(cpuPercent) > 0 {
		cpuInfo["usage_percent"] = fmt.Sprintf("%.2f%%", cpuPercent[0])
	}

	memInfo := map[string]interface{}{}
	if v, err := mem.VirtualMemory(); err == nil {
		memInfo["total_gb"] = fmt.Sprintf("%.2f GB", float64(v.Total)/1024/1024/1024)
		memInfo["used_gb"] = fmt.Sprintf("%.2f GB", float64(v.Used)/1024/1024/1024)
		memInfo["used_percent"] = fmt.Sprintf("%.2f%%", v.UsedPercent)
	}

	return map[string]interface{}{
		"status":  "online",
		"runtime": runtimeInfo,
		"cpu":     cpuInfo,
		"memory":  memInfo,
	}
}

// GetServerHealthHandler handles GET /admin/server
func (m *Monitor) GetServerHealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, m.ServerHealth())
}

// StartBroadcaster sends cache stats and server health to websocket
// clients every interval until ctx is done.
func (m *Monitor) StartBroadcaster(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Stats broadcaster stopped")
			return
		case <-ticker.C:
			// Only work if clients are actually online
			if m.hub.Count() == 0 {
				continue
			}
			m.hub.BroadcastJSON(map[string]interface{}{
				"type": "STATS_UPDATE",
				"data": map[string]interface{}{
					"cache":         m.cache.Stats(),
					"server_health": m.ServerHealth(),
				},
			})
		}
	}
}

// Package health reports dependency status and request statistics.
package health

import (
	"context"
	"encoding/json"
	"runtime"
	"strconv"
	"time"

	"parknet-backend/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// Pinger is satisfied by *sql.DB and *queue.Publisher.
type Pinger interface {
	Ping() error
}

type CollectResult struct {
	Status       string               `json:"status"`
	Runtime      RuntimeInfo          `json:"runtime"`
	Traffic      TrafficInfo          `json:"traffic"`
	Dependencies map[string]DepStatus `json:"dependencies"`
}

type RuntimeInfo struct {
	UptimeSeconds int64      `json:"uptimeSeconds"`
	Memory        MemoryInfo `json:"memory"`
	Goroutines    int        `json:"goroutines"`
	Platform      string     `json:"platform"`
	GoVersion     string     `json:"goVersion"`
}

type MemoryInfo struct {
	AllocMB    int `json:"allocMb"`
	HeapUsedMB int `json:"heapUsedMb"`
}

type TrafficInfo struct {
	TotalRequests   int         `json:"totalRequests"`
	SuccessCount    int         `json:"successCount"`
	FailedCount     int         `json:"failedCount"`
	SuccessRate     string      `json:"successRate"`
	AvgResponseTime interface{} `json:"avgResponseTime"`
	LastRequest     interface{} `json:"lastRequest"`
}

type DepStatus struct {
	Status string      `json:"status"`
	PingMs interface{} `json:"pingMs"`
}

// Collector gathers health data. Any dependency may be nil: database and redis
// then report "disconnected", the broker "disabled".
type Collector struct {
	Rdb    *redis.Client
	DB     Pinger
	Broker Pinger
}

func ping(p Pinger) DepStatus {
	if p == nil {
		return DepStatus{Status: "disconnected"}
	}
	start := time.Now()
	if err := p.Ping(); err != nil {
		return DepStatus{Status: "error"}
	}
	ms := time.Since(start).Milliseconds()
	return DepStatus{Status: "connected", PingMs: &ms}
}

// Collect returns "ok" when the database and redis are reachable. The broker is
// reported but only publishes events, so it does not degrade the status.
func (h *Collector) Collect(ctx context.Context) CollectResult {
	result := CollectResult{Dependencies: make(map[string]DepStatus)}
	result.Dependencies["database"] = ping(h.DB)

	broker := DepStatus{Status: "disabled"}
	if h.Broker != nil {
		broker = ping(h.Broker)
	}
	result.Dependencies["broker"] = broker

	stats := TrafficInfo{AvgResponseTime: 0, SuccessRate: "100"}
	startTimeMs := time.Now().UnixMilli()
	redisDep := DepStatus{Status: "disconnected"}
	if h.Rdb != nil {
		start := time.Now()
		if err := h.Rdb.Ping(ctx).Err(); err == nil {
			ms := time.Since(start).Milliseconds()
			redisDep = DepStatus{Status: "connected", PingMs: &ms}
			startTimeMs = h.readTraffic(ctx, &stats, startTimeMs)
		} else {
			redisDep.Status = "error"
		}
	}
	result.Dependencies["redis"] = redisDep
	result.Traffic = stats

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	uptime := (time.Now().UnixMilli() - startTimeMs) / 1000
	if uptime < 0 {
		uptime = 0
	}
	result.Runtime = RuntimeInfo{
		UptimeSeconds: uptime,
		Memory:        MemoryInfo{AllocMB: int(m.Alloc / 1024 / 1024), HeapUsedMB: int(m.HeapInuse / 1024 / 1024)},
		Goroutines:    runtime.NumGoroutine(),
		Platform:      runtime.GOOS + " (" + runtime.GOARCH + ")",
		GoVersion:     runtime.Version(),
	}

	result.Status = "issue"
	if result.Dependencies["database"].Status == "connected" && redisDep.Status == "connected" {
		result.Status = "ok"
	}
	return result
}

// readTraffic fills stats from the HealthMarker counters and returns the recorded
// start time, initialising it on first use.
func (h *Collector) readTraffic(ctx context.Context, stats *TrafficInfo, nowMs int64) int64 {
	vals, err := h.Rdb.MGet(ctx,
		middleware.KeyReqTotal, middleware.KeyReqErrors, middleware.KeyResTime,
		middleware.KeyResCount, middleware.KeyStartTime, middleware.KeyLastReq,
	).Result()
	if err != nil {
		return nowMs
	}
	str := func(i int) string {
		s, _ := vals[i].(string)
		return s
	}

	startMs := nowMs
	if t, err := strconv.ParseInt(str(4), 10, 64); err == nil {
		startMs = t
	} else {
		h.Rdb.Set(ctx, middleware.KeyStartTime, nowMs, 0)
	}

	stats.TotalRequests, _ = strconv.Atoi(str(0))
	stats.FailedCount, _ = strconv.Atoi(str(1))
	stats.SuccessCount = stats.TotalRequests - stats.FailedCount
	if stats.TotalRequests > 0 {
		stats.SuccessRate = strconv.FormatFloat(float64(stats.SuccessCount)/float64(stats.TotalRequests)*100, 'f', 1, 64)
	}
	timeSum, _ := strconv.ParseFloat(str(2), 64)
	count, _ := strconv.Atoi(str(3))
	if count > 0 {
		stats.AvgResponseTime = strconv.FormatFloat(timeSum/float64(count), 'f', 2, 64)
	}
	if last := str(5); last != "" {
		var lastReq map[string]interface{}
		if json.Unmarshal([]byte(last), &lastReq) == nil {
			stats.LastRequest = lastReq
		}
	}
	return startMs
}

// ResetKeys lists every statistics key cleared by a reset.
func ResetKeys() []string {
	return []string{
		middleware.KeyReqTotal, middleware.KeyReqErrors, middleware.KeyResTime,
		middleware.KeyResCount, middleware.KeyStartTime, middleware.KeyLastReq, middleware.KeyErrorLog,
	}
}

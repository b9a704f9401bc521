package reports

import (
	"context"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/barrosyan/sistema-pronto/config"
	"github.com/barrosyan/sistema-pronto/utils"
)

func reportCacheEnabled() bool {
	v := strings.TrimSpace(os.Getenv("ENABLE_REPORT_CACHE"))
	return v == "1" || strings.EqualFold(v, "true") || strings.EqualFold(v, "yes") || strings.EqualFold(v, "on")
}

func reportCacheTTL() time.Duration {
	// Env: REPORT_CACHE_TTL_SECONDS (default 120s)
	ttl := 120
	if v := strings.TrimSpace(os.Getenv("REPORT_CACHE_TTL_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ttl = n
		}
	}
	return time.Duration(ttl) * time.Second
}

func reportSlowMs() int64 {
	// Env: REPORT_SLOW_MS (default 500ms)
	ms := int64(500)
	if v := strings.TrimSpace(os.Getenv("REPORT_SLOW_MS")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			ms = n
		}
	}
	return ms
}

func logSlowReport(ctx context.Context, name string, started time.Time, extra map[string]any) {
	d := time.Since(started)
	if d.Milliseconds() < reportSlowMs() {
		return
	}
	userId, _ := utils.GetUserIdFromContext(ctx)
	cid, _ := utils.GetCorrelationIdFromContext(ctx)
	config.LogInfo(config.GetLogger(), "reports", name, "slow report", map[string]any{
		"ms":             d.Milliseconds(),
		"user_id":        userId,
		"correlation_id": cid,
		"extra":          extra,
	})
}

func ownerVersionKey(ownerId string) string {
	return "ReportVersion:" + ownerId
}

// InvalidateOwnerReports makes every cached report covering ownerId stale.
func InvalidateOwnerReports(ownerId string) {
	if !reportCacheEnabled() || ownerId == "" {
		return
	}
	if _, err := config.IncrRedisValue(ownerVersionKey(ownerId)); err != nil {
		config.LogError(config.GetLogger(), "reports", "InvalidateOwnerReports", "incr version", ownerId, err)
	}
}

// reportCacheKey embeds the data version of every owner so writes by any of
// them move the key.
func reportCacheKey(name string, ownerIds []string, params ...string) string {
	owners := append([]string(nil), ownerIds...)
	sort.Strings(owners)
	var b strings.Builder
	b.WriteString("Report:")
	b.WriteString(name)
	for _, id := range owners {
		version, _, _ := config.GetRedisValue(ownerVersionKey(id))
		b.WriteString(":")
		b.WriteString(id)
		b.WriteString("@")
		b.WriteString(version)
	}
	for _, p := range params {
		b.WriteString(":")
		b.WriteString(p)
	}
	return b.String()
}

func cacheGet[T any](key string, dest *T) (bool, error) {
	return config.GetRedisObject(key, dest)
}

func cacheSet(key string, obj any, ttl time.Duration) error {
	return config.SetRedisObject(key, obj, ttl)
}

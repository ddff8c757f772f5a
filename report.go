package tiercache

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/dustin/go-humanize"
)

// TierReport is one tier's slice of the performance report.
type TierReport struct {
	Name          string
	Metrics       TierMetricsSnapshot
	HitRate       float64
	CapacityBytes int64
	Utilization   float64 // SizeBytes / CapacityBytes
}

// KeyAccess ranks a key by its highest access count across tiers.
type KeyAccess struct {
	Key         string
	AccessCount int64
	Tier        string // tier holding the hottest copy
}

// Report is the aggregate performance report.
type Report struct {
	AggregateHitRate   float64
	Tiers              []TierReport // fastest first
	TopKeys            []KeyAccess
	TotalSizeBytes     int64
	TotalCapacityBytes int64
	Recommendations    []string
}

// PerformanceReport assembles hit rates, per-tier metrics, the hottest keys,
// memory usage against configured capacity, and rule-derived textual
// recommendations.
func (m *Manager[V]) PerformanceReport(ctx context.Context) *Report {
	m.refreshGauges(ctx)
	snaps := m.metrics.snapshot()

	r := &Report{}
	var sumHits, sumTotal int64

	for _, t := range m.tiers {
		snap := snaps[t.Name()]
		sumHits += snap.Hits
		sumTotal += snap.Hits + snap.Misses

		tr := TierReport{
			Name:          t.Name(),
			Metrics:       snap,
			HitRate:       snap.HitRate(),
			CapacityBytes: t.MaxSize(),
		}
		if tr.CapacityBytes > 0 {
			tr.Utilization = float64(snap.SizeBytes) / float64(tr.CapacityBytes)
		}
		r.Tiers = append(r.Tiers, tr)
		r.TotalSizeBytes += snap.SizeBytes
		r.TotalCapacityBytes += tr.CapacityBytes
	}
	if sumTotal > 0 {
		r.AggregateHitRate = float64(sumHits) / float64(sumTotal)
	}

	r.TopKeys = m.topKeys(ctx)
	r.Recommendations = m.recommendations(r, sumTotal)
	return r
}

// topKeys ranks keys by their highest access count across all tiers.
func (m *Manager[V]) topKeys(ctx context.Context) []KeyAccess {
	if m.cfg.TopKeys == 0 {
		return nil
	}
	best := make(map[string]KeyAccess)
	for _, t := range m.tiers {
		entries, err := t.Entries(ctx)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if cur, ok := best[e.Key]; !ok || e.AccessCount > cur.AccessCount {
				best[e.Key] = KeyAccess{Key: e.Key, AccessCount: e.AccessCount, Tier: t.Name()}
			}
		}
	}

	ranked := make([]KeyAccess, 0, len(best))
	for _, ka := range best {
		ranked = append(ranked, ka)
	}
	slices.SortFunc(ranked, func(a, b KeyAccess) int {
		if c := cmp.Compare(b.AccessCount, a.AccessCount); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	if len(ranked) > m.cfg.TopKeys {
		ranked = ranked[:m.cfg.TopKeys]
	}
	return ranked
}

func (m *Manager[V]) recommendations(r *Report, totalRequests int64) []string {
	var recs []string

	if totalRequests > 0 && r.AggregateHitRate < 0.5 {
		recs = append(recs, fmt.Sprintf(
			"aggregate hit rate is %.0f%%; consider longer TTLs or prefetching hot keys",
			r.AggregateHitRate*100))
	}

	for _, tr := range r.Tiers {
		if tr.Metrics.Evictions > 0 && tr.Metrics.Evictions >= tr.Metrics.Sets/2 {
			recs = append(recs, fmt.Sprintf(
				"tier %s evicted %d entries against %d writes; consider raising its capacity above %s",
				tr.Name, tr.Metrics.Evictions, tr.Metrics.Sets, humanize.IBytes(uint64(tr.CapacityBytes))))
		}
		if tr.Utilization > highWaterFraction {
			recs = append(recs, fmt.Sprintf(
				"tier %s is at %.0f%% of its %s capacity",
				tr.Name, tr.Utilization*100, humanize.IBytes(uint64(tr.CapacityBytes))))
		}
	}
	return recs
}

package core

import (
	"slices"

	"github.com/huangsam/burndown/schema"
)

// Accumulator slots, indexed by track then by kind.
const (
	spaSlot = 0
	msSlot  = 1

	actualSlot  = 0
	plannedSlot = 1
)

// dayAccumulator collects every series value reported for one calendar date.
type dayAccumulator struct {
	date   string
	ts     int64
	values [2][2]*int
	totals [2][2]*int
}

func trackSlot(t schema.ServiceType) int {
	if t == schema.MsType {
		return msSlot
	}
	return spaSlot
}

func kindSlot(k schema.SeriesKind) int {
	if k == schema.PlannedKind {
		return plannedSlot
	}
	return actualSlot
}

// keepMax stores v in *dst unless *dst already holds a larger value.
// Duplicate reports for one date therefore resolve the same way in any input order.
func keepMax(dst **int, v int) {
	if *dst == nil || v > **dst {
		*dst = schema.IntPtr(v)
	}
}

// Normalize turns a raw document into one date-ordered burndown per environment,
// keeping the environments in document order.
func Normalize(doc schema.RawDocument) []schema.EnvironmentSeries {
	out := make([]schema.EnvironmentSeries, 0, len(doc.Environments))
	for _, env := range doc.Environments {
		out = append(out, NormalizeEnvironment(env))
	}
	return out
}

// NormalizeEnvironment merges the named series of one environment into burndown points.
func NormalizeEnvironment(env schema.RawEnvironment) schema.EnvironmentSeries {
	days := make(map[string]*dayAccumulator)
	for _, series := range env.Series {
		st, kind, ok := schema.ParseSeriesKey(series.Key)
		if !ok {
			continue
		}
		ti, ki := trackSlot(st), kindSlot(kind)
		for _, p := range series.Points {
			if p.Y == nil {
				continue
			}
			day, ok := schema.ParseDate(p.X)
			if !ok {
				continue
			}
			y, ok := schema.CountFromFloat(*p.Y)
			if !ok {
				continue
			}
			key := schema.FormatDate(day)
			acc, exists := days[key]
			if !exists {
				acc = &dayAccumulator{date: key, ts: day.UnixMilli()}
				days[key] = acc
			}
			keepMax(&acc.values[ti][ki], y)
			if p.Total != nil {
				if total, ok := schema.CountFromFloat(*p.Total); ok {
					keepMax(&acc.totals[ti][ki], total)
				}
			}
		}
	}

	ordered := make([]*dayAccumulator, 0, len(days))
	for _, acc := range days {
		ordered = append(ordered, acc)
	}
	slices.SortFunc(ordered, func(a, b *dayAccumulator) int {
		switch {
		case a.ts < b.ts:
			return -1
		case a.ts > b.ts:
			return 1
		default:
			return 0
		}
	})

	spaTotal := inferTotal(env.InScope.For(schema.SpaType), ordered, spaSlot)
	msTotal := inferTotal(env.InScope.For(schema.MsType), ordered, msSlot)

	points := make([]schema.BurndownPoint, 0, len(ordered))
	for _, acc := range ordered {
		points = append(points, schema.BurndownPoint{
			Date:       acc.date,
			Timestamp:  acc.ts,
			SpaActual:  acc.values[spaSlot][actualSlot],
			SpaPlanned: acc.values[spaSlot][plannedSlot],
			MsActual:   acc.values[msSlot][actualSlot],
			MsPlanned:  acc.values[msSlot][plannedSlot],
			SpaTotal:   firstNonNil(acc.totals[spaSlot][actualSlot], acc.totals[spaSlot][plannedSlot]),
			MsTotal:    firstNonNil(acc.totals[msSlot][actualSlot], acc.totals[msSlot][plannedSlot]),
		})
	}

	return schema.EnvironmentSeries{
		Env:      env.Name,
		Points:   FinalizePoints(points, spaTotal, msTotal),
		Targets:  ParseTargets(env.Target),
		SpaTotal: spaTotal,
		MsTotal:  msTotal,
	}
}

// inferTotal picks the scope of a track: the explicit in-scope figure, else the
// total on the earliest actual point, else on the earliest planned point, else 0.
func inferTotal(inScope *float64, ordered []*dayAccumulator, slot int) int {
	if inScope != nil {
		if v, ok := schema.CountFromFloat(*inScope); ok {
			return v
		}
	}
	for _, kind := range []int{actualSlot, plannedSlot} {
		for _, acc := range ordered {
			if acc.values[slot][kind] != nil && acc.totals[slot][kind] != nil {
				return *acc.totals[slot][kind]
			}
		}
	}
	return 0
}

func firstNonNil(values ...*int) *int {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

// FinalizePoints sorts points by timestamp, backfills missing totals from the
// inferred scope and recomputes the combined fields. Running it on its own
// output changes nothing.
func FinalizePoints(points []schema.BurndownPoint, spaTotal, msTotal int) []schema.BurndownPoint {
	out := slices.Clone(points)
	slices.SortStableFunc(out, func(a, b schema.BurndownPoint) int {
		switch {
		case a.Timestamp < b.Timestamp:
			return -1
		case a.Timestamp > b.Timestamp:
			return 1
		default:
			return 0
		}
	})
	for i := range out {
		p := &out[i]
		if p.SpaTotal == nil {
			p.SpaTotal = schema.IntPtr(spaTotal)
		}
		if p.MsTotal == nil {
			p.MsTotal = schema.IntPtr(msTotal)
		}
		p.CombinedActual = valueOr(p.SpaActual, 0) + valueOr(p.MsActual, 0)
		p.CombinedPlanned = valueOr(p.SpaPlanned, 0) + valueOr(p.MsPlanned, 0)
	}
	return out
}

func valueOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}

// ParseTargets resolves raw target strings; unparseable dates become zero (no target).
func ParseTargets(raw schema.RawTarget) schema.Targets {
	spa, _ := schema.ParseDate(raw.Spa)
	ms, _ := schema.ParseDate(raw.Microservice)
	return schema.Targets{Spa: spa, Microservice: ms}
}

// SelectEnvironments keeps the requested environments in presentation order.
// A requested environment missing from the input yields an empty series.
// An empty selection keeps everything.
func SelectEnvironments(series []schema.EnvironmentSeries, envs []string) []schema.EnvironmentSeries {
	if len(envs) == 0 {
		return series
	}
	byName := make(map[string]schema.EnvironmentSeries, len(series))
	for _, s := range series {
		byName[s.Env] = s
	}
	out := make([]schema.EnvironmentSeries, 0, len(envs))
	seen := make(map[string]struct{}, len(envs))
	for _, name := range envs {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if s, ok := byName[name]; ok {
			out = append(out, s)
			continue
		}
		out = append(out, schema.EnvironmentSeries{Env: name, Points: []schema.BurndownPoint{}})
	}
	return out
}

// Package planner computes which migrations to apply or revert to reach a
// target version.
package planner

import (
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"

	"github.com/satishbabariya/migrate-go/migrate/history"
)

// Step is one planned migration run
type Step struct {
	Version   int64             `json:"version" yaml:"version"`
	Direction history.Direction `json:"direction" yaml:"direction"`
}

func (s Step) String() string {
	return fmt.Sprintf("%d %s", s.Version, s.Direction)
}

// Plan is the ordered list of steps. Every Down step comes before every Up
// step.
type Plan []Step

func (p Plan) String() string {
	parts := make([]string, len(p))
	for i, s := range p {
		parts[i] = s.String()
	}
	return strings.Join(parts, ", ")
}

// Empty reports whether there is nothing to do
func (p Plan) Empty() bool {
	return len(p) == 0
}

// BuildPlan reconciles the available migrations with the recorded history
// and returns the steps that bring the database to desired:
//
//   - versions above desired whose latest record is Up are reverted, newest first
//   - versions at or below desired that are unrecorded or whose latest record
//     is Down are applied, oldest first
//
// History versions that are no longer available are ignored.
func BuildPlan[M any](available map[int64]M, hist []history.Item, desired int64) Plan {
	latest := Reduce(hist)

	var downs, ups []int64
	for version := range available {
		dir, recorded := latest[version]
		switch {
		case version > desired && recorded && dir == history.Up:
			downs = append(downs, version)
		case version <= desired && (!recorded || dir == history.Down):
			ups = append(ups, version)
		}
	}
	slices.Sort(ups)
	slices.Sort(downs)
	slices.Reverse(downs)

	plan := make(Plan, 0, len(downs)+len(ups))
	for _, v := range downs {
		plan = append(plan, Step{Version: v, Direction: history.Down})
	}
	for _, v := range ups {
		plan = append(plan, Step{Version: v, Direction: history.Up})
	}
	return plan
}

// Reduce returns the most recent direction recorded for each version.
// Items with the same date are ordered as given, so the later one wins.
func Reduce(hist []history.Item) map[int64]history.Direction {
	items := slices.Clone(hist)
	// stable sort newest first; equal dates keep the later record in front
	slices.Reverse(items)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date.After(items[j].Date)
	})

	latest := make(map[int64]history.Direction, len(items))
	for _, item := range items {
		if _, seen := latest[item.Version]; !seen {
			latest[item.Version] = item.Direction
		}
	}
	return latest
}

// Latest returns the highest available version, or 0 when there is none
func Latest[M any](available map[int64]M) int64 {
	if len(available) == 0 {
		return 0
	}
	return slices.Max(slices.Collect(maps.Keys(available)))
}

// State of a version relative to the database
type State string

const (
	Applied  State = "applied"
	Pending  State = "pending"
	Reverted State = "reverted"
	// Orphaned versions are recorded as applied but no longer available
	Orphaned State = "orphaned"
)

// VersionStatus describes one version
type VersionStatus struct {
	Version int64 `json:"version" yaml:"version"`
	State   State `json:"state" yaml:"state"`
}

// Status lists every available or recorded version in ascending order
func Status[M any](available map[int64]M, hist []history.Item) []VersionStatus {
	latest := Reduce(hist)

	versions := slices.Collect(maps.Keys(available))
	for v := range latest {
		if _, ok := available[v]; !ok {
			versions = append(versions, v)
		}
	}
	slices.Sort(versions)

	out := make([]VersionStatus, 0, len(versions))
	for _, v := range versions {
		dir, recorded := latest[v]
		_, ok := available[v]
		var state State
		switch {
		case !ok && dir == history.Up:
			state = Orphaned
		case !ok:
			continue
		case !recorded:
			state = Pending
		case dir == history.Up:
			state = Applied
		default:
			state = Reverted
		}
		out = append(out, VersionStatus{Version: v, State: state})
	}
	return out
}

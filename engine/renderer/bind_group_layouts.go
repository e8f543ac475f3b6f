package renderer

import (
	"sort"

	"github.com/Carmen-Shannon/oxy-trace/engine/gpu"
)

// mergeBindGroupLayouts merges the bind group layout descriptors of several shader stages
// into a unified set of descriptors suitable for a single pipeline layout.
//
// For each group index present in any stage:
//   - Entries with the same binding number have their Visibility flags ORed together
//   - Entries unique to one stage are included with their original visibility
//
// Parameters:
//   - stages: bind group layout descriptors per shader stage, keyed by group index
//
// Returns:
//   - map[int]gpu.BindGroupLayoutDescriptor: the merged descriptors keyed by group index
func mergeBindGroupLayouts(stages ...map[int]gpu.BindGroupLayoutDescriptor) map[int]gpu.BindGroupLayoutDescriptor {
	labels := make(map[int]string)
	entryMaps := make(map[int]map[uint32]gpu.BindGroupLayoutEntry)

	for _, stage := range stages {
		for g, desc := range stage {
			if _, ok := entryMaps[g]; !ok {
				entryMaps[g] = make(map[uint32]gpu.BindGroupLayoutEntry)
				labels[g] = desc.Label
			}
			for _, e := range desc.Entries {
				if existing, ok := entryMaps[g][e.Binding]; ok {
					existing.Visibility |= e.Visibility
					entryMaps[g][e.Binding] = existing
				} else {
					entryMaps[g][e.Binding] = e
				}
			}
		}
	}

	merged := make(map[int]gpu.BindGroupLayoutDescriptor, len(entryMaps))
	for g, entryMap := range entryMaps {
		entries := make([]gpu.BindGroupLayoutEntry, 0, len(entryMap))
		for _, e := range entryMap {
			entries = append(entries, e)
		}
		// sort by binding for deterministic layout
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Binding < entries[j].Binding
		})
		merged[g] = gpu.BindGroupLayoutDescriptor{
			Label:   labels[g],
			Entries: entries,
		}
	}
	return merged
}

// Package report computes descriptive statistics over an assembled
// inventory document.
package report

import (
	"sort"

	"github.com/montanaflynn/stats"

	"xlinventory/domain/inventory"
)

// Summary describes the shape of an inventory document
type Summary struct {
	Groups         int      `json:"groups"`
	GroupsWithVars int      `json:"groups_with_vars"`
	Hosts          int      `json:"hosts"`
	Memberships    int      `json:"memberships"`
	MeanGroupSize  float64  `json:"mean_group_size"`
	MedianGroup    float64  `json:"median_group_size"`
	MaxGroupSize   float64  `json:"max_group_size"`
	Ungrouped      []string `json:"ungrouped,omitempty"`
	UndefinedHosts []string `json:"undefined_hosts,omitempty"`
}

// Summarize counts groups and hosts. Group sizes are the raw list lengths,
// so duplicate memberships count. Ungrouped lists hosts with variables that
// no group lists; UndefinedHosts lists group members without variables.
func Summarize(doc *inventory.Document) (*Summary, error) {
	s := &Summary{
		Groups: doc.Groups.Len(),
		Hosts:  doc.HostVars.Len(),
	}

	var sizes stats.Float64Data
	listed := make(map[string]bool)

	doc.Groups.Each(func(_ string, g *inventory.Group) bool {
		if g.Vars != nil {
			s.GroupsWithVars++
		}
		if g.Hosts == nil {
			return true
		}
		sizes = append(sizes, float64(len(g.Hosts)))
		s.Memberships += len(g.Hosts)
		for _, h := range g.Hosts {
			listed[h] = true
		}
		return true
	})

	if len(sizes) > 0 {
		var err error
		if s.MeanGroupSize, err = stats.Mean(sizes); err != nil {
			return nil, err
		}
		if s.MedianGroup, err = stats.Median(sizes); err != nil {
			return nil, err
		}
		if s.MaxGroupSize, err = stats.Max(sizes); err != nil {
			return nil, err
		}
	}

	for _, host := range doc.HostVars.Keys() {
		if !listed[host] {
			s.Ungrouped = append(s.Ungrouped, host)
		}
	}
	for host := range listed {
		if !doc.HostVars.Has(host) {
			s.UndefinedHosts = append(s.UndefinedHosts, host)
		}
	}
	sort.Strings(s.UndefinedHosts)

	return s, nil
}

package bulk

import (
	"encoding/csv"
	"fmt"
	"os"
)

var baseColumns = []string{
	"label",
	"has_quorum_intersection",
	"top_tier_size",
	"min_blocking_set_size", "max_blocking_set_size", "mean_blocking_set_size",
	"min_splitting_set_size", "max_splitting_set_size", "mean_splitting_set_size",
	"min_quorum_size", "max_quorum_size", "mean_quorum_size",
	"standard_form_hash",
	"analysis_duration_mq_s", "analysis_duration_mbs_s", "analysis_duration_mss_s",
	"analysis_duration_total_s",
}

func groupColumns(prefix string) []string {
	return []string{
		prefix + "_top_tier_size",
		prefix + "_min_blocking_set_size", prefix + "_max_blocking_set_size", prefix + "_mean_blocking_set_size",
		prefix + "_min_splitting_set_size", prefix + "_max_splitting_set_size", prefix + "_mean_splitting_set_size",
		prefix + "_min_quorum_size", prefix + "_max_quorum_size", prefix + "_mean_quorum_size",
	}
}

// writeCSV writes one row per data point, preceded by a header row. The
// orgs/isps/countries columns are only emitted for the flavors actually
// present on at least one row, matching the Rust original's behavior of
// conditionally-present output columns depending on CLI flags.
func writeCSV(f *os.File, points []DataPoint) error {
	var haveOrgs, haveISPs, haveCountries bool
	for _, p := range points {
		haveOrgs = haveOrgs || p.Orgs != nil
		haveISPs = haveISPs || p.ISPs != nil
		haveCountries = haveCountries || p.Countries != nil
	}

	header := append([]string{}, baseColumns...)
	if haveOrgs {
		header = append(header, groupColumns("orgs")...)
	}
	if haveISPs {
		header = append(header, groupColumns("isps")...)
	}
	if haveCountries {
		header = append(header, groupColumns("countries")...)
	}

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, p := range points {
		row := []string{
			p.Label,
			fmt.Sprintf("%t", p.HasQuorumIntersection),
			fmt.Sprintf("%d", p.Physical.TopTierSize),
			fmt.Sprintf("%d", p.Physical.MBSMin), fmt.Sprintf("%d", p.Physical.MBSMax), fmt.Sprintf("%g", p.Physical.MBSMean),
			fmt.Sprintf("%d", p.Physical.MSSMin), fmt.Sprintf("%d", p.Physical.MSSMax), fmt.Sprintf("%g", p.Physical.MSSMean),
			fmt.Sprintf("%d", p.Physical.MQMin), fmt.Sprintf("%d", p.Physical.MQMax), fmt.Sprintf("%g", p.Physical.MQMean),
			p.StandardFormHash,
			fmt.Sprintf("%g", p.AnalysisDurationMQ.Seconds()),
			fmt.Sprintf("%g", p.AnalysisDurationMBS.Seconds()),
			fmt.Sprintf("%g", p.AnalysisDurationMSS.Seconds()),
			fmt.Sprintf("%g", p.AnalysisDurationTotal.Seconds()),
		}
		if haveOrgs {
			row = append(row, groupRow(p.Orgs)...)
		}
		if haveISPs {
			row = append(row, groupRow(p.ISPs)...)
		}
		if haveCountries {
			row = append(row, groupRow(p.Countries)...)
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing csv row for %q: %w", p.Label, err)
		}
	}

	w.Flush()
	return w.Error()
}

func groupRow(g *GroupStats) []string {
	if g == nil {
		return make([]string, 10)
	}
	return []string{
		fmt.Sprintf("%d", g.TopTierSize),
		fmt.Sprintf("%d", g.MBSMin), fmt.Sprintf("%d", g.MBSMax), fmt.Sprintf("%g", g.MBSMean),
		fmt.Sprintf("%d", g.MSSMin), fmt.Sprintf("%d", g.MSSMax), fmt.Sprintf("%g", g.MSSMean),
		fmt.Sprintf("%d", g.MQMin), fmt.Sprintf("%d", g.MQMax), fmt.Sprintf("%g", g.MQMean),
	}
}

package cli

import (
	"fmt"
	"time"

	"github.com/trudi-group/fbas-analyzer-go/internal/analysis"
)

func reportOverview(a *analysis.Analysis, out *output) {
	out.result("nodes_total", intResult(a.AllNodes().Len()))
	if a.MergingByGroup() {
		out.result("nodes_total_unmerged", intResult(a.AllPhysicalNodes().Len()))
		out.comment("(Nodes belonging to the same group are counted as one.)")
	}
}

func findAndReportSymmetricClusters(a *analysis.Analysis, out *output) {
	start := time.Now()
	clusters := a.SymmetricClusters()
	out.timedResult("symmetric_clusters", quorumSetsResult(clusters), time.Since(start))
	out.commentNewline()
}

func findAndReportMinimalQuorums(a *analysis.Analysis, out *output) {
	start := time.Now()
	mq := a.MinimalQuorums()
	out.timedResult("minimal_quorums", setVecResult{mq}, time.Since(start))
	out.comment(fmt.Sprintf("\nWe found %d minimal quorums.\n", mq.Len()))
}

func findAndReportMinimalBlockingSets(a *analysis.Analysis, out *output) {
	start := time.Now()
	mbs := a.MinimalBlockingSets()
	out.timedResult("minimal_blocking_sets", setVecResult{mbs}, time.Since(start))
	out.comment(fmt.Sprintf(
		"\nWe found %d minimal blocking sets (minimal indispensable sets for global liveness). "+
			"Control over any of these sets is sufficient to compromise the liveness of all nodes "+
			"and to censor future transactions.\n", mbs.Len()))
}

func findAndReportMinimalSplittingSets(a *analysis.Analysis, out *output) {
	start := time.Now()
	mss := a.MinimalSplittingSets()
	out.timedResult("minimal_splitting_sets", setVecResult{mss}, time.Since(start))
	out.comment(fmt.Sprintf(
		"\nWe found %d minimal splitting sets (minimal indispensable sets for safety). "+
			"Control over any of these sets is sufficient to compromise safety by undermining "+
			"the quorum intersection of at least two quorums.\n", mss.Len()))
}

func reportTopTierUncondensed(a *analysis.Analysis, out *output) {
	top := a.TopTier()
	out.resultUncondensed("top_tier", setResult{top})
	out.comment(fmt.Sprintf(
		"\nThere is a total of %d distinct nodes involved in all of these sets (this is the \"top tier\").\n",
		top.Len()))
}

// checkAndReportQuorumIntersection runs the chosen quorum-intersection
// check, reports it, and returns the verdict.
func checkAndReportQuorumIntersection(a *analysis.Analysis, out *output, alternative bool) bool {
	var has bool
	if alternative {
		out.comment("Alternative quorum intersection check...")
		start := time.Now()
		var quorums setVecResult
		has, quorums.SetVecResult = a.HasQuorumIntersectionViaAlternativeCheck()
		out.timedResult("has_quorum_intersection", boolResult(has), time.Since(start))
		if !has {
			out.result("nonintersecting_quorums", quorums)
		}
	} else {
		start := time.Now()
		has = a.HasQuorumIntersection()
		out.timedResult("has_quorum_intersection", boolResult(has), time.Since(start))
	}

	if has {
		out.comment("\nAll quorums intersect.\n")
	} else {
		out.comment("\nSome quorums don't intersect! Safety severely threatened for some nodes.\n" +
			"(Also, the remaining results here might not make much sense.)\n")
	}
	return has
}

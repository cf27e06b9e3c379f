// Command fbas-analyzer analyzes Federated Byzantine Agreement Systems:
// quorum intersection, minimal quorums, minimal blocking sets, minimal
// splitting sets, symmetric clusters, and the top tier.
package main

import (
	"github.com/trudi-group/fbas-analyzer-go/internal/cli"
)

func main() {
	cli.Execute()
}

package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DomainSchedule is the domain prefix for schedule fingerprints. The
// version suffix enables future canonical-form migration without colliding
// with old hashes.
const DomainSchedule = "psykit/schedule/v1"

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null byte prevents domain/data
// boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint returns a content-addressed hash of the tree. Two Schedules
// with the same shape and payloads fingerprint identically regardless of
// arena layout, detached garbage or the order nodes were allocated in, so
// the hash is the right equality for idempotence checks and the provenance
// store.
//
// Symbolic names are NFC-normalized before hashing so that visually
// identical identifiers from different front-end encodings agree.
func (s *Schedule) Fingerprint() string {
	var b strings.Builder
	s.canonNode(&b, 0, 0)
	return hashWithDomain(DomainSchedule, []byte(b.String()))
}

// canonNode writes one canonical line per node in pre-order. Field order
// within a line is fixed; changing it is a canonical-form version bump.
func (s *Schedule) canonNode(b *strings.Builder, id NodeID, depth int) {
	n := &s.nodes[id]
	fmt.Fprintf(b, "%d %s", depth, n.kind)
	switch n.kind {
	case KindSchedule:
		fmt.Fprintf(b, " %s", canonName(s.Name))
	case KindLoop:
		fmt.Fprintf(b, " %s %s %v %d", n.loop.IterSpace, canonName(n.loop.Variable),
			n.loop.UpperBound.Halo, n.loop.UpperBound.Depth)
	case KindKernelCall, KindBuiltinCall:
		fmt.Fprintf(b, " %s", canonName(n.call.Callee))
		if n.call.Inline {
			b.WriteString(" inline")
		}
		for _, a := range n.call.Args {
			fmt.Fprintf(b, " %s:%s:%s:%s:%d:%d", canonName(a.Name), a.Kind, a.Access,
				canonName(a.Space), a.VectorComponent, a.VectorSize)
			if a.Stencil != nil {
				fmt.Fprintf(b, ":%s(%d)", a.Stencil.Shape, a.Stencil.Depth)
			}
		}
	case KindDirective:
		fmt.Fprintf(b, " %s private=%s reduction=%s", n.directive.Kind,
			strings.Join(n.directive.Private, ","), strings.Join(n.directive.Reductions, ","))
	case KindHaloExchange:
		fmt.Fprintf(b, " %s %d %v %d %d", canonName(n.halo.Field), n.halo.Depth,
			n.halo.DepthAll, n.halo.VectorComponent, n.halo.VectorSize)
	case KindGlobalReduction:
		fmt.Fprintf(b, " %s %s %v", canonName(n.reduction.Scalar), n.reduction.Op,
			n.reduction.Reproducible)
	}
	b.WriteByte('\n')
	for _, c := range n.children {
		s.canonNode(b, c, depth+1)
	}
}

func canonName(name string) string {
	return norm.NFC.String(name)
}

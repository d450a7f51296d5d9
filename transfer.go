package recon

import (
	"math"
	"sort"
)

// TransferProposal suggests that two transactions of different accounts are
// the two sides of one transfer.
type TransferProposal struct {
	Out, In               string // import ids of the outflow and the inflow
	OutAccount, InAccount string
	Amount                Money // magnitude
	DateDelta             int   // inflow date minus outflow date, in days
	Confidence            float64
}

func (p TransferProposal) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("kind", "transfer")
	w.Append("out", p.Out)
	w.Append("in", p.In)
	w.Optional("outAccount", p.OutAccount)
	w.Optional("inAccount", p.InAccount)
	w.EmbedFrom(p.Amount)
	w.Append("dateDelta", p.DateDelta)
	w.Append("confidence", roundConfidence(p.Confidence))
	return w.MarshalJSON()
}

// TransferOptions tunes MatchTransfers. Zero values select the defaults.
type TransferOptions struct {
	Window int // days, 2 by default
}

// MatchTransfers pairs outflows with inflows of the same currency and
// magnitude, on different accounts, at most opts.Window days apart.
//
// Within a magnitude the pairing is a minimum weight matching: as many pairs
// as possible, then the smallest total date distance. Each transaction is in
// one proposal at most.
func MatchTransfers(txs []Transaction, opts TransferOptions) []TransferProposal {
	if opts.Window <= 0 {
		opts.Window = 2
	}

	type group struct{ outs, ins []int }
	groups := make(map[string]*group)
	var order []string
	for i, tx := range txs {
		if tx.Amount.IsZero() {
			continue
		}
		k := tx.Amount.Abs().key()
		g, ok := groups[k]
		if !ok {
			g = &group{}
			groups[k] = g
			order = append(order, k)
		}
		if tx.Amount.IsNegative() {
			g.outs = append(g.outs, i)
		} else {
			g.ins = append(g.ins, i)
		}
	}

	var proposals []TransferProposal
	for _, k := range order {
		g := groups[k]
		if len(g.outs) == 0 || len(g.ins) == 0 {
			continue
		}
		n := max(len(g.outs), len(g.ins))
		// any invalid pair costs more than all valid pairs together, so that
		// the number of valid pairs is maximized first.
		invalid := opts.Window*n + 1
		cost := make([][]int, n)
		for i := range cost {
			cost[i] = make([]int, n)
			for j := range cost[i] {
				cost[i][j] = invalid
				if i < len(g.outs) && j < len(g.ins) {
					if d, ok := transferDelta(txs[g.outs[i]], txs[g.ins[j]], opts.Window); ok {
						cost[i][j] = abs(d)
					}
				}
			}
		}
		for i, j := range hungarian(cost) {
			if i >= len(g.outs) || j >= len(g.ins) {
				continue
			}
			out, in := txs[g.outs[i]], txs[g.ins[j]]
			d, ok := transferDelta(out, in, opts.Window)
			if !ok {
				continue
			}
			conf := 1 - 0.1*float64(abs(d))
			if out.Activity == Transfer || in.Activity == Transfer {
				conf += 0.05
			}
			proposals = append(proposals, TransferProposal{
				Out:        out.ImportID,
				In:         in.ImportID,
				OutAccount: out.AccountNumber,
				InAccount:  in.AccountNumber,
				Amount:     Money{value: in.Amount.value, cur: cur(in.Amount, out.Amount)},
				DateDelta:  d,
				Confidence: min(conf, 1),
			})
		}
	}
	index := make(map[string]int, len(txs))
	for i, tx := range txs {
		index[tx.ImportID] = i
	}
	sort.SliceStable(proposals, func(i, j int) bool { return index[proposals[i].Out] < index[proposals[j].Out] })
	return proposals
}

// transferDelta returns the days from out to in, if they can pair.
func transferDelta(out, in Transaction, window int) (int, bool) {
	if out.AccountNumber == in.AccountNumber || !out.Amount.SameCurrency(in.Amount) {
		return 0, false
	}
	d := in.Date.Sub(out.Date)
	return d, abs(d) <= window
}

// Unclaimed returns the transactions of the batch not matched exactly by a
// proposal, the only ones eligible for transfer matching.
func Unclaimed(batch *ImportBatch, proposals []MatchProposal) []Transaction {
	claimed := make(map[string]bool)
	for _, p := range proposals {
		if p.Basis == Exact {
			claimed[p.ImportID] = true
		}
	}
	var txs []Transaction
	for _, tx := range batch.Transactions {
		if !claimed[tx.ImportID] {
			txs = append(txs, tx)
		}
	}
	return txs
}

// hungarian solves the assignment problem on a square cost matrix and
// returns, for each row, the column assigned to it.
func hungarian(cost [][]int) []int {
	n := len(cost)
	const inf = math.MaxInt / 2
	u := make([]int, n+1)
	v := make([]int, n+1)
	p := make([]int, n+1) // p[j]: row assigned to column j, 1-based
	way := make([]int, n+1)
	for i := 1; i <= n; i++ {
		p[0] = i
		j0 := 0
		minv := make([]int, n+1)
		used := make([]bool, n+1)
		for j := range minv {
			minv[j] = inf
		}
		for {
			used[j0] = true
			i0, delta, j1 := p[j0], inf, 0
			for j := 1; j <= n; j++ {
				if used[j] {
					continue
				}
				if cur := cost[i0-1][j-1] - u[i0] - v[j]; cur < minv[j] {
					minv[j], way[j] = cur, j0
				}
				if minv[j] < delta {
					delta, j1 = minv[j], j
				}
			}
			for j := 0; j <= n; j++ {
				if used[j] {
					u[p[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}
			j0 = j1
			if p[j0] == 0 {
				break
			}
		}
		for j0 != 0 {
			j1 := way[j0]
			p[j0] = p[j1]
			j0 = j1
		}
	}
	assign := make([]int, n)
	for j := 1; j <= n; j++ {
		if p[j] != 0 {
			assign[p[j]-1] = j - 1
		}
	}
	return assign
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

package recon

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

type pair struct {
	Out, In   string
	DateDelta int
}

func pairs(ps []TransferProposal) []pair {
	var out []pair
	for _, p := range ps {
		out = append(out, pair{p.Out, p.In, p.DateDelta})
	}
	return out
}

func TestMatchTransfers(t *testing.T) {
	tests := []struct {
		name string
		txs  []Transaction
		want []pair
	}{
		{
			name: "one transfer",
			txs: []Transaction{
				txOf("a", "A", "2024-03-02", "-500.00"),
				txOf("b", "B", "2024-03-03", "500.00"),
			},
			want: []pair{{"a", "b", 1}},
		},
		{
			name: "scale insensitive",
			txs: []Transaction{
				txOf("b", "B", "2024-03-02", "500"),
				txOf("a", "A", "2024-03-02", "-500.00"),
			},
			want: []pair{{"a", "b", 0}},
		},
		{
			name: "same account",
			txs: []Transaction{
				txOf("a", "A", "2024-03-02", "-500.00"),
				txOf("b", "A", "2024-03-02", "500.00"),
			},
			want: nil,
		},
		{
			name: "too far apart",
			txs: []Transaction{
				txOf("a", "A", "2024-03-02", "-500.00"),
				txOf("b", "B", "2024-03-05", "500.00"),
			},
			want: nil,
		},
		{
			name: "other amount",
			txs: []Transaction{
				txOf("a", "A", "2024-03-02", "-500.00"),
				txOf("b", "B", "2024-03-02", "500.01"),
			},
			want: nil,
		},
		{
			// pairing the closest dates first would leave o1 alone
			name: "most pairs",
			txs: []Transaction{
				txOf("o1", "A", "2024-03-01", "-20.00"),
				txOf("o2", "A", "2024-03-03", "-20.00"),
				txOf("i1", "B", "2024-03-03", "20.00"),
				txOf("i2", "B", "2024-03-05", "20.00"),
			},
			want: []pair{{"o1", "i1", 2}, {"o2", "i2", 2}},
		},
		{
			name: "smallest distance",
			txs: []Transaction{
				txOf("o1", "A", "2024-03-01", "-20.00"),
				txOf("o2", "C", "2024-03-03", "-20.00"),
				txOf("i1", "B", "2024-03-03", "20.00"),
			},
			want: []pair{{"o2", "i1", 0}},
		},
		{
			name: "several amounts",
			txs: []Transaction{
				txOf("o1", "A", "2024-03-01", "-20.00"),
				txOf("o2", "A", "2024-03-01", "-30.00"),
				txOf("i2", "B", "2024-03-01", "30.00"),
				txOf("i1", "B", "2024-03-02", "20.00"),
			},
			want: []pair{{"o1", "i1", 1}, {"o2", "i2", 0}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchTransfers(tt.txs, TransferOptions{})
			if diff := cmp.Diff(tt.want, pairs(got)); diff != "" {
				t.Errorf("MatchTransfers() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMatchTransfersProposal(t *testing.T) {
	out := txOf("a", "A", "2024-03-02", "-500.00")
	out.Activity = Transfer
	in := txOf("b", "B", "2024-03-03", "500.00")
	got := MatchTransfers([]Transaction{out, in}, TransferOptions{})
	if len(got) != 1 {
		t.Fatalf("MatchTransfers() = %v, want one proposal", got)
	}
	p := got[0]
	if p.OutAccount != "A" || p.InAccount != "B" || p.Amount.Exact() != "500.00" {
		t.Errorf("MatchTransfers() = %+v", p)
	}
	if p.Confidence < 0.949 || p.Confidence > 0.951 {
		t.Errorf("MatchTransfers().Confidence = %v, want 0.95", p.Confidence)
	}
}

func TestMatchTransfersCurrency(t *testing.T) {
	out := txOf("a", "A", "2024-03-02", "-500.00")
	in := txOf("b", "B", "2024-03-02", "500.00")
	in.Amount = M(in.Amount.Decimal(), "")
	got := MatchTransfers([]Transaction{out, in}, TransferOptions{})
	if len(got) != 1 {
		t.Fatalf("MatchTransfers() = %v, want one proposal", got)
	}
	if c := got[0].Amount.Currency(); c != "USD" {
		t.Errorf("MatchTransfers().Amount currency = %q, want USD", c)
	}

	in.Amount = M(in.Amount.Decimal(), "EUR")
	if got := MatchTransfers([]Transaction{out, in}, TransferOptions{}); len(got) != 0 {
		t.Errorf("MatchTransfers() across currencies = %v, want none", got)
	}
}

func TestHungarian(t *testing.T) {
	tests := []struct {
		cost [][]int
		want []int
	}{
		{[][]int{{4}}, []int{0}},
		{[][]int{{1, 2}, {2, 9}}, []int{1, 0}},
		{[][]int{{9, 2, 7}, {6, 4, 3}, {5, 8, 1}}, []int{1, 0, 2}},
	}
	for _, tt := range tests {
		if got := hungarian(tt.cost); !cmp.Equal(got, tt.want) {
			t.Errorf("hungarian(%v) = %v, want %v", tt.cost, got, tt.want)
		}
	}
}

func TestUnclaimed(t *testing.T) {
	batch := &ImportBatch{Transactions: []Transaction{
		txOf("t1", "A", "2024-03-02", "-500.00"),
		txOf("t2", "A", "2024-03-03", "-20.00"),
		txOf("t3", "A", "2024-03-04", "-30.00"),
	}}
	proposals := []MatchProposal{
		{ImportID: "t1", EntryID: "e1", Basis: Exact},
		{ImportID: "t2", EntryID: "e2", Basis: DateWindow},
	}
	var got []string
	for _, tx := range Unclaimed(batch, proposals) {
		got = append(got, tx.ImportID)
	}
	if diff := cmp.Diff([]string{"t2", "t3"}, got); diff != "" {
		t.Errorf("Unclaimed() mismatch (-want +got):\n%s", diff)
	}
}

package contracts

import "testing"

func TestSignalBatchHelpers(t *testing.T) {
	batch := &SignalBatch{
		Signals: []AssetSignal{
			{Ticker: "AAPL", PercentChange: 3.0},
			{Ticker: "TSLA", PercentChange: -1.0},
		},
	}

	if batch.Count() != 2 {
		t.Errorf("Count() = %d, want 2", batch.Count())
	}

	tickers := batch.Tickers()
	if len(tickers) != 2 || tickers[0] != "AAPL" || tickers[1] != "TSLA" {
		t.Errorf("Tickers() = %v, want [AAPL TSLA]", tickers)
	}
}

func TestTopPickIsBuySignal(t *testing.T) {
	tests := []struct {
		label string
		want  bool
	}{
		{LabelStrongBuy, true},
		{LabelBuy, true},
		{LabelHold, false},
		{LabelWeakHold, false},
		{LabelAvoid, false},
	}

	for _, tt := range tests {
		pick := TopPick{Label: tt.label}
		if got := pick.IsBuySignal(); got != tt.want {
			t.Errorf("IsBuySignal(%q) = %v, want %v", tt.label, got, tt.want)
		}
	}
}

func TestProposalNotionalValue(t *testing.T) {
	p := PositionProposal{Quantity: 200, EntryReferencePrice: 50.0}
	if got := p.NotionalValue(); got != 10000.0 {
		t.Errorf("NotionalValue() = %f, want 10000", got)
	}
}

func TestSizingOutcomeAccepted(t *testing.T) {
	accepted := SizingOutcome{Proposal: &PositionProposal{Ticker: "AAPL"}}
	if !accepted.Accepted() {
		t.Error("outcome with proposal should be accepted")
	}

	rejected := SizingOutcome{Rejection: &RiskRejection{Ticker: "TSLA", Reason: RejectPositionTooSmall}}
	if rejected.Accepted() {
		t.Error("outcome with rejection should not be accepted")
	}
}

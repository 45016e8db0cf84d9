package engine

import (
	"context"
	"errors"
	"io"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphaframe/alphaframe/internal/contracts"
	"github.com/alphaframe/alphaframe/internal/execution"
	"github.com/alphaframe/alphaframe/internal/ranking"
	"github.com/alphaframe/alphaframe/internal/risk"
	"github.com/alphaframe/alphaframe/pkg/logger"
)

type stubMarket struct {
	signals map[string]MarketSignal
	err     error
}

func (s *stubMarket) GetSignals(ctx context.Context, tickers []string) (map[string]MarketSignal, error) {
	return s.signals, s.err
}

type stubSentiment struct {
	signals map[string]SentimentSignal
	err     error
}

func (s *stubSentiment) GetSentiment(ctx context.Context, tickers []string) (map[string]SentimentSignal, error) {
	return s.signals, s.err
}

type stubSink struct {
	mu        sync.Mutex
	snapshots []contracts.RankingSnapshot
	err       error
}

func (s *stubSink) SaveSnapshot(ctx context.Context, snapshot contracts.RankingSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.snapshots = append(s.snapshots, snapshot)
	return nil
}

func testEngine(t *testing.T, market MarketDataSource, sent SentimentSource, broker *execution.MockBroker, sink SnapshotSink, dryRun bool) *Engine {
	t.Helper()
	log := logger.NewWriter(io.Discard)

	weights, err := ranking.NewWeightConfig(0.6, 0.4)
	require.NoError(t, err)
	selector, err := ranking.NewSelector(5, 3, nil)
	require.NoError(t, err)

	return New(Config{
		Assembler:   NewAssembler(market, sent, log),
		Ranker:      ranking.NewRanker(weights, ranking.MethodMinMax, log),
		Selector:    selector,
		RiskManager: risk.NewManager(risk.DefaultParameters(), log),
		Executor:    execution.NewExecutor(broker, nil, risk.NewDailyTradeCounter(), 10, log),
		Sink:        sink,
		DryRun:      dryRun,
	}, log)
}

func marketFixture() *stubMarket {
	return &stubMarket{signals: map[string]MarketSignal{
		"AAPL": {PercentChange: 3.0, Price: 50.0},
		"TSLA": {PercentChange: -1.0, Price: 250.0},
	}}
}

func sentimentFixture() *stubSentiment {
	return &stubSentiment{signals: map[string]SentimentSignal{
		"AAPL": {Score: 0.5, HeadlineCount: 20},
		"TSLA": {Score: -0.2, HeadlineCount: 15},
	}}
}

func TestAssembleJoinsSources(t *testing.T) {
	a := NewAssembler(marketFixture(), sentimentFixture(), logger.NewWriter(io.Discard))

	batch, err := a.Assemble(context.Background(), []string{"AAPL", "TSLA"})

	require.NoError(t, err)
	require.Equal(t, 2, batch.Count())
	assert.Empty(t, batch.Warnings)

	aapl := batch.Signals[0]
	assert.Equal(t, "AAPL", aapl.Ticker)
	assert.Equal(t, 3.0, aapl.PercentChange)
	assert.Equal(t, 0.5, aapl.SentimentScore)
	assert.Equal(t, 20, aapl.HeadlineCount)
	assert.Equal(t, 50.0, aapl.Price)
}

func TestAssembleNeutralSubstitution(t *testing.T) {
	// Sentiment source omits TSLA entirely
	sent := &stubSentiment{signals: map[string]SentimentSignal{
		"AAPL": {Score: 0.5, HeadlineCount: 20},
	}}
	a := NewAssembler(marketFixture(), sent, logger.NewWriter(io.Discard))

	batch, err := a.Assemble(context.Background(), []string{"AAPL", "TSLA"})

	require.NoError(t, err)
	require.Equal(t, 2, batch.Count(), "missing data never drops an asset")

	tsla := batch.Signals[1]
	assert.Equal(t, 0.0, tsla.SentimentScore)
	assert.Equal(t, 0, tsla.HeadlineCount)

	require.Len(t, batch.Warnings, 1)
	assert.Equal(t, "TSLA", batch.Warnings[0].Ticker)
	assert.Equal(t, "sentiment_score", batch.Warnings[0].Field)
}

func TestAssembleCoercesNaN(t *testing.T) {
	market := &stubMarket{signals: map[string]MarketSignal{
		"AAPL": {PercentChange: math.NaN(), Price: 50.0},
	}}
	a := NewAssembler(market, sentimentFixture(), logger.NewWriter(io.Discard))

	batch, err := a.Assemble(context.Background(), []string{"AAPL"})

	require.NoError(t, err)
	assert.Equal(t, 0.0, batch.Signals[0].PercentChange)
	require.NotEmpty(t, batch.Warnings)
	assert.Equal(t, "percent_change", batch.Warnings[0].Field)
}

func TestAssembleSourceFailure(t *testing.T) {
	market := &stubMarket{err: errors.New("upstream down")}
	a := NewAssembler(market, sentimentFixture(), logger.NewWriter(io.Discard))

	batch, err := a.Assemble(context.Background(), []string{"AAPL", "TSLA"})

	require.NoError(t, err, "source failure degrades to neutral signals, not a failed run")
	assert.Equal(t, 2, batch.Count())
	assert.Len(t, batch.Warnings, 2)
}

func TestRankAndSize(t *testing.T) {
	broker := execution.NewMockBroker()
	e := testEngine(t, marketFixture(), sentimentFixture(), broker, nil, true)

	signals := []contracts.AssetSignal{
		{Ticker: "AAPL", PercentChange: 3.0, SentimentScore: 0.5, HeadlineCount: 20, Price: 50.0},
		{Ticker: "TSLA", PercentChange: -1.0, SentimentScore: -0.2, HeadlineCount: 15, Price: 250.0},
	}

	ranked, outcomes := e.RankAndSize(signals, 100_000, 0)

	require.Len(t, ranked, 2)
	assert.Equal(t, "AAPL", ranked[0].Ticker)

	require.Len(t, outcomes, 2)
	require.True(t, outcomes[0].Accepted())
	assert.Equal(t, 200, outcomes[0].Proposal.Quantity)
}

func TestRankAndSizeDailyLimitReached(t *testing.T) {
	broker := execution.NewMockBroker()
	e := testEngine(t, marketFixture(), sentimentFixture(), broker, nil, true)

	signals := []contracts.AssetSignal{
		{Ticker: "AAPL", PercentChange: 3.0, SentimentScore: 0.5, HeadlineCount: 20, Price: 50.0},
	}

	_, outcomes := e.RankAndSize(signals, 100_000, 10)

	require.Len(t, outcomes, 1)
	require.NotNil(t, outcomes[0].Rejection)
	assert.Equal(t, contracts.RejectDailyLimitExceeded, outcomes[0].Rejection.Reason)
}

func TestRunDryRunNeverSubmits(t *testing.T) {
	broker := execution.NewMockBroker()
	sink := &stubSink{}
	e := testEngine(t, marketFixture(), sentimentFixture(), broker, sink, true)

	result, err := e.Run(context.Background(), []string{"AAPL", "TSLA"}, 100_000)

	require.NoError(t, err)
	assert.Equal(t, 0, result.Submitted)
	assert.Empty(t, broker.Submitted(), "dry run must not reach the broker")
	require.Len(t, sink.snapshots, 1, "snapshots persist even on dry runs")
	assert.Len(t, sink.snapshots[0].Assets, 2)
}

func TestRunSubmitsAcceptedProposals(t *testing.T) {
	broker := execution.NewMockBroker()
	e := testEngine(t, marketFixture(), sentimentFixture(), broker, nil, false)

	result, err := e.Run(context.Background(), []string{"AAPL", "TSLA"}, 100_000)

	require.NoError(t, err)
	assert.Equal(t, 2, result.Submitted)
	assert.Len(t, broker.Submitted(), 2)
}

func TestRunSinkFailureDoesNotBlock(t *testing.T) {
	broker := execution.NewMockBroker()
	sink := &stubSink{err: errors.New("db unavailable")}
	e := testEngine(t, marketFixture(), sentimentFixture(), broker, sink, true)

	result, err := e.Run(context.Background(), []string{"AAPL", "TSLA"}, 100_000)

	require.NoError(t, err)
	assert.Len(t, result.Ranked, 2)
	assert.NotEmpty(t, result.Outcomes)
}

func TestRunConsumesDailyBudget(t *testing.T) {
	broker := execution.NewMockBroker()
	e := testEngine(t, marketFixture(), sentimentFixture(), broker, nil, false)

	_, err := e.Run(context.Background(), []string{"AAPL", "TSLA"}, 100_000)
	require.NoError(t, err)

	assert.Equal(t, 2, e.executor.TradesToday())
}

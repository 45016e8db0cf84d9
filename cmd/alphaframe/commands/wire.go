package commands

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alphaframe/alphaframe/internal/engine"
	"github.com/alphaframe/alphaframe/internal/execution"
	"github.com/alphaframe/alphaframe/internal/external/alpaca"
	"github.com/alphaframe/alphaframe/internal/external/finviz"
	"github.com/alphaframe/alphaframe/internal/external/yahoo"
	"github.com/alphaframe/alphaframe/internal/ranking"
	"github.com/alphaframe/alphaframe/internal/risk"
	"github.com/alphaframe/alphaframe/internal/sentiment"
	"github.com/alphaframe/alphaframe/pkg/config"
	"github.com/alphaframe/alphaframe/pkg/database"
	"github.com/alphaframe/alphaframe/pkg/httputil"
	"github.com/alphaframe/alphaframe/pkg/logger"
	"github.com/alphaframe/alphaframe/pkg/redis"
)

// app bundles everything the commands need
type app struct {
	cfg         *config.Config
	log         *logger.Logger
	db          *database.DB
	redisClient *redis.Client
	engine      *engine.Engine
	yahoo       *yahoo.Client
	ranker      *ranking.Ranker
	rankingRepo *ranking.Repository
	orderRepo   *execution.Repository
	selector    *ranking.Selector
	riskParams  risk.Parameters
	counter     *risk.DailyTradeCounter
	broker      execution.Broker
}

// buildApp wires the full dependency graph from configuration.
// The database and Redis are optional; everything degrades to
// in-memory behavior when they are absent.
func buildApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	// Flags beat environment when explicitly set
	if rootCmd.PersistentFlags().Changed("dry-run") {
		cfg.Risk.DryRun = dryRunFlag
	}

	log := logger.New(cfg)

	a := &app{cfg: cfg, log: log}

	// Optional database
	if cfg.Database.URL != "" {
		db, err := database.New(cfg)
		if err != nil {
			return nil, err
		}
		a.db = db
		log.Info("Connected to database")
	} else {
		log.Warn("DATABASE_URL not set, persistence disabled")
	}

	// Optional redis (enabled flag handled inside)
	redisClient, err := redis.New(cfg)
	if err != nil {
		return nil, err
	}
	a.redisClient = redisClient

	var cache *redis.Cache
	var limiter *redis.RateLimiter
	if redisClient.Enabled() {
		cache = redis.NewCache(redisClient, "alphaframe")
		limiter = redis.NewRateLimiter(redisClient, "alphaframe")
		log.Info("Connected to Redis")
	}

	// HTTP clients
	quoteHTTP := httputil.New(log)
	if limiter != nil {
		quoteHTTP.WithRateLimiter(limiter, redis.YahooRateLimit)
	}
	scrapeHTTP := httputil.NewWithTimeout(log, 15*time.Second).
		WithHeader("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	if limiter != nil {
		scrapeHTTP.WithRateLimiter(limiter, redis.FinvizRateLimit)
	}
	brokerHTTP := httputil.New(log)
	if limiter != nil {
		brokerHTTP.WithRateLimiter(limiter, redis.AlpacaRateLimit)
	}

	// Collaborator sources
	yahooClient := yahoo.NewClient(quoteHTTP, log)
	a.yahoo = yahooClient
	finvizClient := finviz.NewClient(scrapeHTTP, log)
	analyzer := sentiment.NewAnalyzer()

	market := engine.NewYahooMarketSource(yahooClient, cache)
	sentimentSource := engine.NewFinvizSentimentSource(finvizClient, analyzer, cache)

	// Ranking pipeline
	weights, err := ranking.NewWeightConfig(cfg.Strategy.PriceWeight, cfg.Strategy.SentimentWeight)
	if err != nil {
		return nil, err
	}
	method, err := ranking.ParseNormalizationMethod(cfg.Strategy.NormalizationMethod)
	if err != nil {
		return nil, err
	}
	selector, err := ranking.NewSelector(cfg.Strategy.TopN, cfg.Strategy.MinHeadlines, nil)
	if err != nil {
		return nil, err
	}
	a.selector = selector

	// Risk guardrails
	params, err := risk.NewParameters(
		cfg.Risk.MaxRiskPerPositionPct,
		cfg.Risk.MaxAllocationPct,
		cfg.Risk.StopLossPct,
		cfg.Risk.TakeProfitPct,
		cfg.Risk.MaxTradesPerDay,
	)
	if err != nil {
		return nil, err
	}
	a.riskParams = params

	// Repositories tolerate a nil pool
	var pool *pgxpool.Pool
	if a.db != nil {
		pool = a.db.Pool
	}
	a.rankingRepo = ranking.NewRepository(pool)
	a.orderRepo = execution.NewRepository(pool)

	// Broker: Alpaca paper API when keys are configured, mock otherwise
	if cfg.Alpaca.APIKey != "" {
		a.broker = alpaca.NewClient(brokerHTTP, log, cfg.Alpaca.APIKey, cfg.Alpaca.SecretKey, cfg.Alpaca.BaseURL)
	} else {
		log.Warn("ALPACA_API_KEY not set, using mock broker")
		a.broker = execution.NewMockBroker()
	}

	// Seed the daily counter from the order log so a restart cannot
	// reset the daily budget
	a.counter = risk.NewDailyTradeCounter()
	if count, err := a.orderRepo.CountTradesOn(context.Background(), time.Now()); err == nil {
		for i := 0; i < count; i++ {
			a.counter.Increment()
		}
	}

	executor := execution.NewExecutor(a.broker, a.orderRepo, a.counter, params.MaxTradesPerDay, log)

	a.ranker = ranking.NewRanker(weights, method, log)

	a.engine = engine.New(engine.Config{
		Assembler:   engine.NewAssembler(market, sentimentSource, log),
		Ranker:      a.ranker,
		Selector:    selector,
		RiskManager: risk.NewManager(params, log),
		Executor:    executor,
		Sink:        a.rankingRepo,
		DryRun:      cfg.Risk.DryRun,
	}, log)

	return a, nil
}

// close releases held connections
func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redisClient != nil {
		a.redisClient.Close()
	}
}

// tickers resolves the universe, flag first, config second
func (a *app) tickers() []string {
	if len(tickersFlag) > 0 {
		return tickersFlag
	}
	return a.cfg.Strategy.Tickers
}

// portfolioValue asks the broker, falling back to configuration
func (a *app) portfolioValue(ctx context.Context) float64 {
	account, err := a.broker.GetAccount(ctx)
	if err != nil {
		a.log.WithError(err).Warn("Account fetch failed, using configured portfolio value")
		return a.cfg.Risk.PortfolioValue
	}
	return account.PortfolioValue
}

package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"qrmenu-reco/api"
	"qrmenu-reco/cache"
	"qrmenu-reco/config"
	"qrmenu-reco/database"
	"qrmenu-reco/database/abtests"
	"qrmenu-reco/database/analytics"
	"qrmenu-reco/database/catalog"
	"qrmenu-reco/database/events"
	"qrmenu-reco/database/orders"
	"qrmenu-reco/database/pairs"
	"qrmenu-reco/database/tenants"
	"qrmenu-reco/feed"
	"qrmenu-reco/handlers"
	"qrmenu-reco/realtime"
	"qrmenu-reco/recommend"
)

// App represents the main application
type App struct {
	config         *config.Config
	feedManager    *feed.ConnectionManager
	handlerManager *handlers.HandlerManager
	db             *database.Database
	redis          *cache.RedisClient
	lockConn       *database.LockConn
	broker         *realtime.Broker

	pairRepo      *pairs.Repository
	orderRepo     *orders.Repository
	catalogRepo   *catalog.Repository
	eventRepo     *events.Repository
	analyticsRepo *analytics.Repository
	abtestRepo    *abtests.Repository
	tenantRepo    *tenants.Repository

	engine       *recommend.Engine
	recalculator *StatsRecalculator
	aggregator   *PerformanceAggregator
	eventTracker *EventTracker
}

// New creates a new application instance
func New(cfg *config.Config) *App {
	return &App{
		config:         cfg,
		feedManager:    feed.NewConnectionManager(cfg.OrderFeedWSURL),
		handlerManager: handlers.NewHandlerManager(),
	}
}

// Start starts the application
func (a *App) Start() error {
	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. Database Connection
	fmt.Println("🗄️  Connecting to database...")

	dbPort, err := strconv.Atoi(a.config.DatabasePort)
	if err != nil {
		return fmt.Errorf("invalid database port: %w", err)
	}

	db, err := database.Connect(
		a.config.DatabaseHost,
		dbPort,
		a.config.DatabaseName,
		a.config.DatabaseUser,
		a.config.DatabasePassword,
	)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	a.db = db

	if err := a.db.InitSchema(); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}

	// 2. Advisory lock connection for the aggregator
	lockConn, err := database.NewLockConn(database.LockConfig{
		Host:     a.config.DatabaseHost,
		Port:     a.config.DatabasePort,
		User:     a.config.DatabaseUser,
		Password: a.config.DatabasePassword,
		DBName:   a.config.DatabaseName,
	})
	if err != nil {
		log.Printf("⚠️  Advisory lock connection failed: %v. Aggregation relies on upsert idempotence only.", err)
	} else {
		a.lockConn = lockConn
	}

	// 3. Redis Connection
	fmt.Println("🧠 Connecting to Redis...")
	redisClient := cache.NewRedisClient(
		a.config.RedisHost,
		a.config.RedisPort,
		a.config.RedisPassword,
	)
	if redisClient == nil {
		fmt.Println("⚠️  Redis connection failed. Caching disabled.")
	} else {
		a.redis = redisClient
	}

	// 4. Repositories
	a.pairRepo = pairs.NewRepository(a.db.DB())
	a.orderRepo = orders.NewRepository(a.db.DB())
	a.catalogRepo = catalog.NewRepository(a.db.DB())
	a.eventRepo = events.NewRepository(a.db.DB())
	a.analyticsRepo = analytics.NewRepository(a.db.DB())
	a.abtestRepo = abtests.NewRepository(a.db.DB())
	a.tenantRepo = tenants.NewRepository(a.db.DB(), a.config.Recommend)

	// 5. Realtime Broker
	a.broker = realtime.NewBroker()
	go a.broker.Run()

	// 6. Recommendation Engine
	a.engine = recommend.NewEngine(a.pairRepo, a.catalogRepo, a.orderRepo, a.tenantRepo, a.redis)

	// 7. Background workers
	log.Println("🚀 Starting background workers...")

	a.recalculator = NewStatsRecalculator(a.pairRepo, a.orderRepo, a.config.Jobs)
	go a.recalculator.Start()

	a.aggregator = NewPerformanceAggregator(a.eventRepo, a.orderRepo, a.analyticsRepo, a.lockConn, a.config.Jobs)
	go a.aggregator.Start()

	a.eventTracker = NewEventTracker(a.eventRepo, a.pairRepo, a.abtestRepo, a.broker, a.config.Jobs)
	go a.eventTracker.Start()

	// 8. Connect order feed
	if err := a.feedManager.Connect(); err != nil {
		return fmt.Errorf("order feed connection failed: %w", err)
	}
	a.feedManager.StartPing(25 * time.Second)
	log.Println("✅ Order feed connected")

	// 9. Setup handlers
	a.setupHandlers()

	// 10. Start API Server (AFTER workers are initialized)
	apiServer := api.NewServer(a.engine, a.broker, a.abtestRepo, a.analyticsRepo,
		a.eventRepo, a.orderRepo, a.pairRepo, a.tenantRepo, a.config.Recommend)
	apiServer.SetEventTracker(a.eventTracker)
	apiServer.SetAggregator(a.aggregator)

	go func() {
		if err := apiServer.Start(a.config.APIPort); err != nil {
			log.Printf("⚠️  API Server failed: %v", err)
		}
	}()

	// Setup WaitGroup for goroutines
	var wg sync.WaitGroup

	// 11. Start feed health monitoring
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.feedManager.RunHealthMonitor(ctx)
	}()

	// 12. Start message processing
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.readAndProcessMessages(ctx)
	}()

	// 13. Wait for interrupt and perform graceful shutdown
	err = a.gracefulShutdown(cancel)
	wg.Wait()
	return err
}

// gracefulShutdown handles graceful shutdown with timeout
func (a *App) gracefulShutdown(cancel context.CancelFunc) error {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	<-interrupt
	fmt.Println("\n🛑 Shutdown signal received, initiating graceful shutdown...")

	// Cancel context to stop all goroutines
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	shutdownComplete := make(chan struct{})
	go func() {
		if a.recalculator != nil {
			fmt.Println("📊 Stopping stats recalculator...")
			a.recalculator.Stop()
		}
		if a.aggregator != nil {
			fmt.Println("📊 Stopping performance aggregator...")
			a.aggregator.Stop()
		}
		if a.eventTracker != nil {
			fmt.Println("📥 Stopping event tracker...")
			a.eventTracker.Stop()
		}

		fmt.Println("📡 Closing order feed connection...")
		if err := a.feedManager.Close(); err != nil {
			log.Printf("Error closing order feed: %v", err)
		} else {
			fmt.Println("✅ Order feed closed")
		}

		if a.lockConn != nil {
			if err := a.lockConn.Close(); err != nil {
				log.Printf("Error closing lock connection: %v", err)
			}
		}

		if a.db != nil {
			if err := a.db.Close(); err != nil {
				log.Printf("Error closing database: %v", err)
			} else {
				fmt.Println("✅ Database connection closed")
			}
		}

		if a.redis != nil {
			if err := a.redis.Close(); err != nil {
				log.Printf("Error closing redis: %v", err)
			} else {
				fmt.Println("✅ Redis connection closed")
			}
		}

		close(shutdownComplete)
	}()

	select {
	case <-shutdownComplete:
		fmt.Println("✅ Graceful shutdown completed")
		return nil
	case <-shutdownCtx.Done():
		fmt.Println("⚠️  Shutdown timeout exceeded, forcing exit")
		return fmt.Errorf("shutdown timeout")
	}
}

// readAndProcessMessages reads messages from the feed and routes them to
// handlers
func (a *App) readAndProcessMessages(ctx context.Context) {
	reconnectDelay := 5 * time.Second
	maxReconnectDelay := 60 * time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
			message, err := a.feedManager.ReadMessage()
			if err != nil {
				select {
				case <-ctx.Done():
					return
				default:
					// Feed connection error - attempt reconnection
					log.Printf("⚠️  Feed error: %v", err)
					log.Printf("🔄 Attempting to reconnect in %v...", reconnectDelay)

					select {
					case <-ctx.Done():
						return
					case <-time.After(reconnectDelay):
					}

					if err := a.feedManager.Reconnect(); err != nil {
						log.Printf("❌ Reconnection failed: %v", err)
						// Exponential backoff
						reconnectDelay = reconnectDelay * 2
						if reconnectDelay > maxReconnectDelay {
							reconnectDelay = maxReconnectDelay
						}
						continue
					}

					reconnectDelay = 5 * time.Second
					continue
				}
			}

			if err := a.handlerManager.HandleMessage(message); err != nil {
				log.Printf("Handler error: %v", err)
				// Don't terminate on handler errors, just log and continue
				continue
			}
		}
	}
}

// setupHandlers initializes and registers all feed message handlers
func (a *App) setupHandlers() {
	orderHandler := handlers.NewOrderHandler(a.orderRepo, a.pairRepo, a.catalogRepo, a.recalculator)
	a.handlerManager.RegisterHandler(feed.TypeOrderPlaced, orderHandler)
	a.handlerManager.RegisterHandler(feed.TypeOrderComplete, orderHandler)

	catalogHandler := handlers.NewCatalogHandler(a.catalogRepo)
	a.handlerManager.RegisterHandler(feed.TypeCatalogItem, catalogHandler)
}

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crm-service/config"
	"crm-service/internal/api"
	"crm-service/internal/broker"
	"crm-service/internal/jobs"
	"crm-service/internal/models"
	"crm-service/internal/redisclient"
	"crm-service/internal/scheduler"
	"crm-service/internal/service"
	"crm-service/internal/store"
	"crm-service/internal/upstream"
	"crm-service/internal/util"
	"crm-service/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting CRM service")

	tp, err := util.InitTracer("crm-service", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Redis connected")

	eventProducer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents)
	defer eventProducer.Close()
	jobProducer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicJobs)
	defer jobProducer.Close()
	log.Println("Kafka producers initialized")

	eventPublisher := broker.NewEventPublisher(eventProducer)
	jobPublisher := broker.NewEventPublisher(jobProducer)

	engine := service.NewMutationEngine(db, eventPublisher)
	replenisher := service.NewStockReplenisher(db, eventPublisher)

	apiClient := upstream.NewClient(cfg.Jobs.UpstreamURL, cfg.Jobs.UpstreamTimeout)

	heartbeatLog := mustJobLogger(cfg.Jobs.LogDir, jobs.HeartbeatJobName)
	stockLog := mustJobLogger(cfg.Jobs.LogDir, jobs.StockUpdateJobName)
	reminderLog := mustJobLogger(cfg.Jobs.LogDir, jobs.OrderRemindersJobName)
	reportLog := mustJobLogger(cfg.Jobs.LogDir, jobs.ReportJobName)

	heartbeat := jobs.NewHeartbeatMonitor(apiClient, heartbeatLog)
	stockScan := jobs.NewStockScanJob(apiClient, stockLog, cfg.Jobs.RestockAmount)
	reminders := jobs.NewOrderReminderScanner(apiClient, reminderLog, cfg.Jobs.ReminderCutoff)
	report := jobs.NewReportGenerator(apiClient, reportLog)

	sched := scheduler.New(scheduler.WithLocker(redisClient, cfg.Scheduler.JobLockTTL))
	mustAddInterval(sched, cfg.Scheduler.HeartbeatSchedule, heartbeat)
	mustAddInterval(sched, cfg.Scheduler.StockScanSchedule, stockScan)
	mustAddInterval(sched, cfg.Scheduler.ReminderSchedule, reminders)

	dispatchReport := func(ctx context.Context) error {
		return jobPublisher.PublishJobRequested(ctx, &models.JobRequestedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeJobRequested,
				Timestamp: time.Now(),
			},
			JobName: jobs.ReportJobName,
			Attempt: 1,
		})
	}
	if err := sched.AddQueuedTrigger(cfg.Scheduler.ReportSchedule, jobs.ReportJobName, dispatchReport); err != nil {
		log.Fatalf("Failed to register report trigger: %v", err)
	}

	sched.Start()
	defer sched.Stop()

	retryPolicy := scheduler.RetryPolicy{
		MaxAttempts: cfg.Scheduler.RetryMaxAttempts,
		Delay:       cfg.Scheduler.RetryDelay,
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	jobConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicJobs, cfg.Kafka.ConsumerGroup)
	jobWorker := worker.NewJobWorker(jobConsumer, retryPolicy, report)
	go func() {
		if err := jobWorker.Start(workerCtx); err != nil {
			log.Printf("Job worker error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handler := api.NewHandler(engine, replenisher, db, redisClient)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	jobWorker.Stop()

	log.Println("Server exited")
}

func mustJobLogger(dir, jobName string) *zap.Logger {
	logger, err := jobs.NewJobLogger(dir, jobName)
	if err != nil {
		log.Fatalf("Failed to open job log for %s: %v", jobName, err)
	}
	return logger
}

func mustAddInterval(sched *scheduler.Scheduler, spec string, job scheduler.Job) {
	if err := sched.AddIntervalJob(spec, job); err != nil {
		log.Fatalf("Failed to register job %s: %v", job.Name(), err)
	}
}

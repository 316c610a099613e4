package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"example.com/presence/internal/cloud"
	"example.com/presence/internal/config"
	"example.com/presence/internal/monitor"
	"example.com/presence/internal/notify"
)

func main() {
	cmd := flag.String("cmd", "", "one-shot command: start, stop or status (default: run the monitor loop)")
	flag.Parse()

	cfg := config.Load()
	if cfg.InstanceID == "" {
		log.Fatalf("MONITOR_INSTANCE_ID is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatalf("failed to load aws config: %v", err)
	}

	controller := cloud.NewEC2Controller(ec2.NewFromConfig(awsCfg))

	if *cmd != "" {
		runCommand(ctx, controller, cfg, *cmd)
		return
	}

	source := cloud.NewCloudWatchSource(cloudwatch.NewFromConfig(awsCfg), cfg.MetricNamespace)
	notifier := notify.NewKafkaNotifier(cfg.KafkaBrokers, cfg.NotifyTopic)
	defer notifier.Close()

	mon := monitor.New(controller, source, notifier, monitor.Config{
		ResourceID:    cfg.InstanceID,
		MetricName:    cfg.MetricName,
		Period:        cfg.MonitorPeriod,
		Lookback:      cfg.MonitorLookback,
		FetchTimeout:  cfg.MonitorFetchTimeout,
		MinSamples:    cfg.IdleMinSamples,
		WindowSamples: cfg.IdleWindowSamples,
		Threshold:     cfg.IdleThreshold,
		NotifyChannel: cfg.NotifyChannel,
	})

	metricsSrv := &http.Server{Addr: cfg.MetricsAddress, Handler: promhttp.Handler()}

	go func() {
		log.Printf("idlewatch metrics listening on %s", cfg.MetricsAddress)
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()

	go mon.Start(ctx)
	log.Printf("idlewatch started (instance=%s, period=%s)", cfg.InstanceID, cfg.MonitorPeriod)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("idlewatch shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("metrics server shutdown error: %v", err)
	}

	mon.Wait()
}

func runCommand(ctx context.Context, controller *cloud.EC2Controller, cfg config.Config, cmd string) {
	ctx, cancel := context.WithTimeout(ctx, cfg.MonitorFetchTimeout)
	defer cancel()

	switch cmd {
	case "start":
		if err := controller.Start(ctx, cfg.InstanceID); err != nil {
			log.Fatalf("start failed: %v", err)
		}
		log.Printf("start issued for %s", cfg.InstanceID)
	case "stop":
		if err := controller.Stop(ctx, cfg.InstanceID); err != nil {
			log.Fatalf("stop failed: %v", err)
		}
		log.Printf("stop issued for %s", cfg.InstanceID)
	case "status":
		state, err := controller.DescribeState(ctx, cfg.InstanceID)
		if err != nil {
			log.Fatalf("status failed: %v", err)
		}
		log.Printf("instance %s is %s", cfg.InstanceID, state)
	default:
		log.Fatalf("unknown command %q (want start, stop or status)", cmd)
	}
}

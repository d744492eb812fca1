// Command notifier consumes order.created events and e-mails order confirmations.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"storefront-backend-go/internal/config"
	"storefront-backend-go/internal/notify"
	"storefront-backend-go/pkg/mailer"
	"storefront-backend-go/pkg/messagequeue"
)

func main() {
	if !strings.EqualFold(os.Getenv("GIN_MODE"), "release") {
		_ = godotenv.Load()
	}

	appConfig, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to load application configuration: %v", err)
	}

	var logger *zap.Logger
	if appConfig.IsRelease() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer logger.Sync()

	if appConfig.MQDriver == "" {
		logger.Fatal("MQ_DRIVER must be set for the notifier")
	}
	if !appConfig.MailEnabled() {
		logger.Fatal("SMTP_HOST, SMTP_USER, SMTP_PASS and MAIL_FROM must be set for the notifier")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	url := appConfig.RabbitMQURL
	if appConfig.MQDriver == messagequeue.DriverNATS {
		url = appConfig.NATSURL
	}
	mq, err := messagequeue.New(ctx, appConfig.MQDriver, url, logger)
	if err != nil {
		logger.Fatal("Failed to connect to message broker", zap.Error(err))
	}
	defer mq.Close()

	smtpMailer, err := mailer.New(mailer.Config{
		Host: appConfig.SMTPHost,
		Port: appConfig.SMTPPort,
		User: appConfig.SMTPUser,
		Pass: appConfig.SMTPPass,
		From: appConfig.MailFrom,
	})
	if err != nil {
		logger.Fatal("Failed to configure mailer", zap.Error(err))
	}
	orderMailer := notify.NewOrderMailer(smtpMailer, logger)

	logger.Info("Notifier consuming", zap.String("queue", appConfig.OrderEventsQueue), zap.String("driver", appConfig.MQDriver))
	if err := mq.Consume(ctx, appConfig.OrderEventsQueue, orderMailer.Handle); err != nil && ctx.Err() == nil {
		logger.Fatal("Consumer stopped", zap.Error(err))
	}
	logger.Info("Notifier exiting gracefully.")
}

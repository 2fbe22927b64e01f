// auditconsumer tails the audit topic and prints each entry. It exists so the
// audit trail can be inspected without extra tooling.
package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/shipway/shipway/internal/config"
)

const groupID = "shipway-audit-consumer"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()
	if len(cfg.KafkaBrokers) == 0 {
		log.Fatal("KAFKA_BROKERS must be set")
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.KafkaBrokers,
		GroupID:        groupID,
		Topic:          cfg.KafkaTopic,
		MinBytes:       10e3,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
		MaxWait:        3 * time.Second,
	})
	defer func() {
		if err := r.Close(); err != nil {
			log.Printf("error closing kafka reader: %v", err)
		}
	}()

	log.Printf("consuming topic %q from %s", cfg.KafkaTopic, strings.Join(cfg.KafkaBrokers, ","))

	for {
		m, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Println("shutdown signal received, stopping consumer")
				return
			}
			log.Printf("error reading message: %v", err)
			time.Sleep(5 * time.Second)
			continue
		}

		fmt.Printf("%s partition=%d offset=%d key=%s\n%s\n",
			m.Time.Format(time.RFC3339), m.Partition, m.Offset, string(m.Key), string(m.Value))
	}
}

package config

import (
	"strings"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/cockroachdb/errors"
)

// Kafka drivers accepted by KafkaConfig.Driver.
const (
	DriverSarama  = "sarama"
	DriverKafkaGo = "kafka-go"
	DriverNone    = "none"
)

// logger.Initialise refuses fewer rotated files than this.
const minimumLogCount = 10

type KafkaConfig struct {
	Driver  string
	Brokers []string
	Topic   string
}

type BroadcastConfig struct {
	Interval   time.Duration
	MaxRetries uint32
}

// Config carries everything rbtreed needs at startup.
type Config struct {
	Listen          string
	JournalDir      string
	OutboxDir       string
	SegmentSize     int64
	SegmentDuration time.Duration

	// MaxNodes bounds the node pool; zero is unbounded.
	MaxNodes int

	Kafka     KafkaConfig
	Broadcast BroadcastConfig
	Logging   logger.Configuration
}

func Default() Config {
	return Config{
		Listen:          ":50051",
		JournalDir:      "./wal_entry",
		OutboxDir:       "./wal_exit",
		SegmentSize:     2 * 1024 * 1024,
		SegmentDuration: time.Minute,
		MaxNodes:        0,
		Kafka: KafkaConfig{
			Driver: DriverNone,
			Topic:  "rbtree.events",
		},
		Broadcast: BroadcastConfig{
			Interval:   250 * time.Millisecond,
			MaxRetries: 5,
		},
		Logging: logger.Configuration{
			Directory: "./log",
			File:      "rbtreed.log",
			Size:      1048576,
			Count:     10,
			Console:   false,
			Levels: map[string]string{
				logger.DefaultTag: "info",
			},
		},
	}
}

// ParseBrokers splits a comma separated broker list, dropping blanks.
func ParseBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func (c Config) Validate() error {
	if c.Listen == "" {
		return errors.New("config: listen address is empty")
	}
	if c.JournalDir == "" {
		return errors.New("config: journal dir is empty")
	}
	if c.OutboxDir == "" {
		return errors.New("config: outbox dir is empty")
	}
	if c.JournalDir == c.OutboxDir {
		return errors.Newf("config: journal and outbox share dir %q", c.JournalDir)
	}
	if c.SegmentSize <= 0 {
		return errors.Newf("config: segment size %d must be positive", c.SegmentSize)
	}
	if c.SegmentDuration <= 0 {
		return errors.Newf("config: segment duration %s must be positive", c.SegmentDuration)
	}
	if c.MaxNodes < 0 {
		return errors.Newf("config: max nodes %d is negative", c.MaxNodes)
	}
	if c.Logging.Directory == "" || c.Logging.File == "" {
		return errors.New("config: log directory and file are required")
	}
	if c.Logging.Count < minimumLogCount {
		return errors.Newf("config: log count %d is below %d", c.Logging.Count, minimumLogCount)
	}

	switch c.Kafka.Driver {
	case DriverNone:
		return nil
	case DriverSarama, DriverKafkaGo:
	default:
		return errors.Newf("config: unknown kafka driver %q", c.Kafka.Driver)
	}
	if len(c.Kafka.Brokers) == 0 {
		return errors.Newf("config: kafka driver %s needs brokers", c.Kafka.Driver)
	}
	if c.Kafka.Topic == "" {
		return errors.New("config: kafka topic is empty")
	}
	if c.Broadcast.Interval <= 0 {
		return errors.Newf("config: broadcast interval %s must be positive", c.Broadcast.Interval)
	}
	return nil
}

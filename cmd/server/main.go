package main

import (
	"fmt"
	"os"

	"github.com/bitmark-inc/logger"
	"github.com/urfave/cli"

	"redblack/config"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero"

func main() {
	def := config.Default()

	app := cli.NewApp()
	app.Name = "rbtreed"
	app.Usage = "red-black tree host with journal, outbox and gRPC"
	app.Version = version

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "listen, l",
			Value:  def.Listen,
			Usage:  "gRPC listen `ADDRESS`",
			EnvVar: "RBTREE_LISTEN",
		},
		cli.StringFlag{
			Name:   "journal-dir",
			Value:  def.JournalDir,
			Usage:  "command journal `DIR`",
			EnvVar: "RBTREE_JOURNAL_DIR",
		},
		cli.StringFlag{
			Name:   "outbox-dir",
			Value:  def.OutboxDir,
			Usage:  "event outbox `DIR`",
			EnvVar: "RBTREE_OUTBOX_DIR",
		},
		cli.Int64Flag{
			Name:   "segment-size",
			Value:  def.SegmentSize,
			Usage:  "journal segment size in `BYTES`",
			EnvVar: "RBTREE_SEGMENT_SIZE",
		},
		cli.DurationFlag{
			Name:   "segment-duration",
			Value:  def.SegmentDuration,
			Usage:  "journal segment age before rotation",
			EnvVar: "RBTREE_SEGMENT_DURATION",
		},
		cli.IntFlag{
			Name:   "max-nodes",
			Value:  def.MaxNodes,
			Usage:  "node pool limit, 0 for unbounded `COUNT`",
			EnvVar: "RBTREE_MAX_NODES",
		},
		cli.StringFlag{
			Name:   "kafka-driver",
			Value:  def.Kafka.Driver,
			Usage:  "event publisher `DRIVER` [sarama|kafka-go|none]",
			EnvVar: "RBTREE_KAFKA_DRIVER",
		},
		cli.StringFlag{
			Name:   "kafka-brokers",
			Value:  "",
			Usage:  "comma separated `HOST:PORT` list",
			EnvVar: "RBTREE_KAFKA_BROKERS",
		},
		cli.StringFlag{
			Name:   "kafka-topic",
			Value:  def.Kafka.Topic,
			Usage:  "event `TOPIC`",
			EnvVar: "RBTREE_KAFKA_TOPIC",
		},
		cli.DurationFlag{
			Name:   "broadcast-interval",
			Value:  def.Broadcast.Interval,
			Usage:  "outbox drain interval",
			EnvVar: "RBTREE_BROADCAST_INTERVAL",
		},
		cli.UintFlag{
			Name:   "max-retries",
			Value:  uint(def.Broadcast.MaxRetries),
			Usage:  "publish attempts per event `COUNT`",
			EnvVar: "RBTREE_MAX_RETRIES",
		},
		cli.StringFlag{
			Name:   "log-dir",
			Value:  def.Logging.Directory,
			Usage:  "log `DIR`",
			EnvVar: "RBTREE_LOG_DIR",
		},
		cli.StringFlag{
			Name:   "log-level",
			Value:  def.Logging.Levels[logger.DefaultTag],
			Usage:  "default log `LEVEL`",
			EnvVar: "RBTREE_LOG_LEVEL",
		},
		cli.BoolFlag{
			Name:   "log-console",
			Usage:  " also log to the console",
			EnvVar: "RBTREE_LOG_CONSOLE",
		},
	}
	app.Action = runServer

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "rbtreed: %s\n", err)
		os.Exit(1)
	}
}

func configFromContext(c *cli.Context) config.Config {
	cfg := config.Default()

	cfg.Listen = c.String("listen")
	cfg.JournalDir = c.String("journal-dir")
	cfg.OutboxDir = c.String("outbox-dir")
	cfg.SegmentSize = c.Int64("segment-size")
	cfg.SegmentDuration = c.Duration("segment-duration")
	cfg.MaxNodes = c.Int("max-nodes")

	cfg.Kafka.Driver = c.String("kafka-driver")
	cfg.Kafka.Brokers = config.ParseBrokers(c.String("kafka-brokers"))
	cfg.Kafka.Topic = c.String("kafka-topic")

	cfg.Broadcast.Interval = c.Duration("broadcast-interval")
	cfg.Broadcast.MaxRetries = uint32(c.Uint("max-retries"))

	cfg.Logging.Directory = c.String("log-dir")
	cfg.Logging.Console = c.Bool("log-console")
	cfg.Logging.Levels = map[string]string{
		logger.DefaultTag: c.String("log-level"),
	}
	return cfg
}

package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/cockroachdb/errors"
	"github.com/urfave/cli"
	"google.golang.org/grpc"

	"redblack/api/grpcserver"
	"redblack/config"
	"redblack/domain/rbtree"
	"redblack/infra/kafka"
	"redblack/infra/memory"
	"redblack/infra/sequence"
	entrywal "redblack/infra/wal/entry"
	exitwal "redblack/infra/wal/exit"
	"redblack/jobs/broadcaster"
	"redblack/service"
)

const shutdownGrace = 5 * time.Second

func runServer(c *cli.Context) error {
	cfg := configFromContext(c)
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Logging.Directory, 0o755); err != nil {
		return errors.Wrap(err, "create log dir")
	}
	if err := logger.Initialise(cfg.Logging); err != nil {
		return errors.Wrap(err, "logger")
	}
	defer logger.Finalise()

	log := logger.New("main")
	log.Infof("rbtreed %s starting", version)

	// ---------------- Entry WAL ----------------

	journal, err := entrywal.Open(entrywal.Config{
		Dir:             cfg.JournalDir,
		SegmentSize:     cfg.SegmentSize,
		SegmentDuration: cfg.SegmentDuration,
	})
	if err != nil {
		log.Criticalf("entry WAL init failed: %s", err)
		return err
	}

	// ---------------- Exit WAL ----------------

	outbox, err := exitwal.Open(cfg.OutboxDir)
	if err != nil {
		log.Criticalf("exit WAL init failed: %s", err)
		_ = journal.Close()
		return err
	}
	defer outbox.Close()

	// ---------------- Memory + Domain ----------------

	pool := memory.NewPool(cfg.MaxNodes, func() *rbtree.Node {
		return &rbtree.Node{}
	})
	tree := rbtree.New(rbtree.WithAllocator(pool))
	seqGen := sequence.New(0)

	// ---------------- WAL REPLAY ----------------

	if err := service.ReplayFromWAL(cfg.JournalDir, tree, seqGen, logger.New("service")); err != nil {
		log.Criticalf("WAL replay failed: %s", err)
		_ = journal.Close()
		return err
	}
	if err := tree.Check(); err != nil {
		log.Criticalf("replayed tree is invalid: %s", err)
		_ = journal.Close()
		return err
	}

	// ---------------- Service ----------------

	svc := service.NewTreeService(tree, seqGen, journal, outbox, logger.New("service"))
	defer func() {
		if err := svc.Close(); err != nil {
			log.Errorf("service close: %s", err)
		}
		if err := journal.Close(); err != nil {
			log.Errorf("journal close: %s", err)
		}
	}()

	// ---------------- Background Jobs ----------------

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	publisher, err := newPublisher(cfg.Kafka)
	if err != nil {
		log.Criticalf("kafka %s init failed: %s", cfg.Kafka.Driver, err)
		return err
	}
	done := make(chan struct{})
	if publisher != nil {
		bc := broadcaster.New(outbox, publisher, broadcaster.Config{
			Interval:   cfg.Broadcast.Interval,
			MaxRetries: cfg.Broadcast.MaxRetries,
		}, logger.New("broadcaster"))
		go func() {
			defer close(done)
			bc.Run(ctx)
		}()
		defer func() {
			cancel()
			<-done
			if err := bc.Close(); err != nil {
				log.Errorf("publisher close: %s", err)
			}
		}()
	} else {
		log.Info("no kafka driver, events stay in the outbox")
		close(done)
	}

	// ---------------- gRPC ----------------

	lis, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		log.Criticalf("listen failed: %s", err)
		return err
	}

	grpcSrv := grpc.NewServer()
	grpcserver.RegisterTreeServer(grpcSrv, grpcserver.NewServer(svc, logger.New("grpc")))

	serveErr := make(chan error, 1)
	go func() { serveErr <- grpcSrv.Serve(lis) }()
	log.Infof("serving on %s with %d keys", lis.Addr(), tree.Len())

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		log.Infof("received %s, shutting down", sig)
	case err := <-serveErr:
		log.Errorf("gRPC server exited: %s", err)
		cancel()
		return err
	}

	cancel()
	stopped := make(chan struct{})
	go func() {
		grpcSrv.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(shutdownGrace):
		log.Warn("graceful stop timed out")
		grpcSrv.Stop()
	}
	return nil
}

func newPublisher(cfg config.KafkaConfig) (broadcaster.Publisher, error) {
	switch cfg.Driver {
	case config.DriverSarama:
		return broadcaster.NewSaramaPublisher(cfg.Brokers, cfg.Topic)
	case config.DriverKafkaGo:
		return kafka.NewProducer(kafka.Config{
			Brokers: cfg.Brokers,
			Topic:   cfg.Topic,
		})
	default:
		return nil, nil
	}
}

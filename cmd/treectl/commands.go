package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/urfave/cli"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"redblack/api/grpcserver"
)

type session struct {
	conn   *grpc.ClientConn
	client *grpcserver.Client
	ctx    context.Context
	cancel context.CancelFunc
}

func connect(c *cli.Context) (*session, error) {
	conn, err := grpc.NewClient(
		c.GlobalString("connect"),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "connect %s", c.GlobalString("connect"))
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.GlobalDuration("timeout"))
	return &session{
		conn:   conn,
		client: grpcserver.NewClient(conn),
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

func (s *session) Close() {
	s.cancel()
	_ = s.conn.Close()
}

func parseKeys(c *cli.Context, atLeast int) ([]int64, error) {
	args := c.Args()
	if len(args) < atLeast {
		return nil, errors.Newf("expected at least %d key argument(s)", atLeast)
	}
	keys := make([]int64, len(args))
	for i, a := range args {
		k, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "key %q", a)
		}
		keys[i] = k
	}
	return keys, nil
}

func runInsert(c *cli.Context) error {
	keys, err := parseKeys(c, 1)
	if err != nil {
		return err
	}
	s, err := connect(c)
	if err != nil {
		return err
	}
	defer s.Close()

	for _, k := range keys {
		seq, err := s.client.Insert(s.ctx, k)
		if err != nil {
			return errors.Wrapf(err, "insert %d", k)
		}
		fmt.Fprintf(c.App.Writer, "inserted %d seq %d\n", k, seq)
	}
	return nil
}

func runErase(c *cli.Context) error {
	keys, err := parseKeys(c, 1)
	if err != nil {
		return err
	}
	s, err := connect(c)
	if err != nil {
		return err
	}
	defer s.Close()

	for _, k := range keys {
		seq, err := s.client.Erase(s.ctx, k)
		if err != nil {
			return errors.Wrapf(err, "erase %d", k)
		}
		fmt.Fprintf(c.App.Writer, "erased %d seq %d\n", k, seq)
	}
	return nil
}

func runFind(c *cli.Context) error {
	keys, err := parseKeys(c, 1)
	if err != nil {
		return err
	}
	s, err := connect(c)
	if err != nil {
		return err
	}
	defer s.Close()

	k, err := s.client.Find(s.ctx, keys[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, k)
	return nil
}

func runMin(c *cli.Context) error {
	s, err := connect(c)
	if err != nil {
		return err
	}
	defer s.Close()

	k, err := s.client.Min(s.ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, k)
	return nil
}

func runMax(c *cli.Context) error {
	s, err := connect(c)
	if err != nil {
		return err
	}
	defer s.Close()

	k, err := s.client.Max(s.ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, k)
	return nil
}

func runExport(c *cli.Context) error {
	s, err := connect(c)
	if err != nil {
		return err
	}
	defer s.Close()

	keys, err := s.client.Export(s.ctx, uint32(c.Uint("limit")))
	if err != nil {
		return err
	}
	for _, k := range keys {
		fmt.Fprintln(c.App.Writer, k)
	}
	return nil
}

func runStats(c *cli.Context) error {
	s, err := connect(c)
	if err != nil {
		return err
	}
	defer s.Close()

	st, err := s.client.Stats(s.ctx)
	if err != nil {
		return err
	}
	printJson(c, st)
	return nil
}

func runVerify(c *cli.Context) error {
	s, err := connect(c)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.client.Verify(s.ctx); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "ok")
	return nil
}

func printJson(c *cli.Context, v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(c.App.ErrWriter, "formatting error: %s\n", err)
		return
	}
	fmt.Fprintf(c.App.Writer, "%s\n", b)
}

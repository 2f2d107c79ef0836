package grpcserver

import (
	"context"
	"encoding/binary"

	"github.com/cockroachdb/errors"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Client is a typed client for rbtree.v1.TreeService.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) Insert(ctx context.Context, key int64) (uint64, error) {
	out := new(wrapperspb.UInt64Value)
	if err := c.cc.Invoke(ctx, fullMethod("Insert"), wrapperspb.Int64(key), out); err != nil {
		return 0, err
	}
	return out.GetValue(), nil
}

func (c *Client) Erase(ctx context.Context, key int64) (uint64, error) {
	out := new(wrapperspb.UInt64Value)
	if err := c.cc.Invoke(ctx, fullMethod("Erase"), wrapperspb.Int64(key), out); err != nil {
		return 0, err
	}
	return out.GetValue(), nil
}

func (c *Client) Find(ctx context.Context, key int64) (int64, error) {
	out := new(wrapperspb.Int64Value)
	if err := c.cc.Invoke(ctx, fullMethod("Find"), wrapperspb.Int64(key), out); err != nil {
		return 0, err
	}
	return out.GetValue(), nil
}

func (c *Client) Min(ctx context.Context) (int64, error) {
	out := new(wrapperspb.Int64Value)
	if err := c.cc.Invoke(ctx, fullMethod("Min"), &emptypb.Empty{}, out); err != nil {
		return 0, err
	}
	return out.GetValue(), nil
}

func (c *Client) Max(ctx context.Context) (int64, error) {
	out := new(wrapperspb.Int64Value)
	if err := c.cc.Invoke(ctx, fullMethod("Max"), &emptypb.Empty{}, out); err != nil {
		return 0, err
	}
	return out.GetValue(), nil
}

// Export fetches up to capacity keys; zero fetches all of them.
func (c *Client) Export(ctx context.Context, capacity uint32) ([]int64, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, fullMethod("Export"), wrapperspb.UInt32(capacity), out); err != nil {
		return nil, err
	}

	buf := out.GetValue()
	if len(buf)%8 != 0 {
		return nil, errors.Newf("export payload of %d bytes is not a key multiple", len(buf))
	}
	keys := make([]int64, len(buf)/8)
	for i := range keys {
		keys[i] = int64(binary.BigEndian.Uint64(buf[8*i:]))
	}
	return keys, nil
}

func (c *Client) Stats(ctx context.Context) (map[string]any, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("Stats"), &emptypb.Empty{}, out); err != nil {
		return nil, err
	}
	return out.AsMap(), nil
}

func (c *Client) Verify(ctx context.Context) error {
	return c.cc.Invoke(ctx, fullMethod("Verify"), &emptypb.Empty{}, &emptypb.Empty{})
}

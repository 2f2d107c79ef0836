package grpcserver

import (
	"context"
	"encoding/binary"

	"github.com/bitmark-inc/logger"
	"github.com/cockroachdb/errors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"redblack/domain/rbtree"
	"redblack/service"
)

// Server adapts TreeService to gRPC.
type Server struct {
	svc *service.TreeService
	log *logger.L
}

var _ TreeServer = (*Server)(nil)

func NewServer(svc *service.TreeService, log *logger.L) *Server {
	return &Server{svc: svc, log: log}
}

// -------------------- Commands --------------------

func (s *Server) Insert(
	ctx context.Context,
	req *wrapperspb.Int64Value,
) (*wrapperspb.UInt64Value, error) {
	seq, err := s.svc.Insert(req.GetValue())
	if err != nil {
		s.log.Warnf("insert key=%d: %s", req.GetValue(), err)
		return nil, toStatus(err)
	}
	s.log.Debugf("insert key=%d seq=%d", req.GetValue(), seq)
	return wrapperspb.UInt64(seq), nil
}

func (s *Server) Erase(
	ctx context.Context,
	req *wrapperspb.Int64Value,
) (*wrapperspb.UInt64Value, error) {
	seq, err := s.svc.Erase(req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	s.log.Debugf("erase key=%d seq=%d", req.GetValue(), seq)
	return wrapperspb.UInt64(seq), nil
}

// -------------------- Queries --------------------

func (s *Server) Find(
	ctx context.Context,
	req *wrapperspb.Int64Value,
) (*wrapperspb.Int64Value, error) {
	ok, err := s.svc.Contains(req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	if !ok {
		return nil, status.Errorf(codes.NotFound, "key %d not found", req.GetValue())
	}
	return wrapperspb.Int64(req.GetValue()), nil
}

func (s *Server) Min(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.Int64Value, error) {
	k, err := s.svc.Min()
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.Int64(k), nil
}

func (s *Server) Max(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.Int64Value, error) {
	k, err := s.svc.Max()
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.Int64(k), nil
}

// Export returns up to req keys in ascending order, packed as 8-byte
// big-endian integers. Zero means every key.
func (s *Server) Export(
	ctx context.Context,
	req *wrapperspb.UInt32Value,
) (*wrapperspb.BytesValue, error) {
	var keys []int64
	if req.GetValue() == 0 {
		keys = s.svc.ExportAll()
	} else {
		keys = s.svc.Export(int(req.GetValue()))
	}
	buf := make([]byte, 8*len(keys))
	for i, k := range keys {
		binary.BigEndian.PutUint64(buf[8*i:], uint64(k))
	}
	return wrapperspb.Bytes(buf), nil
}

func (s *Server) Stats(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	st := s.svc.Stats()
	out, err := structpb.NewStruct(map[string]any{
		"size":         st.Size,
		"height":       st.Height,
		"black_height": st.BlackHeight,
		"last_seq":     st.LastSeq,
	})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func (s *Server) Verify(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	if err := s.svc.Verify(); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

// --- converters ---

func toStatus(err error) error {
	switch {
	case errors.Is(err, rbtree.ErrNotFound), errors.Is(err, rbtree.ErrEmpty):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, rbtree.ErrAllocation):
		return status.Error(codes.ResourceExhausted, err.Error())
	case errors.Is(err, rbtree.ErrDestroyed):
		return status.Error(codes.Unavailable, err.Error())
	default:
		// invariant violations and journal failures
		return status.Error(codes.Internal, err.Error())
	}
}

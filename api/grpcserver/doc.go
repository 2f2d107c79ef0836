// Package grpcserver exposes a TreeService over gRPC as
// rbtree.v1.TreeService and provides the matching client.
package grpcserver

// Package service hosts a red-black tree behind a single lock, records
// every mutation in the command journal and queues it in the outbox
// for publishing.
package service

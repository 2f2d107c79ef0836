package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		ok     bool
	}{
		{"empty listen", func(c *Config) { c.Listen = "" }, false},
		{"empty journal", func(c *Config) { c.JournalDir = "" }, false},
		{"shared dirs", func(c *Config) { c.OutboxDir = c.JournalDir }, false},
		{"zero segment size", func(c *Config) { c.SegmentSize = 0 }, false},
		{"zero segment duration", func(c *Config) { c.SegmentDuration = 0 }, false},
		{"negative max nodes", func(c *Config) { c.MaxNodes = -1 }, false},
		{"bounded pool", func(c *Config) { c.MaxNodes = 1 << 20 }, true},
		{"no log file", func(c *Config) { c.Logging.File = "" }, false},
		{"too few log files", func(c *Config) { c.Logging.Count = 1 }, false},
		{"unknown driver", func(c *Config) { c.Kafka.Driver = "nats" }, false},
		{"sarama without brokers", func(c *Config) { c.Kafka.Driver = DriverSarama }, false},
		{"sarama", func(c *Config) {
			c.Kafka.Driver = DriverSarama
			c.Kafka.Brokers = []string{"localhost:9092"}
		}, true},
		{"kafka-go without topic", func(c *Config) {
			c.Kafka.Driver = DriverKafkaGo
			c.Kafka.Brokers = []string{"localhost:9092"}
			c.Kafka.Topic = ""
		}, false},
		{"zero interval", func(c *Config) {
			c.Kafka.Driver = DriverKafkaGo
			c.Kafka.Brokers = []string{"localhost:9092"}
			c.Broadcast.Interval = 0
		}, false},
		{"no kafka ignores interval", func(c *Config) { c.Broadcast.Interval = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.modify(&c)
			err := c.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestParseBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, ParseBrokers(" a:9092, ,b:9092,"))
	assert.Empty(t, ParseBrokers(""))
}

func TestDefaults(t *testing.T) {
	c := Default()
	assert.Equal(t, DriverNone, c.Kafka.Driver)
	assert.Equal(t, 250*time.Millisecond, c.Broadcast.Interval)
	assert.Equal(t, uint32(5), c.Broadcast.MaxRetries)
}

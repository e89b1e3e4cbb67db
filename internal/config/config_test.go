package config

import (
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cfg.HTTP.Port != 8080 {
		t.Errorf("port = %d", cfg.HTTP.Port)
	}
	if cfg.POS.TableCount != 12 {
		t.Errorf("table count = %d", cfg.POS.TableCount)
	}
	if cfg.Relay.Driver != "kafka" {
		t.Errorf("relay driver = %s", cfg.Relay.Driver)
	}
	topics := cfg.Relay.Topics.All()
	if len(topics) != 3 {
		t.Fatalf("topics = %v", topics)
	}
	for _, topic := range topics {
		if topic == "" {
			t.Fatalf("unnamed topic in %v", topics)
		}
	}
	if cfg.Location() == nil {
		t.Fatal("location did not resolve")
	}
}

func TestInvalidTableCount(t *testing.T) {
	t.Setenv("POS_TABLE_COUNT", "0")
	if _, err := New(); err == nil {
		t.Fatal("zero table count accepted")
	}
}

func TestInvalidLocation(t *testing.T) {
	t.Setenv("POS_LOCATION", "Mars/Olympus")
	if _, err := New(); err == nil {
		t.Fatal("bogus location accepted")
	}
}

func TestUnsupportedRelayDriver(t *testing.T) {
	t.Setenv("RELAY_DRIVER", "carrier-pigeon")
	if _, err := New(); err == nil {
		t.Fatal("unknown relay driver accepted")
	}
}

func TestDisabledRelayFallsBackToNoop(t *testing.T) {
	t.Setenv("RELAY_ENABLED", "false")
	cfg, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cfg.Relay.Driver != "noop" {
		t.Fatalf("driver = %s, want noop", cfg.Relay.Driver)
	}
}

func TestRabbitDriverRequiresURL(t *testing.T) {
	t.Setenv("RELAY_DRIVER", "rabbitmq")
	t.Setenv("RABBIT_URL", "")
	if _, err := New(); err == nil {
		t.Fatal("rabbitmq without URL accepted")
	}
}

func TestReaderDSNDefaultsToWriter(t *testing.T) {
	t.Setenv("DB_WRITER_DSN", "postgres://w")
	t.Setenv("DB_READER_DSN", "")
	cfg, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cfg.Database.ReaderDSN != "postgres://w" {
		t.Fatalf("reader DSN = %s", cfg.Database.ReaderDSN)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CACHE_DEFAULT_TTL", "90s")
	t.Setenv("KAFKA_BROKERS", "b1:9092, b2:9092")
	cfg, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cfg.Cache.DefaultTTL != 90*time.Second {
		t.Errorf("ttl = %s", cfg.Cache.DefaultTTL)
	}
	if len(cfg.Relay.Kafka.Brokers) != 2 || cfg.Relay.Kafka.Brokers[1] != "b2:9092" {
		t.Errorf("brokers = %v", cfg.Relay.Kafka.Brokers)
	}
}

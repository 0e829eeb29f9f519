package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("STORAGE", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("TRACKING_NODE_ID", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port == "" || cfg.Storage != StoragePostgres || cfg.TrackingNodeID != 1 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.IsProduction() {
		t.Error("default environment must not be production")
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE", "Memory")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("TRACKING_NODE_ID", "42")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "9090" || cfg.Storage != StorageMemory || cfg.TrackingNodeID != 42 {
		t.Errorf("environment not applied: %+v", cfg)
	}
	if cfg.Kafka.Brokers != "k1:9092,k2:9092" || cfg.Auth.JWTSecret != "s3cret" {
		t.Errorf("unexpected kafka/auth config %+v %+v", cfg.Kafka, cfg.Auth)
	}
}

func TestLoad_Rejections(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"production without secret", map[string]string{"ENVIRONMENT": "production", "JWT_SECRET": ""}},
		{"unknown storage", map[string]string{"STORAGE": "redis"}},
		{"node id out of range", map[string]string{"TRACKING_NODE_ID": "2048"}},
		{"node id not a number", map[string]string{"TRACKING_NODE_ID": "one"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

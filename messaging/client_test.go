package messaging

import (
	"testing"

	"shopcore/config"
)

func TestValidKafkaTopic(t *testing.T) {
	cases := []struct {
		topic string
		want  bool
	}{
		{"shopcore.changes", true},
		{"shopcore_changes-v2", true},
		{"machines/+/status", false},
		{"machines/#", false},
		{"", false},
	}
	for _, c := range cases {
		if got := validKafkaTopic(c.topic); got != c.want {
			t.Errorf("validKafkaTopic(%q) = %v, want %v", c.topic, got, c.want)
		}
	}
}

func TestSubscribeRejectsWildcardOnKafka(t *testing.T) {
	client := NewClient(&config.MessagingConfig{
		Backend: "kafka",
		Kafka:   config.KafkaConfig{Brokers: []string{"localhost:9092"}, GroupID: "test"},
	})

	err := client.Subscribe("machines/+/status", func(string, []byte) {})
	if err == nil {
		t.Fatal("expected rejection of an mqtt filter as a kafka topic")
	}
	if _, registered := client.handlers["machines/+/status"]; registered {
		t.Error("rejected topic should not be registered for re-subscribe")
	}
}

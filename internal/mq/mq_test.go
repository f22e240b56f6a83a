package mq

import (
	"encoding/json"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
)

func TestNewMessage(t *testing.T) {
	msg, err := NewMessage(map[string]string{"jobId": "j1"})
	if err != nil {
		t.Fatalf("NewMessage: %v", err)
	}
	if msg.ContentType != "application/json" || msg.DeliveryMode != amqp.Persistent {
		t.Errorf("unexpected publishing %+v", msg)
	}
	var body map[string]string
	if err := json.Unmarshal(msg.Body, &body); err != nil || body["jobId"] != "j1" {
		t.Errorf("body = %s (%v)", msg.Body, err)
	}

	if _, err := NewMessage(make(chan int)); err == nil {
		t.Error("expected encode error")
	}
}

func TestTopology_QueueArgs(t *testing.T) {
	withDLX := Topology{Queue: "notification.q", DLX: "notification.dlx"}
	if got := withDLX.QueueArgs()["x-dead-letter-exchange"]; got != "notification.dlx" {
		t.Errorf("dead-letter arg = %v", got)
	}
	if args := (Topology{Queue: "q"}).QueueArgs(); len(args) != 0 {
		t.Errorf("expected no args without DLX, got %v", args)
	}
}

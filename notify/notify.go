// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package notify forwards engine notifications over a gocloud.dev pubsub topic.
// Notifications are gob encoded; the message metadata carries the kind of
// notification and the id of the component it is about.
//
package notify

import (
	"bytes"
	"context"
	"encoding/gob"
	"log/slog"

	"github.com/danielorbach/go-component"
	"github.com/db47h/logicsim"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gocloud.dev/pubsub"
)

var tracer = otel.Tracer("github.com/db47h/logicsim/notify")

// Register the notification types so that the concrete type of the notified
// event survives gob encoding.
func init() {
	gob.Register(logicsim.ComponentAdded{})
	gob.Register(logicsim.InputsResized{})
	gob.Register(logicsim.OutputsResized{})
	gob.Register(logicsim.ConnectionRemoved{})
}

// Metadata keys.
//
const (
	KindKey      = "kind"
	ComponentKey = "component"
)

type envelope struct {
	N logicsim.Notification
}

// Publisher is a logicsim.Notifier that sends notifications to a topic.
//
type Publisher struct {
	topic *pubsub.Topic
}

// NewPublisher returns a Publisher sending to topic. The caller owns the topic.
//
func NewPublisher(topic *pubsub.Topic) *Publisher {
	return &Publisher{topic: topic}
}

// Notify implements logicsim.Notifier. Send failures are logged.
//
func (p *Publisher) Notify(ctx context.Context, n logicsim.Notification) {
	if err := p.Send(ctx, n); err != nil {
		component.Logger(ctx).Error("Couldn't publish notification",
			slog.String(KindKey, Kind(n)),
			slog.Any("error", err),
		)
	}
}

// Send encodes n and sends it to the topic.
//
func (p *Publisher) Send(ctx context.Context, n logicsim.Notification) error {
	kind, id := Kind(n), Subject(n)
	ctx, span := tracer.Start(ctx, "notify.Send", trace.WithAttributes(
		attribute.String(KindKey, kind),
		attribute.Stringer(ComponentKey, id),
	))
	defer span.End()

	var b bytes.Buffer
	if err := gob.NewEncoder(&b).Encode(envelope{n}); err != nil {
		err = errors.Wrap(err, "encode gob")
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	msg := &pubsub.Message{Body: b.Bytes(), Metadata: map[string]string{KindKey: kind, ComponentKey: id.String()}}
	if err := p.topic.Send(ctx, msg); err != nil {
		err = errors.Wrap(err, "send")
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// Decode decodes the notification carried by msg.
//
func Decode(msg *pubsub.Message) (logicsim.Notification, error) {
	var env envelope
	if err := gob.NewDecoder(bytes.NewReader(msg.Body)).Decode(&env); err != nil {
		return nil, errors.Wrap(err, "decode gob")
	}
	if env.N == nil {
		return nil, errors.New("empty notification")
	}
	return env.N, nil
}

// Receive receives the next notification from sub. Messages are acknowledged
// once decoded, or rejected if they cannot be decoded.
//
func Receive(ctx context.Context, sub *pubsub.Subscription) (logicsim.Notification, error) {
	msg, err := sub.Receive(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "receive")
	}
	n, err := Decode(msg)
	if err != nil {
		if msg.Nackable() {
			msg.Nack()
		} else {
			msg.Ack()
		}
		return nil, err
	}
	msg.Ack()
	return n, nil
}

// Kind returns the kind of n: "ComponentAdded", "InputsResized",
// "OutputsResized" or "ConnectionRemoved".
//
func Kind(n logicsim.Notification) string {
	switch n.(type) {
	case logicsim.ComponentAdded:
		return "ComponentAdded"
	case logicsim.InputsResized:
		return "InputsResized"
	case logicsim.OutputsResized:
		return "OutputsResized"
	case logicsim.ConnectionRemoved:
		return "ConnectionRemoved"
	}
	return "unknown"
}

// Subject returns the id of the component n is about. For ConnectionRemoved,
// this is the component on the input side of the wire.
//
func Subject(n logicsim.Notification) logicsim.ID {
	switch n := n.(type) {
	case logicsim.ComponentAdded:
		return n.Component
	case logicsim.InputsResized:
		return n.Component
	case logicsim.OutputsResized:
		return n.Component
	case logicsim.ConnectionRemoved:
		return n.Input.Component
	}
	return logicsim.NullID
}

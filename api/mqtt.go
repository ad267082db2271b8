package api

import (
	"context"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/matt-g-everett/marquee/command"
	"github.com/matt-g-everett/marquee/config"
)

// Bridge forwards commands published on an MQTT topic.
type Bridge struct {
	config config.Config
	fwd    Forwarder
	log    *zap.SugaredLogger
}

// NewBridge creates a Bridge for the broker in cfg.
func NewBridge(cfg config.Config, fwd Forwarder, log *zap.SugaredLogger) *Bridge {
	b := new(Bridge)
	b.config = cfg
	b.fwd = fwd
	b.log = log
	return b
}

func (b *Bridge) handleMessages(client mqtt.Client, msg mqtt.Message) {
	b.log.Debugw("received message", "id", msg.MessageID(), "topic", msg.Topic())

	c, err := Parse(msg.Payload())
	if err != nil {
		b.log.Warnw("ignoring message", "topic", msg.Topic(), "error", err)
		return
	}
	if c.Op == command.OpGetState {
		b.log.Warnw("get-state has no reply over mqtt, ignored", "topic", msg.Topic())
		return
	}
	if err := b.fwd.Do(c); err != nil {
		b.log.Warnw("renderer unavailable", "op", c.Op, "error", err)
	}
}

func (b *Bridge) handleOnConnect(client mqtt.Client) {
	topic := b.config.Mqtt.Topics.Commands
	b.log.Infow("connected", "broker", b.config.Mqtt.URL, "topic", topic)
	if token := client.Subscribe(topic, 0, b.handleMessages); token.Wait() && token.Error() != nil {
		b.log.Errorw("subscribe failed", "topic", topic, "error", token.Error())
	}
}

// Run connects to the broker and forwards messages until ctx is done.
func (b *Bridge) Run(ctx context.Context) error {
	options := mqtt.NewClientOptions().
		AddBroker(b.config.Mqtt.URL).
		SetClientID(b.config.Mqtt.ClientID).
		SetUsername(b.config.Mqtt.Username).
		SetPassword(b.config.Mqtt.Password).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(5 * time.Second).
		SetOnConnectHandler(b.handleOnConnect)
	client := mqtt.NewClient(options)

	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return errors.Wrapf(token.Error(), "connect to %s", b.config.Mqtt.URL)
	}
	<-ctx.Done()
	client.Disconnect(250)
	return nil
}

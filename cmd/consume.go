// Copyright 2025 The goamqp Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/packetd/goamqp/common"
	"github.com/packetd/goamqp/engine"
	"github.com/packetd/goamqp/internal/sigs"
	"github.com/packetd/goamqp/logger"
	"github.com/packetd/goamqp/protocol/amqp091"
	"github.com/packetd/goamqp/transport/tcp"
)

type consumeConfig struct {
	Queue       string
	AutoAck     bool
	Exclusive   bool
	Declare     bool
	Durable     bool
	QueueArgs   []string
	DialTimeout time.Duration
}

// parseQueueArgs turns repeated "key=value" flags into an AMQP field table,
// coercing each value with common.Options' cast-backed helpers so numeric
// broker policies (e.g. x-message-ttl) arrive as the right Go type instead
// of a bare string.
func parseQueueArgs(pairs []string) (amqp091.Table, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	raw := common.NewOptions()
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --arg %q, expected key=value", p)
		}
		raw.Merge(k, v)
	}
	table := make(amqp091.Table, len(raw))
	for k := range raw {
		if n, err := raw.GetUint64(k); err == nil {
			table[k] = amqp091.Field{Kind: amqp091.FieldULongLong, Value: n}
			continue
		}
		if b, err := raw.GetBool(k); err == nil {
			table[k] = amqp091.Field{Kind: amqp091.FieldBoolSet, Value: b}
			continue
		}
		s, _ := raw.GetString(k)
		table[k] = amqp091.Field{Kind: amqp091.FieldLongString, Value: s}
	}
	return table, nil
}

var consumeCfg consumeConfig

var consumeCmd = &cobra.Command{
	Use:     "consume",
	Short:   "Consume from a queue until interrupted, printing each delivery",
	Example: "  goamqp consume --queue jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := engine.ParseAddress(brokerURL)
		if err != nil {
			return err
		}

		dialCtx, cancel := context.WithTimeout(cmd.Context(), consumeCfg.DialTimeout)
		defer cancel()

		conn, err := tcp.Dial(dialCtx, addr)
		if err != nil {
			return fmt.Errorf("connecting to broker: %w", err)
		}

		ch, err := await(conn.Connection().OpenChannel())
		if err != nil {
			return fmt.Errorf("opening channel: %w", err)
		}
		channel := ch[0].(*engine.Channel)

		if consumeCfg.Declare {
			queueArgs, err := parseQueueArgs(consumeCfg.QueueArgs)
			if err != nil {
				return err
			}
			var declareFlags engine.Flags
			if consumeCfg.Durable {
				declareFlags |= engine.FlagDurable
			}
			if _, err := await(channel.DeclareQueue(consumeCfg.Queue, declareFlags, queueArgs)); err != nil {
				return fmt.Errorf("declaring queue: %w", err)
			}
		}

		var flags engine.Flags
		if consumeCfg.AutoAck {
			flags |= engine.FlagNoAck
		}
		if consumeCfg.Exclusive {
			flags |= engine.FlagExclusive
		}

		deliveries := make(chan engine.Message, 32)
		consumerTag := engine.NewConsumerTag()
		handler := engine.ConsumerHandler{
			OnMessage: func(m engine.Message) { deliveries <- m },
			OnCancel:  func() { close(deliveries) },
		}

		if _, err := await(channel.Consume(consumeCfg.Queue, consumerTag, flags, nil, handler)); err != nil {
			return fmt.Errorf("starting consumer: %w", err)
		}
		logger.Infof("consuming from %q as %q", consumeCfg.Queue, consumerTag)

		terminate := sigs.Terminate()
		for {
			select {
			case m, ok := <-deliveries:
				if !ok {
					return nil
				}
				fmt.Printf("[%d] routing_key=%q body=%s\n", m.DeliveryTag, m.RoutingKey, m.Body)
				if !consumeCfg.AutoAck {
					channel.Ack(m.DeliveryTag, false)
				}
			case <-terminate:
				logger.Infof("shutting down consumer")
				closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_, _ = await(channel.Cancel(consumerTag, 0))
				return conn.Close(closeCtx)
			}
		}
	},
}

func init() {
	consumeCmd.Flags().StringVar(&consumeCfg.Queue, "queue", "", "Queue to consume from")
	consumeCmd.Flags().BoolVar(&consumeCfg.AutoAck, "auto-ack", false, "Do not send explicit acknowledgements")
	consumeCmd.Flags().BoolVar(&consumeCfg.Exclusive, "exclusive", false, "Request exclusive consumer access")
	consumeCmd.Flags().BoolVar(&consumeCfg.Declare, "declare", false, "Declare the queue before consuming")
	consumeCmd.Flags().BoolVar(&consumeCfg.Durable, "durable", false, "Declare the queue as durable (with --declare)")
	consumeCmd.Flags().StringSliceVar(&consumeCfg.QueueArgs, "arg", nil, "Extra queue declare argument as key=value, repeatable")
	consumeCmd.Flags().DurationVar(&consumeCfg.DialTimeout, "dial-timeout", 10*time.Second, "Connection handshake timeout")
	_ = consumeCmd.MarkFlagRequired("queue")
	rootCmd.AddCommand(consumeCmd)
}

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
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/packetd/goamqp/engine"
	"github.com/packetd/goamqp/logger"
	"github.com/packetd/goamqp/transport/tcp"
)

type publishConfig struct {
	Exchange   string
	RoutingKey string
	Body       string
	Mandatory  bool
	Confirm    bool
	Timeout    time.Duration
}

var publishCfg publishConfig

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish one message and exit",
	Example: "  goamqp publish --exchange logs --routing-key info --body 'hello'\n" +
		"  echo hello | goamqp publish --exchange logs --routing-key info --confirm",
	RunE: func(cmd *cobra.Command, args []string) error {
		body := []byte(publishCfg.Body)
		if publishCfg.Body == "" {
			b, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("reading message body from stdin: %w", err)
			}
			body = b
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), publishCfg.Timeout)
		defer cancel()

		addr, err := engine.ParseAddress(brokerURL)
		if err != nil {
			return err
		}

		conn, err := tcp.Dial(ctx, addr)
		if err != nil {
			return fmt.Errorf("connecting to broker: %w", err)
		}

		ch, err := await(conn.Connection().OpenChannel())
		if err != nil {
			return fmt.Errorf("opening channel: %w", err)
		}
		channel := ch[0].(*engine.Channel)

		if publishCfg.Confirm {
			if _, err := await(channel.ConfirmSelect(false)); err != nil {
				return fmt.Errorf("enabling publisher confirms: %w", err)
			}
			rel := engine.NewReliable(channel)
			d := rel.Publish(engine.Publishing{
				Exchange:   publishCfg.Exchange,
				RoutingKey: publishCfg.RoutingKey,
				Mandatory:  publishCfg.Mandatory,
				Body:       body,
			})
			if _, err := await(d); err != nil {
				return fmt.Errorf("message not confirmed: %w", err)
			}
			logger.Infof("message confirmed by broker")
		} else {
			if _, err := channel.Publish(engine.Publishing{
				Exchange:   publishCfg.Exchange,
				RoutingKey: publishCfg.RoutingKey,
				Mandatory:  publishCfg.Mandatory,
				Body:       body,
			}, nil, nil); err != nil {
				return fmt.Errorf("publishing message: %w", err)
			}
		}

		return conn.Close(ctx)
	},
}

// await blocks the calling goroutine until d reaches a terminal state,
// bridging the engine's callback-based Deferred into a synchronous call
// for the command-line tool's simple request/response flows.
func await(d *engine.Deferred) ([]any, error) {
	done := make(chan struct{})
	var args []any
	var errMsg string
	d.OnSuccess(func(out ...any) { args = out; close(done) })
	d.OnError(func(msg string) { errMsg = msg; close(done) })
	<-done
	if errMsg != "" {
		return nil, fmt.Errorf("%s", errMsg)
	}
	return args, nil
}

func init() {
	publishCmd.Flags().StringVar(&publishCfg.Exchange, "exchange", "", "Exchange to publish to")
	publishCmd.Flags().StringVar(&publishCfg.RoutingKey, "routing-key", "", "Routing key")
	publishCmd.Flags().StringVar(&publishCfg.Body, "body", "", "Message body; read from stdin when omitted")
	publishCmd.Flags().BoolVar(&publishCfg.Mandatory, "mandatory", false, "Set the mandatory publish flag")
	publishCmd.Flags().BoolVar(&publishCfg.Confirm, "confirm", false, "Wait for a publisher confirm before exiting")
	publishCmd.Flags().DurationVar(&publishCfg.Timeout, "timeout", 10*time.Second, "Overall operation timeout")
	rootCmd.AddCommand(publishCmd)
}

/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/messagely/apiserver/internal/mq"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// notifyCmd consumes message events and logs one line per event.
var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Consume message events from the bus",
	Long: `Subscribes to the messages.created and messages.read channels and logs
every event until interrupted. Requires MQ_BACKEND.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		bus, err := mq.Open(ctx, cfg.MQ)
		if errors.Is(err, mq.ErrDisabled) {
			return errors.New("MQ_BACKEND is not set")
		}
		if err != nil {
			return err
		}
		defer bus.Close()

		g, ctx := errgroup.WithContext(ctx)
		for _, channel := range []string{mq.ChannelMessageCreated, mq.ChannelMessageRead} {
			g.Go(func() error {
				log.Info().Str("channel", channel).Msg("subscribed")
				return bus.Subscribe(ctx, channel, logEvent(log))
			})
		}
		if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func logEvent(log zerolog.Logger) mq.Handler {
	return func(_ context.Context, msg mq.Message) error {
		evt, err := mq.DecodeEvent(msg)
		if err != nil {
			// Undecodable payloads are acked; redelivery would not fix them.
			log.Warn().Err(err).Str("id", msg.ID).Msg("dropping malformed event")
			return nil
		}
		log.Info().
			Str("event_id", evt.EventID).
			Str("type", evt.Type).
			Int64("message_id", evt.MessageID).
			Str("from", evt.FromUsername).
			Str("to", evt.ToUsername).
			Time("occurred_at", evt.OccurredAt).
			Msg("message event")
		return nil
	}
}

func init() {
	rootCmd.AddCommand(notifyCmd)
}

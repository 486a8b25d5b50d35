package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/quizhub/quizctl/internal/model"
	"github.com/quizhub/quizctl/internal/realtime"
)

func newEventsCmd() *cobra.Command {
	var join []int64

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Stream realtime platform events until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)
			if _, err := requireRole(cmd.Context(), model.RolePlayer); err != nil {
				return err
			}

			rt := realtime.New(realtime.DefaultConfig(cfg.ServerURL), app.Store, app.Logger)
			defer rt.Disconnect()

			// Surface every event on stdout as it arrives
			for _, event := range []model.EventType{
				model.EventNewQuizPending,
				model.EventQuizApproved,
				model.EventQuizRejected,
				model.EventAdminNotification,
				model.EventSystemMessage,
				model.EventError,
				model.EventConnected,
				model.EventDisconnected,
				model.EventConnectError,
			} {
				rt.On(event, func(data json.RawMessage) {
					printEvent(out, event, data)
				})
			}

			failed := make(chan struct{}, 1)
			rt.On(model.EventReconnectFailed, func(json.RawMessage) {
				printEvent(out, model.EventReconnectFailed, nil)
				failed <- struct{}{}
			})

			connected := make(chan struct{}, 1)
			rt.On(model.EventConnected, func(json.RawMessage) {
				select {
				case connected <- struct{}{}:
				default:
				}
			})

			if !rt.Connect() {
				return fmt.Errorf("no stored access token; run 'quizctl login' first")
			}

			// Join requested quiz rooms once the channel is up
			go func() {
				select {
				case <-connected:
				case <-cmd.Context().Done():
					return
				}
				for _, id := range join {
					if err := rt.JoinQuizRoom(model.QuizID(id)); err != nil {
						app.Logger.Warn("failed to join quiz room",
							"quiz_id", id, "error", err.Error())
					}
				}
			}()

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sig)

			select {
			case <-sig:
				return nil
			case <-failed:
				return fmt.Errorf("realtime channel lost and could not be re-established")
			case <-cmd.Context().Done():
				return cmd.Context().Err()
			}
		},
	}

	cmd.Flags().Int64SliceVar(&join, "join", nil, "Quiz rooms to join after connecting")

	return cmd
}

func newNotifyCmd() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "notify <message>",
		Short: "Send a notification to the administrator room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)
			if _, err := requireRole(cmd.Context(), model.RolePlayer); err != nil {
				return err
			}

			rt := realtime.New(realtime.DefaultConfig(cfg.ServerURL), app.Store, app.Logger)
			defer rt.Disconnect()

			connected := make(chan struct{}, 1)
			failed := make(chan struct{}, 1)
			rt.On(model.EventConnected, func(json.RawMessage) {
				select {
				case connected <- struct{}{}:
				default:
				}
			})
			rt.On(model.EventConnectError, func(json.RawMessage) {
				select {
				case failed <- struct{}{}:
				default:
				}
			})

			if !rt.Connect() {
				return fmt.Errorf("no stored access token; run 'quizctl login' first")
			}

			select {
			case <-connected:
			case <-failed:
				return fmt.Errorf("could not reach the realtime channel")
			case <-time.After(30 * time.Second):
				return fmt.Errorf("timed out connecting to the realtime channel")
			case <-cmd.Context().Done():
				return cmd.Context().Err()
			}

			if err := rt.NotifyAdmin(args[0], kind); err != nil {
				return fmt.Errorf("failed to send notification: %w", err)
			}
			out.PrintMessage("Notification sent")
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "type", "info", "Notification type (info, warning, error)")

	return cmd
}

func printEvent(out *Output, event model.EventType, data json.RawMessage) {
	if cfg.Output == "json" {
		out.Print(model.Event{Type: event, Data: data})
		return
	}

	ts := time.Now().Format("15:04:05")
	if len(data) == 0 {
		fmt.Printf("%s  %s\n", ts, event)
		return
	}
	fmt.Printf("%s  %-20s %s\n", ts, event, string(data))
}

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/slidecast/presentation-service/pkg/client"
	"github.com/slidecast/presentation-service/pkg/model"
)

var (
	remoteURL  string
	remoteName string
)

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Interactive terminal remote for a running presentation server",
	Long: `Connects to the server's WebSocket endpoint and drives the slideshow
from stdin. Commands: next, prev, first, last, goto N, step, back,
pause, resume, blink, quit.`,
	RunE: runRemote,
}

func init() {
	remoteCmd.Flags().StringVar(&remoteURL, "url", "ws://localhost:8080/api/ws", "WebSocket endpoint")
	remoteCmd.Flags().StringVar(&remoteName, "name", "terminal-remote", "client name shown to other clients")
}

func runRemote(cmd *cobra.Command, args []string) error {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := client.New(client.Config{
		URL:      remoteURL,
		Name:     remoteName,
		Renderer: model.RendererRaw,
	}, logger)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	defer c.Close()

	go printNotifications(ctx, c)

	lines := make(chan string)
	go readLines(lines)

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			command, quit := parseRemoteLine(line)
			if quit {
				return nil
			}
			if command == nil {
				fmt.Printf("unknown command %q\n", line)
				continue
			}
			if err := c.SendCommand(*command); err != nil {
				fmt.Printf("send failed: %v\n", err)
			}
		}
	}
}

func printNotifications(ctx context.Context, c *client.Client) {
	for {
		select {
		case <-ctx.Done():
			return
		case s := <-c.StatusChanges():
			fmt.Printf("[%s]\n", s)
			if s.Kind.Terminal() {
				return
			}
		case n := <-c.Notifications():
			switch n.Type {
			case model.NotificationState, model.NotificationTalkChange:
				if n.State != nil {
					slide := "-"
					if id, ok := n.State.CurrentSlide(); ok {
						slide = id.String()
					}
					fmt.Printf("%s slide=%s step=%d phase=%s\n",
						n.Type, slide, n.State.Step, n.State.Phase)
				}
			case model.NotificationError:
				fmt.Printf("server error: %s\n", n.Message)
			case model.NotificationClientConnected:
				fmt.Printf("client connected: %s\n", n.Name)
			case model.NotificationClientDisconnected:
				fmt.Printf("client disconnected: %s\n", n.Name)
			}
		}
	}
}

func readLines(out chan<- string) {
	defer close(out)
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		out <- strings.TrimSpace(scanner.Text())
	}
}

// parseRemoteLine maps one stdin line to a command; quit is reported
// separately since it is local, not a protocol command.
func parseRemoteLine(line string) (*model.Command, bool) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return nil, false
	}
	switch fields[0] {
	case "quit", "exit", "q":
		return nil, true
	case "next", "n":
		return commandPtr(model.NewCommand(model.CommandNext)), false
	case "prev", "previous", "p":
		return commandPtr(model.NewCommand(model.CommandPrevious)), false
	case "first":
		return commandPtr(model.NewCommand(model.CommandFirst)), false
	case "last":
		return commandPtr(model.NewCommand(model.CommandLast)), false
	case "step", "s":
		return commandPtr(model.NewCommand(model.CommandNextStep)), false
	case "back", "b":
		return commandPtr(model.NewCommand(model.CommandPreviousStep)), false
	case "pause":
		return commandPtr(model.NewCommand(model.CommandPause)), false
	case "resume":
		return commandPtr(model.NewCommand(model.CommandResume)), false
	case "blink":
		return commandPtr(model.NewCommand(model.CommandBlink)), false
	case "goto", "g":
		if len(fields) < 2 {
			return nil, false
		}
		idx, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, false
		}
		return commandPtr(model.GoToCommand(idx)), false
	default:
		return nil, false
	}
}

func commandPtr(c model.Command) *model.Command { return &c }

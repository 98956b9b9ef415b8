// chatcli is a terminal chat client for the trading marketplace,
// useful for poking at a running server without the app.
package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/AC-trading/ac-trading/pkg/chatclient"
	"github.com/AC-trading/ac-trading/pkg/chatwire"
	"github.com/AC-trading/ac-trading/pkg/log"
)

var (
	flagURL       string
	flagToken     string
	flagRooms     []int64
	flagDelay     time.Duration
	flagMaxRetry  int
	flagLogLevel  string
	flagRoom      int64
	flagText      string
	flagImageURL  string
	flagMarkRead  bool
	flagSendDelay time.Duration
)

func main() {
	root := &cobra.Command{
		Use:   "chatcli",
		Short: "Terminal client for the trading chat websocket",
	}
	root.PersistentFlags().StringVar(&flagURL, "url", "ws://localhost:8080/ws/chat", "chat websocket URL")
	root.PersistentFlags().StringVar(&flagToken, "token", "", "access token")
	root.PersistentFlags().DurationVar(&flagDelay, "reconnect-delay", 5*time.Second, "delay between reconnect attempts")
	root.PersistentFlags().IntVar(&flagMaxRetry, "max-reconnects", 5, "reconnect attempts before giving up")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "log level")
	root.MarkPersistentFlagRequired("token")

	listen := &cobra.Command{
		Use:   "listen",
		Short: "Subscribe to rooms and print messages as they arrive",
		RunE:  runListen,
	}
	listen.Flags().Int64SliceVar(&flagRooms, "room", nil, "room id to subscribe to (repeatable)")
	listen.MarkFlagRequired("room")
	listen.Flags().BoolVar(&flagMarkRead, "mark-read", false, "mark incoming messages as read")

	send := &cobra.Command{
		Use:   "send",
		Short: "Send one message to a room",
		RunE:  runSend,
	}
	send.Flags().Int64Var(&flagRoom, "room", 0, "room id")
	send.Flags().StringVar(&flagText, "text", "", "text message content")
	send.Flags().StringVar(&flagImageURL, "image-url", "", "image message URL")
	send.Flags().DurationVar(&flagSendDelay, "linger", time.Second, "how long to wait for delivery before exiting")
	send.MarkFlagRequired("room")

	chat := &cobra.Command{
		Use:   "chat",
		Short: "Interactive chat in one room, reading lines from stdin",
		RunE:  runChat,
	}
	chat.Flags().Int64Var(&flagRoom, "room", 0, "room id")
	chat.MarkFlagRequired("room")

	root.AddCommand(listen, send, chat)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newSession() *chatclient.Session {
	log.Init(log.Config{Level: flagLogLevel, Pretty: true, ServiceName: "chatcli"})
	logger := log.L()
	return chatclient.New(chatclient.Options{
		URL:                  flagURL,
		ReconnectDelay:       flagDelay,
		MaxReconnectAttempts: flagMaxRetry,
		Logger:               &logger,
	})
}

// connect blocks until the session is connected or has given up.
func connect(session *chatclient.Session) error {
	connected := make(chan struct{}, 1)
	session.Connect(flagToken, func() {
		select {
		case connected <- struct{}{}:
		default:
		}
	}, func() {
		fmt.Fprintln(os.Stderr, "disconnected")
	})

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	timeout := time.After(time.Duration(flagMaxRetry+1) * (flagDelay + 15*time.Second))
	for {
		select {
		case <-connected:
			return nil
		case <-ticker.C:
			if session.State() == chatclient.StateFailed {
				return session.Err()
			}
		case <-timeout:
			return fmt.Errorf("timed out waiting for connection")
		}
	}
}

func printMessage(msg chatwire.ChatMessage) {
	body := ""
	if msg.Content != nil {
		body = *msg.Content
	} else if msg.ImageURL != nil {
		body = "[image] " + *msg.ImageURL
	}
	fmt.Printf("[room %d] %s (#%d): %s\n", msg.ChatRoomID, msg.SenderNickname, msg.SenderID, body)
}

func runListen(cmd *cobra.Command, args []string) error {
	session := newSession()
	if err := connect(session); err != nil {
		return err
	}
	defer session.Disconnect()

	for _, roomID := range flagRooms {
		roomID := roomID
		err := session.Subscribe(roomID,
			func(msg chatwire.ChatMessage) {
				printMessage(msg)
				if flagMarkRead {
					session.MarkRead(msg.ChatRoomID)
				}
			},
			func(memberID int64) {
				fmt.Printf("[room %d] member %d read the conversation\n", roomID, memberID)
			},
		)
		if err != nil {
			return err
		}
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	return nil
}

func runSend(cmd *cobra.Command, args []string) error {
	if (flagText == "") == (flagImageURL == "") {
		return fmt.Errorf("exactly one of --text and --image-url is required")
	}

	session := newSession()
	if err := connect(session); err != nil {
		return err
	}
	defer session.Disconnect()

	req := chatwire.SendRequest{ChatRoomID: flagRoom}
	if flagText != "" {
		req.MessageType = chatwire.MessageTypeText
		req.Content = flagText
	} else {
		req.MessageType = chatwire.MessageTypeImage
		req.ImageURL = flagImageURL
	}
	if err := session.Send(req); err != nil {
		return err
	}

	time.Sleep(flagSendDelay)
	return nil
}

func runChat(cmd *cobra.Command, args []string) error {
	session := newSession()
	if err := connect(session); err != nil {
		return err
	}
	defer session.Disconnect()

	err := session.Subscribe(flagRoom, printMessage, func(memberID int64) {
		fmt.Printf("-- member %d read the conversation --\n", memberID)
	})
	if err != nil {
		return err
	}
	session.MarkRead(flagRoom)

	fmt.Println("type to chat, /read to send a read receipt, /quit to exit")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit":
			return nil
		case line == "/read":
			if err := session.MarkRead(flagRoom); err != nil {
				fmt.Fprintln(os.Stderr, "read failed:", err)
			}
		default:
			err := session.Send(chatwire.SendRequest{
				ChatRoomID:  flagRoom,
				MessageType: chatwire.MessageTypeText,
				Content:     line,
			})
			if err != nil {
				fmt.Fprintln(os.Stderr, "send failed:", err)
			}
		}
	}
	return scanner.Err()
}

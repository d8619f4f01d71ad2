// Command chat is a terminal client for the booking assistant. It talks to a
// running API server over the /chat/ws WebSocket.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/net/websocket"

	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/conversation"
	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/internal/webchat"
	"github.com/Abdul-Insighht/Barber-Salon-Chatbot-Assistent-Using-Rag/pkg/logging"
)

const helpText = "Commands: /reset starts over, /state shows the booking so far, /quit exits."

func main() {
	_ = godotenv.Load()

	defaultServer := os.Getenv("CHAT_SERVER_URL")
	if defaultServer == "" {
		defaultServer = "http://localhost:8080"
	}
	server := flag.String("server", defaultServer, "base URL of the API server")
	flag.Parse()

	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "warn"
	}
	logger := logging.NewWithWriter(level, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := dial(*server)
	if err != nil {
		logger.Error("failed to connect", "server", *server, "error", err)
		os.Exit(1)
	}
	defer c.Close()

	go func() {
		<-ctx.Done()
		_ = c.conn.Close()
	}()

	if err := c.run(os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		logger.Error("chat ended", "error", err)
		os.Exit(1)
	}
}

type client struct {
	conn      *websocket.Conn
	baseURL   string
	http      *http.Client
	sessionID string
}

// dial opens the chat socket under baseURL (http or https).
func dial(baseURL string) (*client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	wsURL := *base
	switch base.Scheme {
	case "https":
		wsURL.Scheme = "wss"
	case "http", "":
		wsURL.Scheme = "ws"
	default:
		return nil, fmt.Errorf("unsupported scheme %q", base.Scheme)
	}
	wsURL.Path += "/chat/ws"

	conn, err := websocket.Dial(wsURL.String(), "", base.String())
	if err != nil {
		return nil, err
	}
	return &client{
		conn:    conn,
		baseURL: base.String(),
		http:    &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (c *client) Close() error {
	return c.conn.Close()
}

// run prints the greeting, then relays lines from in until /quit or EOF.
func (c *client) run(in io.Reader, out io.Writer) error {
	if err := c.await(out); err != nil {
		return err
	}
	fmt.Fprintln(out, helpText)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "/quit", "/exit":
			fmt.Fprintln(out, "Goodbye!")
			return nil
		case "/help":
			fmt.Fprintln(out, helpText)
			continue
		case "/state":
			if err := c.printState(out); err != nil {
				fmt.Fprintf(out, "could not load state: %v\n", err)
			}
			continue
		case "/reset":
			if err := websocket.JSON.Send(c.conn, webchat.InboundMessage{Type: "reset"}); err != nil {
				return err
			}
		default:
			if err := websocket.JSON.Send(c.conn, webchat.InboundMessage{Type: "message", Text: line}); err != nil {
				return err
			}
		}
		if err := c.await(out); err != nil {
			return err
		}
	}
}

// await reads frames until the assistant replies or the server reports an error.
func (c *client) await(out io.Writer) error {
	for {
		var msg webchat.OutboundMessage
		if err := websocket.JSON.Receive(c.conn, &msg); err != nil {
			if errors.Is(err, io.EOF) {
				return errors.New("server closed the connection")
			}
			return err
		}
		switch msg.Type {
		case "session":
			c.sessionID = msg.SessionID
		case "message":
			fmt.Fprintf(out, "Assistant: %s\n", msg.Text)
			return nil
		case "error":
			fmt.Fprintf(out, "Error: %s\n", msg.Text)
			return nil
		}
	}
}

func (c *client) printState(out io.Writer) error {
	if c.sessionID == "" {
		return errors.New("no session yet")
	}
	resp, err := c.http.Get(c.baseURL + "/chat/sessions/" + url.PathEscape(c.sessionID))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %s", resp.Status)
	}

	var reply conversation.Reply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return err
	}
	bc := reply.Context
	if bc == nil {
		return errors.New("empty state")
	}
	fmt.Fprintf(out, "Step:    %s\n", bc.Step)
	fmt.Fprintf(out, "Barber:  %s\n", orDash(bc.BarberName))
	fmt.Fprintf(out, "Service: %s\n", orDash(bc.Service))
	fmt.Fprintf(out, "Time:    %s\n", orDash(bc.Slot))
	fmt.Fprintf(out, "Name:    %s\n", orDash(bc.CustomerName))
	fmt.Fprintf(out, "Phone:   %s\n", orDash(bc.CustomerPhone))
	fmt.Fprintf(out, "Email:   %s\n", orDash(bc.CustomerEmail))
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

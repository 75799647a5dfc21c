package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"ayurwell-backend/internal/model"
	"ayurwell-backend/internal/prompt"
	"ayurwell-backend/internal/stream"
	"ayurwell-backend/internal/transcript"
)

var (
	chatCmd = &cobra.Command{
		Use:   "chat [message]",
		Short: "Talk to the advisor; with a message, send it and exit",
		RunE:  runChat,
	}
	historyCmd = &cobra.Command{
		Use:   "history",
		Short: "Print the saved conversation",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, turn := range newController(io.Discard).Turns() {
				printTurn(os.Stdout, turn)
			}
			return nil
		},
	}
	clearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Forget the saved conversation",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newController(io.Discard).Clear(); err != nil {
				return err
			}
			fmt.Println("Conversation cleared.")
			return nil
		},
	}
)

// printer renders controller events on a terminal. Errors are shown as a
// one-line notice on stderr.
type printer struct {
	out io.Writer
}

func (p printer) OnTurn(turn model.ChatTurn) {
	if turn.Role == model.RoleAssistant {
		fmt.Fprintf(p.out, "\n🌿 %s", turn.Content)
	}
}

func (p printer) OnDelta(_, delta string) {
	fmt.Fprint(p.out, delta)
}

func (p printer) OnError(message string) {
	fmt.Fprintf(os.Stderr, "\n⚠️  %s\n", message)
}

func newController(out io.Writer) *transcript.Controller {
	cfg := current.cfg.Client
	client := stream.NewClient(cfg.Endpoint, cfg.RequestTimeout)
	return transcript.New(transcript.Config{StorageKey: cfg.StorageKey}, current.store, client, current.sessions,
		transcript.WithObserver(printer{out: out}))
}

func printTurn(w io.Writer, turn model.ChatTurn) {
	who := "you"
	if turn.Role == model.RoleAssistant {
		who = "advisor"
	}
	fmt.Fprintf(w, "[%s] %s\n%s\n\n", turn.CreatedAt.Local().Format("Jan 2 15:04"), who, turn.Content)
}

func runChat(cmd *cobra.Command, args []string) error {
	controller := newController(os.Stdout)

	if len(args) > 0 {
		return submit(cmd.Context(), controller, strings.Join(args, " "))
	}

	turns := controller.Turns()
	for _, turn := range turns {
		printTurn(os.Stdout, turn)
	}
	if len(turns) == 1 {
		fmt.Println("Try asking:")
		for _, s := range prompt.Suggestions {
			fmt.Printf("  • %s\n", s)
		}
		fmt.Println()
	}
	fmt.Println("Type /clear to start over, /quit to leave. Ctrl-C stops a reply.")

	for {
		line, err := readLine("\n> ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		switch strings.TrimSpace(line) {
		case "/quit", "/exit":
			return nil
		case "/clear":
			if err := controller.Clear(); err != nil {
				return err
			}
			printTurn(os.Stdout, controller.Turns()[0])
			continue
		}

		if err := submit(cmd.Context(), controller, line); err != nil {
			return err
		}
	}
}

// submit sends one message; Ctrl-C abandons the reply but not the program.
func submit(parent context.Context, controller *transcript.Controller, text string) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	defer stop()

	err := controller.Submit(ctx, text)
	fmt.Println()
	switch {
	case errors.Is(err, transcript.ErrEmptyInput):
		return nil
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(os.Stderr, "(reply stopped)")
		return nil
	}
	return err
}

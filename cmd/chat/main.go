// Command chat is a terminal chat client for the assistant backend:
// it logs in, replays the persisted conversation as a day-grouped
// timeline, and dispatches typed questions.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/nbcassistant/backend/internal/model/conversation"
	"github.com/nbcassistant/backend/internal/timeline"
	"github.com/nbcassistant/backend/pkg/client"
)

func main() {
	log.SetFlags(0)

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env, using system environment: %v", err)
	}

	server := flag.String("server", envOrDefault("CHAT_SERVER", "http://localhost:8080"), "backend base URL")
	email := flag.String("email", os.Getenv("CHAT_EMAIL"), "login email")
	password := flag.String("password", os.Getenv("CHAT_PASSWORD"), "login password")
	tz := flag.String("tz", envOrDefault("DISPLAY_TIMEZONE", "Asia/Kolkata"), "display timezone")
	flag.Parse()

	if *email == "" || *password == "" {
		flag.Usage()
		log.Fatal("provide -email and -password (or CHAT_EMAIL / CHAT_PASSWORD)")
	}

	loc, err := time.LoadLocation(*tz)
	if err != nil {
		log.Fatalf("unknown timezone %q: %v", *tz, err)
	}

	ctx := context.Background()
	session := client.New(*server, loc)

	if err := session.Login(ctx, *email, *password); err != nil {
		log.Fatalf("login failed: %v", err)
	}
	if err := session.Refresh(ctx); err != nil {
		log.Fatalf("failed to load history: %v", err)
	}

	render(session.Timeline())
	fmt.Println()
	fmt.Println("Type a question and press enter. Ctrl-D to quit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}

		if err := session.Submit(ctx, question); err != nil {
			// The error is already rendered in the timeline.
			log.Printf("submission failed: %v", err)
		}
		render(session.Timeline())
	}

	if err := scanner.Err(); err != nil {
		log.Fatalf("read input: %v", err)
	}
}

func render(entries []timeline.Entry) {
	fmt.Print("\n")
	for _, entry := range entries {
		switch entry.Kind {
		case timeline.KindSeparator:
			fmt.Printf("----- %s -----\n", entry.Label)
		case timeline.KindMessage:
			speaker := "you"
			if entry.Message.Role == conversation.RoleAssistant {
				speaker = "assistant"
			}
			fmt.Printf("[%s] %s: %s\n", entry.Clock, speaker, entry.Message.Content)
		}
	}
}

func envOrDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

// URC CLI - Command line client for URC
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/achrafidrissi/urc/clients/go/urc"
	"github.com/achrafidrissi/urc/internal/chat"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	baseURL := os.Getenv("URC_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	client := urc.NewClient(baseURL)
	client.Token = os.Getenv("URC_TOKEN")
	client.UserID = os.Getenv("URC_USER_ID")
	cmd := os.Args[1]

	switch cmd {
	case "health":
		resp, err := client.Health()
		exitOnError(err)
		printJSON(resp)

	case "register":
		if len(os.Args) < 5 {
			fmt.Fprintln(os.Stderr, "Usage: urc register <username> <email> <password>")
			os.Exit(1)
		}
		resp, err := client.Register(os.Args[2], os.Args[3], os.Args[4])
		exitOnError(err)
		fmt.Printf("Registered %s (%s)\n", resp.Username, resp.ID)

	case "login":
		if len(os.Args) < 4 {
			fmt.Fprintln(os.Stderr, "Usage: urc login <username> <password>")
			os.Exit(1)
		}
		resp, err := client.Login(os.Args[2], os.Args[3])
		exitOnError(err)
		fmt.Printf("export URC_TOKEN=%s\nexport URC_USER_ID=%s\n", resp.Token, resp.UserID)

	case "users":
		resp, err := client.ListUsers()
		exitOnError(err)
		for _, u := range resp.Users {
			fmt.Printf("  %s  %s (last seen %s)\n", u.ID, u.Username, u.LastLogin)
		}

	case "send":
		if len(os.Args) < 4 {
			fmt.Fprintln(os.Stderr, "Usage: urc send <recipient_id> <message>")
			os.Exit(1)
		}
		resp, err := client.SendDirectMessage(os.Args[3], os.Args[2])
		exitOnError(err)
		fmt.Printf("Sent: %s\n", resp.ID)

	case "read":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: urc read <recipient_id>")
			os.Exit(1)
		}
		resp, err := client.FetchDirectMessages(os.Args[2])
		exitOnError(err)
		printTimeline(resp.Messages)

	case "rooms":
		resp, err := client.ListRooms()
		exitOnError(err)
		for _, room := range resp.Rooms {
			fmt.Printf("  %s  %s\n", room.ID, room.Name)
		}

	case "mkroom":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: urc mkroom <name> [description]")
			os.Exit(1)
		}
		description := ""
		if len(os.Args) > 3 {
			description = os.Args[3]
		}
		resp, err := client.CreateRoom(os.Args[2], description)
		exitOnError(err)
		fmt.Printf("Created room %s: %s\n", resp.ID, resp.Name)

	case "post":
		if len(os.Args) < 4 {
			fmt.Fprintln(os.Stderr, "Usage: urc post <room_id> <message>")
			os.Exit(1)
		}
		resp, err := client.PostRoomMessage(os.Args[2], os.Args[3])
		exitOnError(err)
		fmt.Printf("Posted: %s\n", resp.ID)

	case "room":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: urc room <room_id>")
			os.Exit(1)
		}
		resp, err := client.FetchRoomMessages(os.Args[2])
		exitOnError(err)
		printTimeline(resp.Messages)

	case "help", "--help", "-h":
		usage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
}

func printTimeline(msgs []chat.DisplayMessage) {
	for _, msg := range msgs {
		ts := time.UnixMilli(msg.Timestamp).Format("2006-01-02 15:04:05")
		name := msg.SenderName
		if msg.IsOwn {
			name = "me"
		}
		fmt.Printf("[%s] %s: %s\n", ts, name, msg.Content)
	}
}

func usage() {
	fmt.Println(`URC CLI - UBO Relay Chat

Usage: urc <command> [options]

Commands:
  register <user> <email> <pw>   Create an account
  login <user> <pw>              Log in, print token exports
  users                          List direct-message targets
  send <recipient_id> <msg>      Send a direct message
  read <recipient_id>            Read a conversation
  rooms                          List rooms
  mkroom <name> [desc]           Create a room
  post <room_id> <msg>           Post to a room
  room <room_id>                 Read a room timeline
  health                         Check server health

Environment:
  URC_URL       Server URL (default: http://localhost:8080)
  URC_TOKEN     Bearer token from login
  URC_USER_ID   User id from login`)
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func printJSON(v interface{}) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(data))
}

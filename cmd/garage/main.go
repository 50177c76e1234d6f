// Command garage is a small terminal client for the Bob's Garage API,
// mostly useful for poking at an instance during development. It drives
// the same session cache the site front end uses.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"bobsgarage/api/internal/client"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "API base URL")
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	store := client.NewFileStore(filepath.Join(home, ".bobsgarage", "session.json"))
	api := client.New(*baseURL, store)

	ctx := context.Background()
	if err := api.Restore(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "session restore: %v\n", err)
	}

	if err := run(ctx, api, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, api *client.Client, args []string) error {
	switch args[0] {
	case "login":
		email := prompt("email: ")
		password := prompt("password: ")
		user, err := api.Login(ctx, email, password)
		if err != nil {
			return err
		}
		fmt.Printf("logged in as %s (admin: %t)\n", user.Username, user.IsAdmin)
		return nil

	case "profile":
		user, err := api.Profile(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("id=%d username=%s email=%s admin=%t\n", user.ID, user.Username, user.Email, user.IsAdmin)
		return nil

	case "users":
		users, err := api.ListUsers(ctx)
		if err != nil {
			return err
		}
		for _, user := range users {
			fmt.Printf("%d\t%s\t%s\tadmin=%t\n", user.ID, user.Username, user.Email, user.IsAdmin)
		}
		return nil

	case "toggle-admin":
		if len(args) < 2 {
			return fmt.Errorf("usage: garage toggle-admin <user-id>")
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid user id %q", args[1])
		}
		isAdmin, err := api.ToggleAdmin(ctx, id)
		if err != nil {
			return err
		}
		fmt.Printf("user %d admin=%t\n", id, isAdmin)
		return nil

	case "logout":
		api.Logout(ctx)
		fmt.Println("logged out")
		return nil

	default:
		usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func prompt(label string) string {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: garage [-url <base>] <login|profile|users|toggle-admin|logout>")
}

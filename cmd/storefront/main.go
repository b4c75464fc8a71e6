// Command storefront is a terminal demo of the client SDK: it logs in,
// browses the catalog, drives the cart engine and checks out against a
// running API server.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/craftorigin/storefront/pkg/apiclient"
	"github.com/craftorigin/storefront/pkg/cart"
	"github.com/craftorigin/storefront/pkg/notify"
	"github.com/craftorigin/storefront/pkg/session"
	"github.com/craftorigin/storefront/pkg/storage"
)

type stdoutNav struct{}

func (stdoutNav) NavigateTo(route string) { fmt.Printf("-> navigating to %s\n", route) }

// toastPrinter writes each toast once, when it first appears. Toast ids are
// monotonic, so anything above the high-water mark is new.
func toastPrinter(w io.Writer) func([]notify.Toast) {
	lastPrinted := -1
	return func(toasts []notify.Toast) {
		for _, t := range toasts {
			if t.ID <= lastPrinted {
				continue
			}
			lastPrinted = t.ID
			fmt.Fprintf(w, "[%s] %s\n", t.Kind, t.Message)
		}
	}
}

func main() {
	baseURL := flag.String("base-url", "http://localhost:8080", "marketplace API base URL")
	flag.Parse()

	home, err := os.UserHomeDir()
	if err != nil {
		log.Fatal(err)
	}
	kv, err := storage.OpenFileStore(filepath.Join(home, ".craftorigin", "session.json"))
	if err != nil {
		log.Fatal(err)
	}

	sess := session.New(kv)
	api := apiclient.New(*baseURL, sess.Token)
	notifier := notify.NewChannel(notify.DefaultTTL)
	notifier.Toasts().Subscribe(toastPrinter(os.Stdout))
	engine := cart.NewEngine(api, sess, notifier)

	ctx := context.Background()
	engine.Load(ctx)

	in := bufio.NewScanner(os.Stdin)
	fmt.Println("commands: login <email> <password> | logout | list [query] | add <artwork-id> | cart | checkout | quit")
	for {
		fmt.Print("> ")
		if !in.Scan() {
			return
		}
		fields := strings.Fields(in.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "login":
			if len(fields) != 3 {
				fmt.Println("usage: login <email> <password>")
				continue
			}
			creds, err := api.Login(ctx, fields[1], fields[2])
			if err != nil {
				fmt.Println("login failed:", err)
				continue
			}
			sess.Login(creds.Token, creds.User)
			fmt.Printf("logged in as %s (%s)\n", creds.User.Name, creds.User.Role)
		case "logout":
			sess.Logout()
			fmt.Println("logged out")
		case "list":
			query := strings.Join(fields[1:], " ")
			artworks, err := api.SearchArtworks(ctx, query)
			if err != nil {
				fmt.Println("search failed:", err)
				continue
			}
			for _, a := range artworks {
				fmt.Printf("%s  %-30s %10s  by %s\n", a.ID, a.Title, a.Price.StringFixed(2), a.ArtistName)
			}
		case "add":
			if len(fields) != 2 {
				fmt.Println("usage: add <artwork-id>")
				continue
			}
			engine.Add(ctx, fields[1], 1)
		case "cart":
			for _, line := range engine.Items().Get() {
				fmt.Printf("%dx %-30s %10s\n", line.Quantity, line.Title, line.UnitPrice.StringFixed(2))
			}
			fmt.Printf("items: %d  total: %s\n", engine.Count().Get(), engine.Total().Get().StringFixed(2))
		case "checkout":
			order, err := engine.Checkout(ctx)
			if err != nil {
				fmt.Println("checkout failed:", err)
				continue
			}
			fmt.Printf("order %s placed, total %s\n", order.ID, order.TotalAmount.StringFixed(2))
			engine.Load(ctx)
		case "quit", "exit":
			return
		default:
			fmt.Println("unknown command")
		}
	}
}

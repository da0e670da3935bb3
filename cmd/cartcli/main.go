// cmd/cartcli/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"aromelle/internal/adapters/out/token"
	cartdom "aromelle/internal/domain/cart"
	"aromelle/internal/infra/config"
	"aromelle/internal/platform/di"
	"aromelle/internal/platform/notify"
)

// cartcli drives the cart facade from a terminal — the stand-in for the
// storefront pages during development and on kiosk provisioning runs.
//
// usage:
//
//	cartcli [-variant local|remote|firestore] <command> [flags]
//
// commands:
//
//	list    print the cart
//	total   print the cart total
//	add     -product ... [-name ...] [-price ...] [-image ...] [-qty N] [-size ...] [-scent ...]
//	update  -product ... [-size ...] [-scent ...] -qty N
//	remove  -product ... [-size ...] [-scent ...]
//	clear   empty the cart
//	watch   (local variant) follow external cart writes until interrupted
//	login   -token ...   store the bearer credential for the remote variant
func main() {
	ctx := context.Background()

	variant := flag.String("variant", "", "cart store variant (default: CART_VARIANT or local)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	cfg := config.Load()
	if *variant != "" {
		cfg.Variant = *variant
	}

	cmd, cmdArgs := args[0], args[1:]

	// login only touches the token file; no container needed
	if cmd == "login" {
		runLogin(cfg, cmdArgs)
		return
	}

	cont, err := di.NewContainer(ctx, cfg, stderrRenderer{}, nil)
	if err != nil {
		log.Fatalf("[cartcli] init failed: %v", err)
	}
	defer func() {
		if err := cont.Close(); err != nil {
			log.Printf("[cartcli] close error: %v", err)
		}
	}()

	switch cmd {
	case "list":
		printItems(cont.CartUC.GetCart(ctx))
	case "total":
		fmt.Printf("%.2f\n", cont.CartUC.CalculateCartTotal(ctx))
	case "add":
		runAdd(ctx, cont, cmdArgs)
	case "update":
		runUpdate(ctx, cont, cmdArgs)
	case "remove":
		runRemove(ctx, cont, cmdArgs)
	case "clear":
		if err := cont.CartUC.ClearCart(ctx); err != nil {
			os.Exit(1)
		}
	case "watch":
		runWatch(ctx, cont)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: cartcli [-variant local|remote|firestore] <list|total|add|update|remove|clear|watch|login> [flags]")
}

func runAdd(ctx context.Context, cont *di.Container, args []string) {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	product := fs.String("product", "", "product id (required)")
	name := fs.String("name", "", "display name")
	price := fs.Float64("price", 0, "unit price")
	image := fs.String("image", "", "image URL")
	qty := fs.Int("qty", 1, "quantity")
	size := fs.String("size", "", "size option")
	scent := fs.String("scent", "", "scent option")
	fs.Parse(args)

	items, err := cont.CartUC.AddToCart(ctx, cartdom.ItemInput{
		ProductID: *product,
		Name:      *name,
		Price:     *price,
		Image:     *image,
		Quantity:  *qty,
		Size:      *size,
		Scent:     *scent,
	})
	if err != nil {
		os.Exit(1)
	}
	printItems(items)
}

func runUpdate(ctx context.Context, cont *di.Container, args []string) {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	product := fs.String("product", "", "product id (required)")
	size := fs.String("size", "", "size option")
	scent := fs.String("scent", "", "scent option")
	qty := fs.Int("qty", 1, "new quantity (0 removes the line)")
	fs.Parse(args)

	items, err := cont.CartUC.UpdateCartItemQuantity(ctx, cartdom.MakeKey(*product, *size, *scent), *qty)
	if err != nil {
		os.Exit(1)
	}
	printItems(items)
}

func runRemove(ctx context.Context, cont *di.Container, args []string) {
	fs := flag.NewFlagSet("remove", flag.ExitOnError)
	product := fs.String("product", "", "product id (required)")
	size := fs.String("size", "", "size option")
	scent := fs.String("scent", "", "scent option")
	fs.Parse(args)

	items, err := cont.CartUC.RemoveFromCart(ctx, cartdom.MakeKey(*product, *size, *scent))
	if err != nil {
		os.Exit(1)
	}
	printItems(items)
}

func runLogin(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	tok := fs.String("token", "", "bearer token issued by the sign-in flow (required)")
	fs.Parse(args)

	if *tok == "" {
		log.Fatalf("[cartcli] login requires -token")
	}
	if err := token.NewFileStore(cfg.TokenFile).Set(*tok); err != nil {
		log.Fatalf("[cartcli] storing credential failed: %v", err)
	}
	log.Printf("[cartcli] credential stored at %s", cfg.TokenFile)
}

// runWatch follows the cart until interrupted: the header-badge analog prints
// a summary line on every cart-changed broadcast, and (local variant) the
// fsnotify watcher feeds external writes into the same path.
func runWatch(ctx context.Context, cont *di.Container) {
	onChange := func(items []cartdom.Item) {
		fmt.Printf("cart changed: %d line(s), total %.2f\n", len(items), cartdom.TotalOf(items))
	}
	cont.CartUC.Subscribe(onChange)

	if cont.LocalStore == nil {
		log.Printf("[cartcli] watch is only meaningful for the local variant")
		return
	}

	w, err := cont.LocalStore.Watch(ctx, onChange)
	if err != nil {
		log.Fatalf("[cartcli] watch failed: %v", err)
	}
	defer w.Close()

	printItems(cont.CartUC.GetCart(ctx))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Printf("[cartcli] received signal: %v; stopping watch", sig)
}

func printItems(items []cartdom.Item) {
	if len(items) == 0 {
		fmt.Println("(cart is empty)")
		return
	}

	tw := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tNAME\tSIZE\tSCENT\tQTY\tPRICE\tSUBTOTAL")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%.2f\t%.2f\n",
			it.ProductID, it.Name, it.Size, it.Scent, it.Quantity, it.Price, it.Subtotal())
	}
	tw.Flush()
	fmt.Printf("total: %.2f\n", cartdom.TotalOf(items))
}

// stderrRenderer draws notifications as stderr lines. A line printer cannot
// fade, so Fade/Remove are no-ops; the auto-dismiss timing still runs in the
// notifier and matters for TUI surfaces.
type stderrRenderer struct{}

func (stderrRenderer) Show(n notify.Notification) {
	fmt.Fprintf(os.Stderr, "[%s] %s\n", n.Severity, n.Message)
}

func (stderrRenderer) Fade(id string)   {}
func (stderrRenderer) Remove(id string) {}

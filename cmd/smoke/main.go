// Command smoke walks a running server through the wishlist lifecycle:
// create, add gifts, publish, view, then a concurrent reservation burst.
package main

import (
	"context"
	"flag"
	"log"
	"time"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Server base URL")
	burst := flag.Int("burst", 10, "Concurrent reservation attempts on one gift")
	timeout := flag.Duration("timeout", 30*time.Second, "Overall timeout")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	report, err := run(ctx, newClient(*baseURL), *burst)
	if err != nil {
		log.Fatalf("smoke failed: %v", err)
	}
	log.Printf("smoke passed: wishlist=%d token=%s reserved=%d conflicts=%d",
		report.WishlistID, report.Token, report.Reserved, report.Conflicts)
}

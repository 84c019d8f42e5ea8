// Package main runs a demo WebSocket client that watches a trash CLI
// solve run's live progress stream (see internal/monitor).
package main

import (
	"fmt"
	"log"
	"net/url"
	"os"

	"github.com/gorilla/websocket"
)

type frame struct {
	Iter     int     `json:"iter"`
	Cost     float64 `json:"cost"`
	Feasible bool    `json:"feasible"`
}

func main() {
	addr := os.Getenv("TRASH_SERVE_ADDR")
	if addr == "" {
		addr = "localhost:8080"
	}
	u := url.URL{Scheme: "ws", Host: addr, Path: "/progress"}

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("dial %s: %v", u.String(), err)
	}
	defer func() { _ = c.Close() }()

	fmt.Printf("watching %s ...\n", u.String())
	for {
		var f frame
		if err := c.ReadJSON(&f); err != nil {
			log.Printf("read: %v", err)
			return
		}
		fmt.Printf("iter=%-6d cost=%12.2f feasible=%v\n", f.Iter, f.Cost, f.Feasible)
	}
}

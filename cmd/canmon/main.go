// canmon connects to a running candash monitor and prints each pushed state
// snapshot, standing in for an external dashboard.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"
)

func main() {
	addr := flag.String("addr", "ws://localhost:8090/ws", "monitor websocket url")
	flag.Parse()

	conn, _, err := websocket.DefaultDialer.Dial(*addr, nil)
	if err != nil {
		log.Fatalf("connect %s: %v", *addr, err)
	}
	defer conn.Close()
	log.Printf("connected to %s", *addr)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	msgs := make(chan []byte)
	go func() {
		defer close(msgs)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				log.Printf("read: %v", err)
				return
			}
			msgs <- msg
		}
	}()

	for {
		select {
		case <-stop:
			return
		case msg, open := <-msgs:
			if !open {
				return
			}
			fmt.Println(string(msg))
		}
	}
}

package main

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/wfunc/cardauction/game"
	"github.com/wfunc/cardauction/network"
)

// send formats and sends a message to the WebSocket server.
func send(c *websocket.Conn, msgID uint16, data []byte) error {
	packet := make([]byte, 4+len(data))
	binary.BigEndian.PutUint16(packet[0:2], msgID)
	binary.BigEndian.PutUint16(packet[2:4], uint16(len(data)))
	copy(packet[4:], data)

	return c.WriteMessage(websocket.BinaryMessage, packet)
}

func sendAction(c *websocket.Conn, in game.ActionInput) {
	data, err := json.Marshal(in)
	if err != nil {
		log.Printf("marshal failed: %v", err)
		return
	}
	if err := send(c, network.MsgTypeAction, data); err != nil {
		log.Printf("send failed: %v", err)
	}
}

// parseCommand turns a console line into an action.
//
//	play <cardID> | chain <cardID> | skip | bid <amount> | raise <amount>
//	fold | price <amount> | accept | decline | call
func parseCommand(line string) (game.ActionInput, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return game.ActionInput{}, false
	}
	arg := 0
	if len(fields) > 1 {
		arg, _ = strconv.Atoi(fields[1])
	}

	switch fields[0] {
	case "play":
		return game.ActionInput{Type: game.ActionPlayCard, CardID: arg}, true
	case "chain":
		return game.ActionInput{Type: game.ActionPlayCardOptional, CardID: arg}, true
	case "skip":
		return game.ActionInput{Type: game.ActionPlayCardOptional, Pass: true}, true
	case "bid":
		return game.ActionInput{Type: game.ActionBid, Amount: arg}, true
	case "raise":
		return game.ActionInput{Type: game.ActionBidOptional, Amount: arg}, true
	case "fold":
		return game.ActionInput{Type: game.ActionBidOptional, Pass: true}, true
	case "price":
		return game.ActionInput{Type: game.ActionAssignMarkedPrice, Amount: arg}, true
	case "accept":
		return game.ActionInput{Type: game.ActionMarkedReaction, Accept: true}, true
	case "decline":
		return game.ActionInput{Type: game.ActionMarkedReaction}, true
	case "call":
		return game.ActionInput{Type: game.ActionCall}, true
	}
	return game.ActionInput{}, false
}

func printMessage(msgID uint16, data []byte) {
	switch msgID {
	case network.MsgTypeStateUpdate:
		var state game.State
		if err := json.Unmarshal(data, &state); err != nil {
			log.Printf("bad state update: %v", err)
			return
		}
		fmt.Printf("--- round %d, money %v, scores %v\n", state.CurrentRound, state.Money, state.Scores)
		for _, p := range state.Players {
			status := "offline"
			if p.Connected {
				status = "online"
			}
			fmt.Printf("    [%d] %s (%s): %d cards in hand, %d owned\n",
				p.ID, p.Name, status, len(state.Hands[p.ID]), len(state.OwnedCards[p.ID]))
		}
	case network.MsgTypeGameEvent:
		var ev game.Event
		if err := json.Unmarshal(data, &ev); err != nil {
			return
		}
		fmt.Printf("*** event: %s\n", ev.Kind)
	case network.MsgTypeStringMessage:
		var text string
		json.Unmarshal(data, &text)
		fmt.Printf("!!! %s\n", text)
	case network.MsgTypeGameStop:
		fmt.Println("*** game stopped by server")
	}
}

func main() {
	addr := flag.String("addr", "localhost:8080", "server address")
	roomID := flag.String("room", "", "room id")
	playerUUID := flag.String("uuid", "", "player uuid")
	flag.Parse()

	if *roomID == "" || *playerUUID == "" {
		log.Fatal("both -room and -uuid are required")
	}

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws/" + *roomID + "/" + *playerUUID}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Printf("connection closed: %v", err)
				return
			}
			if len(message) < 4 {
				continue
			}
			msgID := binary.BigEndian.Uint16(message[0:2])
			printMessage(msgID, message[4:])
		}
	}()

	send(c, network.MsgTypeRequestState, nil)

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("commands: play/chain <cardID>, skip, bid/raise/price <amount>, fold, accept, decline, call, state, quit")
	for scanner.Scan() {
		select {
		case <-done:
			return
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "quit":
			return
		case "state":
			send(c, network.MsgTypeRequestState, nil)
		case "":
		default:
			if in, ok := parseCommand(line); ok {
				sendAction(c, in)
			} else {
				fmt.Println("unknown command")
			}
		}
	}
}

// 简单的命令行探测客户端: 登录拿令牌, 连上 WebSocket 后
// 用 join/start/guess 命令驱动一个房间
package main

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	msgTypeJoinRoom    = 101
	msgTypeLeaveRoom   = 102
	msgTypeStartGame   = 103
	msgTypeSubmitGuess = 104
	msgTypeChat        = 105
)

func send(c *websocket.Conn, msgID uint16, data []byte) error {
	packet := make([]byte, 4+len(data))
	binary.BigEndian.PutUint16(packet[0:2], msgID)
	binary.BigEndian.PutUint16(packet[2:4], uint16(len(data)))
	copy(packet[4:], data)

	return c.WriteMessage(websocket.BinaryMessage, packet)
}

// login 走 REST 登录换取令牌
func login(host, username, password string) (string, error) {
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	resp, err := http.Post("http://"+host+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var result struct {
		Token string `json:"token"`
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if result.Token == "" {
		return "", fmt.Errorf("login failed: %s", result.Error)
	}
	return result.Token, nil
}

func main() {
	host := flag.String("host", "localhost:8080", "server address")
	username := flag.String("user", "", "username")
	password := flag.String("pass", "", "password")
	flag.Parse()

	if *username == "" || *password == "" {
		log.Fatal("usage: client -user <name> -pass <password> [-host addr]")
	}

	token, err := login(*host, *username, *password)
	if err != nil {
		log.Fatalf("Login failed: %v", err)
	}
	log.Println("Logged in.")

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	u := url.URL{Scheme: "ws", Host: *host, Path: "/ws", RawQuery: "token=" + url.QueryEscape(token)}
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
				log.Println("Read error:", err)
				return
			}
			if len(message) < 4 {
				log.Printf("Received invalid packet of size %d", len(message))
				continue
			}
			msgID := binary.BigEndian.Uint16(message[0:2])
			data := message[4:]
			log.Printf("<- RECV (ID: %d): %s", msgID, string(data))
		}
	}()

	log.Println("Commands: join <code> | start | guess <higher|lower> <bet> | chat <text> | leave | quit")

	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-done:
			return
		case <-interrupt:
			log.Println("Interrupt received, closing connection.")
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.Println("Write close error:", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		default:
			text, _ := reader.ReadString('\n')
			fields := strings.Fields(text)
			if len(fields) == 0 {
				continue
			}

			var msgID uint16
			var payload interface{}
			switch fields[0] {
			case "join":
				if len(fields) < 2 {
					log.Println("usage: join <code>")
					continue
				}
				msgID = msgTypeJoinRoom
				payload = map[string]string{"code": fields[1]}
			case "start":
				msgID = msgTypeStartGame
				payload = map[string]string{}
			case "guess":
				if len(fields) < 3 {
					log.Println("usage: guess <higher|lower> <bet>")
					continue
				}
				higher := fields[1] == "higher"
				msgID = msgTypeSubmitGuess
				payload = map[string]interface{}{
					"guess":      map[string]bool{"higher": higher},
					"guess_type": "binary",
					"bet":        atoi(fields[2]),
				}
			case "chat":
				msgID = msgTypeChat
				payload = map[string]string{"message": strings.Join(fields[1:], " ")}
			case "leave":
				msgID = msgTypeLeaveRoom
				payload = map[string]string{}
			case "quit":
				return
			default:
				log.Printf("Unknown command: %s", fields[0])
				continue
			}

			data, _ := json.Marshal(payload)
			if err := send(c, msgID, data); err != nil {
				log.Println("Write error:", err)
				return
			}
			log.Printf("-> SENT: %s", fields[0])
		}
	}
}

func atoi(s string) int64 {
	var n int64
	fmt.Sscanf(s, "%d", &n)
	return n
}

package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"bhakti-social/pkg/auth"
)

// APIResponse 服务端统一响应结构
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// StreamFrame 实时流消息
type StreamFrame struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

func main() {
	// 命令行参数
	var (
		userID    = flag.Int64("user", 1001, "本端用户ID")
		userName  = flag.String("name", "devotee", "本端用户名")
		targetID  = flag.Int64("target", 1002, "目标用户ID")
		apiURL    = flag.String("api", "http://localhost:21001/api/v1/relationship", "关系服务API地址")
		wsURL     = flag.String("wsurl", "ws://localhost:21001/api/v1/relationship/ws", "WebSocket服务地址")
		streams   = flag.String("streams", "pending,sent,connections", "订阅的流类型")
		jwtSecret = flag.String("secret", "bhakti-social", "JWT签名密钥（需与服务端一致）")
	)
	flag.Parse()

	token, err := auth.GenerateJWT(*userID, *userName, *jwtSecret)
	if err != nil {
		log.Fatalf("生成token失败: %v", err)
	}
	fmt.Printf("✅ 本端用户: %s (ID: %d)\n", *userName, *userID)
	fmt.Printf("🎯 目标用户ID: %d\n", *targetID)

	// 建立WebSocket连接，订阅实时流
	fullWSURL := fmt.Sprintf("%s?token=%s&streams=%s", *wsURL, token, *streams)
	conn, _, err := websocket.DefaultDialer.Dial(fullWSURL, nil)
	if err != nil {
		log.Fatalf("WebSocket连接失败: %v", err)
	}
	defer conn.Close()
	fmt.Printf("🔗 已连接实时流: %s\n", *streams)

	// 接收推送
	go func() {
		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				log.Printf("连接断开: %v", err)
				os.Exit(0)
			}
			var frame StreamFrame
			if err := json.Unmarshal(message, &frame); err != nil {
				continue
			}
			fmt.Printf("\n📨 [%s] %s\n> ", frame.Stream, string(frame.Data))
		}
	}()

	printHelp()

	// 命令行交互
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		parts := strings.Fields(line)
		if len(parts) == 0 {
			fmt.Print("> ")
			continue
		}

		switch parts[0] {
		case "send":
			message := strings.Join(parts[1:], " ")
			post(*apiURL+"/send", token, map[string]interface{}{
				"from_user_id":   *userID,
				"from_user_name": *userName,
				"to_user_id":     *targetID,
				"to_user_name":   fmt.Sprintf("user-%d", *targetID),
				"message":        message,
			})
		case "accept", "reject", "cancel":
			if len(parts) < 2 {
				fmt.Println("用法: " + parts[0] + " <request_id>")
				break
			}
			var requestID int64
			fmt.Sscanf(parts[1], "%d", &requestID)
			post(*apiURL+"/"+parts[0], token, map[string]interface{}{
				"request_id": requestID,
				"user_id":    *userID,
			})
		case "remove":
			post(*apiURL+"/remove", token, map[string]interface{}{
				"user_id": *userID,
				"peer_id": *targetID,
			})
		case "status":
			post(*apiURL+"/status", token, map[string]interface{}{
				"user_id": *userID,
				"peer_id": *targetID,
			})
		case "help":
			printHelp()
		case "quit", "exit":
			return
		default:
			fmt.Println("未知命令，输入 help 查看用法")
		}
		fmt.Print("> ")
	}
}

// printHelp 打印命令说明
func printHelp() {
	fmt.Println(`
命令:
  send [留言]        向目标用户发送连接申请
  accept <id>        接受申请
  reject <id>        拒绝申请
  cancel <id>        撤回申请
  remove             解除与目标用户的连接
  status             查询与目标用户的关系状态
  help               显示本说明
  quit               退出`)
}

// post 调用服务端API并打印响应
func post(url, token string, body map[string]interface{}) {
	payload, _ := json.Marshal(body)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		fmt.Printf("❌ 构造请求失败: %v\n", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("❌ 请求失败: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var apiResp APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		fmt.Printf("❌ 解析响应失败: %v\n", err)
		return
	}

	if apiResp.Success {
		fmt.Printf("✅ %s\n", apiResp.Message)
	} else {
		fmt.Printf("❌ %s (HTTP %d)\n", apiResp.Message, resp.StatusCode)
	}
	if apiResp.Data != nil {
		data, _ := json.MarshalIndent(apiResp.Data, "", "  ")
		fmt.Println(string(data))
	}
}

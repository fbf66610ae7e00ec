// internal/api/websocket_handlers.go
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/Corphon/PromptForge/internal/models"
	"github.com/Corphon/PromptForge/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WebSocketHandler 处理 WebSocket 相关的 HTTP 请求
type WebSocketHandler struct {
	wizardService    *services.WizardService
	generatorService *services.GeneratorService
}

// NewWebSocketHandler 创建 WebSocket 处理器
func NewWebSocketHandler(wizardService *services.WizardService, generatorService *services.GeneratorService) *WebSocketHandler {
	return &WebSocketHandler{
		wizardService:    wizardService,
		generatorService: generatorService,
	}
}

// WizardWebSocket 处理向导会话 WebSocket 连接
//
// 客户端发送表单变更消息，服务端应用变更后向同一会话的所有
// 连接推送最新表单状态和重新生成的主提示词
func (wh *WebSocketHandler) WizardWebSocket(c *gin.Context) {
	sessionID := c.Param("session_id")
	if sessionID == "" {
		log.Printf("❌ WebSocket 连接失败：会话ID缺失")
		http.Error(c.Writer, "会话ID缺失", http.StatusBadRequest)
		return
	}

	// 会话必须已存在
	if _, err := wh.wizardService.GetSession(sessionID); err != nil {
		log.Printf("❌ WebSocket 连接失败：向导会话 %s 不存在", formatSessionLabel(sessionID))
		http.Error(c.Writer, "向导会话不存在", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ 向导 WebSocket 升级失败: %v", err)
		return
	}
	defer conn.Close()

	// 获取参数
	userID := c.DefaultQuery("user_id", "anonymous")

	// 创建客户端
	client := &WebSocketClient{
		conn:      &WebSocketConnWrapper{conn},
		sessionID: sessionID,
		userID:    userID,
		send:      make(chan []byte, 256),
		closed:    0,
		lastPing:  time.Now(),
		createdAt: time.Now(),
	}

	// 注册客户端
	select {
	case wsManager.register <- client:
		// Success
	default:
		log.Printf("❌ 无法注册 WebSocket 客户端，注册通道已满")
		return
	}

	defer func() {
		// Unregister with timeout to prevent blocking
		done := make(chan bool, 1)
		go func() {
			wsManager.unregister <- client
			done <- true
		}()

		select {
		case <-done:
			// Successfully unregistered
		case <-time.After(5 * time.Second):
			// Timeout - client might not be properly unregistered
			log.Printf("⚠️ WebSocket 客户端注销超时")
		}
	}()

	// 启动读写协程
	go wh.handleWebSocketWrites(client)
	go wh.handleWebSocketReads(client)

	// 发送连接确认消息
	wh.sendWelcomeMessage(client, sessionID, userID)

	// 等待连接关闭
	<-c.Request.Context().Done()
	log.Printf("📱 向导会话 %s 的 WebSocket 连接已关闭 (用户: %s)", formatSessionLabel(sessionID), userID)
}

// handleWebSocketReads 处理 WebSocket 读取
func (wh *WebSocketHandler) handleWebSocketReads(client *WebSocketClient) {
	defer func() {
		if !client.IsClosed() {
			select {
			case wsManager.unregister <- client:
			case <-time.After(1 * time.Second):
				log.Printf("⚠️ 读取协程关闭时注销超时")
			}
		}
	}()

	// 设置读取超时和ping处理
	client.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	client.conn.SetPongHandler(func(string) error {
		client.UpdatePing()
		client.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if client.IsClosed() {
			break
		}

		// 设置当前读取超时
		client.conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		_, messageBytes, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("❌ WebSocket 读取错误: %v", err)
			}
			break
		}

		// 解析JSON消息
		var message map[string]interface{}
		if err := json.Unmarshal(messageBytes, &message); err != nil {
			log.Printf("⚠️ JSON解析失败: %v", err)
			continue
		}

		// 更新活跃时间
		client.UpdatePing()

		// 处理收到的消息
		wh.handleMessage(client, message)
	}
}

// handleWebSocketWrites 处理 WebSocket 写入
func (wh *WebSocketHandler) handleWebSocketWrites(client *WebSocketClient) {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		// Close send channel gracefully if not already closed
		if atomic.CompareAndSwapInt32(&client.closed, 0, 1) {
			func() {
				defer func() {
					if recover() != nil {
						// Channel was already closed, which is fine
					}
				}()
				close(client.send)
			}()
			client.conn.Close()
		} else {
			// Channel might already be marked as closed, but try to close it safely anyway
			func() {
				defer func() {
					if recover() != nil {
						// Channel was already closed, which is fine
					}
				}()
				close(client.send)
			}()
			client.conn.Close()
		}
	}()

	for {
		select {
		case message, ok := <-client.send:
			if client.IsClosed() {
				return
			}

			client.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// Channel closed, send close message
				client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := client.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("❌ WebSocket 写入失败: %v", err)
				return
			}

		case <-ticker.C:
			if client.IsClosed() {
				return
			}

			client.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("❌ WebSocket ping 失败: %v", err)
				return
			}
			client.UpdatePing()

		case <-time.After(60 * time.Second):
			// Emergency timeout check - if nothing received in 60 seconds, close connection
			if client.IsClosed() {
				return
			}
		}
	}
}

// handleMessage 处理收到的 WebSocket 消息
func (wh *WebSocketHandler) handleMessage(client *WebSocketClient, message map[string]interface{}) {
	msgType, ok := message["type"].(string)
	if !ok {
		log.Printf("⚠️ 收到无效的消息类型")
		return
	}

	switch msgType {
	case "update_field":
		wh.handleUpdateField(client, message)
	case "set_section":
		wh.handleSetSection(client, message)
	case "reset_form":
		wh.handleResetForm(client)
	case "load_form":
		wh.handleLoadForm(client, message)
	case "get_master_prompt":
		wh.handleGetMasterPrompt(client)
	case "ping":
		wh.handlePing(client)
	default:
		log.Printf("⚠️ 未知的消息类型: %s", msgType)
	}
}

// handleUpdateField 处理单字段更新消息
func (wh *WebSocketHandler) handleUpdateField(client *WebSocketClient, message map[string]interface{}) {
	field, ok := message["field"].(string)
	if !ok {
		wh.sendError(client, "缺少字段名")
		return
	}

	value, _ := message["value"].(string)

	form, err := wh.wizardService.UpdateField(client.sessionID, field, value)
	if err != nil {
		wh.sendError(client, "更新字段失败: "+err.Error())
		return
	}

	wh.broadcastFormUpdate(client.sessionID, form)
}

// handleSetSection 处理分区切换消息
func (wh *WebSocketHandler) handleSetSection(client *WebSocketClient, message map[string]interface{}) {
	// JSON数字解码为float64
	sectionFloat, ok := message["section"].(float64)
	if !ok {
		wh.sendError(client, "缺少分区索引")
		return
	}

	form, err := wh.wizardService.SetCurrentSection(client.sessionID, int(sectionFloat))
	if err != nil {
		wh.sendError(client, "切换分区失败: "+err.Error())
		return
	}

	wh.broadcastFormUpdate(client.sessionID, form)
}

// handleResetForm 处理表单重置消息
func (wh *WebSocketHandler) handleResetForm(client *WebSocketClient) {
	form, err := wh.wizardService.ResetForm(client.sessionID)
	if err != nil {
		wh.sendError(client, "重置表单失败: "+err.Error())
		return
	}

	wh.broadcastFormUpdate(client.sessionID, form)
}

// handleLoadForm 处理整体载入表单消息
func (wh *WebSocketHandler) handleLoadForm(client *WebSocketClient, message map[string]interface{}) {
	formData, exists := message["form"]
	if !exists {
		wh.sendError(client, "缺少表单数据")
		return
	}

	// 经由JSON往返转换为强类型表单
	formBytes, err := json.Marshal(formData)
	if err != nil {
		wh.sendError(client, "表单数据无效")
		return
	}

	var form models.PromptFormData
	if err := json.Unmarshal(formBytes, &form); err != nil {
		wh.sendError(client, "表单数据无效: "+err.Error())
		return
	}

	updated, err := wh.wizardService.LoadFormData(client.sessionID, form)
	if err != nil {
		wh.sendError(client, "载入表单失败: "+err.Error())
		return
	}

	wh.broadcastFormUpdate(client.sessionID, updated)
}

// handleGetMasterPrompt 处理主提示词请求消息（仅发给请求方）
func (wh *WebSocketHandler) handleGetMasterPrompt(client *WebSocketClient) {
	form, err := wh.wizardService.GetFormData(client.sessionID)
	if err != nil {
		wh.sendError(client, "获取表单失败: "+err.Error())
		return
	}

	if statsService := getStatsService(); statsService != nil {
		statsService.RecordMasterPrompt()
	}

	client.SendMessage(map[string]interface{}{
		"type":          "master_prompt",
		"session_id":    client.sessionID,
		"master_prompt": wh.generatorService.GenerateMasterPrompt(form),
		"timestamp":     time.Now().Format(time.RFC3339),
	})
}

// broadcastFormUpdate 向会话的所有连接推送最新表单和主提示词
func (wh *WebSocketHandler) broadcastFormUpdate(sessionID string, form models.PromptFormData) {
	updateMsg := map[string]interface{}{
		"type":          "form:updated",
		"session_id":    sessionID,
		"form":          form,
		"master_prompt": wh.generatorService.GenerateMasterPrompt(form),
		"timestamp":     time.Now().Format(time.RFC3339),
	}

	wsManager.BroadcastToSession(sessionID, updateMsg)
}

// handlePing 处理ping消息
func (wh *WebSocketHandler) handlePing(client *WebSocketClient) {
	pong := map[string]interface{}{
		"type":      "pong",
		"timestamp": time.Now().Unix(),
	}

	client.SendMessage(pong)
}

// sendWelcomeMessage 发送欢迎消息
func (wh *WebSocketHandler) sendWelcomeMessage(client *WebSocketClient, sessionID, userID string) {
	welcomeMsg := map[string]interface{}{
		"type":       "connected",
		"session_id": sessionID,
		"user_id":    userID,
		"timestamp":  time.Now().Format(time.RFC3339),
		"message":    "WebSocket 连接已建立",
	}

	client.SendMessage(welcomeMsg)
}

// sendError 发送错误消息
func (wh *WebSocketHandler) sendError(client *WebSocketClient, errorMsg string) {
	errorResponse := map[string]interface{}{
		"type":      "error",
		"error":     errorMsg,
		"timestamp": time.Now().Format(time.RFC3339),
	}

	if msgBytes, err := json.Marshal(errorResponse); err == nil {
		select {
		case client.send <- msgBytes:
		default:
			log.Printf("⚠️ 无法发送错误消息到客户端，队列已满")
		}
	}
}

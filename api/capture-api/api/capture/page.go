// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package capture_api

import (
	_ "embed"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

//go:embed static/index.html
var indexHTML []byte

const (
	pageWriteWait  = 10 * time.Second
	pagePongWait   = 60 * time.Second
	pagePingPeriod = (pagePongWait * 9) / 10
)

var pageUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Index serves the capture page.
func (cApi *CaptureApi) Index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}

// PageStream mirrors page element updates to the browser. The first messages
// replay the current state of every element.
//
// @Router /v1/page/ws [get]
func (cApi *CaptureApi) PageStream(c *gin.Context) {
	conn, err := pageUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		cApi.logger.Errorf("page websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	updates, cancel := cApi.page.Subscribe(0)
	defer cancel()

	// reader: only pongs and the close frame matter
	closed := make(chan struct{})
	conn.SetReadDeadline(time.Now().Add(pagePongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pagePongWait))
	})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					cApi.logger.Warnf("page websocket read error: %v", err)
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(pagePingPeriod)
	defer ticker.Stop()
	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(pageWriteWait))
			if err := conn.WriteJSON(update); err != nil {
				cApi.logger.Debugf("page websocket write failed: %v", err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(pageWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}

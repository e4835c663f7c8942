// Copyright 2025 The fawa Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package exchange

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fawa-io/lanshare/pkg/fwlog"
)

const writeWait = 10 * time.Second

// listeners fans listing changes out to subscribers. Each subscriber only
// ever holds the latest listing; older ones are dropped.
type listeners struct {
	mu   sync.Mutex
	next int
	subs map[int]chan []string
}

// Subscribe returns a channel that receives the listing after every
// successful upload. Call cancel to unsubscribe.
func (s *Service) Subscribe() (<-chan []string, func()) {
	l := &s.listeners
	ch := make(chan []string, 1)

	l.mu.Lock()
	if l.subs == nil {
		l.subs = make(map[int]chan []string)
	}
	id := l.next
	l.next++
	l.subs[id] = ch
	l.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.subs, id)
			l.mu.Unlock()
		})
	}
}

func (s *Service) publish(files []string) {
	l := &s.listeners
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, ch := range l.subs {
		select {
		case <-ch:
		default:
		}
		ch <- files
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type listingMessage struct {
	Files []string `json:"files"`
}

// watchFiles streams the listing to a WebSocket client: once on connect and
// again whenever it changes.
func (h *handler) watchFiles(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		fwlog.Errorf("WebSocket upgrade failed: %v", err)
		return
	}
	defer func() {
		if err := conn.Close(); err != nil {
			fwlog.Debugf("wsConn close failed: %v", err)
		}
	}()

	updates, cancel := h.svc.Subscribe()
	defer cancel()

	// Reads only detect the peer going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					fwlog.Debugf("WebSocket read error: %v", err)
				}
				return
			}
		}
	}()

	files := h.svc.Refresh()
	for {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(listingMessage{Files: files}); err != nil {
			fwlog.Warnf("WebSocket WriteJSON failed: %v", err)
			return
		}
		select {
		case files = <-updates:
		case <-closed:
			return
		}
	}
}

package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"

	"github.com/codecollab/codecollab-server/internal/core"
	"github.com/codecollab/codecollab-server/internal/proto"
)

func diagDial(t *testing.T, router *gin.Engine) {
	t.Helper()
	st := createTestStore(t)
	hub := core.NewHub(st, nil, nil, 0)
	ctx0, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx0)
	t.Cleanup(cancel)

	router.GET("/ws", gin.WrapH(NewWSHandler(hub, testLogger(), nil)))
	ts := httptest.NewServer(router.Handler())
	t.Cleanup(ts.Close)

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
	ctx, cancelDial := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancelDial()

	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "done")

	payload, _ := json.Marshal(proto.JoinData{RoomID: "nope", Email: "a@x.com"})
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.InboundTypeJoin, Data: payload}); err != nil {
		t.Fatalf("send join: %v", err)
	}
	typ, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("raw read: %v", err)
	}
	t.Logf("frame type=%v data=%s", typ, data)
}

func TestDiagGinBare(t *testing.T) {
	gin.SetMode(gin.TestMode)
	diagDial(t, gin.New())
}

func TestDiagGinRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	diagDial(t, r)
}

func TestDiagGinLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(LoggerMiddleware(testLogger()))
	diagDial(t, r)
}

func TestDiagGinCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware(nil))
	diagDial(t, r)
}

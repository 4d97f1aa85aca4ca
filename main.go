package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"snakearena/server"
)

// 入口：装配配置、日志、房间注册表、会话网关与 HTTP 路由
func main() {
	cfg := server.LoadConfig()

	var addr string
	flag.StringVar(&addr, "addr", "", "listen address override, e.g. :8080")
	flag.Parse()
	if addr != "" {
		cfg.Addr = addr
	}

	if err := server.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer server.SyncLogger()

	rm := server.NewRoomManager(cfg)
	gw := server.NewGateway(rm)
	admin := server.NewAdminAPI(rm)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/ws", gw.HandleWS)
	router.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	router.GET("/admin/config", admin.HandleConfig)
	router.POST("/admin/config", admin.HandleConfig)
	router.GET("/metrics", admin.HandleMetrics)
	// 前后端分离：未匹配的路径走 web 目录的静态资源
	router.NoRoute(gin.WrapH(http.FileServer(http.Dir(cfg.WebDir))))

	srv := &http.Server{Addr: cfg.Addr, Handler: router}

	go func() {
		server.Log.Infof("snakearena listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			server.Log.Fatalf("listen: %v", err)
		}
	}()

	// 优雅退出（Ctrl+C）：先停房间循环，再关 HTTP
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	server.Log.Info("shutting down...")
	rm.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}

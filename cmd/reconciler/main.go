package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"

	"github.com/SmartFleetOps/SmartFleetOps/internal/common/config"
	"github.com/SmartFleetOps/SmartFleetOps/internal/common/db"
	"github.com/SmartFleetOps/SmartFleetOps/internal/common/logger"
	"github.com/SmartFleetOps/SmartFleetOps/internal/common/server"
	"github.com/SmartFleetOps/SmartFleetOps/internal/common/tracing"
	"github.com/SmartFleetOps/SmartFleetOps/internal/reconcile"
)

var (
	configPath = flag.String("config", "configs/reconciler.json", "配置文件路径")
	consulKey  = flag.String("consul-key", "", "从 Consul KV 加载配置的 key（优先于 -config）")
	consulAddr = flag.String("consul-addr", "localhost:8500", "Consul 地址（配合 -consul-key 使用）")
)

// reconciler 是独立部署的对账 worker：
// 周期性跑对账，另起一个 gRPC 健康检查端口供 Consul 探测。
func main() {
	flag.Parse()
	_ = godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	log, err := logger.NewLogger(cfg.Log.Driver, cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.Path)
	if err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}

	tracer, closer, err := tracing.InitTracer(
		cfg.Server.Name,
		cfg.Jaeger.Endpoint,
		cfg.Jaeger.Sampler,
	)
	if err != nil {
		log.Warnf("failed to init tracer: %v", err)
	} else {
		defer closer.Close()
	}
	_ = tracer

	gormDB, err := db.NewMySQL(
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Database,
		cfg.Database.MaxIdle,
		cfg.Database.MaxOpen,
	)
	if err != nil {
		log.Fatalf("failed to init mysql: %v", err)
	}

	engine := reconcile.NewEngine(reconcile.NewGormLoader(gormDB), reconcile.NewGormStore(gormDB), log)

	// 多副本部署时用 Redis 锁保证同一时刻只有一个副本在跑
	var lock *reconcile.RedisLock
	if cfg.Reconcile.UseRedisLock {
		client := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		lock = reconcile.NewRedisLock(client, cfg.Reconcile.LockKey, cfg.Reconcile.LockTTL())
	}

	runner := reconcile.NewRunner(engine, cfg.Reconcile.Interval(), lock, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go runner.Start(ctx)

	// 业务全在定时器里，这里只暴露 health（供 Consul 的 GRPC check 探测）
	if err := server.RunGRPCServer(cfg, log, func(s *grpc.Server) error {
		return nil
	}); err != nil {
		log.Fatalf("reconciler exited with error: %v", err)
	}
}

func loadConfig() (*config.Config, error) {
	if *consulKey != "" {
		host, portStr, err := net.SplitHostPort(*consulAddr)
		if err != nil {
			return nil, fmt.Errorf("invalid consul addr %q: %w", *consulAddr, err)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid consul port %q: %w", portStr, err)
		}
		return config.LoadConfigFromConsulKV(host, port, *consulKey)
	}
	return config.LoadConfig(*configPath)
}

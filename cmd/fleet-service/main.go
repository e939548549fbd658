package main

import (
	"flag"
	"fmt"
	"net"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/SmartFleetOps/SmartFleetOps/internal/common/config"
	"github.com/SmartFleetOps/SmartFleetOps/internal/common/db"
	"github.com/SmartFleetOps/SmartFleetOps/internal/common/logger"
	"github.com/SmartFleetOps/SmartFleetOps/internal/common/middleware"
	"github.com/SmartFleetOps/SmartFleetOps/internal/common/server"
	"github.com/SmartFleetOps/SmartFleetOps/internal/common/tracing"
	"github.com/SmartFleetOps/SmartFleetOps/internal/driver"
	"github.com/SmartFleetOps/SmartFleetOps/internal/maintenance"
	"github.com/SmartFleetOps/SmartFleetOps/internal/reconcile"
	"github.com/SmartFleetOps/SmartFleetOps/internal/schedule"
	"github.com/SmartFleetOps/SmartFleetOps/internal/vehicle"
)

var (
	configPath = flag.String("config", "configs/fleet-service.json", "配置文件路径")
	consulKey  = flag.String("consul-key", "", "从 Consul KV 加载配置的 key（优先于 -config）")
	consulAddr = flag.String("consul-addr", "localhost:8500", "Consul 地址（配合 -consul-key 使用）")
)

func main() {
	flag.Parse()
	_ = godotenv.Load() // .env 不存在时忽略

	// 加载配置（支持本地文件 / Consul KV 两种来源）
	cfg, err := loadConfig()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 初始化日志
	log, err := logger.NewLogger(cfg.Log.Driver, cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.Path)
	if err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}

	// 初始化链路追踪
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

	// 初始化数据库
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
	if err := gormDB.AutoMigrate(
		&vehicle.Vehicle{},
		&driver.Driver{},
		&maintenance.Order{},
		&schedule.VehicleSchedule{},
	); err != nil {
		log.Fatalf("failed to migrate mysql schema: %v", err)
	}

	// 组装业务层
	vehicleRepo := vehicle.NewRepo(gormDB)
	driverRepo := driver.NewRepo(gormDB)
	maintenanceSvc := maintenance.NewService(maintenance.NewRepo(gormDB), vehicleRepo)
	scheduleSvc := schedule.NewService(schedule.NewRepo(gormDB), vehicleRepo, driverRepo)
	engine := reconcile.NewEngine(reconcile.NewGormLoader(gormDB), reconcile.NewGormStore(gormDB), log)

	// 启动统一的 HTTP 服务模板
	if err := server.RunHTTPServer(cfg, log, func(e *gin.Engine) error {
		api := e.Group("/api/v1")
		vehicle.NewHTTPHandler(gormDB).Register(api)
		driver.NewHTTPHandler(gormDB).Register(api)
		maintenance.NewHTTPHandler(maintenanceSvc).Register(api)
		schedule.NewHTTPHandler(scheduleSvc).Register(api)
		reconcile.NewHTTPHandler(engine).Register(api)
		return nil
	}, server.WithRateLimiter(middleware.NewTokenBucket(200, 100))); err != nil {
		log.Fatalf("fleet-service exited with error: %v", err)
	}
}

func loadConfig() (*config.Config, error) {
	if *consulKey != "" {
		host, port, err := splitHostPort(*consulAddr)
		if err != nil {
			return nil, err
		}
		return config.LoadConfigFromConsulKV(host, port, *consulKey)
	}
	return config.LoadConfig(*configPath)
}

func splitHostPort(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid consul addr %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid consul port %q: %w", portStr, err)
	}
	return host, port, nil
}

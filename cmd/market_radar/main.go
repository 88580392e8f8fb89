package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/iWorld-y/market_radar/pkg/config"
	"github.com/iWorld-y/market_radar/pkg/engine"
	"github.com/iWorld-y/market_radar/pkg/logger"
	"github.com/iWorld-y/market_radar/pkg/model"
	"github.com/iWorld-y/market_radar/pkg/storage"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	inputPath := flag.String("input", "", "方案信息 JSON 文件路径")
	outputPath := flag.String("output", "output/report.json", "报告输出路径")
	flag.Parse()

	// .env 不存在时静默忽略，环境变量仍可由外部注入
	_ = godotenv.Load()

	// 1. 加载配置
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("无法加载配置文件: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	// 2. 初始化日志
	if err = logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		log.Fatalf("无法初始化日志: %v", err)
	}
	logger.Log.Info("启动市场雷达...")

	// 3. 读取待调研的方案信息
	if *inputPath == "" {
		logger.Log.Fatal("请通过 -input 指定方案信息 JSON 文件")
	}
	data, err := os.ReadFile(*inputPath)
	if err != nil {
		logger.Log.Fatalf("无法读取方案信息: %v", err)
	}
	var sctx model.SolutionContext
	if err := json.Unmarshal(data, &sctx); err != nil {
		logger.Log.Fatalf("方案信息 JSON 解析失败: %v", err)
	}

	// 4. 初始化数据库连接（可选）
	var store *storage.Storage
	if cfg.DB.Host != "" {
		s, err := storage.NewStorage(cfg.DB)
		if err != nil {
			logger.Log.Errorf("无法连接数据库: %v. 将仅输出 JSON 文件。", err)
		} else {
			store = s
			defer store.Close()
			logger.Log.Info("已成功连接到数据库")
		}
	} else {
		logger.Log.Info("未配置数据库信息，跳过数据库连接")
	}

	// 5. 初始化引擎并执行调研
	eng, err := engine.NewEngine(cfg, store)
	if err != nil {
		logger.Log.Fatalf("引擎初始化失败: %v", err)
	}

	report, err := eng.Run(context.Background(), &sctx)
	if err != nil {
		logger.Log.Fatalf("调研执行失败: %v", err)
	}

	// 6. 输出报告
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		logger.Log.Fatalf("报告序列化失败: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(*outputPath), 0o755); err != nil {
		logger.Log.Fatalf("无法创建输出目录: %v", err)
	}
	if err := os.WriteFile(*outputPath, out, 0o644); err != nil {
		logger.Log.Fatalf("无法写入报告文件: %v", err)
	}
	fmt.Println(string(out))

	logger.Log.Infof("✅ 市场调研报告生成完毕: %s", *outputPath)
}

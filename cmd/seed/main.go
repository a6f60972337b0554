package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/repository"
	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/seed"
	"github.com/sysu-ecnc-dev/leave-manager/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机人员, 2: 为随机人员插入请假申请, 3: 为随机人员插入病假, 4: 插入演示数据)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)
	today := domain.Date(time.Now())

	if op >= 1 && op <= 3 && n <= 0 {
		slog.Error("请输入合法的记录数量")
		return
	}

	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		cnt := 0
		for i := 0; i < n; i++ {
			person, err := utils.GenerateRandomPerson(cfg.Seed.User.Password, cfg.Email.UserDomain)
			if err != nil {
				slog.Error("无法生成随机人员", slog.String("error", err.Error()))
				continue
			}

			if err := repo.CreatePerson(person); err != nil {
				slog.Error("无法插入人员", slog.String("error", err.Error()))
				continue
			}

			cnt++
		}

		slog.Info("插入人员成功", slog.Int("count", cnt))
	case 2:
		persons, err := repo.GetActivePersons()
		if err != nil {
			slog.Error("无法获取在职人员", slog.String("error", err.Error()))
			return
		}
		vacationTypes, err := repo.GetAllVacationTypes()
		if err != nil {
			slog.Error("无法获取假期类型", slog.String("error", err.Error()))
			return
		}
		if len(persons) == 0 || len(vacationTypes) == 0 {
			slog.Error("请先插入人员和假期类型")
			return
		}

		cnt := 0
		for i := 0; i < n; i++ {
			person := persons[rand.Intn(len(persons))]
			vacationType := vacationTypes[rand.Intn(len(vacationTypes))]
			if err := repo.CreateApplication(utils.GenerateRandomApplication(person, vacationType, today)); err != nil {
				slog.Error("无法插入请假申请", slog.String("error", err.Error()))
				continue
			}

			cnt++
		}

		slog.Info("插入请假申请成功", slog.Int("count", cnt))
	case 3:
		persons, err := repo.GetActivePersons()
		if err != nil {
			slog.Error("无法获取在职人员", slog.String("error", err.Error()))
			return
		}
		if len(persons) == 0 {
			slog.Error("请先插入人员")
			return
		}

		cnt := 0
		for i := 0; i < n; i++ {
			person := persons[rand.Intn(len(persons))]
			if err := repo.CreateSickNote(utils.GenerateRandomSickNote(person, today)); err != nil {
				slog.Error("无法插入病假", slog.String("error", err.Error()))
				continue
			}

			cnt++
		}

		slog.Info("插入病假成功", slog.Int("count", cnt))
	case 4:
		if err := seed.SeedDemoData(repo, cfg.Seed.User.Password, cfg.Email.UserDomain, n); err != nil {
			slog.Error("无法插入演示数据", slog.String("error", err.Error()))
			return
		}

		slog.Info("插入演示数据成功")
	default:
		slog.Error("指定的操作非法")
	}
}

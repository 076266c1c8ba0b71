// Package setup 负责外部基础设施（MySQL、Redis）的连接初始化。
package setup

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/vastavikadi/BeatBRAWL/internal/domain"
)

// DBConfig 是 MySQL 连接参数。
type DBConfig struct {
	User     string
	Password string
	Host     string
	Port     string
	Name     string
}

// DSN 构建 MySQL 连接字符串。
func (c DBConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.Name)
}

// RedisConfig 是 Redis 连接参数。
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr 返回 host:port 形式的地址。
func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// InitDB 建立 MySQL 连接并配置连接池。
func InitDB(cfg DBConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("setup: connect to MySQL: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("setup: get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	logrus.Info("MySQL connected")
	return db, nil
}

// MigrateDB 迁移数据库模式。歌曲目录和用户表结构简单，AutoMigrate 足够。
func MigrateDB(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("setup: cannot migrate with nil DB connection")
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.Song{}); err != nil {
		return fmt.Errorf("setup: auto-migrate tables: %w", err)
	}
	logrus.Info("Database migration completed")
	return nil
}

// InitRedis 建立 Redis 连接并做一次连通性检查。
func InitRedis(cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     20,
		MinIdleConns: 5,
		MaxConnAge:   30 * time.Minute,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("setup: connect to Redis: %w", err)
	}

	logrus.Info("Redis connected")
	return client, nil
}

package database

import (
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"docqa-go/pkg/log"
)

// NewMySQL 建立 MySQL 连接并配置连接池，返回 GORM 句柄。
// 仅在启用 MySQL 文档注册表后端时调用。
func NewMySQL(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)           // 设置空闲连接池中连接的最大数量
	sqlDB.SetMaxOpenConns(100)          // 设置打开数据库连接的最大数量
	sqlDB.SetConnMaxLifetime(time.Hour) // 设置了连接可复用的最大时间

	log.Info("MySQL database connected successfully")
	return db, nil
}

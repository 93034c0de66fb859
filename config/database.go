package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

var db *gorm.DB

// GetDB returns the global connection used by the mysql record store.
func GetDB() *gorm.DB {
	return db
}

// MySQLSettings describes the record database and its pool.
type MySQLSettings struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// LogFile, when set, receives every statement instead of errors only.
	LogFile string
}

// DSN renders m for the mysql driver. A host of /cloudsql/<instance> is a
// unix socket.
func (m MySQLSettings) DSN() string {
	network, address := "tcp", m.Host+":"+m.Port
	if strings.HasPrefix(m.Host, "/cloudsql/") {
		network, address = "unix", m.Host
	}
	return fmt.Sprintf("%s:%s@%s(%s)/%s?parseTime=true&charset=utf8mb4",
		m.User, m.Password, network, address, m.Name)
}

// OpenDatabase makes one connection attempt and applies the pool limits.
func OpenDatabase(m MySQLSettings) (*gorm.DB, error) {
	conn, err := gorm.Open(mysql.Open(m.DSN()), &gorm.Config{
		Logger:         gormLogger(m.LogFile),
		NamingStrategy: schema.NamingStrategy{},
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	if m.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(m.MaxOpenConns)
	}
	if m.MaxIdleConns >= 0 {
		sqlDB.SetMaxIdleConns(m.MaxIdleConns)
	}
	if m.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(m.ConnMaxLifetime)
	}
	if m.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(m.ConnMaxIdleTime)
	}
	if err := conn.Use(otelgorm.NewPlugin()); err != nil {
		GetLogger().WithField("dependency", "mysql").Warn("otelgorm plugin not installed: " + err.Error())
	}
	return conn, nil
}

// ConnectDatabaseWithRetry sets the global connection, retrying until c is
// cancelled.
func ConnectDatabaseWithRetry(c context.Context, m MySQLSettings) error {
	return connectWithRetry(c, "mysql", logrus.Fields{"host": m.Host, "database": m.Name}, func(context.Context) error {
		conn, err := OpenDatabase(m)
		if err != nil {
			return err
		}
		db = conn
		return nil
	})
}

func gormLogger(logFile string) logger.Interface {
	if logFile != "" {
		if f, err := os.Create(logFile); err == nil {
			return logger.New(log.New(f, "\r\n", log.LstdFlags), logger.Config{
				LogLevel:      logger.Info,
				SlowThreshold: time.Second,
			})
		}
	}
	return logger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), logger.Config{
		LogLevel:                  logger.Error,
		SlowThreshold:             time.Second,
		IgnoreRecordNotFoundError: true,
	})
}

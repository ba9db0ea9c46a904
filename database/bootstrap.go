package database

import (
	"fmt"
	"net/url"
	"time"

	sqlite "github.com/glebarez/sqlite" // CGO-free
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"limeplan/config"
	"limeplan/entities"
	"limeplan/pkg/soil"
)

func dialector(cfg config.AppConfig) (gorm.Dialector, error) {
	switch cfg.DBType {
	case "sqlite", "":
		return sqlite.Open(cfg.DBPath), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=%s",
			cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.Timezone)
		return postgres.Open(dsn), nil
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
		return mysql.Open(dsn), nil
	case "sqlserver":
		u := &url.URL{
			Scheme:   "sqlserver",
			User:     url.UserPassword(cfg.DBUser, cfg.DBPassword),
			Host:     fmt.Sprintf("%s:%d", cfg.DBHost, cfg.DBPort),
			RawQuery: url.Values{"database": {cfg.DBName}}.Encode(),
		}
		return sqlserver.Open(u.String()), nil
	}
	return nil, fmt.Errorf("unsupported DB_TYPE %q", cfg.DBType)
}

// Open connects to the configured database and migrates the schema.
func Open(cfg config.AppConfig, lg *zap.Logger) (*gorm.DB, error) {
	d, err := dialector(cfg)
	if err != nil {
		return nil, err
	}
	gl := logger.New(
		zap.NewStdLog(lg.Named("gorm")),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)
	db, err := gorm.Open(d, &gorm.Config{Logger: gl})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.DBType, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.DBType == "sqlite" || cfg.DBType == "" {
		// one writer at a time keeps sqlite from returning SQLITE_BUSY
		sqlDB.SetMaxOpenConns(1)
	} else if cfg.DBMaxConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.DBMaxConns)
		sqlDB.SetMaxIdleConns(cfg.DBMaxConns)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	if err := Migrate(db); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	n, err := normalizeSoilTypes(db)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("normalize soil types: %w", err)
	}
	if n > 0 {
		lg.Info("normalized legacy soil types", zap.Int64("rows", n))
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&entities.Parcel{},
		&entities.SoilSample{},
		&entities.Product{},
		&entities.Plan{},
		&entities.Application{},
		&entities.ApplicationProduct{},
		&entities.PlanLog{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

// normalizeSoilTypes rewrites legacy spellings ("L", "srednia", "heavy soil")
// stored on parcels and plans to the canonical soil type.
func normalizeSoilTypes(db *gorm.DB) (int64, error) {
	var total int64
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&entities.Parcel{}, &entities.Plan{}} {
			var seen []string
			if err := tx.Model(model).Distinct("soil_type").Pluck("soil_type", &seen).Error; err != nil {
				return err
			}
			for _, raw := range seen {
				st, err := soil.ParseSoilType(raw)
				if err != nil || string(st) == raw {
					// unknown spellings are left for the service layer to reject
					continue
				}
				res := tx.Model(model).Where("soil_type = ?", raw).Update("soil_type", string(st))
				if res.Error != nil {
					return res.Error
				}
				total += res.RowsAffected
			}
		}
		return nil
	})
	return total, err
}

package main

import (
	"errors"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/happy-299/TomatoMall/config"
	"github.com/happy-299/TomatoMall/internal/mockmall"
	"github.com/happy-299/TomatoMall/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logCfg := &logger.Config{
		Level:      cfg.LogLevel,
		Filename:   cfg.LogFilename,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAge,
		Compress:   cfg.LogCompress,
	}
	if err := logger.InitLogger(logCfg); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	srv, err := mockmall.NewServer(mockmall.Config{
		DBPath:    cfg.DBPath,
		JWTSecret: cfg.JWTSecret,
	}, logger.Log)
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}

	initAdminAccount(srv.DB())

	logger.Log.Sugar().Infof("mockmall listening on %s", cfg.ServerAddr)
	if err := srv.Run(cfg.ServerAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}

func initAdminAccount(db *gorm.DB) {
	adminUsername := "admin"
	adminPassword := "admin123"

	var admin mockmall.Account
	result := db.Where("username = ?", adminUsername).First(&admin)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
			if err != nil {
				log.Fatalf("failed to hash admin password: %v", err)
			}

			admin = mockmall.Account{
				Username: adminUsername,
				Password: string(hashedPassword),
				Name:     "Administrator",
				Role:     "admin",
			}

			if err := db.Create(&admin).Error; err != nil {
				log.Fatalf("failed to create admin account: %v", err)
			}
			log.Println("Admin account created successfully!")
		} else {
			log.Fatalf("failed to check for admin account: %v", result.Error)
		}
	} else {
		log.Println("Admin account already exists.")
	}
}

// Command seed resets the database and loads the sample catalog used
// for local development and demos.
package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/qappio/qappio-api/internal/config"
	"github.com/qappio/qappio-api/internal/model"
	"github.com/qappio/qappio-api/internal/repository"
	"github.com/qappio/qappio-api/migrations"
	"github.com/qappio/qappio-api/pkg/database"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx := context.Background()

	pool, err := database.NewPool(ctx, cfg.DB.DSN(), 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	if err := database.Migrate(migrations.FS, cfg.DB.MigrateDSN()); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	if _, err := pool.Exec(ctx, `TRUNCATE tasks, levels, market_items`); err != nil {
		log.Fatal().Err(err).Msg("failed to clear existing data")
	}
	log.Info().Msg("cleared existing data")

	levelRepo := repository.NewLevelRepository(pool)
	for _, l := range sampleLevels() {
		if err := levelRepo.Insert(ctx, pool, l); err != nil {
			log.Fatal().Err(err).Str("name", l.Name).Msg("failed to insert level")
		}
	}

	taskRepo := repository.NewTaskRepository(pool)
	for _, t := range sampleTasks() {
		if err := taskRepo.Insert(ctx, t); err != nil {
			log.Fatal().Err(err).Str("title", t.Title).Msg("failed to insert task")
		}
	}

	marketRepo := repository.NewMarketRepository(pool)
	for _, m := range sampleMarketItems() {
		if err := marketRepo.Insert(ctx, m); err != nil {
			log.Fatal().Err(err).Str("name", m.Name).Msg("failed to insert market item")
		}
	}

	log.Info().
		Int("levels", len(sampleLevels())).
		Int("tasks", len(sampleTasks())).
		Int("market_items", len(sampleMarketItems())).
		Msg("database seeded")
}

func date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func sampleLevels() []*model.Level {
	return []*model.Level{
		{
			Name:      "Çırak",
			Color:     "#8B7355",
			MinPoints: 0, MaxPoints: 999, Order: 1,
			Benefits:     []string{"Temel görevlere erişim", "Market erişimi"},
			MarketAccess: true,
			SpecialPerks: []model.SpecialPerk{},
			Icon:         "🥉",
			IsActive:     true,
		},
		{
			Name:      "Kalfa",
			Color:     "#C0C0C0",
			MinPoints: 1000, MaxPoints: 4999, Order: 2,
			Benefits:     []string{"Orta seviye görevler", "Haftalık bonus", "Öncelikli destek"},
			MarketAccess: true,
			SpecialPerks: []model.SpecialPerk{},
			Icon:         "🥈",
			IsActive:     true,
		},
		{
			Name:      "Usta",
			Color:     "#FFD700",
			MinPoints: 5000, MaxPoints: 14999, Order: 3,
			Benefits:     []string{"Premium görevler", "Özel indirimler", "VIP etkinlikler"},
			MarketAccess: true,
			SpecialPerks: []model.SpecialPerk{},
			Icon:         "🥇",
			IsActive:     true,
		},
		{
			Name:      "Viralist",
			Color:     "#E74C3C",
			MinPoints: 15000, MaxPoints: 49999, Order: 4,
			Benefits:     []string{"Sponsorlu görevler", "Özel ödüller", "Beta özellikler"},
			MarketAccess: true,
			SpecialPerks: []model.SpecialPerk{
				{Name: "Viral Bonus", Description: "Paylaşımlarınız viral olduğunda ekstra puan", IsActive: true},
			},
			Icon:     "💎",
			IsActive: true,
		},
		{
			Name:      "Qappian",
			Color:     "#1A237E",
			MinPoints: 50000, MaxPoints: 999999, Order: 5,
			Benefits:     []string{"Tüm özelliklere erişim", "Kişisel danışman", "Sınırsız avantajlar"},
			MarketAccess: true,
			SpecialPerks: []model.SpecialPerk{
				{Name: "Qappian Exclusive", Description: "Sadece Qappian'lara özel özellikler", IsActive: true},
				{Name: "Personal Manager", Description: "Kişisel hesap yöneticisi", IsActive: true},
			},
			Icon:     "👑",
			IsActive: true,
		},
	}
}

func sampleTasks() []*model.Task {
	return []*model.Task{
		{
			Title:       "Nike Ayakkabı Fotoğrafı",
			Description: "Yeni Nike ayakkabınızın fotoğrafını çekip paylaşın. Ayakkabı kutusunun da görünmesi gerekiyor.",
			Brand:       "Nike",
			Category:    "Fotoğraf",
			Status:      model.TaskStatusActive,
			Budget:      5000,
			Participants: 23, MaxParticipants: 100,
			Reward:       50,
			StartDate:    date(2024, 1, 1),
			EndDate:      date(2024, 12, 31),
			IsSponsored:  true,
			SponsorBrand: "Nike",
			Requirements: []string{"Ayakkabı kutusu görünmeli", "İyi ışıklandırma", "Temiz arka plan"},
			Tags:         []string{"ayakkabı", "nike", "spor", "moda"},
		},
		{
			Title:       "Starbucks İçecek İncelemesi",
			Description: "Yeni sezon Starbucks içeceğini deneyin ve deneyiminizi paylaşın.",
			Brand:       "Starbucks",
			Category:    "Video",
			Status:      model.TaskStatusActive,
			Budget:      3000,
			Participants: 67, MaxParticipants: 150,
			Reward:       30,
			StartDate:    date(2024, 1, 15),
			EndDate:      date(2024, 6, 15),
			IsWeekly:     true,
			Featured:     true,
			Requirements: []string{"Video minimum 30 saniye", "Ses kalitesi iyi olmalı"},
			Tags:         []string{"kahve", "starbucks", "içecek", "inceleme"},
		},
		{
			Title:       "Samsung Galaxy S24 Unboxing",
			Description: "Yeni Samsung Galaxy S24'ünüzün kutu açılış videosunu çekin.",
			Brand:       "Samsung",
			Category:    "Video",
			Status:      model.TaskStatusActive,
			Budget:      10000,
			Participants: 12, MaxParticipants: 50,
			Reward:       200,
			StartDate:    date(2024, 2, 1),
			EndDate:      date(2024, 4, 1),
			IsSponsored:  true,
			SponsorBrand: "Samsung",
			Requirements: []string{"HD kalite", "Minimum 2 dakika", "Türkçe anlatım"},
			Tags:         []string{"telefon", "samsung", "teknoloji", "unboxing"},
		},
	}
}

func sampleMarketItems() []*model.MarketItem {
	return []*model.MarketItem{
		{
			Name:        "iPhone 15 Pro",
			Description: "Son teknoloji iPhone 15 Pro - 128GB Kapasiteli",
			Brand:       "Apple",
			Category:    "Elektronik",
			QPPrice:     25000,
			RealPrice:   50000,
			Currency:    "TL",
			Stock:       5,
			LevelAccess: "Gold+", MinLevelPoints: 5000,
			Images: []model.ItemImage{
				{URL: "https://example.com/iphone15pro.jpg", Alt: "iPhone 15 Pro", IsPrimary: true},
			},
			Status:   model.ItemStatusActive,
			Featured: true,
			Specifications: []model.Specification{
				{Key: "Depolama", Value: "128GB"},
				{Key: "Renk", Value: "Space Black"},
				{Key: "Garanti", Value: "2 Yıl"},
			},
			Tags: []string{"telefon", "apple", "iphone", "premium"},
			DeliveryInfo: model.DeliveryInfo{
				Type: "Physical", EstimatedDays: 3, Description: "Kargo ile gönderilir",
			},
		},
		{
			Name:        "Starbucks 50 TL Hediye Kartı",
			Description: "Starbucks mağazalarında geçerli 50 TL hediye kartı",
			Brand:       "Starbucks",
			Category:    "Hediye Kartı",
			QPPrice:     1000,
			RealPrice:   50,
			Currency:    "TL",
			Stock:       model.UnlimitedStock,
			LevelAccess: "Tüm Seviyeler", MinLevelPoints: 0,
			Images: []model.ItemImage{
				{URL: "https://example.com/starbucks-card.jpg", Alt: "Starbucks Gift Card", IsPrimary: true},
			},
			Status:   model.ItemStatusActive,
			Featured: true,
			Specifications: []model.Specification{
				{Key: "Değer", Value: "50 TL"},
				{Key: "Geçerlilik", Value: "2 Yıl"},
				{Key: "Kullanım", Value: "Tüm Starbucks Mağazaları"},
			},
			Tags:    []string{"hediye", "kahve", "starbucks", "kart"},
			Sales:   156,
			Revenue: 156000,
			DeliveryInfo: model.DeliveryInfo{
				Type: "Digital", EstimatedDays: 0, Description: "E-posta ile anında gönderilir",
			},
		},
		{
			Name:        "Nike Air Max 270",
			Description: "Rahat ve şık Nike Air Max 270 spor ayakkabı",
			Brand:       "Nike",
			Category:    "Spor",
			QPPrice:     8000,
			RealPrice:   1200,
			Currency:    "TL",
			Stock:       15,
			LevelAccess: "Silver+", MinLevelPoints: 1000,
			Images: []model.ItemImage{
				{URL: "https://example.com/nike-air-max.jpg", Alt: "Nike Air Max 270", IsPrimary: true},
			},
			Status: model.ItemStatusActive,
			Discount: model.Discount{
				Percentage: 20,
				StartDate:  date(2024, 1, 1),
				EndDate:    date(2024, 6, 1),
				IsActive:   true,
			},
			Specifications: []model.Specification{
				{Key: "Beden", Value: "42"},
				{Key: "Renk", Value: "Siyah/Beyaz"},
				{Key: "Materyal", Value: "Mesh/Sentetik"},
			},
			Tags:    []string{"ayakkabı", "nike", "spor", "koşu"},
			Sales:   23,
			Revenue: 147200,
			Rating:  model.Rating{Average: 4.5, Count: 18},
			DeliveryInfo: model.DeliveryInfo{
				Type: "Physical", EstimatedDays: 5, Description: "Kargo ile gönderilir",
			},
		},
	}
}
